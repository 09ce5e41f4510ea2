package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/config"
	"github.com/simp-lee/shopadmin/internal/journal"
	"github.com/simp-lee/shopadmin/internal/metrics"
	"github.com/simp-lee/shopadmin/internal/middleware"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/web"
)

// pruneInterval is how often expired journal entries are removed.
const pruneInterval = time.Hour

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	journal journal.Journal
	logger  *logger.Logger
	cfg     *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires the console from cfg: logging, the journal database, the
// backend client, the action runner, sessions, middleware, templates and
// routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Activity journal.
	db, j, err := openJournal(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if success || db == nil {
			return
		}
		closeDB(db)
	}()

	// 3. Backend client, metrics and the action runner.
	client, err := api.NewClient(api.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.BackendTimeout(),
		Logger:  log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("setup backend client: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	runner := action.NewRunner(action.Options{
		Logger:  log.Logger,
		Journal: j,
		Metrics: m,
	})

	sessions := session.NewManager(session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.SessionTTL(),
		MaxEntries: cfg.Session.MaxEntries,
		Secure:     cfg.Server.Mode == gin.ReleaseMode,
	})

	// 4. Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(middleware.LoggerConfig{
			Logger:    log.Logger,
			SkipPaths: []string{"/health", cfg.Metrics.Path},
		}),
		middleware.CORS(corsConfig),
		middleware.Timeout(durationOr(cfg.Server.Timeout, 0)),
	)
	if cfg.Server.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RPS:        cfg.Server.RateLimit.RPS,
			Burst:      cfg.Server.RateLimit.Burst,
			MaxClients: cfg.Server.RateLimit.MaxClients,
		}))
	}

	// 5. Templates: hot reload from disk in debug mode, embedded otherwise.
	var fsys fs.FS
	if cfg.Server.Mode == gin.DebugMode {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	} else {
		fsys = web.EmbeddedFS
	}
	renderer, err := NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	// 6. CSRF secret.
	csrfSecret, err := resolveCSRFSecret(cfg.Server.Mode, cfg.Server.CSRFSecret)
	if err != nil {
		return nil, err
	}
	if csrfSecret != cfg.Server.CSRFSecret {
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	}

	// 7. Modules and routes.
	public, modules := buildModules(moduleDeps{
		client:    client,
		runner:    runner,
		sessions:  sessions,
		journal:   j,
		pageSize:  cfg.Backend.DefaultPageSize,
		loginPath: cfg.Backend.LoginPath,
	})
	if err := RegisterRoutes(engine, &RouteDeps{
		Public:      public,
		Modules:     modules,
		Sessions:    sessions,
		DB:          db,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Mode:        cfg.Server.Mode,
		CSRFSecret:  csrfSecret,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:  engine,
		db:      db,
		journal: j,
		logger:  log,
		cfg:     cfg,
	}, nil
}

// openJournal opens the journal database when the journal is enabled and
// migrates it in debug mode or when asked to. A disabled journal is a Nop
// with no database.
func openJournal(cfg *config.Config, log *slog.Logger) (*gorm.DB, journal.Journal, error) {
	if !cfg.Journal.Enabled {
		return nil, journal.Nop{}, nil
	}

	db, err := config.SetupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}
	repo := journal.NewRepository(db)

	if cfg.Server.Mode == gin.DebugMode || cfg.Journal.AutoMigrate {
		if err := repo.Migrate(context.Background()); err != nil {
			closeDB(db)
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}
	return db, repo, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("database close error", slog.Any("error", err))
	}
}

// resolveCSRFSecret returns the configured secret, or a random one outside
// release mode when the configured value is a placeholder.
func resolveCSRFSecret(mode, secret string) (string, error) {
	if !isPlaceholderCSRFSecret(secret) {
		return secret, nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}
	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-32-byte-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

// resolveCORSConfig builds the API CORS policy. Without an allowlist,
// release mode denies cross-origin requests and other modes allow any.
func resolveCORSConfig(mode string, cfg config.CORSConfig) (middleware.CORSConfig, error) {
	out := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		out.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		out.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		out.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		out.AllowHeaders = cfg.AllowHeaders
	}
	out.AllowCredentials = cfg.AllowCredentials

	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return out, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		out.MaxAge = d
	}
	return out, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func durationOr(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// resolveDebugWebFS finds the web/ directory next to the sources, then next
// to the executable.
func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Handler returns the HTTP handler of the console.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// While running, journal entries older than the retention are pruned every
// hour. Shutdown waits up to 5 seconds, then the database and logger are
// closed.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}
	log := a.log()

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if retention := a.cfg.JournalRetention(); retention > 0 && a.journal != nil {
		go pruneLoop(ctx, a.journal, retention, pruneInterval, log)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// pruneLoop removes entries older than retention now and then every
// interval until ctx is done.
func pruneLoop(ctx context.Context, j journal.Reader, retention, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := j.Prune(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("journal prune failed", slog.Any("error", err))
		case n > 0:
			log.Info("journal pruned", slog.Int64("deleted", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
