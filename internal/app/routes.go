package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/shopadmin/internal/metrics"
	"github.com/simp-lee/shopadmin/internal/middleware"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/view"
	"github.com/simp-lee/shopadmin/web"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules are reachable without a credential (sign-in).
	Public []Module
	// Modules require a backend credential.
	Modules  []Module
	Sessions *session.Manager
	// DB is the journal database; nil when the journal is disabled.
	DB          *gorm.DB
	Metrics     *metrics.Metrics
	MetricsPath string
	Mode        string
	CSRFSecret  string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
//
// Layout:
//
//	/static/*, /health, metrics path   no session
//	public API and pages                session (+ CSRF for pages)
//	/api/v1/*                           session, credential
//	pages                               session, CSRF, credential
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Sessions == nil {
		return errors.New("session manager is required")
	}
	if strings.TrimSpace(deps.CSRFSecret) == "" {
		return errors.New("csrf secret is required")
	}
	for i, m := range append(append([]Module{}, deps.Public...), deps.Modules...) {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
	}

	if err := registerStaticRoutesWithError(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	r.GET("/health", healthHandler(deps.DB))
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.Metrics.Handler()))
	}

	nav := navItems(deps.Modules)
	csrf := middleware.CSRF(deps.CSRFSecret)
	base := r.Group("/", session.Middleware(deps.Sessions), view.Nav(nav))

	publicAPI := base.Group("/api/v1")
	publicPages := base.Group("/", csrf)
	for _, m := range deps.Public {
		m.RegisterRoutes(publicAPI, publicPages)
	}

	api := base.Group("/api/v1", session.RequireCredential())
	pages := base.Group("/", csrf, session.RequireCredential())
	pages.GET("/", homeHandler(nav))
	for _, m := range deps.Modules {
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(view.Nav(nav), noRouteHandler())
	return nil
}

// homeHandler renders the dashboard linking every module.
func homeHandler(nav []view.NavItem) gin.HandlerFunc {
	return func(c *gin.Context) {
		view.Render(c, http.StatusOK, "home.html", gin.H{
			"Title": "Dashboard",
			"Cards": nav,
		})
	}
}

// healthHandler reports liveness and, when the journal is enabled, pings its
// database.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{
				"status":     "ok",
				"components": gin.H{"journal": "disabled"},
			})
			return
		}

		dbStatus, status, code := "ok", "ok", http.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			dbStatus, status, code = "error", "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":     status,
			"components": gin.H{"journal": dbStatus},
		})
	}
}

// noRouteHandler answers unknown paths: JSON under /api/, the 404 page for
// browsers.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
			return
		}
		renderError(c, http.StatusNotFound, "not found")
	}
}

func registerStaticRoutesWithError(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		debugStaticFS, err := resolveDebugStaticFS()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		fileServer := http.StripPrefix("/static", http.FileServer(http.FS(debugStaticFS)))
		r.GET("/static/*filepath", func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", cacheStaticHandler(http.FS(staticFS)))
	return nil
}

func resolveDebugStaticFS() (fs.FS, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("resolve current file path")
	}

	projectRoot := filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", ".."))
	staticDir := filepath.Join(projectRoot, "web", "static")
	if _, err := os.Stat(staticDir); err != nil {
		return nil, fmt.Errorf("stat static directory %q: %w", staticDir, err)
	}
	return os.DirFS(staticDir), nil
}

// cacheStaticHandler serves embedded assets with a one-day cache header.
func cacheStaticHandler(fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
