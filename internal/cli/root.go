// Package cli implements adminctl, a command-line client for the commerce
// backend that shares the console's resource catalog.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/config"
	"github.com/simp-lee/shopadmin/internal/notify"
)

// Environment variables read for flag defaults.
const (
	EnvBackend = "SHOPADMIN_BACKEND"
	EnvToken   = "SHOPADMIN_TOKEN"
)

const (
	defaultBackend = "http://localhost:5000"
	cliOperator    = "adminctl"
)

var errNoToken = errors.New("no token: pass --token or set " + EnvToken)

type options struct {
	backend  string
	token    string
	logLevel string
	timeout  time.Duration

	logger *slog.Logger
	client *api.Client
	runner *action.Runner
	close  func()
}

func defaultFromEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// NewRootCmd creates the adminctl root command.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "adminctl",
		Short: "Manage the shop backend from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.close != nil {
				o.close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.backend, "backend", defaultFromEnv(EnvBackend, defaultBackend), "backend base URL (or "+EnvBackend+")")
	flags.StringVar(&o.token, "token", os.Getenv(EnvToken), "backend access token (or "+EnvToken+")")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.DurationVar(&o.timeout, "timeout", 15*time.Second, "backend request timeout")

	root.AddCommand(
		newResourcesCmd(),
		newListCmd(o),
		newGetCmd(o),
		newDeleteCmd(o),
		newLoginCmd(o),
	)
	return root
}

func (o *options) setup() error {
	log, err := config.SetupLogger(&config.LogConfig{Level: o.logLevel, Format: "text"})
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	o.logger = log.Logger
	o.close = func() { _ = log.Close() }

	client, err := api.NewClient(api.Options{
		BaseURL: o.backend,
		Timeout: o.timeout,
		Logger:  o.logger,
	})
	if err != nil {
		return err
	}
	o.client = client
	o.runner = action.NewRunner(action.Options{Logger: o.logger})
	return nil
}

// Execute runs adminctl and returns the process exit code. Failed backend
// actions have already been reported by the notifier; any other error is
// printed here.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		var ae *action.Error
		if !errors.As(err, &ae) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

// notifier prints action outcomes to stderr, keeping stdout for data.
func notifier(cmd *cobra.Command) notify.Notifier {
	return notify.NotifierFunc(func(t notify.Toast) {
		if t.Type == notify.TypeError {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", t.Message)
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), t.Message)
	})
}

// spec describes an action on e for the journal, metrics and messages.
func spec(e catalog.Entry, verb, key string) action.Spec {
	return action.Spec{Resource: e.Singular, Name: e.Endpoint.Name, Verb: verb, Key: key, Operator: cliOperator}
}

// authorized returns ctx carrying the configured token.
func (o *options) authorized(ctx context.Context) (context.Context, error) {
	tok := strings.TrimSpace(o.token)
	if tok == "" {
		return nil, errNoToken
	}
	return api.WithCredential(ctx, &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}), nil
}
