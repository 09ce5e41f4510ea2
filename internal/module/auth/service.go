package auth

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/api"
)

// DefaultLoginPath is the backend sign-in endpoint.
const DefaultLoginPath = "/auth/login"

// Service signs operators in against the commerce backend. The console
// stores no passwords of its own.
type Service interface {
	Login(ctx context.Context, email, password string) (*oauth2.Token, error)
}

// Authenticator is the backend call Service depends on. *api.Client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, path, email, password string) (*oauth2.Token, error)
}

var _ Authenticator = (*api.Client)(nil)

type authService struct {
	backend   Authenticator
	loginPath string
}

// NewService creates a Service posting to loginPath. Panics if backend is
// nil.
func NewService(backend Authenticator, loginPath string) Service {
	if backend == nil {
		panic("auth.NewService: backend must not be nil")
	}
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &authService{backend: backend, loginPath: loginPath}
}

// Login exchanges the operator's credentials for a backend token. A
// rejected login surfaces as *api.Error with status 401.
func (s *authService) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	email = strings.TrimSpace(email)
	tok, err := s.backend.Login(ctx, s.loginPath, email, password)
	if err != nil {
		slog.WarnContext(ctx, "operator sign-in failed",
			slog.String("operator", email),
			slog.Int("status", api.StatusOf(err)),
		)
		return nil, err
	}
	slog.InfoContext(ctx, "operator signed in", slog.String("operator", email))
	return tok, nil
}
