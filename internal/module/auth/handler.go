package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/view"
)

const (
	loginTemplate      = "auth/login.html"
	backendDownMessage = "The shop backend is unavailable, please try again"
)

// AuthHandler serves the sign-in pages and the token endpoint.
type AuthHandler struct {
	svc      Service
	sessions *session.Manager
}

// NewHandler creates an AuthHandler.
func NewHandler(svc Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

// LoginPage renders the sign-in form. Signed-in operators go straight on.
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	next := safeNext(c.Query("next"))
	if s := session.From(c); s != nil && s.Credential().Valid() {
		c.Redirect(http.StatusFound, next)
		return
	}
	h.render(c, http.StatusOK, loginForm{Next: next})
}

// LoginSubmit signs the operator in and redirects to the requested page.
// POST /login
func (h *AuthHandler) LoginSubmit(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		fields, _ := pkg.FieldErrors(err, &req)
		h.render(c, http.StatusUnprocessableEntity, loginForm{
			Email:  req.Email,
			Next:   safeNext(req.Next),
			Errors: fields,
			Error:  "Please enter a valid email and password",
		})
		return
	}

	tok, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := api.StatusOf(err), api.MessageOf(err)
		switch {
		case status == 0 || status >= http.StatusInternalServerError:
			status, msg = http.StatusBadGateway, backendDownMessage
		case msg == "":
			msg = "Sign-in failed"
		}
		h.render(c, status, loginForm{Email: req.Email, Next: safeNext(req.Next), Error: msg})
		return
	}

	s := h.sessions.Renew(c)
	s.SignIn(strings.TrimSpace(req.Email), tok)
	pkg.Redirect(c, safeNext(req.Next))
}

// Logout drops the credential and the whole session state.
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if s := session.From(c); s != nil {
		slog.InfoContext(c.Request.Context(), "operator signed out", slog.String("operator", s.Operator()))
	}
	h.sessions.Terminate(c)
	pkg.Redirect(c, session.LoginPath)
}

// Token handles POST /api/v1/auth/login for API and CLI clients. The
// session is left untouched; clients send the token as a bearer header.
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	tok, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	resp := TokenResponse{Token: tok.AccessToken}
	if !tok.Expiry.IsZero() {
		resp.ExpiresAt = tok.Expiry.Unix()
	}
	pkg.Success(c, resp)
}

type loginForm struct {
	Email  string
	Next   string
	Errors map[string]string
	Error  string
}

func (h *AuthHandler) render(c *gin.Context, status int, f loginForm) {
	view.Render(c, status, loginTemplate, gin.H{
		"Title":  "Sign in",
		"Email":  f.Email,
		"Next":   f.Next,
		"Errors": f.Errors,
		"Error":  f.Error,
	})
}

// safeNext keeps next only when it is a local path other than the login
// page itself.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Path == session.LoginPath {
		return "/"
	}
	return next
}
