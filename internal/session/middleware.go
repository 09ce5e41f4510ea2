package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

const (
	contextKey = "session"
	// LoginPath is where unauthenticated page requests are sent.
	LoginPath = "/login"
)

// Middleware loads the session named by the cookie and stores it in
// gin.Context. Requests without a live session get an ephemeral one that is
// neither stored nor given a cookie; a session is only kept once an
// operator signs in (see Renew), so anonymous traffic cannot evict
// signed-in operators from the bounded store.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(m.cookieName)
		s, ok := m.Get(id)
		if !ok {
			s = m.Ephemeral()
		}
		Attach(c, s)
		c.Next()
	}
}

// Attach stores s as the request's session.
func Attach(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}

// From returns the session stored by Middleware, or nil.
func From(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

// Renew replaces the current session with a fresh one under a new id and
// cookie. Called on sign-in so an id handed out before login is not reused.
func (m *Manager) Renew(c *gin.Context) *Session {
	m.Destroy(From(c))
	s := m.Create()
	m.setCookie(c, s.ID)
	Attach(c, s)
	return s
}

// Terminate destroys the current session and expires its cookie.
func (m *Manager) Terminate(c *gin.Context) {
	m.Destroy(From(c))
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) setCookie(c *gin.Context, id string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireCredential admits requests that carry a valid backend credential
// and places it in the request context for the API client. API requests may
// send "Authorization: Bearer <token>"; otherwise the session credential is
// used.
//
// Unauthenticated API requests get 401 JSON, htmx requests an HX-Redirect to
// the login page and other page requests a redirect carrying the original
// path in "next".
func RequireCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := credential(c); ok {
			c.Request = c.Request.WithContext(api.WithCredential(c.Request.Context(), tok))
			c.Next()
			return
		}

		if s := From(c); s != nil && s.Credential() != nil {
			// Expired: drop it so the login page starts clean.
			s.SignOut()
		}

		switch {
		case isAPI(c):
			c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{
				Code:    http.StatusUnauthorized,
				Message: "unauthorized",
			})
		case pkg.IsHTMX(c):
			c.Header(pkg.HeaderHXRedirect, LoginPath)
			c.AbortWithStatus(http.StatusUnauthorized)
		default:
			target := LoginPath
			if c.Request.Method == http.MethodGet && c.Request.URL.Path != "/" {
				target += "?" + url.Values{"next": {c.Request.URL.RequestURI()}}.Encode()
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
		}
	}
}

// credential returns the bearer token of an API request, else the session
// credential. Only unexpired tokens are returned.
func credential(c *gin.Context) (*oauth2.Token, bool) {
	if isAPI(c) {
		if raw, ok := bearer(c); ok {
			return &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}, true
		}
	}
	if s := From(c); s != nil {
		if tok := s.Credential(); tok.Valid() {
			return tok, true
		}
	}
	return nil, false
}

func bearer(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
