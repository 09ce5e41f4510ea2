package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

const (
	csrfCookieName = "_csrf_token"
	// csrfFormField is reserved by pkg.ParsePageRequest and never becomes a
	// backend filter.
	csrfFormField  = "_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "CSRFToken"
)

// csrfGuard implements the double-submit cookie check. Tokens have the form
// nonce + "." + base64url(HMAC-SHA256(nonce, secret)).
type csrfGuard struct {
	secret []byte
	secure bool
}

// CSRF protects the page routes. Safe methods get a signed token cookie
// (readable by scripts so htmx can echo it) and the token in gin.Context
// for templates. Unsafe methods must echo the cookie value in the "_csrf"
// form field or the X-CSRF-Token header; mismatches are rejected with 403.
//
// The JSON API authenticates with bearer tokens and is not wrapped.
func CSRF(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, pkg.Response{
				Code:    http.StatusInternalServerError,
				Message: "csrf secret is required",
			})
		}
	}
	g := &csrfGuard{secret: []byte(secret), secure: gin.Mode() == gin.ReleaseMode}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			g.issue(c)
		default:
			g.verify(c)
		}
	}
}

func (g *csrfGuard) issue(c *gin.Context) {
	token, err := c.Cookie(csrfCookieName)
	if err != nil || !g.valid(token) {
		token = g.newToken()
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     csrfCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: false,
			Secure:   g.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	c.Set(csrfContextKey, token)
	c.Next()
}

func (g *csrfGuard) verify(c *gin.Context) {
	cookie, err := c.Cookie(csrfCookieName)
	if err != nil || cookie == "" {
		rejectCSRF(c, "CSRF token missing")
		return
	}
	submitted := c.GetHeader(csrfHeaderName)
	if submitted == "" {
		submitted = c.PostForm(csrfFormField)
	}
	if submitted == "" {
		rejectCSRF(c, "CSRF token missing")
		return
	}
	if !g.valid(cookie) || subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) != 1 {
		rejectCSRF(c, "CSRF token invalid")
		return
	}
	c.Set(csrfContextKey, cookie)
	c.Next()
}

func (g *csrfGuard) newToken() string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return nonce + "." + g.sign(nonce)
}

func (g *csrfGuard) sign(nonce string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *csrfGuard) valid(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(g.sign(nonce)))
}

// rejectCSRF answers 403. htmx callers also get an error toast, because the
// expired cookie is the usual cause and a reload fixes it.
func rejectCSRF(c *gin.Context, msg string) {
	if pkg.IsHTMX(c) {
		pkg.TriggerToast(c, notify.Toast{Type: notify.TypeError, Message: "Your form expired, reload the page and try again"})
		c.Header(pkg.HeaderHXReswap, "none")
	}
	c.AbortWithStatusJSON(http.StatusForbidden, pkg.Response{
		Code:    http.StatusForbidden,
		Message: msg,
	})
}

// GetCSRFToken returns the token set by CSRF, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}
