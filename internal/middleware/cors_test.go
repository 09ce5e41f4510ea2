package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupCORSRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/api/v1/products", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.OPTIONS("/api/v1/products", func(c *gin.Context) { c.String(http.StatusOK, "unreachable") })
	return r
}

func corsRequest(r http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowOrigin(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		credentials bool
		origin      string
		want        string
	}{
		{"wildcard", []string{"*"}, false, "http://example.com", "*"},
		{"wildcard with credentials echoes", []string{"*"}, true, "http://example.com", "http://example.com"},
		{"listed origin", []string{"http://a.com", "http://b.com"}, false, "http://b.com", "http://b.com"},
		{"listed with trailing slash", []string{"http://a.com/"}, false, "http://a.com", "http://a.com"},
		{"unlisted origin", []string{"http://a.com"}, false, "http://c.com", ""},
		{"empty list denies", nil, false, "http://a.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowOrigins = tt.origins
			cfg.AllowCredentials = tt.credentials

			w := corsRequest(setupCORSRouter(cfg), http.MethodGet, tt.origin)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q; want %q", got, tt.want)
			}
			if w.Header().Get("Vary") != "Origin" {
				t.Errorf("Vary = %q", w.Header().Get("Vary"))
			}
			if tt.credentials && tt.want != "" && w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("missing Allow-Credentials")
			}
		})
	}
}

func TestCORS_HeadersAndMaxAge(t *testing.T) {
	w := corsRequest(setupCORSRouter(CORSConfig{AllowOrigins: []string{"*"}, MaxAge: 90 * time.Minute}), http.MethodGet, "http://example.com")

	if got := w.Header().Get("Access-Control-Max-Age"); got != "5400" {
		t.Errorf("Max-Age = %q; want 5400", got)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" || w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("defaults for methods and headers were not applied")
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
		t.Errorf("Expose-Headers = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	w := corsRequest(setupCORSRouter(DefaultCORSConfig()), http.MethodOptions, "http://example.com")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("preflight reached the handler: %q", w.Body.String())
	}
}

func TestCORS_NoOrigin(t *testing.T) {
	w := corsRequest(setupCORSRouter(DefaultCORSConfig()), http.MethodGet, "")
	if w.Header().Get("Access-Control-Allow-Origin") != "" || w.Header().Get("Vary") != "" {
		t.Errorf("same-origin request got CORS headers: %v", w.Header())
	}
}
