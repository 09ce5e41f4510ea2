package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupRateLimitRouter(cfg RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/products", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func requestFrom(r http.Handler, addr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = addr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := setupRateLimitRouter(RateLimitConfig{RPS: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if w := requestFrom(r, "10.0.0.1:1234", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}

	w := requestFrom(r, "10.0.0.1:1234", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	r := setupRateLimitRouter(RateLimitConfig{RPS: 0.1, Burst: 1})

	if w := requestFrom(r, "10.0.0.1:1", nil); w.Code != http.StatusOK {
		t.Fatalf("first client: %d", w.Code)
	}
	if w := requestFrom(r, "10.0.0.1:2", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("same ip, other port: %d; want 429", w.Code)
	}
	if w := requestFrom(r, "10.0.0.2:1", nil); w.Code != http.StatusOK {
		t.Fatalf("second client: %d", w.Code)
	}
}

func TestRateLimit_HTMXToast(t *testing.T) {
	r := setupRateLimitRouter(RateLimitConfig{RPS: 0.1, Burst: 1})
	requestFrom(r, "10.0.0.3:1", nil)

	w := requestFrom(r, "10.0.0.3:1", map[string]string{"HX-Request": "true"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("HX-Trigger") == "" || w.Header().Get("HX-Reswap") != "none" {
		t.Errorf("htmx headers = %v", w.Header())
	}
}

func TestClientLimiters_Refill(t *testing.T) {
	l := newClientLimiters(RateLimitConfig{RPS: 10, Burst: 1})
	now := time.Now()

	if ok, _ := l.reserve("a", now); !ok {
		t.Fatal("first token denied")
	}
	ok, wait := l.reserve("a", now)
	if ok || wait <= 0 || wait > 100*time.Millisecond {
		t.Fatalf("second token: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := l.reserve("a", now.Add(150*time.Millisecond)); !ok {
		t.Error("token not refilled after 150ms at 10 rps")
	}
}

func TestClientLimiters_Bounded(t *testing.T) {
	l := newClientLimiters(RateLimitConfig{RPS: 1, Burst: 1, MaxClients: 2})
	now := time.Now()
	for _, k := range []string{"a", "b", "c"} {
		l.reserve(k, now)
	}
	if n := l.limiters.Len(); n != 2 {
		t.Errorf("tracked clients = %d; want 2", n)
	}
}
