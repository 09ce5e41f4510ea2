package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/shopadmin/internal/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), "request_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func doGet(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	w := doGet(setupRequestIDRouter(RequestIDConfig{}), "/test", nil)

	body := w.Body.String()
	if _, err := uuid.Parse(body); err != nil {
		t.Fatalf("request id %q is not a uuid: %v", body, err)
	}
	if got := w.Header().Get(requestIDHeader); got != body {
		t.Errorf("header %q = %q; want %q", requestIDHeader, got, body)
	}
}

func TestRequestID_UpstreamHeader(t *testing.T) {
	tests := []struct {
		name     string
		trust    bool
		upstream string
		reused   bool
	}{
		{"trusted valid", true, "upstream-id-123", true},
		{"trusted boundary 64", true, strings.Repeat("a", 64), true},
		{"trusted too long", true, strings.Repeat("a", 65), false},
		{"trusted bad charset", true, "bad_id", false},
		{"untrusted valid", false, "upstream-id-123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: tt.trust})
			body := doGet(r, "/test", map[string]string{requestIDHeader: tt.upstream}).Body.String()

			if tt.reused && body != tt.upstream {
				t.Errorf("id = %q; want upstream %q", body, tt.upstream)
			}
			if !tt.reused {
				if body == tt.upstream {
					t.Errorf("upstream id %q should not be reused", tt.upstream)
				}
				if _, err := uuid.Parse(body); err != nil {
					t.Errorf("generated id %q is not a uuid", body)
				}
			}
		})
	}
}

func TestRequestID_StoredInLogContext(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: true})
	w := doGet(r, "/ctx", map[string]string{requestIDHeader: "ctx-test-456"})

	if w.Body.String() != "ctx-test-456" {
		t.Errorf("request id in context = %q; want %q", w.Body.String(), "ctx-test-456")
	}
}

func TestRequestID_ForwardedToBackend(t *testing.T) {
	var got string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(requestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"1","description":"oily"}}`))
	}))
	defer backend.Close()

	client, err := api.NewClient(api.Options{BaseURL: backend.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	binding := api.NewBinding[map[string]any](client, api.Endpoint{Name: "skin-types", Path: "/skin-types"})

	r := gin.New()
	r.Use(RequestID(RequestIDConfig{TrustUpstream: true}))
	r.GET("/fetch", func(c *gin.Context) {
		if _, err := binding.GetByID(c.Request.Context(), "1"); err != nil {
			c.String(http.StatusBadGateway, err.Error())
			return
		}
		c.Status(http.StatusOK)
	})

	w := doGet(r, "/fetch", map[string]string{requestIDHeader: "forward-me"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
	}
	if got != "forward-me" {
		t.Errorf("backend saw request id %q; want %q", got, "forward-me")
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := doGet(r, "/test", nil).Body.String()
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	r := gin.New()
	r.GET("/no-id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	if body := doGet(r, "/no-id", nil).Body.String(); body != "" {
		t.Errorf("request id = %q; want empty", body)
	}
}
