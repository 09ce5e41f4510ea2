package auth

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/session"
)

// mockService implements Service for handler testing.
type mockService struct {
	tok   *oauth2.Token
	err   error
	calls int
}

func (m *mockService) Login(_ context.Context, _, _ string) (*oauth2.Token, error) {
	m.calls++
	return m.tok, m.err
}

const loginStub = `{{define "auth/login.html"}}login next={{.Next}} email={{.Email}}{{if .Error}} error={{.Error}}{{end}}{{range $k, $v := .Errors}} {{$k}}:{{$v}}{{end}}{{end}}`

func setupAuthRouter(svc Service) (*gin.Engine, *session.Manager) {
	gin.SetMode(gin.TestMode)
	mgr := session.NewManager(session.Options{})
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(loginStub)))
	r.Use(session.Middleware(mgr))
	NewModule(NewHandler(svc, mgr)).RegisterRoutes(r.Group("/api/v1"), r.Group("/"))
	return r, mgr
}

func postForm(r http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieOf(mgr *session.Manager, w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == mgr.CookieName() && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	r, _ := setupAuthRouter(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/login?next=/orders%3Fstatus%3Dpending", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "login next=/orders?status=pending email=" {
		t.Errorf("body = %q", got)
	}
}

func TestLoginPage_SignedInRedirects(t *testing.T) {
	r, mgr := setupAuthRouter(&mockService{})
	s := mgr.Create()
	s.SignIn("ops@example.com", &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: mgr.CookieName(), Value: s.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("got %d Location=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginSubmit_Success(t *testing.T) {
	svc := &mockService{tok: &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}}
	r, mgr := setupAuthRouter(svc)
	before := mgr.Create()

	w := postForm(r, "/login", url.Values{
		"email":    {"ops@example.com"},
		"password": {"secret1"},
		"next":     {"/products?page=2"},
	}, &http.Cookie{Name: mgr.CookieName(), Value: before.ID})

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/products?page=2" {
		t.Fatalf("got %d Location=%q", w.Code, w.Header().Get("Location"))
	}
	c := cookieOf(mgr, w)
	if c == nil || c.Value == before.ID {
		t.Fatalf("session id not renewed: %+v", c)
	}
	s, ok := mgr.Get(c.Value)
	if !ok || !s.Authenticated() || s.Operator() != "ops@example.com" {
		t.Errorf("session not signed in: ok=%v", ok)
	}
	if _, ok := mgr.Get(before.ID); ok {
		t.Error("pre-login session survived")
	}
}

func TestLoginSubmit_Invalid(t *testing.T) {
	svc := &mockService{}
	r, _ := setupAuthRouter(svc)

	w := postForm(r, "/login", url.Values{"email": {"not-an-email"}, "password": {"x"}}, nil)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"email=not-an-email", "email:", "password:"} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
	if svc.calls != 0 {
		t.Error("backend called for an invalid form")
	}
}

func TestLoginSubmit_BackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "bad credentials",
			err:        &api.Error{Status: http.StatusUnauthorized, Message: api.MessageUnauthorized},
			wantStatus: http.StatusUnauthorized,
			wantError:  api.MessageUnauthorized,
		},
		{
			name:       "locked account",
			err:        &api.Error{Status: http.StatusForbidden, Message: "Account locked"},
			wantStatus: http.StatusForbidden,
			wantError:  "Account locked",
		},
		{
			name:       "unreachable",
			err:        &api.Error{Transport: true, Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantError:  backendDownMessage,
		},
		{
			name:       "server error",
			err:        &api.Error{Status: http.StatusInternalServerError, Message: api.MessageServerError},
			wantStatus: http.StatusBadGateway,
			wantError:  backendDownMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mgr := setupAuthRouter(&mockService{err: tt.err})
			w := postForm(r, "/login", url.Values{"email": {"ops@example.com"}, "password": {"secret1"}}, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), "error="+tt.wantError) {
				t.Errorf("body = %q", w.Body.String())
			}
			if c := cookieOf(mgr, w); c != nil {
				if s, ok := mgr.Get(c.Value); ok && s.Authenticated() {
					t.Error("failed login signed the session in")
				}
			}
		})
	}
}

func TestLogout(t *testing.T) {
	r, mgr := setupAuthRouter(&mockService{})
	s := mgr.Create()
	s.SignIn("ops@example.com", &oauth2.Token{AccessToken: "tok"})

	w := postForm(r, "/logout", url.Values{}, &http.Cookie{Name: mgr.CookieName(), Value: s.ID})

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != session.LoginPath {
		t.Fatalf("got %d Location=%q", w.Code, w.Header().Get("Location"))
	}
	if s.Authenticated() {
		t.Error("credential survived logout")
	}
	if _, ok := mgr.Get(s.ID); ok {
		t.Error("session survived logout")
	}
}

func TestToken(t *testing.T) {
	expiry := time.Unix(1700000000, 0)
	r, _ := setupAuthRouter(&mockService{tok: &oauth2.Token{AccessToken: "tok-123", Expiry: expiry}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ops@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Token != "tok-123" || resp.Data.ExpiresAt != 1700000000 {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestToken_Unauthorized(t *testing.T) {
	r, _ := setupAuthRouter(&mockService{err: &api.Error{Status: http.StatusUnauthorized, Message: api.MessageUnauthorized}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ops@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", w.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                    "/",
		"/orders":             "/orders",
		"/orders?status=paid": "/orders?status=paid",
		"//evil.example.com":  "/",
		"https://evil.com/x":  "/",
		`/\evil.com`:          "/",
		"orders":              "/",
		"/login":              "/",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q; want %q", in, got, want)
		}
	}
}
