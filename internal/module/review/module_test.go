package review

import (
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// reviewBackend serves /reviews with pageNumber paging and the status
// filter.
type reviewBackend struct {
	mu      sync.Mutex
	reviews []domain.Review
	patches int
}

func (b *reviewBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/reviews":
		items := b.reviews
		if st := r.URL.Query().Get("status"); st != "" {
			items = slices.DeleteFunc(slices.Clone(items), func(rv domain.Review) bool { return rv.Status != st })
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"items":      items,
			"totalCount": len(items),
			"pageNumber": 1,
			"pageSize":   20,
			"totalPages": 1,
		}})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/reviews/"):
		b.patches++
		id := strings.TrimPrefix(r.URL.Path, "/reviews/")
		var in struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		i := slices.IndexFunc(b.reviews, func(rv domain.Review) bool { return rv.ID == id })
		if i < 0 {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "no such review"})
			return
		}
		b.reviews[i].Status = in.Status
		_ = json.NewEncoder(w).Encode(map[string]any{"data": b.reviews[i]})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

const stubTemplates = `{{define "resource/list.html"}}list{{range .Rows}} {{.ID}}{{end}}{{end}}` +
	`{{define "resource/table.html"}}table{{range .Rows}} {{.ID}}{{end}}{{end}}` +
	`{{define "errors/400.html"}}bad request{{end}}` +
	`{{define "errors/404.html"}}not found{{end}}` +
	`{{define "errors/500.html"}}failure{{end}}`

type testEnv struct {
	router  *gin.Engine
	backend *reviewBackend
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &reviewBackend{reviews: []domain.Review{
		{ID: "r1", CustomerName: "Ann", Rating: 5, Status: StatusPending},
		{ID: "r2", CustomerName: "Bo", Rating: 2, Status: StatusPending},
	}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: logger})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	mod := NewModule(resource.Deps{Client: client, Runner: action.NewRunner(action.Options{Logger: logger})})

	mgr := session.NewManager(session.Options{})
	s := mgr.Create()
	s.SignIn("ops@example.com", &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)})

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(stubTemplates)))
	r.Use(session.Middleware(mgr))
	mod.RegisterRoutes(
		r.Group("/api/v1", session.RequireCredential()),
		r.Group("/", session.RequireCredential()),
	)
	return &testEnv{router: r, backend: backend, cookie: &http.Cookie{Name: mgr.CookieName(), Value: s.ID}}
}

func (e *testEnv) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set(pkg.HeaderHXRequest, "true")
	}
	req.AddCookie(e.cookie)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestModeratePage_ReloadsFilteredQueue(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/reviews?status=pending", nil, false)
	if w.Code != http.StatusOK || w.Body.String() != "list r1 r2" {
		t.Fatalf("list = %d %q", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPatch, "/reviews/r1/status", url.Values{"status": {StatusApproved}}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if got := w.Body.String(); got != "table r2" {
		t.Errorf("body = %q; want the pending queue without r1", got)
	}
	if !strings.Contains(w.Header().Get(pkg.HeaderHXTrigger), "Review updated successfully") {
		t.Errorf("HX-Trigger = %q", w.Header().Get(pkg.HeaderHXTrigger))
	}
}

func TestModeratePage_PlainFormRedirects(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/reviews/r2/status", url.Values{"status": {StatusHidden}}, false)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/reviews" {
		t.Fatalf("got %d Location=%q", w.Code, w.Header().Get("Location"))
	}
	if env.backend.reviews[1].Status != StatusHidden {
		t.Errorf("status = %q; want hidden", env.backend.reviews[1].Status)
	}
}

func TestModeratePage_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPatch, "/reviews/r1/status", url.Values{"status": {StatusPending}}, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
	if w.Header().Get(pkg.HeaderHXReswap) != "none" {
		t.Error("a rejected moderation must not swap")
	}
	if env.backend.patches != 0 {
		t.Errorf("backend patched %d times; want 0", env.backend.patches)
	}
}

func TestModeratePage_BackendFailure(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPatch, "/reviews/missing/status", url.Values{"status": {StatusApproved}}, true)
	if w.Header().Get(pkg.HeaderHXReswap) != "none" {
		t.Errorf("HX-Reswap = %q; want none", w.Header().Get(pkg.HeaderHXReswap))
	}
	if !strings.Contains(w.Header().Get(pkg.HeaderHXTrigger), api.MessageNotFound) {
		t.Errorf("HX-Trigger = %q", w.Header().Get(pkg.HeaderHXTrigger))
	}
}

func TestModerate_API(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reviews/r1/status", strings.NewReader(`{"status":"hidden"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data domain.Review `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Status != StatusHidden {
		t.Errorf("status = %q; want hidden", resp.Data.Status)
	}
}

func TestNoCreateRoutes(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(http.MethodPost, "/reviews", url.Values{"status": {"pending"}}, false); w.Code != http.StatusNotFound {
		t.Errorf("POST /reviews = %d; want 404", w.Code)
	}
}

func TestRequests_Validation(t *testing.T) {
	if err := binding.Validator.ValidateStruct(&ModerationRequest{Status: StatusPending}); err == nil {
		t.Error("moderation cannot reset a review to pending")
	}
	if err := binding.Validator.ValidateStruct(&ReviewRequest{Status: StatusPending}); err != nil {
		t.Errorf("edit form rejected pending: %v", err)
	}
}

func TestStarsAndExcerpt(t *testing.T) {
	if got := stars(domain.Review{Rating: 3}); got != "★★★☆☆ (3)" {
		t.Errorf("stars = %q", got)
	}
	if got := stars(domain.Review{Rating: 9}); !strings.HasPrefix(got, "★★★★★ ") {
		t.Errorf("stars clamps, got %q", got)
	}
	if got := excerpt("abcdef", 4); got != "abc…" {
		t.Errorf("excerpt = %q", got)
	}
	if got := excerpt("abc", 4); got != "abc" {
		t.Errorf("excerpt = %q", got)
	}
}
