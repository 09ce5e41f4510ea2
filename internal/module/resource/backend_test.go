package resource

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
)

type widget struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// fakeBackend is an in-memory /widgets endpoint speaking the items
// envelope with Page/PageSize paging.
type fakeBackend struct {
	mu      sync.Mutex
	widgets []widget
	nextID  int
	calls   int
	queries []url.Values
	// fail makes the next request answer with this status and body.
	failStatus int
	failBody   any
}

func newFakeBackend(widgets ...widget) *fakeBackend {
	return &fakeBackend{widgets: widgets, nextID: len(widgets) + 1}
}

func (b *fakeBackend) failNext(status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failStatus, b.failBody = status, body
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *fakeBackend) lastQuery() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) == 0 {
		return nil
	}
	return b.queries[len(b.queries)-1]
}

func (b *fakeBackend) ids() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, len(b.widgets))
	for i, w := range b.widgets {
		ids[i] = w.ID
	}
	return ids
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++

	if b.failStatus != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.failStatus)
		_ = json.NewEncoder(w).Encode(b.failBody)
		b.failStatus, b.failBody = 0, nil
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets", b.list)
	mux.HandleFunc("GET /widgets/{id}", b.get)
	mux.HandleFunc("POST /widgets", b.create)
	mux.HandleFunc("PATCH /widgets/{id}", b.update)
	mux.HandleFunc("DELETE /widgets/{id}", b.remove)
	mux.ServeHTTP(w, r)
}

func (b *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b.queries = append(b.queries, q)

	page, _ := strconv.Atoi(q.Get("Page"))
	size, _ := strconv.Atoi(q.Get("PageSize"))
	page, size = max(page, 1), max(size, 1)

	items := b.widgets
	if color := q.Get("color"); color != "" {
		items = slices.DeleteFunc(slices.Clone(items), func(w widget) bool { return w.Color != color })
	}
	total := len(items)
	start := min((page-1)*size, total)
	end := min(start+size, total)

	writeData(w, http.StatusOK, map[string]any{
		"items":      items[start:end],
		"totalCount": total,
		"pageNumber": page,
		"pageSize":   size,
		"totalPages": (total + size - 1) / size,
	})
}

func (b *fakeBackend) index(id string) int {
	return slices.IndexFunc(b.widgets, func(w widget) bool { return w.ID == id })
}

func (b *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	i := b.index(r.PathValue("id"))
	if i < 0 {
		writeData(w, http.StatusNotFound, nil)
		return
	}
	writeData(w, http.StatusOK, b.widgets[i])
}

func (b *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var in widget
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeData(w, http.StatusBadRequest, nil)
		return
	}
	in.ID = fmt.Sprintf("w%d", b.nextID)
	b.nextID++
	b.widgets = append([]widget{in}, b.widgets...)
	writeData(w, http.StatusCreated, in)
}

func (b *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	i := b.index(r.PathValue("id"))
	if i < 0 {
		writeData(w, http.StatusNotFound, nil)
		return
	}
	var in widget
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeData(w, http.StatusBadRequest, nil)
		return
	}
	in.ID = b.widgets[i].ID
	b.widgets[i] = in
	writeData(w, http.StatusOK, in)
}

func (b *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	i := b.index(r.PathValue("id"))
	if i < 0 {
		writeData(w, http.StatusNotFound, nil)
		return
	}
	b.widgets = slices.Delete(b.widgets, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}
