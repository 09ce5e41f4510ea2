// Package session keeps per-operator console state in memory: the backend
// credential, pending toasts, the resource list slices and the last list
// query of every resource.
package session

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/store"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultCookieName = "shopadmin_session"
	DefaultTTL        = 8 * time.Hour
	DefaultMaxEntries = 1000
)

// Session is one operator's console state. Toasts and Slices are safe for
// concurrent use on their own; the remaining fields are reached through
// methods.
type Session struct {
	ID        string
	CreatedAt time.Time
	Toasts    *notify.Queue
	Slices    *store.Registry

	mu         sync.Mutex
	operator   string
	credential *oauth2.Token
	lastQuery  map[string]domain.PageRequest
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Toasts:    notify.NewQueue(0),
		Slices:    store.NewRegistry(),
		lastQuery: make(map[string]domain.PageRequest),
	}
}

// Operator returns the signed-in operator's login, or "".
func (s *Session) Operator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// Credential returns the backend bearer token, or nil.
func (s *Session) Credential() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Authenticated reports whether the session holds an unexpired credential.
func (s *Session) Authenticated() bool {
	return s.Credential().Valid()
}

// SignIn stores the operator and credential obtained from the backend.
func (s *Session) SignIn(operator string, tok *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operator = operator
	s.credential = tok
}

// SignOut drops the credential and every cached list, so a later sign-in
// starts from empty state.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.operator = ""
	s.credential = nil
	s.lastQuery = make(map[string]domain.PageRequest)
	s.mu.Unlock()

	s.Slices.Reset()
}

// SetLastQuery remembers the list request last rendered for resource.
func (s *Session) SetLastQuery(resource string, req domain.PageRequest) {
	req.Filter = maps.Clone(req.Filter)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery[resource] = req
}

// LastQuery returns the list request last rendered for resource.
func (s *Session) LastQuery(resource string) (domain.PageRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.lastQuery[resource]
	req.Filter = maps.Clone(req.Filter)
	return req, ok
}

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	CookieName string
	TTL        time.Duration
	MaxEntries int
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Manager stores sessions in a bounded LRU. A session expires TTL after it
// was last used; when MaxEntries is reached the least recently used one is
// evicted.
type Manager struct {
	sessions   *expirable.LRU[string, *Session]
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Manager{
		sessions:   expirable.NewLRU[string, *Session](opts.MaxEntries, nil, opts.TTL),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Create starts and stores a new session.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.now())
	m.sessions.Add(s.ID, s)
	return s
}

// Ephemeral returns a session that is never stored. It serves bearer-token
// API clients that do not keep cookies.
func (m *Manager) Ephemeral() *Session {
	return newSession(uuid.NewString(), m.now())
}

// Get returns the live session with id and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	m.sessions.Add(id, s)
	return s, true
}

// Destroy signs the session out and forgets it.
func (m *Manager) Destroy(s *Session) {
	if s == nil {
		return
	}
	s.SignOut()
	m.sessions.Remove(s.ID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}
