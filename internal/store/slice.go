// Package store holds per-resource list state and reduces the
// pending/fulfilled/rejected transitions of backend actions into it.
package store

import (
	"slices"
	"sync"

	"github.com/simp-lee/shopadmin/internal/domain"
)

// Kind classifies the action a ticket was issued for.
type Kind int

const (
	KindList Kind = iota
	KindGet
	KindCreate
	KindUpdate
	KindDelete
)

// KeyFunc returns the identity of a record. Most resources use their id;
// some are identified by a business field.
type KeyFunc[T any] func(T) string

// State is a point-in-time copy of a slice.
type State[T any] struct {
	Items      []T    `json:"items"`
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
	TotalCount int64  `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
}

// Ticket identifies one dispatched action. Each ticket settles at most once.
type Ticket struct {
	kind Kind
	seq  uint64
}

// Kind returns the action kind the ticket was issued for.
func (t Ticket) Kind() Kind { return t.kind }

// Slice is the in-memory state of one resource list. It is safe for
// concurrent use; several actions may be in flight at once.
type Slice[T any] struct {
	mu    sync.Mutex
	key   KeyFunc[T]
	state State[T]

	seq        uint64
	latestList uint64
	open       map[uint64]struct{}
}

// New creates an empty slice that identifies records with key.
func New[T any](key KeyFunc[T]) *Slice[T] {
	if key == nil {
		panic("store.New: key func must not be nil")
	}
	return &Slice[T]{
		key:   key,
		state: State[T]{Items: []T{}},
		open:  make(map[uint64]struct{}),
	}
}

// Begin records a pending action: loading is set and the error cleared.
// Items are left in place so the previous page stays visible.
func (s *Slice[T]) Begin(kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := Ticket{kind: kind, seq: s.seq}
	s.open[t.seq] = struct{}{}
	if kind == KindList {
		s.latestList = t.seq
	}
	s.state.Loading = true
	s.state.Error = ""
	return t
}

// settle closes t. It reports false when t was already settled or was
// invalidated by Reset.
func (s *Slice[T]) settle(t Ticket) bool {
	if _, ok := s.open[t.seq]; !ok {
		return false
	}
	delete(s.open, t.seq)
	s.state.Loading = len(s.open) > 0
	return true
}

func (s *Slice[T]) stale(t Ticket) bool {
	return t.kind == KindList && t.seq != s.latestList
}

// FulfillList replaces the items and pagination with page. It reports false
// and discards the payload when a newer list action was dispatched after t.
func (s *Slice[T]) FulfillList(t Ticket, page domain.Page[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settle(t) || s.stale(t) {
		return false
	}
	items := slices.Clone(page.Items)
	if items == nil {
		items = []T{}
	}
	s.state.Items = items
	s.state.PageNumber = page.PageNumber
	s.state.PageSize = page.PageSize
	s.state.TotalCount = page.TotalCount
	s.state.TotalPages = page.TotalPages
	s.state.Error = ""
	return true
}

// FulfillGet settles a get-by-id action. The fetched record is not stored.
func (s *Slice[T]) FulfillGet(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settle(t) {
		s.state.Error = ""
	}
}

// FulfillCreate prepends rec to the items. No deduplication is performed.
func (s *Slice[T]) FulfillCreate(t Ticket, rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settle(t) {
		return
	}
	s.state.Items = slices.Insert(slices.Clone(s.state.Items), 0, rec)
	s.state.Error = ""
}

// FulfillUpdate replaces the first item with the given key by rec. key is
// the item's key before the update, so a renamed business key still
// matches. It reports whether an item was replaced.
func (s *Slice[T]) FulfillUpdate(t Ticket, key string, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settle(t) {
		return false
	}
	s.state.Error = ""
	i := s.indexOf(key)
	if i < 0 {
		return false
	}
	items := slices.Clone(s.state.Items)
	items[i] = rec
	s.state.Items = items
	return true
}

// FulfillDelete removes the first item with the given key. It reports
// whether an item was removed.
func (s *Slice[T]) FulfillDelete(t Ticket, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settle(t) {
		return false
	}
	s.state.Error = ""
	i := s.indexOf(key)
	if i < 0 {
		return false
	}
	s.state.Items = slices.Delete(slices.Clone(s.state.Items), i, i+1)
	return true
}

// Reject records a failed action. Items are left untouched. A rejection of
// a superseded list action is ignored and reported as false.
func (s *Slice[T]) Reject(t Ticket, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settle(t) || s.stale(t) {
		return false
	}
	s.state.Error = message
	return true
}

// Duplicates counts the items sharing key. Values above one mean
// update/delete reconciliation by that key is ambiguous.
func (s *Slice[T]) Duplicates(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.state.Items {
		if s.key(it) == key {
			n++
		}
	}
	return n
}

// Key returns the identity of rec.
func (s *Slice[T]) Key(rec T) string {
	return s.key(rec)
}

// Snapshot returns a copy of the current state.
func (s *Slice[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}

// Reset restores the empty defaults. Outstanding tickets become no-ops.
func (s *Slice[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State[T]{Items: []T{}}
	clear(s.open)
	s.latestList = 0
}

func (s *Slice[T]) indexOf(key string) int {
	return slices.IndexFunc(s.state.Items, func(it T) bool {
		return s.key(it) == key
	})
}
