// Package notify carries transient operator feedback (toasts).
package notify

import "sync"

// Toast types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

// Toast is one transient message shown to the operator.
type Toast struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Notifier receives toasts.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

// Notify calls f(t).
func (f NotifierFunc) Notify(t Toast) { f(t) }

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(Toast) {})

const defaultQueueSize = 16

// Queue buffers toasts until the next response drains them. When full, the
// oldest toast is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Toast
	limit int
}

// NewQueue creates a Queue holding at most limit toasts (16 when limit <= 0).
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = defaultQueueSize
	}
	return &Queue{limit: limit}
}

// Notify appends t.
func (q *Queue) Notify(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.limit {
		q.items = append(q.items[:0], q.items[1:]...)
	}
	q.items = append(q.items, t)
}

// Drain returns the buffered toasts in arrival order and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of buffered toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
