package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"panel/internal/models"
)

const (
	// DefaultToastDuration is how long a toast stays up when the caller
	// did not choose one.
	DefaultToastDuration = 5 * time.Second
	// DefaultMaxToasts caps the queue; the oldest toast is evicted when
	// a new one would exceed it.
	DefaultMaxToasts = 5
)

// ToastAction is the single optional action a toast can carry, e.g.
// "View" or "Try Again".
type ToastAction struct {
	Label  string
	Invoke func()
}

// Toast is the ephemeral counterpart of a Notification: shown once,
// auto-dismissed, never persisted.
type Toast struct {
	ID       string
	Title    string
	Message  string
	Type     models.NotificationType
	Duration time.Duration
	Action   *ToastAction
}

// Toasts is the bounded toast queue. Display order follows insertion
// order; every toast gets a unique id.
type Toasts struct {
	mu     sync.Mutex
	items  []Toast
	max    int
	timers map[string]*time.Timer
	closed bool
}

func NewToasts(max int) *Toasts {
	if max <= 0 {
		max = DefaultMaxToasts
	}
	return &Toasts{
		max:    max,
		timers: map[string]*time.Timer{},
	}
}

// Show enqueues a toast, assigns its id, and schedules auto-removal
// after its duration. Returns the assigned id.
func (q *Toasts) Show(t Toast) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ""
	}
	t.ID = uuid.NewString()
	if t.Duration <= 0 {
		t.Duration = DefaultToastDuration
	}
	q.items = append(q.items, t)
	if len(q.items) > q.max {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.stopTimer(evicted.ID)
	}
	id := t.ID
	q.timers[id] = time.AfterFunc(t.Duration, func() {
		q.Dismiss(id)
	})
	return id
}

// Dismiss removes a toast immediately. Unknown ids are a no-op.
func (q *Toasts) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	q.stopTimer(id)
}

// Active returns the queued toasts in display order.
func (q *Toasts) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast(nil), q.items...)
}

// Close stops every pending auto-removal timer and empties the queue.
func (q *Toasts) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}

func (q *Toasts) stopTimer(id string) {
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
}
