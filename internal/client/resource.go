package client

import (
	"net/url"
	"strconv"
	"sync"

	"panel/internal/models"
	"panel/internal/notify"
)

// ListParams is the common query surface of every collection endpoint.
type ListParams struct {
	Search    string
	Status    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (p ListParams) encode() string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		q.Set("sortOrder", p.SortOrder)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ToastSink receives mutation-failure toasts. The notification center's
// queue satisfies it; tests substitute a recorder.
type ToastSink interface {
	Show(t notify.Toast) string
}

// discardToasts is the sink used when a caller passes nil.
type discardToasts struct{}

func (discardToasts) Show(notify.Toast) string { return "" }

// collection is the shared fetch-state core of every resource accessor:
// items, page metadata, loading flag, error string, and the generation
// counter that discards stale responses.
type collection[T any] struct {
	mu      sync.Mutex
	items   []T
	page    models.Page
	loading bool
	err     string
	gen     uint64
}

// begin marks a fetch in flight and returns its generation. Only the
// response carrying the latest generation may apply.
func (c *collection[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loading = true
	return c.gen
}

// finish applies a fetch result unless a newer fetch was issued while
// this one was in flight. Reports whether the result was applied.
func (c *collection[T]) finish(gen uint64, items []T, page models.Page, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.loading = false
	if err != nil {
		c.err = err.Error()
		return true
	}
	c.err = ""
	c.items = items
	c.page = page
	return true
}

func (c *collection[T]) snapshot() ([]T, models.Page, bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...), c.page, c.loading, c.err
}
