// Package notify is the panel-side notification center: a locally
// persisted notification list with a derived unread count, a bounded
// toast queue, and a simulated real-time feed.
package notify

import (
	"context"
	"database/sql"
	"sync"

	"github.com/rs/zerolog"

	"panel/internal/models"
)

// Remote is the slice of the API the center talks to. The resource
// client implements it; tests substitute fakes.
type Remote interface {
	FetchNotifications(ctx context.Context, page, limit int, category string, onlyUnread bool) ([]models.Notification, models.Page, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkNotificationUnread(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Center owns the notification list. All mutations are synchronous and
// last-write-wins under one mutex; the unread count is always computed
// from the list, never tracked separately.
type Center struct {
	mu       sync.Mutex
	list     []models.Notification
	lastErr  string
	database *sql.DB
	remote   Remote
	toasts   *Toasts
	log      zerolog.Logger
}

// NewCenter loads any persisted notifications before the first remote
// fetch, so consumers see stale data rather than nothing.
func NewCenter(database *sql.DB, remote Remote, toasts *Toasts, log zerolog.Logger) (*Center, error) {
	persisted, err := loadAll(database)
	if err != nil {
		return nil, err
	}
	return &Center{
		list:     persisted,
		database: database,
		remote:   remote,
		toasts:   toasts,
		log:      log,
	}, nil
}

// Notifications returns a copy of the current list.
func (c *Center) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.list...)
}

// UnreadCount derives the unread total from the list.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return countUnread(c.list)
}

func countUnread(list []models.Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// LastError returns the retained error from the most recent failed
// fetch, or empty after a success.
func (c *Center) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Toasts exposes the center's toast queue.
func (c *Center) Toasts() *Toasts {
	return c.toasts
}

// Fetch pulls a page from the remote API. Page 1 replaces the list,
// later pages append. On failure the prior list stays untouched and the
// error string is retained.
func (c *Center) Fetch(ctx context.Context, page, limit int, category string, onlyUnread bool) error {
	items, _, err := c.remote.FetchNotifications(ctx, page, limit, category, onlyUnread)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	c.lastErr = ""
	if page <= 1 {
		c.list = items
	} else {
		c.list = append(c.list, items...)
	}
	c.persistLocked()
	return nil
}

// MarkRead flips the flag locally first, then confirms remotely. A
// remote failure only raises a toast; the local state stands.
func (c *Center) MarkRead(ctx context.Context, id string) {
	c.setRead(ctx, id, true)
}

// MarkUnread is the permitted backward transition.
func (c *Center) MarkUnread(ctx context.Context, id string) {
	c.setRead(ctx, id, false)
}

func (c *Center) setRead(ctx context.Context, id string, read bool) {
	c.mu.Lock()
	for i := range c.list {
		if c.list[i].ID == id {
			c.list[i].IsRead = read
			break
		}
	}
	c.persistLocked()
	c.mu.Unlock()

	var err error
	if read {
		err = c.remote.MarkNotificationRead(ctx, id)
	} else {
		err = c.remote.MarkNotificationUnread(ctx, id)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("id", id).Msg("remote read-state update failed")
		c.toasts.Show(Toast{
			Message: "Could not sync notification state",
			Type:    models.NotificationWarning,
		})
	}
}

// Delete removes a notification only after the remote confirms.
func (c *Center) Delete(ctx context.Context, id string) error {
	if err := c.remote.DeleteNotification(ctx, id); err != nil {
		c.toasts.Show(Toast{
			Message: "Could not delete notification",
			Type:    models.NotificationError,
		})
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.list {
		if c.list[i].ID == id {
			c.list = append(c.list[:i], c.list[i+1:]...)
			break
		}
	}
	c.persistLocked()
	return nil
}

// MarkAllRead applies the bulk local mutation and issues one remote
// call. Safe to call repeatedly.
func (c *Center) MarkAllRead(ctx context.Context) {
	c.mu.Lock()
	for i := range c.list {
		c.list[i].IsRead = true
	}
	c.persistLocked()
	c.mu.Unlock()

	if err := c.remote.MarkAllNotificationsRead(ctx); err != nil {
		c.log.Warn().Err(err).Msg("remote mark-all-read failed")
		c.toasts.Show(Toast{
			Message: "Could not sync notification state",
			Type:    models.NotificationWarning,
		})
	}
}

// Add prepends a notification (the simulated feed's entry point) and
// raises its toast.
func (c *Center) Add(n models.Notification, action *ToastAction) {
	c.mu.Lock()
	c.list = append([]models.Notification{n}, c.list...)
	c.persistLocked()
	c.mu.Unlock()

	c.toasts.Show(Toast{
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		Action:  action,
	})
}

func (c *Center) persistLocked() {
	if err := persistAll(c.database, c.list); err != nil {
		c.log.Error().Err(err).Msg("failed to persist notifications")
	}
}
