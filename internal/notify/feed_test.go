package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panel/internal/faultinject"
)

// fastFeedConfig compresses the production pacing so a feed session
// runs in milliseconds.
func fastFeedConfig() FeedConfig {
	return FeedConfig{
		TickMin:       time.Millisecond,
		TickMax:       2 * time.Millisecond,
		TickChance:    100,
		DropChance:    0,
		DropMin:       time.Millisecond,
		DropMax:       2 * time.Millisecond,
		MaxReconnects: 1,
		BackoffBase:   time.Millisecond,
	}
}

func newFeedCenter(t *testing.T) (*Center, *Toasts) {
	t.Helper()
	center, toasts, _ := newTestCenter(t, &fakeRemote{})
	return center, toasts
}

func TestFeedEmitsNotifications(t *testing.T) {
	center, _ := newFeedCenter(t)

	var visited []string
	feed := NewFeed(center, faultinject.NewSource(1), fastFeedConfig(),
		func(url string) { visited = append(visited, url) }, zerolog.Nop())
	feed.Connect()
	defer feed.Close()

	deadline := time.Now().Add(2 * time.Second)
	for len(center.Notifications()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("feed emitted only %d notifications", len(center.Notifications()))
		}
		time.Sleep(2 * time.Millisecond)
	}
	feed.Close()

	for _, n := range center.Notifications() {
		assert.True(t, strings.HasPrefix(n.ID, "ntf_"), "feed id %q", n.ID)
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.Timestamp)
		assert.False(t, n.IsRead, "feed notifications arrive unseen")
	}
}

func TestFeedToastActionNavigates(t *testing.T) {
	center, toasts := newFeedCenter(t)

	var visited []string
	feed := NewFeed(center, faultinject.NewSource(3), fastFeedConfig(),
		func(url string) { visited = append(visited, url) }, zerolog.Nop())
	feed.Connect()
	defer feed.Close()

	// Wait for a toast that carries a View action; some templates have
	// no action URL, so emit until one shows up.
	deadline := time.Now().Add(2 * time.Second)
	var action *ToastAction
	for action == nil {
		if time.Now().After(deadline) {
			t.Fatal("no actionable toast arrived")
		}
		for _, toast := range toasts.Active() {
			if toast.Action != nil {
				action = toast.Action
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	feed.Close()

	assert.Equal(t, "View", action.Label)
	action.Invoke()
	require.Len(t, visited, 1)
	assert.True(t, strings.HasPrefix(visited[0], "/"), "navigate target %q", visited[0])
}

func TestFeedConnectIsIdempotent(t *testing.T) {
	center, _ := newFeedCenter(t)
	feed := NewFeed(center, faultinject.NewSource(5), fastFeedConfig(), nil, zerolog.Nop())

	feed.Connect()
	feed.Connect()
	feed.Close()
	feed.Close()
}

func TestFeedStopsAfterMaxReconnects(t *testing.T) {
	center, _ := newFeedCenter(t)

	cfg := fastFeedConfig()
	cfg.TickChance = 0
	cfg.DropChance = 100
	cfg.MaxReconnects = 2
	feed := NewFeed(center, faultinject.NewSource(7), cfg, nil, zerolog.Nop())
	feed.Connect()

	// Every session drops immediately, so the goroutine burns through
	// its reconnect budget and exits on its own. Close must not hang
	// either way.
	time.Sleep(100 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		feed.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close hung after the feed gave up")
	}
	assert.Empty(t, center.Notifications(), "drop-only config should emit nothing")
}
