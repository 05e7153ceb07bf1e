package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"panel/internal/faultinject"
	"panel/internal/models"
)

// FeedConfig tunes the simulated real-time feed. Tests shrink the
// intervals; DefaultFeedConfig matches production pacing.
type FeedConfig struct {
	TickMin       time.Duration
	TickMax       time.Duration
	TickChance    float64
	DropChance    float64
	DropMin       time.Duration
	DropMax       time.Duration
	MaxReconnects int
	BackoffBase   time.Duration
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		TickMin:       30 * time.Second,
		TickMax:       60 * time.Second,
		TickChance:    30,
		DropChance:    10,
		DropMin:       5 * time.Second,
		DropMax:       15 * time.Second,
		MaxReconnects: 5,
		BackoffBase:   time.Second,
	}
}

// feedTemplates is the fixed set the feed synthesizes from.
var feedTemplates = []models.Notification{
	{
		Title:     "New invoice available",
		Message:   "A new invoice has been generated for your account.",
		Type:      models.NotificationInfo,
		Category:  "billing",
		Priority:  models.PriorityMedium,
		ActionURL: "/billing/invoices",
	},
	{
		Title:     "Support ticket updated",
		Message:   "A staff member replied to one of your open tickets.",
		Type:      models.NotificationSuccess,
		Category:  "support",
		Priority:  models.PriorityMedium,
		ActionURL: "/support/tickets",
	},
	{
		Title:    "Domain check complete",
		Message:  "Your scheduled domain health check finished without issues.",
		Type:     models.NotificationSuccess,
		Category: "domains",
		Priority: models.PriorityLow,
	},
	{
		Title:     "Unusual login detected",
		Message:   "A login from a new device was recorded on your account.",
		Type:      models.NotificationWarning,
		Category:  "account",
		Priority:  models.PriorityHigh,
		ActionURL: "/account/security",
	},
}

// Feed synthesizes notifications on a randomized timer and simulates
// connection loss with capped exponential-backoff reconnects. Connect
// starts it; Close releases the timer goroutine.
type Feed struct {
	center   *Center
	src      faultinject.Source
	cfg      FeedConfig
	navigate func(url string)
	log      zerolog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    sync.WaitGroup
	started bool
}

// NewFeed wires a feed to its center. navigate receives the actionUrl
// when the user invokes a toast's View action; nil disables the action.
func NewFeed(center *Center, src faultinject.Source, cfg FeedConfig, navigate func(url string), log zerolog.Logger) *Feed {
	if src == nil {
		src = faultinject.DefaultSource()
	}
	return &Feed{
		center:   center,
		src:      src,
		cfg:      cfg,
		navigate: navigate,
		log:      log,
	}
}

// Connect starts the feed goroutine. Reconnecting an already-connected
// feed is a no-op.
func (f *Feed) Connect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return
	}
	f.started = true
	f.stop = make(chan struct{})
	f.done.Add(1)
	go f.run(f.stop)
}

// Close stops the feed and waits for its goroutine to exit. Safe to
// call more than once.
func (f *Feed) Close() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	f.started = false
	close(f.stop)
	f.mu.Unlock()
	f.done.Wait()
}

func (f *Feed) run(stop chan struct{}) {
	defer f.done.Done()
	attempts := 0
	for {
		// One connected session: maybe schedule a simulated drop.
		var (
			dropTimer *time.Timer
			dropC     <-chan time.Time
		)
		if faultinject.ShouldFail(f.src, f.cfg.DropChance) {
			dropTimer = time.NewTimer(faultinject.Delay(f.src, f.cfg.DropMin, f.cfg.DropMax))
			dropC = dropTimer.C
		}
		f.log.Info().Msg("notification feed connected")

		dropped := false
		for !dropped {
			tick := time.NewTimer(faultinject.Delay(f.src, f.cfg.TickMin, f.cfg.TickMax))
			select {
			case <-stop:
				tick.Stop()
				if dropTimer != nil {
					dropTimer.Stop()
				}
				return
			case <-dropC:
				tick.Stop()
				dropped = true
			case <-tick.C:
				if faultinject.ShouldFail(f.src, f.cfg.TickChance) {
					f.emit()
				}
			}
		}

		f.log.Warn().Msg("notification feed connection lost")
		if attempts >= f.cfg.MaxReconnects {
			f.log.Error().Int("attempts", attempts).Msg("notification feed gave up reconnecting")
			return
		}
		backoff := f.cfg.BackoffBase << attempts
		attempts++
		reconnect := time.NewTimer(backoff)
		select {
		case <-stop:
			reconnect.Stop()
			return
		case <-reconnect.C:
		}
	}
}

func (f *Feed) emit() {
	template := feedTemplates[f.src.IntN(len(feedTemplates))]
	n := template
	n.ID = "ntf_" + uuid.NewString()[:8]
	n.Timestamp = time.Now().UTC().Format(time.RFC3339)

	var action *ToastAction
	if n.ActionURL != "" && f.navigate != nil {
		url := n.ActionURL
		action = &ToastAction{
			Label:  "View",
			Invoke: func() { f.navigate(url) },
		}
	}
	f.center.Add(n, action)
}
