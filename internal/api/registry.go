// Package api implements the simulated customer-panel backend: a registry
// of endpoint handlers over fixed seed fixtures, with bearer-session auth,
// sliding-window rate limits, and injected latency and transient failures.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"panel/internal/auth"
	"panel/internal/faultinject"
	"panel/internal/models"
	"panel/internal/ratelimit"
)

// Options tunes a Registry. The zero value is usable for tests: no
// injected latency, no injected failures.
type Options struct {
	// FailPercent is the probability, in percent, that a request which
	// passed validation is answered with an injected 500/503.
	FailPercent float64
	// LatencyScale multiplies every cost-class delay range. Zero skips
	// the artificial wait entirely.
	LatencyScale float64
	// FlakyPercent is the failure rate of the dedicated test endpoint.
	// Zero means the configured default of 50.
	FlakyPercent float64
	// Source supplies randomness; nil gets a time-seeded source.
	Source faultinject.Source
	// Logger receives request-lifecycle diagnostics.
	Logger zerolog.Logger
}

// Registry holds the simulated backend's whole world: seed fixtures,
// live sessions, the limiter, and the fault injector. Construct one per
// test for isolation; mutations stay in memory for the process lifetime.
type Registry struct {
	mu       sync.Mutex
	users    []userRecord
	domains  []models.Domain
	invoices []models.Invoice
	payments []models.PaymentMethod
	tickets  []models.Ticket
	notifs   []models.Notification

	sessions *auth.Sessions
	limiter  *ratelimit.Limiter
	inject   *faultinject.Injector
	flakyPct float64
	log      zerolog.Logger
}

// userRecord pairs a profile with its mock credential. Passwords are
// plaintext seeds; nothing here outlives the process.
type userRecord struct {
	user     models.User
	password string
}

func NewRegistry(opts Options) *Registry {
	src := opts.Source
	if src == nil {
		src = faultinject.DefaultSource()
	}
	flaky := opts.FlakyPercent
	if flaky == 0 {
		flaky = 50
	}
	reg := &Registry{
		sessions: auth.NewSessions(),
		limiter:  ratelimit.NewLimiter(),
		inject:   faultinject.New(src, opts.FailPercent, opts.LatencyScale),
		flakyPct: flaky,
		log:      opts.Logger,
	}
	reg.loadSeeds()
	return reg
}

// Login validates credentials and issues a session token. Used by the
// login handler and directly by tests that need an authenticated client.
func (reg *Registry) Login(email, password string) (string, models.User, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, rec := range reg.users {
		if rec.user.Email == email && rec.password == password {
			token, err := reg.sessions.Issue(rec.user.ID)
			if err != nil {
				return "", models.User{}, false
			}
			return token, rec.user, true
		}
	}
	return "", models.User{}, false
}

func (reg *Registry) userByID(id string) (models.User, bool) {
	for _, rec := range reg.users {
		if rec.user.ID == id {
			return rec.user, true
		}
	}
	return models.User{}, false
}

// injectFailure draws the transient-failure decision for one request and,
// when it hits, writes a 500 or 503 (the latter with a Retry-After hint).
// Returns true if the response has been written.
func (reg *Registry) injectFailure(w http.ResponseWriter, r *http.Request) bool {
	if !reg.inject.Fail() {
		return false
	}
	if reg.inject.FailWith(50) {
		w.Header().Set("Retry-After", "30")
		reg.logResponse(r, http.StatusServiceUnavailable)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return true
	}
	reg.logResponse(r, http.StatusInternalServerError)
	writeError(w, http.StatusInternalServerError, "internal server error")
	return true
}

func (reg *Registry) logResponse(r *http.Request, status int) {
	reg.log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("mock response")
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
