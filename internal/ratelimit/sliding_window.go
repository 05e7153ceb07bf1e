// Package ratelimit implements the sliding-window limiter behind the mock
// API's 429 responses.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Rule names one limited bucket: how many events fit in the window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

type Limiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		history: map[string][]time.Time{},
	}
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window frees a slot,
// never below one.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// ApplyHeaders writes the X-RateLimit-* trio onto a response.
func (r Result) ApplyHeaders(h http.Header) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(r.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(r.ResetAt.Unix(), 10))
}

// Allow records one event against key under rule and reports whether it
// fit inside the window. A non-positive limit disables the rule.
func (l *Limiter) Allow(key string, rule Rule, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rule.Limit <= 0 {
		return Result{Allowed: true}
	}
	cutoff := now.Add(-rule.Window)
	events := l.history[key]
	trimmed := events[:0]
	for _, ts := range events {
		if !ts.Before(cutoff) {
			trimmed = append(trimmed, ts)
		}
	}
	events = trimmed

	result := Result{
		Allowed: len(events) < rule.Limit,
		Limit:   rule.Limit,
	}
	if !result.Allowed {
		result.Remaining = 0
		result.ResetAt = events[0].Add(rule.Window)
		l.history[key] = events
		return result
	}

	events = append(events, now)
	l.history[key] = events
	result.Remaining = rule.Limit - len(events)
	result.ResetAt = events[0].Add(rule.Window)
	return result
}

// Reset clears all recorded history, returning every bucket to empty.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = map[string][]time.Time{}
}
