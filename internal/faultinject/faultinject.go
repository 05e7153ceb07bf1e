// Package faultinject draws the artificial latency and failure decisions
// the mock API uses to exercise client error paths.
package faultinject

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Source is the random stream behind every draw. Tests substitute a
// deterministic implementation.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// randSource guards a *rand.Rand so one Source can serve concurrent
// request handlers.
type randSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *randSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *randSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// NewSource returns a Source seeded from the given value.
func NewSource(seed int64) Source {
	return &randSource{r: rand.New(rand.NewSource(seed))}
}

// DefaultSource returns a time-seeded Source.
func DefaultSource() Source {
	return NewSource(time.Now().UnixNano())
}

// Delay returns a duration uniformly distributed in [min, max] inclusive.
// A min above max is treated as an empty range and returns min.
func Delay(src Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int(max-min) + 1
	return min + time.Duration(src.IntN(span))
}

// ShouldFail returns true with probability percent/100. Values outside
// [0, 100] are clamped.
func ShouldFail(src Source, percent float64) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Float64() < percent/100
}

// Class names the expected cost of an endpoint, which selects its
// simulated latency range.
type Class int

const (
	ClassRead Class = iota
	ClassWrite
	ClassPayment
)

var classRanges = map[Class][2]time.Duration{
	ClassRead:    {100 * time.Millisecond, 800 * time.Millisecond},
	ClassWrite:   {300 * time.Millisecond, 1200 * time.Millisecond},
	ClassPayment: {1500 * time.Millisecond, 2000 * time.Millisecond},
}

// Injector bundles a random source with a failure rate and a latency
// scale. A nil *Injector is valid and injects nothing, which keeps
// handler tests deterministic.
type Injector struct {
	src         Source
	failPercent float64
	scale       float64
}

// New returns an Injector failing with the given percentage. Scale
// multiplies every class latency range; tests pass 0 to skip waiting.
func New(src Source, failPercent, scale float64) *Injector {
	if src == nil {
		src = DefaultSource()
	}
	return &Injector{src: src, failPercent: failPercent, scale: scale}
}

// Wait sleeps a randomized duration for the given cost class, returning
// early with the context error if ctx is done first.
func (inj *Injector) Wait(ctx context.Context, class Class) error {
	if inj == nil || inj.scale <= 0 {
		return nil
	}
	r := classRanges[class]
	min := time.Duration(float64(r[0]) * inj.scale)
	max := time.Duration(float64(r[1]) * inj.scale)
	d := Delay(inj.src, min, max)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fail draws the transient-failure decision for one request.
func (inj *Injector) Fail() bool {
	if inj == nil {
		return false
	}
	return ShouldFail(inj.src, inj.failPercent)
}

// FailWith draws a failure decision at an explicit percentage, ignoring
// the injector's configured rate. Used by the flaky test endpoint.
func (inj *Injector) FailWith(percent float64) bool {
	if inj == nil {
		return false
	}
	return ShouldFail(inj.src, percent)
}
