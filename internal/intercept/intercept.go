// Package intercept installs the mock API in front of an http.Client:
// a RoundTripper that serves matching requests in-process from the
// endpoint registry and passes everything else through to the real
// network. One Runtime per process entry; tests build isolated ones.
package intercept

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/rs/zerolog"
)

// Runtime routes outgoing requests to the mock registry while started.
// The zero Runtime is not usable; construct with New.
type Runtime struct {
	mu        sync.Mutex
	mux       *http.ServeMux
	overrides map[string]http.Handler
	base      http.RoundTripper
	active    bool
	log       zerolog.Logger
}

// New wraps the registry router. base handles pass-through traffic; nil
// means http.DefaultTransport.
func New(mux *http.ServeMux, base http.RoundTripper, log zerolog.Logger) *Runtime {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Runtime{
		mux:       mux,
		overrides: map[string]http.Handler{},
		base:      base,
		log:       log,
	}
}

// Start activates interception. Calling it again while active is a no-op.
func (rt *Runtime) Start() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.active {
		return
	}
	rt.active = true
	rt.log.Info().Msg("mock interception started")
}

// Stop deactivates interception; subsequent requests pass through to the
// real transport. Used for test isolation.
func (rt *Runtime) Stop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !rt.active {
		return
	}
	rt.active = false
	rt.log.Info().Msg("mock interception stopped")
}

// Reset drops every ad hoc override, restoring the base registry.
func (rt *Runtime) Reset() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.overrides = map[string]http.Handler{}
	rt.log.Debug().Msg("mock overrides cleared")
}

// Override routes method+path to a bespoke handler until Reset. Meant
// for tests that need one endpoint to misbehave.
func (rt *Runtime) Override(method, path string, h http.Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.overrides[method+" "+path] = h
}

// Client returns an http.Client whose transport is this runtime.
func (rt *Runtime) Client() *http.Client {
	return &http.Client{Transport: rt}
}

// RoundTrip implements http.RoundTripper. Matched requests never touch
// the network; unmatched ones are logged and forwarded.
func (rt *Runtime) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	active := rt.active
	override := rt.overrides[req.Method+" "+req.URL.Path]
	rt.mu.Unlock()

	if !active {
		return rt.base.RoundTrip(req)
	}

	rt.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("request intercepted")

	if override != nil {
		rt.log.Debug().Str("path", req.URL.Path).Msg("override matched")
		return serve(override, req), nil
	}

	if _, pattern := rt.mux.Handler(req); pattern != "" {
		rt.log.Debug().Str("pattern", pattern).Msg("registry matched")
		return serve(rt.mux, req), nil
	}

	rt.log.Warn().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("unhandled request, passing through")
	return rt.base.RoundTrip(req)
}

func serve(h http.Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp
}
