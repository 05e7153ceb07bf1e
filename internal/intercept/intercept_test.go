package intercept

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// recordingTransport stands in for the real network: it counts calls
// and answers every request with a fixed marker body.
type recordingTransport struct {
	calls int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.calls++
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"source":"network"}`)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

func testMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"source":"mock"}`))
	})
	return mux
}

func bodySource(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var payload struct {
		Source string `json:"source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return payload.Source
}

func TestInactiveRuntimePassesThrough(t *testing.T) {
	base := &recordingTransport{}
	rt := New(testMux(), base, zerolog.Nop())

	resp, err := rt.Client().Get("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := bodySource(t, resp); got != "network" {
		t.Fatalf("inactive runtime served %q", got)
	}
	if base.calls != 1 {
		t.Fatalf("base transport calls = %d", base.calls)
	}
}

func TestStartInterceptsMatchingRequests(t *testing.T) {
	base := &recordingTransport{}
	rt := New(testMux(), base, zerolog.Nop())
	rt.Start()
	rt.Start() // second start is a no-op

	resp, err := rt.Client().Get("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := bodySource(t, resp); got != "mock" {
		t.Fatalf("active runtime served %q", got)
	}
	if base.calls != 0 {
		t.Fatalf("matched request hit the network %d times", base.calls)
	}
}

func TestUnmatchedRequestFallsThrough(t *testing.T) {
	base := &recordingTransport{}
	rt := New(testMux(), base, zerolog.Nop())
	rt.Start()

	resp, err := rt.Client().Get("http://elsewhere.example/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := bodySource(t, resp); got != "network" {
		t.Fatalf("unmatched request served %q", got)
	}
	if base.calls != 1 {
		t.Fatalf("base transport calls = %d", base.calls)
	}
}

func TestOverrideAndReset(t *testing.T) {
	base := &recordingTransport{}
	rt := New(testMux(), base, zerolog.Nop())
	rt.Start()

	rt.Override(http.MethodGet, "/api/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"source":"override"}`))
	}))

	resp, err := rt.Client().Get("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("override status = %d", resp.StatusCode)
	}
	if got := bodySource(t, resp); got != "override" {
		t.Fatalf("override served %q", got)
	}

	// Overrides only apply to their exact method.
	head, err := rt.Client().Head("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.StatusCode != http.StatusOK {
		t.Fatalf("non-overridden method status = %d", head.StatusCode)
	}
	_ = head.Body.Close()

	rt.Reset()
	after, err := rt.Client().Get("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if got := bodySource(t, after); got != "mock" {
		t.Fatalf("reset runtime served %q", got)
	}
}

func TestStopRestoresPassThrough(t *testing.T) {
	base := &recordingTransport{}
	rt := New(testMux(), base, zerolog.Nop())
	rt.Start()
	rt.Stop()
	rt.Stop() // second stop is a no-op

	resp, err := rt.Client().Get("http://panel.local/api/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := bodySource(t, resp); got != "network" {
		t.Fatalf("stopped runtime served %q", got)
	}
}
