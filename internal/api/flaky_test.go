package api

import (
	"net/http"
	"testing"

	"panel/internal/faultinject"
)

// The flaky endpoint should fail close to its configured 50% rate. A
// seeded source keeps the run reproducible; the tolerance band is wide
// enough that any healthy distribution passes.
func TestFlakyEndpointFailureRate(t *testing.T) {
	reg := NewRegistry(Options{Source: faultinject.NewSource(42)})
	server := newServerFor(t, reg)
	defer server.Close()

	const calls = 1000
	failures := 0
	for i := 0; i < calls; i++ {
		resp := doReq(t, server.URL, "", http.MethodGet, "/api/test/flaky", nil)
		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusServiceUnavailable:
			failures++
			if resp.Header.Get("Retry-After") != "1" {
				t.Fatalf("503 without Retry-After header")
			}
		default:
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
		_ = resp.Body.Close()
	}

	if failures < 400 || failures > 600 {
		t.Fatalf("failure count %d outside [400, 600] over %d calls", failures, calls)
	}
}

func TestFlakyEndpointCustomRate(t *testing.T) {
	reg := NewRegistry(Options{Source: faultinject.NewSource(7), FlakyPercent: 100})
	server := newServerFor(t, reg)
	defer server.Close()

	resp := doReq(t, server.URL, "", http.MethodGet, "/api/test/flaky", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected guaranteed 503, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}
