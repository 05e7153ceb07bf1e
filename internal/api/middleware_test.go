package api

import (
	"net/http"
	"testing"
)

func TestAuthGuardRunsBeforeValidation(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	// A garbage body must not reach the handler without a session.
	resp := doReq(t, server.URL, "", http.MethodPost, "/api/tickets", map[string]any{
		"subject": "x",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before validation, got %d", resp.StatusCode)
	}
	var payload struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Error != "missing bearer token" {
		t.Fatalf("unexpected error %q", payload.Error)
	}
}

func TestPaymentWritesAreRateLimited(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	// The payment-write window allows 10 requests a minute. Invalid
	// payloads count too: the limiter sits in front of the handler.
	var last *http.Response
	for i := 0; i < 11; i++ {
		last = doReq(t, server.URL, token, http.MethodPost, "/api/payment-methods", map[string]any{})
		if i < 10 {
			if last.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("request %d status = %d, want 422", i, last.StatusCode)
			}
			_ = last.Body.Close()
		}
	}
	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("11th payment write = %d, want 429", last.StatusCode)
	}
	if last.Header.Get("Retry-After") == "" {
		t.Fatal("429 without Retry-After")
	}
	if last.Header.Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected remaining header %q", last.Header.Get("X-RateLimit-Remaining"))
	}
	_ = last.Body.Close()

	// Reads ride a separate window and stay available.
	list := doReq(t, server.URL, token, http.MethodGet, "/api/payment-methods", nil)
	if list.StatusCode != http.StatusOK {
		t.Fatalf("read after write limit = %d", list.StatusCode)
	}
	_ = list.Body.Close()
}

func TestStatusEndpointIsPublic(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, "", http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint = %d", resp.StatusCode)
	}
	var payload struct {
		Status string `json:"status"`
		Mock   bool   `json:"mock"`
	}
	decodeJSON(t, resp, &payload)
	if payload.Status != "ok" || !payload.Mock {
		t.Fatalf("unexpected status payload: %+v", payload)
	}
}
