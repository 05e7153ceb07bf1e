package api

import (
	"net/http"
	"testing"

	"panel/internal/models"
)

type domainListPayload struct {
	Domains    []models.Domain `json:"domains"`
	Pagination models.Page     `json:"pagination"`
}

func TestDomainsRequireAuth(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, "", http.MethodGet, "/api/domains", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	bogus := doReq(t, server.URL, "pnl_sess_notreal", http.MethodGet, "/api/domains", nil)
	if bogus.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bogus token, got %d", bogus.StatusCode)
	}
	_ = bogus.Body.Close()
}

func TestDomainsListFilterAndSort(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodGet, "/api/domains", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var all domainListPayload
	decodeJSON(t, resp, &all)
	if len(all.Domains) != 5 || all.Pagination.TotalCount != 5 {
		t.Fatalf("expected 5 seeded domains, got %d (total %d)", len(all.Domains), all.Pagination.TotalCount)
	}
	// Default ordering is by name ascending.
	for i := 1; i < len(all.Domains); i++ {
		if all.Domains[i-1].Name > all.Domains[i].Name {
			t.Fatalf("domains not sorted by name: %q before %q", all.Domains[i-1].Name, all.Domains[i].Name)
		}
	}

	active := doReq(t, server.URL, token, http.MethodGet, "/api/domains?status=active", nil)
	var filtered domainListPayload
	decodeJSON(t, active, &filtered)
	if len(filtered.Domains) != 2 {
		t.Fatalf("expected 2 active domains, got %d", len(filtered.Domains))
	}
	for _, d := range filtered.Domains {
		if d.Status != models.DomainActive {
			t.Fatalf("status filter leaked %s", d.Status)
		}
	}

	search := doReq(t, server.URL, token, http.MethodGet, "/api/domains?search=WHITFIELD", nil)
	var found domainListPayload
	decodeJSON(t, search, &found)
	if len(found.Domains) != 2 {
		t.Fatalf("case-insensitive search expected 2 hits, got %d", len(found.Domains))
	}

	desc := doReq(t, server.URL, token, http.MethodGet, "/api/domains?sortBy=expiresAt&sortOrder=desc", nil)
	var sorted domainListPayload
	decodeJSON(t, desc, &sorted)
	for i := 1; i < len(sorted.Domains); i++ {
		if sorted.Domains[i-1].ExpiresAt < sorted.Domains[i].ExpiresAt {
			t.Fatalf("expiresAt not descending at index %d", i)
		}
	}

	badSort := doReq(t, server.URL, token, http.MethodGet, "/api/domains?sortBy=nope", nil)
	if badSort.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort field, got %d", badSort.StatusCode)
	}
	_ = badSort.Body.Close()
}

func TestDomainsPagination(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	first := doReq(t, server.URL, token, http.MethodGet, "/api/domains?page=1&limit=2", nil)
	var p1 domainListPayload
	decodeJSON(t, first, &p1)
	if len(p1.Domains) != 2 {
		t.Fatalf("page 1 expected 2 items, got %d", len(p1.Domains))
	}
	if !p1.Pagination.HasNext || p1.Pagination.HasPrev {
		t.Fatalf("unexpected page 1 meta: %+v", p1.Pagination)
	}
	if p1.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", p1.Pagination.TotalPages)
	}

	last := doReq(t, server.URL, token, http.MethodGet, "/api/domains?page=3&limit=2", nil)
	var p3 domainListPayload
	decodeJSON(t, last, &p3)
	if len(p3.Domains) != 1 {
		t.Fatalf("page 3 expected 1 item, got %d", len(p3.Domains))
	}
	if p3.Pagination.HasNext || !p3.Pagination.HasPrev {
		t.Fatalf("unexpected page 3 meta: %+v", p3.Pagination)
	}

	// Requesting past the final page is not an error.
	beyond := doReq(t, server.URL, token, http.MethodGet, "/api/domains?page=9&limit=2", nil)
	if beyond.StatusCode != http.StatusOK {
		t.Fatalf("page beyond end status = %d", beyond.StatusCode)
	}
	var empty domainListPayload
	decodeJSON(t, beyond, &empty)
	if len(empty.Domains) != 0 {
		t.Fatalf("expected empty page, got %d items", len(empty.Domains))
	}
	if empty.Pagination.HasNext {
		t.Fatal("hasNext should be false past the last page")
	}
}

func TestDomainRenew(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	before := doReq(t, server.URL, token, http.MethodGet, "/api/domains/dom_2003", nil)
	var expired models.Domain
	decodeJSON(t, before, &expired)
	if expired.Status != models.DomainExpired {
		t.Fatalf("seed domain dom_2003 should start expired, is %s", expired.Status)
	}

	renew := doReq(t, server.URL, token, http.MethodPost, "/api/domains/dom_2003/renew", nil)
	if renew.StatusCode != http.StatusOK {
		t.Fatalf("renew status = %d", renew.StatusCode)
	}
	var renewed models.Domain
	decodeJSON(t, renew, &renewed)
	if renewed.Status != models.DomainActive {
		t.Fatalf("renewed domain should be active, is %s", renewed.Status)
	}
	if renewed.ExpiresAt <= expired.ExpiresAt {
		t.Fatalf("expiry did not advance: %s -> %s", expired.ExpiresAt, renewed.ExpiresAt)
	}

	// The mutation sticks across subsequent reads.
	after := doReq(t, server.URL, token, http.MethodGet, "/api/domains/dom_2003", nil)
	var persisted models.Domain
	decodeJSON(t, after, &persisted)
	if persisted.ExpiresAt != renewed.ExpiresAt {
		t.Fatalf("renewal not persisted: %s vs %s", persisted.ExpiresAt, renewed.ExpiresAt)
	}
}

func TestDomainRenewRedemptionConflict(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodPost, "/api/domains/dom_2005/renew", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for redemption domain, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	missing := doReq(t, server.URL, token, http.MethodPost, "/api/domains/dom_9999/renew", nil)
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown domain, got %d", missing.StatusCode)
	}
	_ = missing.Body.Close()
}
