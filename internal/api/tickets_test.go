package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"panel/internal/models"
)

type ticketListPayload struct {
	Tickets    []models.Ticket `json:"tickets"`
	Pagination models.Page     `json:"pagination"`
}

func TestCreateTicketSubjectTooShort(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodPost, "/api/tickets", map[string]any{
		"subject":    "ab",
		"message":    "something is broken badly",
		"department": "support",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	details := decodeValidation(t, resp)
	if len(details["subject"]) == 0 {
		t.Fatalf("expected subject errors, got %v", details)
	}
	if details["subject"][0] != "subject must be at least 3 characters" {
		t.Fatalf("unexpected subject message %q", details["subject"][0])
	}
}

func TestCreateTicket(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodPost, "/api/tickets", map[string]any{
		"subject":    "Nameserver update not propagating",
		"message":    "Changed NS records yesterday and resolvers still serve the old ones.",
		"department": "support",
		"priority":   "high",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var ticket models.Ticket
	decodeJSON(t, resp, &ticket)
	if ticket.Status != models.TicketOpen || ticket.Priority != models.TicketHigh {
		t.Fatalf("unexpected new ticket: %+v", ticket)
	}
	if len(ticket.Replies) != 1 || ticket.Replies[0].Author != "Dana Whitfield" {
		t.Fatalf("opening message missing: %+v", ticket.Replies)
	}

	list := doReq(t, server.URL, token, http.MethodGet, "/api/tickets?search=nameserver", nil)
	var page ticketListPayload
	decodeJSON(t, list, &page)
	if len(page.Tickets) != 1 || page.Tickets[0].ID != ticket.ID {
		t.Fatalf("created ticket not listed: %+v", page.Tickets)
	}
	// Listings omit the reply thread.
	if page.Tickets[0].Replies != nil {
		t.Fatal("listing should not carry replies")
	}
}

func TestTicketsListFilters(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	byStatus := doReq(t, server.URL, token, http.MethodGet, "/api/tickets?status=open", nil)
	var open ticketListPayload
	decodeJSON(t, byStatus, &open)
	if len(open.Tickets) != 1 || open.Tickets[0].ID != "tkt_5001" {
		t.Fatalf("status filter failed: %+v", open.Tickets)
	}

	byDept := doReq(t, server.URL, token, http.MethodGet, "/api/tickets?category=billing", nil)
	var billing ticketListPayload
	decodeJSON(t, byDept, &billing)
	if len(billing.Tickets) != 1 || billing.Tickets[0].Department != "billing" {
		t.Fatalf("department filter failed: %+v", billing.Tickets)
	}
}

func TestTicketReplyWithAttachments(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	body, contentType := multipartReply(t, "Here is the requested screenshot.", []testFile{
		{name: "screenshot.png", mime: "image/png", size: 2048},
		{name: "log.txt", mime: "text/plain", size: 100},
	})
	resp := doMultipart(t, server.URL, token, "/api/tickets/tkt_5001/reply", body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply status = %d", resp.StatusCode)
	}
	var reply models.TicketReply
	decodeJSON(t, resp, &reply)
	if len(reply.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(reply.Attachments))
	}
	if reply.Attachments[0].MimeType != "image/png" {
		t.Fatalf("unexpected attachment mime %q", reply.Attachments[0].MimeType)
	}

	item := doReq(t, server.URL, token, http.MethodGet, "/api/tickets/tkt_5001", nil)
	var ticket models.Ticket
	decodeJSON(t, item, &ticket)
	if len(ticket.Replies) != 3 {
		t.Fatalf("expected 3 replies after posting, got %d", len(ticket.Replies))
	}
}

func TestTicketReplyAttachmentLimits(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	var six []testFile
	for i := 0; i < 6; i++ {
		six = append(six, testFile{name: fmt.Sprintf("f%d.txt", i), mime: "text/plain", size: 10})
	}
	body, contentType := multipartReply(t, "too many files", six)
	resp := doMultipart(t, server.URL, token, "/api/tickets/tkt_5001/reply", body, contentType)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for 6 files, got %d", resp.StatusCode)
	}
	details := decodeValidation(t, resp)
	if len(details["attachments"]) == 0 {
		t.Fatalf("expected attachments errors, got %v", details)
	}

	body, contentType = multipartReply(t, "wrong type", []testFile{
		{name: "payload.exe", mime: "application/x-msdownload", size: 10},
	})
	badType := doMultipart(t, server.URL, token, "/api/tickets/tkt_5001/reply", body, contentType)
	if badType.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for disallowed type, got %d", badType.StatusCode)
	}
	_ = badType.Body.Close()
}

func TestTicketReplyOnClosedTicket(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	body, contentType := multipartReply(t, "please reopen this", nil)
	resp := doMultipart(t, server.URL, token, "/api/tickets/tkt_5004/reply", body, contentType)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for closed ticket, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestTicketReplyReopensResolved(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	body, contentType := multipartReply(t, "the invoice is still wrong", nil)
	resp := doMultipart(t, server.URL, token, "/api/tickets/tkt_5003/reply", body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	item := doReq(t, server.URL, token, http.MethodGet, "/api/tickets/tkt_5003", nil)
	var ticket models.Ticket
	decodeJSON(t, item, &ticket)
	if ticket.Status != models.TicketOpen {
		t.Fatalf("resolved ticket should reopen on reply, is %s", ticket.Status)
	}
}

func TestTicketStatusUpdate(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodPatch, "/api/tickets/tkt_5001/status", map[string]any{
		"status": "resolved",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status update = %d", resp.StatusCode)
	}
	var ticket models.Ticket
	decodeJSON(t, resp, &ticket)
	if ticket.Status != models.TicketResolved {
		t.Fatalf("expected resolved, got %s", ticket.Status)
	}

	bad := doReq(t, server.URL, token, http.MethodPatch, "/api/tickets/tkt_5001/status", map[string]any{
		"status": "abandoned",
	})
	if bad.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", bad.StatusCode)
	}
	_ = bad.Body.Close()
}

type testFile struct {
	name string
	mime string
	size int
}

// multipartReply builds the reply form: a message field plus synthetic
// attachment parts carrying explicit content types.
func multipartReply(t *testing.T, message string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("message", message); err != nil {
		t.Fatalf("write message field: %v", err)
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename=%q`, f.name))
		h.Set("Content-Type", f.mime)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte("x"), f.size)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doMultipart(t *testing.T, baseURL, token, path string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}
