package api

import (
	"net/http"
	"testing"

	"panel/internal/models"
)

type notificationListPayload struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Pagination    models.Page           `json:"pagination"`
}

func TestNotificationsListAndUnreadCount(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	resp := doReq(t, server.URL, token, http.MethodGet, "/api/notifications", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var all notificationListPayload
	decodeJSON(t, resp, &all)
	if len(all.Notifications) != 5 {
		t.Fatalf("expected 5 seeded notifications, got %d", len(all.Notifications))
	}
	if all.UnreadCount != 3 {
		t.Fatalf("expected 3 unread, got %d", all.UnreadCount)
	}
	// Newest first by default.
	for i := 1; i < len(all.Notifications); i++ {
		if all.Notifications[i-1].Timestamp < all.Notifications[i].Timestamp {
			t.Fatalf("notifications not newest-first at index %d", i)
		}
	}

	unreadOnly := doReq(t, server.URL, token, http.MethodGet, "/api/notifications?onlyUnread=true", nil)
	var unread notificationListPayload
	decodeJSON(t, unreadOnly, &unread)
	if len(unread.Notifications) != 3 {
		t.Fatalf("expected 3 unread items, got %d", len(unread.Notifications))
	}
	for _, n := range unread.Notifications {
		if n.IsRead {
			t.Fatalf("read notification %s leaked into unread filter", n.ID)
		}
	}

	billing := doReq(t, server.URL, token, http.MethodGet, "/api/notifications?category=billing", nil)
	var cat notificationListPayload
	decodeJSON(t, billing, &cat)
	if len(cat.Notifications) != 2 {
		t.Fatalf("expected 2 billing notifications, got %d", len(cat.Notifications))
	}
	// unreadCount counts the whole set, not the filtered slice.
	if cat.UnreadCount != 3 {
		t.Fatalf("filtered unreadCount = %d, want 3", cat.UnreadCount)
	}
}

func TestNotificationReadUnreadCycle(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	read := doReq(t, server.URL, token, http.MethodPatch, "/api/notifications/ntf_7001/read", nil)
	if read.StatusCode != http.StatusOK {
		t.Fatalf("mark read status = %d", read.StatusCode)
	}
	var n models.Notification
	decodeJSON(t, read, &n)
	if !n.IsRead {
		t.Fatal("notification should be read")
	}

	list := doReq(t, server.URL, token, http.MethodGet, "/api/notifications", nil)
	var after notificationListPayload
	decodeJSON(t, list, &after)
	if after.UnreadCount != 2 {
		t.Fatalf("unreadCount after read = %d, want 2", after.UnreadCount)
	}

	unread := doReq(t, server.URL, token, http.MethodPatch, "/api/notifications/ntf_7001/unread", nil)
	if unread.StatusCode != http.StatusOK {
		t.Fatalf("mark unread status = %d", unread.StatusCode)
	}
	decodeJSON(t, unread, &n)
	if n.IsRead {
		t.Fatal("notification should be unread again")
	}
}

func TestNotificationsReadAllIsIdempotent(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	first := doReq(t, server.URL, token, http.MethodPost, "/api/notifications/read-all", nil)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("read-all status = %d", first.StatusCode)
	}
	var payload struct {
		Status       string `json:"status"`
		UpdatedCount int    `json:"updatedCount"`
	}
	decodeJSON(t, first, &payload)
	if payload.UpdatedCount != 3 {
		t.Fatalf("first read-all updated %d, want 3", payload.UpdatedCount)
	}

	second := doReq(t, server.URL, token, http.MethodPost, "/api/notifications/read-all", nil)
	decodeJSON(t, second, &payload)
	if payload.UpdatedCount != 0 {
		t.Fatalf("second read-all updated %d, want 0", payload.UpdatedCount)
	}

	list := doReq(t, server.URL, token, http.MethodGet, "/api/notifications", nil)
	var after notificationListPayload
	decodeJSON(t, list, &after)
	if after.UnreadCount != 0 {
		t.Fatalf("unreadCount after read-all = %d", after.UnreadCount)
	}
}

func TestNotificationDelete(t *testing.T) {
	server, token := setupTestServer(t)
	defer server.Close()

	del := doReq(t, server.URL, token, http.MethodDelete, "/api/notifications/ntf_7003", nil)
	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", del.StatusCode)
	}
	_ = del.Body.Close()

	again := doReq(t, server.URL, token, http.MethodDelete, "/api/notifications/ntf_7003", nil)
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete expected 404, got %d", again.StatusCode)
	}
	_ = again.Body.Close()

	list := doReq(t, server.URL, token, http.MethodGet, "/api/notifications", nil)
	var after notificationListPayload
	decodeJSON(t, list, &after)
	if len(after.Notifications) != 4 {
		t.Fatalf("expected 4 notifications after delete, got %d", len(after.Notifications))
	}
}
