package api

import (
	"net/http"
	"strings"

	"panel/internal/models"
)

var notificationSortFields = []string{"timestamp", "priority", "category"}

func notificationsCollectionHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		q, err := parseListQuery(r, notificationSortFields)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		onlyUnread := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("onlyUnread")), "true")
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		filtered := make([]models.Notification, 0, len(reg.notifs))
		unread := 0
		for _, n := range reg.notifs {
			if !n.IsRead {
				unread++
			}
			if q.Category != "" && n.Category != q.Category {
				continue
			}
			if onlyUnread && n.IsRead {
				continue
			}
			if !matchesSearch(q.Search, n.Title, n.Message) {
				continue
			}
			filtered = append(filtered, n)
		}
		reg.mu.Unlock()

		// Newest first unless the caller asked otherwise.
		switch q.SortBy {
		case "priority":
			sortItems(filtered, q.SortDesc, func(a, b models.Notification) bool { return a.Priority < b.Priority })
		case "category":
			sortItems(filtered, q.SortDesc, func(a, b models.Notification) bool { return a.Category < b.Category })
		case "timestamp":
			sortItems(filtered, q.SortDesc, func(a, b models.Notification) bool { return a.Timestamp < b.Timestamp })
		default:
			sortItems(filtered, true, func(a, b models.Notification) bool { return a.Timestamp < b.Timestamp })
		}

		items, meta := paginate(filtered, q.Page, q.Limit)
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": items,
			"unreadCount":   unread,
			"pagination":    meta,
		})
	})
}

func notificationsScopedHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/read"):
			reg.setNotificationRead(w, r, "/read", true)
		case strings.HasSuffix(r.URL.Path, "/unread"):
			reg.setNotificationRead(w, r, "/unread", false)
		default:
			notificationDeleteHandler(reg).ServeHTTP(w, r)
		}
	})
}

func (reg *Registry) setNotificationRead(w http.ResponseWriter, r *http.Request, suffix string, read bool) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	id := pathTail(r.URL.Path, "/api/notifications/")
	id = strings.TrimSuffix(id, suffix)
	id = strings.Trim(id, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing notification id")
		return
	}
	if reg.injectFailure(w, r) {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i := range reg.notifs {
		if reg.notifs[i].ID != id {
			continue
		}
		reg.notifs[i].IsRead = read
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, reg.notifs[i])
		return
	}
	reg.logResponse(r, http.StatusNotFound)
	writeError(w, http.StatusNotFound, "no notification with id "+id)
}

func notificationDeleteHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/notifications/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for i := range reg.notifs {
			if reg.notifs[i].ID != id {
				continue
			}
			reg.notifs = append(reg.notifs[:i], reg.notifs[i+1:]...)
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no notification with id "+id)
	})
}

func notificationsReadAllHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		updated := 0
		for i := range reg.notifs {
			if !reg.notifs[i].IsRead {
				reg.notifs[i].IsRead = true
				updated++
			}
		}
		reg.mu.Unlock()

		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"updatedCount": updated,
		})
	})
}
