package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"panel/internal/models"
)

var ticketSortFields = []string{"createdAt", "updatedAt", "subject", "status", "priority"}

const (
	maxAttachments    = 5
	maxAttachmentSize = 5 << 20
)

// allowedAttachmentTypes is the upload MIME allow-list: images, PDF,
// plain text, and the Word/Excel formats.
var allowedAttachmentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func attachmentTypeAllowed(mimeType string) bool {
	for _, t := range allowedAttachmentTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

type createTicketRequest struct {
	Subject    string `json:"subject"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
	Message    string `json:"message"`
}

type updateTicketStatusRequest struct {
	Status string `json:"status"`
}

func ticketsCollectionHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q, err := parseListQuery(r, ticketSortFields)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if reg.injectFailure(w, r) {
				return
			}

			reg.mu.Lock()
			filtered := make([]models.Ticket, 0, len(reg.tickets))
			for _, t := range reg.tickets {
				if !matchesSearch(q.Search, t.Subject) {
					continue
				}
				if q.Status != "" && string(t.Status) != q.Status {
					continue
				}
				if q.Category != "" && t.Department != q.Category {
					continue
				}
				// Listings stay light; the thread comes with the item view.
				t.Replies = nil
				filtered = append(filtered, t)
			}
			reg.mu.Unlock()

			switch q.SortBy {
			case "updatedAt":
				sortItems(filtered, q.SortDesc, func(a, b models.Ticket) bool { return a.UpdatedAt < b.UpdatedAt })
			case "subject":
				sortItems(filtered, q.SortDesc, func(a, b models.Ticket) bool { return a.Subject < b.Subject })
			case "status":
				sortItems(filtered, q.SortDesc, func(a, b models.Ticket) bool { return a.Status < b.Status })
			case "priority":
				sortItems(filtered, q.SortDesc, func(a, b models.Ticket) bool { return a.Priority < b.Priority })
			default:
				sortItems(filtered, q.SortDesc, func(a, b models.Ticket) bool { return a.CreatedAt < b.CreatedAt })
			}

			items, meta := paginate(filtered, q.Page, q.Limit)
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, map[string]any{
				"tickets":    items,
				"pagination": meta,
			})
		case http.MethodPost:
			user := currentUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "missing auth context")
				return
			}
			var req createTicketRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			fe := fieldErrors{}
			if checkRequired(fe, "subject", req.Subject) {
				checkMinLen(fe, "subject", req.Subject, 3)
				checkMaxLen(fe, "subject", req.Subject, 120)
			}
			if checkRequired(fe, "message", req.Message) {
				checkMinLen(fe, "message", req.Message, 10)
				checkMaxLen(fe, "message", req.Message, 5000)
			}
			checkOneOf(fe, "department", req.Department, "support", "billing", "sales")
			if req.Priority == "" {
				req.Priority = string(models.TicketMedium)
			}
			checkOneOf(fe, "priority", req.Priority, "low", "medium", "high", "urgent")
			if !fe.empty() {
				reg.logResponse(r, http.StatusUnprocessableEntity)
				writeValidation(w, fe)
				return
			}
			if reg.injectFailure(w, r) {
				return
			}

			now := nowRFC3339()
			ticket := models.Ticket{
				ID:         "tkt_" + uuid.NewString()[:8],
				Subject:    strings.TrimSpace(req.Subject),
				Department: req.Department,
				Status:     models.TicketOpen,
				Priority:   models.TicketPriority(req.Priority),
				CreatedAt:  now,
				UpdatedAt:  now,
				Replies: []models.TicketReply{
					{
						ID:        "rpl_" + uuid.NewString()[:8],
						Author:    user.FirstName + " " + user.LastName,
						Message:   strings.TrimSpace(req.Message),
						CreatedAt: now,
					},
				},
			}
			reg.mu.Lock()
			reg.tickets = append(reg.tickets, ticket)
			reg.mu.Unlock()

			reg.logResponse(r, http.StatusCreated)
			writeJSON(w, http.StatusCreated, ticket)
		default:
			methodNotAllowed(w)
		}
	})
}

func ticketsScopedHandler(reg *Registry) http.Handler {
	item := ticketItemHandler(reg)
	reply := ticketReplyHandler(reg)
	status := ticketStatusHandler(reg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/reply") {
			reply.ServeHTTP(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/status") {
			status.ServeHTTP(w, r)
			return
		}
		item.ServeHTTP(w, r)
	})
}

func ticketItemHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/tickets/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for _, t := range reg.tickets {
			if t.ID == id {
				reg.logResponse(r, http.StatusOK)
				writeJSON(w, http.StatusOK, t)
				return
			}
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no ticket with id "+id)
	})
}

// ticketReplyHandler accepts a multipart form: a message field plus up
// to maxAttachments files, each within maxAttachmentSize and the MIME
// allow-list.
func ticketReplyHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		user := currentUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing auth context")
			return
		}
		id := pathTail(r.URL.Path, "/api/tickets/")
		id = strings.TrimSuffix(id, "/reply")
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing ticket id")
			return
		}

		if err := r.ParseMultipartForm(maxAttachmentSize * (maxAttachments + 1)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart payload")
			return
		}

		message := r.FormValue("message")
		fe := fieldErrors{}
		if checkRequired(fe, "message", message) {
			checkMinLen(fe, "message", message, 2)
			checkMaxLen(fe, "message", message, 5000)
		}

		var attachments []models.Attachment
		if r.MultipartForm != nil {
			files := r.MultipartForm.File["attachments"]
			if len(files) > maxAttachments {
				fe.add("attachments", fmt.Sprintf("attachments must be at most %d files", maxAttachments))
			} else {
				for _, fh := range files {
					if fh.Size > maxAttachmentSize {
						fe.add("attachments", fmt.Sprintf("%s exceeds the %dMB size limit", fh.Filename, maxAttachmentSize>>20))
						continue
					}
					mimeType := fh.Header.Get("Content-Type")
					if !attachmentTypeAllowed(mimeType) {
						fe.add("attachments", fmt.Sprintf("%s has unsupported type %s", fh.Filename, mimeType))
						continue
					}
					attachments = append(attachments, models.Attachment{
						Filename: fh.Filename,
						Size:     fh.Size,
						MimeType: mimeType,
					})
				}
			}
		}
		if !fe.empty() {
			reg.logResponse(r, http.StatusUnprocessableEntity)
			writeValidation(w, fe)
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for i := range reg.tickets {
			if reg.tickets[i].ID != id {
				continue
			}
			if reg.tickets[i].Status == models.TicketClosed {
				reg.logResponse(r, http.StatusConflict)
				writeError(w, http.StatusConflict, "ticket is closed; open a new one instead")
				return
			}
			now := nowRFC3339()
			reply := models.TicketReply{
				ID:          "rpl_" + uuid.NewString()[:8],
				Author:      user.FirstName + " " + user.LastName,
				Message:     strings.TrimSpace(message),
				CreatedAt:   now,
				Attachments: attachments,
			}
			reg.tickets[i].Replies = append(reg.tickets[i].Replies, reply)
			reg.tickets[i].UpdatedAt = now
			if reg.tickets[i].Status == models.TicketResolved {
				reg.tickets[i].Status = models.TicketOpen
			}
			reg.logResponse(r, http.StatusCreated)
			writeJSON(w, http.StatusCreated, reply)
			return
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no ticket with id "+id)
	})
}

func ticketStatusHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/tickets/")
		id = strings.TrimSuffix(id, "/status")
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing ticket id")
			return
		}
		var req updateTicketStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		fe := fieldErrors{}
		checkOneOf(fe, "status", req.Status, "open", "pending", "resolved", "closed")
		if !fe.empty() {
			reg.logResponse(r, http.StatusUnprocessableEntity)
			writeValidation(w, fe)
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for i := range reg.tickets {
			if reg.tickets[i].ID != id {
				continue
			}
			reg.tickets[i].Status = models.TicketStatus(req.Status)
			reg.tickets[i].UpdatedAt = nowRFC3339()
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, reg.tickets[i])
			return
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no ticket with id "+id)
	})
}
