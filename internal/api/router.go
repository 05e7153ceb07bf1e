package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

func NewRouter(reg *Registry) *http.ServeMux {
	mux := http.NewServeMux()
	withAuth := func(h http.Handler) http.Handler {
		return reg.logging(reg.authRequired(reg.rateLimited(reg.withDelay(h))))
	}

	mux.HandleFunc("/api/status", statusHandler(reg))
	mux.Handle("/api/auth/login", reg.logging(reg.withDelay(loginHandler(reg))))
	mux.Handle("/api/user/profile", withAuth(profileHandler(reg)))
	mux.Handle("/api/domains", withAuth(domainsCollectionHandler(reg)))
	mux.Handle("/api/domains/", withAuth(domainsScopedHandler(reg)))
	mux.Handle("/api/invoices", withAuth(invoicesCollectionHandler(reg)))
	mux.Handle("/api/invoices/", withAuth(invoicesScopedHandler(reg)))
	mux.Handle("/api/payment-methods", withAuth(paymentsCollectionHandler(reg)))
	mux.Handle("/api/payment-methods/", withAuth(paymentsScopedHandler(reg)))
	mux.Handle("/api/tickets", withAuth(ticketsCollectionHandler(reg)))
	mux.Handle("/api/tickets/", withAuth(ticketsScopedHandler(reg)))
	mux.Handle("/api/notifications", withAuth(notificationsCollectionHandler(reg)))
	mux.Handle("/api/notifications/read-all", withAuth(notificationsReadAllHandler(reg)))
	mux.Handle("/api/notifications/", withAuth(notificationsScopedHandler(reg)))
	mux.Handle("/api/test/flaky", reg.logging(flakyHandler(reg)))
	return mux
}

func statusHandler(reg *Registry) http.HandlerFunc {
	type statusResponse struct {
		Status    string `json:"status"`
		Mock      bool   `json:"mock"`
		Timestamp string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Status:    "ok",
			Mock:      true,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, prefix)
	tail = strings.Trim(tail, "/")
	return tail
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidation emits the field-scoped error envelope:
// {"error": ..., "details": {"field": ["message", ...]}}.
func writeValidation(w http.ResponseWriter, details map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   "validation failed",
		"details": details,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
