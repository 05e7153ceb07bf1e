package api

import (
	"net/http"
	"strings"

	"panel/internal/models"
)

var invoiceSortFields = []string{"issuedAt", "dueAt", "amount", "status", "number"}

func invoicesCollectionHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		q, err := parseListQuery(r, invoiceSortFields)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		filtered := make([]models.Invoice, 0, len(reg.invoices))
		for _, inv := range reg.invoices {
			if !matchesSearch(q.Search, inv.Number) {
				continue
			}
			if q.Status != "" && string(inv.Status) != q.Status {
				continue
			}
			filtered = append(filtered, inv)
		}
		reg.mu.Unlock()

		switch q.SortBy {
		case "dueAt":
			sortItems(filtered, q.SortDesc, func(a, b models.Invoice) bool { return a.DueAt < b.DueAt })
		case "amount":
			sortItems(filtered, q.SortDesc, func(a, b models.Invoice) bool { return a.Amount < b.Amount })
		case "status":
			sortItems(filtered, q.SortDesc, func(a, b models.Invoice) bool { return a.Status < b.Status })
		case "number":
			sortItems(filtered, q.SortDesc, func(a, b models.Invoice) bool { return a.Number < b.Number })
		default:
			sortItems(filtered, q.SortDesc, func(a, b models.Invoice) bool { return a.IssuedAt < b.IssuedAt })
		}

		items, meta := paginate(filtered, q.Page, q.Limit)
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]any{
			"invoices":   items,
			"pagination": meta,
		})
	})
}

func invoicesScopedHandler(reg *Registry) http.Handler {
	item := invoiceItemHandler(reg)
	pdf := invoicePDFHandler(reg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/pdf") {
			pdf.ServeHTTP(w, r)
			return
		}
		item.ServeHTTP(w, r)
	})
}

func invoiceItemHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/invoices/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for _, inv := range reg.invoices {
			if inv.ID == id {
				reg.logResponse(r, http.StatusOK)
				writeJSON(w, http.StatusOK, inv)
				return
			}
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no invoice with id "+id)
	})
}

// invoicePDFHandler answers with a redirect to a signed download URL
// instead of a body.
func invoicePDFHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/invoices/")
		id = strings.TrimSuffix(id, "/pdf")
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing invoice id")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for _, inv := range reg.invoices {
			if inv.ID == id {
				reg.logResponse(r, http.StatusFound)
				http.Redirect(w, r, "/downloads/invoices/"+inv.Number+".pdf", http.StatusFound)
				return
			}
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no invoice with id "+id)
	})
}
