package api

import (
	"net/http"
	"strings"
	"time"

	"panel/internal/models"
)

var domainSortFields = []string{"name", "status", "expiresAt", "registeredAt"}

func domainsCollectionHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		q, err := parseListQuery(r, domainSortFields)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		filtered := make([]models.Domain, 0, len(reg.domains))
		for _, d := range reg.domains {
			if !matchesSearch(q.Search, d.Name) {
				continue
			}
			if q.Status != "" && string(d.Status) != q.Status {
				continue
			}
			filtered = append(filtered, d)
		}
		reg.mu.Unlock()

		switch q.SortBy {
		case "status":
			sortItems(filtered, q.SortDesc, func(a, b models.Domain) bool { return a.Status < b.Status })
		case "expiresAt":
			sortItems(filtered, q.SortDesc, func(a, b models.Domain) bool { return a.ExpiresAt < b.ExpiresAt })
		case "registeredAt":
			sortItems(filtered, q.SortDesc, func(a, b models.Domain) bool { return a.RegisteredAt < b.RegisteredAt })
		default:
			sortItems(filtered, q.SortDesc, func(a, b models.Domain) bool { return a.Name < b.Name })
		}

		items, meta := paginate(filtered, q.Page, q.Limit)
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]any{
			"domains":    items,
			"pagination": meta,
		})
	})
}

func domainsScopedHandler(reg *Registry) http.Handler {
	item := domainItemHandler(reg)
	renew := domainRenewHandler(reg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/renew") {
			renew.ServeHTTP(w, r)
			return
		}
		item.ServeHTTP(w, r)
	})
}

func domainItemHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/domains/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for _, d := range reg.domains {
			if d.ID == id {
				reg.logResponse(r, http.StatusOK)
				writeJSON(w, http.StatusOK, d)
				return
			}
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no domain with id "+id)
	})
}

func domainRenewHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/domains/")
		id = strings.TrimSuffix(id, "/renew")
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing domain id")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for i := range reg.domains {
			if reg.domains[i].ID != id {
				continue
			}
			if reg.domains[i].Status == models.DomainRedemption {
				reg.logResponse(r, http.StatusConflict)
				writeError(w, http.StatusConflict, "domain is in redemption and cannot be renewed online")
				return
			}
			expires, err := time.Parse(time.RFC3339, reg.domains[i].ExpiresAt)
			if err != nil {
				expires = time.Now().UTC()
			}
			reg.domains[i].ExpiresAt = expires.AddDate(1, 0, 0).Format(time.RFC3339)
			reg.domains[i].Status = models.DomainActive
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, reg.domains[i])
			return
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no domain with id "+id)
	})
}
