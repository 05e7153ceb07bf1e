package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"panel/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// listQuery carries the search/filter/sort/slice parameters shared by
// every collection endpoint.
type listQuery struct {
	Search   string
	Status   string
	Category string
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

func parseListQuery(r *http.Request, sortable []string) (listQuery, error) {
	q := listQuery{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Status:   strings.TrimSpace(r.URL.Query().Get("status")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		SortBy:   strings.TrimSpace(r.URL.Query().Get("sortBy")),
		Page:     1,
		Limit:    defaultPageLimit,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid page %q", v)
		}
		q.Page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
		if n > maxPageLimit {
			n = maxPageLimit
		}
		q.Limit = n
	}

	switch order := strings.ToLower(r.URL.Query().Get("sortOrder")); order {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return q, fmt.Errorf("invalid sortOrder %q", order)
	}

	if q.SortBy != "" {
		known := false
		for _, f := range sortable {
			if q.SortBy == f {
				known = true
				break
			}
		}
		if !known {
			return q, fmt.Errorf("cannot sort by %q", q.SortBy)
		}
	}
	return q, nil
}

// matchesSearch reports a case-insensitive substring hit in any of the
// designated text fields.
func matchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortItems applies a stable ordering by the comparator, flipped for
// descending queries.
func sortItems[T any](items []T, desc bool, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// paginate slices a filtered collection and computes its page metadata.
// A page beyond the end yields an empty slice, not an error.
func paginate[T any](items []T, page, limit int) ([]T, models.Page) {
	meta := models.PageOf(len(items), page, limit)
	start := (meta.Page - 1) * meta.Limit
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + meta.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
