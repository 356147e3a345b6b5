package api

import (
	"net/http"

	"github.com/adamanr/shift_console/internal/pagination"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type pageMeta struct {
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

func (p PageParams) resolve() (page, limit int) {
	page, limit = deref(p.Page), deref(p.Limit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// writePage slices a locally held list. The page window follows the shifts
// screen: up to five pages around the current one.
func writePage[T any](s *Server, w http.ResponseWriter, items []T, params PageParams) {
	page, limit := params.resolve()
	total := pagination.TotalPages(len(items), limit)
	if total > 0 && page > total {
		page = total
	}

	s.httpPage(w, pagination.Slice(items, page, limit), pageMeta{
		Total:      len(items),
		Page:       page,
		Limit:      limit,
		TotalPages: total,
		Pages:      pagination.Window(page, total, 5),
	})
}
