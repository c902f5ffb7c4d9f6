package shared

import (
	"net/http"
	"strconv"
)

const TotalCountHeader = "X-Total-Count"

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads ?limit=&offset=, or ?page= (1-based) with the same
// limit. Bad values fall back to the defaults; limit is capped at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	page := Pagination{Limit: positiveInt(q.Get("limit"), defaultLimit)}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}

	if n := positiveInt(q.Get("page"), 0); n > 0 {
		page.Offset = (n - 1) * page.Limit
		return page
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		page.Offset = offset
	}
	return page
}

// SetTotal advertises the unpaged row count alongside a list response.
func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
}

func positiveInt(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
