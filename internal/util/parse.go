package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Pagination holds clamped page/limit values parsed from the query string
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page/limit query params and clamps them to
// page >= 1 and 1 <= limit <= maxLimit before they reach SQL.
func ParsePagination(c *gin.Context, defaultLimit, maxLimit int) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages computes the page count for a total row count
func (p Pagination) TotalPages(total int64) int64 {
	if p.Limit == 0 {
		return 0
	}
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return pages
}

// Meta returns the pagination block included in list responses
func (p Pagination) Meta(total int64) gin.H {
	return gin.H{
		"page":        p.Page,
		"limit":       p.Limit,
		"total":       total,
		"total_pages": p.TotalPages(total),
	}
}

// ClampSortColumn restricts a sort column to an allow-list, preventing
// injection through column names, and returns the fallback when the
// requested column is not permitted.
func ClampSortColumn(requested string, allowed []string, fallback string) string {
	requested = strings.TrimSpace(strings.ToLower(requested))
	for _, col := range allowed {
		if requested == col {
			return requested
		}
	}
	return fallback
}

// ClampSortOrder normalizes a sort direction to ASC/DESC
func ClampSortOrder(requested string, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "asc":
		return "ASC"
	case "desc":
		return "DESC"
	}
	return fallback
}

// ParseBoolFilter parses an optional true/false query param; the second
// return value reports whether the filter was present and valid.
func ParseBoolFilter(c *gin.Context, name string) (bool, bool) {
	raw, exists := c.GetQuery(name)
	if !exists {
		return false, false
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return val, true
}
