package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationFor(t *testing.T, query string) Pagination {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return ParsePagination(c, 20, 100)
}

func TestParsePaginationClamps(t *testing.T) {
	p := paginationFor(t, "page=2&limit=50")
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 50, p.Offset)

	p = paginationFor(t, "page=0&limit=0")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)

	p = paginationFor(t, "page=-3&limit=9999")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)

	p = paginationFor(t, "page=abc&limit=xyz")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestTotalPages(t *testing.T) {
	p := Pagination{Page: 1, Limit: 20}
	assert.EqualValues(t, 0, p.TotalPages(0))
	assert.EqualValues(t, 1, p.TotalPages(1))
	assert.EqualValues(t, 1, p.TotalPages(20))
	assert.EqualValues(t, 2, p.TotalPages(21))
}

func TestClampSortColumn(t *testing.T) {
	allowed := []string{"created_at", "username", "points"}

	assert.Equal(t, "points", ClampSortColumn("points", allowed, "created_at"))
	assert.Equal(t, "created_at", ClampSortColumn("", allowed, "created_at"))
	assert.Equal(t, "created_at", ClampSortColumn("password_hash", allowed, "created_at"))
	assert.Equal(t, "created_at", ClampSortColumn("points; DROP TABLE users", allowed, "created_at"))
}

func TestClampSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ClampSortOrder("asc", "DESC"))
	assert.Equal(t, "DESC", ClampSortOrder("desc", "ASC"))
	assert.Equal(t, "DESC", ClampSortOrder("sideways", "DESC"))
	assert.Equal(t, "ASC", ClampSortOrder("", "ASC"))
}
