package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/constants"
)

// PageParams is the page window a list endpoint was asked for.
type PageParams struct {
	Page  int
	Limit int
}

// GetPaginationParams reads page/limit from the query string. Values
// outside the allowed window fall back to the defaults rather than
// erroring.
func GetPaginationParams(c *gin.Context) PageParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PageParams{Page: page, Limit: limit}
}

// ListData assembles the data payload every paginated list endpoint
// returns: the items under their collection key plus total/page/limit.
func (p PageParams) ListData(key string, items any, total int64) gin.H {
	return gin.H{
		key:     items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}
