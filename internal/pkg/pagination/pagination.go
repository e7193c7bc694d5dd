package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	MaxSize     = 100
)

// DefaultSize is the page size used when the caller gives none. It is set
// from configuration at startup.
var DefaultSize = 10

// Query holds parsed pagination parameters.
type Query struct {
	Page int `json:"page" form:"page"`
	Size int `json:"limit" form:"limit"`
}

// Normalize clamps page and size into their valid ranges.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	return q
}

func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// FromContext reads page and limit (or size) from the query string.
func FromContext(c *gin.Context) Query {
	size := c.Query("limit")
	if size == "" {
		size = c.Query("size")
	}
	return Query{
		Page: parseIntOr(c.Query("page"), DefaultPage),
		Size: parseIntOr(size, DefaultSize),
	}.Normalize()
}

// Paginate applies limit/offset to a GORM query and returns the pagination metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	q = q.Normalize()
	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}
	return Meta(q, total), nil
}

// Meta builds pagination metadata for a known total.
func Meta(q Query, total int64) response.Pagination {
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
