package project

import (
	"strings"

	"github.com/panotour/core/internal/database"
	"gorm.io/gorm"
)

// Sort orders listing results.
type Sort int

const (
	SortRecentlyUpdated Sort = iota
	SortProjectIDDesc
)

// Filter narrows project queries. Zero values match everything.
type Filter struct {
	ProjectID     int64
	OwnerUserID   int64
	Keyword       string // title or description, case-insensitive
	Title         string // title only, case-insensitive
	DepartureCity *int
	Price         *float64
	IsForeign     *bool
	IsLock        *bool
	Sort          Sort
}

func (f Filter) apply(tx *gorm.DB) *gorm.DB {
	if f.ProjectID > 0 {
		tx = tx.Where("project_id = ?", f.ProjectID)
	}
	if f.OwnerUserID > 0 {
		tx = tx.Where("owner_user_id = ?", f.OwnerUserID)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := database.Contains(kw)
		tx = tx.Where("("+database.ContainsClause("title")+" OR "+database.ContainsClause("description")+")", like, like)
	}
	if title := strings.TrimSpace(f.Title); title != "" {
		tx = tx.Where(database.ContainsClause("title"), database.Contains(title))
	}
	if f.DepartureCity != nil {
		tx = tx.Where("departure_city = ?", *f.DepartureCity)
	}
	if f.Price != nil {
		tx = tx.Where("price = ?", *f.Price)
	}
	if f.IsForeign != nil {
		tx = tx.Where("is_foreign = ?", *f.IsForeign)
	}
	if f.IsLock != nil {
		tx = tx.Where("is_lock = ?", *f.IsLock)
	}
	return tx
}

func (f Filter) order() string {
	if f.Sort == SortProjectIDDesc {
		return "project_id DESC"
	}
	return "updated_at DESC, project_id DESC"
}
