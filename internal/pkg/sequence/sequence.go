// Package sequence allocates human-facing sequential ids from a counter table.
package sequence

import (
	"context"
	"fmt"

	"github.com/panotour/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence names a counter and the column it numbers. The column's current
// maximum seeds the counter the first time it is used.
type Sequence struct {
	Name   string
	Table  string
	Column string
}

var (
	Users    = Sequence{Name: "users", Table: "users", Column: "user_id"}
	Projects = Sequence{Name: "projects", Table: "projects", Column: "project_id"}
)

type Allocator struct{ db *gorm.DB }

func New(db *gorm.DB) *Allocator { return &Allocator{db: db} }

// Next atomically increments seq and returns the new value.
func (a *Allocator) Next(ctx context.Context, seq Sequence) (int64, error) {
	var next int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bumped, err := bump(tx, seq.Name)
		if err != nil {
			return err
		}
		if !bumped {
			if err := seed(tx, seq); err != nil {
				return err
			}
			if _, err := bump(tx, seq.Name); err != nil {
				return err
			}
		}
		return tx.Model(&models.SequenceModel{}).
			Select("value").
			Where("name = ?", seq.Name).
			Scan(&next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", seq.Name, err)
	}
	return next, nil
}

// Advance moves seq forward to at least value, for ids chosen by the caller.
func (a *Allocator) Advance(ctx context.Context, seq Sequence, value int64) error {
	db := a.db.WithContext(ctx)
	res := db.Model(&models.SequenceModel{}).
		Where("name = ? AND value < ?", seq.Name, value).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SequenceModel{Name: seq.Name, Value: value}).Error
}

func bump(tx *gorm.DB, name string) (bool, error) {
	res := tx.Model(&models.SequenceModel{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1"))
	return res.RowsAffected > 0, res.Error
}

func seed(tx *gorm.DB, seq Sequence) error {
	var current int64
	if err := tx.Table(seq.Table).Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", seq.Column)).Scan(&current).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SequenceModel{Name: seq.Name, Value: current}).Error
}
