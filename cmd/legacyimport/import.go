package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/sequence"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errSkip marks a document that cannot be mapped and is counted, not fatal.
var errSkip = errors.New("skip")

const batchSize = 200

// Report counts what happened to each collection.
type Report struct {
	Collection string
	Read       int
	Imported   int
	Skipped    int
}

type importer struct {
	db     *gorm.DB
	ids    *sequence.Allocator
	logger *zap.Logger

	// inline user comments carry no project id and are dropped
	droppedInlineComments int
}

func newImporter(db *gorm.DB, logger *zap.Logger) *importer {
	return &importer{db: db, ids: sequence.New(db), logger: logger}
}

// Run imports every known collection found in dir, users and projects first.
func (im *importer) Run(ctx context.Context, dir string) ([]Report, error) {
	steps := []struct {
		collection string
		fn         func(context.Context, string) (Report, error)
	}{
		{"users", im.users},
		{"projects", im.projects},
		{"votes", im.votes},
		{"comments", im.comments},
		{"savedtours", im.saved},
		{"notifications", im.notifications},
	}
	reports := make([]Report, 0, len(steps))
	for _, s := range steps {
		rep, err := s.fn(ctx, filepath.Join(dir, s.collection+".bson"))
		if err != nil {
			return reports, fmt.Errorf("import %s: %w", s.collection, err)
		}
		rep.Collection = s.collection
		reports = append(reports, rep)
		im.logger.Info("collection imported",
			zap.String("collection", s.collection),
			zap.Int("read", rep.Read),
			zap.Int("imported", rep.Imported),
			zap.Int("skipped", rep.Skipped),
		)
	}
	if im.droppedInlineComments > 0 {
		im.logger.Warn("inline user comments dropped, they reference no project",
			zap.Int("count", im.droppedInlineComments))
	}
	return reports, nil
}

// collect converts every document of path, counting skips, and hands full
// batches to flush.
func collect[T any](path string, rep *Report, convert func(bson.Raw) (*T, error), flush func([]*T) error) error {
	batch := make([]*T, 0, batchSize)
	n, err := readDump(path, func(doc bson.Raw) error {
		row, err := convert(doc)
		if errors.Is(err, errSkip) {
			rep.Skipped++
			return nil
		}
		if err != nil {
			return err
		}
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(batch); err != nil {
				return err
			}
			rep.Imported += len(batch)
			batch = batch[:0]
		}
		return nil
	})
	rep.Read = n
	if err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return err
		}
		rep.Imported += len(batch)
	}
	return nil
}

func upsert(ctx context.Context, db *gorm.DB, rows interface{}, conflict []string, update []string) error {
	cols := make([]clause.Column, 0, len(conflict))
	for _, c := range conflict {
		cols = append(cols, clause.Column{Name: c})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: cols, DoUpdates: clause.AssignmentColumns(update)}).
		Create(rows).Error
}

func (im *importer) users(ctx context.Context, path string) (Report, error) {
	var rep Report
	var maxID int64
	err := collect(path, &rep, func(doc bson.Raw) (*models.UserModel, error) {
		u, inline, err := convertUser(doc)
		im.droppedInlineComments += inline
		return u, err
	}, func(rows []*models.UserModel) error {
		for _, u := range rows {
			maxID = max(maxID, u.UserID)
		}
		return upsert(ctx, im.db, rows, []string{"user_id"}, []string{
			"account", "password", "authentication", "user_name", "type", "avatar", "address",
			"city", "district", "email", "phone", "cost_range", "image_introduce", "updated_at",
		})
	})
	if err != nil {
		return rep, err
	}
	return rep, im.ids.Advance(ctx, sequence.Users, maxID)
}

func (im *importer) projects(ctx context.Context, path string) (Report, error) {
	var rep Report
	var maxID int64
	err := collect(path, &rep, convertProject, func(rows []*models.ProjectModel) error {
		for _, p := range rows {
			maxID = max(maxID, p.ProjectID)
		}
		return upsert(ctx, im.db, rows, []string{"project_id"}, []string{
			"owner_user_id", "title", "description", "departure_city", "departure_date", "cover_image",
			"price", "sale", "time_last_book", "is_foreign", "is_lock", "tour_steps", "scenes", "updated_at",
		})
	})
	if err != nil {
		return rep, err
	}
	return rep, im.ids.Advance(ctx, sequence.Projects, maxID)
}

func (im *importer) votes(ctx context.Context, path string) (Report, error) {
	var rep Report
	err := collect(path, &rep, convertVote, func(rows []*models.VoteModel) error {
		return upsert(ctx, im.db, rows, []string{"project_id", "user_id"}, []string{"rating", "updated_at"})
	})
	return rep, err
}

func (im *importer) comments(ctx context.Context, path string) (Report, error) {
	var rep Report
	err := collect(path, &rep, convertComment, func(rows []*models.CommentModel) error {
		return upsert(ctx, im.db, rows, []string{"id"}, []string{"content", "updated_at"})
	})
	return rep, err
}

func (im *importer) saved(ctx context.Context, path string) (Report, error) {
	var rep Report
	err := collect(path, &rep, convertSaved, func(rows []*models.SavedTourModel) error {
		return im.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
	})
	return rep, err
}

func (im *importer) notifications(ctx context.Context, path string) (Report, error) {
	var rep Report
	err := collect(path, &rep, convertNotification, func(rows []*models.NotificationModel) error {
		return upsert(ctx, im.db, rows, []string{"id"}, []string{"is_read", "updated_at"})
	})
	return rep, err
}
