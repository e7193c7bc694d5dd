// Package vote is the vote ledger: one rating per (project, user) and the
// statistics derived from it on every read.
package vote

import (
	"context"
	"errors"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRatingRange = apperr.New(apperr.InvalidArgument, "Rating must be between 1 and 5")
	ErrSelfVote    = apperr.New(apperr.Forbidden, "You cannot vote on your own project")
)

// ProjectLookup loads a project or fails with a NotFound apperr.
type ProjectLookup interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
}

type Ledger struct {
	db       *gorm.DB
	projects ProjectLookup
	events   events.Publisher
	logger   *zap.Logger
}

func NewLedger(db *gorm.DB, projects ProjectLookup, pub events.Publisher, logger *zap.Logger) *Ledger {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Ledger{db: db, projects: projects, events: pub, logger: logger.Named("vote")}
}

// Cast records voterID's rating of projectID, replacing any earlier rating.
// Concurrent casts for the same pair converge on one row through the unique
// (project_id, user_id) index.
func (l *Ledger) Cast(ctx context.Context, projectID, voterID int64, rating int) (*models.VoteModel, error) {
	v, err := l.cast(ctx, projectID, voterID, rating)
	if err != nil {
		metrics.VotesCast.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.VotesCast.WithLabelValues("accepted").Inc()
	if err := l.events.Publish(ctx, events.VoteCast, v); err != nil {
		l.logger.Warn("publish vote event", zap.Int64("project_id", projectID), zap.Error(err))
	}
	return v, nil
}

func (l *Ledger) cast(ctx context.Context, projectID, voterID int64, rating int) (*models.VoteModel, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, ErrRatingRange
	}
	p, err := l.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerUserID == voterID {
		return nil, ErrSelfVote
	}

	db := l.db.WithContext(ctx)
	v := models.VoteModel{ProjectID: projectID, UserID: voterID, Rating: rating}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(&v).Error
	if err != nil {
		return nil, err
	}

	var stored models.VoteModel
	if err := db.Where("project_id = ? AND user_id = ?", projectID, voterID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

type tally struct {
	ProjectID int64
	Rating    int
	Count     int64
}

// StatsFor tallies every vote of one project.
func (l *Ledger) StatsFor(ctx context.Context, projectID int64) (Stats, error) {
	var rows []tally
	err := l.db.WithContext(ctx).Model(&models.VoteModel{}).
		Select("project_id, rating, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("project_id, rating").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	for _, r := range rows {
		s.add(r.Rating, r.Count)
	}
	return s, nil
}

// StatsForMany tallies several projects with one grouped query. Every
// requested id is present in the result, with zero stats when unvoted.
func (l *Ledger) StatsForMany(ctx context.Context, projectIDs []int64) (map[int64]Stats, error) {
	out := make(map[int64]Stats, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	var rows []tally
	err := l.db.WithContext(ctx).Model(&models.VoteModel{}).
		Select("project_id, rating, COUNT(*) AS count").
		Where("project_id IN ?", projectIDs).
		Group("project_id, rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range projectIDs {
		out[id] = Stats{}
	}
	for _, r := range rows {
		s := out[r.ProjectID]
		s.add(r.Rating, r.Count)
		out[r.ProjectID] = s
	}
	return out, nil
}

// Votes lists the raw vote records of a project, newest first.
func (l *Ledger) Votes(ctx context.Context, projectID int64) ([]models.VoteModel, error) {
	votes := []models.VoteModel{}
	err := l.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("updated_at DESC").
		Find(&votes).Error
	return votes, err
}

// UserVote returns the caller's vote, or nil for anonymous callers and
// callers who have not voted.
func (l *Ledger) UserVote(ctx context.Context, projectID, userID int64) (*models.VoteModel, error) {
	if userID <= 0 {
		return nil, nil
	}
	var v models.VoteModel
	err := l.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
