// Package save keeps each user's saved tours. A row means saved; there is no
// stored unsaved state.
package save

import (
	"context"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/tour/catalog"
	"github.com/panotour/core/internal/pkg/metrics"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectLookup loads a project or fails with a NotFound apperr.
type ProjectLookup interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
}

// Resolver turns saved project ids into listed projects.
type Resolver interface {
	Resolve(ctx context.Context, ids []int64) ([]catalog.Item, error)
}

type Service struct {
	db       *gorm.DB
	projects ProjectLookup
	catalog  Resolver
}

func NewService(db *gorm.DB, projects ProjectLookup, resolver Resolver) *Service {
	return &Service{db: db, projects: projects, catalog: resolver}
}

// Toggle flips the saved state of projectID for userID and returns the new
// state. Unsaving works even if the project has since been deleted.
func (s *Service) Toggle(ctx context.Context, userID, projectID int64) (bool, error) {
	db := s.db.WithContext(ctx)
	res := db.Where("user_id = ? AND project_id = ?", userID, projectID).Delete(&models.SavedTourModel{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		metrics.SaveToggles.WithLabelValues("unsaved").Inc()
		return false, nil
	}

	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return false, err
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedTourModel{UserID: userID, ProjectID: projectID}).Error
	if err != nil {
		return false, err
	}
	metrics.SaveToggles.WithLabelValues("saved").Inc()
	return true, nil
}

func (s *Service) Status(ctx context.Context, userID, projectID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SavedTourModel{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&n).Error
	return n > 0, err
}

// List returns one page of the user's saved projects, most recently saved
// first, each with listing vote statistics.
func (s *Service) List(ctx context.Context, userID int64, q pagination.Query) ([]catalog.Item, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.SavedTourModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	var saved []models.SavedTourModel
	pag, err := pagination.Paginate(tx, q, &saved)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	ids := make([]int64, len(saved))
	for i, st := range saved {
		ids[i] = st.ProjectID
	}
	items, err := s.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return items, pag, nil
}
