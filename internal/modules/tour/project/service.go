// Package project is the tour document store: projects with their embedded
// scenes, hotspots and tour steps.
package project

import (
	"context"
	"errors"
	"time"

	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
	"github.com/panotour/core/internal/pkg/sequence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = apperr.New(apperr.NotFound, "Project not found")
	ErrExists        = apperr.New(apperr.Conflict, "Project already exists")
	ErrManyEntries   = apperr.New(apperr.InvalidArgument, "Only one scene can be the first scene")
	ErrDupSceneID    = apperr.New(apperr.InvalidArgument, "Scene ids must be unique within a project")
	ErrSceneNotFound = apperr.New(apperr.NotFound, "Scene not found")
)

type Service struct {
	db     *gorm.DB
	ids    *sequence.Allocator
	events events.Publisher
	logger *zap.Logger
}

func NewService(db *gorm.DB, ids *sequence.Allocator, pub events.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{db: db, ids: ids, events: pub, logger: logger.Named("project")}
}

// ValidateScenes checks the shape rules the store relies on: scene ids are
// unique and at most one scene is the entry scene.
func ValidateScenes(scenes []models.Scene) error {
	seen := make(map[string]struct{}, len(scenes))
	entries := 0
	for _, s := range scenes {
		if s.ID != "" {
			if _, dup := seen[s.ID]; dup {
				return ErrDupSceneID
			}
			seen[s.ID] = struct{}{}
		}
		if s.IsFirst {
			entries++
		}
	}
	if entries > 1 {
		return ErrManyEntries
	}
	return nil
}

// Create persists a new project owned by ownerID. A caller supplied
// projectId that is already taken fails with Conflict and leaves the
// existing document untouched.
func (s *Service) Create(ctx context.Context, ownerID int64, dto *CreateProjectDTO) (*models.ProjectModel, error) {
	if err := ValidateScenes(dto.Scenes); err != nil {
		return nil, err
	}

	p := models.ProjectModel{OwnerUserID: ownerID}
	assign(&p, dto)

	if dto.ProjectID > 0 {
		p.ProjectID = dto.ProjectID
	} else {
		id, err := s.ids.Next(ctx, sequence.Projects)
		if err != nil {
			return nil, err
		}
		p.ProjectID = id
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrExists
		}
		return nil, err
	}
	if dto.ProjectID > 0 {
		if err := s.ids.Advance(ctx, sequence.Projects, dto.ProjectID); err != nil {
			s.logger.Warn("advance project sequence", zap.Int64("project_id", dto.ProjectID), zap.Error(err))
		}
	}
	return &p, nil
}

func assign(p *models.ProjectModel, dto *CreateProjectDTO) {
	p.Title = dto.Title
	p.Description = dto.Description
	p.DepartureCity = dto.DepartureCity
	p.DepartureDate = dto.DepartureDate
	p.CoverImage = dto.CoverImage
	p.Price = dto.Price
	p.Sale = dto.Sale
	p.IsForeign = dto.IsForeign
	p.TourSteps = nonNilSteps(dto.TourSteps)
	p.Scenes = nonNilScenes(dto.Scenes)
}

func nonNilSteps(v []models.TourStep) []models.TourStep {
	if v == nil {
		return []models.TourStep{}
	}
	return v
}

func nonNilScenes(v []models.Scene) []models.Scene {
	if v == nil {
		return []models.Scene{}
	}
	for i := range v {
		if v[i].Hotspots == nil {
			v[i].Hotspots = []models.Hotspot{}
		}
	}
	return v
}

// Get returns the full project regardless of its lock state.
func (s *Service) Get(ctx context.Context, projectID int64) (*models.ProjectModel, error) {
	var p models.ProjectModel
	if err := s.db.WithContext(ctx).First(&p, "project_id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update merges the provided fields into the project.
func (s *Service) Update(ctx context.Context, projectID int64, dto *UpdateProjectDTO) (*models.ProjectModel, error) {
	if dto.Scenes != nil {
		if err := ValidateScenes(*dto.Scenes); err != nil {
			return nil, err
		}
	}
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.DepartureCity != nil {
		updates["departure_city"] = *dto.DepartureCity
	}
	if dto.DepartureDate != nil {
		updates["departure_date"] = *dto.DepartureDate
	}
	if dto.CoverImage != nil {
		updates["cover_image"] = *dto.CoverImage
	}
	if dto.Price != nil {
		updates["price"] = *dto.Price
	}
	if dto.Sale != nil {
		updates["sale"] = *dto.Sale
	}
	if dto.IsForeign != nil {
		updates["is_foreign"] = *dto.IsForeign
	}
	if dto.TourSteps != nil {
		p.TourSteps = nonNilSteps(*dto.TourSteps)
	}
	if dto.Scenes != nil {
		p.Scenes = nonNilScenes(*dto.Scenes)
	}
	if len(updates) == 0 && dto.TourSteps == nil && dto.Scenes == nil {
		return p, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(p).Updates(updates).Error; err != nil {
				return err
			}
		}
		// serializer columns go through Select+Updates on the struct
		if dto.TourSteps != nil || dto.Scenes != nil {
			cols := []string{"UpdatedAt"}
			if dto.TourSteps != nil {
				cols = append(cols, "TourSteps")
			}
			if dto.Scenes != nil {
				cols = append(cols, "Scenes")
			}
			if err := tx.Model(p).Select(cols).Updates(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID)
}

// Replace overwrites every editable field with body. The project id and
// owner are kept.
func (s *Service) Replace(ctx context.Context, projectID int64, body *ReplaceProjectDTO) (*models.ProjectModel, error) {
	if err := ValidateScenes(body.Scenes); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assign(p, body)
	err = s.db.WithContext(ctx).Model(p).
		Select("Title", "Description", "DepartureCity", "DepartureDate", "CoverImage",
			"Price", "Sale", "IsForeign", "TourSteps", "Scenes", "UpdatedAt").
		Updates(p).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, projectID)
}

// Delete removes the project. Votes, comments and saves referencing it are
// left in place and ignored on read.
func (s *Service) Delete(ctx context.Context, projectID int64) error {
	res := s.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(ctx, events.ProjectDeleted, map[string]interface{}{"projectId": projectID})
	return nil
}

// SetLock sets isLock to desired, or flips it when desired is nil.
func (s *Service) SetLock(ctx context.Context, projectID int64, desired *bool) (*models.ProjectModel, error) {
	var value interface{} = gorm.Expr("NOT is_lock")
	if desired != nil {
		value = *desired
	}
	res := s.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("project_id = ?", projectID).
		Update("is_lock", value)
	if res.Error != nil {
		return nil, res.Error
	}
	// RowsAffected is not checked: MySQL reports zero for an unchanged value
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProjectLockChanged, map[string]interface{}{"projectId": projectID, "isLock": p.IsLock})
	return p, nil
}

// List returns one page of projects matching f.
func (s *Service) List(ctx context.Context, f Filter, q pagination.Query) ([]models.ProjectModel, response.Pagination, error) {
	tx := f.apply(s.db.WithContext(ctx).Model(&models.ProjectModel{})).Order(f.order())
	var items []models.ProjectModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// Find returns every project matching f.
func (s *Service) Find(ctx context.Context, f Filter) ([]models.ProjectModel, error) {
	var items []models.ProjectModel
	err := f.apply(s.db.WithContext(ctx).Model(&models.ProjectModel{})).Order(f.order()).Find(&items).Error
	return items, err
}

// ByIDs returns the projects with the given ids in the order given. Missing
// ids are skipped.
func (s *Service) ByIDs(ctx context.Context, ids []int64) ([]models.ProjectModel, error) {
	if len(ids) == 0 {
		return []models.ProjectModel{}, nil
	}
	var rows []models.ProjectModel
	if err := s.db.WithContext(ctx).Where("project_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]models.ProjectModel, len(rows))
	for _, p := range rows {
		byID[p.ProjectID] = p
	}
	out := make([]models.ProjectModel, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// AppendScene adds a scene produced by the media pipeline. The first scene
// of a project becomes its entry scene.
func (s *Service) AppendScene(ctx context.Context, projectID int64, scene models.Scene) (*models.ProjectModel, error) {
	var out *models.ProjectModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.ProjectModel
		if err := tx.First(&p, "project_id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.SceneByID(scene.ID) != nil {
			return ErrDupSceneID
		}
		if scene.Hotspots == nil {
			scene.Hotspots = []models.Hotspot{}
		}
		scene.IsFirst = len(p.Scenes) == 0
		p.Scenes = append(p.Scenes, scene)
		if err := tx.Model(&p).Select("Scenes", "UpdatedAt").Updates(&p).Error; err != nil {
			return err
		}
		out = &p
		return nil
	})
	return out, err
}

// RemoveScene drops a scene and returns it. Hotspots elsewhere that pointed
// at it become dead links.
func (s *Service) RemoveScene(ctx context.Context, projectID int64, sceneID string) (*models.Scene, error) {
	var removed *models.Scene
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.ProjectModel
		if err := tx.First(&p, "project_id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		kept := make([]models.Scene, 0, len(p.Scenes))
		for i := range p.Scenes {
			if p.Scenes[i].ID == sceneID {
				sc := p.Scenes[i]
				removed = &sc
				continue
			}
			kept = append(kept, p.Scenes[i])
		}
		if removed == nil {
			return ErrSceneNotFound
		}
		if removed.IsFirst && len(kept) > 0 {
			kept[0].IsFirst = true
		}
		p.Scenes = kept
		return tx.Model(&p).Select("Scenes", "UpdatedAt").Updates(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// MarkBooked stamps the time of the latest booking request.
func (s *Service) MarkBooked(ctx context.Context, projectID int64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("project_id = ?", projectID).
		Update("time_last_book", at).Error
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn("publish event", zap.String("type", eventType), zap.Error(err))
	}
}
