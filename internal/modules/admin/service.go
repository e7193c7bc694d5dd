// Package admin backs the moderation console: filtered user and project
// listings plus direct mutations.
package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = apperr.New(apperr.NotFound, "User not found")
	ErrInvalidRole  = apperr.New(apperr.InvalidArgument, "Invalid role")
	ErrSelfDelete   = apperr.New(apperr.InvalidArgument, "You cannot delete your own account")
)

// Projects is the tour store surface the console drives.
type Projects interface {
	List(ctx context.Context, f project.Filter, q pagination.Query) ([]models.ProjectModel, response.Pagination, error)
	Delete(ctx context.Context, projectID int64) error
	SetLock(ctx context.Context, projectID int64, desired *bool) (*models.ProjectModel, error)
}

// UserFilter narrows the user listing. Text fields match case-insensitive
// substrings.
type UserFilter struct {
	UserID   int64
	Account  string
	UserName string
	Email    string
	Phone    string
	Type     int
}

type UserPatch struct {
	UserName *string `json:"userName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Role     *string `json:"role"`
}

type ProjectFilter struct {
	ProjectID int64
	Title     string
	IsLock    *bool
}

type Service struct {
	db       *gorm.DB
	projects Projects
	pub      events.Publisher
	logger   *zap.Logger
}

func NewService(db *gorm.DB, projects Projects, pub events.Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, projects: projects, pub: pub, logger: logger.Named("admin")}
}

func likeLower(tx *gorm.DB, col, v string) *gorm.DB {
	v = strings.TrimSpace(v)
	if v == "" {
		return tx
	}
	return tx.Where(database.ContainsClause(col), database.Contains(v))
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter, q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.UserModel{}).Omit("password")
	if f.UserID > 0 {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	tx = likeLower(tx, "account", f.Account)
	tx = likeLower(tx, "user_name", f.UserName)
	tx = likeLower(tx, "email", f.Email)
	tx = likeLower(tx, "phone", f.Phone)
	if f.Type > 0 {
		tx = tx.Where("type = ?", f.Type)
	}
	tx = tx.Order("user_id DESC")

	users := []models.UserModel{}
	pag, err := pagination.Paginate(tx, q, &users)
	return users, pag, err
}

func (s *Service) getUser(ctx context.Context, userID int64) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies the non-empty fields of patch.
func (s *Service) UpdateUser(ctx context.Context, userID int64, patch *UserPatch) (*models.UserModel, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	for col, v := range map[string]*string{
		"user_name": patch.UserName,
		"email":     patch.Email,
		"phone":     patch.Phone,
		"address":   patch.Address,
	} {
		if v != nil && strings.TrimSpace(*v) != "" {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	if patch.Role != nil {
		if !models.ValidRole(*patch.Role) {
			return nil, ErrInvalidRole
		}
		updates["role"] = *patch.Role
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.getUser(ctx, userID)
}

// DeleteUser removes the account row only. Votes, saved tours, comments and
// owned projects reference the user weakly and are kept, so other projects'
// rating statistics do not change.
func (s *Service) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return ErrSelfDelete
	}
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	if err := s.pub.Publish(ctx, events.UserDeleted, map[string]interface{}{"userId": userID, "by": actorID}); err != nil {
		s.logger.Warn("publish user deleted", zap.Error(err))
	}
	s.logger.Info("user deleted", zap.Int64("user_id", userID), zap.Int64("by", actorID))
	return nil
}

// ListProjects includes locked projects, newest id first.
func (s *Service) ListProjects(ctx context.Context, f ProjectFilter, q pagination.Query) ([]models.ProjectModel, response.Pagination, error) {
	return s.projects.List(ctx, project.Filter{
		ProjectID: f.ProjectID,
		Title:     f.Title,
		IsLock:    f.IsLock,
		Sort:      project.SortProjectIDDesc,
	}, q)
}

func (s *Service) DeleteProject(ctx context.Context, projectID int64) error {
	return s.projects.Delete(ctx, projectID)
}

// SetLock sets the lock state, or toggles it when desired is nil.
func (s *Service) SetLock(ctx context.Context, projectID int64, desired *bool) (*models.ProjectModel, error) {
	return s.projects.SetLock(ctx, projectID, desired)
}
