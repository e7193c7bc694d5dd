// Package comment stores comments on projects. Only the author may edit or
// delete a comment.
package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/metrics"
	"gorm.io/gorm"
)

const anonymousName = "Anonymous"

var (
	ErrNotFound     = apperr.New(apperr.NotFound, "Comment not found")
	ErrNotAuthor    = apperr.New(apperr.Forbidden, "Only the author can change this comment")
	ErrEmptyContent = apperr.New(apperr.InvalidArgument, "Comment content is required")
)

// ProjectLookup loads a project or fails with a NotFound apperr.
type ProjectLookup interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
}

// View is a comment with its author's display fields joined in.
type View struct {
	models.CommentModel
	UserName string `json:"userName"`
	Avatar   string `json:"avatar"`
}

type Service struct {
	db       *gorm.DB
	projects ProjectLookup
}

func NewService(db *gorm.DB, projects ProjectLookup) *Service {
	return &Service{db: db, projects: projects}
}

func (s *Service) Create(ctx context.Context, authorID, projectID int64, content string) (*models.CommentModel, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	c := models.CommentModel{ProjectID: projectID, UserID: authorID, Content: content}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	metrics.CommentOps.WithLabelValues("create").Inc()
	return &c, nil
}

// owned loads a comment and checks that callerID wrote it.
func (s *Service) owned(ctx context.Context, id string, callerID int64) (*models.CommentModel, error) {
	var c models.CommentModel
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.UserID != callerID {
		return nil, ErrNotAuthor
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id string, callerID int64, content string) (*models.CommentModel, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	c, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(c).
		Where("user_id = ?", callerID).
		Update("content", content).Error
	if err != nil {
		return nil, err
	}
	c.Content = content
	metrics.CommentOps.WithLabelValues("update").Inc()
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string, callerID int64) error {
	c, err := s.owned(ctx, id, callerID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", c.ID, callerID).Delete(&models.CommentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	metrics.CommentOps.WithLabelValues("delete").Inc()
	return nil
}

type viewRow struct {
	models.CommentModel
	AuthorName   *string
	AuthorAvatar *string
}

// ListByProject returns a project's comments newest first. Comments whose
// author no longer exists are shown as Anonymous.
func (s *Service) ListByProject(ctx context.Context, projectID int64) ([]View, error) {
	var rows []viewRow
	err := s.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.user_name AS author_name, users.avatar AS author_avatar").
		Joins("LEFT JOIN users ON users.user_id = comments.user_id").
		Where("comments.project_id = ?", projectID).
		Order("comments.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]View, len(rows))
	for i, r := range rows {
		out[i] = View{CommentModel: r.CommentModel, UserName: anonymousName}
		if r.AuthorName != nil && *r.AuthorName != "" {
			out[i].UserName = *r.AuthorName
		}
		if r.AuthorAvatar != nil {
			out[i].Avatar = *r.AuthorAvatar
		}
	}
	return out, nil
}
