// Package notification stores booking notifications and pushes them to the
// recipient in realtime.
package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventNotification is the realtime event type sent to the recipient.
const EventNotification = "NOTIFICATION_CREATED"

var (
	ErrNotFound     = apperr.New(apperr.NotFound, "Notification not found")
	ErrNotRecipient = apperr.New(apperr.Forbidden, "Not the recipient of this notification")
	ErrEmptyMessage = apperr.New(apperr.InvalidArgument, "Missing data")
)

// Projects is the slice of the tour store a notification needs.
type Projects interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
	MarkBooked(ctx context.Context, projectID int64, at time.Time) error
}

// Pusher delivers a realtime event to every connection of a user.
type Pusher interface {
	PushToUser(ctx context.Context, userID int64, event string, payload interface{})
}

type Service struct {
	db       *gorm.DB
	projects Projects
	pusher   Pusher
	pub      events.Publisher
	logger   *zap.Logger
}

func NewService(db *gorm.DB, projects Projects, pusher Pusher, pub events.Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, projects: projects, pusher: pusher, pub: pub, logger: logger.Named("notification")}
}

// Book raises a booking notification from senderID to the owner of projectID.
// The project title is copied so the notification survives later edits.
func (s *Service) Book(ctx context.Context, senderID, projectID int64, message string) (*models.NotificationModel, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	n := &models.NotificationModel{
		RecipientUserID: p.OwnerUserID,
		SenderUserID:    senderID,
		ProjectID:       p.ProjectID,
		ProjectName:     p.Title,
		Message:         message,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.Inc()

	if err := s.projects.MarkBooked(ctx, p.ProjectID, n.CreatedAt); err != nil {
		s.logger.Warn("stamp last booking failed", zap.Int64("project_id", p.ProjectID), zap.Error(err))
	}
	if s.pusher != nil {
		s.pusher.PushToUser(ctx, n.RecipientUserID, EventNotification, n)
	}
	if s.pub != nil {
		if err := s.pub.Publish(ctx, events.NotificationCreated, n); err != nil {
			s.logger.Warn("publish notification event failed", zap.Error(err))
		}
	}
	return n, nil
}

// ListForRecipient returns every notification addressed to userID, newest
// first, read or not.
func (s *Service) ListForRecipient(ctx context.Context, userID int64) ([]models.NotificationModel, error) {
	out := []models.NotificationModel{}
	err := s.db.WithContext(ctx).
		Where("recipient_user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Service) MarkRead(ctx context.Context, userID int64, id string) (*models.NotificationModel, error) {
	var n models.NotificationModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if n.RecipientUserID != userID {
		return nil, ErrNotRecipient
	}
	if n.IsRead {
		return &n, nil
	}
	if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	n.IsRead = true
	return &n, nil
}

// MarkAllRead flags every unread notification of userID and reports how many
// changed.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("recipient_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
