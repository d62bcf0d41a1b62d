package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// NotificationView is a notification with its rendered message.
type NotificationView struct {
	*models.Notification
	Message string `json:"message"`
}

type NotificationCounts struct {
	UnreadCount int64 `json:"unread_count"`
	TotalCount  int64 `json:"total_count"`
}

type NotificationStats struct {
	Total  int64                 `json:"total"`
	Unread int64                 `json:"unread"`
	Read   int64                 `json:"read"`
	Verbs  map[models.Verb]int64 `json:"types"`
}

// Create persists one fan-out record. It never de-duplicates: repeating the
// same triggering event (unfollow then follow again) produces a second row.
// An unknown verb is a caller bug and is rejected before any write.
func (s *NotificationService) Create(ctx context.Context, recipientID, actorID uuid.UUID, verb models.Verb, target *models.Target, data json.RawMessage) (*models.Notification, error) {
	if !verb.Valid() {
		return nil, fmt.Errorf("%w: unknown notification verb %q", ErrInvalidInput, verb)
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		Data:        data,
	}
	if target != nil {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		notification.TargetKind = target.Kind
		id := target.ID
		notification.TargetID = &id
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"recipient_id": recipientID,
		"actor_id":     actorID,
		"verb":         verb,
	}).Debug("Notification created")

	return notification, nil
}

func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, readFilter *bool, offset, limit int) ([]*NotificationView, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, recipientID, readFilter, offset, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, &NotificationView{Notification: n, Message: n.Message()})
	}
	return views, nil
}

func (s *NotificationService) Counts(ctx context.Context, recipientID uuid.UUID) (*NotificationCounts, error) {
	total, unread, err := s.notificationRepo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &NotificationCounts{UnreadCount: unread, TotalCount: total}, nil
}

func (s *NotificationService) Stats(ctx context.Context, recipientID uuid.UUID) (*NotificationStats, error) {
	total, unread, err := s.notificationRepo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	stats := &NotificationStats{
		Total:  total,
		Unread: unread,
		Read:   total - unread,
		Verbs:  make(map[models.Verb]int64),
	}

	for _, verb := range []models.Verb{
		models.VerbFollow,
		models.VerbLikePost,
		models.VerbLikeComment,
		models.VerbComment,
		models.VerbMention,
	} {
		count, err := s.notificationRepo.CountByVerb(ctx, recipientID, verb)
		if err != nil {
			return nil, err
		}
		stats.Verbs[verb] = count
	}

	return stats, nil
}

// MarkRead flips one notification to read. Only the recipient may do so;
// anyone else gets ErrForbidden, distinct from a missing row.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	if notification.RecipientID != recipientID {
		return fmt.Errorf("%w: notification %s belongs to another user", ErrForbidden, notificationID)
	}

	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}

// notify is the explicit fan-out hook used by the other services. Failures
// are logged rather than propagated so a broken notification write cannot
// roll back the state change that triggered it.
func (s *NotificationService) notify(ctx context.Context, recipientID, actorID uuid.UUID, verb models.Verb, target *models.Target) {
	if _, err := s.Create(ctx, recipientID, actorID, verb, target, nil); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"recipient_id": recipientID,
			"verb":         verb,
		}).Error("Failed to create notification")
	}
}
