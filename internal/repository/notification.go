package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository stores fan-out records. List filters by read state
// when readFilter is non-nil; rows come back newest-first with the actor
// preloaded so Message() can render.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, readFilter *bool, offset, limit int) ([]*models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uuid.UUID) (total, unread int64, err error)
	CountByVerb(ctx context.Context, recipientID uuid.UUID, verb models.Verb) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Preload("Actor").First(&notification, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, readFilter *bool, offset, limit int) ([]*models.Notification, error) {
	db := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID)

	if readFilter != nil {
		db = db.Where("read = ?", *readFilter)
	}

	var notifications []*models.Notification
	if err := db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, int64, error) {
	var total, unread int64

	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Count(&unread).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return total, unread, nil
}

func (r *postgresNotificationRepository) CountByVerb(ctx context.Context, recipientID uuid.UUID, verb models.Verb) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND verb = ?", recipientID, verb).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notifications by verb: %w", err)
	}
	return count, nil
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = false", recipientID).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
