package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"gorm.io/gorm"
)

// LikeRepository stores polymorphic like rows. Create lets a composite
// unique violation pass through wrapped around gorm.ErrDuplicatedKey; the
// toggle in the service layer depends on detecting it with errors.Is.
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Get(ctx context.Context, userID uuid.UUID, target models.Target) (*models.Like, error)
	Delete(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error)
	CountByTarget(ctx context.Context, target models.Target) (int64, error)
	DeleteByTarget(ctx context.Context, target models.Target) error
	DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []uuid.UUID) error
	TargetIDsByUser(ctx context.Context, userID uuid.UUID, kind models.TargetKind) ([]uuid.UUID, error)
	IsLiked(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error)
}

type postgresLikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &postgresLikeRepository{db: db}
}

func (r *postgresLikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *postgresLikeRepository) Get(ctx context.Context, userID uuid.UUID, target models.Target) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		First(&like).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (r *postgresLikeRepository) Delete(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresLikeRepository) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *postgresLikeRepository) DeleteByTarget(ctx context.Context, target models.Target) error {
	if err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes by target: %w", err)
	}
	return nil
}

// DeleteByTargets removes every like pointing at any of the given rows of
// one kind. Used by the post-delete cascade for a post's comments.
func (r *postgresLikeRepository) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes by targets: %w", err)
	}
	return nil
}

func (r *postgresLikeRepository) TargetIDsByUser(ctx context.Context, userID uuid.UUID, kind models.TargetKind) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ?", userID, kind).
		Order("created_at DESC").
		Pluck("target_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get liked target ids: %w", err)
	}
	return ids, nil
}

func (r *postgresLikeRepository) IsLiked(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}
