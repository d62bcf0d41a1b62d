package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
	"gorm.io/gorm"
)

type LikeService struct {
	likeRepo      repository.LikeRepository
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	notifications *NotificationService
	logger        *logger.Logger
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, commentRepo repository.CommentRepository, notifications *NotificationService, logger *logger.Logger) *LikeService {
	return &LikeService{
		likeRepo:      likeRepo,
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// LikeState is the response contract for the toggle.
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// MyLikes lists the content a user has liked, grouped by kind.
type MyLikes struct {
	Posts    []*models.Post    `json:"liked_posts"`
	Comments []*models.Comment `json:"liked_comments"`
}

// Toggle likes the target if the user has no like on it, and unlikes it
// otherwise. Applying it twice restores the original state. Two concurrent
// toggles racing past the existence check are serialized by the composite
// unique index: the losing insert comes back as a duplicate-key error and
// is treated as "already liked", falling through to the unlike branch
// instead of surfacing to the caller.
func (s *LikeService) Toggle(ctx context.Context, userID uuid.UUID, target models.Target) (*LikeState, error) {
	ownerID, err := s.targetOwner(ctx, target)
	if err != nil {
		return nil, err
	}

	existing, err := s.likeRepo.Get(ctx, userID, target)
	if err != nil {
		return nil, err
	}

	liked := false
	if existing == nil {
		like := &models.Like{
			UserID:     userID,
			TargetKind: target.Kind,
			TargetID:   target.ID,
		}
		switch err := s.likeRepo.Create(ctx, like); {
		case err == nil:
			liked = true
			if ownerID != userID {
				s.notifications.notify(ctx, ownerID, userID, likeVerb(target.Kind), &target)
			}
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Lost the race; the like exists now, so unlike.
			if _, err := s.likeRepo.Delete(ctx, userID, target); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	} else {
		if _, err := s.likeRepo.Delete(ctx, userID, target); err != nil {
			return nil, err
		}
	}

	count, err := s.likeRepo.CountByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":     userID,
		"target_kind": target.Kind,
		"target_id":   target.ID,
		"liked":       liked,
	}).Info("Like toggled")

	return &LikeState{Liked: liked, LikesCount: count}, nil
}

func (s *LikeService) Likes(ctx context.Context, userID uuid.UUID) (*MyLikes, error) {
	postIDs, err := s.likeRepo.TargetIDsByUser(ctx, userID, models.TargetPost)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	commentIDs, err := s.likeRepo.TargetIDsByUser(ctx, userID, models.TargetComment)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}

	return &MyLikes{Posts: posts, Comments: comments}, nil
}

// targetOwner resolves the liked entity and returns its author. The switch
// over the kind is exhaustive; an unknown kind is a validation error, a
// known kind with no row is not-found.
func (s *LikeService) targetOwner(ctx context.Context, target models.Target) (uuid.UUID, error) {
	switch target.Kind {
	case models.TargetPost:
		post, err := s.postRepo.GetByID(ctx, target.ID)
		if err != nil {
			return uuid.Nil, err
		}
		if post == nil {
			return uuid.Nil, fmt.Errorf("%w: post %s", ErrNotFound, target.ID)
		}
		return post.AuthorID, nil
	case models.TargetComment:
		comment, err := s.commentRepo.GetByID(ctx, target.ID)
		if err != nil {
			return uuid.Nil, err
		}
		if comment == nil {
			return uuid.Nil, fmt.Errorf("%w: comment %s", ErrNotFound, target.ID)
		}
		return comment.AuthorID, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: invalid target kind %q", ErrInvalidInput, target.Kind)
	}
}

func likeVerb(kind models.TargetKind) models.Verb {
	if kind == models.TargetComment {
		return models.VerbLikeComment
	}
	return models.VerbLikePost
}
