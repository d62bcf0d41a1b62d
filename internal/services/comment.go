package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
)

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	likeRepo      repository.LikeRepository
	notifications *NotificationService
	logger        *logger.Logger
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, likeRepo repository.LikeRepository, notifications *NotificationService, logger *logger.Logger) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		likeRepo:      likeRepo,
		notifications: notifications,
		logger:        logger,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentView struct {
	*models.Comment
	LikesCount int64 `json:"likes_count"`
	IsLiked    bool  `json:"is_liked"`
}

// Create attaches a comment to a post and notifies the post's author,
// unless the author is commenting on their own post.
func (s *CommentService) Create(ctx context.Context, authorID, postID uuid.UUID, req *CreateCommentRequest) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if post.AuthorID != authorID {
		target := models.PostTarget(postID)
		s.notifications.notify(ctx, post.AuthorID, authorID, models.VerbComment, &target)
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    postID,
	}).Info("Comment created")

	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, actorID, commentID uuid.UUID, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}
	if comment.AuthorID != actorID {
		return nil, fmt.Errorf("%w: comment %s is owned by another user", ErrForbidden, commentID)
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment and the likes targeting it. Author-gated like
// post deletion.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}
	if comment.AuthorID != actorID {
		return fmt.Errorf("%w: comment %s is owned by another user", ErrForbidden, commentID)
	}

	if err := s.likeRepo.DeleteByTarget(ctx, models.CommentTarget(commentID)); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func (s *CommentService) ListByPost(ctx context.Context, viewerID, postID uuid.UUID, offset, limit int) ([]*CommentView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, comments)
}

func (s *CommentService) views(ctx context.Context, viewerID uuid.UUID, comments []*models.Comment) ([]*CommentView, error) {
	views := make([]*CommentView, 0, len(comments))
	for _, comment := range comments {
		target := models.CommentTarget(comment.ID)

		likes, err := s.likeRepo.CountByTarget(ctx, target)
		if err != nil {
			return nil, err
		}

		view := &CommentView{
			Comment:    comment,
			LikesCount: likes,
		}
		if viewerID != uuid.Nil {
			if view.IsLiked, err = s.likeRepo.IsLiked(ctx, viewerID, target); err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}
