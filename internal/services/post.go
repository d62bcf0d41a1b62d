package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	logger      *logger.Logger
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, likeRepo repository.LikeRepository, logger *logger.Logger) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=300"`
	Content string `json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=300"`
	Content *string `json:"content"`
}

// PostView is a post with its derived engagement numbers. The counts are
// live queries against the like and comment tables, so they can never drift
// from the underlying rows.
type PostView struct {
	*models.Post
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
	IsLiked       bool  `json:"is_liked"`
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, req *CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id":   post.ID,
		"author_id": authorID,
	}).Info("Post created")

	return post, nil
}

func (s *PostService) Get(ctx context.Context, viewerID, postID uuid.UUID) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	return s.view(ctx, viewerID, post)
}

// Update modifies a post's title and content. Only the author may update;
// a non-author gets ErrForbidden even though the post exists.
func (s *PostService) Update(ctx context.Context, actorID, postID uuid.UUID, req *UpdatePostRequest) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if post.AuthorID != actorID {
		return nil, fmt.Errorf("%w: post %s is owned by another user", ErrForbidden, postID)
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post and cascades through everything hanging off it: its
// comments, the likes on the post, and the likes on those comments. The
// like rows have no foreign key to their polymorphic target, so the cascade
// is driven here rather than by the database.
func (s *PostService) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if post.AuthorID != actorID {
		return fmt.Errorf("%w: post %s is owned by another user", ErrForbidden, postID)
	}

	commentIDs, err := s.commentRepo.IDsByPostID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.likeRepo.DeleteByTargets(ctx, models.TargetComment, commentIDs); err != nil {
		return err
	}
	if err := s.likeRepo.DeleteByTarget(ctx, models.PostTarget(postID)); err != nil {
		return err
	}
	if err := s.commentRepo.DeleteByPostID(ctx, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id":  postID,
		"comments": len(commentIDs),
	}).Info("Post deleted")

	return nil
}

func (s *PostService) List(ctx context.Context, viewerID uuid.UUID, offset, limit int) ([]*PostView, error) {
	posts, err := s.postRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, posts)
}

func (s *PostService) ListByAuthor(ctx context.Context, viewerID, authorID uuid.UUID, offset, limit int) ([]*PostView, error) {
	posts, err := s.postRepo.GetByAuthor(ctx, authorID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, posts)
}

func (s *PostService) Search(ctx context.Context, viewerID uuid.UUID, query string, offset, limit int) ([]*PostView, error) {
	posts, err := s.postRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, posts)
}

func (s *PostService) view(ctx context.Context, viewerID uuid.UUID, post *models.Post) (*PostView, error) {
	views, err := s.views(ctx, viewerID, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *PostService) views(ctx context.Context, viewerID uuid.UUID, posts []*models.Post) ([]*PostView, error) {
	return assemblePostViews(ctx, s.likeRepo, s.commentRepo, viewerID, posts)
}

// assemblePostViews is shared with the feed service, which produces the
// same shape from its own query.
func assemblePostViews(ctx context.Context, likeRepo repository.LikeRepository, commentRepo repository.CommentRepository, viewerID uuid.UUID, posts []*models.Post) ([]*PostView, error) {
	views := make([]*PostView, 0, len(posts))
	for _, post := range posts {
		target := models.PostTarget(post.ID)

		likes, err := likeRepo.CountByTarget(ctx, target)
		if err != nil {
			return nil, err
		}
		comments, err := commentRepo.CountByPostID(ctx, post.ID)
		if err != nil {
			return nil, err
		}

		view := &PostView{
			Post:          post,
			LikesCount:    likes,
			CommentsCount: comments,
		}
		if viewerID != uuid.Nil {
			if view.IsLiked, err = likeRepo.IsLiked(ctx, viewerID, target); err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}
