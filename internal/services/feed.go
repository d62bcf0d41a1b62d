package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
)

// FeedService derives a user's feed from the follow graph at read time.
// Nothing is materialized or cached: the feed is exactly what the query
// over follows and posts says it is.
type FeedService struct {
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	logger      *logger.Logger
}

func NewFeedService(followRepo repository.FollowRepository, postRepo repository.PostRepository, commentRepo repository.CommentRepository, likeRepo repository.LikeRepository, logger *logger.Logger) *FeedService {
	return &FeedService{
		followRepo:  followRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		logger:      logger,
	}
}

// Feed returns posts authored by anyone the user follows, newest first. A
// user following nobody gets an empty page, never the firehose.
func (s *FeedService) Feed(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*PostView, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(followingIDs) == 0 {
		return []*PostView{}, nil
	}

	posts, err := s.postRepo.GetByAuthors(ctx, followingIDs, offset, limit)
	if err != nil {
		return nil, err
	}

	return assemblePostViews(ctx, s.likeRepo, s.commentRepo, userID, posts)
}
