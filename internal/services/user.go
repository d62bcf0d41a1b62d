package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	notifications *NotificationService
	logger        *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, notifications *NotificationService, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo:      userRepo,
		followRepo:    followRepo,
		notifications: notifications,
		logger:        logger,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=50"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=50"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
}

// UserProfile is a user with their derived follow counts. The counts come
// from counting edges at read time, never from stored columns.
type UserProfile struct {
	*models.User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
	IsFollowedBy   bool  `json:"is_followed_by"`
}

// FollowState is the response contract for follow and unfollow.
type FollowState struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q", ErrAlreadyExists, req.Username)
	}

	existing, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %q", ErrAlreadyExists, req.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

// Profile assembles a user with derived counts, plus the follow relation
// between the viewer and the user when a viewer is known.
func (s *UserService) Profile(ctx context.Context, viewerID, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{
		User:           user,
		FollowersCount: followers,
		FollowingCount: following,
	}

	if viewerID != uuid.Nil && viewerID != userID {
		if profile.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, err
		}
		if profile.IsFollowedBy, err = s.followRepo.IsFollowing(ctx, userID, viewerID); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow adds a directed edge and fans out a follow notification. It
// returns false without touching state when the actor targets themselves or
// the edge already exists; a concurrent duplicate insert collapses into the
// already-following case.
func (s *UserService) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if followerID == followingID {
		return false, nil
	}

	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, fmt.Errorf("%w: user %s", ErrNotFound, followingID)
	}

	following, err := s.followRepo.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if following {
		return false, nil
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	s.notifications.notify(ctx, followingID, followerID, models.VerbFollow, nil)

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  followerID,
		"following_id": followingID,
	}).Info("Follow created")

	return true, nil
}

// Unfollow removes the edge, reporting whether one existed. No notification
// on unfollow.
func (s *UserService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	removed, err := s.followRepo.Delete(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *UserService) IsFollowing(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.followRepo.IsFollowing(ctx, a, b)
}

func (s *UserService) IsFollowedBy(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.followRepo.IsFollowing(ctx, b, a)
}

// FollowState reports the relation between actor and target together with
// the live counts the API contract exposes: the target's follower count and
// the actor's following count.
func (s *UserService) FollowState(ctx context.Context, actorID, targetID uuid.UUID) (*FollowState, error) {
	following, err := s.followRepo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return &FollowState{
		Following:      following,
		FollowersCount: followers,
		FollowingCount: followingCount,
	}, nil
}

func (s *UserService) GetFollowers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID, offset, limit)
}

func (s *UserService) GetFollowing(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID, offset, limit)
}

func (s *UserService) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, error) {
	return s.userRepo.Search(ctx, query, offset, limit)
}

func (s *UserService) Suggestions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error) {
	return s.userRepo.Suggestions(ctx, userID, limit)
}
