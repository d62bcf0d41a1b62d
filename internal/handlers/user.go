package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/middleware"
	"github.com/socialgraph/socialgraph/internal/services"
	"github.com/socialgraph/socialgraph/pkg/cache"
)

type UserHandler struct {
	userService *services.UserService
	revocations *cache.RedisClient
	jwtSecret   string
	jwtExpire   time.Duration
}

func NewUserHandler(userService *services.UserService, revocations *cache.RedisClient, jwtSecret string, jwtExpire time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		revocations: revocations,
		jwtSecret:   jwtSecret,
		jwtExpire:   jwtExpire,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, h.jwtExpire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, h.jwtExpire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token until its natural expiry.
func (h *UserHandler) Logout(c *gin.Context) {
	token, expires := middleware.GetToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.revocations.RevokeToken(c.Request.Context(), token, time.Until(expires)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), middleware.GetUserID(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (h *UserHandler) GetMyProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.userService.Profile(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type followRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

func (h *UserHandler) Follow(c *gin.Context) {
	actorID := middleware.GetUserID(c)

	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	followed, err := h.userService.Follow(c.Request.Context(), actorID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := h.userService.FollowState(c.Request.Context(), actorID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !followed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "You are already following this user or cannot follow yourself",
			"following":       state.Following,
			"followers_count": state.FollowersCount,
			"following_count": state.FollowingCount,
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	actorID := middleware.GetUserID(c)

	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	removed, err := h.userService.Unfollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := h.userService.FollowState(c.Request.Context(), actorID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !removed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "You are not following this user",
			"following":       state.Following,
			"followers_count": state.FollowersCount,
			"following_count": state.FollowingCount,
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	followers, err := h.userService.GetFollowers(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"offset":    offset,
		"limit":     limit,
	})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	following, err := h.userService.GetFollowing(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"offset":    offset,
		"limit":     limit,
	})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	offset, limit := pagination(c)

	users, err := h.userService.Search(c.Request.Context(), query, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"query":  query,
		"offset": offset,
		"limit":  limit,
	})
}

func (h *UserHandler) Suggestions(c *gin.Context) {
	users, err := h.userService.Suggestions(c.Request.Context(), middleware.GetUserID(c), 10)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
