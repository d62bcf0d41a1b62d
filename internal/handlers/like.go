package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialgraph/socialgraph/internal/middleware"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/internal/services"
)

type LikeHandler struct {
	likeService *services.LikeService
}

func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// LikePost toggles the caller's like on a post and reports the resulting
// state with the live count.
func (h *LikeHandler) LikePost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	state, err := h.likeService.Toggle(c.Request.Context(), middleware.GetUserID(c), models.PostTarget(postID))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if state.Liked {
		status = http.StatusCreated
	}
	c.JSON(status, state)
}

func (h *LikeHandler) LikeComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	state, err := h.likeService.Toggle(c.Request.Context(), middleware.GetUserID(c), models.CommentTarget(commentID))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if state.Liked {
		status = http.StatusCreated
	}
	c.JSON(status, state)
}

func (h *LikeHandler) MyLikes(c *gin.Context) {
	likes, err := h.likeService.Likes(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, likes)
}
