package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialgraph/socialgraph/internal/middleware"
	"github.com/socialgraph/socialgraph/internal/services"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	offset, limit := pagination(c)

	posts, err := h.feedService.Feed(c.Request.Context(), middleware.GetUserID(c), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"offset": offset,
		"limit":  limit,
	})
}
