package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

func (h *StoryHandler) createStory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(req.Title) < minTitleLength || len(req.Title) > maxTitleLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeValidation, Message: "Title length is out of bounds"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(req.Content) > maxContentLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeValidation, Message: "Content is too long"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	story, err := h.storyService.CreateStory(c.Request.Context(), userID, req.Title, req.Content, req.Characters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	storiesCreatedTotal.Inc()
	h.logger.Info("Story created", zap.String("storyID", story.ID.String()), zap.String("userID", userID.String()))
	c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) listStories(c *gin.Context) {
	page := parsePositiveQueryInt(c, "page", 1)
	limit := parsePositiveQueryInt(c, "limit", service.DefaultFeedLimit)

	result, err := h.storyService.ListStories(c.Request.Context(), page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StoryHandler) listNewerStories(c *gin.Context) {
	sinceStr := c.Query("since")
	if sinceStr == "" {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Missing 'since' parameter"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	since, err := time.Parse(time.RFC3339Nano, sinceStr)
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid 'since' timestamp, expected RFC 3339"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	stories, err := h.storyService.ListNewerThan(c.Request.Context(), since)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newerStoriesResponse{Data: stories, Count: len(stories)})
}

func (h *StoryHandler) getStory(c *gin.Context) {
	storyID, err := uuid.Parse(c.Param("story_id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid story ID format"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	detail, err := h.storyService.GetStory(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func parsePositiveQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
