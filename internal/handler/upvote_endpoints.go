package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/models"
)

func (h *StoryHandler) toggleUpvote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	turnID, err := uuid.Parse(c.Param("turn_id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid turn ID format"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	upvoted, err := h.upvoteService.Toggle(c.Request.Context(), turnID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	state := "removed"
	if upvoted {
		state = "added"
	}
	upvoteTogglesTotal.WithLabelValues(state).Inc()
	h.logger.Debug("Upvote toggled",
		zap.String("turnID", turnID.String()),
		zap.String("userID", userID.String()),
		zap.Bool("upvoted", upvoted))
	c.JSON(http.StatusOK, toggleUpvoteResponse{Upvoted: upvoted})
}
