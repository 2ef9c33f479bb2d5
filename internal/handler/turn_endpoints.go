package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

func (h *StoryHandler) addTurn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	storyID, err := uuid.Parse(c.Param("story_id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid story ID format"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	var req addTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	characterID, err := uuid.Parse(req.CharacterID)
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid character ID format"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(req.Content) > maxContentLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeValidation, Message: "Content is too long"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	turn, err := h.turnService.AddTurn(c.Request.Context(), storyID, userID, characterID, req.Content)
	if err != nil {
		turnsTotal.WithLabelValues(turnOutcome(err)).Inc()
		handleServiceError(c, err)
		return
	}

	turnsTotal.WithLabelValues("accepted").Inc()
	h.logger.Info("Turn added",
		zap.String("storyID", storyID.String()),
		zap.String("turnID", turn.ID.String()),
		zap.String("userID", userID.String()))
	c.JSON(http.StatusCreated, turn)
}

func (h *StoryHandler) listTurns(c *gin.Context) {
	storyID, err := uuid.Parse(c.Param("story_id"))
	if err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid story ID format"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	turns, err := h.turnService.ListTurns(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, turns)
}

func turnOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrConsecutiveTurn):
		return "rejected_consecutive"
	case errors.Is(err, service.ErrStoryLocked):
		return "rejected_locked"
	case errors.Is(err, service.ErrUnknownCharacter):
		return "rejected_character"
	case errors.Is(err, service.ErrTransientConflict):
		return "rejected_conflict"
	default:
		return "rejected_other"
	}
}
