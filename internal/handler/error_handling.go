package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, service.ErrEmptyRoster),
		errors.Is(err, service.ErrRosterTooLarge),
		errors.Is(err, service.ErrDuplicateCharacter):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, service.ErrStoryLocked):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeStoryLocked, Message: "Story is not available"}
	case errors.Is(err, service.ErrUnknownCharacter):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeUnknownCharacter, Message: "Character does not belong to this story"}
	case errors.Is(err, service.ErrConsecutiveTurn):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeConsecutiveTurn, Message: "You cannot contribute twice in a row"}
	case errors.Is(err, service.ErrTransientConflict):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeConflict, Message: "Concurrent update conflict, please try again"}
	case errors.Is(err, models.ErrStoryNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeStoryNotFound, Message: "Story not found"}
	case errors.Is(err, models.ErrTurnNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeTurnNotFound, Message: "Turn not found"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
