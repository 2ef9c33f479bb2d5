package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storychain-server/internal/models"
)

func (h *StoryHandler) addComment(c *gin.Context) {
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

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp := models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request data: " + err.Error()}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}
	if len(req.Content) > maxContentLength {
		errResp := models.ErrorResponse{Code: models.ErrCodeValidation, Message: "Content is too long"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errResp)
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), storyID, userID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
