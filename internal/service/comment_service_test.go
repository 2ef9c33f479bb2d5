package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces/mocks"
	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	userID := uuid.New()

	t.Run("Adds comment to an existing story", func(t *testing.T) {
		mockStoryRepo := new(mocks.StoryRepository)
		mockCommentRepo := new(mocks.CommentRepository)
		svc := service.NewCommentService(mockStoryRepo, mockCommentRepo, zap.NewNop())

		mockStoryRepo.On("GetByID", ctx, storyID).Return(&models.Story{ID: storyID}, nil).Once()
		mockCommentRepo.On("Add", ctx, mock.MatchedBy(func(comment *models.Comment) bool {
			assert.Equal(t, storyID, comment.StoryID)
			assert.Equal(t, userID, comment.UserID)
			assert.Equal(t, "Great turn!", comment.Content)
			return true
		})).Return(nil).Once()

		comment, err := svc.AddComment(ctx, storyID, userID, "Great turn!")
		assert.NoError(t, err)
		assert.NotNil(t, comment)
		mockCommentRepo.AssertExpectations(t)
	})

	t.Run("Unknown story", func(t *testing.T) {
		mockStoryRepo := new(mocks.StoryRepository)
		mockCommentRepo := new(mocks.CommentRepository)
		svc := service.NewCommentService(mockStoryRepo, mockCommentRepo, zap.NewNop())

		mockStoryRepo.On("GetByID", ctx, storyID).Return(nil, models.ErrStoryNotFound).Once()

		_, err := svc.AddComment(ctx, storyID, userID, "Hello?")
		assert.ErrorIs(t, err, models.ErrStoryNotFound)
		mockCommentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}
