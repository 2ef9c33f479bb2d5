package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

// CommentService attaches flat comments to stories.
type CommentService interface {
	AddComment(ctx context.Context, storyID, userID uuid.UUID, content string) (*models.Comment, error)
}

type commentServiceImpl struct {
	storyRepo   interfaces.StoryRepository
	commentRepo interfaces.CommentRepository
	logger      *zap.Logger
}

// NewCommentService creates a new instance of CommentService.
func NewCommentService(storyRepo interfaces.StoryRepository, commentRepo interfaces.CommentRepository, logger *zap.Logger) CommentService {
	return &commentServiceImpl{
		storyRepo:   storyRepo,
		commentRepo: commentRepo,
		logger:      logger.Named("CommentService"),
	}
}

func (s *commentServiceImpl) AddComment(ctx context.Context, storyID, userID uuid.UUID, content string) (*models.Comment, error) {
	logFields := []zap.Field{zap.String("storyID", storyID.String()), zap.String("userID", userID.String())}

	if _, err := s.storyRepo.GetByID(ctx, storyID); err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			s.logger.Warn("Story not found for comment", logFields...)
			return nil, models.ErrStoryNotFound
		}
		s.logger.Error("Failed to load story for comment", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		StoryID:   storyID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.commentRepo.Add(ctx, comment); err != nil {
		s.logger.Error("Failed to add comment", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}

	s.logger.Info("Comment added", append(logFields, zap.String("commentID", comment.ID.String()))...)
	return comment, nil
}
