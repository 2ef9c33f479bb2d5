package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

// Mock StoryService
type StoryService struct {
	mock.Mock
}

func (m *StoryService) CreateStory(ctx context.Context, userID uuid.UUID, title, content, rawCharacters string) (*models.Story, error) {
	args := m.Called(ctx, userID, title, content, rawCharacters)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}
func (m *StoryService) GetStory(ctx context.Context, id uuid.UUID) (*service.StoryDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*service.StoryDetail)
	return detail, args.Error(1)
}
func (m *StoryService) ListStories(ctx context.Context, page, limit int) (*service.StoryPage, error) {
	args := m.Called(ctx, page, limit)
	result, _ := args.Get(0).(*service.StoryPage)
	return result, args.Error(1)
}
func (m *StoryService) ListNewerThan(ctx context.Context, watermark time.Time) ([]models.StorySummary, error) {
	args := m.Called(ctx, watermark)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

// Mock TurnService
type TurnService struct {
	mock.Mock
}

func (m *TurnService) AddTurn(ctx context.Context, storyID, userID, characterID uuid.UUID, content string) (*models.Turn, error) {
	args := m.Called(ctx, storyID, userID, characterID, content)
	turn, _ := args.Get(0).(*models.Turn)
	return turn, args.Error(1)
}
func (m *TurnService) ListTurns(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error) {
	args := m.Called(ctx, storyID)
	turns, _ := args.Get(0).([]models.Turn)
	return turns, args.Error(1)
}

// Mock UpvoteService
type UpvoteService struct {
	mock.Mock
}

func (m *UpvoteService) Toggle(ctx context.Context, turnID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, turnID, userID)
	return args.Bool(0), args.Error(1)
}

// Mock CommentService
type CommentService struct {
	mock.Mock
}

func (m *CommentService) AddComment(ctx context.Context, storyID, userID uuid.UUID, content string) (*models.Comment, error) {
	args := m.Called(ctx, storyID, userID, content)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}
