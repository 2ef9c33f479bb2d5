package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storychain-server/internal/models"
)

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) Create(ctx context.Context, story *models.Story, characterNames []string) error {
	args := m.Called(ctx, story, characterNames)
	return args.Error(0)
}
func (m *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}
func (m *StoryRepository) ListPage(ctx context.Context, page, limit int) ([]models.StorySummary, int64, error) {
	args := m.Called(ctx, page, limit)
	summaries, _ := args.Get(0).([]models.StorySummary)
	total, _ := args.Get(1).(int64)
	return summaries, total, args.Error(2)
}
func (m *StoryRepository) ListNewerThan(ctx context.Context, watermark time.Time, limit int) ([]models.StorySummary, error) {
	args := m.Called(ctx, watermark, limit)
	summaries, _ := args.Get(0).([]models.StorySummary)
	return summaries, args.Error(1)
}

// Mock TurnRepository
type TurnRepository struct {
	mock.Mock
}

func (m *TurnRepository) GetLast(ctx context.Context, storyID uuid.UUID) (*models.Turn, error) {
	args := m.Called(ctx, storyID)
	turn, _ := args.Get(0).(*models.Turn)
	return turn, args.Error(1)
}
func (m *TurnRepository) Append(ctx context.Context, turn *models.Turn) error {
	args := m.Called(ctx, turn)
	return args.Error(0)
}
func (m *TurnRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error) {
	args := m.Called(ctx, storyID)
	turns, _ := args.Get(0).([]models.Turn)
	return turns, args.Error(1)
}

// Mock UpvoteRepository
type UpvoteRepository struct {
	mock.Mock
}

func (m *UpvoteRepository) Add(ctx context.Context, turnID, userID uuid.UUID) error {
	args := m.Called(ctx, turnID, userID)
	return args.Error(0)
}
func (m *UpvoteRepository) Remove(ctx context.Context, turnID, userID uuid.UUID) error {
	args := m.Called(ctx, turnID, userID)
	return args.Error(0)
}
func (m *UpvoteRepository) Exists(ctx context.Context, turnID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, turnID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *UpvoteRepository) CountForTurn(ctx context.Context, turnID uuid.UUID) (int64, error) {
	args := m.Called(ctx, turnID)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

// Mock CommentRepository
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Add(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}
func (m *CommentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Comment, error) {
	args := m.Called(ctx, storyID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}
