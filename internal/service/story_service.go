package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/cache"
	"storychain-server/internal/interfaces"
	"storychain-server/internal/messaging"
	"storychain-server/internal/models"
)

// DefaultFeedLimit is the page size the feed client requests and the cap for
// the newer-than poll.
const DefaultFeedLimit = 10

// StoryPage is one page of the feed with its pagination metadata.
type StoryPage struct {
	Items   []models.StorySummary `json:"items"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
	Total   int64                 `json:"total"`
	HasMore bool                  `json:"hasMore"`
}

// StoryDetail is a story with its full narrative and comments.
type StoryDetail struct {
	models.Story
	Turns    []models.Turn    `json:"turns"`
	Comments []models.Comment `json:"comments"`
}

// StoryService creates stories with their validated rosters and serves the
// paginated feed.
type StoryService interface {
	CreateStory(ctx context.Context, userID uuid.UUID, title, content, rawCharacters string) (*models.Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (*StoryDetail, error)
	ListStories(ctx context.Context, page, limit int) (*StoryPage, error)
	ListNewerThan(ctx context.Context, watermark time.Time) ([]models.StorySummary, error)
}

type storyServiceImpl struct {
	storyRepo   interfaces.StoryRepository
	turnRepo    interfaces.TurnRepository
	commentRepo interfaces.CommentRepository
	pageCache   cache.StoryPageCache
	events      messaging.StoryEventPublisher
	logger      *zap.Logger
}

// NewStoryService creates a new instance of StoryService. pageCache and
// events may be nil; both are best-effort collaborators.
func NewStoryService(
	storyRepo interfaces.StoryRepository,
	turnRepo interfaces.TurnRepository,
	commentRepo interfaces.CommentRepository,
	pageCache cache.StoryPageCache,
	events messaging.StoryEventPublisher,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:   storyRepo,
		turnRepo:    turnRepo,
		commentRepo: commentRepo,
		pageCache:   pageCache,
		events:      events,
		logger:      logger.Named("StoryService"),
	}
}

// CreateStory validates the raw roster string and persists the story together
// with its characters in one transaction.
func (s *storyServiceImpl) CreateStory(ctx context.Context, userID uuid.UUID, title, content, rawCharacters string) (*models.Story, error) {
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("title", title)}
	s.logger.Info("Creating story", logFields...)

	names, err := ParseRoster(rawCharacters)
	if err != nil {
		s.logger.Warn("Roster validation failed", append(logFields, zap.Error(err))...)
		return nil, err
	}

	story := &models.Story{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storyRepo.Create(ctx, story, names); err != nil {
		s.logger.Error("Failed to create story", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}

	s.invalidateFirstPage(ctx)
	s.publishStoryCreated(ctx, story)

	s.logger.Info("Story created", append(logFields, zap.String("storyID", story.ID.String()))...)
	return story, nil
}

// GetStory returns the story detail with turns in narrative order and the
// comment thread.
func (s *storyServiceImpl) GetStory(ctx context.Context, id uuid.UUID) (*StoryDetail, error) {
	log := s.logger.With(zap.String("storyID", id.String()))

	story, err := s.storyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			log.Warn("Story not found")
			return nil, models.ErrStoryNotFound
		}
		log.Error("Failed to get story", zap.Error(err))
		return nil, ErrInternal
	}

	turns, err := s.turnRepo.ListByStoryID(ctx, id)
	if err != nil {
		log.Error("Failed to list story turns", zap.Error(err))
		return nil, ErrInternal
	}
	comments, err := s.commentRepo.ListByStoryID(ctx, id)
	if err != nil {
		log.Error("Failed to list story comments", zap.Error(err))
		return nil, ErrInternal
	}

	return &StoryDetail{Story: *story, Turns: turns, Comments: comments}, nil
}

// ListStories returns one page of the feed ordered by creation time
// descending. hasMore is computed from the storage layer's authoritative
// count: hasMore = page*limit < total.
func (s *storyServiceImpl) ListStories(ctx context.Context, page, limit int) (*StoryPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultFeedLimit
	}
	log := s.logger.With(zap.Int("page", page), zap.Int("limit", limit))

	// The first default-sized page is what every fresh client asks for;
	// serve it from cache when possible.
	cacheable := page == 1 && limit == DefaultFeedLimit
	if cacheable && s.pageCache != nil {
		if cached, err := s.pageCache.GetFirstPage(ctx); err == nil && cached != nil {
			log.Debug("Serving first feed page from cache")
			return s.buildPage(cached.Items, page, limit, cached.Total), nil
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("Feed page cache read failed", zap.Error(err))
		}
	}

	items, total, err := s.storyRepo.ListPage(ctx, page, limit)
	if err != nil {
		log.Error("Failed to list stories", zap.Error(err))
		return nil, ErrInternal
	}

	if cacheable && s.pageCache != nil {
		if err := s.pageCache.SetFirstPage(ctx, &cache.CachedStoryPage{Items: items, Total: total}); err != nil {
			log.Warn("Feed page cache write failed", zap.Error(err))
		}
	}

	log.Debug("Listed stories", zap.Int("count", len(items)), zap.Int64("total", total))
	return s.buildPage(items, page, limit, total), nil
}

// ListNewerThan returns stories created strictly after the watermark, newest
// first, capped to the default first page size. It never paginates.
func (s *storyServiceImpl) ListNewerThan(ctx context.Context, watermark time.Time) ([]models.StorySummary, error) {
	items, err := s.storyRepo.ListNewerThan(ctx, watermark, DefaultFeedLimit)
	if err != nil {
		s.logger.Error("Failed to list newer stories", zap.Time("watermark", watermark), zap.Error(err))
		return nil, ErrInternal
	}
	return items, nil
}

func (s *storyServiceImpl) buildPage(items []models.StorySummary, page, limit int, total int64) *StoryPage {
	return &StoryPage{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(page*limit) < total,
	}
}

func (s *storyServiceImpl) invalidateFirstPage(ctx context.Context) {
	if s.pageCache == nil {
		return
	}
	if err := s.pageCache.InvalidateFirstPage(ctx); err != nil {
		s.logger.Warn("Failed to invalidate feed page cache", zap.Error(err))
	}
}

func (s *storyServiceImpl) publishStoryCreated(ctx context.Context, story *models.Story) {
	if s.events == nil {
		return
	}
	event := messaging.StoryCreatedEvent{
		StoryID:   story.ID.String(),
		UserID:    story.UserID.String(),
		Title:     story.Title,
		CreatedAt: story.CreatedAt,
	}
	if err := s.events.PublishStoryCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish story.created event", zap.String("storyID", story.ID.String()), zap.Error(err))
	}
}
