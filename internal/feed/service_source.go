package feed

import (
	"context"
	"time"

	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

// ServiceSource adapts the in-process StoryService to the poller's Source,
// so the feed client can run inside the server binary without an HTTP hop.
type ServiceSource struct {
	stories service.StoryService
}

// Compile-time check
var _ Source = (*ServiceSource)(nil)

// NewServiceSource creates a Source backed by the story service.
func NewServiceSource(stories service.StoryService) *ServiceSource {
	return &ServiceSource{stories: stories}
}

func (s *ServiceSource) FetchPage(ctx context.Context, page, limit int) ([]models.StorySummary, int64, bool, error) {
	result, err := s.stories.ListStories(ctx, page, limit)
	if err != nil {
		return nil, 0, false, err
	}
	return result.Items, result.Total, result.HasMore, nil
}

func (s *ServiceSource) FetchNewer(ctx context.Context, since time.Time) ([]models.StorySummary, error) {
	return s.stories.ListNewerThan(ctx, since)
}
