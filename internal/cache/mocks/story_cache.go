package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storychain-server/internal/cache"
)

// Mock StoryPageCache
type StoryPageCache struct {
	mock.Mock
}

func (m *StoryPageCache) GetFirstPage(ctx context.Context) (*cache.CachedStoryPage, error) {
	args := m.Called(ctx)
	page, _ := args.Get(0).(*cache.CachedStoryPage)
	return page, args.Error(1)
}
func (m *StoryPageCache) SetFirstPage(ctx context.Context, page *cache.CachedStoryPage) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}
func (m *StoryPageCache) InvalidateFirstPage(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
