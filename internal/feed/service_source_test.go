package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storychain-server/internal/feed"
	"storychain-server/internal/models"
	"storychain-server/internal/service"
	"storychain-server/internal/service/mocks"
)

func TestServiceSource(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchPage forwards pagination metadata", func(t *testing.T) {
		stories := new(mocks.StoryService)
		items := []models.StorySummary{{ID: uuid.New()}, {ID: uuid.New()}}
		stories.On("ListStories", mock.Anything, 2, 10).
			Return(&service.StoryPage{Items: items, Page: 2, Limit: 10, Total: 25, HasMore: true}, nil).Once()

		source := feed.NewServiceSource(stories)
		got, total, hasMore, err := source.FetchPage(ctx, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, items, got)
		assert.Equal(t, int64(25), total)
		assert.True(t, hasMore)
		stories.AssertExpectations(t)
	})

	t.Run("FetchPage propagates service errors", func(t *testing.T) {
		stories := new(mocks.StoryService)
		stories.On("ListStories", mock.Anything, 1, 10).
			Return(nil, errors.New("storage down")).Once()

		source := feed.NewServiceSource(stories)
		_, _, _, err := source.FetchPage(ctx, 1, 10)

		assert.Error(t, err)
	})

	t.Run("FetchNewer delegates with the watermark", func(t *testing.T) {
		stories := new(mocks.StoryService)
		since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		newer := []models.StorySummary{{ID: uuid.New()}}
		stories.On("ListNewerThan", mock.Anything, since).Return(newer, nil).Once()

		source := feed.NewServiceSource(stories)
		got, err := source.FetchNewer(ctx, since)

		require.NoError(t, err)
		assert.Equal(t, newer, got)
		stories.AssertExpectations(t)
	})
}
