package feed_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"storychain-server/internal/feed"
	"storychain-server/internal/models"
)

func summary(createdAt time.Time, turnCount int) models.StorySummary {
	return models.StorySummary{ID: uuid.New(), CreatedAt: createdAt, TurnCount: int64(turnCount)}
}

func TestFeedReset(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	f := feed.New(10)
	items := []models.StorySummary{
		summary(base.Add(2*time.Minute), 3),
		summary(base, 1),
	}
	f = f.Reset(items, 12, true)

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, int64(12), f.Total)
	assert.True(t, f.HasMore)
	assert.Equal(t, base.Add(2*time.Minute), f.Watermark)
}

func TestFeedAppendPage(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Extends and advances the cursor", func(t *testing.T) {
		f := feed.New(2).Reset([]models.StorySummary{summary(base, 1), summary(base.Add(-time.Minute), 1)}, 4, true)
		f = f.AppendPage([]models.StorySummary{summary(base.Add(-2*time.Minute), 1), summary(base.Add(-3*time.Minute), 1)}, 4, false)

		assert.Equal(t, 2, f.Page)
		assert.Len(t, f.Items, 4)
		assert.False(t, f.HasMore)
	})

	t.Run("Skips items already present when the boundary shifted", func(t *testing.T) {
		first := summary(base, 1)
		second := summary(base.Add(-time.Minute), 1)
		f := feed.New(2).Reset([]models.StorySummary{first, second}, 3, true)

		// A new story pushed `second` onto page 2.
		third := summary(base.Add(-2*time.Minute), 1)
		f = f.AppendPage([]models.StorySummary{second, third}, 4, false)

		assert.Len(t, f.Items, 3)
	})
}

func TestMerge(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Splices newer items to the front", func(t *testing.T) {
		old := summary(base, 1)
		f := feed.New(10).Reset([]models.StorySummary{old}, 1, false)

		fresh := summary(base.Add(time.Hour), 0)
		merged := feed.Merge(f, []models.StorySummary{fresh})

		assert.Equal(t, []models.StorySummary{fresh, old}, merged.Items)
		assert.Equal(t, int64(2), merged.Total)
		assert.Equal(t, base.Add(time.Hour), merged.Watermark)
	})

	t.Run("Is idempotent", func(t *testing.T) {
		f := feed.New(10).Reset([]models.StorySummary{summary(base, 1)}, 1, false)
		fresh := []models.StorySummary{summary(base.Add(time.Hour), 0)}

		once := feed.Merge(f, fresh)
		twice := feed.Merge(once, fresh)

		assert.Equal(t, once.Items, twice.Items)
		assert.Equal(t, once.Total, twice.Total)
		assert.Equal(t, once.Watermark, twice.Watermark)
	})

	t.Run("Does not mutate the input feed", func(t *testing.T) {
		f := feed.New(10).Reset([]models.StorySummary{summary(base, 1)}, 1, false)
		before := len(f.Items)

		_ = feed.Merge(f, []models.StorySummary{summary(base.Add(time.Hour), 0)})

		assert.Len(t, f.Items, before)
		assert.Equal(t, int64(1), f.Total)
	})

	t.Run("Drops duplicates while keeping genuinely new items", func(t *testing.T) {
		existing := summary(base, 1)
		f := feed.New(10).Reset([]models.StorySummary{existing}, 1, false)

		fresh := summary(base.Add(time.Hour), 0)
		merged := feed.Merge(f, []models.StorySummary{existing, fresh})

		assert.Len(t, merged.Items, 2)
		assert.Equal(t, fresh.ID, merged.Items[0].ID)
	})

	t.Run("Pure no-op when nothing is new", func(t *testing.T) {
		existing := summary(base, 1)
		f := feed.New(10).Reset([]models.StorySummary{existing}, 1, false)

		merged := feed.Merge(f, []models.StorySummary{existing})
		assert.Equal(t, f, merged)
	})
}

func TestPresented(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	popular := summary(base.Add(-2*time.Hour), 9)
	middling := summary(base.Add(-time.Hour), 4)
	newest := summary(base, 1)
	f := feed.New(10).Reset([]models.StorySummary{middling, popular, newest}, 3, false)

	t.Run("Trending orders by turn count descending", func(t *testing.T) {
		got := f.Presented(feed.TabTrending)
		assert.Equal(t, []uuid.UUID{popular.ID, middling.ID, newest.ID}, ids(got))
	})

	t.Run("Newest orders by creation time descending", func(t *testing.T) {
		got := f.Presented(feed.TabNewest)
		assert.Equal(t, []uuid.UUID{newest.ID, middling.ID, popular.ID}, ids(got))
	})

	t.Run("Re-sort leaves the feed untouched", func(t *testing.T) {
		_ = f.Presented(feed.TabTrending)
		assert.Equal(t, []uuid.UUID{middling.ID, popular.ID, newest.ID}, ids(f.Items))
		assert.Equal(t, 1, f.Page)
	})

	t.Run("Trending is stable for equal counts", func(t *testing.T) {
		a := summary(base, 2)
		b := summary(base.Add(-time.Minute), 2)
		g := feed.New(10).Reset([]models.StorySummary{a, b}, 2, false)

		got := g.Presented(feed.TabTrending)
		assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(got))
	})
}

func ids(items []models.StorySummary) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
