// Package feed models the client side of the story feed: a locally held,
// paginated list of story summaries that is rebuilt on refresh, extended on
// "load more", and spliced when the poller detects stories published after
// the feed's watermark. Presentation re-sorts never touch pagination state.
package feed

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"storychain-server/internal/models"
)

// Tab selects the presentation ordering of an already-fetched feed.
type Tab string

const (
	// TabTrending orders by descending turn count.
	TabTrending Tab = "trending"
	// TabNewest orders by descending creation time.
	TabNewest Tab = "newest"
)

// Feed is a client-local snapshot of the story list plus its pagination
// cursor and watermark. A Feed value is owned by its holder; all operations
// return a new value and leave the receiver untouched.
type Feed struct {
	Items     []models.StorySummary
	Page      int       // last fetched page, 1-based; 0 means nothing fetched
	PageSize  int
	Total     int64
	HasMore   bool
	Watermark time.Time // newest created_at the feed has incorporated
}

// New returns an empty feed with the given page size.
func New(pageSize int) Feed {
	return Feed{PageSize: pageSize, HasMore: true}
}

// Reset rebuilds the feed from a freshly fetched first page.
func (f Feed) Reset(items []models.StorySummary, total int64, hasMore bool) Feed {
	next := Feed{
		Items:    append([]models.StorySummary(nil), items...),
		Page:     1,
		PageSize: f.PageSize,
		Total:    total,
		HasMore:  hasMore,
	}
	next.Watermark = newestCreatedAt(next.Items)
	return next
}

// AppendPage extends the feed with the next fetched page. Items already
// present (the page boundary may shift while new stories land) are skipped so
// the feed never duplicates.
func (f Feed) AppendPage(items []models.StorySummary, total int64, hasMore bool) Feed {
	next := f
	next.Items = append([]models.StorySummary(nil), f.Items...)
	seen := idSet(f.Items)
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		next.Items = append(next.Items, item)
	}
	next.Page = f.Page + 1
	next.Total = total
	next.HasMore = hasMore
	if wm := newestCreatedAt(items); wm.After(next.Watermark) {
		next.Watermark = wm
	}
	return next
}

// Merge splices stories detected after the watermark into the front of the
// feed. It is pure and idempotent: items already present by identifier are
// dropped, order of the surviving newer items is preserved, and merging the
// same slice twice changes nothing.
func Merge(f Feed, newer []models.StorySummary) Feed {
	seen := idSet(f.Items)
	fresh := make([]models.StorySummary, 0, len(newer))
	for _, item := range newer {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return f
	}

	next := f
	next.Items = make([]models.StorySummary, 0, len(fresh)+len(f.Items))
	next.Items = append(next.Items, fresh...)
	next.Items = append(next.Items, f.Items...)
	next.Total = f.Total + int64(len(fresh))
	if wm := newestCreatedAt(fresh); wm.After(next.Watermark) {
		next.Watermark = wm
	}
	return next
}

// Presented returns the feed items in the tab's presentation order. This is a
// pure re-sort of the fetched set: it never refetches and never changes the
// pagination cursor.
func (f Feed) Presented(tab Tab) []models.StorySummary {
	items := append([]models.StorySummary(nil), f.Items...)
	switch tab {
	case TabTrending:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].TurnCount > items[j].TurnCount
		})
	case TabNewest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
	return items
}

func idSet(items []models.StorySummary) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		set[item.ID] = struct{}{}
	}
	return set
}

func newestCreatedAt(items []models.StorySummary) time.Time {
	var newest time.Time
	for _, item := range items {
		if item.CreatedAt.After(newest) {
			newest = item.CreatedAt
		}
	}
	return newest
}
