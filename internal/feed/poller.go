package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storychain-server/internal/models"
)

// Source is the server-side feed the poller reads from.
type Source interface {
	// FetchPage returns one page of the feed plus pagination metadata.
	FetchPage(ctx context.Context, page, limit int) (items []models.StorySummary, total int64, hasMore bool, err error)
	// FetchNewer returns stories created strictly after the watermark,
	// newest first.
	FetchNewer(ctx context.Context, since time.Time) ([]models.StorySummary, error)
}

// Poller keeps a Feed up to date against a Source. A single background
// goroutine performs the periodic newer-than-watermark check; explicit
// Refresh and LoadMore calls run on the caller's goroutine. A failed poll
// leaves the last good feed in place and marks the poller retryable, the
// next successful operation clears the error.
type Poller struct {
	source   Source
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	feed    Feed
	lastErr error

	startOnce sync.Once
	stopOnce  sync.Once
	started   chan struct{}
	stop      chan struct{}
	done      chan struct{}
}

// NewPoller creates a poller over source with an empty feed of the given
// page size. Call Start to begin periodic checks.
func NewPoller(source Source, interval time.Duration, pageSize int, logger *zap.Logger) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger.Named("FeedPoller"),
		feed:     New(pageSize),
		started:  make(chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background poll loop. Repeated calls are no-ops.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		close(p.started)
		go p.run(ctx)
	})
}

// Stop terminates the poll loop and waits for it to exit. Safe to call
// repeatedly, and before Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	select {
	case <-p.started:
		<-p.done
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			if _, err := p.CheckForNewer(ctx); err != nil {
				p.logger.Warn("feed poll failed, keeping last good feed", zap.Error(err))
			}
		}
	}
}

// Refresh rebuilds the feed from the first page.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	limit := p.feed.PageSize
	p.mu.Unlock()

	items, total, hasMore, err := p.source.FetchPage(ctx, 1, limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err
		return err
	}
	p.feed = p.feed.Reset(items, total, hasMore)
	p.lastErr = nil
	return nil
}

// LoadMore fetches the page after the last fetched one and appends it. It is
// a no-op when the feed reports no further pages.
func (p *Poller) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if !p.feed.HasMore {
		p.mu.Unlock()
		return nil
	}
	page := p.feed.Page + 1
	limit := p.feed.PageSize
	p.mu.Unlock()

	items, total, hasMore, err := p.source.FetchPage(ctx, page, limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err
		return err
	}
	p.feed = p.feed.AppendPage(items, total, hasMore)
	p.lastErr = nil
	return nil
}

// CheckForNewer asks the source for stories published after the feed's
// watermark and merges them in. It returns how many genuinely new stories
// arrived, which callers surface as a "new stories" notice.
func (p *Poller) CheckForNewer(ctx context.Context) (int, error) {
	p.mu.Lock()
	since := p.feed.Watermark
	p.mu.Unlock()

	newer, err := p.source.FetchNewer(ctx, since)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err
		return 0, err
	}
	before := len(p.feed.Items)
	p.feed = Merge(p.feed, newer)
	p.lastErr = nil
	return len(p.feed.Items) - before, nil
}

// Feed returns a snapshot of the current feed.
func (p *Poller) Feed() Feed {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := p.feed
	snapshot.Items = append([]models.StorySummary(nil), p.feed.Items...)
	return snapshot
}

// Err reports the error of the most recent failed operation, nil once an
// operation has succeeded again.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
