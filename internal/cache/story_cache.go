package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storychain-server/internal/models"
)

// ErrCacheMiss is returned when no cached page is present.
var ErrCacheMiss = errors.New("cache miss")

const (
	firstPageKey = "feed:first_page"
	firstPageTTL = 30 * time.Second
)

// CachedStoryPage is the cached form of the feed's first page.
type CachedStoryPage struct {
	Items []models.StorySummary `json:"items"`
	Total int64                 `json:"total"`
}

// StoryPageCache caches the first feed page, which every fresh client and the
// newer-than poll hit on every interval.
type StoryPageCache interface {
	GetFirstPage(ctx context.Context) (*CachedStoryPage, error)
	SetFirstPage(ctx context.Context, page *CachedStoryPage) error
	InvalidateFirstPage(ctx context.Context) error
}

type redisStoryPageCache struct {
	client *redis.Client
	logger *zap.Logger
}

// Compile-time check
var _ StoryPageCache = (*redisStoryPageCache)(nil)

// NewRedisStoryPageCache creates a Redis-backed StoryPageCache.
func NewRedisStoryPageCache(client *redis.Client, logger *zap.Logger) StoryPageCache {
	return &redisStoryPageCache{
		client: client,
		logger: logger.Named("RedisStoryPageCache"),
	}
}

func (c *redisStoryPageCache) GetFirstPage(ctx context.Context) (*CachedStoryPage, error) {
	raw, err := c.client.Get(ctx, firstPageKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached feed page: %w", err)
	}

	var page CachedStoryPage
	if err := json.Unmarshal(raw, &page); err != nil {
		// A corrupt entry is treated as a miss after dropping it.
		c.logger.Warn("Dropping corrupt cached feed page", zap.Error(err))
		_ = c.client.Del(ctx, firstPageKey).Err()
		return nil, ErrCacheMiss
	}
	return &page, nil
}

func (c *redisStoryPageCache) SetFirstPage(ctx context.Context, page *CachedStoryPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal feed page: %w", err)
	}
	if err := c.client.Set(ctx, firstPageKey, raw, firstPageTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache feed page: %w", err)
	}
	c.logger.Debug("Cached first feed page", zap.Int("items", len(page.Items)), zap.Int64("total", page.Total))
	return nil
}

func (c *redisStoryPageCache) InvalidateFirstPage(ctx context.Context) error {
	if err := c.client.Del(ctx, firstPageKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate feed page: %w", err)
	}
	return nil
}
