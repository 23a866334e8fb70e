// Package webhookcache caches per-account webhook endpoints fetched
// from the upstream API. The webhook URL for an account is stable for
// the life of a session, so a hit avoids a round trip. Backed by Redis
// when configured, an in-process map otherwise.
package webhookcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devolta/mautic-metrics/internal/mauticmail"
	"github.com/devolta/mautic-metrics/internal/pkg/logger"
)

const cacheTTL = 12 * time.Hour

// Fetcher resolves a webhook from the upstream API on cache miss.
// *mauticmail.Client satisfies it.
type Fetcher interface {
	GetAccountWebhook(ctx context.Context, accountID string) (*mauticmail.AccountWebhook, error)
}

// Cache is the webhook lookup cache.
type Cache struct {
	fetcher Fetcher
	redis   *redis.Client

	mu    sync.RWMutex
	local map[string]*mauticmail.AccountWebhook
}

// New creates a cache backed by the given Redis client. A nil client
// selects the in-process fallback.
func New(fetcher Fetcher, redisClient *redis.Client) *Cache {
	return &Cache{
		fetcher: fetcher,
		redis:   redisClient,
		local:   make(map[string]*mauticmail.AccountWebhook),
	}
}

func cacheKey(accountID string) string {
	return "webhook:" + accountID
}

// Get returns the webhook for an account, fetching from upstream on a
// miss and caching the result. Redis failures fall through to a
// fetch rather than failing the request.
func (c *Cache) Get(ctx context.Context, accountID string) (*mauticmail.AccountWebhook, error) {
	if accountID == "" {
		return nil, mauticmail.ErrMissingAccountID
	}

	if webhook := c.lookup(ctx, accountID); webhook != nil {
		return webhook, nil
	}

	webhook, err := c.fetcher.GetAccountWebhook(ctx, accountID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, accountID, webhook)
	return webhook, nil
}

// Invalidate drops the cached webhook for an account. Call after the
// account is updated or deleted.
func (c *Cache) Invalidate(ctx context.Context, accountID string) {
	if c.redis != nil {
		if err := c.redis.Del(ctx, cacheKey(accountID)).Err(); err != nil {
			logger.Warn("webhook cache invalidate failed", "account", accountID, "error", err.Error())
		}
		return
	}

	c.mu.Lock()
	delete(c.local, accountID)
	c.mu.Unlock()
}

func (c *Cache) lookup(ctx context.Context, accountID string) *mauticmail.AccountWebhook {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, cacheKey(accountID)).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				logger.Warn("webhook cache read failed", "account", accountID, "error", err.Error())
			}
			return nil
		}
		var webhook mauticmail.AccountWebhook
		if err := json.Unmarshal(data, &webhook); err != nil {
			logger.Warn("webhook cache entry corrupt", "account", accountID, "error", err.Error())
			return nil
		}
		return &webhook
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local[accountID]
}

func (c *Cache) store(ctx context.Context, accountID string, webhook *mauticmail.AccountWebhook) {
	if c.redis != nil {
		data, err := json.Marshal(webhook)
		if err != nil {
			logger.Warn("webhook cache encode failed", "account", accountID, "error", err.Error())
			return
		}
		if err := c.redis.Set(ctx, cacheKey(accountID), data, cacheTTL).Err(); err != nil {
			logger.Warn("webhook cache write failed", "account", accountID, "error", err.Error())
		}
		return
	}

	c.mu.Lock()
	c.local[accountID] = webhook
	c.mu.Unlock()
}

// Ping verifies the Redis backend is reachable. No-op for the
// in-process fallback.
func (c *Cache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("webhook cache redis ping: %w", err)
	}
	return nil
}
