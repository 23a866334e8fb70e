package webhookcache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/devolta/mautic-metrics/internal/mauticmail"
)

type fakeFetcher struct {
	calls    int32
	webhooks map[string]*mauticmail.AccountWebhook
}

func (f *fakeFetcher) GetAccountWebhook(ctx context.Context, accountID string) (*mauticmail.AccountWebhook, error) {
	atomic.AddInt32(&f.calls, 1)
	if w, ok := f.webhooks[accountID]; ok {
		return w, nil
	}
	return nil, &mauticmail.APIError{StatusCode: 404, Message: "unknown account"}
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCacheHitSkipsUpstream(t *testing.T) {
	fetcher := &fakeFetcher{webhooks: map[string]*mauticmail.AccountWebhook{
		"acc-1": {URL: "https://hooks.example.com/acc-1"},
	}}
	cache := New(fetcher, setupTestRedis(t))
	ctx := context.Background()

	first, err := cache.Get(ctx, "acc-1")
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	second, err := cache.Get(ctx, "acc-1")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if first.URL != second.URL || second.URL != "https://hooks.example.com/acc-1" {
		t.Errorf("unexpected webhook URLs: %q, %q", first.URL, second.URL)
	}
	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{webhooks: map[string]*mauticmail.AccountWebhook{
		"acc-1": {URL: "https://hooks.example.com/acc-1"},
	}}
	cache := New(fetcher, setupTestRedis(t))
	ctx := context.Background()

	if _, err := cache.Get(ctx, "acc-1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	cache.Invalidate(ctx, "acc-1")
	if _, err := cache.Get(ctx, "acc-1"); err != nil {
		t.Fatalf("Get after invalidate failed: %v", err)
	}

	if got := atomic.LoadInt32(&fetcher.calls); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestInProcessFallback(t *testing.T) {
	fetcher := &fakeFetcher{webhooks: map[string]*mauticmail.AccountWebhook{
		"acc-1": {URL: "https://hooks.example.com/acc-1"},
	}}
	cache := New(fetcher, nil)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "acc-1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := cache.Get(ctx, "acc-1"); err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}

	cache.Invalidate(ctx, "acc-1")
	if _, err := cache.Get(ctx, "acc-1"); err != nil {
		t.Fatalf("Get after invalidate failed: %v", err)
	}
	if got := atomic.LoadInt32(&fetcher.calls); got != 2 {
		t.Errorf("expected 2 upstream calls after invalidate, got %d", got)
	}
}

func TestMissingAccountID(t *testing.T) {
	cache := New(&fakeFetcher{}, nil)
	if _, err := cache.Get(context.Background(), ""); err != mauticmail.ErrMissingAccountID {
		t.Errorf("expected ErrMissingAccountID, got %v", err)
	}
}

func TestUpstreamErrorNotCached(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := New(fetcher, setupTestRedis(t))
	ctx := context.Background()

	if _, err := cache.Get(ctx, "ghost"); err == nil {
		t.Fatal("expected error for unknown account")
	}
	if _, err := cache.Get(ctx, "ghost"); err == nil {
		t.Fatal("expected error for unknown account on retry")
	}
	// Failures must not be cached
	if got := atomic.LoadInt32(&fetcher.calls); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}
