package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"mangwale-nlu/internal/infra/catalog"
	"mangwale-nlu/internal/usecase/enrich"
)

// countingCatalog serves a fixed product and counts calls, so tests can
// observe whether the cache absorbed a lookup.
type countingCatalog struct {
	mu      sync.Mutex
	product *enrich.Product
	calls   int
}

func (c *countingCatalog) Search(_ context.Context, _ string) (*enrich.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.product, nil
}

func (c *countingCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newCacheFixture(t *testing.T, product *enrich.Product) (*catalog.CachedClient, *countingCatalog, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	inner := &countingCatalog{product: product}
	return catalog.NewCachedClient(inner, redisClient, time.Minute), inner, mr
}

func TestCachedClient_ReadThrough(t *testing.T) {
	cached, inner, _ := newCacheFixture(t, &enrich.Product{ID: "prod-101", Name: "Misal Pav", Price: 80})

	ctx := context.Background()

	first, err := cached.Search(ctx, "misal")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first == nil || first.ID != "prod-101" {
		t.Fatalf("first = %+v, want prod-101", first)
	}

	second, err := cached.Search(ctx, "misal")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if second == nil || second.ID != "prod-101" {
		t.Fatalf("second = %+v, want prod-101", second)
	}

	if got := inner.callCount(); got != 1 {
		t.Errorf("inner calls = %d, want 1 (second lookup served from cache)", got)
	}
}

func TestCachedClient_CachesMisses(t *testing.T) {
	cached, inner, _ := newCacheFixture(t, nil)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		product, err := cached.Search(ctx, "no such dish")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if product != nil {
			t.Fatalf("product = %+v, want nil", product)
		}
	}

	if got := inner.callCount(); got != 1 {
		t.Errorf("inner calls = %d, want 1 (misses are cached too)", got)
	}
}

func TestCachedClient_KeyIsCaseInsensitive(t *testing.T) {
	cached, inner, _ := newCacheFixture(t, &enrich.Product{ID: "prod-7", Price: 15})

	ctx := context.Background()

	if _, err := cached.Search(ctx, "Chai"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := cached.Search(ctx, "  chai "); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got := inner.callCount(); got != 1 {
		t.Errorf("inner calls = %d, want 1 (normalized key)", got)
	}
}

func TestCachedClient_CorruptEntryFallsThrough(t *testing.T) {
	cached, inner, mr := newCacheFixture(t, &enrich.Product{ID: "prod-9", Price: 40})

	if err := mr.Set("catalog:search:vada pav", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	product, err := cached.Search(context.Background(), "vada pav")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if product == nil || product.ID != "prod-9" {
		t.Fatalf("product = %+v, want prod-9 from inner catalog", product)
	}
	if got := inner.callCount(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}
}

func TestCachedClient_RedisDownFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingCatalog{product: &enrich.Product{ID: "prod-3", Price: 25}}
	cached := catalog.NewCachedClient(inner, redisClient, time.Minute)

	mr.Close()

	product, err := cached.Search(context.Background(), "samosa")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if product == nil || product.ID != "prod-3" {
		t.Fatalf("product = %+v, want prod-3 despite redis outage", product)
	}
}

func TestCachedClient_EntriesExpire(t *testing.T) {
	cached, inner, mr := newCacheFixture(t, &enrich.Product{ID: "prod-5", Price: 60})

	ctx := context.Background()

	if _, err := cached.Search(ctx, "dosa"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cached.Search(ctx, "dosa"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := inner.callCount(); got != 2 {
		t.Errorf("inner calls = %d, want 2 after ttl expiry", got)
	}
}
