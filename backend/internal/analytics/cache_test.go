package analytics

import (
	"sync"
	"testing"
	"time"
)

func TestCache_GetSetClear(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return now }

	if _, ok := cache.Get(); ok {
		t.Error("empty cache must miss")
	}
	if cache.Stale() != nil {
		t.Error("empty cache has no stale value")
	}

	stats := &Stats{TotalReviews: 7}
	cache.Set(stats)

	got, ok := cache.Get()
	if !ok || got != stats {
		t.Errorf("Get() = %v, %v; want cached value", got, ok)
	}

	now = now.Add(5 * time.Minute)
	if _, ok := cache.Get(); ok {
		t.Error("cache must miss exactly at expiry")
	}
	if cache.Stale() != stats {
		t.Error("expired entry must remain available as stale")
	}

	cache.Clear()
	if cache.Stale() != nil {
		t.Error("cleared cache has no stale value")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(5 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			cache.Set(&Stats{TotalReviews: int64(n)})
		}(i)
		go func() {
			defer wg.Done()
			if stats, ok := cache.Get(); ok && stats == nil {
				t.Error("Get returned ok with nil stats")
			}
		}()
	}
	wg.Wait()
}
