package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"tesseric/backend/internal/graph"
)

// fakeStore serves canned values and can be flipped into a failing state
type fakeStore struct {
	total    int64
	services int64
	failing  bool
	calls    int
}

func (f *fakeStore) err() error {
	if f.failing {
		return fmt.Errorf("store unreachable")
	}
	return nil
}

func (f *fakeStore) TotalAnalyses(context.Context) (int64, error) {
	f.calls++
	return f.total, f.err()
}

func (f *fakeStore) DistinctServiceCount(context.Context) (int64, error) {
	return f.services, f.err()
}

func (f *fakeStore) SeverityHistogram(context.Context) (map[string]int64, error) {
	return map[string]int64{"HIGH": 4, "LOW": 1}, f.err()
}

func (f *fakeStore) AvgProcessingTime(context.Context) (float64, int64, error) {
	return 8500, 3, f.err()
}

func (f *fakeStore) ProcessingPercentiles(context.Context) (*graph.Percentiles, error) {
	return &graph.Percentiles{P50: 8000, P95: 12000, P99: 15000}, f.err()
}

func (f *fakeStore) ReviewsOverTime(context.Context, int) ([]graph.DayCount, error) {
	return []graph.DayCount{{Date: "2026-08-30", Count: 2}}, f.err()
}

func (f *fakeStore) ScoreTrends(context.Context, int) ([]graph.DayScore, error) {
	return []graph.DayScore{{Date: "2026-08-30", AvgScore: 74.5}}, f.err()
}

func (f *fakeStore) TopServices(context.Context, int) ([]graph.ServiceCount, error) {
	return []graph.ServiceCount{{Service: "EC2", Count: 12}}, f.err()
}

func (f *fakeStore) InputMethodBreakdown(context.Context) (map[string]int64, error) {
	return map[string]int64{"text": 5, "image": 1}, f.err()
}

func (f *fakeStore) AnalysisMethodBreakdown(context.Context) (map[string]int64, error) {
	return map[string]int64{"pattern_matching_fallback": 6}, f.err()
}

func newTestAggregator(store Store, clock func() time.Time) *Aggregator {
	cache := NewCache(5 * time.Minute)
	cache.now = clock
	agg := NewAggregator(store, cache)
	agg.now = clock
	return agg
}

func TestAggregate_CacheHitReturnsIdenticalValue(t *testing.T) {
	store := &fakeStore{total: 10, services: 4}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	first := agg.Aggregate(context.Background())
	if first.TotalReviews != 10 {
		t.Fatalf("TotalReviews = %d, want 10", first.TotalReviews)
	}

	// Underlying data changes, but the TTL has not elapsed
	store.total = 99
	now = now.Add(2 * time.Minute)

	second := agg.Aggregate(context.Background())
	if second != first {
		t.Error("cache hit must return the identical cached value")
	}
	if store.calls != 1 {
		t.Errorf("store queried %d times, want 1", store.calls)
	}
}

func TestAggregate_RecomputesAfterExpiry(t *testing.T) {
	store := &fakeStore{total: 10, services: 4}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	agg.Aggregate(context.Background())

	store.total = 99
	now = now.Add(6 * time.Minute)

	refreshed := agg.Aggregate(context.Background())
	if refreshed.TotalReviews != 99 {
		t.Errorf("TotalReviews = %d, want 99 after expiry", refreshed.TotalReviews)
	}
}

func TestAggregate_InvalidateForcesRecompute(t *testing.T) {
	store := &fakeStore{total: 10, services: 4}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	agg.Aggregate(context.Background())
	store.total = 42
	agg.InvalidateCache()

	refreshed := agg.Aggregate(context.Background())
	if refreshed.TotalReviews != 42 {
		t.Errorf("TotalReviews = %d, want 42 after invalidation", refreshed.TotalReviews)
	}
}

func TestAggregate_StaleFallbackOnStoreFailure(t *testing.T) {
	store := &fakeStore{total: 10, services: 4}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	cached := agg.Aggregate(context.Background())

	store.failing = true
	now = now.Add(10 * time.Minute) // past TTL

	degraded := agg.Aggregate(context.Background())
	if degraded != cached {
		t.Error("store failure must fall back to the stale cached value")
	}
}

func TestAggregate_DefaultsWhenNothingCached(t *testing.T) {
	store := &fakeStore{failing: true}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	stats := agg.Aggregate(context.Background())
	if stats.TotalReviews != defaultReviews {
		t.Errorf("TotalReviews = %d, want default %d", stats.TotalReviews, defaultReviews)
	}
	if stats.AvgReviewTimeMs != defaultAvgTimeMs {
		t.Errorf("AvgReviewTimeMs = %v, want default %v", stats.AvgReviewTimeMs, defaultAvgTimeMs)
	}
	if stats.ReviewsOverTime == nil || stats.TopServices == nil {
		t.Error("default stats must keep non-nil slices")
	}
}

func TestAggregate_AvgFallbackWhenNoSamples(t *testing.T) {
	store := &noSamplesStore{fakeStore{total: 3}}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	agg := newTestAggregator(store, func() time.Time { return now })

	stats := agg.Aggregate(context.Background())
	if stats.AvgReviewTimeMs != defaultAvgTimeMs {
		t.Errorf("AvgReviewTimeMs = %v, want default when no analysis recorded a duration", stats.AvgReviewTimeMs)
	}
}

type noSamplesStore struct{ fakeStore }

func (s *noSamplesStore) AvgProcessingTime(context.Context) (float64, int64, error) {
	return 0, 0, nil
}

func TestSeverityBreakdownJSONOrder(t *testing.T) {
	breakdown := toSeverityBreakdown(map[string]int64{"LOW": 1, "CRITICAL": 2, "MEDIUM": 3, "HIGH": 4})

	raw, err := json.Marshal(breakdown)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)

	order := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}
	last := -1
	for _, key := range order {
		idx := strings.Index(got, key)
		if idx < 0 {
			t.Fatalf("missing %q in %s", key, got)
		}
		if idx < last {
			t.Errorf("severity %q out of display order in %s", key, got)
		}
		last = idx
	}
}
