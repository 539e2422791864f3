package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tesseric/backend/internal/graph"
	"tesseric/backend/internal/review"
	"tesseric/backend/pkg/logger"
)

const (
	timeSeriesDays    = 30
	topServicesLimit  = 10
	slowQueryLog      = 500 * time.Millisecond
	defaultAvgTimeMs  = 8000.0
	defaultReviews    = 500
	defaultServiceCnt = 70
)

// Store is the read-only slice of the graph layer the aggregator needs.
// Kept as an interface so tests can inject a fake alongside a fake clock.
type Store interface {
	TotalAnalyses(ctx context.Context) (int64, error)
	DistinctServiceCount(ctx context.Context) (int64, error)
	SeverityHistogram(ctx context.Context) (map[string]int64, error)
	AvgProcessingTime(ctx context.Context) (float64, int64, error)
	ProcessingPercentiles(ctx context.Context) (*graph.Percentiles, error)
	ReviewsOverTime(ctx context.Context, days int) ([]graph.DayCount, error)
	ScoreTrends(ctx context.Context, days int) ([]graph.DayScore, error)
	TopServices(ctx context.Context, limit int) ([]graph.ServiceCount, error)
	InputMethodBreakdown(ctx context.Context) (map[string]int64, error)
	AnalysisMethodBreakdown(ctx context.Context) (map[string]int64, error)
}

// SeverityBreakdown is a fixed-order severity histogram; struct fields keep
// the CRITICAL, HIGH, MEDIUM, LOW display order stable in JSON
type SeverityBreakdown struct {
	Critical int64 `json:"CRITICAL"`
	High     int64 `json:"HIGH"`
	Medium   int64 `json:"MEDIUM"`
	Low      int64 `json:"LOW"`
}

// Stats is the full aggregated metrics payload
type Stats struct {
	TotalReviews            int64                `json:"total_reviews"`
	UniqueServices          int64                `json:"unique_aws_services"`
	SeverityBreakdown       SeverityBreakdown    `json:"severity_breakdown"`
	AvgReviewTimeMs         float64              `json:"avg_review_time_ms"`
	ProcessingPercentiles   graph.Percentiles    `json:"processing_percentiles"`
	ReviewsOverTime         []graph.DayCount     `json:"reviews_over_time"`
	ScoreTrends             []graph.DayScore     `json:"score_trends"`
	TopServices             []graph.ServiceCount `json:"top_aws_services"`
	InputMethodBreakdown    map[string]int64     `json:"input_method_breakdown"`
	AnalysisMethodBreakdown map[string]int64     `json:"analysis_method_breakdown"`
	LastUpdated             string               `json:"last_updated"`
}

// Aggregator computes cross-graph statistics with a short-lived cache.
// It never surfaces store failures: degraded runs fall back to the last
// cached value, then to fixed defaults.
type Aggregator struct {
	store  Store
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(store Store, cache *Cache) *Aggregator {
	return &Aggregator{
		store:  store,
		cache:  cache,
		logger: logger.Get(),
		now:    time.Now,
	}
}

// Aggregate returns current stats, serving from cache when fresh.
// Two calls within the TTL return the identical value even if the
// underlying data changed in between.
func (a *Aggregator) Aggregate(ctx context.Context) *Stats {
	if cached, ok := a.cache.Get(); ok {
		a.logger.Debug("Returning cached metrics")
		return cached
	}

	start := a.now()
	stats, err := a.compute(ctx)
	elapsed := a.now().Sub(start)

	if elapsed > slowQueryLog {
		a.logger.Warn("Metrics aggregation exceeded threshold",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", slowQueryLog),
		)
	}

	if err != nil {
		a.logger.Error("Metrics aggregation failed", zap.Error(err))
		if stale := a.cache.Stale(); stale != nil {
			a.logger.Warn("Serving stale cached metrics")
			return stale
		}
		a.logger.Warn("No cached metrics available, serving defaults")
		return a.defaultStats()
	}

	a.cache.Set(stats)
	return stats
}

// InvalidateCache drops the cached entry so the next call recomputes
func (a *Aggregator) InvalidateCache() {
	a.cache.Clear()
	a.logger.Info("Metrics cache cleared")
}

// compute fans the independent read-only sub-queries out in parallel
func (a *Aggregator) compute(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var avgMs float64
	var avgSamples int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := a.store.TotalAnalyses(gctx)
		stats.TotalReviews = total
		return err
	})
	g.Go(func() error {
		count, err := a.store.DistinctServiceCount(gctx)
		stats.UniqueServices = count
		return err
	})
	g.Go(func() error {
		histogram, err := a.store.SeverityHistogram(gctx)
		if err != nil {
			return err
		}
		stats.SeverityBreakdown = toSeverityBreakdown(histogram)
		return nil
	})
	g.Go(func() error {
		var err error
		avgMs, avgSamples, err = a.store.AvgProcessingTime(gctx)
		return err
	})
	g.Go(func() error {
		percentiles, err := a.store.ProcessingPercentiles(gctx)
		if err != nil {
			return err
		}
		stats.ProcessingPercentiles = *percentiles
		return nil
	})
	g.Go(func() error {
		series, err := a.store.ReviewsOverTime(gctx, timeSeriesDays)
		stats.ReviewsOverTime = series
		return err
	})
	g.Go(func() error {
		trends, err := a.store.ScoreTrends(gctx, timeSeriesDays)
		stats.ScoreTrends = trends
		return err
	})
	g.Go(func() error {
		top, err := a.store.TopServices(gctx, topServicesLimit)
		stats.TopServices = top
		return err
	})
	g.Go(func() error {
		breakdown, err := a.store.InputMethodBreakdown(gctx)
		stats.InputMethodBreakdown = breakdown
		return err
	})
	g.Go(func() error {
		breakdown, err := a.store.AnalysisMethodBreakdown(gctx)
		stats.AnalysisMethodBreakdown = breakdown
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.AvgReviewTimeMs = avgMs
	if avgSamples == 0 {
		stats.AvgReviewTimeMs = defaultAvgTimeMs
	}
	if stats.ReviewsOverTime == nil {
		stats.ReviewsOverTime = []graph.DayCount{}
	}
	if stats.ScoreTrends == nil {
		stats.ScoreTrends = []graph.DayScore{}
	}
	if stats.TopServices == nil {
		stats.TopServices = []graph.ServiceCount{}
	}
	stats.LastUpdated = a.now().UTC().Format(time.RFC3339)
	return stats, nil
}

func (a *Aggregator) defaultStats() *Stats {
	return &Stats{
		TotalReviews:            defaultReviews,
		UniqueServices:          defaultServiceCnt,
		AvgReviewTimeMs:         defaultAvgTimeMs,
		ReviewsOverTime:         []graph.DayCount{},
		ScoreTrends:             []graph.DayScore{},
		TopServices:             []graph.ServiceCount{},
		InputMethodBreakdown:    map[string]int64{"text": 0, "image": 0},
		AnalysisMethodBreakdown: map[string]int64{},
		LastUpdated:             a.now().UTC().Format(time.RFC3339),
	}
}

func toSeverityBreakdown(histogram map[string]int64) SeverityBreakdown {
	return SeverityBreakdown{
		Critical: histogram[string(review.SeverityCritical)],
		High:     histogram[string(review.SeverityHigh)],
		Medium:   histogram[string(review.SeverityMedium)],
		Low:      histogram[string(review.SeverityLow)],
	}
}
