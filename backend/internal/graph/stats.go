package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	apperrors "tesseric/backend/pkg/errors"
)

// Read-only aggregation queries. Unlike the graph views these return errors:
// the metrics layer decides whether to degrade to cached or default values.

var errNotConnected = apperrors.NewBaseError(apperrors.ErrorTypeGraph, "graph store not configured", nil)

// TotalAnalyses counts every Analysis node in the graph
func (r *Repository) TotalAnalyses(ctx context.Context) (int64, error) {
	record, err := r.runSingle(ctx, `
		MATCH (a:Analysis)
		RETURN count(a) AS total
	`, nil)
	if err != nil {
		return 0, err
	}
	return getInt64FromRecord(record, "total"), nil
}

// DistinctServiceCount counts services accumulated across all analyses
func (r *Repository) DistinctServiceCount(ctx context.Context) (int64, error) {
	record, err := r.runSingle(ctx, `
		MATCH (s:Service)
		RETURN count(DISTINCT s.name) AS total
	`, nil)
	if err != nil {
		return 0, err
	}
	return getInt64FromRecord(record, "total"), nil
}

// SeverityHistogram counts Finding nodes per severity level
func (r *Repository) SeverityHistogram(ctx context.Context) (map[string]int64, error) {
	records, err := r.runAll(ctx, `
		MATCH (f:Finding)
		RETURN f.severity AS severity, count(f) AS count
	`, nil)
	if err != nil {
		return nil, err
	}

	histogram := make(map[string]int64)
	for _, record := range records {
		severity := getStringFromRecord(record, "severity")
		if severity == "" {
			continue
		}
		histogram[severity] = getInt64FromRecord(record, "count")
	}
	return histogram, nil
}

// AvgProcessingTime returns the mean processing_time_ms over analyses that
// recorded one, and how many did. Zero samples means no data, not zero time.
func (r *Repository) AvgProcessingTime(ctx context.Context) (float64, int64, error) {
	record, err := r.runSingle(ctx, `
		MATCH (a:Analysis)
		WHERE a.processing_time_ms IS NOT NULL
		RETURN avg(a.processing_time_ms) AS avg_ms, count(a) AS samples
	`, nil)
	if err != nil {
		return 0, 0, err
	}
	return getFloat64FromRecord(record, "avg_ms"), getInt64FromRecord(record, "samples"), nil
}

// ProcessingPercentiles returns continuous-interpolation percentiles of
// processing_time_ms in milliseconds
func (r *Repository) ProcessingPercentiles(ctx context.Context) (*Percentiles, error) {
	record, err := r.runSingle(ctx, `
		MATCH (a:Analysis)
		WHERE a.processing_time_ms IS NOT NULL
		RETURN percentileCont(a.processing_time_ms, 0.5) AS p50,
		       percentileCont(a.processing_time_ms, 0.95) AS p95,
		       percentileCont(a.processing_time_ms, 0.99) AS p99
	`, nil)
	if err != nil {
		return nil, err
	}
	return &Percentiles{
		P50: getFloat64FromRecord(record, "p50"),
		P95: getFloat64FromRecord(record, "p95"),
		P99: getFloat64FromRecord(record, "p99"),
	}, nil
}

// ReviewsOverTime returns daily analysis counts for a trailing window
func (r *Repository) ReviewsOverTime(ctx context.Context, days int) ([]DayCount, error) {
	records, err := r.runAll(ctx, `
		MATCH (a:Analysis)
		WHERE a.created_at > datetime() - duration({days: $days})
		RETURN date(a.created_at) AS review_date, count(a) AS review_count
		ORDER BY review_date DESC
	`, map[string]any{"days": days})
	if err != nil {
		return nil, err
	}

	series := make([]DayCount, 0, len(records))
	for _, record := range records {
		series = append(series, DayCount{
			Date:  getDateFromRecord(record, "review_date"),
			Count: getInt64FromRecord(record, "review_count"),
		})
	}
	return series, nil
}

// ScoreTrends returns daily mean scores for a trailing window
func (r *Repository) ScoreTrends(ctx context.Context, days int) ([]DayScore, error) {
	records, err := r.runAll(ctx, `
		MATCH (a:Analysis)
		WHERE a.created_at > datetime() - duration({days: $days})
		RETURN date(a.created_at) AS review_date, avg(a.score) AS avg_score
		ORDER BY review_date DESC
	`, map[string]any{"days": days})
	if err != nil {
		return nil, err
	}

	series := make([]DayScore, 0, len(records))
	for _, record := range records {
		series = append(series, DayScore{
			Date:     getDateFromRecord(record, "review_date"),
			AvgScore: getFloat64FromRecord(record, "avg_score"),
		})
	}
	return series, nil
}

// TopServices ranks services by their precomputed occurrence counter
func (r *Repository) TopServices(ctx context.Context, limit int) ([]ServiceCount, error) {
	records, err := r.runAll(ctx, `
		MATCH (s:Service)
		WHERE s.occurrence_count > 0
		RETURN s.name AS service, s.occurrence_count AS count
		ORDER BY count DESC
		LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	top := make([]ServiceCount, 0, len(records))
	for _, record := range records {
		top = append(top, ServiceCount{
			Service: getStringFromRecord(record, "service"),
			Count:   getInt64FromRecord(record, "count"),
		})
	}
	return top, nil
}

// InputMethodBreakdown buckets analyses by input method; analyses written
// before the property existed count as text
func (r *Repository) InputMethodBreakdown(ctx context.Context) (map[string]int64, error) {
	records, err := r.runAll(ctx, `
		MATCH (a:Analysis)
		RETURN a.input_method AS method, count(a) AS count
	`, nil)
	if err != nil {
		return nil, err
	}

	breakdown := map[string]int64{"text": 0, "image": 0}
	for _, record := range records {
		method := getStringFromRecord(record, "method")
		if method == "" {
			method = "text"
		}
		breakdown[method] += getInt64FromRecord(record, "count")
	}
	return breakdown, nil
}

// AnalysisMethodBreakdown buckets analyses by how they were produced
func (r *Repository) AnalysisMethodBreakdown(ctx context.Context) (map[string]int64, error) {
	records, err := r.runAll(ctx, `
		MATCH (a:Analysis)
		WHERE a.analysis_method IS NOT NULL AND a.analysis_method <> ''
		RETURN a.analysis_method AS method, count(a) AS count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int64)
	for _, record := range records {
		breakdown[getStringFromRecord(record, "method")] = getInt64FromRecord(record, "count")
	}
	return breakdown, nil
}

func (r *Repository) runSingle(ctx context.Context, query string, params map[string]any) (*neo4j.Record, error) {
	if r.driver == nil {
		return nil, errNotConnected
	}
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("stats", err)
	}
	return result.Single(ctx)
}

func (r *Repository) runAll(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	if r.driver == nil {
		return nil, errNotConnected
	}
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("stats", err)
	}
	return result.Collect(ctx)
}

func getDateFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if d, ok := val.(dbtype.Date); ok {
		return d.Time().Format("2006-01-02")
	}
	return ""
}
