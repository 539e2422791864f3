package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tesseric/backend/internal/review"
	"tesseric/backend/pkg/logger"
)

// ReviewService runs the analysis pipeline: primary analyzer first, the
// rule-based fallback when it fails. The primary may be nil, in which case
// every review goes through the fallback.
type ReviewService struct {
	primary  Analyzer
	fallback Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReviewService wires the pipeline. primary may be nil.
func NewReviewService(primary Analyzer) *ReviewService {
	return &ReviewService{
		primary:  primary,
		fallback: NewPatternAnalyzer(),
		logger:   logger.Get(),
		now:      time.Now,
	}
}

// Review produces a finalized analysis record for the given description.
// It never returns an error: analyzer failures degrade to the fallback.
func (s *ReviewService) Review(ctx context.Context, designText, tone, inputMethod string) *review.AnalysisRecord {
	start := s.now()

	result, method := s.analyze(ctx, designText, tone)

	record := &review.AnalysisRecord{
		ID:                      "review-" + uuid.New().String(),
		CreatedAt:               s.now().UTC(),
		Score:                   review.CalculateScore(result.Findings),
		Summary:                 result.Summary,
		Tone:                    tone,
		ProcessingTimeMs:        s.now().Sub(start).Milliseconds(),
		InputMethod:             inputMethod,
		AnalysisMethod:          method,
		ArchitectureDescription: designText,
		Findings:                result.Findings,
		Topology:                result.Topology,
	}

	s.logger.Info("Review completed",
		zap.String("review_id", record.ID),
		zap.Int("score", record.Score),
		zap.Int("findings", len(record.Findings)),
		zap.String("analysis_method", method),
		zap.Int64("processing_time_ms", record.ProcessingTimeMs),
	)
	return record
}

func (s *ReviewService) analyze(ctx context.Context, designText, tone string) (*Result, string) {
	if s.primary != nil {
		result, err := s.primary.Analyze(ctx, designText, tone)
		if err == nil {
			return result, s.primary.Method()
		}
		s.logger.Warn("Primary analyzer failed, using fallback",
			zap.Error(err),
		)
	}

	result, _ := s.fallback.Analyze(ctx, designText, tone)
	return result, s.fallback.Method()
}
