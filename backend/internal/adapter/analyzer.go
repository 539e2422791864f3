package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"tesseric/backend/internal/review"
	apperrors "tesseric/backend/pkg/errors"
	"tesseric/backend/pkg/logger"
)

// Analyzer turns an architecture description into structured findings.
// Implementations must not mutate shared state; results feed directly
// into the finalized analysis record.
type Analyzer interface {
	Analyze(ctx context.Context, designText, tone string) (*Result, error)
	Method() string
}

// Result is the raw analyzer output before it is finalized into a record
type Result struct {
	Findings []review.Finding
	Summary  string
	Topology *review.Topology
}

const systemPrompt = `You are an AWS solutions architect reviewing architecture descriptions.
Identify risks aligned with the Well-Architected Framework pillars
(operational_excellence, security, reliability, performance_efficiency,
cost_optimization, sustainability).

Respond with JSON only, no prose, in this shape:
{
  "summary": "...",
  "risks": [
    {"id": "REL-001", "title": "...", "severity": "CRITICAL|HIGH|MEDIUM|LOW",
     "pillar": "...", "finding": "...", "impact": "...", "remediation": "..."}
  ],
  "topology": {
    "services": ["EC2", "RDS"],
    "connections": [
      {"source_service": "...", "target_service": "...",
       "relationship_type": "routes_to|reads_from|writes_to|monitors|authorizes|backs_up|replicates_to",
       "description": "..."}
    ],
    "architecture_pattern": "3-tier|serverless|microservices|event-driven|custom"
  }
}`

// LLMAnalyzer calls an OpenAI-compatible endpoint for the review
type LLMAnalyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMAnalyzer creates an analyzer against an OpenAI-compatible base URL
func NewLLMAnalyzer(baseURL, apiKey, model string) *LLMAnalyzer {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"

	return &LLMAnalyzer{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Method identifies how the analysis was produced, for the metrics breakdown
func (a *LLMAnalyzer) Method() string {
	return "llm_" + strings.ReplaceAll(a.model, "/", "_")
}

// Analyze requests a structured review from the model, retrying transient
// failures with linear backoff before giving up.
func (a *LLMAnalyzer) Analyze(ctx context.Context, designText, tone string) (*Result, error) {
	// Roast mode gets more creative latitude
	temperature := float32(0.3)
	if tone == "roast" {
		temperature = 0.7
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: designText},
		},
		Temperature: temperature,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying analyzer request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		a.logger.Error("Analyzer request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)
	}
	if err != nil {
		return nil, apperrors.NewAnalyzerFailed(a.model, maxRetries, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewAnalyzerBadResponse(fmt.Errorf("no choices in response"))
	}

	result, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Analyzer response parsed",
		zap.String("model", a.model),
		zap.Int("findings", len(result.Findings)),
	)
	return result, nil
}

// parseAnalysis decodes the model's JSON review, tolerating a fenced code
// block around the payload.
func parseAnalysis(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload struct {
		Summary  string           `json:"summary"`
		Risks    []review.Finding `json:"risks"`
		Topology *review.Topology `json:"topology"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return nil, apperrors.NewAnalyzerBadResponse(err)
	}

	// Drop findings the rest of the pipeline cannot classify
	findings := make([]review.Finding, 0, len(payload.Risks))
	for _, f := range payload.Risks {
		if !f.Severity.Valid() || f.Title == "" {
			continue
		}
		findings = append(findings, f)
	}

	return &Result{
		Findings: findings,
		Summary:  payload.Summary,
		Topology: payload.Topology,
	}, nil
}
