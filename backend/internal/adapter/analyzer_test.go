package adapter

import (
	"context"
	"fmt"
	"testing"

	"tesseric/backend/internal/review"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{
		"summary": "Two issues found.",
		"risks": [
			{"id": "REL-001", "title": "Single AZ", "severity": "HIGH",
			 "pillar": "reliability", "finding": "One AZ only.",
			 "impact": "Outage risk.", "remediation": "Go Multi-AZ."}
		],
		"topology": {
			"services": ["EC2", "RDS"],
			"connections": [
				{"source_service": "EC2", "target_service": "RDS",
				 "relationship_type": "reads_from"}
			],
			"architecture_pattern": "3-tier"
		}
	}`

	result, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].ID != "REL-001" {
		t.Errorf("findings = %+v", result.Findings)
	}
	if result.Findings[0].Category != "reliability" {
		t.Errorf("pillar not mapped: %+v", result.Findings[0])
	}
	if result.Topology == nil || result.Topology.ArchitecturePattern != "3-tier" {
		t.Errorf("topology = %+v", result.Topology)
	}
	if len(result.Topology.Connections) != 1 ||
		result.Topology.Connections[0].RelationshipType != review.RelReadsFrom {
		t.Errorf("connections = %+v", result.Topology.Connections)
	}
}

func TestParseAnalysis_FencedCodeBlock(t *testing.T) {
	raw := "```json\n{\"summary\": \"ok\", \"risks\": []}\n```"
	result, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if result.Summary != "ok" {
		t.Errorf("summary = %s", result.Summary)
	}
}

func TestParseAnalysis_DropsInvalidFindings(t *testing.T) {
	raw := `{"summary": "x", "risks": [
		{"id": "A", "title": "Valid", "severity": "LOW", "pillar": "security"},
		{"id": "B", "title": "Bad severity", "severity": "SEVERE", "pillar": "security"},
		{"id": "C", "title": "", "severity": "LOW", "pillar": "security"}
	]}`
	result, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].ID != "A" {
		t.Errorf("findings = %+v", result.Findings)
	}
}

func TestParseAnalysis_InvalidJSON(t *testing.T) {
	if _, err := parseAnalysis("I could not produce JSON, sorry."); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

// stubAnalyzer lets the pipeline tests script primary behavior
type stubAnalyzer struct {
	result *Result
	err    error
}

func (s *stubAnalyzer) Analyze(context.Context, string, string) (*Result, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) Method() string { return "stub" }

func TestReviewService_UsesPrimary(t *testing.T) {
	primary := &stubAnalyzer{result: &Result{
		Summary: "from primary",
		Findings: []review.Finding{
			{ID: "SEC-001", Title: "x", Severity: review.SeverityCritical, Category: "security"},
		},
	}}
	svc := NewReviewService(primary)

	record := svc.Review(context.Background(), "some design", "standard", "text")
	if record.AnalysisMethod != "stub" {
		t.Errorf("AnalysisMethod = %s, want stub", record.AnalysisMethod)
	}
	if record.Summary != "from primary" {
		t.Errorf("Summary = %s", record.Summary)
	}
	if record.Score != 75 {
		t.Errorf("Score = %d, want 75 for one critical finding", record.Score)
	}
}

func TestReviewService_FallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubAnalyzer{err: fmt.Errorf("model unreachable")}
	svc := NewReviewService(primary)

	record := svc.Review(context.Background(), "single az deployment", "standard", "text")
	if record.AnalysisMethod != "pattern_matching_fallback" {
		t.Errorf("AnalysisMethod = %s, want fallback", record.AnalysisMethod)
	}
	if len(record.Findings) != 1 || record.Findings[0].ID != "REL-001" {
		t.Errorf("findings = %+v", record.Findings)
	}
}

func TestReviewService_NoPrimary(t *testing.T) {
	svc := NewReviewService(nil)

	record := svc.Review(context.Background(), "nothing special here", "standard", "text")
	if record.AnalysisMethod != "pattern_matching_fallback" {
		t.Errorf("AnalysisMethod = %s", record.AnalysisMethod)
	}
	if record.ID == "" || record.CreatedAt.IsZero() {
		t.Error("record identity fields not populated")
	}
	if record.InputMethod != "text" {
		t.Errorf("InputMethod = %s", record.InputMethod)
	}
}
