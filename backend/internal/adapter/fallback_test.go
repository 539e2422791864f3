package adapter

import (
	"context"
	"strings"
	"testing"

	"tesseric/backend/internal/review"
)

func findingIDs(findings []review.Finding) []string {
	ids := make([]string, len(findings))
	for i, f := range findings {
		ids[i] = f.ID
	}
	return ids
}

func TestPatternAnalyzer_DetectsAntiPatterns(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantIDs []string
	}{
		{
			name:    "single az",
			text:    "Web app running in a single AZ with an RDS instance",
			wantIDs: []string{"REL-001"},
		},
		{
			name:    "unencrypted storage",
			text:    "Data stored unencrypted in S3",
			wantIDs: []string{"SEC-001"},
		},
		{
			name:    "multiple patterns",
			text:    "Single AZ deployment, no backups, and a public S3 bucket",
			wantIDs: []string{"REL-001", "REL-002", "SEC-002"},
		},
		{
			name:    "fixed capacity",
			text:    "Fixed capacity EC2 fleet behind a load balancer",
			wantIDs: []string{"PERF-001"},
		},
		{
			name:    "over-provisioned",
			text:    "Instances are over-provisioned for the workload",
			wantIDs: []string{"COST-001"},
		},
		{
			name:    "nothing detected",
			text:    "Well designed multi-region architecture",
			wantIDs: []string{"GEN-001"},
		},
	}

	analyzer := NewPatternAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analyzer.Analyze(context.Background(), tt.text, "standard")
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			got := findingIDs(result.Findings)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("findings = %v, want %v", got, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if got[i] != id {
					t.Errorf("finding[%d] = %s, want %s", i, got[i], id)
				}
			}
		})
	}
}

func TestPatternAnalyzer_KeywordMatchesOnce(t *testing.T) {
	analyzer := NewPatternAnalyzer()
	result, _ := analyzer.Analyze(context.Background(), "single az, one az, 1 az", "standard")
	if len(result.Findings) != 1 {
		t.Errorf("overlapping keywords produced %d findings, want 1", len(result.Findings))
	}
}

func TestBuildSummary(t *testing.T) {
	analyzer := NewPatternAnalyzer()

	severe, _ := analyzer.Analyze(context.Background(), "single az and no encryption", "standard")
	if !strings.Contains(severe.Summary, "critical/high severity") {
		t.Errorf("summary missing severity callout: %s", severe.Summary)
	}
	if !strings.Contains(severe.Summary, "Primary concerns:") {
		t.Errorf("summary missing concern list: %s", severe.Summary)
	}

	mild, _ := analyzer.Analyze(context.Background(), "slightly over-provisioned", "standard")
	if !strings.Contains(mild.Summary, "generally well-aligned") {
		t.Errorf("mild summary = %s", mild.Summary)
	}
}

func TestBuildSummary_RoastTone(t *testing.T) {
	analyzer := NewPatternAnalyzer()
	result, _ := analyzer.Analyze(context.Background(), "single az deployment", "roast")
	if !strings.Contains(result.Summary, "Oof, found") {
		t.Errorf("roast summary not adjusted: %s", result.Summary)
	}
	if !strings.Contains(result.Summary, "Let's talk about:") {
		t.Errorf("roast summary keeps standard phrasing: %s", result.Summary)
	}
}

func TestPatternAnalyzer_Method(t *testing.T) {
	if got := NewPatternAnalyzer().Method(); got != "pattern_matching_fallback" {
		t.Errorf("Method() = %s", got)
	}
}
