package review

import "testing"

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     int
	}{
		{"no findings", nil, 100},
		{"single critical", []Finding{{Severity: SeverityCritical}}, 75},
		{"mixed severities", []Finding{
			{Severity: SeverityHigh},
			{Severity: SeverityMedium},
			{Severity: SeverityLow},
		}, 74},
		{"floors at zero", []Finding{
			{Severity: SeverityCritical},
			{Severity: SeverityCritical},
			{Severity: SeverityCritical},
			{Severity: SeverityCritical},
			{Severity: SeverityCritical},
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateScore(tt.findings); got != tt.want {
				t.Errorf("CalculateScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRelationshipTypeValid(t *testing.T) {
	for _, r := range []RelationshipType{
		RelRoutesTo, RelReadsFrom, RelWritesTo, RelMonitors,
		RelAuthorizes, RelBacksUp, RelReplicatesTo,
	} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
		if r.EdgeType() == "" {
			t.Errorf("expected edge type for %q", r)
		}
	}

	if RelationshipType("drops_tables").Valid() {
		t.Error("unknown relationship type must not validate")
	}
	if RelationshipType("drops_tables").EdgeType() != "" {
		t.Error("unknown relationship type must not map to an edge type")
	}
}
