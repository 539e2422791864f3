package review

import "time"

// Severity is a finding severity level
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityOrder is the fixed display order used by dashboards
var SeverityOrder = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Valid reports whether s is a known severity level
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// RelationshipType is a service-to-service topology connection type.
// Closed set: free strings never reach the query layer.
type RelationshipType string

const (
	RelRoutesTo     RelationshipType = "routes_to"
	RelReadsFrom    RelationshipType = "reads_from"
	RelWritesTo     RelationshipType = "writes_to"
	RelMonitors     RelationshipType = "monitors"
	RelAuthorizes   RelationshipType = "authorizes"
	RelBacksUp      RelationshipType = "backs_up"
	RelReplicatesTo RelationshipType = "replicates_to"
)

var edgeTypes = map[RelationshipType]string{
	RelRoutesTo:     "ROUTES_TO",
	RelReadsFrom:    "READS_FROM",
	RelWritesTo:     "WRITES_TO",
	RelMonitors:     "MONITORS",
	RelAuthorizes:   "AUTHORIZES",
	RelBacksUp:      "BACKS_UP",
	RelReplicatesTo: "REPLICATES_TO",
}

// Valid reports whether r is a known relationship type
func (r RelationshipType) Valid() bool {
	_, ok := edgeTypes[r]
	return ok
}

// EdgeType returns the graph relationship label for r, or "" if unknown
func (r RelationshipType) EdgeType() string {
	return edgeTypes[r]
}

// Finding is a single issue raised by one review. The per-review ID is
// upstream-generated (e.g. REL-001) and is not a stable identity; findings
// converge across reviews on (title, severity, category).
type Finding struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"pillar"`
	Description string   `json:"finding"`
	Impact      string   `json:"impact"`
	Remediation string   `json:"remediation"`
}

// Connection is one directed service-to-service edge in the topology
type Connection struct {
	SourceService    string           `json:"source_service"`
	TargetService    string           `json:"target_service"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Description      string           `json:"description,omitempty"`
}

// Topology describes the service layout detected for one review
type Topology struct {
	Services            []string     `json:"services,omitempty"`
	Connections         []Connection `json:"connections"`
	ArchitecturePattern string       `json:"architecture_pattern,omitempty"`
}

// AnalysisRecord is a finalized review, ready to be persisted.
// ProcessingTimeMs of 0 means the duration was not recorded.
type AnalysisRecord struct {
	ID                      string    `json:"review_id"`
	CreatedAt               time.Time `json:"created_at"`
	Score                   int       `json:"architecture_score"`
	Summary                 string    `json:"summary"`
	Tone                    string    `json:"tone"`
	ProcessingTimeMs        int64     `json:"processing_time_ms,omitempty"`
	InputMethod             string    `json:"input_method,omitempty"`
	AnalysisMethod          string    `json:"analysis_method,omitempty"`
	ArchitectureDescription string    `json:"architecture_description,omitempty"`
	Findings                []Finding `json:"risks"`
	Topology                *Topology `json:"topology,omitempty"`
}
