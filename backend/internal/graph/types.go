package graph

// Node is one node in a graph view, shaped for visualization: a stable id,
// a display label chosen by node type, the node's label set entry as type,
// and the full property bag.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Edge is one relationship in a graph view
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Data is a complete graph query result
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// EmptyData returns a result with non-nil empty slices, the degraded/not-found shape
func EmptyData() *Data {
	return &Data{Nodes: []Node{}, Edges: []Edge{}}
}

// ArchitectureService is a service-centric projection of one analysis:
// how many findings touch the service and how severe they are.
type ArchitectureService struct {
	ServiceName       string           `json:"service_name"`
	Category          string           `json:"category"`
	FindingCount      int64            `json:"finding_count"`
	SeverityBreakdown map[string]int64 `json:"severity_breakdown"`
	MaxSeverity       string           `json:"max_severity,omitempty"`
}

// ArchitectureConnection is one topology edge between two services
type ArchitectureConnection struct {
	SourceService    string `json:"source_service"`
	TargetService    string `json:"target_service"`
	RelationshipType string `json:"relationship_type"`
	Description      string `json:"description,omitempty"`
}

// ArchitectureView is the architecture-first projection of one analysis
type ArchitectureView struct {
	Services                []ArchitectureService    `json:"services"`
	Connections             []ArchitectureConnection `json:"connections"`
	ArchitecturePattern     string                   `json:"architecture_pattern,omitempty"`
	ArchitectureDescription string                   `json:"architecture_description,omitempty"`
}

// EmptyArchitectureView returns the degraded/not-found architecture shape
func EmptyArchitectureView() *ArchitectureView {
	return &ArchitectureView{
		Services:    []ArchitectureService{},
		Connections: []ArchitectureConnection{},
	}
}

// DayCount is one day's review count in a time series
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DayScore is one day's mean architecture score
type DayScore struct {
	Date     string  `json:"date"`
	AvgScore float64 `json:"avg_score"`
}

// ServiceCount is one service with its occurrence counter
type ServiceCount struct {
	Service string `json:"service"`
	Count   int64  `json:"count"`
}

// Percentiles holds processing-time percentiles in milliseconds
type Percentiles struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}
