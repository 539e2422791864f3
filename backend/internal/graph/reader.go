package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"

	"tesseric/backend/internal/review"
)

const (
	defaultGlobalLimit = 100
	maxGlobalLimit     = 200
)

// AnalysisGraph returns the bounded subgraph for one review: the Analysis
// node, its findings, the services those findings involve, and the edges
// between them. Cross-analysis CO_OCCURS_WITH edges are excluded.
// An unknown id or unreachable store yields an empty result, never an error.
func (r *Repository) AnalysisGraph(ctx context.Context, analysisID string) *Data {
	if r.driver == nil {
		return EmptyData()
	}

	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchAnalysisGraph(ctx, tx, analysisID)
	})
	if err != nil {
		r.logger.Error("Failed to fetch analysis graph",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return EmptyData()
	}
	return result.(*Data)
}

func fetchAnalysisGraph(ctx context.Context, tx neo4j.ManagedTransaction, analysisID string) (*Data, error) {
	// Root first, so an analysis with zero findings still renders
	rootResult, err := tx.Run(ctx, `
		MATCH (a:Analysis {id: $analysisID})
		RETURN a
	`, map[string]any{"analysisID": analysisID})
	if err != nil {
		return nil, err
	}
	rootRecords, err := rootResult.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(rootRecords) == 0 {
		return EmptyData(), nil
	}

	data := EmptyData()
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	if root, ok := rootRecords[0].Values[0].(dbtype.Node); ok {
		appendNode(data, seenNodes, root)
	}

	pathResult, err := tx.Run(ctx, `
		MATCH path = (a:Analysis {id: $analysisID})-[:HAS_FINDING|INVOLVES_SERVICE*1..2]->()
		RETURN path
	`, map[string]any{"analysisID": analysisID})
	if err != nil {
		return nil, err
	}

	for pathResult.Next(ctx) {
		value, ok := pathResult.Record().Get("path")
		if !ok {
			continue
		}
		path, ok := value.(dbtype.Path)
		if !ok {
			continue
		}
		for _, node := range path.Nodes {
			appendNode(data, seenNodes, node)
		}
		for _, rel := range path.Relationships {
			appendEdge(data, seenEdges, rel)
		}
	}
	if err := pathResult.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// ArchitectureGraph returns the service-centric projection of one review:
// per-service finding counts with severity breakdowns, the topology edges
// among those services, and the review's detected pattern and description.
func (r *Repository) ArchitectureGraph(ctx context.Context, analysisID string) *ArchitectureView {
	if r.driver == nil {
		return EmptyArchitectureView()
	}

	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchArchitectureView(ctx, tx, analysisID)
	})
	if err != nil {
		r.logger.Error("Failed to fetch architecture view",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return EmptyArchitectureView()
	}
	return result.(*ArchitectureView)
}

func fetchArchitectureView(ctx context.Context, tx neo4j.ManagedTransaction, analysisID string) (*ArchitectureView, error) {
	view := EmptyArchitectureView()

	rootResult, err := tx.Run(ctx, `
		MATCH (a:Analysis {id: $analysisID})
		RETURN a.architecture_pattern AS pattern,
		       a.architecture_description AS description
	`, map[string]any{"analysisID": analysisID})
	if err != nil {
		return nil, err
	}
	rootRecords, err := rootResult.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(rootRecords) == 0 {
		return view, nil
	}
	view.ArchitecturePattern = getStringFromRecord(rootRecords[0], "pattern")
	view.ArchitectureDescription = getStringFromRecord(rootRecords[0], "description")

	svcResult, err := tx.Run(ctx, `
		MATCH (a:Analysis {id: $analysisID})-[:HAS_FINDING]->(f:Finding)-[:INVOLVES_SERVICE]->(s:Service)
		RETURN s.name AS name,
		       s.category AS category,
		       count(DISTINCT f) AS finding_count,
		       collect(f.severity) AS severities
		ORDER BY name
	`, map[string]any{"analysisID": analysisID})
	if err != nil {
		return nil, err
	}

	serviceNames := make([]string, 0)
	for svcResult.Next(ctx) {
		record := svcResult.Record()
		breakdown := make(map[string]int64)
		for _, severity := range getStringSliceFromRecord(record, "severities") {
			breakdown[severity]++
		}
		name := getStringFromRecord(record, "name")
		serviceNames = append(serviceNames, name)
		view.Services = append(view.Services, ArchitectureService{
			ServiceName:       name,
			Category:          getStringFromRecord(record, "category"),
			FindingCount:      getInt64FromRecord(record, "finding_count"),
			SeverityBreakdown: breakdown,
			MaxSeverity:       maxSeverity(breakdown),
		})
	}
	if err := svcResult.Err(); err != nil {
		return nil, err
	}

	if len(serviceNames) == 0 {
		return view, nil
	}

	connResult, err := tx.Run(ctx, `
		MATCH (src:Service)-[r]->(dst:Service)
		WHERE src.name IN $names AND dst.name IN $names AND type(r) IN $relTypes
		RETURN src.name AS source, dst.name AS target,
		       type(r) AS rel_type, r.description AS description
	`, map[string]any{
		"names":    serviceNames,
		"relTypes": topologyEdgeTypes(),
	})
	if err != nil {
		return nil, err
	}
	for connResult.Next(ctx) {
		record := connResult.Record()
		view.Connections = append(view.Connections, ArchitectureConnection{
			SourceService:    getStringFromRecord(record, "source"),
			TargetService:    getStringFromRecord(record, "target"),
			RelationshipType: strings.ToLower(getStringFromRecord(record, "rel_type")),
			Description:      getStringFromRecord(record, "description"),
		})
	}
	if err := connResult.Err(); err != nil {
		return nil, err
	}

	return view, nil
}

// GlobalGraph returns the cross-review service neighborhood: the top
// services by CO_OCCURS_WITH degree expanded to every incident edge and
// its far endpoint. Each symmetric edge is reported once.
func (r *Repository) GlobalGraph(ctx context.Context, limit int) *Data {
	if r.driver == nil {
		return EmptyData()
	}

	limit = clampGlobalLimit(limit)

	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchGlobalGraph(ctx, tx, limit)
	})
	if err != nil {
		r.logger.Error("Failed to fetch global graph", zap.Error(err))
		return EmptyData()
	}
	return result.(*Data)
}

func fetchGlobalGraph(ctx context.Context, tx neo4j.ManagedTransaction, limit int) (*Data, error) {
	result, err := tx.Run(ctx, `
		MATCH (s:Service)
		OPTIONAL MATCH (s)-[r:CO_OCCURS_WITH]-(:Service)
		WITH s, count(r) AS degree
		ORDER BY degree DESC
		LIMIT $limit
		MATCH path = (s)-[:CO_OCCURS_WITH]-(:Service)
		RETURN path
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	data := EmptyData()
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	for result.Next(ctx) {
		value, ok := result.Record().Get("path")
		if !ok {
			continue
		}
		path, ok := value.(dbtype.Path)
		if !ok {
			continue
		}
		for _, node := range path.Nodes {
			appendNode(data, seenNodes, node)
		}
		for _, rel := range path.Relationships {
			appendEdge(data, seenEdges, rel)
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

func appendNode(data *Data, seen map[string]bool, node dbtype.Node) {
	if seen[node.ElementId] {
		return
	}
	seen[node.ElementId] = true
	data.Nodes = append(data.Nodes, Node{
		ID:         node.ElementId,
		Label:      displayLabel(node),
		Type:       nodeType(node),
		Properties: convertProps(node.Props),
	})
}

// appendEdge deduplicates by relationship element id, which is direction
// independent: the undirected CO_OCCURS_WITH edge between A and B surfaces
// once no matter which endpoint the traversal entered from.
func appendEdge(data *Data, seen map[string]bool, rel dbtype.Relationship) {
	if seen[rel.ElementId] {
		return
	}
	seen[rel.ElementId] = true
	data.Edges = append(data.Edges, Edge{
		Source:     rel.StartElementId,
		Target:     rel.EndElementId,
		Type:       rel.Type,
		Properties: convertProps(rel.Props),
	})
}

func clampGlobalLimit(limit int) int {
	if limit <= 0 {
		return defaultGlobalLimit
	}
	if limit > maxGlobalLimit {
		return maxGlobalLimit
	}
	return limit
}

func topologyEdgeTypes() []string {
	types := []review.RelationshipType{
		review.RelRoutesTo, review.RelReadsFrom, review.RelWritesTo,
		review.RelMonitors, review.RelAuthorizes, review.RelBacksUp,
		review.RelReplicatesTo,
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.EdgeType())
	}
	return out
}

// maxSeverity returns the most severe level present in a breakdown,
// walking the fixed display order.
func maxSeverity(breakdown map[string]int64) string {
	for _, s := range review.SeverityOrder {
		if breakdown[string(s)] > 0 {
			return string(s)
		}
	}
	return ""
}
