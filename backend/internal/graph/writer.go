package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"tesseric/backend/internal/review"
	"tesseric/backend/internal/taxonomy"
	apperrors "tesseric/backend/pkg/errors"
)

// WriteAnalysis persists one finalized review as a single transaction:
// the Analysis node, deduplicated Finding nodes, accumulated Service nodes,
// and the HAS_FINDING / INVOLVES_SERVICE / CO_OCCURS_WITH / topology edges.
// Either everything commits or nothing does.
//
// CO_OCCURS_WITH counts accumulate per write: submitting the same analysis
// twice increments every pair again. Callers are expected to submit each
// review exactly once.
//
// Returns false on any failure; the error is logged and never propagated.
// Callers treat the write as fire-and-forget.
func (r *Repository) WriteAnalysis(ctx context.Context, rec *review.AnalysisRecord) bool {
	if r.driver == nil {
		r.logger.Warn("Neo4j not configured, skipping graph write",
			zap.String("analysis_id", rec.ID),
		)
		return false
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, r.createAnalysisGraph(ctx, tx, rec)
	})
	if err != nil {
		r.logger.Error("Failed to write analysis to graph",
			zap.String("analysis_id", rec.ID),
			zap.Error(apperrors.NewGraphWriteFailed(rec.ID, err)),
		)
		return false
	}

	r.logger.Info("Analysis written to graph",
		zap.String("analysis_id", rec.ID),
		zap.Int("findings", len(rec.Findings)),
	)
	return true
}

func (r *Repository) createAnalysisGraph(ctx context.Context, tx neo4j.ManagedTransaction, rec *review.AnalysisRecord) error {
	createdAt := rec.CreatedAt.UTC().Format(time.RFC3339)

	// 1. Analysis node, always a fresh create
	pattern := ""
	if rec.Topology != nil {
		pattern = rec.Topology.ArchitecturePattern
	}
	if _, err := tx.Run(ctx, analysisUpsert.cypher(), map[string]any{
		"id":                      rec.ID,
		"createdAt":               createdAt,
		"score":                   rec.Score,
		"summary":                 rec.Summary,
		"tone":                    rec.Tone,
		"processingTimeMs":        nullableInt64(rec.ProcessingTimeMs),
		"inputMethod":             rec.InputMethod,
		"analysisMethod":          rec.AnalysisMethod,
		"architectureDescription": rec.ArchitectureDescription,
		"architecturePattern":     pattern,
	}); err != nil {
		return fmt.Errorf("create analysis node: %w", err)
	}

	// 2. Finding upserts by composite key, then HAS_FINDING links.
	// Resolution is by (title, severity, category), never by the
	// upstream per-review finding id, so repeat findings converge.
	for _, f := range rec.Findings {
		keyParams := map[string]any{
			"title":    f.Title,
			"severity": string(f.Severity),
			"category": f.Category,
		}

		params := map[string]any{
			"surrogateID": uuid.NewString(),
			"description": f.Description,
			"impact":      f.Impact,
			"remediation": f.Remediation,
			"seenAt":      createdAt,
			"reviewID":    rec.ID,
		}
		for k, v := range keyParams {
			params[k] = v
		}
		if _, err := tx.Run(ctx, findingUpsert.cypher(), params); err != nil {
			return fmt.Errorf("upsert finding %q: %w", f.Title, err)
		}

		linkParams := map[string]any{"reviewID": rec.ID}
		for k, v := range keyParams {
			linkParams[k] = v
		}
		if _, err := tx.Run(ctx, `
			MATCH (a:Analysis {id: $reviewID})
			MATCH (f:Finding {title: $title, severity: $severity, category: $category})
			MERGE (a)-[:HAS_FINDING]->(f)
		`, linkParams); err != nil {
			return fmt.Errorf("link finding %q: %w", f.Title, err)
		}
	}

	// 3. Service upserts for the analysis-wide union
	services := taxonomy.ServicesForAnalysis(rec.Findings)
	for _, svc := range services {
		if _, err := tx.Run(ctx, serviceUpsert.cypher(), map[string]any{
			"name":     svc.Name,
			"category": svc.Category,
		}); err != nil {
			return fmt.Errorf("upsert service %q: %w", svc.Name, err)
		}
	}

	// 4. INVOLVES_SERVICE per finding-local mention
	for _, f := range rec.Findings {
		for _, svc := range taxonomy.ExtractFromFinding(f) {
			if _, err := tx.Run(ctx, `
				MATCH (f:Finding {title: $title, severity: $severity, category: $category})
				MATCH (s:Service {name: $name})
				MERGE (f)-[:INVOLVES_SERVICE]->(s)
			`, map[string]any{
				"title":    f.Title,
				"severity": string(f.Severity),
				"category": f.Category,
				"name":     svc.Name,
			}); err != nil {
				return fmt.Errorf("link service %q to finding %q: %w", svc.Name, f.Title, err)
			}
		}
	}

	// 5. CO_OCCURS_WITH for every unordered pair; iteration order is fixed
	// by the sorted service list, edge identity is symmetric either way
	for _, pair := range servicePairs(services) {
		if _, err := tx.Run(ctx, `
			MATCH (s1:Service {name: $first})
			MATCH (s2:Service {name: $second})
			MERGE (s1)-[r:CO_OCCURS_WITH]-(s2)
			ON CREATE SET r.count = 1
			ON MATCH SET r.count = r.count + 1
		`, map[string]any{"first": pair[0], "second": pair[1]}); err != nil {
			return fmt.Errorf("co-occurrence %s/%s: %w", pair[0], pair[1], err)
		}
	}

	// 6. Topology edges, create-only: repeats of the same
	// (source, target, type) are silent no-ops
	if rec.Topology != nil {
		if err := r.createTopologyEdges(ctx, tx, rec.Topology); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) createTopologyEdges(ctx context.Context, tx neo4j.ManagedTransaction, topo *review.Topology) error {
	for _, conn := range topo.Connections {
		if !conn.RelationshipType.Valid() {
			r.logger.Warn("Skipping topology connection with unknown relationship type",
				zap.String("relationship_type", string(conn.RelationshipType)),
			)
			continue
		}

		src, okSrc := taxonomy.Lookup(conn.SourceService)
		dst, okDst := taxonomy.Lookup(conn.TargetService)
		if !okSrc || !okDst || src.Name == dst.Name {
			r.logger.Debug("Skipping topology connection with unknown endpoint",
				zap.String("source", conn.SourceService),
				zap.String("target", conn.TargetService),
			)
			continue
		}

		for _, endpoint := range []taxonomy.Service{src, dst} {
			if _, err := tx.Run(ctx, topologyServiceUpsert.cypher(), map[string]any{
				"name":     endpoint.Name,
				"category": endpoint.Category,
			}); err != nil {
				return fmt.Errorf("upsert topology endpoint %q: %w", endpoint.Name, err)
			}
		}

		// The relationship label comes from a closed enum, never from input
		query := fmt.Sprintf(`
			MATCH (src:Service {name: $source})
			MATCH (dst:Service {name: $target})
			MERGE (src)-[r:%s]->(dst)
			ON CREATE SET r.description = $description
		`, conn.RelationshipType.EdgeType())
		if _, err := tx.Run(ctx, query, map[string]any{
			"source":      src.Name,
			"target":      dst.Name,
			"description": conn.Description,
		}); err != nil {
			return fmt.Errorf("topology edge %s-[%s]->%s: %w",
				src.Name, conn.RelationshipType, dst.Name, err)
		}
	}
	return nil
}

// servicePairs enumerates unordered pairs of distinct services, i < j over
// the sorted input so iteration order is deterministic.
func servicePairs(services []taxonomy.Service) [][2]string {
	var pairs [][2]string
	for i := 0; i < len(services); i++ {
		for j := i + 1; j < len(services); j++ {
			pairs = append(pairs, [2]string{services[i].Name, services[j].Name})
		}
	}
	return pairs
}

// nullableInt64 maps the zero value to nil so unrecorded durations stay
// absent in the store and out of the percentile queries.
func nullableInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
