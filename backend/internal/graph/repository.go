package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"tesseric/backend/pkg/logger"
)

// Repository handles all Neo4j database operations for the review graph.
// A nil driver means the graph store is disabled: writes are skipped and
// reads return empty results, never errors.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Enabled reports whether a backing store is configured
func (r *Repository) Enabled() bool {
	return r.driver != nil
}

// Ping reports whether the backing store is currently reachable
func (r *Repository) Ping(ctx context.Context) bool {
	if r.driver == nil {
		return false
	}
	if err := r.driver.VerifyConnectivity(ctx); err != nil {
		r.logger.Warn("Neo4j connectivity check failed", zap.Error(err))
		return false
	}
	return true
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Close(context.Background())
}

func (r *Repository) readSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

func (r *Repository) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}
