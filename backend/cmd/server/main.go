package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"tesseric/backend/internal/adapter"
	"tesseric/backend/internal/analytics"
	"tesseric/backend/internal/graph"
	"tesseric/backend/pkg/config"
	apperrors "tesseric/backend/pkg/errors"
	"tesseric/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver. The graph layer is optional: when disabled
	// or unreachable, reviews still work and graph reads return empty.
	var driver neo4j.DriverWithContext
	if cfg.Neo4jEnabled {
		driver, err = neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		defer driver.Close(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Warn("Neo4j unreachable at startup, continuing degraded",
				zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
		}
		cancel()
	} else {
		log.Info("Neo4j disabled, graph features degraded")
	}

	// Initialize dependencies
	repo := graph.NewRepository(driver)

	var primary adapter.Analyzer
	if cfg.LLMBaseURL != "" {
		primary = adapter.NewLLMAnalyzer(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID)
		log.Info("Model analyzer configured", zap.String("model", cfg.ModelID))
	} else {
		log.Info("No model endpoint configured, using pattern matching only")
	}
	reviews := adapter.NewReviewService(primary)

	aggregator := analytics.NewAggregator(repo, analytics.NewCache(cfg.MetricsCacheTTL))

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(&deps{
		repo:       repo,
		reviews:    reviews,
		aggregator: aggregator,
		logger:     log,
	})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
