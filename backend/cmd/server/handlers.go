package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tesseric/backend/internal/adapter"
	"tesseric/backend/internal/analytics"
	"tesseric/backend/internal/graph"
)

const (
	minDesignTextLen = 50
	maxDesignTextLen = 10000
	writeTimeout     = 30 * time.Second
)

// deps holds everything the handlers need
type deps struct {
	repo       *graph.Repository
	reviews    *adapter.ReviewService
	aggregator *analytics.Aggregator
	logger     *zap.Logger
}

// newRouter wires all routes. Split from main so tests can drive the full
// router with injected dependencies.
func newRouter(d *deps) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(d.logger))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/review", d.handleReview)

		api.GET("/graph/health", d.handleGraphHealth)
		api.GET("/graph/global/all", d.handleGlobalGraph)
		api.GET("/graph/:id", d.handleAnalysisGraph)
		api.GET("/graph/:id/architecture", d.handleArchitectureGraph)

		api.GET("/metrics/stats", d.handleMetricsStats)
		api.DELETE("/metrics/cache", d.handleMetricsCacheClear)
	}

	return router
}

type reviewRequest struct {
	DesignText string `json:"design_text" binding:"required"`
	Format     string `json:"format"`
	Tone       string `json:"tone"`
}

// handleReview runs the analysis pipeline and responds immediately; graph
// persistence happens in the background so a slow or down Neo4j never
// delays the review itself.
func (d *deps) handleReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.DesignText) < minDesignTextLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "design_text must be at least " + strconv.Itoa(minDesignTextLen) + " characters",
		})
		return
	}
	if len(req.DesignText) > maxDesignTextLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "design_text must be at most " + strconv.Itoa(maxDesignTextLen) + " characters",
		})
		return
	}

	if req.Format != "" && req.Format != "text" && req.Format != "markdown" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be 'text' or 'markdown'"})
		return
	}

	tone := req.Tone
	if tone == "" {
		tone = "standard"
	}
	if tone != "standard" && tone != "roast" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tone must be 'standard' or 'roast'"})
		return
	}

	record := d.reviews.Review(c.Request.Context(), req.DesignText, tone, "text")

	c.JSON(http.StatusOK, record)

	// Persist after responding. WriteAnalysis logs its own failures and
	// never blocks the review path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		d.repo.WriteAnalysis(ctx, record)
	}()
}

func (d *deps) handleGraphHealth(c *gin.Context) {
	connected := d.repo.Ping(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"enabled":         d.repo.Enabled(),
		"neo4j_connected": connected,
	})
}

func (d *deps) handleAnalysisGraph(c *gin.Context) {
	data := d.repo.AnalysisGraph(c.Request.Context(), c.Param("id"))
	if len(data.Nodes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found in graph"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (d *deps) handleArchitectureGraph(c *gin.Context) {
	view := d.repo.ArchitectureGraph(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, view)
}

func (d *deps) handleGlobalGraph(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, d.repo.GlobalGraph(c.Request.Context(), limit))
}

func (d *deps) handleMetricsStats(c *gin.Context) {
	c.JSON(http.StatusOK, d.aggregator.Aggregate(c.Request.Context()))
}

func (d *deps) handleMetricsCacheClear(c *gin.Context) {
	d.aggregator.InvalidateCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
