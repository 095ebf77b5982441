package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/coverage-simulator/internal/logging"
	"github.com/signalsfoundry/coverage-simulator/internal/observability"
	"github.com/signalsfoundry/coverage-simulator/internal/store"
)

// SetupRouter wires the HTTP surface: run execution and retrieval under
// /api/v1, plus health and Prometheus metrics.
func SetupRouter(repo *store.RunRepository, collector *observability.CoverageCollector, log logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
		collector.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	h := NewRunHandler(repo, collector, log)

	api := r.Group("/api/v1")
	{
		runs := api.Group("/runs")
		{
			runs.POST("", h.CreateRun)
			runs.GET("", h.ListRuns)
			runs.GET("/:id", h.GetRun)
			runs.GET("/:id/result", h.GetRunResult)
		}
	}

	return r
}
