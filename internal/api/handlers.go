package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/coverage-simulator/core"
	"github.com/signalsfoundry/coverage-simulator/internal/logging"
	"github.com/signalsfoundry/coverage-simulator/internal/observability"
	"github.com/signalsfoundry/coverage-simulator/internal/store"
)

// RunHandler executes and serves coverage simulation runs.
type RunHandler struct {
	repo      *store.RunRepository
	collector *observability.CoverageCollector
	log       logging.Logger
}

// NewRunHandler builds a handler; the logger may be nil.
func NewRunHandler(repo *store.RunRepository, collector *observability.CoverageCollector, log logging.Logger) *RunHandler {
	if log == nil {
		log = logging.Noop()
	}
	return &RunHandler{repo: repo, collector: collector, log: log}
}

type createRunRequest struct {
	// TransmittersCSV carries the AP coordinate records verbatim:
	// identifier,x,y,z per line, no header.
	TransmittersCSV string `json:"transmitters_csv" binding:"required"`
	// Config is a run configuration document; omitted sections fall back to
	// the documented defaults.
	Config json.RawMessage `json:"config,omitempty"`
}

// CreateRun executes one simulation synchronously and persists its summary.
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := core.DefaultRunConfig()
	if len(req.Config) > 0 {
		loaded, err := core.LoadRunConfig(bytes.NewReader(req.Config))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg = loaded
	}

	txs, err := core.LoadTransmitters(strings.NewReader(req.TransmittersCSV), cfg.Defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine, err := core.NewSimulationEngine(cfg,
		core.WithLogger(h.log),
		core.WithMetricsRecorder(h.collector),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := engine.Run(c.Request.Context(), txs)
	if err != nil {
		c.JSON(statusForRunError(err), gin.H{"error": err.Error()})
		return
	}

	if h.repo != nil {
		if err := h.repo.Save(c.Request.Context(), result); err != nil {
			h.log.Error(c.Request.Context(), "failed to persist run",
				logging.String("run_id", result.RunID),
				logging.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "run completed but could not be stored"})
			return
		}
	}

	if c.Query("include_points") == "true" {
		c.JSON(http.StatusCreated, result)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"run_id":       result.RunID,
		"total_points": result.TotalPoints,
		"tiers":        result.Tiers,
		"stats":        result.Stats,
		"parameters":   result.Parameters,
	})
}

// ListRuns returns stored run summaries, newest first.
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	summaries, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": summaries})
}

// GetRun returns one stored run summary.
func (h *RunHandler) GetRun(c *gin.Context) {
	summary, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRunResult returns the full stored CoverageResult including the grid.
func (h *RunHandler) GetRunResult(c *gin.Context) {
	result, err := h.repo.GetResult(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// statusForRunError maps the engine's validation taxonomy onto HTTP codes:
// every local validation failure is the caller's input problem.
func statusForRunError(err error) int {
	var (
		malformed  *core.MalformedRecordError
		transform  *core.InvalidTransformError
		degenerate *core.DegenerateGeometryError
		bands      *core.InvalidBandConfigurationError
		param      *core.ModelParameterError
	)
	switch {
	case errors.As(err, &malformed),
		errors.As(err, &transform),
		errors.As(err, &degenerate),
		errors.As(err, &bands),
		errors.As(err, &param):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
