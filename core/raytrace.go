package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// RayTraceRequest is the contract with an external physics-based simulator:
// it receives the transmitter set, a scene reference it resolves on its own
// side, and the radio configuration, and returns a grid of signal values in
// dBm matching the requested spec.
type RayTraceRequest struct {
	Transmitters  []model.Transmitter `json:"transmitters"`
	SceneRef      string              `json:"scene_ref"`
	FrequencyHz   float64             `json:"frequency_hz"`
	AntennaConfig string              `json:"antenna_config,omitempty"`
	Grid          model.GridSpec      `json:"grid"`
}

// RayTraceGrid is the simulator's response: one value per grid point in the
// same row-major order the sampler uses.
type RayTraceGrid struct {
	Spec      model.GridSpec `json:"grid"`
	ValuesDBm []float64      `json:"values_dbm"`
}

// RayTracer is the external ray-tracing collaborator boundary. Retries, if
// any, live behind this interface; the engine itself never retries.
type RayTracer interface {
	SimulateCoverage(ctx context.Context, req RayTraceRequest) (*RayTraceGrid, error)
}

// HTTPRayTracer speaks JSON over HTTP to a remote simulator.
type HTTPRayTracer struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPRayTracer builds a client with a bounded request timeout.
func NewHTTPRayTracer(baseURL string) *HTTPRayTracer {
	return &HTTPRayTracer{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// SimulateCoverage posts the request to the simulator's /simulate endpoint.
func (c *HTTPRayTracer) SimulateCoverage(ctx context.Context, req RayTraceRequest) (*RayTraceGrid, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("raytrace: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/simulate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("raytrace: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("raytrace: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raytrace: simulator returned status %d", resp.StatusCode)
	}

	var grid RayTraceGrid
	if err := json.NewDecoder(resp.Body).Decode(&grid); err != nil {
		return nil, fmt.Errorf("raytrace: decode response: %w", err)
	}
	return &grid, nil
}

// ResultFromExternalGrid runs the classifier and statistics stages over a
// grid produced by the external simulator, yielding a CoverageResult
// identical in shape to an internally evaluated one.
func ResultFromExternalGrid(grid *RayTraceGrid, bands []Band, rule model.CombinationRule) (*model.CoverageResult, error) {
	if grid == nil {
		return nil, &ModelParameterError{Model: "raytrace", Param: "grid", Reason: "nil grid"}
	}
	if err := ValidateGridSpec(grid.Spec); err != nil {
		return nil, err
	}
	if want := grid.Spec.PointCount(); len(grid.ValuesDBm) != want {
		return nil, &ModelParameterError{
			Model:  "raytrace",
			Param:  "values_dbm",
			Reason: fmt.Sprintf("expected %d values for the grid spec, got %d", want, len(grid.ValuesDBm)),
		}
	}

	points := CollectGrid(grid.Spec)
	for i := range points {
		points[i].AggregatedDBm = grid.ValuesDBm[i]
	}

	tiers, stats, err := ClassifyAndSummarize(points, bands)
	if err != nil {
		return nil, err
	}

	return &model.CoverageResult{
		RunID:       uuid.NewString(),
		Points:      points,
		Tiers:       tiers,
		Stats:       stats,
		TotalPoints: len(points),
		Parameters: model.RunParameters{
			ModelKind:       "external-raytrace",
			CombinationRule: rule,
			ResolutionM:     grid.Spec.ResolutionM,
			HeightM:         grid.Spec.HeightM,
		},
	}, nil
}
