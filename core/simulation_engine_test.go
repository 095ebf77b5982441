package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

func testRunConfig() RunConfig {
	cfg := DefaultRunConfig()
	cfg.Grid = gridSpec(0, 50, 0, 50, 10, 6)
	return cfg
}

func TestEngineRunEndToEnd(t *testing.T) {
	engine, err := NewSimulationEngine(testRunConfig())
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}
	txs := []model.Transmitter{
		wifiTx("ap1", r3.Vector{X: 10, Y: 20, Z: 6}),
		wifiTx("ap2", r3.Vector{X: 30, Y: 40, Z: 6}),
	}

	result, err := engine.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" {
		t.Error("result carries no run id")
	}
	if result.TotalPoints != 36 || len(result.Points) != 36 {
		t.Fatalf("got %d points, want 36", result.TotalPoints)
	}

	// The grid point on ap1 sees ap1's floored free-space value.
	at := result.Points[13]
	wantFloor := 20 - FreeSpaceRefLossDB(0.1, 2.4e9)
	if math.Abs(at.AggregatedDBm-wantFloor) > 1e-9 {
		t.Errorf("point on ap1 aggregated = %g, want %g", at.AggregatedDBm, wantFloor)
	}
	if at.Tier != "excellent" {
		t.Errorf("point on ap1 classified %q, want excellent", at.Tier)
	}

	total := 0.0
	for _, share := range result.Tiers {
		total += share.Percent
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("tier percentages sum to %g", total)
	}

	if result.Parameters.ModelKind != string(ModelFreeSpace) {
		t.Errorf("parameters record model %q", result.Parameters.ModelKind)
	}
	if result.Parameters.TransmitterCount != 2 {
		t.Errorf("parameters record %d transmitters, want 2", result.Parameters.TransmitterCount)
	}
}

func TestEngineAppliesTransformBeforeEvaluation(t *testing.T) {
	// The APs are supplied in a frame rotated 90 degrees about Z and offset;
	// after the inverse mapping ap1 lands exactly on grid point (10, 20).
	cfg := testRunConfig()
	cfg.Transform = CoordinateTransform{
		RotZRad:     -math.Pi / 2,
		Translation: r3.Vector{X: 10, Y: 20, Z: 0},
	}
	engine, err := NewSimulationEngine(cfg)
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}

	// Rotating (0, 0, 6) by any angle keeps it at the origin; the translation
	// places it at (10, 20, 6).
	txs := []model.Transmitter{wifiTx("ap1", r3.Vector{X: 0, Y: 0, Z: 6})}
	result, err := engine.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	at := result.Points[13]
	wantFloor := 20 - FreeSpaceRefLossDB(0.1, 2.4e9)
	if math.Abs(at.AggregatedDBm-wantFloor) > 1e-9 {
		t.Errorf("transformed ap not at (10, 20): aggregated = %g, want %g", at.AggregatedDBm, wantFloor)
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testRunConfig()
	cfg.Grid.ResolutionM = -1

	_, err := NewSimulationEngine(cfg)
	var param *ModelParameterError
	if !errors.As(err, &param) {
		t.Fatalf("expected ModelParameterError, got %v", err)
	}
}

func TestEngineRejectsEmptyAndDuplicateTransmitters(t *testing.T) {
	engine, err := NewSimulationEngine(testRunConfig())
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}

	var param *ModelParameterError
	if _, err := engine.Run(context.Background(), nil); !errors.As(err, &param) {
		t.Errorf("empty transmitter set: expected ModelParameterError, got %v", err)
	}

	dupes := []model.Transmitter{
		wifiTx("ap1", r3.Vector{X: 1, Z: 2}),
		wifiTx("ap1", r3.Vector{X: 2, Z: 2}),
	}
	if _, err := engine.Run(context.Background(), dupes); !errors.As(err, &param) {
		t.Errorf("duplicate ids: expected ModelParameterError, got %v", err)
	}
}

func TestEngineCancelledRunReturnsNothing(t *testing.T) {
	cfg := testRunConfig()
	cfg.Grid = gridSpec(0, 200, 0, 200, 0.5, 1.5)
	engine, err := NewSimulationEngine(cfg)
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Run(ctx, []model.Transmitter{wifiTx("ap1", r3.Vector{X: 100, Y: 100, Z: 2.5})})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result != nil {
		t.Error("cancelled run produced a result")
	}
}

type captureRecorder struct {
	outcome  string
	duration time.Duration
	points   int
	tiers    []model.TierShare
	calls    int
}

func (r *captureRecorder) RecordRun(outcome string, d time.Duration, points int, tiers []model.TierShare) {
	r.outcome = outcome
	r.duration = d
	r.points = points
	r.tiers = tiers
	r.calls++
}

func TestEngineRecordsRunOutcome(t *testing.T) {
	rec := &captureRecorder{}
	engine, err := NewSimulationEngine(testRunConfig(), WithMetricsRecorder(rec))
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}

	if _, err := engine.Run(context.Background(), []model.Transmitter{wifiTx("ap1", r3.Vector{X: 25, Y: 25, Z: 6})}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.calls != 1 || rec.outcome != "ok" || rec.points != 36 {
		t.Errorf("recorder saw %d calls, outcome %q, %d points", rec.calls, rec.outcome, rec.points)
	}

	if _, err := engine.Run(context.Background(), nil); err == nil {
		t.Fatal("expected failure")
	}
	if rec.calls != 2 || rec.outcome != "error" {
		t.Errorf("failed run recorded as %q after %d calls", rec.outcome, rec.calls)
	}
}

func TestEngineRunIDsAreUnique(t *testing.T) {
	engine, err := NewSimulationEngine(testRunConfig())
	if err != nil {
		t.Fatalf("NewSimulationEngine: %v", err)
	}
	txs := []model.Transmitter{wifiTx("ap1", r3.Vector{X: 25, Y: 25, Z: 6})}

	a, err := engine.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := engine.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.RunID == b.RunID {
		t.Errorf("two runs share id %q", a.RunID)
	}
}
