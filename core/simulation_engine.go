package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/coverage-simulator/internal/logging"
	"github.com/signalsfoundry/coverage-simulator/model"
)

// RunStage labels the orchestrator's state machine. Stages advance strictly
// in order; a failure at any stage aborts the run with no partial result.
type RunStage string

const (
	StageLoaded      RunStage = "LOADED"
	StageTransformed RunStage = "TRANSFORMED"
	StageSampled     RunStage = "SAMPLED"
	StageEvaluated   RunStage = "EVALUATED"
	StageClassified  RunStage = "CLASSIFIED"
	StageDone        RunStage = "DONE"
)

// RunMetricsRecorder receives run outcomes; the observability collector
// implements it. A nil recorder is valid.
type RunMetricsRecorder interface {
	RecordRun(outcome string, duration time.Duration, points int, tiers []model.TierShare)
}

// SimulationEngine composes the coverage pipeline: transform the transmitter
// set into the building frame, sample the grid, evaluate the propagation
// model per point, aggregate, classify and summarise.
type SimulationEngine struct {
	cfg     RunConfig
	log     logging.Logger
	tracer  trace.Tracer
	metrics RunMetricsRecorder
}

// EngineOption customises a SimulationEngine.
type EngineOption func(*SimulationEngine)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) EngineOption {
	return func(e *SimulationEngine) { e.log = log }
}

// WithMetricsRecorder attaches a run-outcome recorder.
func WithMetricsRecorder(rec RunMetricsRecorder) EngineOption {
	return func(e *SimulationEngine) { e.metrics = rec }
}

// NewSimulationEngine validates the full configuration up front so a Run can
// only fail on input data or cancellation, never on misconfiguration
// discovered mid-pipeline.
func NewSimulationEngine(cfg RunConfig, opts ...EngineOption) (*SimulationEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &SimulationEngine{
		cfg:    cfg,
		log:    logging.Noop(),
		tracer: otel.Tracer("coverage-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes one simulation over the given transmitter set. The input
// slice is never mutated. On any error the returned result is nil; callers
// never observe a half-populated CoverageResult.
func (e *SimulationEngine) Run(ctx context.Context, txs []model.Transmitter) (*model.CoverageResult, error) {
	runID := uuid.NewString()
	ctx, log := logging.WithRunLogger(ctx, e.log, runID)
	start := time.Now()

	result, err := e.run(ctx, log, runID, txs)
	if err != nil {
		e.recordRun("error", time.Since(start), 0, nil)
		log.Error(ctx, "simulation run failed", logging.String("error", err.Error()))
		return nil, err
	}

	e.recordRun("ok", time.Since(start), result.TotalPoints, result.Tiers)
	log.Info(ctx, "simulation run complete",
		logging.Int("points", result.TotalPoints),
		logging.Float64("mean_dbm", result.Stats.MeanDBm),
		logging.String("stage", string(StageDone)),
	)
	return result, nil
}

func (e *SimulationEngine) run(ctx context.Context, log logging.Logger, runID string, txs []model.Transmitter) (*model.CoverageResult, error) {
	ctx, span := e.tracer.Start(ctx, "coverage.run")
	defer span.End()

	// LOADED: inputs are already parsed; re-check the invariants the loader
	// guarantees so direct API callers get the same validation.
	if len(txs) == 0 {
		return nil, &ModelParameterError{Model: "run", Param: "transmitters", Reason: "at least one transmitter is required"}
	}
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if seen[tx.ID] {
			return nil, &ModelParameterError{Model: "run", Param: "transmitters", Reason: "duplicate transmitter id " + tx.ID}
		}
		seen[tx.ID] = true
	}
	log.Debug(ctx, "inputs loaded", logging.Int("transmitters", len(txs)), logging.String("stage", string(StageLoaded)))

	// TRANSFORMED: map AP positions into the building frame.
	transformed, err := e.stageTransform(ctx, txs)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "positions transformed", logging.String("stage", string(StageTransformed)))

	// SAMPLED: materialise the evaluation lattice.
	points := e.stageSample(ctx)
	log.Debug(ctx, "grid sampled", logging.Int("points", len(points)), logging.String("stage", string(StageSampled)))

	// EVALUATED: per-point model evaluation and aggregation.
	evaluated, err := e.stageEvaluate(ctx, points, transformed)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "grid evaluated", logging.String("stage", string(StageEvaluated)))

	// CLASSIFIED: tiers and summary statistics.
	tiers, stats, err := e.stageClassify(ctx, evaluated)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "grid classified", logging.String("stage", string(StageClassified)))

	return &model.CoverageResult{
		RunID:       runID,
		Points:      evaluated,
		Tiers:       tiers,
		Stats:       stats,
		TotalPoints: len(evaluated),
		Parameters: model.RunParameters{
			ModelKind:        string(e.cfg.Model.Kind),
			CombinationRule:  e.cfg.Rule,
			ResolutionM:      e.cfg.Grid.ResolutionM,
			HeightM:          e.cfg.Grid.HeightM,
			TransmitterCount: len(txs),
		},
	}, nil
}

func (e *SimulationEngine) stageTransform(ctx context.Context, txs []model.Transmitter) ([]model.Transmitter, error) {
	_, span := e.tracer.Start(ctx, "coverage.transform")
	defer span.End()
	return TransformTransmitters(txs, e.cfg.Transform)
}

func (e *SimulationEngine) stageSample(ctx context.Context) []model.GridPoint {
	_, span := e.tracer.Start(ctx, "coverage.sample")
	defer span.End()
	return CollectGrid(e.cfg.Grid)
}

func (e *SimulationEngine) stageEvaluate(ctx context.Context, points []model.GridPoint, txs []model.Transmitter) ([]model.GridPoint, error) {
	ctx, span := e.tracer.Start(ctx, "coverage.evaluate")
	defer span.End()
	return EvaluateGrid(ctx, points, txs, e.cfg.Model, e.cfg.Rule, e.cfg.Workers, e.cfg.ChunkSize)
}

func (e *SimulationEngine) stageClassify(ctx context.Context, points []model.GridPoint) ([]model.TierShare, model.SignalStats, error) {
	_, span := e.tracer.Start(ctx, "coverage.classify")
	defer span.End()
	return ClassifyAndSummarize(points, e.cfg.Bands)
}

func (e *SimulationEngine) recordRun(outcome string, d time.Duration, points int, tiers []model.TierShare) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRun(outcome, d, points, tiers)
}
