package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// ErrRunNotFound is returned when no run with the given ID exists.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the stored per-run digest; the full grid lives in the result
// blob and is only loaded on demand.
type RunSummary struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Parameters  model.RunParameters `json:"parameters"`
	TotalPoints int                `json:"total_points"`
	Stats       model.SignalStats  `json:"stats"`
	Tiers       []model.TierShare  `json:"tiers"`
}

// RunRepository persists completed coverage runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository wraps an opened database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save stores a completed run. Results are immutable; Save never updates.
func (r *RunRepository) Save(ctx context.Context, result *model.CoverageResult) error {
	tiersJSON, err := json.Marshal(result.Tiers)
	if err != nil {
		return fmt.Errorf("store: encode tiers: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, model_kind, rule, resolution_m, height_m,
	tx_count, total_points, min_dbm, max_dbm, mean_dbm, median_dbm,
	tiers_json, result_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		time.Now().UTC().Format(time.RFC3339Nano),
		result.Parameters.ModelKind,
		string(result.Parameters.CombinationRule),
		result.Parameters.ResolutionM,
		result.Parameters.HeightM,
		result.Parameters.TransmitterCount,
		result.TotalPoints,
		result.Stats.MinDBm,
		result.Stats.MaxDBm,
		result.Stats.MeanDBm,
		result.Stats.MedianDBm,
		string(tiersJSON),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("store: insert run %s: %w", result.RunID, err)
	}
	return nil
}

// List returns run summaries, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, created_at, model_kind, rule, resolution_m, height_m, tx_count,
	total_points, min_dbm, max_dbm, mean_dbm, median_dbm, tiers_json
FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Get returns one run summary by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (RunSummary, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, created_at, model_kind, rule, resolution_m, height_m, tx_count,
	total_points, min_dbm, max_dbm, mean_dbm, median_dbm, tiers_json
FROM runs WHERE id = ?`, id)

	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, ErrRunNotFound
	}
	return s, err
}

// GetResult loads the full CoverageResult blob for one run.
func (r *RunRepository) GetResult(ctx context.Context, id string) (*model.CoverageResult, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %s: %w", id, err)
	}

	var result model.CoverageResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		return nil, fmt.Errorf("store: decode run %s: %w", id, err)
	}
	return &result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (RunSummary, error) {
	var (
		s         RunSummary
		createdAt string
		rule      string
		tiersJSON string
	)
	err := row.Scan(&s.ID, &createdAt, &s.Parameters.ModelKind, &rule,
		&s.Parameters.ResolutionM, &s.Parameters.HeightM,
		&s.Parameters.TransmitterCount, &s.TotalPoints,
		&s.Stats.MinDBm, &s.Stats.MaxDBm, &s.Stats.MeanDBm, &s.Stats.MedianDBm,
		&tiersJSON)
	if err != nil {
		return RunSummary{}, err
	}
	s.Parameters.CombinationRule = model.CombinationRule(rule)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		s.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(tiersJSON), &s.Tiers); err != nil {
		return RunSummary{}, fmt.Errorf("store: decode tiers for run %s: %w", s.ID, err)
	}
	return s, nil
}
