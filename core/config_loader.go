package core

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// RunConfig is the single explicit configuration surface of the orchestrator.
// Every recognised option lives here; model code carries no hidden defaults.
type RunConfig struct {
	Model     PropagationModel
	Grid      model.GridSpec
	Transform CoordinateTransform
	Rule      model.CombinationRule
	Bands     []Band
	Defaults  TransmitterDefaults

	// Workers bounds parallel grid evaluation; 0 means one per CPU.
	Workers int
	// ChunkSize is the number of points dispatched per work unit; cancellation
	// is checked between chunks. 0 uses the built-in default.
	ChunkSize int
}

// DefaultRunConfig mirrors the conventional indoor WiFi survey setup:
// free-space at 2.4 GHz, 20 dBm APs, 0.5 m grid at 1.5 m receiver height,
// max-select association.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Model: PropagationModel{
			Kind:      ModelFreeSpace,
			FreeSpace: FreeSpaceParams{MinDistanceM: 0.1},
		},
		Grid: model.GridSpec{
			Region:      r2.Rect{X: r1.Interval{Lo: 0, Hi: 100}, Y: r1.Interval{Lo: 0, Hi: 100}},
			ResolutionM: 0.5,
			HeightM:     1.5,
		},
		Rule:     model.CombineMaxSelect,
		Bands:    DefaultBands(),
		Defaults: TransmitterDefaults{PowerDBm: 20, FrequencyHz: 2.4e9},
	}
}

// Validate checks every section of the configuration.
func (c RunConfig) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := ValidateGridSpec(c.Grid); err != nil {
		return err
	}
	if err := c.Transform.Validate(); err != nil {
		return err
	}
	switch c.Rule {
	case model.CombineMaxSelect, model.CombineLinearSum:
	default:
		return &ModelParameterError{Model: "run", Param: "combination_rule", Reason: "unknown combination rule"}
	}
	if err := ValidateBands(c.Bands); err != nil {
		return err
	}
	if c.Defaults.FrequencyHz <= 0 {
		return &ModelParameterError{Model: "run", Param: "frequency_hz", Reason: "must be > 0"}
	}
	return nil
}

// internal JSON shapes - kept unexported so the wire format can evolve
// independently of RunConfig.
type runConfigJSON struct {
	Model     *modelJSON     `json:"model"`
	Grid      *gridJSON      `json:"grid"`
	Transform *transformJSON `json:"transform"`
	Rule      string         `json:"combination_rule"`
	Bands     []bandJSON     `json:"bands"`
	PowerDBm  *float64       `json:"power_dbm"`
	FreqHz    *float64       `json:"frequency_hz"`
	Workers   int            `json:"workers"`
	ChunkSize int            `json:"chunk_size"`
}

type modelJSON struct {
	Kind        string             `json:"kind"`
	FreeSpace   *FreeSpaceParams   `json:"free_space"`
	LogDistance *LogDistanceParams `json:"log_distance"`
	Building    *buildingJSON      `json:"building"`
}

type buildingJSON struct {
	LogDistance LogDistanceParams `json:"log_distance"`
	Partitions  []Partition       `json:"partitions"`
}

type gridJSON struct {
	MinX        float64 `json:"min_x"`
	MaxX        float64 `json:"max_x"`
	MinY        float64 `json:"min_y"`
	MaxY        float64 `json:"max_y"`
	ResolutionM float64 `json:"resolution_m"`
	HeightM     float64 `json:"height_m"`
}

type transformJSON struct {
	RotXRad     float64   `json:"rot_x_rad"`
	RotYRad     float64   `json:"rot_y_rad"`
	RotZRad     float64   `json:"rot_z_rad"`
	Translation []float64 `json:"translation"`
}

type bandJSON struct {
	Tier string `json:"tier"`
	// MinDBm is the inclusive lower bound; omit it (null) on the bottom band
	// to mean an open-ended -Inf, which JSON cannot express directly.
	MinDBm *float64 `json:"min_dbm"`
}

// LoadRunConfig reads a JSON run configuration, applying the documented
// defaults for every omitted section and validating the result.
func LoadRunConfig(r io.Reader) (RunConfig, error) {
	cfg := DefaultRunConfig()

	var payload runConfigJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return RunConfig{}, fmt.Errorf("LoadRunConfig: decode failed: %w", err)
	}

	if payload.Model != nil {
		m, err := modelFromJSON(payload.Model)
		if err != nil {
			return RunConfig{}, err
		}
		cfg.Model = m
	}
	if payload.Grid != nil {
		cfg.Grid = model.GridSpec{
			Region: r2.Rect{
				X: r1.Interval{Lo: payload.Grid.MinX, Hi: payload.Grid.MaxX},
				Y: r1.Interval{Lo: payload.Grid.MinY, Hi: payload.Grid.MaxY},
			},
			ResolutionM: payload.Grid.ResolutionM,
			HeightM:     payload.Grid.HeightM,
		}
	}
	if payload.Transform != nil {
		t, err := transformFromJSON(payload.Transform)
		if err != nil {
			return RunConfig{}, err
		}
		cfg.Transform = t
	}
	if payload.Rule != "" {
		cfg.Rule = model.CombinationRule(payload.Rule)
	}
	if payload.Bands != nil {
		bands := make([]Band, 0, len(payload.Bands))
		for _, b := range payload.Bands {
			lower := math.Inf(-1)
			if b.MinDBm != nil {
				lower = *b.MinDBm
			}
			bands = append(bands, Band{Tier: b.Tier, MinDBm: lower})
		}
		cfg.Bands = bands
	}
	if payload.PowerDBm != nil {
		cfg.Defaults.PowerDBm = *payload.PowerDBm
	}
	if payload.FreqHz != nil {
		cfg.Defaults.FrequencyHz = *payload.FreqHz
	}
	cfg.Workers = payload.Workers
	cfg.ChunkSize = payload.ChunkSize

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func modelFromJSON(js *modelJSON) (PropagationModel, error) {
	m := PropagationModel{Kind: ModelKind(js.Kind)}
	switch m.Kind {
	case ModelFreeSpace:
		m.FreeSpace = FreeSpaceParams{MinDistanceM: 0.1}
		if js.FreeSpace != nil {
			m.FreeSpace = *js.FreeSpace
		}
	case ModelLogDistance:
		if js.LogDistance == nil {
			return m, &ModelParameterError{Model: js.Kind, Param: "log_distance", Reason: "parameters are required"}
		}
		m.LogDistance = *js.LogDistance
	case ModelBuildingAware:
		if js.Building == nil {
			return m, &ModelParameterError{Model: js.Kind, Param: "building", Reason: "parameters are required"}
		}
		m.Building = BuildingParams{
			LogDistance: js.Building.LogDistance,
			Layout:      &PartitionLayout{Partitions: js.Building.Partitions},
		}
	default:
		return m, &ModelParameterError{Model: js.Kind, Param: "kind", Reason: "unknown propagation model"}
	}
	return m, nil
}

func transformFromJSON(js *transformJSON) (CoordinateTransform, error) {
	t := CoordinateTransform{
		RotXRad: js.RotXRad,
		RotYRad: js.RotYRad,
		RotZRad: js.RotZRad,
	}
	if js.Translation != nil {
		if len(js.Translation) < 3 {
			return t, &InvalidTransformError{Reason: fmt.Sprintf("translation needs 3 components, got %d", len(js.Translation))}
		}
		t.Translation = r3.Vector{X: js.Translation[0], Y: js.Translation[1], Z: js.Translation[2]}
	}
	return t, nil
}
