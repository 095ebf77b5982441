package core

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/signalsfoundry/coverage-simulator/model"
)

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := LoadRunConfig(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	if cfg.Model.Kind != ModelFreeSpace {
		t.Errorf("default model = %q, want %q", cfg.Model.Kind, ModelFreeSpace)
	}
	if cfg.Grid.ResolutionM != 0.5 || cfg.Grid.HeightM != 1.5 {
		t.Errorf("default grid = %g m resolution at %g m, want 0.5 at 1.5", cfg.Grid.ResolutionM, cfg.Grid.HeightM)
	}
	if cfg.Rule != model.CombineMaxSelect {
		t.Errorf("default rule = %q, want max-select", cfg.Rule)
	}
	if cfg.Defaults.PowerDBm != 20 || cfg.Defaults.FrequencyHz != 2.4e9 {
		t.Errorf("default transmitter settings = %g dBm at %g Hz", cfg.Defaults.PowerDBm, cfg.Defaults.FrequencyHz)
	}
	if len(cfg.Bands) != 4 {
		t.Errorf("default bands = %d, want 4", len(cfg.Bands))
	}
}

func TestLoadRunConfigFullDocument(t *testing.T) {
	doc := `{
		"model": {
			"kind": "building-aware",
			"building": {
				"log_distance": {"exponent": 3.2, "ref_distance_m": 1, "ref_loss_db": 40.05},
				"partitions": [
					{"id": "wall-1", "a": {"X": 5, "Y": 0}, "b": {"X": 5, "Y": 30}, "material": "concrete"}
				]
			}
		},
		"grid": {"min_x": 0, "max_x": 50, "min_y": 0, "max_y": 30, "resolution_m": 1, "height_m": 1.5},
		"transform": {"rot_z_rad": 1.5707963267948966, "translation": [-175, 315, 0]},
		"combination_rule": "linear-sum",
		"bands": [
			{"tier": "usable", "min_dbm": -75},
			{"tier": "dead", "min_dbm": null}
		],
		"power_dbm": 17,
		"frequency_hz": 5.0e9,
		"workers": 4,
		"chunk_size": 64
	}`

	cfg, err := LoadRunConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	if cfg.Model.Kind != ModelBuildingAware {
		t.Fatalf("model = %q, want building-aware", cfg.Model.Kind)
	}
	if cfg.Model.Building.LogDistance.Exponent != 3.2 {
		t.Errorf("exponent = %g, want 3.2", cfg.Model.Building.LogDistance.Exponent)
	}
	if cfg.Model.Building.Layout == nil || len(cfg.Model.Building.Layout.Partitions) != 1 {
		t.Fatalf("partition layout not loaded: %+v", cfg.Model.Building)
	}
	if cfg.Grid.Region.X.Hi != 50 || cfg.Grid.Region.Y.Hi != 30 {
		t.Errorf("grid region = %+v", cfg.Grid.Region)
	}
	if cfg.Transform.Translation.X != -175 || cfg.Transform.Translation.Y != 315 {
		t.Errorf("translation = %v", cfg.Transform.Translation)
	}
	if cfg.Rule != model.CombineLinearSum {
		t.Errorf("rule = %q, want linear-sum", cfg.Rule)
	}
	if !math.IsInf(cfg.Bands[1].MinDBm, -1) {
		t.Errorf("null lower bound parsed as %g, want -Inf", cfg.Bands[1].MinDBm)
	}
	if cfg.Defaults.PowerDBm != 17 || cfg.Defaults.FrequencyHz != 5e9 {
		t.Errorf("transmitter defaults = %g dBm at %g Hz", cfg.Defaults.PowerDBm, cfg.Defaults.FrequencyHz)
	}
	if cfg.Workers != 4 || cfg.ChunkSize != 64 {
		t.Errorf("workers/chunk = %d/%d, want 4/64", cfg.Workers, cfg.ChunkSize)
	}
}

func TestLoadRunConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadRunConfig(strings.NewReader(`{"grdi": {}}`))
	if err == nil {
		t.Fatal("expected error for misspelled section")
	}
}

func TestLoadRunConfigShortTranslation(t *testing.T) {
	doc := `{"transform": {"translation": [1, 2]}}`
	_, err := LoadRunConfig(strings.NewReader(doc))
	var invalid *InvalidTransformError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransformError, got %v", err)
	}
}

func TestLoadRunConfigValidatesResult(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad resolution", `{"grid": {"min_x": 0, "max_x": 10, "min_y": 0, "max_y": 10, "resolution_m": 0, "height_m": 1.5}}`},
		{"unknown model kind", `{"model": {"kind": "two-ray"}}`},
		{"missing log-distance params", `{"model": {"kind": "log-distance"}}`},
		{"unknown rule", `{"combination_rule": "median"}`},
		{"closed bottom band", `{"bands": [{"tier": "only", "min_dbm": -70}]}`},
	}
	for _, tc := range cases {
		if _, err := LoadRunConfig(strings.NewReader(tc.doc)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
