package core

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// ModelKind tags the closed set of propagation models. Dispatch over the kind
// is exhaustive; there is no open plugin surface.
type ModelKind string

const (
	ModelFreeSpace     ModelKind = "free-space"
	ModelLogDistance   ModelKind = "log-distance"
	ModelBuildingAware ModelKind = "building-aware"
)

const speedOfLight = 299792458.0

// friisConstDB is 20*log10(4*pi/c), the free-space constant for distance in
// metres and frequency in hertz. Roughly -147.55 dB.
var friisConstDB = 20 * math.Log10(4*math.Pi/speedOfLight)

// FreeSpaceParams configures the Friis free-space model. MinDistanceM floors
// the transmitter-receiver distance to avoid the singularity at d -> 0; a
// zero floor makes coincident positions a DegenerateGeometryError.
type FreeSpaceParams struct {
	MinDistanceM float64 `json:"min_distance_m"`
}

// LogDistanceParams configures the log-distance path loss model:
// P_r = P_t - RefLossDB - 10*Exponent*log10(d/RefDistanceM). Distances below
// the reference distance are clamped to it so the model never yields a gain.
type LogDistanceParams struct {
	Exponent     float64 `json:"exponent"`
	RefDistanceM float64 `json:"ref_distance_m"`
	RefLossDB    float64 `json:"ref_loss_db"`
}

// BuildingParams configures the building-aware model: log-distance path loss
// plus per-partition attenuation counted along the straight segment between
// transmitter and receiver. A deliberately coarse stand-in for ray tracing.
type BuildingParams struct {
	LogDistance LogDistanceParams `json:"log_distance"`
	Layout      *PartitionLayout  `json:"layout"`
}

// PropagationModel is the tagged variant over the supported models. Exactly
// one parameter set is meaningful for a given Kind. Stateless: SignalAt is a
// pure function of its arguments.
type PropagationModel struct {
	Kind        ModelKind         `json:"kind"`
	FreeSpace   FreeSpaceParams   `json:"free_space,omitempty"`
	LogDistance LogDistanceParams `json:"log_distance,omitempty"`
	Building    BuildingParams    `json:"building,omitempty"`
}

// FreeSpaceRefLossDB returns the free-space path loss at distance d for
// frequency f, useful as a reference loss for the log-distance model.
func FreeSpaceRefLossDB(d, fHz float64) float64 {
	return 20*math.Log10(d) + 20*math.Log10(fHz) + friisConstDB
}

// Validate checks the parameter set selected by Kind.
func (m PropagationModel) Validate() error {
	switch m.Kind {
	case ModelFreeSpace:
		if m.FreeSpace.MinDistanceM < 0 {
			return &ModelParameterError{Model: string(m.Kind), Param: "min_distance_m", Reason: "must be >= 0"}
		}
	case ModelLogDistance:
		return validateLogDistance(string(m.Kind), m.LogDistance)
	case ModelBuildingAware:
		if err := validateLogDistance(string(m.Kind), m.Building.LogDistance); err != nil {
			return err
		}
		if m.Building.Layout == nil {
			return &ModelParameterError{Model: string(m.Kind), Param: "layout", Reason: "partition layout is required"}
		}
	default:
		return &ModelParameterError{Model: string(m.Kind), Param: "kind", Reason: "unknown propagation model"}
	}
	return nil
}

func validateLogDistance(kind string, p LogDistanceParams) error {
	if p.Exponent <= 0 {
		return &ModelParameterError{Model: kind, Param: "exponent", Reason: "path-loss exponent must be > 0"}
	}
	if p.RefDistanceM <= 0 {
		return &ModelParameterError{Model: kind, Param: "ref_distance_m", Reason: "reference distance must be > 0"}
	}
	if p.RefLossDB < 0 {
		return &ModelParameterError{Model: kind, Param: "ref_loss_db", Reason: "reference loss must be >= 0"}
	}
	return nil
}

// SignalAt evaluates the received signal strength in dBm at rx for the given
// transmitter. Attenuation is always additive in the log domain; nothing here
// multiplies linear power.
func (m PropagationModel) SignalAt(tx model.Transmitter, rx r3.Vector) (float64, error) {
	switch m.Kind {
	case ModelFreeSpace:
		return m.freeSpaceAt(tx, rx)
	case ModelLogDistance:
		return logDistanceAt(tx, rx, m.LogDistance), nil
	case ModelBuildingAware:
		base := logDistanceAt(tx, rx, m.Building.LogDistance)
		_, lossDB := m.Building.Layout.Crossings(tx.Position, rx)
		return base - lossDB, nil
	default:
		return 0, &ModelParameterError{Model: string(m.Kind), Param: "kind", Reason: "unknown propagation model"}
	}
}

func (m PropagationModel) freeSpaceAt(tx model.Transmitter, rx r3.Vector) (float64, error) {
	d := tx.Position.Sub(rx).Norm()
	if d < m.FreeSpace.MinDistanceM {
		d = m.FreeSpace.MinDistanceM
	}
	if d == 0 {
		return 0, &DegenerateGeometryError{TransmitterID: tx.ID, Position: rx}
	}
	return tx.PowerDBm - FreeSpaceRefLossDB(d, tx.FrequencyHz), nil
}

func logDistanceAt(tx model.Transmitter, rx r3.Vector, p LogDistanceParams) float64 {
	d := tx.Position.Sub(rx).Norm()
	// Below the reference distance the model would predict a gain; clamp.
	if d < p.RefDistanceM {
		d = p.RefDistanceM
	}
	return tx.PowerDBm - p.RefLossDB - 10*p.Exponent*math.Log10(d/p.RefDistanceM)
}
