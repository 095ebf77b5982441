package model

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// GridSpec describes the evaluation lattice: a bounding region in the XY
// plane, a cell resolution and a fixed receiver height. The number of sample
// points per axis is ceil((max-min)/resolution)+1, so a degenerate region
// (min == max on an axis) still yields one row or column.
type GridSpec struct {
	Region      r2.Rect `json:"region"`
	ResolutionM float64 `json:"resolution_m"`
	HeightM     float64 `json:"height_m"`
}

// AxisCounts returns the number of sample points along X and Y.
func (s GridSpec) AxisCounts() (nx, ny int) {
	nx = axisCount(s.Region.X.Lo, s.Region.X.Hi, s.ResolutionM)
	ny = axisCount(s.Region.Y.Lo, s.Region.Y.Hi, s.ResolutionM)
	return nx, ny
}

// PointCount returns the total number of grid points the sampler will emit.
func (s GridSpec) PointCount() int {
	nx, ny := s.AxisCounts()
	return nx * ny
}

func axisCount(lo, hi, res float64) int {
	return int(math.Ceil((hi-lo)/res)) + 1
}

// GridPoint is one evaluation sample. The sampler fills Index and Position;
// the aggregator fills Signals, BestID and AggregatedDBm; the classifier
// fills Tier.
type GridPoint struct {
	Index    int       `json:"index"`
	Position r3.Vector `json:"position"`

	// Signals maps transmitter ID to the per-transmitter signal estimate in
	// dBm at this point.
	Signals map[string]float64 `json:"signals,omitempty"`

	// BestID is the transmitter providing the strongest signal here.
	BestID string `json:"best_id,omitempty"`

	AggregatedDBm float64 `json:"aggregated_dbm"`
	Tier          string  `json:"tier,omitempty"`
}
