package core

import (
	"math"
	"sort"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// Band is one quality tier with an inclusive lower bound in dBm. Bands are
// supplied ordered from strongest to weakest; the bottom band must carry an
// open lower bound (-Inf) so every real value classifies somewhere.
type Band struct {
	Tier   string  `json:"tier"`
	MinDBm float64 `json:"min_dbm"`
}

// DefaultBands mirrors the conventional WiFi survey tiers.
func DefaultBands() []Band {
	return []Band{
		{Tier: "excellent", MinDBm: -50},
		{Tier: "good", MinDBm: -70},
		{Tier: "fair", MinDBm: -85},
		{Tier: "poor", MinDBm: math.Inf(-1)},
	}
}

// ValidateBands checks that the tiers are non-empty, strictly ordered by
// descending lower bound, named, and exhaustive over the real line.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return &InvalidBandConfigurationError{Reason: "no bands configured"}
	}
	for i, b := range bands {
		if b.Tier == "" {
			return &InvalidBandConfigurationError{Reason: "band with empty tier name"}
		}
		if math.IsNaN(b.MinDBm) {
			return &InvalidBandConfigurationError{Reason: "band lower bound is NaN"}
		}
		if i > 0 && b.MinDBm >= bands[i-1].MinDBm {
			return &InvalidBandConfigurationError{Reason: "band lower bounds must strictly decrease"}
		}
	}
	if !math.IsInf(bands[len(bands)-1].MinDBm, -1) {
		return &InvalidBandConfigurationError{Reason: "bottom band must be open-ended (lower bound -Inf)"}
	}
	return nil
}

// ClassifyValue assigns a value to the first band whose lower bound it meets
// or exceeds. With validated bands this always matches exactly one tier.
func ClassifyValue(dbm float64, bands []Band) string {
	for _, b := range bands {
		if dbm >= b.MinDBm {
			return b.Tier
		}
	}
	// Unreachable with validated bands; fall through to the bottom tier.
	return bands[len(bands)-1].Tier
}

// ClassifyAndSummarize assigns every point a tier, computes the per-tier
// percentage breakdown and the min/max/mean/median over the aggregated
// values. An empty grid is an error, never a zeroed summary.
func ClassifyAndSummarize(points []model.GridPoint, bands []Band) ([]model.TierShare, model.SignalStats, error) {
	if err := ValidateBands(bands); err != nil {
		return nil, model.SignalStats{}, err
	}
	if len(points) == 0 {
		return nil, model.SignalStats{}, ErrEmptyGrid
	}

	counts := make(map[string]int, len(bands))
	values := make([]float64, len(points))
	sum := 0.0
	minV, maxV := math.Inf(1), math.Inf(-1)

	for i := range points {
		v := points[i].AggregatedDBm
		points[i].Tier = ClassifyValue(v, bands)
		counts[points[i].Tier]++
		values[i] = v
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	tiers := make([]model.TierShare, 0, len(bands))
	for _, b := range bands {
		tiers = append(tiers, model.TierShare{
			Tier:    b.Tier,
			Percent: float64(counts[b.Tier]) / float64(len(points)) * 100,
		})
	}

	sort.Float64s(values)
	stats := model.SignalStats{
		MinDBm:    minV,
		MaxDBm:    maxV,
		MeanDBm:   sum / float64(len(points)),
		MedianDBm: median(values),
	}
	return tiers, stats, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
