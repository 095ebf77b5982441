package model

// CombinationRule selects how per-transmitter signal estimates are combined
// at each grid point.
type CombinationRule string

const (
	// CombineMaxSelect keeps the strongest transmitter per point. This models
	// real client association behaviour and is the default.
	CombineMaxSelect CombinationRule = "max-select"
	// CombineLinearSum converts every contribution to linear milliwatts,
	// sums, and converts back to dBm. Used for interference-style analysis.
	CombineLinearSum CombinationRule = "linear-sum"
)

// TierShare is the fraction of grid points that fell into one quality tier.
type TierShare struct {
	Tier    string  `json:"tier"`
	Percent float64 `json:"percent"`
}

// SignalStats summarises aggregated signal strength over the whole grid.
type SignalStats struct {
	MinDBm    float64 `json:"min_dbm"`
	MaxDBm    float64 `json:"max_dbm"`
	MeanDBm   float64 `json:"mean_dbm"`
	MedianDBm float64 `json:"median_dbm"`
}

// RunParameters records the configuration a result was produced with, so a
// stored report is self-describing.
type RunParameters struct {
	ModelKind        string          `json:"model_kind"`
	CombinationRule  CombinationRule `json:"combination_rule"`
	ResolutionM      float64         `json:"resolution_m"`
	HeightM          float64         `json:"height_m"`
	TransmitterCount int             `json:"transmitter_count"`
}

// CoverageResult is the sole artifact a simulation run hands to reporting and
// visualisation collaborators. It is immutable after construction: a failed
// run produces no CoverageResult at all.
type CoverageResult struct {
	RunID       string        `json:"run_id"`
	Points      []GridPoint   `json:"points"`
	Tiers       []TierShare   `json:"tiers"`
	Stats       SignalStats   `json:"stats"`
	TotalPoints int           `json:"total_points"`
	Parameters  RunParameters `json:"parameters"`
}
