package core

import (
	"iter"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// ValidateGridSpec checks the lattice invariants: resolution strictly
// positive and a non-inverted bounding region. A region with zero extent on
// an axis is valid and yields a single row or column.
func ValidateGridSpec(spec model.GridSpec) error {
	if spec.ResolutionM <= 0 {
		return &ModelParameterError{Model: "grid", Param: "resolution_m", Reason: "must be > 0"}
	}
	if spec.Region.X.Hi < spec.Region.X.Lo || spec.Region.Y.Hi < spec.Region.Y.Lo {
		return &ModelParameterError{Model: "grid", Param: "region", Reason: "max must be >= min on every axis"}
	}
	return nil
}

// SampleGrid returns a lazy, restartable sequence of grid points covering the
// region in row-major order (x varies fastest). Positions are derived from
// integer indices, never accumulated, so identical specs always yield
// identical ordered output.
func SampleGrid(spec model.GridSpec) iter.Seq[model.GridPoint] {
	nx, ny := spec.AxisCounts()
	return func(yield func(model.GridPoint) bool) {
		idx := 0
		for iy := 0; iy < ny; iy++ {
			y := spec.Region.Y.Lo + float64(iy)*spec.ResolutionM
			for ix := 0; ix < nx; ix++ {
				x := spec.Region.X.Lo + float64(ix)*spec.ResolutionM
				pt := model.GridPoint{
					Index:    idx,
					Position: r3.Vector{X: x, Y: y, Z: spec.HeightM},
				}
				if !yield(pt) {
					return
				}
				idx++
			}
		}
	}
}

// CollectGrid materialises the full lattice into a slice.
func CollectGrid(spec model.GridSpec) []model.GridPoint {
	points := make([]model.GridPoint, 0, spec.PointCount())
	for pt := range SampleGrid(spec) {
		points = append(points, pt)
	}
	return points
}
