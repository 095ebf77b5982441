package core

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

func TestCrossingsCountsEachPartitionOnce(t *testing.T) {
	layout := &PartitionLayout{Partitions: []Partition{
		{ID: "wall-1", A: r2.Point{X: 2, Y: -5}, B: r2.Point{X: 2, Y: 5}, Material: MaterialConcrete},
		{ID: "wall-2", A: r2.Point{X: 6, Y: -5}, B: r2.Point{X: 6, Y: 5}, Material: MaterialMetal},
		{ID: "far", A: r2.Point{X: 2, Y: 50}, B: r2.Point{X: 6, Y: 50}, Material: MaterialConcrete},
	}}

	count, db := layout.Crossings(r3.Vector{X: 0}, r3.Vector{X: 10})
	if count != 2 {
		t.Errorf("crossings = %d, want 2", count)
	}
	if db != 15+25 {
		t.Errorf("total attenuation = %g dB, want 40 dB", db)
	}
}

func TestCrossingsProjectsToFloorPlan(t *testing.T) {
	// The partition spans the full height, so a path passing "over" it in Z
	// still crosses its XY footprint.
	layout := &PartitionLayout{Partitions: []Partition{
		{ID: "wall-1", A: r2.Point{X: 5, Y: -5}, B: r2.Point{X: 5, Y: 5}, Material: MaterialGeneric},
	}}

	count, db := layout.Crossings(r3.Vector{X: 0, Z: 6}, r3.Vector{X: 10, Z: 1.5})
	if count != 1 || db != 5 {
		t.Errorf("crossings = %d (%g dB), want 1 (5 dB)", count, db)
	}
}

func TestCrossingsEndpointTouchCounts(t *testing.T) {
	layout := &PartitionLayout{Partitions: []Partition{
		{ID: "wall-1", A: r2.Point{X: 5, Y: 0}, B: r2.Point{X: 5, Y: 10}, Material: MaterialGeneric},
	}}

	// The ray grazes the wall's lower endpoint exactly.
	count, _ := layout.Crossings(r3.Vector{X: 0, Y: 0}, r3.Vector{X: 10, Y: 0})
	if count != 1 {
		t.Errorf("endpoint touch: crossings = %d, want 1", count)
	}

	// Collinear overlap counts once as well.
	count, _ = layout.Crossings(r3.Vector{X: 5, Y: -2}, r3.Vector{X: 5, Y: 12})
	if count != 1 {
		t.Errorf("collinear overlap: crossings = %d, want 1", count)
	}
}

func TestCrossingsMissesDisjointSegments(t *testing.T) {
	layout := &PartitionLayout{Partitions: []Partition{
		{ID: "wall-1", A: r2.Point{X: 5, Y: 1}, B: r2.Point{X: 5, Y: 10}, Material: MaterialConcrete},
	}}

	count, db := layout.Crossings(r3.Vector{X: 0, Y: 0}, r3.Vector{X: 10, Y: 0})
	if count != 0 || db != 0 {
		t.Errorf("crossings = %d (%g dB), want 0", count, db)
	}
}

func TestPartitionAttenuationOverride(t *testing.T) {
	explicit := Partition{Material: MaterialConcrete, AttenuationDB: 7.5}
	if got := explicit.attenuation(); got != 7.5 {
		t.Errorf("explicit attenuation = %g, want 7.5", got)
	}

	unknown := Partition{Material: "drywall"}
	if got := unknown.attenuation(); got != DefaultMaterialAttenuationDB[MaterialGeneric] {
		t.Errorf("unknown material attenuation = %g, want generic default", got)
	}
}

func TestNilLayoutHasNoCrossings(t *testing.T) {
	var layout *PartitionLayout
	count, db := layout.Crossings(r3.Vector{}, r3.Vector{X: 100})
	if count != 0 || db != 0 {
		t.Errorf("nil layout crossings = %d (%g dB), want 0", count, db)
	}
}
