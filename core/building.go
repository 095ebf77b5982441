package core

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Material names a partition construction with a default attenuation.
type Material string

const (
	MaterialConcrete Material = "concrete"
	MaterialMetal    Material = "metal"
	MaterialGeneric  Material = "generic"
)

// DefaultMaterialAttenuationDB maps materials to their one-crossing
// penetration loss in dB.
var DefaultMaterialAttenuationDB = map[Material]float64{
	MaterialConcrete: 15,
	MaterialMetal:    25,
	MaterialGeneric:  5,
}

// Partition is a wall or material boundary, modelled as a segment in the XY
// plane spanning the full height of the region. AttenuationDB overrides the
// material default when non-zero.
type Partition struct {
	ID            string   `json:"id"`
	A             r2.Point `json:"a"`
	B             r2.Point `json:"b"`
	Material      Material `json:"material"`
	AttenuationDB float64  `json:"attenuation_db,omitempty"`
}

// attenuation resolves the per-crossing loss for this partition.
func (p Partition) attenuation() float64 {
	if p.AttenuationDB != 0 {
		return p.AttenuationDB
	}
	if db, ok := DefaultMaterialAttenuationDB[p.Material]; ok {
		return db
	}
	return DefaultMaterialAttenuationDB[MaterialGeneric]
}

// ObstructionCounter answers the building-geometry collaborator query: does a
// straight segment between two points cross a partition, and with what
// attenuation. The engine does not parse scene or mesh formats itself.
type ObstructionCounter interface {
	// Crossings returns the number of partitions the segment a-b crosses and
	// the total attenuation in dB. Each partition is counted at most once.
	Crossings(a, b r3.Vector) (count int, totalDB float64)
}

// PartitionLayout is the in-process ObstructionCounter: a flat list of
// partition segments supplied by an external geometry parser.
type PartitionLayout struct {
	Partitions []Partition `json:"partitions"`
}

// Crossings counts intersected partitions along the XY projection of the
// segment a-b. A ray that only touches a partition endpoint, or lies exactly
// along the boundary, counts as crossed; the attenuation applies once.
func (l *PartitionLayout) Crossings(a, b r3.Vector) (count int, totalDB float64) {
	if l == nil {
		return 0, 0
	}
	pa := r2.Point{X: a.X, Y: a.Y}
	pb := r2.Point{X: b.X, Y: b.Y}
	for _, part := range l.Partitions {
		if segmentsIntersect(pa, pb, part.A, part.B) {
			count++
			totalDB += part.attenuation()
		}
	}
	return count, totalDB
}

// segmentsIntersect reports whether segments p1-p2 and q1-q2 share at least
// one point. Collinear overlap and endpoint touches count as intersecting.
func segmentsIntersect(p1, p2, q1, q2 r2.Point) bool {
	d1 := cross2(q1, q2, p1)
	d2 := cross2(q1, q2, p2)
	d3 := cross2(p1, p2, q1)
	d4 := cross2(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear or touching cases.
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// cross2 returns the z-component of (b-a) x (c-a).
func cross2(a, b, c r2.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment assumes c is collinear with a-b and checks whether it lies within
// the segment's bounding box.
func onSegment(a, b, c r2.Point) bool {
	return minf(a.X, b.X) <= c.X && c.X <= maxf(a.X, b.X) &&
		minf(a.Y, b.Y) <= c.Y && c.Y <= maxf(a.Y, b.Y)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
