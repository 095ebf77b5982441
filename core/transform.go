package core

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// CoordinateTransform is a rigid transform aligning an external reference
// frame with the building frame: three rotation angles applied in fixed
// X -> Y -> Z order, followed by a translation. It is a pure value object;
// Apply never mutates its input.
type CoordinateTransform struct {
	RotXRad     float64   `json:"rot_x_rad"`
	RotYRad     float64   `json:"rot_y_rad"`
	RotZRad     float64   `json:"rot_z_rad"`
	Translation r3.Vector `json:"translation"`
}

// IdentityTransform is a true no-op up to floating-point precision.
var IdentityTransform = CoordinateTransform{}

// Validate rejects non-finite angles or translation components.
func (t CoordinateTransform) Validate() error {
	for _, v := range []float64{t.RotXRad, t.RotYRad, t.RotZRad} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidTransformError{Reason: "rotation angle is not finite"}
		}
	}
	for _, v := range []float64{t.Translation.X, t.Translation.Y, t.Translation.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidTransformError{Reason: "translation component is not finite"}
		}
	}
	return nil
}

// IsIdentity reports whether the transform is exactly the identity.
func (t CoordinateTransform) IsIdentity() bool {
	return t == IdentityTransform
}

// Matrix returns the combined rotation matrix Rz * Ry * Rx.
func (t CoordinateTransform) Matrix() [3][3]float64 {
	cx, sx := math.Cos(t.RotXRad), math.Sin(t.RotXRad)
	cy, sy := math.Cos(t.RotYRad), math.Sin(t.RotYRad)
	cz, sz := math.Cos(t.RotZRad), math.Sin(t.RotZRad)

	rx := [3][3]float64{
		{1, 0, 0},
		{0, cx, -sx},
		{0, sx, cx},
	}
	ry := [3][3]float64{
		{cy, 0, sy},
		{0, 1, 0},
		{-sy, 0, cy},
	}
	rz := [3][3]float64{
		{cz, -sz, 0},
		{sz, cz, 0},
		{0, 0, 1},
	}

	return matMul(rz, matMul(ry, rx))
}

// Apply maps a single position: R*p + t.
func (t CoordinateTransform) Apply(p r3.Vector) r3.Vector {
	if t.IsIdentity() {
		return p
	}
	m := t.Matrix()
	return r3.Vector{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + t.Translation.X,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + t.Translation.Y,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + t.Translation.Z,
	}
}

// TransformTransmitters returns a new transmitter set with every position
// mapped through t. The input slice is left untouched so the original frame
// remains available for diagnostic comparison.
func TransformTransmitters(txs []model.Transmitter, t CoordinateTransform) ([]model.Transmitter, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := make([]model.Transmitter, len(txs))
	for i, tx := range txs {
		out[i] = tx
		out[i].Position = t.Apply(tx.Position)
	}
	return out, nil
}

func matMul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return out
}
