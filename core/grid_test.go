package core

import (
	"errors"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/signalsfoundry/coverage-simulator/model"
)

func gridSpec(minX, maxX, minY, maxY, res, height float64) model.GridSpec {
	return model.GridSpec{
		Region: r2.Rect{
			X: r1.Interval{Lo: minX, Hi: maxX},
			Y: r1.Interval{Lo: minY, Hi: maxY},
		},
		ResolutionM: res,
		HeightM:     height,
	}
}

func TestGridAxisCounts(t *testing.T) {
	cases := []struct {
		name   string
		spec   model.GridSpec
		nx, ny int
	}{
		{"even division", gridSpec(0, 50, 0, 50, 10, 1.5), 6, 6},
		{"ragged edge rounds up", gridSpec(0, 10, 0, 10, 3, 1.5), 5, 5},
		{"zero-extent axis", gridSpec(0, 0, 0, 10, 2, 1.5), 1, 6},
		{"single point", gridSpec(5, 5, 7, 7, 1, 1.5), 1, 1},
		{"negative bounds", gridSpec(-10, 10, -5, 5, 5, 1.5), 5, 3},
	}
	for _, tc := range cases {
		nx, ny := tc.spec.AxisCounts()
		if nx != tc.nx || ny != tc.ny {
			t.Errorf("%s: AxisCounts = (%d, %d), want (%d, %d)", tc.name, nx, ny, tc.nx, tc.ny)
		}
		if got := tc.spec.PointCount(); got != tc.nx*tc.ny {
			t.Errorf("%s: PointCount = %d, want %d", tc.name, got, tc.nx*tc.ny)
		}
	}
}

func TestSampleGridRowMajorXFastest(t *testing.T) {
	spec := gridSpec(0, 2, 0, 1, 1, 1.5)
	points := CollectGrid(spec)

	if len(points) != 6 {
		t.Fatalf("got %d points, want 6", len(points))
	}
	wantX := []float64{0, 1, 2, 0, 1, 2}
	wantY := []float64{0, 0, 0, 1, 1, 1}
	for i, pt := range points {
		if pt.Index != i {
			t.Errorf("point %d carries index %d", i, pt.Index)
		}
		if pt.Position.X != wantX[i] || pt.Position.Y != wantY[i] {
			t.Errorf("point %d at (%g, %g), want (%g, %g)", i, pt.Position.X, pt.Position.Y, wantX[i], wantY[i])
		}
		if pt.Position.Z != 1.5 {
			t.Errorf("point %d at height %g, want 1.5", i, pt.Position.Z)
		}
	}
}

func TestSampleGridIsRestartable(t *testing.T) {
	spec := gridSpec(0, 5, 0, 5, 2.5, 1.5)
	seq := SampleGrid(spec)

	first := make([]model.GridPoint, 0, spec.PointCount())
	for pt := range seq {
		first = append(first, pt)
	}
	second := make([]model.GridPoint, 0, spec.PointCount())
	for pt := range seq {
		second = append(second, pt)
	}

	if len(first) != len(second) {
		t.Fatalf("first pass %d points, second pass %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Position != second[i].Position || first[i].Index != second[i].Index {
			t.Errorf("pass mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSampleGridEarlyStop(t *testing.T) {
	spec := gridSpec(0, 100, 0, 100, 0.5, 1.5)
	n := 0
	for range SampleGrid(spec) {
		n++
		if n == 10 {
			break
		}
	}
	if n != 10 {
		t.Errorf("consumed %d points, want 10", n)
	}
}

func TestValidateGridSpec(t *testing.T) {
	if err := ValidateGridSpec(gridSpec(0, 50, 0, 50, 0.5, 1.5)); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
	if err := ValidateGridSpec(gridSpec(0, 0, 0, 0, 1, 1.5)); err != nil {
		t.Errorf("degenerate single-point spec rejected: %v", err)
	}

	var param *ModelParameterError
	if err := ValidateGridSpec(gridSpec(0, 50, 0, 50, 0, 1.5)); !errors.As(err, &param) {
		t.Errorf("zero resolution: expected ModelParameterError, got %v", err)
	}
	if err := ValidateGridSpec(gridSpec(10, 0, 0, 50, 1, 1.5)); !errors.As(err, &param) {
		t.Errorf("inverted region: expected ModelParameterError, got %v", err)
	}
}
