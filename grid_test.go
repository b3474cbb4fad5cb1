package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// newTestGrid builds a grid from row-major cell values. Remember that
// row 0 is the southern edge, so the first slice is the bottom of the
// map.
func newTestGrid(t *testing.T, rows [][]float64, bounds geom.Bounds) *Grid {
	t.Helper()
	data := sparse.ZerosDense(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, v := range row {
			data.Set(v, r, c)
		}
	}
	g, err := NewGrid(data, bounds)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// unitBounds gives an extent with cell size 1 in both directions for an
// nx-by-ny grid anchored at the origin.
func unitBounds(nx, ny int) geom.Bounds {
	return geom.Bounds{
		Min: geom.Point{X: 0, Y: 0},
		Max: geom.Point{X: float64(nx), Y: float64(ny)},
	}
}

// zeros builds an all-zero value table with ny rows and nx columns.
func zeros(ny, nx int) [][]float64 {
	rows := make([][]float64, ny)
	for i := range rows {
		rows[i] = make([]float64, nx)
	}
	return rows
}

func TestNewGridValidation(t *testing.T) {
	var pe *ParameterError

	_, err := NewGrid(nil, unitBounds(2, 2))
	if !errors.As(err, &pe) {
		t.Errorf("nil data: want ParameterError, got %v", err)
	}
	_, err = NewGrid(sparse.ZerosDense(2, 2, 2), unitBounds(2, 2))
	if !errors.As(err, &pe) {
		t.Errorf("3-d data: want ParameterError, got %v", err)
	}
	_, err = NewGrid(sparse.ZerosDense(2, 2), geom.Bounds{
		Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 0, Y: 1}})
	if !errors.As(err, &pe) {
		t.Errorf("zero-width bounds: want ParameterError, got %v", err)
	}
}

func TestToPixel(t *testing.T) {
	g := newTestGrid(t, zeros(4, 4), unitBounds(4, 4))

	tests := []struct {
		p    geom.Point
		r, c int
	}{
		{geom.Point{X: 0.5, Y: 0.5}, 0, 0},
		{geom.Point{X: 0, Y: 0}, 0, 0},
		{geom.Point{X: 3.9, Y: 3.9}, 3, 3},
		{geom.Point{X: 4, Y: 4}, 3, 3}, // exact max edge clamps inward
		{geom.Point{X: 2, Y: 1}, 1, 2},
	}
	for _, test := range tests {
		r, c, err := g.ToPixel(test.p)
		if err != nil {
			t.Errorf("ToPixel(%v): %v", test.p, err)
			continue
		}
		if r != test.r || c != test.c {
			t.Errorf("ToPixel(%v) = (%d, %d), want (%d, %d)", test.p, r, c, test.r, test.c)
		}
	}

	for _, p := range []geom.Point{
		{X: -0.1, Y: 1},
		{X: 1, Y: -0.1},
		{X: 4.1, Y: 1},
		{X: 1, Y: 4.1},
	} {
		if _, _, err := g.ToPixel(p); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ToPixel(%v): want ErrOutOfBounds, got %v", p, err)
		}
	}
}

func TestNonSquareCells(t *testing.T) {
	// 4 columns over 8 world units, 2 rows over 2 world units.
	b := geom.Bounds{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 8, Y: 2}}
	g := newTestGrid(t, zeros(2, 4), b)

	if g.Dx() != 2 || g.Dy() != 1 {
		t.Fatalf("Dx, Dy = %g, %g, want 2, 1", g.Dx(), g.Dy())
	}
	r, c, err := g.ToPixel(geom.Point{X: 5, Y: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if r != 1 || c != 2 {
		t.Errorf("ToPixel = (%d, %d), want (1, 2)", r, c)
	}
	center := g.CellCenter(1, 2)
	if center.X != 5 || center.Y != 1.5 {
		t.Errorf("CellCenter(1, 2) = %v, want (5, 1.5)", center)
	}
}

func TestCellCenterRoundTrip(t *testing.T) {
	g := newTestGrid(t, zeros(3, 5), geom.Bounds{
		Min: geom.Point{X: -10, Y: 20}, Max: geom.Point{X: 0, Y: 26}})
	for r := 0; r < g.Ny(); r++ {
		for c := 0; c < g.Nx(); c++ {
			rr, cc, err := g.ToPixel(g.CellCenter(r, c))
			if err != nil {
				t.Fatalf("cell (%d, %d): %v", r, c, err)
			}
			if rr != r || cc != c {
				t.Errorf("cell (%d, %d) round-tripped to (%d, %d)", r, c, rr, cc)
			}
		}
	}
}

func TestValueAt(t *testing.T) {
	g := newTestGrid(t, [][]float64{{1, 2}, {3, 4}}, unitBounds(2, 2))
	v, err := g.ValueAt(geom.Point{X: 1.5, Y: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Errorf("ValueAt = %g, want 2", v)
	}
	if _, err := g.ValueAt(geom.Point{X: 3, Y: 3}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("want ErrOutOfBounds, got %v", err)
	}
}

func TestNodata(t *testing.T) {
	g := newTestGrid(t, [][]float64{{1, -9999}, {math.NaN(), 4}}, unitBounds(2, 2))

	// NaN always counts as no value.
	if !g.IsNodata(1, 0) {
		t.Error("NaN cell should be nodata")
	}
	if g.IsNodata(0, 1) {
		t.Error("-9999 should not be nodata before WithNodata")
	}

	g2 := g.WithNodata(-9999)
	if !g2.IsNodata(0, 1) {
		t.Error("-9999 should be nodata after WithNodata")
	}
	if g2.IsNodata(0, 0) || g2.IsNodata(1, 1) {
		t.Error("valued cells marked nodata")
	}
	// The original view is unchanged.
	if g.IsNodata(0, 1) {
		t.Error("WithNodata mutated the receiver")
	}
}
