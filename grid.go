/*
Copyright © 2026 the raster authors.
This file is part of raster.

raster is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raster is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raster.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package raster implements spatial analysis on regularly gridded
// surfaces: coordinate snapping, viewshed computation, A* pathfinding,
// zonal statistics, classification, and connected-region labeling.
// All kernels treat their input grids as read-only and allocate new
// output grids, so concurrent invocations over shared inputs are safe.
package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Grid is an immutable view of a two-dimensional array of sampled values
// georeferenced by a rectangular extent. Row 0 is the southern edge of
// the grid: the world y coordinate increases with the row index, and the
// world x coordinate increases with the column index. Cell sizes are
// uniform within each axis but the two axes may differ.
type Grid struct {
	data      *sparse.DenseArray
	bounds    geom.Bounds
	nodata    float64
	hasNodata bool
}

// NewGrid creates a Grid from a two-dimensional dense array and the world
// extent it covers. The array is borrowed, not copied; callers must not
// modify it afterwards.
func NewGrid(data *sparse.DenseArray, bounds geom.Bounds) (*Grid, error) {
	if data == nil || len(data.Shape) != 2 {
		return nil, &ParameterError{Name: "data", Reason: "a two-dimensional array is required"}
	}
	if data.Shape[0] <= 0 || data.Shape[1] <= 0 {
		return nil, &ParameterError{Name: "data", Reason: "both dimensions must be positive"}
	}
	if !(bounds.Max.X > bounds.Min.X) || !(bounds.Max.Y > bounds.Min.Y) {
		return nil, &ParameterError{Name: "bounds",
			Reason: fmt.Sprintf("extent must have positive width and height, got %+v", bounds)}
	}
	return &Grid{data: data, bounds: bounds, nodata: math.NaN()}, nil
}

// WithNodata returns a view of g in which cells equal to v are treated as
// having no value. NaN cells are always treated as having no value,
// whether or not a nodata sentinel is set.
func (g *Grid) WithNodata(v float64) *Grid {
	g2 := *g
	g2.nodata = v
	g2.hasNodata = true
	return &g2
}

// Nx returns the number of columns.
func (g *Grid) Nx() int { return g.data.Shape[1] }

// Ny returns the number of rows.
func (g *Grid) Ny() int { return g.data.Shape[0] }

// Dx returns the cell width in world units.
func (g *Grid) Dx() float64 {
	return (g.bounds.Max.X - g.bounds.Min.X) / float64(g.Nx())
}

// Dy returns the cell height in world units.
func (g *Grid) Dy() float64 {
	return (g.bounds.Max.Y - g.bounds.Min.Y) / float64(g.Ny())
}

// Bounds returns the world extent covered by the grid.
func (g *Grid) Bounds() geom.Bounds { return g.bounds }

// Nodata returns the nodata sentinel and whether one is set.
func (g *Grid) Nodata() (float64, bool) { return g.nodata, g.hasNodata }

// Data returns the underlying cell array. It must be treated as
// read-only.
func (g *Grid) Data() *sparse.DenseArray { return g.data }

// Value returns the cell value at the given row and column, which must
// be within the grid.
func (g *Grid) Value(r, c int) float64 { return g.data.Get(r, c) }

// InGrid reports whether the given row and column address a cell.
func (g *Grid) InGrid(r, c int) bool {
	return r >= 0 && r < g.Ny() && c >= 0 && c < g.Nx()
}

// IsNodata reports whether the cell at the given row and column has no
// value.
func (g *Grid) IsNodata(r, c int) bool {
	v := g.data.Get(r, c)
	if math.IsNaN(v) {
		return true
	}
	return g.hasNodata && v == g.nodata
}

// CellCenter returns the world coordinate of the center of the cell at
// the given row and column.
func (g *Grid) CellCenter(r, c int) geom.Point {
	return geom.Point{
		X: g.bounds.Min.X + (float64(c)+0.5)*g.Dx(),
		Y: g.bounds.Min.Y + (float64(r)+0.5)*g.Dy(),
	}
}

// ToPixel maps a world coordinate to the row and column of the cell
// containing it, using the floor of the affine-inverse transform. Points
// lying exactly on the northern or eastern edge of the extent are
// assigned to the last row or column. Points outside the extent return
// ErrOutOfBounds.
func (g *Grid) ToPixel(p geom.Point) (r, c int, err error) {
	c = int(math.Floor((p.X - g.bounds.Min.X) / g.Dx()))
	r = int(math.Floor((p.Y - g.bounds.Min.Y) / g.Dy()))
	if c == g.Nx() && p.X == g.bounds.Max.X {
		c = g.Nx() - 1
	}
	if r == g.Ny() && p.Y == g.bounds.Max.Y {
		r = g.Ny() - 1
	}
	if !g.InGrid(r, c) {
		return 0, 0, fmt.Errorf("raster: point (%g, %g) maps to cell (%d, %d): %w",
			p.X, p.Y, r, c, ErrOutOfBounds)
	}
	return r, c, nil
}

// ValueAt returns the value of the cell containing the given world
// coordinate.
func (g *Grid) ValueAt(p geom.Point) (float64, error) {
	r, c, err := g.ToPixel(p)
	if err != nil {
		return math.NaN(), err
	}
	return g.Value(r, c), nil
}

// newOutput allocates a same-shaped array with every element set to
// fill. Kernels use it for their result grids.
func (g *Grid) newOutput(fill float64) *sparse.DenseArray {
	out := sparse.ZerosDense(g.Ny(), g.Nx())
	if fill != 0 {
		for i := range out.Elements {
			out.Elements[i] = fill
		}
	}
	return out
}

// newLike wraps a freshly allocated array in a Grid sharing g's
// georeferencing.
func (g *Grid) newLike(data *sparse.DenseArray) *Grid {
	return &Grid{data: data, bounds: g.bounds, nodata: math.NaN()}
}

// sameShape reports whether g and o have identical dimensions.
func (g *Grid) sameShape(o *Grid) bool {
	return g.Ny() == o.Ny() && g.Nx() == o.Nx()
}

// valueSet is a membership set over float64 cell values. NaN membership
// is tracked separately because NaN does not compare equal to itself.
type valueSet struct {
	m      map[float64]struct{}
	hasNaN bool
}

func newValueSet(values []float64) *valueSet {
	s := &valueSet{m: make(map[float64]struct{}, len(values))}
	for _, v := range values {
		if math.IsNaN(v) {
			s.hasNaN = true
			continue
		}
		s.m[v] = struct{}{}
	}
	return s
}

func (s *valueSet) contains(v float64) bool {
	if math.IsNaN(v) {
		return s.hasNaN
	}
	_, ok := s.m[v]
	return ok
}

func (s *valueSet) empty() bool { return len(s.m) == 0 && !s.hasNaN }
