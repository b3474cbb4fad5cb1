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

package raster

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Snap returns the cell at (r, c) if invalid reports it acceptable, and
// otherwise searches outward for the nearest acceptable cell in square
// rings of Chebyshev radius 1, 2, ... maxRadius around it. Cells within
// each ring are visited in row-major order (ascending row, then
// ascending column), and the first acceptable cell wins, so results are
// reproducible. Cells outside the grid are skipped. If no ring contains
// an acceptable cell, Snap returns ErrNoValidCell.
func Snap(g *Grid, r, c int, invalid func(r, c int) bool, maxRadius int) (int, int, error) {
	if !g.InGrid(r, c) {
		return 0, 0, fmt.Errorf("raster: snap from cell (%d, %d): %w", r, c, ErrOutOfBounds)
	}
	if maxRadius < 0 {
		return 0, 0, &ParameterError{Name: "maxRadius", Reason: "must not be negative"}
	}
	if !invalid(r, c) {
		return r, c, nil
	}
	for radius := 1; radius <= maxRadius; radius++ {
		for rr := r - radius; rr <= r+radius; rr++ {
			if rr < 0 || rr >= g.Ny() {
				continue
			}
			for cc := c - radius; cc <= c+radius; cc++ {
				if cc < 0 || cc >= g.Nx() {
					continue
				}
				// Interior cells were covered by a smaller ring.
				if rr != r-radius && rr != r+radius && cc != c-radius && cc != c+radius {
					continue
				}
				if !invalid(rr, cc) {
					return rr, cc, nil
				}
			}
		}
	}
	return 0, 0, fmt.Errorf("raster: snap from cell (%d, %d) with radius %d: %w",
		r, c, maxRadius, ErrNoValidCell)
}

// SnapCoordinate maps a world coordinate to its cell and snaps that cell
// to the nearest one holding a value outside invalidValues, within
// maxRadius rings. Cells with no value are never acceptable.
func SnapCoordinate(g *Grid, p geom.Point, invalidValues []float64, maxRadius int) (int, int, error) {
	r, c, err := g.ToPixel(p)
	if err != nil {
		return 0, 0, err
	}
	set := newValueSet(invalidValues)
	return Snap(g, r, c, func(rr, cc int) bool {
		return g.IsNodata(rr, cc) || set.contains(g.Value(rr, cc))
	}, maxRadius)
}
