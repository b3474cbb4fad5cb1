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

// Cell addresses a single grid cell.
type Cell struct {
	Row, Col int
}

// Connectivity selects the neighbor adjacency model for pathfinding and
// region labeling: axis-aligned only, or axis-aligned plus diagonal.
type Connectivity int

const (
	// Conn4 connects each cell to its north, south, east, and west
	// neighbors.
	Conn4 Connectivity = 4
	// Conn8 additionally connects the four diagonal neighbors.
	Conn8 Connectivity = 8
)

// conn4Offsets lists axis-aligned neighbor offsets in deterministic
// row-major order; conn8Offsets appends the diagonals in the same order.
var (
	conn4Offsets = [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	conn8Offsets = [][2]int{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
)

// offsets returns the neighbor offsets for the connectivity model, or an
// error for any other value.
func (c Connectivity) offsets() ([][2]int, error) {
	switch c {
	case Conn4:
		return conn4Offsets, nil
	case Conn8:
		return conn8Offsets, nil
	default:
		return nil, &ParameterError{Name: "connectivity", Reason: "must be Conn4 or Conn8"}
	}
}
