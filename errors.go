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
	"errors"
	"fmt"
)

// Sentinel errors returned by the analysis kernels. Callers should match
// them with errors.Is because the kernels wrap them with operation context.
var (
	// ErrOutOfBounds indicates a world coordinate or cell index that falls
	// outside the grid.
	ErrOutOfBounds = errors.New("raster: coordinate out of grid bounds")
	// ErrNoValidCell indicates that an expanding-ring snap search exhausted
	// its maximum radius without finding an acceptable cell.
	ErrNoValidCell = errors.New("raster: no valid cell within search radius")
	// ErrUnreachable indicates a path endpoint that sits on a barrier or
	// nodata cell while snapping is disabled.
	ErrUnreachable = errors.New("raster: endpoint cell is not traversable")
)

// ShapeMismatchError indicates two grids that were required to share a
// shape but do not.
type ShapeMismatchError struct {
	Want, Have []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("raster: grid shapes must match: %v != %v", e.Want, e.Have)
}

// ParameterError indicates an argument that violates a kernel's
// preconditions.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("raster: invalid parameter %s: %s", e.Name, e.Reason)
}
