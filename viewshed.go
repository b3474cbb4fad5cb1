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
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// ObserverValue marks the observer's own cell in a viewshed result.
const ObserverValue = math.MaxFloat64

// ViewshedOptions holds the tunable parameters for Viewshed.
type ViewshedOptions struct {
	// ObserverHeight is added to the surface elevation under the observer
	// to form the eye elevation all sightlines originate from.
	ObserverHeight float64
	// TargetHeight is added to the surface elevation of every candidate
	// cell when deciding its visibility.
	TargetHeight float64
}

// Viewshed computes which cells of the elevation surface g are visible
// from an observer at the given world coordinate.
//
// One sightline is cast from the observer's cell center to the center of
// every perimeter cell and walked outward in steps of half the smaller
// cell dimension. At each step the surface elevation is sampled by
// bilinear interpolation between the four surrounding cell centers, and
// a running maximum of the elevation angle above horizontal is kept; the
// cell containing a sample is visible when the angle subtended by its own
// elevation (plus TargetHeight) meets or exceeds every angle seen at the
// samples between it and the observer. Angles are computed from true
// world-unit distances, so non-square cells are handled correctly.
//
// In the result, the observer's cell holds ObserverValue, each visible
// cell holds its elevation relative to the observer's eye elevation, and
// invisible cells and cells with no elevation hold NaN. An observer
// coordinate outside the grid returns ErrOutOfBounds; an observer on a
// nodata cell is a ParameterError.
func Viewshed(g *Grid, observer geom.Point, opts ViewshedOptions) (*Grid, error) {
	start := time.Now()
	orow, ocol, err := g.ToPixel(observer)
	if err != nil {
		return nil, fmt.Errorf("raster: viewshed observer: %w", err)
	}
	if g.IsNodata(orow, ocol) {
		return nil, &ParameterError{Name: "observer",
			Reason: fmt.Sprintf("cell (%d, %d) has no elevation", orow, ocol)}
	}
	eye := g.Value(orow, ocol) + opts.ObserverHeight
	oc := g.CellCenter(orow, ocol)

	rays := perimeterCells(g)
	sweeps := make([]raySweep, len(rays))

	// Each sightline is independent; sweep them concurrently and merge
	// the per-ray results afterwards.
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(rays); ii += nprocs {
				sweeps[ii] = g.sweepRay(oc, eye, orow, ocol, rays[ii], opts.TargetHeight)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	out := g.newOutput(math.NaN())
	resolved := make([]bool, g.Ny()*g.Nx())
	for _, sweep := range sweeps {
		for _, i1d := range sweep.tested {
			resolved[i1d] = true
		}
		for _, i1d := range sweep.visible {
			out.Elements[i1d] = g.data.Get1d(i1d) + opts.TargetHeight - eye
		}
	}

	// The sweep samples at sub-cell steps, but a ray can still clip a
	// cell between two samples; assess any cell no ray touched with its
	// own sightline.
	for r := 0; r < g.Ny(); r++ {
		for c := 0; c < g.Nx(); c++ {
			i1d := g.data.Index1d(r, c)
			if resolved[i1d] || g.IsNodata(r, c) || (r == orow && c == ocol) {
				continue
			}
			if g.cellVisible(oc, eye, orow, ocol, r, c, opts.TargetHeight) {
				out.Elements[i1d] = g.Value(r, c) + opts.TargetHeight - eye
			}
		}
	}
	out.Set(ObserverValue, orow, ocol)

	logger.WithFields(logrus.Fields{
		"rays":     len(rays),
		"cells":    g.Ny() * g.Nx(),
		"duration": time.Since(start),
	}).Debug("raster: computed viewshed")
	return g.newLike(out), nil
}

// raySweep is the outcome of one sightline: the 1-d indices of every
// cell the ray sampled, and of the subset found visible.
type raySweep struct {
	tested  []int
	visible []int
}

// sweepRay walks the sightline from the observer's cell center toward the
// target perimeter cell's center, testing each sampled cell against the
// running horizon. The horizon angle is updated only after a cell has
// been tested, so a cell's own elevation never occludes it, and samples
// whose bilinear neighborhood includes a nodata cell leave the horizon
// unchanged.
func (g *Grid) sweepRay(oc geom.Point, eye float64, orow, ocol int, target Cell, targetHeight float64) raySweep {
	var sweep raySweep
	tc := g.CellCenter(target.Row, target.Col)
	dx, dy := tc.X-oc.X, tc.Y-oc.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return sweep
	}
	step := 0.5 * math.Min(g.Dx(), g.Dy())
	n := int(math.Ceil(dist / step))

	maxTan := math.Inf(-1)
	lastCell := -1
	for i := 1; i <= n; i++ {
		t := float64(i) * step
		if t > dist {
			t = dist
		}
		sx := oc.X + dx*t/dist
		sy := oc.Y + dy*t/dist

		r := int(math.Floor((sy - g.bounds.Min.Y) / g.Dy()))
		c := int(math.Floor((sx - g.bounds.Min.X) / g.Dx()))
		if !g.InGrid(r, c) {
			break
		}
		if r == orow && c == ocol {
			continue
		}
		i1d := g.data.Index1d(r, c)
		if i1d != lastCell {
			sweep.tested = append(sweep.tested, i1d)
			lastCell = i1d
		}
		if !g.IsNodata(r, c) {
			tan := (g.Value(r, c) + targetHeight - eye) / t
			if tan >= maxTan {
				if m := len(sweep.visible); m == 0 || sweep.visible[m-1] != i1d {
					sweep.visible = append(sweep.visible, i1d)
				}
			}
		}
		if surface, ok := g.bilinear(sx, sy); ok {
			if tan := (surface - eye) / t; tan > maxTan {
				maxTan = tan
			}
		}
	}
	return sweep
}

// cellVisible casts a dedicated sightline from the observer to one cell
// center, building the horizon from the samples strictly between the
// observer and the cell, and reports whether the cell clears it.
func (g *Grid) cellVisible(oc geom.Point, eye float64, orow, ocol, row, col int, targetHeight float64) bool {
	tc := g.CellCenter(row, col)
	dx, dy := tc.X-oc.X, tc.Y-oc.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return true
	}
	step := 0.5 * math.Min(g.Dx(), g.Dy())

	maxTan := math.Inf(-1)
	for i := 1; ; i++ {
		t := float64(i) * step
		if t >= dist {
			break
		}
		sx := oc.X + dx*t/dist
		sy := oc.Y + dy*t/dist
		r := int(math.Floor((sy - g.bounds.Min.Y) / g.Dy()))
		c := int(math.Floor((sx - g.bounds.Min.X) / g.Dx()))
		if r == row && c == col {
			break
		}
		if r == orow && c == ocol {
			continue
		}
		if surface, ok := g.bilinear(sx, sy); ok {
			if tan := (surface - eye) / t; tan > maxTan {
				maxTan = tan
			}
		}
	}
	return (g.Value(row, col)+targetHeight-eye)/dist >= maxTan
}

// bilinear samples the surface at a world coordinate by interpolating
// between the four surrounding cell centers, clamping to the grid edge.
// It reports false when any contributing cell has no value.
func (g *Grid) bilinear(x, y float64) (float64, bool) {
	fx := (x-g.bounds.Min.X)/g.Dx() - 0.5
	fy := (y-g.bounds.Min.Y)/g.Dy() - 0.5

	c0 := int(math.Floor(fx))
	r0 := int(math.Floor(fy))
	wx := fx - float64(c0)
	wy := fy - float64(r0)

	if c0 < 0 {
		c0, wx = 0, 0
	}
	if r0 < 0 {
		r0, wy = 0, 0
	}
	c1, r1 := c0+1, r0+1
	if c1 > g.Nx()-1 {
		c1 = g.Nx() - 1
		if c0 > c1 {
			c0, wx = c1, 0
		}
	}
	if r1 > g.Ny()-1 {
		r1 = g.Ny() - 1
		if r0 > r1 {
			r0, wy = r1, 0
		}
	}

	if g.IsNodata(r0, c0) || g.IsNodata(r0, c1) || g.IsNodata(r1, c0) || g.IsNodata(r1, c1) {
		return math.NaN(), false
	}
	south := g.Value(r0, c0)*(1-wx) + g.Value(r0, c1)*wx
	north := g.Value(r1, c0)*(1-wx) + g.Value(r1, c1)*wx
	return south*(1-wy) + north*wy, true
}

// perimeterCells lists the cells on the outer edge of the grid in
// deterministic order.
func perimeterCells(g *Grid) []Cell {
	ny, nx := g.Ny(), g.Nx()
	var cells []Cell
	for c := 0; c < nx; c++ {
		cells = append(cells, Cell{Row: 0, Col: c})
		if ny > 1 {
			cells = append(cells, Cell{Row: ny - 1, Col: c})
		}
	}
	for r := 1; r < ny-1; r++ {
		cells = append(cells, Cell{Row: r, Col: 0})
		if nx > 1 {
			cells = append(cells, Cell{Row: r, Col: nx - 1})
		}
	}
	return cells
}
