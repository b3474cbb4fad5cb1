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

import "math"

// unionFind is a disjoint-set forest over cell indices with path
// compression and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// LabelRegions assigns a zone id to every maximal set of cells that are
// mutually connected under the given connectivity and hold exactly equal
// values. Cells with no value belong to no region and hold NaN in the
// output. Ids are consecutive integers starting at 1, issued in the
// row-major order the regions are first encountered, so two runs over
// the same input produce identical output; ids carry no meaning beyond
// one run.
func LabelRegions(g *Grid, conn Connectivity) (*Grid, error) {
	offsets, err := conn.offsets()
	if err != nil {
		return nil, err
	}
	ny, nx := g.Ny(), g.Nx()
	u := newUnionFind(ny * nx)

	// One scan suffices: union each cell with its already-visited
	// equal-valued neighbors (negative offsets only).
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			if g.IsNodata(r, c) {
				continue
			}
			v := g.Value(r, c)
			for _, off := range offsets {
				if off[0] > 0 || (off[0] == 0 && off[1] > 0) {
					continue
				}
				nr, nc := r+off[0], c+off[1]
				if !g.InGrid(nr, nc) || g.IsNodata(nr, nc) {
					continue
				}
				if g.Value(nr, nc) == v {
					u.union(r*nx+c, nr*nx+nc)
				}
			}
		}
	}

	out := g.newOutput(math.NaN())
	labels := make(map[int]float64)
	next := 1.0
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			if g.IsNodata(r, c) {
				continue
			}
			root := u.find(r*nx + c)
			id, ok := labels[root]
			if !ok {
				id = next
				next++
				labels[root] = id
			}
			out.Set(id, r, c)
		}
	}
	return g.newLike(out), nil
}
