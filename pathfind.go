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
	"container/heap"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// PathOptions holds the tunable parameters for FindPath.
type PathOptions struct {
	// Barriers lists cell values that are impassable. Cells with no value
	// are always impassable.
	Barriers []float64
	// Connectivity selects 4- or 8-neighbor adjacency. The zero value
	// defaults to Conn4.
	Connectivity Connectivity
	// SnapStart and SnapGoal move an endpoint that lands on an impassable
	// cell to the nearest passable one before searching.
	SnapStart, SnapGoal bool
	// MaxSnapRadius bounds the snap search in rings; 0 means the whole
	// grid may be searched.
	MaxSnapRadius int
}

// PathResult is the outcome of a shortest-path search.
type PathResult struct {
	// Raster is a grid shaped like the input in which the cells on the
	// path hold their 1-based position along it and every other cell
	// holds NaN. When no path exists all cells hold NaN.
	Raster *Grid
	// Cells is the path from the (possibly snapped) start cell to the
	// goal cell, empty when no path exists.
	Cells []Cell
	// Cost is the total world-unit length of the path, NaN when no path
	// exists.
	Cost float64
}

// Found reports whether the search reached the goal.
func (p *PathResult) Found() bool { return len(p.Cells) > 0 }

// frontierNode is an entry in the A* open set. seq is an insertion
// counter used to break priority ties deterministically.
type frontierNode struct {
	cell     Cell
	priority float64
	seq      int
}

type frontier []*frontierNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*frontierNode)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

// FindPath searches for the shortest barrier-avoiding path between two
// world coordinates over the grid graph induced by g and the given
// connectivity. Edge costs and the heuristic are true Euclidean
// distances between cell centers in world units, so diagonal steps on
// non-square cells cost math.Hypot(Dx, Dy); the heuristic is therefore
// admissible and the returned path is optimal.
//
// An endpoint outside the grid returns ErrOutOfBounds. An endpoint on an
// impassable cell returns ErrUnreachable unless the corresponding snap
// flag is set, in which case the endpoint moves to the nearest passable
// cell first. A goal that is passable but walled off is not an error:
// the result has no cells, an all-NaN raster, and NaN cost.
func FindPath(g *Grid, start, goal geom.Point, opts PathOptions) (*PathResult, error) {
	conn := opts.Connectivity
	if conn == 0 {
		conn = Conn4
	}
	offsets, err := conn.offsets()
	if err != nil {
		return nil, err
	}
	barriers := newValueSet(opts.Barriers)
	impassable := func(r, c int) bool {
		return g.IsNodata(r, c) || barriers.contains(g.Value(r, c))
	}
	maxRadius := opts.MaxSnapRadius
	if maxRadius <= 0 {
		maxRadius = g.Ny() + g.Nx()
	}

	sr, sc, err := resolveEndpoint(g, start, "start", impassable, opts.SnapStart, maxRadius)
	if err != nil {
		return nil, err
	}
	gr, gc, err := resolveEndpoint(g, goal, "goal", impassable, opts.SnapGoal, maxRadius)
	if err != nil {
		return nil, err
	}

	cells, cost := astar(g, Cell{sr, sc}, Cell{gr, gc}, impassable, offsets)

	out := g.newOutput(math.NaN())
	for i, cell := range cells {
		out.Set(float64(i+1), cell.Row, cell.Col)
	}
	if len(cells) == 0 {
		cost = math.NaN()
	}
	return &PathResult{Raster: g.newLike(out), Cells: cells, Cost: cost}, nil
}

func resolveEndpoint(g *Grid, p geom.Point, name string, impassable func(int, int) bool, snap bool, maxRadius int) (int, int, error) {
	r, c, err := g.ToPixel(p)
	if err != nil {
		return 0, 0, fmt.Errorf("raster: path %s: %w", name, err)
	}
	if !impassable(r, c) {
		return r, c, nil
	}
	if !snap {
		return 0, 0, fmt.Errorf("raster: path %s cell (%d, %d): %w", name, r, c, ErrUnreachable)
	}
	r, c, err = Snap(g, r, c, impassable, maxRadius)
	if err != nil {
		return 0, 0, fmt.Errorf("raster: snapping path %s: %w", name, err)
	}
	return r, c, nil
}

// astar runs the search itself, returning the path from start to goal
// and its cost, or a nil path when the open set empties first.
func astar(g *Grid, start, goal Cell, impassable func(int, int) bool, offsets [][2]int) ([]Cell, float64) {
	dx, dy := g.Dx(), g.Dy()
	nx := g.Nx()
	index := func(c Cell) int { return c.Row*nx + c.Col }
	h := func(c Cell) float64 {
		return math.Hypot(float64(c.Col-goal.Col)*dx, float64(c.Row-goal.Row)*dy)
	}

	gScore := map[int]float64{index(start): 0}
	cameFrom := make(map[int]Cell)
	closed := make(map[int]bool)

	seq := 0
	open := &frontier{{cell: start, priority: h(start), seq: seq}}
	heap.Init(open)

	for open.Len() > 0 {
		current := heap.Pop(open).(*frontierNode).cell
		ci := index(current)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		if current == goal {
			return reconstruct(cameFrom, start, goal, nx), gScore[ci]
		}
		for _, off := range offsets {
			nr, nc := current.Row+off[0], current.Col+off[1]
			if !g.InGrid(nr, nc) || impassable(nr, nc) {
				continue
			}
			neighbor := Cell{nr, nc}
			ni := index(neighbor)
			if closed[ni] {
				continue
			}
			stepCost := math.Hypot(float64(off[1])*dx, float64(off[0])*dy)
			tentative := gScore[ci] + stepCost
			if old, seen := gScore[ni]; !seen || tentative < old {
				gScore[ni] = tentative
				cameFrom[ni] = current
				seq++
				heap.Push(open, &frontierNode{cell: neighbor, priority: tentative + h(neighbor), seq: seq})
			}
		}
	}
	return nil, math.NaN()
}

func reconstruct(cameFrom map[int]Cell, start, goal Cell, nx int) []Cell {
	var path []Cell
	for at := goal; ; {
		path = append(path, at)
		if at == start {
			break
		}
		at = cameFrom[at.Row*nx+at.Col]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
