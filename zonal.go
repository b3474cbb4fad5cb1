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
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
)

// A Reducer collapses the values of one zone into a single statistic.
// Each Reducer defines its own result for an empty value vector; the
// built-in reducers return 0 for Count and Sum and NaN otherwise.
type Reducer interface {
	Name() string
	Reduce(values []float64) float64
}

type reducerFunc struct {
	name string
	f    func([]float64) float64
}

func (r reducerFunc) Name() string { return r.name }

func (r reducerFunc) Reduce(values []float64) float64 { return r.f(values) }

// ReducerFunc adapts a plain function into a named Reducer so callers
// can supply their own statistics alongside the built-in ones.
func ReducerFunc(name string, f func([]float64) float64) Reducer {
	return reducerFunc{name: name, f: f}
}

// Built-in reducers.
var (
	Count = ReducerFunc("count", func(v []float64) float64 { return float64(len(v)) })
	Sum   = ReducerFunc("sum", floats.Sum)
	Mean  = ReducerFunc("mean", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		return stats.StatsMean(v)
	})
	Min = ReducerFunc("min", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		return floats.Min(v)
	})
	Max = ReducerFunc("max", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		return floats.Max(v)
	})
	Std = ReducerFunc("std", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		return stats.StatsPopulationStandardDeviation(v)
	})
	Var = ReducerFunc("var", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		return stats.StatsPopulationVariance(v)
	})
)

// DefaultReducers returns the built-in reducer table applied when
// ZonalStats is called with a nil reducer list.
func DefaultReducers() []Reducer {
	return []Reducer{Count, Sum, Mean, Min, Max, Std, Var}
}

// ZoneRecord holds the reduced statistics for one zone.
type ZoneRecord struct {
	Zone  int
	Stats map[string]float64
}

// ZonalStats groups the cells of the value grid by the integer zone ids
// in the zone grid and applies each reducer to every zone's value
// vector. Zone cells with no value contribute nothing to their zone's
// vector; zones whose vector ends up empty still yield a record, with
// each reducer's empty-input result. Cells whose zone has no value
// belong to no zone. Records are ordered by zone id ascending.
//
// The two grids must have identical shapes; otherwise a
// ShapeMismatchError is returned. A nil reducer list means
// DefaultReducers().
func ZonalStats(zones, values *Grid, reducers []Reducer) ([]ZoneRecord, error) {
	if !zones.sameShape(values) {
		return nil, &ShapeMismatchError{Want: zones.data.Shape, Have: values.data.Shape}
	}
	if reducers == nil {
		reducers = DefaultReducers()
	}

	groups := make(map[int][]float64)
	for r := 0; r < zones.Ny(); r++ {
		for c := 0; c < zones.Nx(); c++ {
			if zones.IsNodata(r, c) {
				continue
			}
			id := int(math.Round(zones.Value(r, c)))
			vec := groups[id]
			if !values.IsNodata(r, c) {
				vec = append(vec, values.Value(r, c))
			}
			groups[id] = vec
		}
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	// Zones are independent after grouping; reduce them concurrently.
	records := make([]ZoneRecord, len(ids))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(ids); ii += nprocs {
				id := ids[ii]
				rec := ZoneRecord{Zone: id, Stats: make(map[string]float64, len(reducers))}
				for _, red := range reducers {
					rec.Stats[red.Name()] = red.Reduce(groups[id])
				}
				records[ii] = rec
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return records, nil
}
