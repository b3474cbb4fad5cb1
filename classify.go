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
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Method selects a classification break-selection algorithm.
type Method int

const (
	// Quantile places breaks at the k-quantiles of the value
	// distribution, so classes hold roughly equal cell counts.
	Quantile Method = iota
	// EqualInterval places breaks at uniform steps of (max-min)/k.
	EqualInterval
	// NaturalBreaks chooses breaks by iterative within-class variance
	// minimization (Jenks), optionally on a sample of the values.
	NaturalBreaks
)

// defaultSampleSize bounds the value count fed to the natural-breaks
// optimization when the caller does not set one.
const defaultSampleSize = 2000

// ClassifyOptions holds the tunable parameters for Classify.
//
// The effective ignore set is always IgnoreValues plus the grid's nodata
// sentinel plus NaN: ignored cells take no part in break computation and
// map to NaN in the output. This is the module's single nodata
// convention for classification.
type ClassifyOptions struct {
	IgnoreValues []float64
	// SampleSize bounds the number of values the natural-breaks
	// optimization sees; 0 means defaultSampleSize. Ignored by the other
	// methods, which always use every value.
	SampleSize int
	// Seed seeds the sampling RNG so natural-breaks results are
	// reproducible across runs.
	Seed int64
}

// Classify partitions the value range of g into k classes using the
// given method and returns a same-shaped grid in which every
// non-ignored cell holds its class index in [0, k-1]. Break boundaries
// are strictly increasing; on degenerate distributions duplicate
// candidate breaks collapse, so the realized class count may be below k
// but never above it.
func Classify(g *Grid, method Method, k int, opts ClassifyOptions) (*Grid, error) {
	breaks, err := Breaks(g, method, k, opts)
	if err != nil {
		return nil, err
	}
	return remap(g, breaks, newValueSet(opts.IgnoreValues)), nil
}

// Breaks computes the k-1 interior break values Classify would use
// without performing the remap.
func Breaks(g *Grid, method Method, k int, opts ClassifyOptions) ([]float64, error) {
	if k <= 0 {
		return nil, &ParameterError{Name: "k", Reason: "class count must be positive"}
	}
	vals := collectValues(g, newValueSet(opts.IgnoreValues))
	if len(vals) == 0 {
		return nil, &ParameterError{Name: "values", Reason: "no cells remain after removing ignored values"}
	}
	sort.Float64s(vals)

	var breaks []float64
	switch method {
	case Quantile:
		breaks = quantileBreaks(vals, k)
	case EqualInterval:
		breaks = equalIntervalBreaks(vals, k)
	case NaturalBreaks:
		breaks = naturalBreaks(vals, k, opts)
	default:
		return nil, &ParameterError{Name: "method", Reason: "unknown classification method"}
	}
	return dedupeBreaks(breaks), nil
}

// Reclassify maps every non-ignored cell of g to the index of the
// half-open interval its value falls in, given the strictly increasing
// interior break values: class i covers values above breaks[i-1] and at
// or below breaks[i], the first and last classes extending to -Inf and
// +Inf. Ignored cells map to NaN.
func Reclassify(g *Grid, breaks []float64, opts ClassifyOptions) (*Grid, error) {
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, &ParameterError{Name: "breaks", Reason: "break values must be strictly increasing"}
		}
	}
	return remap(g, breaks, newValueSet(opts.IgnoreValues)), nil
}

// Binary returns a same-shaped mask holding 1 where the cell value is
// in values and 0 elsewhere. Cells with no value map to NaN.
func Binary(g *Grid, values []float64) (*Grid, error) {
	set := newValueSet(values)
	if set.empty() {
		return nil, &ParameterError{Name: "values", Reason: "at least one value is required"}
	}
	out := g.newOutput(0)
	for r := 0; r < g.Ny(); r++ {
		for c := 0; c < g.Nx(); c++ {
			switch {
			case g.IsNodata(r, c):
				out.Set(math.NaN(), r, c)
			case set.contains(g.Value(r, c)):
				out.Set(1, r, c)
			}
		}
	}
	return g.newLike(out), nil
}

// collectValues gathers the finite, non-ignored cell values of g.
func collectValues(g *Grid, ignore *valueSet) []float64 {
	vals := make([]float64, 0, len(g.data.Elements))
	for r := 0; r < g.Ny(); r++ {
		for c := 0; c < g.Nx(); c++ {
			if g.IsNodata(r, c) {
				continue
			}
			v := g.Value(r, c)
			if ignore.contains(v) {
				continue
			}
			vals = append(vals, v)
		}
	}
	return vals
}

func quantileBreaks(sorted []float64, k int) []float64 {
	breaks := make([]float64, 0, k-1)
	for i := 1; i < k; i++ {
		breaks = append(breaks, stat.Quantile(float64(i)/float64(k), stat.Empirical, sorted, nil))
	}
	return breaks
}

func equalIntervalBreaks(sorted []float64, k int) []float64 {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	width := (hi - lo) / float64(k)
	breaks := make([]float64, 0, k-1)
	for i := 1; i < k; i++ {
		breaks = append(breaks, lo+float64(i)*width)
	}
	return breaks
}

// naturalBreaks runs a one-dimensional Jenks-style optimization:
// centroids start at the quantiles of a (seeded, deterministic) sample
// and values are iteratively reassigned to the nearest centroid until
// the assignment stops changing. The returned interior breaks are the
// maxima of the first k-1 classes.
func naturalBreaks(sorted []float64, k int, opts ClassifyOptions) []float64 {
	start := time.Now()
	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	sample := sorted
	if len(sorted) > sampleSize {
		rng := rand.New(rand.NewSource(opts.Seed))
		sample = make([]float64, sampleSize)
		for i, j := range rng.Perm(len(sorted))[:sampleSize] {
			sample[i] = sorted[j]
		}
		sort.Float64s(sample)
	}
	if k >= len(sample) {
		// Not enough distinct positions to optimize; every value becomes
		// its own candidate break.
		return sample[:len(sample)-1]
	}

	// Initial centroids at the sample quantiles.
	centroids := make([]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = stat.Quantile((float64(i)+0.5)/float64(k), stat.Empirical, sample, nil)
	}

	assign := make([]int, len(sample))
	const maxIter = 200
	iters := 0
	for ; iters < maxIter; iters++ {
		// Assign each value to the nearest centroid. The sample is
		// sorted, so assignments are monotone and only the boundary
		// between adjacent centroids matters.
		changed := false
		class := 0
		for i, v := range sample {
			for class < k-1 && math.Abs(v-centroids[class+1]) < math.Abs(v-centroids[class]) {
				class++
			}
			if assign[i] != class {
				assign[i] = class
				changed = true
			}
		}
		if !changed {
			break
		}
		// Recompute centroids as class means; empty classes keep their
		// previous centroid.
		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range sample {
			sums[assign[i]] += v
			counts[assign[i]]++
		}
		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				centroids[j] = sums[j] / float64(counts[j])
			}
		}
	}

	breaks := make([]float64, 0, k-1)
	for i := 1; i < len(sample); i++ {
		if assign[i] != assign[i-1] {
			breaks = append(breaks, sample[i-1])
		}
	}
	logger.WithFields(logrus.Fields{
		"classes":    k,
		"sample":     len(sample),
		"iterations": iters,
		"duration":   time.Since(start),
	}).Debug("raster: optimized natural breaks")
	return breaks
}

// dedupeBreaks drops repeated break values, keeping the sequence
// strictly increasing.
func dedupeBreaks(breaks []float64) []float64 {
	out := breaks[:0]
	for _, b := range breaks {
		if len(out) == 0 || b > out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

// remap writes each cell's class index, classifying concurrently in the
// stride pattern the other kernels use.
func remap(g *Grid, breaks []float64, ignore *valueSet) *Grid {
	out := g.newOutput(math.NaN())
	ny, nx := g.Ny(), g.Nx()
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for r := pp; r < ny; r += nprocs {
				for c := 0; c < nx; c++ {
					if g.IsNodata(r, c) {
						continue
					}
					v := g.Value(r, c)
					if ignore.contains(v) {
						continue
					}
					class := sort.SearchFloat64s(breaks, v)
					out.Set(float64(class), r, c)
				}
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return g.newLike(out)
}
