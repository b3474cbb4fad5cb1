package raster

import (
	"errors"
	"math"
	"testing"
)

func TestZonalStatsBuiltins(t *testing.T) {
	zones := newTestGrid(t, [][]float64{
		{1, 1, 2},
		{2, 3, 3},
	}, unitBounds(3, 2))
	values := newTestGrid(t, [][]float64{
		{2, 4, 10},
		{20, 5, math.NaN()},
	}, unitBounds(3, 2))

	recs, err := ZonalStats(zones, values, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for i, want := range []int{1, 2, 3} {
		if recs[i].Zone != want {
			t.Fatalf("record %d is zone %d, want %d", i, recs[i].Zone, want)
		}
	}

	// Zone 1 holds {2, 4}.
	z1 := recs[0].Stats
	checks := []struct {
		name string
		want float64
	}{
		{"count", 2},
		{"sum", 6},
		{"mean", 3},
		{"min", 2},
		{"max", 4},
		{"std", 1},
		{"var", 1},
	}
	for _, check := range checks {
		if got := z1[check.name]; math.Abs(got-check.want) > 1e-12 {
			t.Errorf("zone 1 %s = %g, want %g", check.name, got, check.want)
		}
	}

	// Zone 3 has one NaN value cell; only 5 survives.
	z3 := recs[2].Stats
	if z3["count"] != 1 || z3["sum"] != 5 {
		t.Errorf("zone 3 count, sum = %g, %g; want 1, 5", z3["count"], z3["sum"])
	}
}

func TestZonalStatsCustomReducer(t *testing.T) {
	zones := newTestGrid(t, [][]float64{{1, 1, 1}}, unitBounds(3, 1))
	values := newTestGrid(t, [][]float64{{3, 9, 5}}, unitBounds(3, 1))

	spread := ReducerFunc("range", func(v []float64) float64 {
		if len(v) == 0 {
			return math.NaN()
		}
		lo, hi := v[0], v[0]
		for _, x := range v[1:] {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
		return hi - lo
	})
	recs, err := ZonalStats(zones, values, []Reducer{Count, spread})
	if err != nil {
		t.Fatal(err)
	}
	if got := recs[0].Stats["range"]; got != 6 {
		t.Errorf("range = %g, want 6", got)
	}
	if got := recs[0].Stats["count"]; got != 3 {
		t.Errorf("count = %g, want 3", got)
	}
}

func TestZonalStatsEmptyZone(t *testing.T) {
	zones := newTestGrid(t, [][]float64{{1, 2}}, unitBounds(2, 1))
	values := newTestGrid(t, [][]float64{{7, math.NaN()}}, unitBounds(2, 1))

	recs, err := ZonalStats(zones, values, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: empty zones still appear", len(recs))
	}
	empty := recs[1].Stats
	if empty["count"] != 0 || empty["sum"] != 0 {
		t.Errorf("empty zone count, sum = %g, %g; want 0, 0", empty["count"], empty["sum"])
	}
	for _, name := range []string{"mean", "min", "max", "std"} {
		if !math.IsNaN(empty[name]) {
			t.Errorf("empty zone %s = %g, want NaN", name, empty[name])
		}
	}
}

func TestZonalStatsZoneIdsExact(t *testing.T) {
	// No ids invented, none dropped: nodata zone cells belong to no
	// zone.
	zones := newTestGrid(t, [][]float64{
		{5, math.NaN()},
		{9, 5},
	}, unitBounds(2, 2))
	values := newTestGrid(t, zeros(2, 2), unitBounds(2, 2))

	recs, err := ZonalStats(zones, values, []Reducer{Count})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Zone != 5 || recs[1].Zone != 9 {
		t.Fatalf("got %+v, want exactly zones 5 and 9", recs)
	}
	if recs[0].Stats["count"] != 2 {
		t.Errorf("zone 5 count = %g, want 2", recs[0].Stats["count"])
	}
}

func TestZonalStatsShapeMismatch(t *testing.T) {
	zones := newTestGrid(t, zeros(2, 2), unitBounds(2, 2))
	values := newTestGrid(t, zeros(3, 2), unitBounds(2, 3))

	var sm *ShapeMismatchError
	if _, err := ZonalStats(zones, values, nil); !errors.As(err, &sm) {
		t.Fatalf("want ShapeMismatchError, got %v", err)
	}
}
