// Package polar provides bilinear (TWA, TWS) lookup against a boat
// class's target-speed table.
package polar

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/model"
)

// Table wraps a model.PolarTable with the matrix form bilinear lookup
// needs, built once and reused across lookups.
type Table struct {
	twa    []float64
	tws    []float64
	target *mat.Dense // twa rows x tws cols, knots
}

// NewTable validates and wraps pt. The TWA/TWS grids must be sorted
// ascending (repeated values are not rejected) and TargetSpeeds must
// be a full twa x tws matrix.
func NewTable(pt model.PolarTable) (*Table, error) {
	if len(pt.TWAGrid) == 0 || len(pt.TWSGrid) == 0 {
		return nil, diag.Invalid("polar_table", "twa_grid and tws_grid must be non-empty")
	}
	if !sort.Float64sAreSorted(pt.TWAGrid) || !sort.Float64sAreSorted(pt.TWSGrid) {
		return nil, diag.Invalid("polar_table", "twa_grid and tws_grid must be ascending")
	}
	if len(pt.TargetSpeeds) != len(pt.TWAGrid) {
		return nil, diag.Invalid("polar_table", "target_speeds row count must equal len(twa_grid)")
	}
	m := mat.NewDense(len(pt.TWAGrid), len(pt.TWSGrid), nil)
	for i, row := range pt.TargetSpeeds {
		if len(row) != len(pt.TWSGrid) {
			return nil, diag.Invalid("polar_table", "target_speeds row length must equal len(tws_grid)")
		}
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return &Table{twa: pt.TWAGrid, tws: pt.TWSGrid, target: m}, nil
}

// Lookup is the result of a target-speed query: the interpolated
// speed, and whether the query point fell outside the table's range
// and had to be clamped to the nearest edge (extrapolation).
type Lookup struct {
	SpeedKts      float64
	Extrapolated bool
}

// TargetSpeed returns the bilinearly interpolated target boat speed
// at (twa, tws). Bilinear interpolation is decomposed into two 1-D
// passes: interpolate along TWS at each of the two bracketing TWA
// rows, then blend those two results linearly in TWA.
func (t *Table) TargetSpeed(twaDeg, twsKts float64) Lookup {
	twaClamped, twaExtra := clampToRange(twaDeg, t.twa)
	twsClamped, twsExtra := clampToRange(twsKts, t.tws)
	extrapolated := twaExtra || twsExtra

	i0, i1, frac := bracket(t.twa, twaClamped)

	row0 := t.target.RawRowView(i0)
	row1 := t.target.RawRowView(i1)

	v0 := interp1D(t.tws, row0, twsClamped)
	if i0 == i1 {
		return Lookup{SpeedKts: v0, Extrapolated: extrapolated}
	}
	v1 := interp1D(t.tws, row1, twsClamped)
	speed := v0 + frac*(v1-v0)
	return Lookup{SpeedKts: speed, Extrapolated: extrapolated}
}

// interp1D performs 1-D linear interpolation of y at x using
// gonum/interp.Linear, which is itself 1-D only, matching exactly the
// two passes a bilinear lookup decomposes into.
func interp1D(xs, ys []float64, x float64) float64 {
	var fn interp.Linear
	if err := fn.Fit(xs, ys); err != nil {
		// Fit fails for a one-point grid or repeated grid values
		// (NewTable accepts both); the last tabulated value is used.
		return ys[len(ys)-1]
	}
	xc, _ := clampToRange(x, xs)
	return fn.Predict(xc)
}

// bracket returns the pair of indices into grid bracketing x (equal if
// x lies exactly on a grid point or grid has one element), plus the
// fractional position between them in [0,1].
func bracket(grid []float64, x float64) (i0, i1 int, frac float64) {
	if len(grid) == 1 {
		return 0, 0, 0
	}
	for i := 0; i < len(grid)-1; i++ {
		if x >= grid[i] && x <= grid[i+1] {
			span := grid[i+1] - grid[i]
			if span == 0 {
				return i, i, 0
			}
			return i, i + 1, (x - grid[i]) / span
		}
	}
	if x < grid[0] {
		return 0, 0, 0
	}
	last := len(grid) - 1
	return last, last, 0
}

// clampToRange clamps x to [grid[0], grid[len-1]] and reports whether
// clamping changed the value.
func clampToRange(x float64, grid []float64) (float64, bool) {
	if len(grid) == 0 {
		return x, false
	}
	lo, hi := grid[0], grid[len(grid)-1]
	if x < lo {
		return lo, true
	}
	if x > hi {
		return hi, true
	}
	return x, false
}

// OptimalUpwindAngle searches the table's TWA grid restricted to the
// beating range (TWA < 90) for the TWA maximizing VMG = speed *
// cos(twa) at the given tws. It never returns zero or negative for a
// positive tws: if no upwind angle scores positively, the smallest
// positive grid TWA is returned instead, flagged as extrapolated.
func (t *Table) OptimalUpwindAngle(twsKts float64) (angleDeg float64, extrapolated bool) {
	return t.optimalAngle(twsKts, true)
}

// OptimalDownwindAngle is OptimalUpwindAngle's mirror for the running
// range (TWA > 90).
func (t *Table) OptimalDownwindAngle(twsKts float64) (angleDeg float64, extrapolated bool) {
	return t.optimalAngle(twsKts, false)
}

func (t *Table) optimalAngle(twsKts float64, upwind bool) (float64, bool) {
	bestVMG := 0.0
	bestAngle := 0.0
	found := false
	anyExtrapolated := false

	for _, twa := range t.twa {
		if upwind && twa >= 90 {
			continue
		}
		if !upwind && twa <= 90 {
			continue
		}
		lookup := t.TargetSpeed(twa, twsKts)
		anyExtrapolated = anyExtrapolated || lookup.Extrapolated

		vmg := lookup.SpeedKts * cosDeg(twa)
		if !upwind {
			vmg = -vmg // running VMG is the downwind component
		}
		if vmg > bestVMG {
			bestVMG = vmg
			bestAngle = twa
			found = true
		}
	}

	if !found || bestAngle <= 0 {
		// Guard: never return zero/negative for positive tws.
		for _, twa := range t.twa {
			if upwind && twa > 0 && twa < 90 {
				return twa, true
			}
			if !upwind && twa > 90 {
				return twa, true
			}
		}
		if upwind {
			return 40, true
		}
		return 150, true
	}

	return bestAngle, anyExtrapolated
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}
