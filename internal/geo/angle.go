// Package geo centralises angle and geodesic math so no other package
// hand-rolls modular-angle arithmetic, per the design note in spec §9
// ("Angle math is centralized in a small module exposing wrap_deg,
// delta_deg, circular_mean_weighted").
package geo

import "math"

// WrapDeg wraps deg into [0, 360).
func WrapDeg(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// DeltaDeg returns the signed shortest angular distance from a to b,
// in (-180, 180]. A positive result means b is clockwise of a.
func DeltaDeg(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// CircularMeanWeighted computes the weighted circular mean of degrees
// (each in any real range) using atan2(Σ w·sin, Σ w·cos), wrapped into
// [0, 360). If all weights are zero, it falls back to an unweighted
// mean. Empty or mismatched-length slices return 0.
func CircularMeanWeighted(degrees, weights []float64) float64 {
	if len(degrees) == 0 || len(degrees) != len(weights) {
		return 0
	}

	var sumW float64
	for _, w := range weights {
		sumW += w
	}

	effWeights := weights
	if sumW == 0 {
		effWeights = make([]float64, len(weights))
		for i := range effWeights {
			effWeights[i] = 1
		}
	}

	var sx, sy float64
	for i, d := range degrees {
		r := d * math.Pi / 180
		w := effWeights[i]
		sx += w * math.Cos(r)
		sy += w * math.Sin(r)
	}

	mean := math.Atan2(sy, sx) * 180 / math.Pi
	return WrapDeg(mean)
}

// BisectUpwind returns the wind direction bisecting two beating
// headings. A boat beating upwind holds a roughly constant, acute true
// wind angle on each tack, so the wind sits on the minor arc between
// the two headings — the circular mean computed on the shorter side,
// as opposed to its antipodal point 180° away, which would bisect a
// pair of downwind (jibing) headings instead.
func BisectUpwind(headingA, headingB float64) float64 {
	return CircularMeanWeighted([]float64{headingA, headingB}, []float64{1, 1})
}
