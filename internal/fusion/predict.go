package fusion

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// metersPerDegLat approximates the meters-per-degree conversion used
// to turn the regression's degrees/second slopes into an advection
// vector in m/s; exact only at the equator, adequate for a
// short-horizon estimate.
const metersPerDegLat = 111320.0

// EstimateAdvection fits a simple linear regression of recent
// observations' lat and lon against time to estimate a constant
// advection velocity (vx east, vy north, in m/s), per spec.md §4.4's
// "simple linear regression of direction-weighted displacement".
// Fewer than two observations yields a zero vector.
func EstimateAdvection(obs []model.WindObservation) [2]float64 {
	if len(obs) < 2 {
		return [2]float64{0, 0}
	}

	t0 := obs[0].Timestamp
	xs := make([]float64, len(obs))
	lats := make([]float64, len(obs))
	lons := make([]float64, len(obs))
	weights := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = o.Timestamp.Sub(t0).Seconds()
		lats[i] = o.Lat
		lons[i] = o.Lon
		weights[i] = o.Confidence
	}

	meanLat := stat.Mean(lats, nil)
	_, slopeLat := stat.LinearRegression(xs, lats, weights, false)
	_, slopeLon := stat.LinearRegression(xs, lons, weights, false)

	vy := slopeLat * metersPerDegLat
	vx := slopeLon * metersPerDegLat * math.Cos(meanLat*math.Pi/180)
	return [2]float64{vx, vy}
}

// Predict translates a base field's cells by advection * dt and
// decays each cell's confidence multiplicatively by
// exp(-dt/predictionDecayS), per spec.md §4.4's short-horizon
// prediction rule. No diffusion is modeled. Each translated cell's
// value is read off the nearest source cell (the grid resolution is
// coarse enough that nearest-neighbor resampling introduces no
// visible artifact relative to the kernel widths already in play).
func Predict(base *model.WindField, targetTs time.Time, advection [2]float64, decayS float64) *model.WindField {
	dt := targetTs.Sub(base.Timestamp).Seconds()
	out := model.NewWindField(targetTs, base.BBox, base.NX, base.NY)
	out.Advection = advection

	dLat := (base.BBox.LatMax - base.BBox.LatMin) / float64(base.NY)
	dLon := (base.BBox.LonMax - base.BBox.LonMin) / float64(base.NX)

	shiftLat := (advection[1] * dt) / metersPerDegLat
	midLat := (base.BBox.LatMin + base.BBox.LatMax) / 2
	shiftLon := (advection[0] * dt) / (metersPerDegLat * math.Cos(midLat*math.Pi/180))

	decay := math.Exp(-dt / decayS)
	if dt < 0 {
		decay = math.Exp(dt / decayS)
	}

	for row := 0; row < base.NY; row++ {
		for col := 0; col < base.NX; col++ {
			srcRow := nearestIndex(row, -shiftLat/dLat, base.NY)
			srcCol := nearestIndex(col, -shiftLon/dLon, base.NX)

			conf := base.Confidence[srcRow][srcCol] * decay
			out.Confidence[row][col] = clamp01(conf)
			out.Direction[row][col] = geo.WrapDeg(base.Direction[srcRow][srcCol])
			out.Speed[row][col] = base.Speed[srcRow][srcCol]
		}
	}
	return out
}

func nearestIndex(i int, shiftCells float64, size int) int {
	j := i + int(math.Round(shiftCells))
	if j < 0 {
		return 0
	}
	if j >= size {
		return size - 1
	}
	return j
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
