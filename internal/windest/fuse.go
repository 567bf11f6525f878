package windest

import (
	"math"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// BayesianFuse combines candidate wind observations using their
// confidences as weights, per spec.md §4.3 step 5. It is a
// homomorphism over confidence scaling: multiplying every confidence
// by a positive constant leaves direction and speed unchanged (only
// the weights' relative proportions matter).
func BayesianFuse(observations []model.WindObservation) (model.WindObservation, error) {
	if len(observations) == 0 {
		return model.WindObservation{}, diag.Insufficient("no observations to fuse")
	}
	if len(observations) == 1 {
		return observations[0], nil
	}

	n := len(observations)
	confidences := make([]float64, n)
	sines := make([]float64, n)
	cosines := make([]float64, n)
	speeds := make([]float64, n)

	var sumW float64
	for i, o := range observations {
		confidences[i] = o.Confidence
		r := o.Direction * math.Pi / 180
		sines[i] = math.Sin(r)
		cosines[i] = math.Cos(r)
		speeds[i] = o.Speed
		sumW += o.Confidence
	}

	weights := confidences
	fuseWeightSum := sumW
	if sumW == 0 {
		weights = make([]float64, n)
		uniform := 1.0 / float64(n)
		for i := range weights {
			weights[i] = uniform
		}
		fuseWeightSum = 1.0
	}

	var sy, sx, speedSum float64
	for i := range observations {
		sy += weights[i] * sines[i]
		sx += weights[i] * cosines[i]
		speedSum += weights[i] * speeds[i]
	}

	direction := geo.WrapDeg(math.Atan2(sy, sx) * 180 / math.Pi)
	speed := speedSum / fuseWeightSum
	confidence := clamp01(sumW / float64(n))

	latestTs := observations[0].Timestamp
	var lat, lon float64
	var maxW = -1.0
	for i, o := range observations {
		if o.Timestamp.After(latestTs) {
			latestTs = o.Timestamp
		}
		if weights[i] > maxW {
			maxW = weights[i]
			lat, lon = o.Lat, o.Lon
		}
	}

	return model.WindObservation{
		Timestamp:    latestTs,
		Lat:          lat,
		Lon:          lon,
		Direction:    direction,
		Speed:        speed,
		Confidence:   confidence,
		SourceMethod: model.SourceBayesian,
	}, nil
}
