package geo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EarthRadiusMeters is the mean Earth radius used for all geodesic
// distance computation in this package.
const EarthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in metres between
// two lat/lon points given in degrees.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinDPhi2 := math.Sin(dPhi / 2)
	sinDLambda2 := math.Sin(dLambda / 2)
	a := sinDPhi2*sinDPhi2 + math.Cos(phi1)*math.Cos(phi2)*sinDLambda2*sinDLambda2
	a = clamp01(a)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
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

// ConsecutiveHaversineMeters returns, for a sequence of n points
// ordered by time, the n-1 great-circle distances between consecutive
// points, in O(n). The consecutive lat/lon deltas are computed with
// gonum/floats elementwise subtraction; the radians conversion and the
// per-pair haversine (with its clamp) are plain loops.
func ConsecutiveHaversineMeters(lat, lon []float64) []float64 {
	n := len(lat)
	if n < 2 || len(lon) != n {
		return nil
	}

	phi := make([]float64, n)
	lambda := make([]float64, n)
	for i := 0; i < n; i++ {
		phi[i] = lat[i] * math.Pi / 180
		lambda[i] = lon[i] * math.Pi / 180
	}

	dPhi := make([]float64, n-1)
	dLambda := make([]float64, n-1)
	floats.SubTo(dPhi, phi[1:], phi[:n-1])
	floats.SubTo(dLambda, lambda[1:], lambda[:n-1])

	dist := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		sinDPhi2 := math.Sin(dPhi[i] / 2)
		sinDLambda2 := math.Sin(dLambda[i] / 2)
		a := sinDPhi2*sinDPhi2 + math.Cos(phi[i])*math.Cos(phi[i+1])*sinDLambda2*sinDLambda2
		a = clamp01(a)
		dist[i] = 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	}
	return dist
}
