package strategy

import (
	"math"

	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/polar"
)

// laylineToleranceDeg is how close the bearing to the mark must be to
// the opposite-tack course to count as "on the layline".
const laylineToleranceDeg = 5.0

// detectLaylines computes, for each sampled track point with a wind
// estimate, the course the boat would need on the opposite tack to
// fetch mk at its optimal upwind angle, then checks whether the
// straight-line bearing from the boat's current position to mk
// matches that course within tolerance (a closed-form intersection in
// a local flat-earth/ENU approximation, adequate at race-course
// scale).
func detectLaylines(track *model.BoatTrack, polarTable *polar.Table, field FieldProvider, marks []Mark) []model.StrategyPoint {
	if polarTable == nil || field == nil || len(marks) == 0 {
		return nil
	}

	var out []model.StrategyPoint
	for _, p := range track.Points {
		f := field(p.Timestamp.UnixNano())
		windDir, windSpeed, _, ok := SampleField(f, p.Lat, p.Lon)
		if !ok {
			continue
		}
		upwindTWA, _ := polarTable.OptimalUpwindAngle(windSpeed)

		courseA := geo.WrapDeg(windDir - upwindTWA)
		courseB := geo.WrapDeg(windDir + upwindTWA)

		oppositeTack := courseB
		if absF(geo.DeltaDeg(p.Heading, courseB)) < absF(geo.DeltaDeg(p.Heading, courseA)) {
			oppositeTack = courseA
		}

		for _, mk := range marks {
			bearing := bearingDeg(p.Lat, p.Lon, mk.Lat, mk.Lon)
			diff := geo.DeltaDeg(bearing, oppositeTack)
			if absF(diff) > laylineToleranceDeg {
				continue
			}
			// The mark must lie upwind of the boat for a layline to be
			// meaningful.
			twaToMark := geo.WrapDeg(geo.DeltaDeg(windDir, bearing))
			if twaToMark > 90 && twaToMark < 270 {
				continue
			}
			out = append(out, model.StrategyPoint{
				BoatID:    track.BoatID,
				Timestamp: p.Timestamp,
				Lat:       p.Lat,
				Lon:       p.Lon,
				Kind:      model.StrategyLayline,
				Metadata: map[string]float64{
					"mark_bearing_deg":   bearing,
					"opposite_tack_deg":  oppositeTack,
					"upwind_twa_deg":     upwindTWA,
				},
				Importance: 0.7,
				Evaluation: clamp01(1 - absF(diff)/laylineToleranceDeg),
			})
		}
	}
	return out
}

// bearingDeg returns the initial bearing in degrees from (lat1,lon1)
// to (lat2,lon2) under a flat-earth approximation, adequate at
// race-course scale.
func bearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := (lon2 - lon1) * math.Cos(lat1*math.Pi/180)
	return geo.WrapDeg(math.Atan2(dLon, dLat) * 180 / math.Pi)
}
