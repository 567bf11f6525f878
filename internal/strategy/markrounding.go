package strategy

import (
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// markProximityM and headingSwingWindowPoint bound how close to a
// mark, and over how many points, a heading change must occur to
// count as a rounding.
const (
	markProximityM          = 50.0
	headingSwingWindowPoint = 5
)

// detectMarkRoundings flags proximity to a known mark combined with a
// heading change >= 45 deg within a short window.
func detectMarkRoundings(track *model.BoatTrack, marks []Mark) []model.StrategyPoint {
	if len(marks) == 0 {
		return nil
	}
	points := track.Points
	var out []model.StrategyPoint

	for i := headingSwingWindowPoint; i < len(points)-headingSwingWindowPoint; i++ {
		p := points[i]
		for _, mk := range marks {
			d := geo.HaversineMeters(p.Lat, p.Lon, mk.Lat, mk.Lon)
			if d > markProximityM {
				continue
			}
			pre := points[i-headingSwingWindowPoint].Heading
			post := points[i+headingSwingWindowPoint].Heading
			swing := geo.DeltaDeg(pre, post)
			if absF(swing) < 45 {
				continue
			}
			out = append(out, model.StrategyPoint{
				BoatID:    track.BoatID,
				Timestamp: p.Timestamp,
				Lat:       p.Lat,
				Lon:       p.Lon,
				Kind:      model.StrategyMarkRounding,
				Metadata: map[string]float64{
					"distance_to_mark_m": d,
					"heading_swing_deg":  swing,
				},
				Importance: 0.8,
				Evaluation: clamp01(1 - d/markProximityM),
			})
		}
	}
	return out
}
