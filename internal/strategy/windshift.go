package strategy

import (
	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// detectWindShifts scans the wind direction sampled at each track
// point and reports a wind_shift event wherever the direction departs
// from a running baseline by at least minShiftAngleDeg and the
// departure persists for at least minShiftDurationS. Requires a field
// provider; with none, wind-shift detection is skipped with a warning
// (spec.md §4.5).
func detectWindShifts(track *model.BoatTrack, minShiftAngleDeg, minShiftDurationS float64, field FieldProvider, bag *diag.Bag) []model.StrategyPoint {
	if field == nil {
		if bag != nil {
			bag.Warn("wind_shift_skipped_no_field", "no wind field provider; wind-shift detection skipped")
		}
		return nil
	}
	points := track.Points
	if len(points) == 0 {
		return nil
	}

	baseline, _, _, ok := SampleField(field(points[0].Timestamp.UnixNano()), points[0].Lat, points[0].Lon)
	if !ok {
		return nil
	}

	var out []model.StrategyPoint
	i := 1
	for i < len(points) {
		dir, _, _, ok := SampleField(field(points[i].Timestamp.UnixNano()), points[i].Lat, points[i].Lon)
		if !ok {
			i++
			continue
		}
		magnitude := geo.DeltaDeg(baseline, dir)
		if absF(magnitude) >= minShiftAngleDeg {
			// Confirm persistence: the shift must hold for at least
			// minShiftDurationS from this point forward.
			startIdx := i
			persisted := true
			j := i
			for j < len(points) && points[j].Timestamp.Sub(points[startIdx].Timestamp).Seconds() < minShiftDurationS {
				d2, _, _, ok2 := SampleField(field(points[j].Timestamp.UnixNano()), points[j].Lat, points[j].Lon)
				if ok2 && absF(geo.DeltaDeg(baseline, d2)-magnitude) > minShiftAngleDeg {
					persisted = false
					break
				}
				j++
			}
			duration := 0.0
			if j > startIdx {
				duration = points[minInt(j, len(points)-1)].Timestamp.Sub(points[startIdx].Timestamp).Seconds()
			}
			if persisted && duration >= minShiftDurationS {
				out = append(out, model.StrategyPoint{
					BoatID:    track.BoatID,
					Timestamp: points[startIdx].Timestamp,
					Lat:       points[startIdx].Lat,
					Lon:       points[startIdx].Lon,
					Kind:      model.StrategyWindShift,
					Metadata: map[string]float64{
						"before_direction_deg": baseline,
						"after_direction_deg":  dir,
						"magnitude_deg":        magnitude,
						"duration_s":           duration,
					},
					Importance: clamp01(absF(magnitude) / 90),
					Evaluation: 1,
				})
				baseline = dir
				i = j
				continue
			}
		}
		i++
	}
	return out
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
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
