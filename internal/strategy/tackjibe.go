package strategy

import (
	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/polar"
	"github.com/windtrace/windtrace/internal/windest"
)

// lossRefKts is the VMG-loss normalization constant used by
// scoreManeuver's 1 - min(1, loss/loss_ref) formula.
const lossRefKts = 2.0

// detectTacksAndJibes runs windest's maneuver detector over track and
// classifies and scores each swing. When field is nil, classification
// falls back to the geometric sign of the heading change (spec.md
// §4.5's "absence of a wind field downgrades the detector to purely
// geometric detection").
func detectTacksAndJibes(track *model.BoatTrack, cfg model.DetectionConfig, polarTable *polar.Table, field FieldProvider, bag *diag.Bag) []model.StrategyPoint {
	maneuvers := windest.DetectManeuvers(track, cfg.MinTackAngleDeg, nil, bag)
	if len(maneuvers) == 0 {
		return nil
	}

	var out []model.StrategyPoint
	for _, m := range maneuvers {
		kind, evaluation := classifyAndScore(m, polarTable, field, bag)
		out = append(out, model.StrategyPoint{
			BoatID:    track.BoatID,
			Timestamp: m.Timestamp,
			Lat:       m.Lat,
			Lon:       m.Lon,
			Kind:      kind,
			Metadata: map[string]float64{
				"pre_heading_deg":  m.PreHeadingDeg,
				"post_heading_deg": m.PostHeadingDeg,
			},
			Importance: 0.5,
			Evaluation: evaluation,
		})
	}
	return out
}

func classifyAndScore(m windest.Maneuver, polarTable *polar.Table, field FieldProvider, bag *diag.Bag) (model.StrategyKind, float64) {
	var windDir *float64
	var tws float64
	if field != nil {
		if f := field(m.Timestamp.UnixNano()); f != nil {
			if d, s, _, ok := SampleField(f, m.Lat, m.Lon); ok {
				windDir = &d
				tws = s
			}
		}
	}

	var kind model.StrategyKind
	if windDir != nil {
		mk, err := windest.ClassifyManeuver(m.PreHeadingDeg, m.PostHeadingDeg, windDir)
		if err != nil {
			if bag != nil {
				bag.Warn("classification_skipped", err.Error())
			}
			kind = geometricKind(m)
		} else {
			kind = maneuverKindToStrategyKind(mk)
		}
	} else {
		if bag != nil {
			bag.Warn("no_wind_field_geometric_fallback", "classifying maneuver without a wind field")
		}
		kind = geometricKind(m)
	}

	evaluation := 0.5
	if windDir != nil && polarTable != nil {
		twa := geo.WrapDeg(geo.DeltaDeg(*windDir, m.PostHeadingDeg))
		target := polarTable.TargetSpeed(twa, tws)
		loss := target.SpeedKts - m.BoatSpeed
		if loss < 0 {
			loss = 0
		}
		evaluation = 1 - minF(1, loss/lossRefKts)
	}

	return kind, evaluation
}

// geometricKind classifies a maneuver as a tack when the heading
// swing crosses bow-first (the shorter arc passes through 0 deg
// relative bearing is not observable without a wind reference, so
// this is a deterministic geometric proxy, not a physical
// measurement): a positive signed delta is called a tack, negative a
// jibe.
func geometricKind(m windest.Maneuver) model.StrategyKind {
	if geo.DeltaDeg(m.PreHeadingDeg, m.PostHeadingDeg) >= 0 {
		return model.StrategyTack
	}
	return model.StrategyJibe
}

func maneuverKindToStrategyKind(k windest.ManeuverKind) model.StrategyKind {
	switch k {
	case windest.ManeuverTack:
		return model.StrategyTack
	case windest.ManeuverJibe:
		return model.StrategyJibe
	case windest.ManeuverBearAway, windest.ManeuverHeadUp:
		// Bear-away / head-up are heading adjustments short of a full
		// tack or jibe; still reported under the nearer of the two
		// canonical kinds by sign of the course change.
		if k == windest.ManeuverBearAway {
			return model.StrategyJibe
		}
		return model.StrategyTack
	default:
		return model.StrategyTack
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
