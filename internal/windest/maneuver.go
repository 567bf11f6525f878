package windest

import (
	"time"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// maneuverWindowS bounds how far detect_maneuvers looks for a
// sustained post-heading once a swing starts.
const maneuverWindowS = 30.0

// sustainPoints is how many consecutive points must hold the
// pre/post heading steady for a swing to count as a maneuver rather
// than noise.
const sustainPoints = 3

// ManeuverKind is the result of classifying a detected heading swing
// against the current wind estimate.
type ManeuverKind string

const (
	ManeuverTack     ManeuverKind = "tack"
	ManeuverJibe     ManeuverKind = "jibe"
	ManeuverBearAway ManeuverKind = "bear-away"
	ManeuverHeadUp   ManeuverKind = "head-up"
)

// Maneuver is a detected heading swing: an interval where the mean
// heading of the points just before it and the mean heading of the
// points just after it differ by at least the configured threshold
// across a short window.
type Maneuver struct {
	StartIdx, EndIdx         int
	Timestamp                time.Time
	Lat, Lon                 float64
	PreHeadingDeg            float64
	PostHeadingDeg           float64
	BoatSpeed                float64
}

// DetectManeuvers scans track for heading swings of at least
// minTackAngleDeg between the circular-mean headings of the
// sustainPoints points on each side, within maneuverWindowS. It does
// not check that the headings on either side hold steady; only their
// means are compared. NaN headings cause the affected window to be
// skipped, not to abort the scan. abort is checked once per candidate
// window; if it fires, the maneuvers found so far are returned.
func DetectManeuvers(track *model.BoatTrack, minTackAngleDeg float64, abort *diag.Abort, bag *diag.Bag) []Maneuver {
	points := track.Points
	n := len(points)
	if n < 2*sustainPoints+1 {
		if bag != nil {
			bag.Warn("too_few_points_for_maneuvers", "track shorter than twice the sustain window")
		}
		return nil
	}

	var out []Maneuver
	i := sustainPoints
	for i < n-sustainPoints {
		if abort.Requested() {
			if bag != nil {
				bag.Warn("maneuver_scan_aborted", "maneuver scan stopped early by caller")
			}
			return out
		}
		pre, ok1 := sustainedHeading(points, i-sustainPoints, i)
		post, ok2 := sustainedHeading(points, i, i+sustainPoints)
		if !ok1 || !ok2 {
			i++
			continue
		}

		if withinWindow(points, i-sustainPoints, i+sustainPoints, maneuverWindowS) &&
			absDeg(geo.DeltaDeg(pre, post)) >= minTackAngleDeg {
			m := Maneuver{
				StartIdx:       i - sustainPoints,
				EndIdx:         i + sustainPoints,
				Timestamp:      points[i].Timestamp,
				Lat:            points[i].Lat,
				Lon:            points[i].Lon,
				PreHeadingDeg:  pre,
				PostHeadingDeg: post,
				BoatSpeed:      points[i].Speed,
			}
			out = append(out, m)
			i += sustainPoints // don't re-detect the same swing
			continue
		}
		i++
	}
	return out
}

// sustainedHeading returns the circular mean heading over [from,to),
// and false when the range is out of bounds or any heading in it is
// NaN. It does not check how far individual headings stray from that
// mean.
func sustainedHeading(points []model.TrackPoint, from, to int) (float64, bool) {
	if from < 0 || to > len(points) || from >= to {
		return 0, false
	}
	degs := make([]float64, 0, to-from)
	weights := make([]float64, 0, to-from)
	for _, p := range points[from:to] {
		if isNaN(p.Heading) {
			return 0, false
		}
		degs = append(degs, p.Heading)
		weights = append(weights, 1)
	}
	return geo.CircularMeanWeighted(degs, weights), true
}

func withinWindow(points []model.TrackPoint, from, to int, maxS float64) bool {
	if from < 0 || to >= len(points) {
		return false
	}
	return points[to].Timestamp.Sub(points[from].Timestamp).Seconds() <= maxS
}

func isNaN(v float64) bool {
	return v != v
}

func absDeg(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ClassifyManeuver determines the maneuver kind from the pre/post
// headings and the current wind estimate. windEstimateDeg is nil when
// no wind estimate is available yet; the (90,90) degenerate pair and
// other zero-swing pairs do not panic: they fall back to the sign of
// the heading relative to the wind.
func ClassifyManeuver(preHeadingDeg, postHeadingDeg float64, windEstimateDeg *float64) (ManeuverKind, error) {
	if windEstimateDeg == nil {
		return "", diag.Insufficient("maneuver classification requires a wind estimate")
	}
	wind := *windEstimateDeg

	preTWA := geo.WrapDeg(geo.DeltaDeg(wind, preHeadingDeg))
	postTWA := geo.WrapDeg(geo.DeltaDeg(wind, postHeadingDeg))

	preUpwind := preTWA <= 90 || preTWA >= 270
	postUpwind := postTWA <= 90 || postTWA >= 270

	delta := geo.DeltaDeg(preHeadingDeg, postHeadingDeg)
	if delta == 0 {
		// Degenerate zero-swing pair such as (90,90): there is no
		// crossing to classify, so fall back to the sign of the
		// heading relative to the wind.
		if geo.DeltaDeg(wind, postHeadingDeg) >= 0 {
			return ManeuverBearAway, nil
		}
		return ManeuverHeadUp, nil
	}

	switch {
	case preUpwind && postUpwind:
		return ManeuverTack, nil
	case !preUpwind && !postUpwind:
		return ManeuverJibe, nil
	case preUpwind && !postUpwind:
		return ManeuverBearAway, nil
	default:
		return ManeuverHeadUp, nil
	}
}
