package windest

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/polar"
)

// coarseStepDeg and refineStepDeg implement the two-stage grid search
// from spec.md §4.3 step 4: a coarse 45° pass trades roughly a third
// of the candidate evaluations against a 30° pass for negligible
// accuracy loss, then a 10° pass refines around the winner.
const (
	coarseStepDeg = 45.0
	refineStepDeg = 10.0
	refineSpanDeg = 45.0
)

// Estimator runs maneuver-based and VMG-based wind estimation for a
// single boat, with a bounded angle-difference cache shared across
// calls.
type Estimator struct {
	cfg        model.DetectionConfig
	polarTable *polar.Table // optional; nil disables polar-weighted scoring
	cache      *angleDiffCache
	trackCache map[string]float64 // best VMG direction, keyed per track
}

// NewEstimator builds an Estimator. polarTable may be nil.
func NewEstimator(cfg model.DetectionConfig, polarTable *polar.Table) *Estimator {
	return &Estimator{
		cfg:        cfg,
		polarTable: polarTable,
		cache:      newAngleDiffCache(cfg.CacheCapacityAngleDiff),
		trackCache: make(map[string]float64),
	}
}

// relDeg returns |wrap(heading - phi + 180, 360) - 180|, the
// relative-angle magnitude used throughout the grid search, using the
// bounded cache to exploit the search grid's redundancy.
func (e *Estimator) relDeg(heading, phi float64) float64 {
	if v, ok := e.cache.get(heading, phi); ok {
		return v
	}
	rel := math.Abs(geo.WrapDeg(heading-phi+180) - 180)
	e.cache.put(heading, phi, rel)
	return rel
}

// EstimateFromManeuver builds a WindObservation from a single detected
// maneuver: direction bisects the two headings (a boat beats against
// the wind, so the true direction sits on the minor arc between
// them), speed is read off the polar table for the inferred TWA when a
// table is available, otherwise approximated from boat speed alone.
func (e *Estimator) EstimateFromManeuver(m Maneuver) (model.WindObservation, error) {
	if isNaN(m.PreHeadingDeg) || isNaN(m.PostHeadingDeg) {
		return model.WindObservation{}, diag.Insufficient("maneuver has NaN heading")
	}

	windDir := geo.BisectUpwind(m.PreHeadingDeg, m.PostHeadingDeg)
	twa := geo.WrapDeg(geo.DeltaDeg(windDir, m.PreHeadingDeg))

	speed, confidence := e.windSpeedFromPolar(twa, m.BoatSpeed)

	return model.WindObservation{
		Timestamp:    m.Timestamp,
		Lat:          m.Lat,
		Lon:          m.Lon,
		Direction:    windDir,
		Speed:        speed,
		Confidence:   confidence,
		SourceMethod: model.SourceManeuver,
	}, nil
}

// windSpeedFromPolar inverts the polar table: it searches the TWS
// grid for the speed whose target_speed(twa, tws) is closest to the
// observed boat speed. Without a polar table it falls back to a fixed
// boat-speed-to-wind-speed ratio typical of a reaching leg.
func (e *Estimator) windSpeedFromPolar(twa, boatSpeed float64) (speed, confidence float64) {
	if e.polarTable == nil || boatSpeed <= 0 {
		const reachRatio = 0.6 // boat speed / true wind speed, typical reaching
		if boatSpeed <= 0 {
			return 0, 0.3
		}
		return boatSpeed / reachRatio, 0.4
	}

	best := math.MaxFloat64
	bestTWS := 0.0
	for tws := 1.0; tws <= 40; tws += 0.5 {
		lookup := e.polarTable.TargetSpeed(twa, tws)
		d := math.Abs(lookup.SpeedKts - boatSpeed)
		if d < best {
			best = d
			bestTWS = tws
		}
	}
	return bestTWS, 0.7
}

// EstimateFromVMGAnalysis performs the two-stage grid search over
// candidate wind directions described in spec.md §4.3 step 4.
func (e *Estimator) EstimateFromVMGAnalysis(track *model.BoatTrack) (model.WindObservation, error) {
	headings, speeds, ts, lat, lon, err := collectHeadingsSpeeds(track)
	if err != nil {
		return model.WindObservation{}, err
	}
	if len(headings) < 2 {
		return model.WindObservation{}, diag.Insufficient("fewer than two usable heading/speed samples")
	}

	cacheKey := trackCacheKey(track)
	if best, ok := e.trackCache[cacheKey]; ok {
		score := e.scoreCandidate(headings, speeds, best)
		return e.buildVMGObservation(best, score, ts, lat, lon), nil
	}

	bestCoarse, bestCoarseScore := e.bestOverGrid(headings, speeds, 0, 360, coarseStepDeg)
	lo := bestCoarse - refineSpanDeg
	hi := bestCoarse + refineSpanDeg
	bestFine, bestFineScore := e.bestOverGrid(headings, speeds, lo, hi, refineStepDeg)

	best, bestScore := bestCoarse, bestCoarseScore
	if bestFineScore > bestCoarseScore {
		best, bestScore = bestFine, bestFineScore
	}

	e.trackCache[cacheKey] = best
	return e.buildVMGObservation(best, bestScore, ts, lat, lon), nil
}

func (e *Estimator) bestOverGrid(headings, speeds []float64, lo, hi, step float64) (bestPhi, bestScore float64) {
	bestScore = -math.MaxFloat64
	for phi := lo; phi <= hi; phi += step {
		wrapped := geo.WrapDeg(phi)
		score := e.scoreCandidate(headings, speeds, wrapped)
		if score > bestScore {
			bestScore = score
			bestPhi = wrapped
		}
	}
	return bestPhi, bestScore
}

// scoreCandidate scores a candidate wind direction phi by the
// correlation between the relative-angle magnitude of every heading
// to phi and the boat's speed at that point, optionally weighted by a
// polar prior (how plausible the implied TWA/speed pair is for this
// boat class).
func (e *Estimator) scoreCandidate(headings, speeds []float64, phi float64) float64 {
	rel := make([]float64, len(headings))
	for i, h := range headings {
		rel[i] = e.relDeg(h, phi)
	}

	var weights []float64
	if e.polarTable != nil {
		weights = make([]float64, len(headings))
		for i := range rel {
			lookup := e.polarTable.TargetSpeed(rel[i], speeds[i])
			// Points whose observed speed is close to the polar
			// target for the candidate's implied TWA get more say.
			diff := math.Abs(lookup.SpeedKts - speeds[i])
			weights[i] = 1.0 / (1.0 + diff)
		}
	}

	if stat.Variance(rel, weights) == 0 || stat.Variance(speeds, weights) == 0 {
		return -1
	}
	return stat.Correlation(rel, speeds, weights)
}

func (e *Estimator) buildVMGObservation(direction, score float64, ts float64, lat, lon float64) model.WindObservation {
	confidence := clamp01((score + 1) / 2)
	return model.WindObservation{
		Timestamp:    secondsToTime(ts),
		Lat:          lat,
		Lon:          lon,
		Direction:    geo.WrapDeg(direction),
		Speed:        0, // VMG analysis alone estimates direction; speed comes from fusion with a maneuver/external estimate
		Confidence:   confidence,
		SourceMethod: model.SourceVMG,
	}
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

func collectHeadingsSpeeds(track *model.BoatTrack) (headings, speeds []float64, lastTs float64, lat, lon float64, err error) {
	if track == nil || len(track.Points) == 0 {
		return nil, nil, 0, 0, 0, diag.Invalid("track", "track must have at least one point")
	}
	for _, p := range track.Points {
		if isNaN(p.Heading) || !p.Valid {
			continue
		}
		headings = append(headings, p.Heading)
		speeds = append(speeds, p.Speed)
		lastTs = float64(p.Timestamp.UnixNano()) / 1e9
		lat, lon = p.Lat, p.Lon
	}
	return headings, speeds, lastTs, lat, lon, nil
}

func secondsToTime(sec float64) time.Time {
	whole := math.Floor(sec)
	frac := sec - whole
	return time.Unix(int64(whole), int64(frac*1e9))
}

func trackCacheKey(track *model.BoatTrack) string {
	return fmt.Sprintf("%s:%d", track.BoatID, len(track.Points))
}
