// Package anomaly flags GPS fixes whose implied motion is physically
// implausible, using a single vectorized pass over the track rather
// than a pairwise scan.
package anomaly

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// Method selects which detection algorithm AnomalyDetector runs.
type Method int

const (
	MethodSpeedThreshold Method = iota
	MethodZScore
)

// minDeltaSeconds floors consecutive time deltas to avoid division
// blow-up on near-duplicate timestamps.
const minDeltaSeconds = 0.1

// minSigma floors the standard deviation / MAD used for thresholding
// so a near-constant series never produces a pathologically tight
// threshold.
const minSigma = 0.1

// Result is one flagged point: Index refers to the original,
// unsorted position in the input track.
type Result struct {
	Index int
	Score float64
}

// Detector runs anomaly detection over a BoatTrack. It holds no
// mutable state between calls; it is safe for concurrent use.
type Detector struct {
	cfg model.DetectionConfig
}

// New builds a Detector bound to cfg's SpeedMultiplier.
func New(cfg model.DetectionConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs the given method over track.Points, returning flagged
// indices (into the original, unsorted slice) with a score > 1
// meaning "over threshold". Points with NaN timestamps are treated as
// missing: they are excluded from scoring and reported via bag, never
// scored as anomalous.
func (d *Detector) Detect(track *model.BoatTrack, method Method, bag *diag.Bag) ([]Result, error) {
	if track == nil {
		return nil, diag.Invalid("track", "track must not be nil")
	}
	n := len(track.Points)
	if n < 2 {
		return nil, nil
	}

	order, ts, lat, lon, origIdx := sortByTimestamp(track.Points, bag)
	n = len(order)
	if n < 2 {
		return nil, nil
	}

	dt := consecutiveDeltas(ts)

	switch method {
	case MethodZScore:
		return zScoreResults(lat, lon, origIdx, bag)
	default:
		return speedThresholdResults(lat, lon, dt, origIdx, d.cfg.SpeedMultiplier, bag)
	}
}

// sortByTimestamp returns points ordered by timestamp (NaN timestamps
// excluded and reported), along with parallel seconds/lat/lon slices
// and the original index of each retained point.
func sortByTimestamp(points []model.TrackPoint, bag *diag.Bag) (order []int, ts, lat, lon []float64, origIdx []int) {
	type idxPoint struct {
		idx int
		sec float64
	}
	valid := make([]idxPoint, 0, len(points))
	for i, p := range points {
		sec := float64(p.Timestamp.UnixNano()) / 1e9
		if math.IsNaN(sec) {
			if bag != nil {
				bag.Warn("missing_timestamp", "point excluded: NaN timestamp")
			}
			continue
		}
		valid = append(valid, idxPoint{idx: i, sec: sec})
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].sec < valid[j].sec })

	ts = make([]float64, len(valid))
	lat = make([]float64, len(valid))
	lon = make([]float64, len(valid))
	origIdx = make([]int, len(valid))
	for i, v := range valid {
		ts[i] = v.sec
		lat[i] = points[v.idx].Lat
		lon[i] = points[v.idx].Lon
		origIdx[i] = v.idx
	}
	order = origIdx
	return
}

// consecutiveDeltas computes ts[i+1]-ts[i] in one vectorized pass,
// clamped to a minimum to avoid division blow-up.
func consecutiveDeltas(ts []float64) []float64 {
	n := len(ts)
	if n < 2 {
		return nil
	}
	dt := make([]float64, n-1)
	floats.SubTo(dt, ts[1:], ts[:n-1])
	for i := range dt {
		if dt[i] < minDeltaSeconds {
			dt[i] = minDeltaSeconds
		}
	}
	return dt
}

// speedThresholdResults implements spec.md §4.1's speed method: mean +
// k*sigma thresholding over consecutive-point speeds.
func speedThresholdResults(lat, lon, dt []float64, origIdx []int, k float64, bag *diag.Bag) ([]Result, error) {
	dist := geo.ConsecutiveHaversineMeters(lat, lon)
	if dist == nil {
		return nil, nil
	}

	speeds := make([]float64, len(dist))
	floats.DivTo(speeds, dist, dt)

	positive := make([]float64, 0, len(speeds))
	for _, s := range speeds {
		if s > 0 {
			positive = append(positive, s)
		}
	}
	if len(positive) == 0 {
		if bag != nil {
			bag.Warn("all_zero_speed", "no positive consecutive speeds; sigma defaulted")
		}
		return nil, nil
	}

	mean := stat.Mean(positive, nil)
	sigma := stat.StdDev(positive, nil)
	if sigma < minSigma {
		sigma = minSigma
	}
	threshold := mean + k*sigma
	if threshold <= 0 {
		return nil, nil
	}

	var out []Result
	// speeds[i] is the speed arriving AT point i+1 (in sorted order);
	// attribute the anomaly to the arrival point.
	for i, s := range speeds {
		if s > threshold {
			out = append(out, Result{Index: origIdx[i+1], Score: s / threshold})
		}
	}
	return out, nil
}

// zScoreResults implements spec.md §4.1's z-score method: identical
// pipeline using distance alone, scored by |d-median(d)|/MAD(d).
func zScoreResults(lat, lon []float64, origIdx []int, bag *diag.Bag) ([]Result, error) {
	dist := geo.ConsecutiveHaversineMeters(lat, lon)
	if dist == nil {
		return nil, nil
	}

	sorted := append([]float64(nil), dist...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	absDev := make([]float64, len(dist))
	for i, d := range dist {
		absDev[i] = math.Abs(d - median)
	}
	sortedDev := append([]float64(nil), absDev...)
	sort.Float64s(sortedDev)
	mad := stat.Quantile(0.5, stat.Empirical, sortedDev, nil)
	if mad < minSigma {
		mad = minSigma
		if bag != nil {
			bag.Warn("mad_floored", "median absolute deviation floored to avoid division blow-up")
		}
	}

	var out []Result
	for i, d := range dist {
		score := math.Abs(d-median) / mad
		if score > 1 {
			out = append(out, Result{Index: origIdx[i+1], Score: score})
		}
	}
	return out, nil
}
