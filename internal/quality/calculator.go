// Package quality scores a track's completeness, accuracy and
// consistency from its validation findings.
package quality

import (
	"math"
	"sort"

	"github.com/windtrace/windtrace/internal/model"
)

// Summary holds the four aggregate scores of the QualitySummary
// entity, all in [0,100]; it carries no problem counts.
type Summary struct {
	Completeness float64
	Accuracy     float64
	Consistency  float64
	Overall      float64
}

// Calculator scores a single track against its accumulated
// ValidationFindings. It holds no mutable state and is cheap to
// reconstruct; callers may memoize by (findings, len(points)) as the
// results are a pure function of both.
type Calculator struct {
	points   []model.TrackPoint
	findings []model.ValidationFinding
}

// New binds a Calculator to one track's points and findings.
func New(points []model.TrackPoint, findings []model.ValidationFinding) *Calculator {
	return &Calculator{points: points, findings: findings}
}

// Overall computes the four aggregate scores.
func (c *Calculator) Overall() Summary {
	total := len(c.points)
	if total == 0 {
		return Summary{Completeness: 100, Accuracy: 100, Consistency: 100, Overall: 100}
	}

	missing := c.countKind(model.FindingMissing)
	outOfRange := c.countKind(model.FindingOutOfRange)
	spatial := c.countKind(model.FindingSpatialAnomaly)
	temporal := c.countKind(model.FindingTemporalAnomaly)
	duplicate := c.countKind(model.FindingDuplicate)

	completeness := clamp100(100 * (1 - ratio(missing, total)))
	accuracy := clamp100(100 * (1 - ratio(outOfRange, total)))
	consistency := clamp100(100 * (1 - ratio(spatial+temporal+duplicate, total)))
	overall := clamp100(0.3*completeness + 0.3*accuracy + 0.4*consistency)

	return Summary{
		Completeness: completeness,
		Accuracy:     accuracy,
		Consistency:  consistency,
		Overall:      overall,
	}
}

// CategoryScores returns the three category scores keyed by name.
func (c *Calculator) CategoryScores() map[string]float64 {
	s := c.Overall()
	return map[string]float64{
		"completeness": s.Completeness,
		"accuracy":     s.Accuracy,
		"consistency":  s.Consistency,
	}
}

// ProblemIndices returns the set of indices flagged under the given
// kind, deduplicated.
func (c *Calculator) ProblemIndices(kind model.FindingKind) []int {
	seen := make(map[int]struct{})
	for _, f := range c.findings {
		if f.Kind != kind {
			continue
		}
		for _, idx := range f.Indices {
			seen[idx] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// AllProblemIndices returns the union of every finding's indices.
func (c *Calculator) AllProblemIndices() []int {
	seen := make(map[int]struct{})
	for _, f := range c.findings {
		for _, idx := range f.Indices {
			seen[idx] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// TemporalBins buckets points into fixed-width time windows (seconds
// since the first point) and scores each bin's local problem density
// the same way Overall scores the whole track.
func (c *Calculator) TemporalBins(binWidthS float64) map[int]float64 {
	if len(c.points) == 0 || binWidthS <= 0 {
		return map[int]float64{}
	}
	t0 := c.points[0].Timestamp
	binOf := func(p model.TrackPoint) int {
		return int(p.Timestamp.Sub(t0).Seconds() / binWidthS)
	}
	return c.binnedScores(binOf)
}

// SpatialBins buckets points onto a lat/lon grid of the given
// resolution (degrees per cell) and scores each cell.
func (c *Calculator) SpatialBins(gridResolutionDeg float64) map[[2]int]float64 {
	if len(c.points) == 0 || gridResolutionDeg <= 0 {
		return map[[2]int]float64{}
	}

	total := make(map[[2]int]int)
	problem := make(map[[2]int]int)
	problemIdx := c.problemIndexSet()

	cellOf := func(p model.TrackPoint) [2]int {
		return [2]int{
			int(math.Floor(p.Lat / gridResolutionDeg)),
			int(math.Floor(p.Lon / gridResolutionDeg)),
		}
	}

	for i, p := range c.points {
		cell := cellOf(p)
		total[cell]++
		if _, bad := problemIdx[i]; bad {
			problem[cell]++
		}
	}

	out := make(map[[2]int]float64, len(total))
	for cell, n := range total {
		out[cell] = clamp100(100 * (1 - ratio(problem[cell], n)))
	}
	return out
}

func (c *Calculator) binnedScores(binOf func(model.TrackPoint) int) map[int]float64 {
	total := make(map[int]int)
	problem := make(map[int]int)
	problemIdx := c.problemIndexSet()

	for i, p := range c.points {
		bin := binOf(p)
		total[bin]++
		if _, bad := problemIdx[i]; bad {
			problem[bin]++
		}
	}

	out := make(map[int]float64, len(total))
	for bin, n := range total {
		out[bin] = clamp100(100 * (1 - ratio(problem[bin], n)))
	}
	return out
}

func (c *Calculator) problemIndexSet() map[int]struct{} {
	seen := make(map[int]struct{})
	for _, f := range c.findings {
		for _, idx := range f.Indices {
			seen[idx] = struct{}{}
		}
	}
	return seen
}

func (c *Calculator) countKind(kind model.FindingKind) int {
	seen := make(map[int]struct{})
	for _, f := range c.findings {
		if f.Kind != kind {
			continue
		}
		for _, idx := range f.Indices {
			seen[idx] = struct{}{}
		}
	}
	return len(seen)
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
