package strategy

import (
	"sort"

	"github.com/google/uuid"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/polar"
)

// dedupWindowS and dedupRadiusM bound the spatio-temporal
// neighborhood the terminal duplicate-removal pass uses.
const (
	dedupWindowS = 10.0
	dedupRadiusM = 25.0
	overlapFraction = 0.5
)

// Detector locates strategically significant events in a track,
// optionally informed by a fused wind field and a set of known marks.
type Detector struct {
	cfg        model.DetectionConfig
	polarTable *polar.Table
	marks      []Mark
}

// New builds a Detector. polarTable and marks may both be nil/empty;
// detection degrades gracefully per spec.md §4.5.
func New(cfg model.DetectionConfig, polarTable *polar.Table, marks []Mark) *Detector {
	return &Detector{cfg: cfg, polarTable: polarTable, marks: marks}
}

// Detect runs every detection rule over track, tie-breaks overlapping
// same-kind candidates, removes near-duplicates, and returns the
// surviving points sorted by timestamp.
func (d *Detector) Detect(track *model.BoatTrack, field FieldProvider, bag *diag.Bag) ([]model.StrategyPoint, error) {
	if track == nil {
		return nil, diag.Invalid("track", "track must not be nil")
	}
	if len(track.Points) == 0 {
		return nil, nil
	}

	var points []model.StrategyPoint
	points = append(points, detectTacksAndJibes(track, d.cfg, d.polarTable, field, bag)...)
	points = append(points, detectWindShifts(track, d.cfg.MinShiftAngleDeg, d.cfg.MinShiftDuration, field, bag)...)
	points = append(points, detectLaylines(track, d.polarTable, field, d.marks)...)
	points = append(points, detectMarkRoundings(track, d.marks)...)

	points = tieBreak(points)
	points = dedup(points)

	for i := range points {
		if points[i].ID == "" {
			points[i].ID = uuid.NewString()
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// tieBreak drops the lower-scoring of any two same-kind candidates
// whose time windows overlap by more than overlapFraction.
func tieBreak(points []model.StrategyPoint) []model.StrategyPoint {
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

	keep := make([]bool, len(points))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(points); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(points); j++ {
			if !keep[j] || points[i].Kind != points[j].Kind {
				continue
			}
			gap := points[j].Timestamp.Sub(points[i].Timestamp).Seconds()
			if gap > dedupWindowS*2 {
				break
			}
			if overlapsEnough(points[i], points[j]) {
				if points[i].Evaluation >= points[j].Evaluation {
					keep[j] = false
				} else {
					keep[i] = false
				}
			}
		}
	}

	var out []model.StrategyPoint
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func overlapsEnough(a, b model.StrategyPoint) bool {
	gap := absF(b.Timestamp.Sub(a.Timestamp).Seconds())
	return gap < dedupWindowS*overlapFraction
}

// dedup discards any point whose (kind, position, time) falls within a
// small spatio-temporal neighborhood of a higher-scoring peer.
func dedup(points []model.StrategyPoint) []model.StrategyPoint {
	keep := make([]bool, len(points))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(points); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(points); j++ {
			if !keep[j] || points[i].Kind != points[j].Kind {
				continue
			}
			dt := absF(points[j].Timestamp.Sub(points[i].Timestamp).Seconds())
			if dt > dedupWindowS {
				continue
			}
			d := geo.HaversineMeters(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon)
			if d > dedupRadiusM {
				continue
			}
			if points[i].Evaluation >= points[j].Evaluation {
				keep[j] = false
			} else {
				keep[i] = false
			}
		}
	}

	var out []model.StrategyPoint
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}
