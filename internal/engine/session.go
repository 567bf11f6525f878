// Package engine wires the six detection components into a single
// per-session entry point, following spec.md §2's strictly downstream
// dependency order.
package engine

import (
	"time"

	"github.com/windtrace/windtrace/internal/anomaly"
	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/fusion"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/polar"
	"github.com/windtrace/windtrace/internal/quality"
	"github.com/windtrace/windtrace/internal/strategy"
	"github.com/windtrace/windtrace/internal/windest"
)

// Session is one unit of analysis: a set of boat tracks, polar
// tables, and marks, processed with one DetectionConfig. A Session
// owns its tracks and every derived artifact; nothing holds a
// back-reference into it (spec.md §3's ownership rule).
type Session struct {
	cfg         model.DetectionConfig
	tracks      map[string]*model.BoatTrack
	polarTables map[string]*polar.Table
	marks       []strategy.Mark

	anomalyDetector *anomaly.Detector
	fusionSystem    *fusion.System
}

// New constructs an empty Session bound to cfg.
func New(cfg model.DetectionConfig) *Session {
	return &Session{
		cfg:             cfg,
		tracks:          make(map[string]*model.BoatTrack),
		polarTables:     make(map[string]*polar.Table),
		anomalyDetector: anomaly.New(cfg),
		fusionSystem:    fusion.New(cfg, 0),
	}
}

// Clone returns a new Session with the same config and tracks/polar
// tables/marks, but independent detector caches (spec.md §5).
func (s *Session) Clone() *Session {
	clone := New(s.cfg)
	for id, t := range s.tracks {
		clone.tracks[id] = t
	}
	for class, pt := range s.polarTables {
		clone.polarTables[class] = pt
	}
	clone.marks = append([]strategy.Mark(nil), s.marks...)
	clone.fusionSystem = s.fusionSystem.Clone()
	return clone
}

// AddTrack registers a boat track under the session.
func (s *Session) AddTrack(track *model.BoatTrack) {
	s.tracks[track.BoatID] = track
}

// AddPolarTable registers a polar table for a boat class.
func (s *Session) AddPolarTable(class string, pt model.PolarTable) error {
	tbl, err := polar.NewTable(pt)
	if err != nil {
		return err
	}
	s.polarTables[class] = tbl
	return nil
}

// SetMarks replaces the session's known race marks.
func (s *Session) SetMarks(marks []strategy.Mark) {
	s.marks = marks
}

// CleanResult is the per-track output of CleanTrack: anomaly results
// plus a derived quality summary.
type CleanResult struct {
	BoatID    string
	Anomalies []anomaly.Result
	Quality   quality.Summary
}

// CleanTrack runs AnomalyDetector then QualityMetricsCalculator for
// one boat, in that dependency order.
func (s *Session) CleanTrack(boatID string, method anomaly.Method, bag *diag.Bag) (CleanResult, error) {
	track, ok := s.tracks[boatID]
	if !ok {
		return CleanResult{}, diag.Invalid("boat_id", "no track registered for this boat")
	}

	results, err := s.anomalyDetector.Detect(track, method, bag)
	if err != nil {
		return CleanResult{}, err
	}

	findings := anomalyResultsToFindings(results)
	calc := quality.New(track.Points, findings)

	return CleanResult{BoatID: boatID, Anomalies: results, Quality: calc.Overall()}, nil
}

func anomalyResultsToFindings(results []anomaly.Result) []model.ValidationFinding {
	if len(results) == 0 {
		return nil
	}
	indices := make([]int, len(results))
	for i, r := range results {
		indices[i] = r.Index
	}
	return []model.ValidationFinding{{
		Kind:     model.FindingSpatialAnomaly,
		Severity: model.SeverityWarning,
		Indices:  indices,
	}}
}

// EstimateWind runs maneuver detection, per-maneuver estimation and
// VMG analysis for one boat, then fuses the results via Bayesian
// fusion into a single time-series entry. The resulting observation
// is also inserted into the session's fusion buffer. abort is checked
// once per candidate maneuver window, so a caller can cut the scan
// short on a long track without waiting for it to finish.
func (s *Session) EstimateWind(boatID string, abort *diag.Abort, bag *diag.Bag) (model.WindObservation, error) {
	track, ok := s.tracks[boatID]
	if !ok {
		return model.WindObservation{}, diag.Invalid("boat_id", "no track registered for this boat")
	}

	var polarTable *polar.Table
	if track.PolarClass != "" {
		polarTable = s.polarTables[track.PolarClass]
	}
	estimator := windest.NewEstimator(s.cfg, polarTable)

	maneuvers := windest.DetectManeuvers(track, s.cfg.MinTackAngleDeg, abort, bag)
	var observations []model.WindObservation
	for _, m := range maneuvers {
		obs, err := estimator.EstimateFromManeuver(m)
		if err != nil {
			if bag != nil {
				bag.Warn("maneuver_estimate_skipped", err.Error())
			}
			continue
		}
		observations = append(observations, obs)
	}

	if vmgObs, err := estimator.EstimateFromVMGAnalysis(track); err == nil {
		observations = append(observations, vmgObs)
	} else if bag != nil {
		bag.Warn("vmg_estimate_skipped", err.Error())
	}

	fused, err := windest.BayesianFuse(observations)
	if err != nil {
		return model.WindObservation{}, err
	}

	s.fusionSystem.Insert(fused, bag)
	return fused, nil
}

// InsertExternalObservation feeds an external wind observation
// directly into the fusion buffer.
func (s *Session) InsertExternalObservation(o model.ExternalWindObservation, bag *diag.Bag) {
	confidence := o.Confidence
	if confidence == 0 {
		confidence = 0.8
	}
	s.fusionSystem.Insert(model.WindObservation{
		Timestamp:    o.Timestamp,
		Lat:          o.Lat,
		Lon:          o.Lon,
		Direction:    o.Direction,
		Speed:        o.Speed,
		Confidence:   confidence,
		SourceMethod: model.SourceExternal,
	}, bag)
}

// Field builds a WindField snapshot at ts over bbox.
func (s *Session) Field(ts time.Time, bbox model.BoundingBox, abort *diag.Abort, bag *diag.Bag) *model.WindField {
	return s.fusionSystem.BuildField(ts, bbox, s.cfg.FusionGridNX, s.cfg.FusionGridNY, abort, bag)
}

// DetectStrategy runs StrategyDetector for one boat against the
// session's fusion system.
func (s *Session) DetectStrategy(boatID string, bbox model.BoundingBox, bag *diag.Bag) ([]model.StrategyPoint, error) {
	track, ok := s.tracks[boatID]
	if !ok {
		return nil, diag.Invalid("boat_id", "no track registered for this boat")
	}

	var polarTable *polar.Table
	if track.PolarClass != "" {
		polarTable = s.polarTables[track.PolarClass]
	}

	provider := strategy.FieldProvider(func(tsUnixNano int64) *model.WindField {
		return s.fusionSystem.BuildField(time.Unix(0, tsUnixNano), bbox, s.cfg.FusionGridNX, s.cfg.FusionGridNY, nil, nil)
	})

	detector := strategy.New(s.cfg, polarTable, s.marks)
	return detector.Detect(track, provider, bag)
}
