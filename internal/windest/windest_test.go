package windest

import (
	"math"
	"testing"
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

func beatingTrack() *model.BoatTrack {
	base := time.Unix(1_700_000_000, 0)
	var points []model.TrackPoint
	heading := 315.0
	for leg := 0; leg < 6; leg++ {
		for i := 0; i < 60; i++ {
			points = append(points, model.TrackPoint{
				Timestamp: base.Add(time.Duration(leg*60+i) * time.Second),
				Lat:       50 + float64(leg*60+i)*0.0001,
				Lon:       -1,
				Speed:     2.5,
				Heading:   heading,
				Valid:     true,
			})
		}
		if heading == 315.0 {
			heading = 45.0
		} else {
			heading = 315.0
		}
	}
	return &model.BoatTrack{BoatID: "beater", Points: points}
}

func TestDetectManeuversFindsTackTransitions(t *testing.T) {
	track := beatingTrack()
	maneuvers := DetectManeuvers(track, 30, nil, nil)
	if len(maneuvers) == 0 {
		t.Fatalf("expected at least one maneuver on an alternating-heading track")
	}
}

func TestDetectManeuversTooShortTrackYieldsEmpty(t *testing.T) {
	track := &model.BoatTrack{Points: []model.TrackPoint{{Valid: true}, {Valid: true}}}
	if got := DetectManeuvers(track, 30, nil, nil); got != nil {
		t.Fatalf("expected nil for a too-short track, got %v", got)
	}
}

func TestClassifyManeuverDegeneratePairDoesNotPanic(t *testing.T) {
	wind := 0.0
	kind, err := ClassifyManeuver(90, 90, &wind)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != ManeuverBearAway && kind != ManeuverHeadUp {
		t.Fatalf("expected a fallback classification, got %v", kind)
	}
}

func TestClassifyManeuverNilWindEstimateIsInsufficient(t *testing.T) {
	_, err := ClassifyManeuver(315, 45, nil)
	if err == nil {
		t.Fatalf("expected an error when wind estimate is absent")
	}
}

func TestClassifyManeuverTackAndJibe(t *testing.T) {
	wind := 0.0
	kind, err := ClassifyManeuver(315, 45, &wind)
	if err != nil || kind != ManeuverTack {
		t.Fatalf("expected tack, got %v (err=%v)", kind, err)
	}
	kind, err = ClassifyManeuver(135, 225, &wind)
	if err != nil || kind != ManeuverJibe {
		t.Fatalf("expected jibe, got %v (err=%v)", kind, err)
	}
}

func TestEstimateFromManeuverBisectsHeadings(t *testing.T) {
	e := NewEstimator(model.DefaultDetectionConfig(), nil)
	m := Maneuver{
		Timestamp:      time.Now(),
		PreHeadingDeg:  315,
		PostHeadingDeg: 45,
		BoatSpeed:      2.5,
	}
	obs, err := e.EstimateFromManeuver(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(obs.Direction) > 5 && math.Abs(obs.Direction-360) > 5 {
		t.Fatalf("expected direction near 0, got %v", obs.Direction)
	}
}

func TestEstimateFromVMGAnalysisBeatingLeg(t *testing.T) {
	e := NewEstimator(model.DefaultDetectionConfig(), nil)
	track := beatingTrack()
	obs, err := e.EstimateFromVMGAnalysis(track)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Confidence < 0 || obs.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", obs.Confidence)
	}
}

func TestEstimateFromVMGAnalysisTooFewPoints(t *testing.T) {
	e := NewEstimator(model.DefaultDetectionConfig(), nil)
	track := &model.BoatTrack{Points: []model.TrackPoint{{Valid: true, Heading: 10}}}
	_, err := e.EstimateFromVMGAnalysis(track)
	if err == nil {
		t.Fatalf("expected InsufficientData error for a single-point track")
	}
}

func TestBayesianFuseConfidenceHomomorphism(t *testing.T) {
	obs := []model.WindObservation{
		{Direction: 350, Speed: 10, Confidence: 0.9},
		{Direction: 10, Speed: 12, Confidence: 0.1},
	}
	base, err := BayesianFuse(obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scaled := make([]model.WindObservation, len(obs))
	for i, o := range obs {
		scaled[i] = o
		scaled[i].Confidence *= 7.0
	}
	scaledFused, err := BayesianFuse(scaled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(base.Direction-scaledFused.Direction) > 1e-9 {
		t.Fatalf("direction changed under confidence scaling: %v vs %v", base.Direction, scaledFused.Direction)
	}
	if math.Abs(base.Speed-scaledFused.Speed) > 1e-9 {
		t.Fatalf("speed changed under confidence scaling: %v vs %v", base.Speed, scaledFused.Speed)
	}
}

func TestBayesianFuseSparseObservationsMatchesScenario(t *testing.T) {
	obs := []model.WindObservation{
		{Direction: 350, Speed: 10, Confidence: 0.9},
		{Direction: 10, Speed: 10, Confidence: 0.1},
	}
	fused, err := BayesianFuse(obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := math.Abs(fused.Direction - 354); d > 5 && math.Abs(fused.Direction-354-360) > 5 {
		t.Fatalf("expected direction within 5 deg of 354, got %v", fused.Direction)
	}
	if math.Abs(fused.Confidence-0.5) > 0.05 {
		t.Fatalf("expected confidence near 0.5, got %v", fused.Confidence)
	}
}

func TestBayesianFuseEmptyIsInsufficient(t *testing.T) {
	_, err := BayesianFuse(nil)
	if err == nil {
		t.Fatalf("expected InsufficientData error for empty input")
	}
}

func TestBayesianFuseSingleElementPassthrough(t *testing.T) {
	obs := []model.WindObservation{{Direction: 42, Speed: 5, Confidence: 0.8}}
	fused, err := BayesianFuse(obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fused != obs[0] {
		t.Fatalf("single-element fuse should pass through unchanged, got %+v", fused)
	}
}

func TestAngleDiffCacheEvictsOldest(t *testing.T) {
	c := newAngleDiffCache(2)
	c.put(1, 2, 10)
	c.put(3, 4, 20)
	c.put(5, 6, 30) // evicts (1,2)
	if _, ok := c.get(1, 2); ok {
		t.Fatalf("expected (1,2) to have been evicted")
	}
	if v, ok := c.get(3, 4); !ok || v != 20 {
		t.Fatalf("expected (3,4)=20 still cached, got %v,%v", v, ok)
	}
	if c.len() != 2 {
		t.Fatalf("expected cache length capped at 2, got %d", c.len())
	}
}
