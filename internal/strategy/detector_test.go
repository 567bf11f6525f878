package strategy

import (
	"testing"
	"time"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/model"
)

func beatingTrackStrategy() *model.BoatTrack {
	base := time.Unix(1_700_000_000, 0)
	var points []model.TrackPoint
	heading := 315.0
	lat, lon := 50.0, -1.0
	for leg := 0; leg < 6; leg++ {
		for i := 0; i < 60; i++ {
			points = append(points, model.TrackPoint{
				Timestamp: base.Add(time.Duration(leg*60+i) * time.Second),
				Lat:       lat,
				Lon:       lon,
				Speed:     2.5,
				Heading:   heading,
				Valid:     true,
			})
			lat += 0.00005
		}
		if heading == 315.0 {
			heading = 45.0
		} else {
			heading = 315.0
		}
	}
	return &model.BoatTrack{BoatID: "b1", Points: points}
}

func uniformField(ts time.Time) *model.WindField {
	bbox := model.BoundingBox{LatMin: 49.9, LonMin: -1.1, LatMax: 50.2, LonMax: -0.9}
	f := model.NewWindField(ts, bbox, 4, 4)
	for r := range f.Confidence {
		for c := range f.Confidence[r] {
			f.Confidence[r][c] = 1
			f.Direction[r][c] = 0
			f.Speed[r][c] = 10
		}
	}
	return f
}

func TestDetectTacksOnBeatingLeg(t *testing.T) {
	track := beatingTrackStrategy()
	provider := func(tsNano int64) *model.WindField {
		return uniformField(time.Unix(0, tsNano))
	}
	d := New(model.DefaultDetectionConfig(), nil, nil)
	points, err := d.Detect(track, provider, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foundTack := false
	for _, p := range points {
		if p.Kind == model.StrategyTack && p.Evaluation > 0.3 {
			foundTack = true
		}
	}
	if !foundTack {
		t.Fatalf("expected at least one tack, got %v", points)
	}
}

func TestDetectNoWindFieldFallsBackToGeometric(t *testing.T) {
	track := beatingTrackStrategy()
	d := New(model.DefaultDetectionConfig(), nil, nil)
	bag := diag.NewBag()
	points, err := d.Detect(track, nil, bag)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range points {
		if p.Kind != model.StrategyTack && p.Kind != model.StrategyJibe {
			t.Fatalf("expected only tack/jibe kinds without a wind field, got %v", p.Kind)
		}
	}
}

func TestOutputSortedNoDuplicateKey(t *testing.T) {
	track := beatingTrackStrategy()
	provider := func(tsNano int64) *model.WindField {
		return uniformField(time.Unix(0, tsNano))
	}
	d := New(model.DefaultDetectionConfig(), nil, nil)
	points, err := d.Detect(track, provider, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			t.Fatalf("output not sorted by timestamp at index %d", i)
		}
	}
	seen := make(map[string]bool)
	for _, p := range points {
		key := string(p.Kind) + "|" + p.Timestamp.String() + "|" + coordKey(p.Lat, p.Lon)
		if seen[key] {
			t.Fatalf("duplicate (kind,timestamp,lat,lon) key: %s", key)
		}
		seen[key] = true
	}
}

func TestDetectMarkRoundingNearMark(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	points := make([]model.TrackPoint, 20)
	heading := 90.0
	for i := range points {
		if i == 10 {
			heading = 200.0
		}
		points[i] = model.TrackPoint{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Lat:       50.0,
			Lon:       -1.0,
			Heading:   heading,
			Valid:     true,
		}
	}
	track := &model.BoatTrack{BoatID: "b1", Points: points}
	marks := []Mark{{Name: "windward", Lat: 50.0, Lon: -1.0}}
	d := New(model.DefaultDetectionConfig(), nil, marks)
	points2, err := d.Detect(track, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, p := range points2 {
		if p.Kind == model.StrategyMarkRounding {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a mark_rounding event, got %v", points2)
	}
}

func coordKey(lat, lon float64) string {
	return time.Unix(int64(lat*1e6), int64(lon*1e6)).String()
}
