package quality

import (
	"testing"
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

func pointsN(n int) []model.TrackPoint {
	base := time.Unix(1_700_000_000, 0)
	out := make([]model.TrackPoint, n)
	for i := range out {
		out[i] = model.TrackPoint{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Lat:       50 + float64(i)*0.0001,
			Lon:       -1 + float64(i)*0.0001,
			Valid:     true,
		}
	}
	return out
}

func TestOverallEmptyYields100(t *testing.T) {
	c := New(nil, nil)
	s := c.Overall()
	if s.Completeness != 100 || s.Accuracy != 100 || s.Consistency != 100 || s.Overall != 100 {
		t.Fatalf("empty input should score 100 everywhere, got %+v", s)
	}
}

func TestOverallFormulaExact(t *testing.T) {
	points := pointsN(100)
	findings := []model.ValidationFinding{
		{Kind: model.FindingMissing, Indices: []int{1, 2, 3, 4, 5}},       // 5 missing
		{Kind: model.FindingOutOfRange, Indices: []int{10, 11}},           // 2 out of range
		{Kind: model.FindingSpatialAnomaly, Indices: []int{20}},           // 1 spatial
		{Kind: model.FindingTemporalAnomaly, Indices: []int{21}},         // 1 temporal
		{Kind: model.FindingDuplicate, Indices: []int{22}},               // 1 duplicate
	}
	c := New(points, findings)
	s := c.Overall()

	wantCompleteness := 100 * (1 - 5.0/100)
	wantAccuracy := 100 * (1 - 2.0/100)
	wantConsistency := 100 * (1 - 3.0/100)
	wantOverall := 0.3*wantCompleteness + 0.3*wantAccuracy + 0.4*wantConsistency

	if abs(s.Completeness-wantCompleteness) > 1e-9 {
		t.Errorf("Completeness = %v, want %v", s.Completeness, wantCompleteness)
	}
	if abs(s.Accuracy-wantAccuracy) > 1e-9 {
		t.Errorf("Accuracy = %v, want %v", s.Accuracy, wantAccuracy)
	}
	if abs(s.Consistency-wantConsistency) > 1e-9 {
		t.Errorf("Consistency = %v, want %v", s.Consistency, wantConsistency)
	}
	if abs(s.Overall-wantOverall) > 1e-9 {
		t.Errorf("Overall = %v, want %v (exact formula from spec)", s.Overall, wantOverall)
	}
}

func TestProblemIndicesDeduplicatesAndSorts(t *testing.T) {
	findings := []model.ValidationFinding{
		{Kind: model.FindingMissing, Indices: []int{5, 2, 2}},
		{Kind: model.FindingMissing, Indices: []int{2, 9}},
	}
	c := New(pointsN(10), findings)
	got := c.ProblemIndices(model.FindingMissing)
	want := []int{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTemporalBinsScoresEachWindow(t *testing.T) {
	points := pointsN(120)
	findings := []model.ValidationFinding{
		{Kind: model.FindingSpatialAnomaly, Indices: []int{5}},
	}
	c := New(points, findings)
	bins := c.TemporalBins(60) // 60s bins -> points[0..59] in bin 0, [60..119] in bin 1
	if len(bins) != 2 {
		t.Fatalf("expected 2 bins, got %d: %v", len(bins), bins)
	}
	if bins[0] >= 100 {
		t.Errorf("bin 0 should be penalized for its anomaly, got %v", bins[0])
	}
	if bins[1] != 100 {
		t.Errorf("bin 1 has no problems, want 100, got %v", bins[1])
	}
}

func TestSpatialBinsCoarseResolution(t *testing.T) {
	points := pointsN(50)
	c := New(points, nil)
	bins := c.SpatialBins(1.0) // 1-degree cells: all points fall in same cell
	if len(bins) != 1 {
		t.Fatalf("expected all points in one spatial cell, got %d", len(bins))
	}
	for _, v := range bins {
		if v != 100 {
			t.Errorf("no findings, expected 100, got %v", v)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
