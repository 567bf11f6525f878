package geo

import "testing"

func TestWrapDeg(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {361, 1}, {-1, 359}, {-361, 359}, {720, 0},
	}
	for _, c := range cases {
		if got := WrapDeg(c.in); got != c.want {
			t.Errorf("WrapDeg(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDeltaDeg(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{0, -180, 180},
		{90, 90, 0},
	}
	for _, c := range cases {
		got := DeltaDeg(c.a, c.b)
		if abs(got-c.want) > 1e-9 {
			t.Errorf("DeltaDeg(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestCircularMeanWeightedWrap(t *testing.T) {
	// Headings symmetric around 0: 350 and 10 should average to 0, not 180.
	mean := CircularMeanWeighted([]float64{350, 10}, []float64{1, 1})
	if abs(mean) > 1e-6 && abs(mean-360) > 1e-6 {
		t.Fatalf("CircularMeanWeighted(350,10) = %v, want ~0", mean)
	}
}

func TestCircularMeanWeightedZeroWeightsFallsBack(t *testing.T) {
	mean := CircularMeanWeighted([]float64{0, 90}, []float64{0, 0})
	want := CircularMeanWeighted([]float64{0, 90}, []float64{1, 1})
	if abs(mean-want) > 1e-9 {
		t.Fatalf("zero-weight fallback = %v, want unweighted mean %v", mean, want)
	}
}

func TestCircularMeanWeightedHomomorphicUnderScaling(t *testing.T) {
	degrees := []float64{10, 200, 90}
	weights := []float64{0.2, 0.5, 0.9}
	base := CircularMeanWeighted(degrees, weights)

	scaled := make([]float64, len(weights))
	for i, w := range weights {
		scaled[i] = w * 7.0
	}
	scaledMean := CircularMeanWeighted(degrees, scaled)
	if abs(base-scaledMean) > 1e-9 {
		t.Fatalf("scaling all weights changed the mean: %v vs %v", base, scaledMean)
	}
}

func TestBisectUpwindSymmetric(t *testing.T) {
	// Classic beating pair around true wind 000.
	wind := BisectUpwind(315, 45)
	if abs(wind) > 1e-6 && abs(wind-360) > 1e-6 {
		t.Fatalf("BisectUpwind(315,45) = %v, want ~0", wind)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
