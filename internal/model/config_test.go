package model

import (
	"testing"
	"time"
)

func TestDefaultDetectionConfigValidates(t *testing.T) {
	if err := DefaultDetectionConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestDetectionConfigBuilderChaining(t *testing.T) {
	c := DefaultDetectionConfig().
		WithSpeedMultiplier(2.5).
		WithMinTackAngleDeg(45).
		WithFusionGrid(10, 15).
		WithCacheCapacities(256, 32)

	if c.SpeedMultiplier != 2.5 {
		t.Errorf("SpeedMultiplier = %v, want 2.5", c.SpeedMultiplier)
	}
	if c.MinTackAngleDeg != 45 {
		t.Errorf("MinTackAngleDeg = %v, want 45", c.MinTackAngleDeg)
	}
	if c.FusionGridNX != 10 || c.FusionGridNY != 15 {
		t.Errorf("FusionGrid = (%v,%v), want (10,15)", c.FusionGridNX, c.FusionGridNY)
	}
	if c.CacheCapacityAngleDiff != 256 || c.CacheCapacityField != 32 {
		t.Errorf("cache capacities = (%v,%v), want (256,32)", c.CacheCapacityAngleDiff, c.CacheCapacityField)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("modified config should still validate, got %v", err)
	}
}

func TestDetectionConfigValidateRejectsOutOfRange(t *testing.T) {
	cases := []DetectionConfig{
		DefaultDetectionConfig().WithSpeedMultiplier(-1),
		DefaultDetectionConfig().WithMinTackAngleDeg(10),
		DefaultDetectionConfig().WithMinTackAngleDeg(130),
		DefaultDetectionConfig().WithMinShiftAngleDeg(0),
		DefaultDetectionConfig().WithFusionGrid(0, 5),
		DefaultDetectionConfig().WithFusionSigma(0, 10),
		DefaultDetectionConfig().WithPredictionDecayS(-5),
		DefaultDetectionConfig().WithCacheCapacities(0, 1),
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error, got nil", i)
		}
	}
}

func TestNewWindFieldShape(t *testing.T) {
	f := NewWindField(time.Now(), BoundingBox{LatMin: 0, LonMin: 0, LatMax: 1, LonMax: 1}, 4, 3)
	if f.NX != 4 || f.NY != 3 {
		t.Fatalf("NX/NY = %v/%v, want 4/3", f.NX, f.NY)
	}
	if len(f.Direction) != 3 || len(f.Direction[0]) != 4 {
		t.Fatalf("Direction shape = %dx%d, want 3x4", len(f.Direction), len(f.Direction[0]))
	}
	if len(f.Speed) != 3 || len(f.Confidence) != 3 {
		t.Fatalf("Speed/Confidence rows mismatch")
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			if f.Confidence[r][c] != 0 {
				t.Fatalf("expected zeroed confidence at (%d,%d)", r, c)
			}
		}
	}
}
