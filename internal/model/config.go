package model

import "fmt"

// DetectionConfig carries every tunable the engine recognises. It has
// no file, env, or CLI binding of its own; callers build one with
// DefaultDetectionConfig and the With* setters, per §6's list of
// recognised options.
type DetectionConfig struct {
	// Anomaly detection
	SpeedMultiplier float64 // threshold = mean + k*sigma, k >= 0

	// Maneuver / wind estimation
	MinTackAngleDeg   float64 // 15-120
	MinShiftAngleDeg  float64
	MinShiftDuration  float64 // seconds

	// Fusion
	FusionHalfWindowS     float64
	FusionGridNX          int
	FusionGridNY          int
	FusionSigmaSpatialM   float64
	FusionSigmaTemporalS  float64
	PredictionDecayS      float64 // tau

	// Caches
	CacheCapacityAngleDiff int
	CacheCapacityField     int
}

// DefaultDetectionConfig returns the documented defaults for every
// field, matching §6 of the recognised-options table.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		SpeedMultiplier: 3.0,

		MinTackAngleDeg:  30,
		MinShiftAngleDeg: 5,
		MinShiftDuration: 60,

		FusionHalfWindowS:    300,
		FusionGridNX:         20,
		FusionGridNY:         20,
		FusionSigmaSpatialM:  500,
		FusionSigmaTemporalS: 120,
		PredictionDecayS:     600,

		CacheCapacityAngleDiff: 1024,
		CacheCapacityField:     64,
	}
}

// WithSpeedMultiplier sets the anomaly-detector sigma multiplier.
func (c DetectionConfig) WithSpeedMultiplier(k float64) DetectionConfig {
	c.SpeedMultiplier = k
	return c
}

// WithMinTackAngleDeg sets the minimum heading swing to register a maneuver.
func (c DetectionConfig) WithMinTackAngleDeg(deg float64) DetectionConfig {
	c.MinTackAngleDeg = deg
	return c
}

// WithMinShiftAngleDeg sets the wind-shift detection angle threshold.
func (c DetectionConfig) WithMinShiftAngleDeg(deg float64) DetectionConfig {
	c.MinShiftAngleDeg = deg
	return c
}

// WithMinShiftDuration sets the minimum persistence duration, in
// seconds, for a wind shift.
func (c DetectionConfig) WithMinShiftDuration(s float64) DetectionConfig {
	c.MinShiftDuration = s
	return c
}

// WithFusionHalfWindowS sets the temporal radius for observation inclusion.
func (c DetectionConfig) WithFusionHalfWindowS(s float64) DetectionConfig {
	c.FusionHalfWindowS = s
	return c
}

// WithFusionGrid sets the field resolution.
func (c DetectionConfig) WithFusionGrid(nx, ny int) DetectionConfig {
	c.FusionGridNX = nx
	c.FusionGridNY = ny
	return c
}

// WithFusionSigma sets the spatial and temporal kernel widths.
func (c DetectionConfig) WithFusionSigma(spatialM, temporalS float64) DetectionConfig {
	c.FusionSigmaSpatialM = spatialM
	c.FusionSigmaTemporalS = temporalS
	return c
}

// WithPredictionDecayS sets the confidence-decay time constant tau.
func (c DetectionConfig) WithPredictionDecayS(s float64) DetectionConfig {
	c.PredictionDecayS = s
	return c
}

// WithCacheCapacities sets the bounded cache sizes.
func (c DetectionConfig) WithCacheCapacities(angleDiff, field int) DetectionConfig {
	c.CacheCapacityAngleDiff = angleDiff
	c.CacheCapacityField = field
	return c
}

// Validate range-checks every field, returning the first violation
// found.
func (c DetectionConfig) Validate() error {
	if c.SpeedMultiplier < 0 {
		return fmt.Errorf("speed_multiplier must be >= 0, got %v", c.SpeedMultiplier)
	}
	if c.MinTackAngleDeg < 15 || c.MinTackAngleDeg > 120 {
		return fmt.Errorf("min_tack_angle must be in [15,120], got %v", c.MinTackAngleDeg)
	}
	if c.MinShiftAngleDeg <= 0 {
		return fmt.Errorf("min_shift_angle must be > 0, got %v", c.MinShiftAngleDeg)
	}
	if c.MinShiftDuration <= 0 {
		return fmt.Errorf("min_shift_duration must be > 0, got %v", c.MinShiftDuration)
	}
	if c.FusionHalfWindowS <= 0 {
		return fmt.Errorf("fusion_half_window_s must be > 0, got %v", c.FusionHalfWindowS)
	}
	if c.FusionGridNX <= 0 || c.FusionGridNY <= 0 {
		return fmt.Errorf("fusion_grid_nx/ny must be > 0, got %v/%v", c.FusionGridNX, c.FusionGridNY)
	}
	if c.FusionSigmaSpatialM <= 0 || c.FusionSigmaTemporalS <= 0 {
		return fmt.Errorf("fusion sigma parameters must be > 0, got spatial=%v temporal=%v",
			c.FusionSigmaSpatialM, c.FusionSigmaTemporalS)
	}
	if c.PredictionDecayS <= 0 {
		return fmt.Errorf("prediction_decay_s must be > 0, got %v", c.PredictionDecayS)
	}
	if c.CacheCapacityAngleDiff < 1 || c.CacheCapacityField < 1 {
		return fmt.Errorf("cache capacities must be >= 1, got angle_diff=%v field=%v",
			c.CacheCapacityAngleDiff, c.CacheCapacityField)
	}
	return nil
}
