package strategy

// Mark is a known race-mark coordinate used for mark-rounding and
// layline detection.
type Mark struct {
	Name string
	Lat  float64
	Lon  float64
}
