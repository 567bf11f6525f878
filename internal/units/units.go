// Package units provides shared constants and conversions for speed units.
//
// A BoatTrack tags its speed with one of these unit strings rather
// than carrying a typed value per measurement (WindObservation speeds
// are always knots), matching
// the data model's "unit system" field at the container, not per point.
package units

// Unit constants. Boat speeds and polar tables are compared directly
// against each other, so ingestion normalizes every incoming track to
// KTS before it reaches the detection pipeline; the other units exist
// for accepting and reporting speeds in whatever unit a caller's GPS
// source or display actually uses.
const (
	MPS  = "mps"  // metres per second
	MPH  = "mph"  // miles per hour
	KMPH = "kmph" // kilometres per hour
	KPH  = "kph"  // alias for kmph
	KTS  = "kts"  // knots, the engine's internal unit for boat/wind speed
)

// ValidUnits contains all valid unit values.
var ValidUnits = []string{MPS, MPH, KMPH, KPH, KTS}

// IsValid reports whether unit is one of ValidUnits.
func IsValid(unit string) bool {
	for _, v := range ValidUnits {
		if unit == v {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages.
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph, kts"
}

// mpsToKts is the number of knots in one metre per second.
const mpsToKts = 1.9438444924406

// ConvertSpeed converts a speed from metres per second to targetUnits.
// Unknown units default to mps.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	case KTS:
		return speedMPS * mpsToKts
	case MPS:
		return speedMPS
	default:
		return speedMPS
	}
}

// ConvertToMPS converts a speed expressed in srcUnits into metres per second.
// Unknown units are assumed to already be mps.
func ConvertToMPS(speed float64, srcUnits string) float64 {
	switch srcUnits {
	case MPH:
		return speed / 2.2369362920544
	case KMPH, KPH:
		return speed / 3.6
	case KTS:
		return speed / mpsToKts
	case MPS:
		return speed
	default:
		return speed
	}
}
