// Package model defines the plain value types shared by every
// detection component. Values are immutable once constructed and hold
// no back-reference to their source: a Session owns its BoatTracks,
// and every derived artifact (QualitySummary, WindField, StrategyPoint
// list) is cheap and correct to recompute from scratch.
package model

import (
	"time"

	"github.com/windtrace/windtrace/internal/diag"
)

// Diagnostics is the per-call accumulator of warnings and counters
// attached to every result, in place of logging or exceptions.
type Diagnostics = diag.Bag

// TrackPoint is a single timestamped GPS fix.
type TrackPoint struct {
	Timestamp time.Time
	Lat       float64 // degrees, [-90, 90]
	Lon       float64 // degrees, [-180, 180]
	Speed     float64 // in the track's Units; 0 if not reported
	Heading   float64 // degrees, [0, 360)
	// Valid is false when ingestion found this point structurally
	// invalid (e.g. NaN timestamp, out-of-range coordinate). Invalid
	// points are kept in place, not dropped, so indices referenced by
	// ValidationFinding stay stable.
	Valid bool
}

// BoatTrack is one boat's ordered position history for a session.
type BoatTrack struct {
	BoatID     string
	SessionID  string
	Units      string // one of units.MPS, units.KTS, ...
	PolarClass string // resolves a PolarTable; empty if unknown
	Points     []TrackPoint
}

// FindingKind enumerates the kinds of validation problem a track can
// exhibit.
type FindingKind string

const (
	FindingMissing          FindingKind = "missing"
	FindingOutOfRange       FindingKind = "out_of_range"
	FindingDuplicate        FindingKind = "duplicate"
	FindingSpatialAnomaly   FindingKind = "spatial_anomaly"
	FindingTemporalAnomaly  FindingKind = "temporal_anomaly"
)

// Severity enumerates how serious a ValidationFinding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationFinding records a detected data-quality problem. Indices
// refer to the associated track at the time the finding was created;
// findings are regenerated wholesale on re-validation, never patched.
type ValidationFinding struct {
	Kind     FindingKind
	Severity Severity
	Indices  []int
	Params   map[string]float64 // detector parameters that produced this finding
}

// SourceMethod enumerates how a WindObservation was produced.
type SourceMethod string

const (
	SourceVMG       SourceMethod = "vmg"
	SourceManeuver  SourceMethod = "maneuver"
	SourceBayesian  SourceMethod = "bayesian"
	SourceExternal  SourceMethod = "external"
)

// WindObservation is a single estimate of the true wind at a place and
// time, with a confidence in [0,1].
type WindObservation struct {
	Timestamp    time.Time
	Lat          float64
	Lon          float64
	Direction    float64 // degrees, [0,360), direction wind blows FROM
	Speed        float64 // knots
	Confidence   float64 // [0,1]
	SourceMethod SourceMethod
}

// BoundingBox is a lat/lon rectangle: [latMin, lonMin, latMax, lonMax].
type BoundingBox struct {
	LatMin, LonMin, LatMax, LonMax float64
}

// WindField is a regular lat/lon grid snapshot of the fused wind
// estimate at one timestamp. Direction, Speed and Confidence are each
// NY rows of NX columns, row-major, matching the recommended
// direction[ny][nx] wire shape. A cell with Confidence == 0 carries no
// data.
type WindField struct {
	Timestamp  time.Time
	BBox       BoundingBox
	NX, NY     int
	Direction  [][]float64
	Speed      [][]float64
	Confidence [][]float64
	// Advection is the estimated (vx, vy) in m/s used for any
	// short-horizon prediction applied to this field; zero if none.
	Advection [2]float64
	Aborted   bool
}

// NewWindField allocates a WindField with NX x NY zeroed cells.
func NewWindField(ts time.Time, bbox BoundingBox, nx, ny int) *WindField {
	f := &WindField{Timestamp: ts, BBox: bbox, NX: nx, NY: ny}
	f.Direction = make([][]float64, ny)
	f.Speed = make([][]float64, ny)
	f.Confidence = make([][]float64, ny)
	for r := 0; r < ny; r++ {
		f.Direction[r] = make([]float64, nx)
		f.Speed[r] = make([]float64, nx)
		f.Confidence[r] = make([]float64, nx)
	}
	return f
}

// StrategyKind enumerates the kinds of strategically significant event
// StrategyDetector emits.
type StrategyKind string

const (
	StrategyTack         StrategyKind = "tack"
	StrategyJibe         StrategyKind = "jibe"
	StrategyWindShift    StrategyKind = "wind_shift"
	StrategyLayline      StrategyKind = "layline"
	StrategyMarkRounding StrategyKind = "mark_rounding"
	StrategyStart        StrategyKind = "start"
	StrategyFinish       StrategyKind = "finish"
)

// StrategyPoint is a single detected strategic event.
type StrategyPoint struct {
	ID         string
	BoatID     string
	Timestamp  time.Time
	Lat        float64
	Lon        float64
	Kind       StrategyKind
	Metadata   map[string]float64
	Importance float64 // [0,1]
	Evaluation float64 // [0,1]
}

// PolarTable is a boat class's target-speed matrix over (TWA, TWS).
type PolarTable struct {
	Class        string
	TWAGrid      []float64 // degrees, ascending
	TWSGrid      []float64 // knots, ascending
	TargetSpeeds [][]float64 // [twaIdx][twsIdx], knots
}

// ExternalWindObservation is a point observation supplied by a caller
// (e.g. a shore station or forecast model) rather than derived from a
// boat track.
type ExternalWindObservation struct {
	Timestamp  time.Time
	Lat        float64
	Lon        float64
	Direction  float64
	Speed      float64
	Confidence float64 // 0 means "use default external confidence"
}
