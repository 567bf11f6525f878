package fusion

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/geo"
	"github.com/windtrace/windtrace/internal/model"
)

// weightFloor is the minimum total kernel weight a cell must
// accumulate to be considered data-bearing; below it the cell is
// marked no-data (confidence = 0), per spec.md §4.4 step 4.
const weightFloor = 1e-6

// System maintains the rolling observation buffer and field cache for
// one WindFieldFusionSystem instance. Each instance owns independent
// state; Clone produces a fresh, empty instance with the same config.
type System struct {
	cfg   model.DetectionConfig
	buf   *buffer
	cache *fieldCache
}

// New builds a fusion System with the given config and buffer
// capacity (0 selects a sensible default).
func New(cfg model.DetectionConfig, bufferCapacity int) *System {
	return &System{
		cfg:   cfg,
		buf:   newBuffer(bufferCapacity),
		cache: newFieldCache(cfg.CacheCapacityField),
	}
}

// Clone returns a new System with the same configuration and an empty
// buffer and cache, satisfying §5's "independent unit of analysis"
// requirement.
func (s *System) Clone() *System {
	return New(s.cfg, s.buf.capacity)
}

// Insert adds an observation to the buffer and invalidates any cached
// field whose construction window contains its timestamp. Malformed
// observations (NaN lat/lon/direction, negative speed) are rejected
// with a warning and never reach the buffer.
func (s *System) Insert(o model.WindObservation, bag *diag.Bag) {
	if !validObservation(o) {
		if bag != nil {
			bag.Warn("malformed_observation", "observation skipped: missing or non-finite field")
		}
		return
	}
	s.buf.insert(o)
	s.cache.invalidate(o.Timestamp)
}

func validObservation(o model.WindObservation) bool {
	return !math.IsNaN(o.Lat) && !math.IsNaN(o.Lon) &&
		!math.IsNaN(o.Direction) && !math.IsNaN(o.Speed) && o.Speed >= 0
}

// BuildField constructs a WindField for ts over bbox at nx x ny
// resolution, using every buffered observation within the configured
// half-window. abort is checked once per grid row; if it fires, the
// partially filled field is returned with Aborted set.
func (s *System) BuildField(ts time.Time, bbox model.BoundingBox, nx, ny int, abort *diag.Abort, bag *diag.Bag) *model.WindField {
	key := newFieldCacheKey(ts, bbox, nx, ny)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	halfWindow := s.cfg.FusionHalfWindowS
	windowed := s.buf.withinWindow(ts, halfWindow)
	if len(windowed) == 0 && bag != nil {
		bag.Warn("empty_fusion_window", "no observations in window; returning all-no-data field")
	}

	field := s.buildGrid(ts, bbox, nx, ny, windowed, abort)

	lo := ts.Add(-time.Duration(halfWindow * float64(time.Second)))
	hi := ts.Add(time.Duration(halfWindow * float64(time.Second)))
	if !field.Aborted {
		s.cache.put(key, field, lo, hi)
	}
	return field
}

func (s *System) buildGrid(ts time.Time, bbox model.BoundingBox, nx, ny int, obs []model.WindObservation, abort *diag.Abort) *model.WindField {
	field := model.NewWindField(ts, bbox, nx, ny)

	sinSum := mat.NewDense(ny, nx, nil)
	cosSum := mat.NewDense(ny, nx, nil)
	speedSum := mat.NewDense(ny, nx, nil)
	weightSum := mat.NewDense(ny, nx, nil)
	kernelSum := mat.NewDense(ny, nx, nil)

	dLat := (bbox.LatMax - bbox.LatMin) / float64(ny)
	dLon := (bbox.LonMax - bbox.LonMin) / float64(nx)

	sigmaS := s.cfg.FusionSigmaSpatialM
	sigmaT := s.cfg.FusionSigmaTemporalS

	for row := 0; row < ny; row++ {
		if abort.Requested() {
			field.Aborted = true
			return field
		}
		cellLat := bbox.LatMin + (float64(row)+0.5)*dLat
		for col := 0; col < nx; col++ {
			cellLon := bbox.LonMin + (float64(col)+0.5)*dLon

			var ss, cs, sp, wt, kt float64
			for _, o := range obs {
				d := geo.HaversineMeters(cellLat, cellLon, o.Lat, o.Lon)
				dt := o.Timestamp.Sub(ts).Seconds()
				kernel := math.Exp(-(d*d)/(2*sigmaS*sigmaS)) * math.Exp(-(dt*dt)/(2*sigmaT*sigmaT))
				k := kernel * o.Confidence

				r := o.Direction * math.Pi / 180
				ss += k * math.Sin(r)
				cs += k * math.Cos(r)
				sp += k * o.Speed
				wt += k
				kt += kernel
			}
			sinSum.Set(row, col, ss)
			cosSum.Set(row, col, cs)
			speedSum.Set(row, col, sp)
			weightSum.Set(row, col, wt)
			kernelSum.Set(row, col, kt)
		}
	}

	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			k := kernelSum.At(row, col)
			if k < weightFloor {
				field.Direction[row][col] = 0
				field.Speed[row][col] = 0
				field.Confidence[row][col] = 0
				continue
			}
			w := weightSum.At(row, col)
			dir := geo.WrapDeg(math.Atan2(sinSum.At(row, col), cosSum.At(row, col)) * 180 / math.Pi)
			field.Direction[row][col] = dir
			// Confidence is the kernel-weighted average of each
			// observation's own confidence (w/k), not the
			// kernel-by-confidence weight sum itself: a single,
			// perfectly centered observation with confidence 0.9
			// should read back as ~0.9, not saturate toward 1.
			field.Confidence[row][col] = math.Min(1, w/k)
			if w < weightFloor {
				field.Speed[row][col] = 0
				continue
			}
			field.Speed[row][col] = speedSum.At(row, col) / w
		}
	}
	return field
}
