// Package fusion merges per-boat wind observations and external point
// observations onto a regular lat/lon grid, and predicts short-horizon
// fields by Lagrangian advection and confidence decay.
package fusion

import (
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

// defaultBufferCapacity bounds the observation ring when a caller
// doesn't request a specific size; large enough to cover a full
// multi-hour session at typical per-boat observation rates.
const defaultBufferCapacity = 50000

// buffer is a bounded circular store of observations ordered by
// insertion, never mutated in place. Eviction drops the oldest entry
// once the cap is reached.
type buffer struct {
	capacity int
	entries  []model.WindObservation
	start    int // index of the oldest entry within entries
	count    int
}

func newBuffer(capacity int) *buffer {
	if capacity < 1 {
		capacity = defaultBufferCapacity
	}
	return &buffer{capacity: capacity, entries: make([]model.WindObservation, capacity)}
}

func (b *buffer) insert(o model.WindObservation) {
	idx := (b.start + b.count) % b.capacity
	b.entries[idx] = o
	if b.count < b.capacity {
		b.count++
	} else {
		b.start = (b.start + 1) % b.capacity
	}
}

// snapshot returns every currently buffered observation in insertion
// order. The result is cheap to recompute and never aliases internal
// storage across calls.
func (b *buffer) snapshot() []model.WindObservation {
	out := make([]model.WindObservation, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.start+i)%b.capacity]
	}
	return out
}

// withinWindow returns every observation whose timestamp lies within
// halfWindowS of ts.
func (b *buffer) withinWindow(ts time.Time, halfWindowS float64) []model.WindObservation {
	var out []model.WindObservation
	window := time.Duration(halfWindowS * float64(time.Second))
	lo := ts.Add(-window)
	hi := ts.Add(window)
	for i := 0; i < b.count; i++ {
		o := b.entries[(b.start+i)%b.capacity]
		if !o.Timestamp.Before(lo) && !o.Timestamp.After(hi) {
			out = append(out, o)
		}
	}
	return out
}

func (b *buffer) len() int { return b.count }
