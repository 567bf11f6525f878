// Package strategy scans a cleaned track against a fused wind field
// to locate tacks, jibes, wind shifts, laylines and mark roundings.
package strategy

import "github.com/windtrace/windtrace/internal/model"

// FieldProvider supplies a WindField snapshot for a requested
// timestamp, the second of the two input forms spec.md §4.5 allows
// (the first being a single snapshot reused for an entire track
// segment).
type FieldProvider func(tsUnixNano int64) *model.WindField

// SampleField reads the direction/speed/confidence at the grid cell
// nearest (lat, lon) in field. ok is false when lat/lon falls outside
// the field's bounding box or the field is nil.
func SampleField(field *model.WindField, lat, lon float64) (direction, speed, confidence float64, ok bool) {
	if field == nil || field.NX == 0 || field.NY == 0 {
		return 0, 0, 0, false
	}
	b := field.BBox
	if lat < b.LatMin || lat > b.LatMax || lon < b.LonMin || lon > b.LonMax {
		return 0, 0, 0, false
	}

	dLat := (b.LatMax - b.LatMin) / float64(field.NY)
	dLon := (b.LonMax - b.LonMin) / float64(field.NX)

	row := int((lat - b.LatMin) / dLat)
	col := int((lon - b.LonMin) / dLon)
	if row >= field.NY {
		row = field.NY - 1
	}
	if col >= field.NX {
		col = field.NX - 1
	}
	if row < 0 || col < 0 {
		return 0, 0, 0, false
	}

	conf := field.Confidence[row][col]
	if conf == 0 {
		return 0, 0, 0, false
	}
	return field.Direction[row][col], field.Speed[row][col], conf, true
}
