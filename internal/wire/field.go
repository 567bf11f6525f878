// Package wire encodes and decodes WindField snapshots for transport
// and storage, using the schema layout domain consumers (shore
// displays, persistence adapters) expect.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

// FieldDoc is the wire representation of a model.WindField: a
// timestamp, a bounding box as [lat_min, lon_min, lat_max, lon_max],
// grid dimensions, and the three row-major [ny][nx] grids.
type FieldDoc struct {
	TimestampUnix int64         `json:"ts"`
	BBox          [4]float64    `json:"bbox"`
	NX            int           `json:"nx"`
	NY            int           `json:"ny"`
	Direction     [][]float64   `json:"direction"`
	Speed         [][]float64   `json:"speed"`
	Confidence    [][]float64   `json:"confidence"`
	Advection     [2]float64    `json:"advection,omitempty"`
	Aborted       bool          `json:"aborted,omitempty"`
}

// EncodeField converts a model.WindField into its wire document.
func EncodeField(f *model.WindField) FieldDoc {
	return FieldDoc{
		TimestampUnix: f.Timestamp.Unix(),
		BBox:          [4]float64{f.BBox.LatMin, f.BBox.LonMin, f.BBox.LatMax, f.BBox.LonMax},
		NX:            f.NX,
		NY:            f.NY,
		Direction:     f.Direction,
		Speed:         f.Speed,
		Confidence:    f.Confidence,
		Advection:     f.Advection,
		Aborted:       f.Aborted,
	}
}

// DecodeField converts a wire document back into a model.WindField,
// validating that the grid dimensions match the declared nx/ny.
func DecodeField(doc FieldDoc) (*model.WindField, error) {
	if len(doc.Direction) != doc.NY || len(doc.Speed) != doc.NY || len(doc.Confidence) != doc.NY {
		return nil, fmt.Errorf("wire: field grid row count does not match ny=%d", doc.NY)
	}
	for r := 0; r < doc.NY; r++ {
		if len(doc.Direction[r]) != doc.NX || len(doc.Speed[r]) != doc.NX || len(doc.Confidence[r]) != doc.NX {
			return nil, fmt.Errorf("wire: field grid row %d does not have nx=%d columns", r, doc.NX)
		}
	}
	return &model.WindField{
		Timestamp: time.Unix(doc.TimestampUnix, 0).UTC(),
		BBox: model.BoundingBox{
			LatMin: doc.BBox[0], LonMin: doc.BBox[1],
			LatMax: doc.BBox[2], LonMax: doc.BBox[3],
		},
		NX:         doc.NX,
		NY:         doc.NY,
		Direction:  doc.Direction,
		Speed:      doc.Speed,
		Confidence: doc.Confidence,
		Advection:  doc.Advection,
		Aborted:    doc.Aborted,
	}, nil
}

// MarshalField serializes f directly to JSON bytes.
func MarshalField(f *model.WindField) ([]byte, error) {
	return json.Marshal(EncodeField(f))
}

// UnmarshalField parses JSON bytes back into a model.WindField.
func UnmarshalField(data []byte) (*model.WindField, error) {
	var doc FieldDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wire: decode field: %w", err)
	}
	return DecodeField(doc)
}
