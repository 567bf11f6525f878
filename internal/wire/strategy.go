package wire

import (
	"encoding/json"
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

// StrategyPointDoc is the wire representation of a model.StrategyPoint.
type StrategyPointDoc struct {
	ID         string             `json:"id"`
	BoatID     string             `json:"boat_id"`
	TimestampUnix int64           `json:"ts"`
	Lat        float64            `json:"lat"`
	Lon        float64            `json:"lon"`
	Kind       string             `json:"kind"`
	Metadata   map[string]float64 `json:"metadata,omitempty"`
	Importance float64            `json:"importance"`
	Evaluation float64            `json:"evaluation"`
}

// EncodeStrategyPoint converts a model.StrategyPoint into its wire document.
func EncodeStrategyPoint(p model.StrategyPoint) StrategyPointDoc {
	return StrategyPointDoc{
		ID:            p.ID,
		BoatID:        p.BoatID,
		TimestampUnix: p.Timestamp.Unix(),
		Lat:           p.Lat,
		Lon:           p.Lon,
		Kind:          string(p.Kind),
		Metadata:      p.Metadata,
		Importance:    p.Importance,
		Evaluation:    p.Evaluation,
	}
}

// DecodeStrategyPoint converts a wire document back into a model.StrategyPoint.
func DecodeStrategyPoint(doc StrategyPointDoc) model.StrategyPoint {
	return model.StrategyPoint{
		ID:         doc.ID,
		BoatID:     doc.BoatID,
		Timestamp:  time.Unix(doc.TimestampUnix, 0).UTC(),
		Lat:        doc.Lat,
		Lon:        doc.Lon,
		Kind:       model.StrategyKind(doc.Kind),
		Metadata:   doc.Metadata,
		Importance: doc.Importance,
		Evaluation: doc.Evaluation,
	}
}

// MarshalStrategyPoints serializes a slice of StrategyPoint to JSON.
func MarshalStrategyPoints(points []model.StrategyPoint) ([]byte, error) {
	docs := make([]StrategyPointDoc, len(points))
	for i, p := range points {
		docs[i] = EncodeStrategyPoint(p)
	}
	return json.Marshal(docs)
}

// UnmarshalStrategyPoints parses JSON bytes back into a StrategyPoint slice.
func UnmarshalStrategyPoints(data []byte) ([]model.StrategyPoint, error) {
	var docs []StrategyPointDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	points := make([]model.StrategyPoint, len(docs))
	for i, d := range docs {
		points[i] = DecodeStrategyPoint(d)
	}
	return points, nil
}

// WindObservationDoc is the wire representation of a model.WindObservation.
type WindObservationDoc struct {
	TimestampUnix int64   `json:"ts"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Direction     float64 `json:"direction"`
	Speed         float64 `json:"speed"`
	Confidence    float64 `json:"confidence"`
	SourceMethod  string  `json:"source_method"`
}

// EncodeWindObservation converts a model.WindObservation into its wire document.
func EncodeWindObservation(o model.WindObservation) WindObservationDoc {
	return WindObservationDoc{
		TimestampUnix: o.Timestamp.Unix(),
		Lat:           o.Lat,
		Lon:           o.Lon,
		Direction:     o.Direction,
		Speed:         o.Speed,
		Confidence:    o.Confidence,
		SourceMethod:  string(o.SourceMethod),
	}
}

// DecodeWindObservation converts a wire document back into a model.WindObservation.
func DecodeWindObservation(doc WindObservationDoc) model.WindObservation {
	return model.WindObservation{
		Timestamp:    time.Unix(doc.TimestampUnix, 0).UTC(),
		Lat:          doc.Lat,
		Lon:          doc.Lon,
		Direction:    doc.Direction,
		Speed:        doc.Speed,
		Confidence:   doc.Confidence,
		SourceMethod: model.SourceMethod(doc.SourceMethod),
	}
}
