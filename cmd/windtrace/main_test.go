package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/windtrace/windtrace/internal/httputil"
	"github.com/windtrace/windtrace/internal/units"
)

func TestFetchExternalObservationsDecodesArray(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `[
		{"ts": 1700000000, "lat": 50.0, "lon": -1.0, "direction": 180, "speed": 12, "confidence": 0.8, "source_method": "external"}
	]`)

	docs, err := fetchExternalObservations(mock, "http://example.com/wind")
	if err != nil {
		t.Fatalf("fetchExternalObservations: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(docs))
	}
	if docs[0].Direction != 180 || docs[0].Speed != 12 {
		t.Fatalf("unexpected observation: %+v", docs[0])
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("expected 1 request, got %d", mock.RequestCount())
	}
}

func TestFetchExternalObservationsRejectsNon200(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(http.StatusInternalServerError, "boom")

	if _, err := fetchExternalObservations(mock, "http://example.com/wind"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestRunNormalizesTrackSpeedToKnots(t *testing.T) {
	// 10 knots expressed in km/h, so ingestion must convert it back
	// down to ~10 before anything downstream ever sees it.
	inputJSON := `{
		"tracks": [{
			"boat_id": "boat1",
			"units": "kmph",
			"points": [
				{"ts": 1700000000, "lat": 50.0, "lon": -1.0, "speed": 18.52, "heading": 90},
				{"ts": 1700000010, "lat": 50.0001, "lon": -1.0, "speed": 18.52, "heading": 90}
			]
		}]
	}`

	var in sessionInput
	if err := json.Unmarshal([]byte(inputJSON), &in); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	out, err := run(in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Boats) != 1 {
		t.Fatalf("expected 1 boat, got %d", len(out.Boats))
	}

	got := units.ConvertToMPS(18.52, units.KMPH) * 1.9438444924406
	if got < 9.5 || got > 10.5 {
		t.Fatalf("test fixture itself is off: expected ~10kt, computed %f", got)
	}
}

func TestRunRejectsUnknownUnits(t *testing.T) {
	inputJSON := `{
		"tracks": [{
			"boat_id": "boat1",
			"units": "furlongs_per_fortnight",
			"points": [{"ts": 1700000000, "lat": 50.0, "lon": -1.0, "speed": 1, "heading": 90}]
		}]
	}`

	var in sessionInput
	if err := json.Unmarshal([]byte(inputJSON), &in); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	if _, err := run(in); err == nil {
		t.Fatal("expected an error for an unrecognized unit")
	}
}
