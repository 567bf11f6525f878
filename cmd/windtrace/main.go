// Command windtrace runs one batch analysis session over a JSON input
// file: track cleaning, wind estimation, fusion, and strategy
// detection, and prints the results as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/windtrace/windtrace/internal/anomaly"
	"github.com/windtrace/windtrace/internal/diag"
	"github.com/windtrace/windtrace/internal/engine"
	"github.com/windtrace/windtrace/internal/httputil"
	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/monitoring"
	"github.com/windtrace/windtrace/internal/strategy"
	"github.com/windtrace/windtrace/internal/units"
	"github.com/windtrace/windtrace/internal/wire"
)

var (
	inputPath   = flag.String("input", "", "path to a session input JSON file")
	fieldTs     = flag.Int64("field-ts", 0, "unix seconds to build the wind field at; defaults to the latest track point")
	bboxMargin  = flag.Float64("bbox-margin-deg", 0.05, "bounding box margin in degrees around the track extent")
	outPath     = flag.String("output", "", "path to write JSON results; defaults to stdout")
	externalURL = flag.String("external-url", "", "optional URL returning a JSON array of external wind observations to merge in")
)

// sessionInput is the on-disk shape windtrace reads: one or more boat
// tracks, optional polar tables and marks, and optional external wind
// observations to seed fusion.
type sessionInput struct {
	Tracks []struct {
		BoatID     string `json:"boat_id"`
		PolarClass string `json:"polar_class"`
		// Units names the unit t.Points' Speed values arrive in
		// (units.MPS, units.MPH, units.KMPH, units.KPH, units.KTS);
		// defaults to units.KTS when empty. Every track is normalized
		// to knots on ingestion, matching polar tables and the wind
		// estimator's internal speed comparisons.
		Units  string `json:"units"`
		Points []struct {
			TimestampUnix int64   `json:"ts"`
			Lat           float64 `json:"lat"`
			Lon           float64 `json:"lon"`
			Speed         float64 `json:"speed"`
			Heading       float64 `json:"heading"`
		} `json:"points"`
	} `json:"tracks"`
	PolarTables []model.PolarTable                 `json:"polar_tables"`
	Marks       []strategy.Mark                    `json:"marks"`
	External    []wire.WindObservationDoc          `json:"external_observations"`
}

type sessionOutput struct {
	Boats []boatOutput `json:"boats"`
}

type boatOutput struct {
	BoatID    string                   `json:"boat_id"`
	Quality   qualityOutput            `json:"quality"`
	Anomalies []anomaly.Result         `json:"anomalies"`
	WindEstimate wire.WindObservationDoc `json:"wind_estimate"`
	Strategy  []wire.StrategyPointDoc  `json:"strategy"`
}

type qualityOutput struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Overall      float64 `json:"overall"`
}

func main() {
	flag.Parse()
	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("failed to read input file: %v", err)
	}

	var in sessionInput
	if err := json.Unmarshal(data, &in); err != nil {
		log.Fatalf("failed to parse input JSON: %v", err)
	}

	if *externalURL != "" {
		fetched, err := fetchExternalObservations(httputil.NewStandardClient(nil), *externalURL)
		if err != nil {
			log.Fatalf("failed to fetch external observations: %v", err)
		}
		in.External = append(in.External, fetched...)
	}

	out, err := run(in)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}

	if *outPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(*outPath, encoded, 0o644); err != nil {
		log.Fatalf("failed to write output file: %v", err)
	}
}

// fetchExternalObservations retrieves a JSON array of external wind
// observations (a race committee feed, a nearby station, a grib
// extract already reduced to point observations) from url. Accepting
// an httputil.HTTPClient rather than calling http.Get directly lets
// callers substitute httputil.MockHTTPClient in tests.
func fetchExternalObservations(client httputil.HTTPClient, url string) ([]wire.WindObservationDoc, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var docs []wire.WindObservationDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decode external observations: %w", err)
	}
	return docs, nil
}

func run(in sessionInput) (sessionOutput, error) {
	s := engine.New(model.DefaultDetectionConfig())

	for _, pt := range in.PolarTables {
		if err := s.AddPolarTable(pt.Class, pt); err != nil {
			return sessionOutput{}, fmt.Errorf("polar table %q: %w", pt.Class, err)
		}
	}
	s.SetMarks(in.Marks)

	var latest time.Time
	var minLat, maxLat, minLon, maxLon float64
	first := true

	for _, t := range in.Tracks {
		srcUnits := t.Units
		if srcUnits == "" {
			srcUnits = units.KTS
		} else if !units.IsValid(srcUnits) {
			return sessionOutput{}, diag.Invalid("units", fmt.Sprintf("track %q: unit %q not in [%s]", t.BoatID, srcUnits, units.GetValidUnitsString()))
		}

		track := &model.BoatTrack{BoatID: t.BoatID, PolarClass: t.PolarClass, Units: units.KTS}
		for _, p := range t.Points {
			ts := time.Unix(p.TimestampUnix, 0).UTC()
			speedKts := units.ConvertSpeed(units.ConvertToMPS(p.Speed, srcUnits), units.KTS)
			track.Points = append(track.Points, model.TrackPoint{
				Timestamp: ts, Lat: p.Lat, Lon: p.Lon, Speed: speedKts, Heading: p.Heading, Valid: true,
			})
			if ts.After(latest) {
				latest = ts
			}
			if first {
				minLat, maxLat, minLon, maxLon = p.Lat, p.Lat, p.Lon, p.Lon
				first = false
			} else {
				if p.Lat < minLat {
					minLat = p.Lat
				}
				if p.Lat > maxLat {
					maxLat = p.Lat
				}
				if p.Lon < minLon {
					minLon = p.Lon
				}
				if p.Lon > maxLon {
					maxLon = p.Lon
				}
			}
		}
		s.AddTrack(track)
	}

	for _, doc := range in.External {
		obs := wire.DecodeWindObservation(doc)
		s.InsertExternalObservation(model.ExternalWindObservation{
			Timestamp: obs.Timestamp, Lat: obs.Lat, Lon: obs.Lon,
			Direction: obs.Direction, Speed: obs.Speed, Confidence: obs.Confidence,
		}, nil)
	}

	bbox := model.BoundingBox{
		LatMin: minLat - *bboxMargin, LonMin: minLon - *bboxMargin,
		LatMax: maxLat + *bboxMargin, LonMax: maxLon + *bboxMargin,
	}

	ts := latest
	if *fieldTs != 0 {
		ts = time.Unix(*fieldTs, 0).UTC()
	}

	var out sessionOutput
	for _, t := range in.Tracks {
		bag := diag.NewBag()

		clean, err := s.CleanTrack(t.BoatID, anomaly.MethodSpeedThreshold, bag)
		if err != nil {
			return sessionOutput{}, fmt.Errorf("clean track %q: %w", t.BoatID, err)
		}

		windObs, err := s.EstimateWind(t.BoatID, nil, bag)
		if err != nil {
			return sessionOutput{}, fmt.Errorf("estimate wind for %q: %w", t.BoatID, err)
		}

		_ = s.Field(ts, bbox, nil, bag)

		strategyPoints, err := s.DetectStrategy(t.BoatID, bbox, bag)
		if err != nil {
			return sessionOutput{}, fmt.Errorf("detect strategy for %q: %w", t.BoatID, err)
		}

		docs := make([]wire.StrategyPointDoc, len(strategyPoints))
		for i, p := range strategyPoints {
			docs[i] = wire.EncodeStrategyPoint(p)
		}

		for _, w := range bag.Warnings {
			monitoring.Logf("[windtrace] boat=%s %s: %s", t.BoatID, w.Counter, w.Msg)
		}

		out.Boats = append(out.Boats, boatOutput{
			BoatID: t.BoatID,
			Quality: qualityOutput{
				Completeness: clean.Quality.Completeness,
				Accuracy:     clean.Quality.Accuracy,
				Consistency:  clean.Quality.Consistency,
				Overall:      clean.Quality.Overall,
			},
			Anomalies:    clean.Anomalies,
			WindEstimate: wire.EncodeWindObservation(windObs),
			Strategy:     docs,
		})
	}

	return out, nil
}
