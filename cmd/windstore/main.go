package main

import (
	"flag"
	"fmt"
	"log"
	"time"
)

var (
	dbPath = flag.String("db", "windtrace.db", "path to the SQLite database file")
	boatID = flag.String("boat", "", "boat ID to list recorded observations and strategy points for")
	limit  = flag.Int("limit", 20, "maximum number of wind observations to list")
)

func unixToTime(unix int64) time.Time {
	return time.Unix(unix, 0).UTC()
}

func main() {
	flag.Parse()

	store, err := Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if *boatID == "" {
		log.Println("windstore: schema migrated, no -boat given, nothing to list")
		return
	}

	observations, err := store.ListWindObservations(*boatID, *limit)
	if err != nil {
		log.Fatalf("failed to list wind observations: %v", err)
	}
	fmt.Printf("%d wind observations for %s:\n", len(observations), *boatID)
	for _, o := range observations {
		fmt.Printf("  %s  dir=%.1f speed=%.1f conf=%.2f (%s)\n",
			o.Timestamp.Format(time.RFC3339), o.Direction, o.Speed, o.Confidence, o.SourceMethod)
	}

	points, err := store.ListStrategyPoints(*boatID)
	if err != nil {
		log.Fatalf("failed to list strategy points: %v", err)
	}
	fmt.Printf("%d strategy points for %s:\n", len(points), *boatID)
	for _, p := range points {
		fmt.Printf("  %s  %s  eval=%.2f\n", p.Timestamp.Format(time.RFC3339), p.Kind, p.Evaluation)
	}
}
