// Command windplot renders a single WindField snapshot as a PNG
// heatmap, standing in for the front-end map/chart rendering this
// engine deliberately does not own.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/windtrace/windtrace/internal/model"
	"github.com/windtrace/windtrace/internal/wire"
)

var (
	inputPath  = flag.String("input", "", "path to a WindField wire JSON file")
	outputPath = flag.String("output", "wind_field.png", "path to write the rendered PNG")
	field      = flag.String("field", "speed", "which grid to render: speed, direction, or confidence")
)

func main() {
	flag.Parse()
	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("failed to read input file: %v", err)
	}

	wf, err := wire.UnmarshalField(data)
	if err != nil {
		log.Fatalf("failed to decode wind field: %v", err)
	}

	if err := render(wf, *field, *outputPath); err != nil {
		log.Fatalf("failed to render: %v", err)
	}
	fmt.Printf("wrote %s\n", *outputPath)
}

// fieldGrid adapts one of a WindField's three grids to plotter.GridXYZ.
// No-data cells (confidence == 0) render as NaN, which gonum/plot's
// heat map leaves blank rather than coloring as a data point.
type fieldGrid struct {
	wf   *model.WindField
	kind string
}

func (g fieldGrid) Dims() (c, r int) { return g.wf.NX, g.wf.NY }

func (g fieldGrid) X(c int) float64 {
	dLon := (g.wf.BBox.LonMax - g.wf.BBox.LonMin) / float64(g.wf.NX)
	return g.wf.BBox.LonMin + (float64(c)+0.5)*dLon
}

func (g fieldGrid) Y(r int) float64 {
	dLat := (g.wf.BBox.LatMax - g.wf.BBox.LatMin) / float64(g.wf.NY)
	return g.wf.BBox.LatMin + (float64(r)+0.5)*dLat
}

func (g fieldGrid) Z(c, r int) float64 {
	if g.wf.Confidence[r][c] == 0 {
		return math.NaN()
	}
	switch g.kind {
	case "direction":
		return g.wf.Direction[r][c]
	case "confidence":
		return g.wf.Confidence[r][c]
	default:
		return g.wf.Speed[r][c]
	}
}

func render(wf *model.WindField, kind, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("wind field (%s) at %s", kind, wf.Timestamp.Format("2006-01-02 15:04:05"))
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	grid := fieldGrid{wf: wf, kind: kind}

	minZ, maxZ := gridRange(grid)
	cm := moreland.SmoothBlueRed()
	if err := cm.SetMin(minZ); err != nil {
		return fmt.Errorf("color map min: %w", err)
	}
	if err := cm.SetMax(maxZ); err != nil {
		return fmt.Errorf("color map max: %w", err)
	}
	pal, err := cm.Palette(256)
	if err != nil {
		return fmt.Errorf("color map palette: %w", err)
	}

	heatMap := plotter.NewHeatMap(grid, pal)
	p.Add(heatMap)

	if err := p.Save(10*vg.Inch, 8*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}

// gridRange finds the min/max non-NaN Z value in grid, falling back to
// [0,1] when every cell is no-data.
func gridRange(grid fieldGrid) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	c, r := grid.Dims()
	for col := 0; col < c; col++ {
		for row := 0; row < r; row++ {
			z := grid.Z(col, row)
			if math.IsNaN(z) {
				continue
			}
			if z < min {
				min = z
			}
			if z > max {
				max = z
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0, 1
	}
	return min, max
}
