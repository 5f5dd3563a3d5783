// Package report renders the accumulated dose distribution: a row-major
// text grid mirroring the anatomy input layout, a short statistics
// summary, and an optional heatmap PNG.
package report

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"beamdose/pkg/anatomy"
	"beamdose/pkg/engine"
)

// WriteText writes the per-point dose grid in row-major order, one line
// per grid row (stride points), matching the rectangular layout of the
// anatomy input.
func WriteText(w io.Writer, grid *anatomy.Grid, doses []float64) error {
	if len(doses) != grid.NumPoints() {
		return fmt.Errorf("dose accumulator has %d entries for %d grid points", len(doses), grid.NumPoints())
	}
	stride := grid.Stride()
	if stride <= 0 {
		return fmt.Errorf("grid stride %d is not positive", stride)
	}

	for start := 0; start < len(doses); start += stride {
		end := start + stride
		if end > len(doses) {
			end = len(doses)
		}
		for i := start; i < end; i++ {
			if i > start {
				if _, err := fmt.Fprint(w, " "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%8.3f", doses[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes the dose statistics block shown after a run.
func WriteSummary(w io.Writer, stats engine.DoseStats, beamsApplied int) error {
	_, err := fmt.Fprintf(w,
		"Beams applied: %d\nDose min:  %.3f\nDose max:  %.3f\nDose mean: %.3f\nDose total: %.3f\n",
		beamsApplied, stats.Min, stats.Max, stats.Mean, stats.Total)
	return err
}

// doseGrid adapts the row-major dose accumulator to plotter.GridXYZ.
// Anatomy rows are stored most-anterior first (ingestion negates the
// downward-growing source y), so row indices are flipped to give the
// plotter an ascending y axis.
type doseGrid struct {
	grid  *anatomy.Grid
	doses []float64
	rows  int
}

func (d doseGrid) Dims() (c, r int) { return d.grid.Stride(), d.rows }

func (d doseGrid) X(c int) float64 { return d.grid.Points()[c].X }

func (d doseGrid) Y(r int) float64 {
	return d.grid.Points()[(d.rows-1-r)*d.grid.Stride()].Y
}

func (d doseGrid) Z(c, r int) float64 {
	return d.doses[(d.rows-1-r)*d.grid.Stride()+c]
}

// SaveHeatmap renders the dose distribution as a heatmap PNG in the
// grid's original (unrotated) coordinate frame.
func SaveHeatmap(path string, grid *anatomy.Grid, doses []float64) error {
	if len(doses) != grid.NumPoints() {
		return fmt.Errorf("dose accumulator has %d entries for %d grid points", len(doses), grid.NumPoints())
	}
	stride := grid.Stride()
	if stride <= 0 || grid.NumPoints()%stride != 0 {
		return fmt.Errorf("grid of %d points is not rectangular with stride %d", grid.NumPoints(), stride)
	}

	hm := plotter.NewHeatMap(doseGrid{
		grid:  grid,
		doses: doses,
		rows:  grid.NumPoints() / stride,
	}, palette.Heat(255, 1))

	p := plot.New()
	p.Title.Text = "Accumulated dose"
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("saving dose heatmap: %w", err)
	}
	return nil
}
