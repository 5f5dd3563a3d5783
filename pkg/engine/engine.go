// Package engine orchestrates the dose calculation for a treatment plan:
// it rotates the anatomy grid to each beam's angle, locates the tissue
// entry surface, computes every point's depth beneath it, and accumulates
// the interpolated table dose per grid point across beams.
package engine

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"beamdose/internal/models"
	"beamdose/pkg/anatomy"
	"beamdose/pkg/interpolation"
)

// ErrPointAboveSurface is returned when an attenuating point computes to
// a negative depth. The surface is the maximum of the same transformed
// coordinates, so this cannot occur for a consistent grid; it indicates a
// surface-detection or geometry bug, not a valid physical state.
var ErrPointAboveSurface = errors.New("attenuating point above surface")

// Engine accumulates delivered dose for one patient across beams. The
// accumulator is indexed in parallel with the grid's point sequence and
// grows only additively: each ApplyBeam call adds its contribution on top
// of the dose from earlier beams.
type Engine struct {
	grid *anatomy.Grid
	dose []float64

	// geometry is the snapshot of the most recently applied beam. Doses
	// from all beams are summed even though positions reflect only the
	// last beam's angle; total dose per point is correct regardless.
	geometry []anatomy.Coord

	beamsApplied int
}

// NewEngine creates an engine for the given grid with a zeroed dose
// accumulator. The grid's point order must not change afterwards.
func NewEngine(grid *anatomy.Grid) *Engine {
	return &Engine{
		grid: grid,
		dose: make([]float64, grid.NumPoints()),
	}
}

// Grid returns the anatomy grid the engine was built for.
func (e *Engine) Grid() *anatomy.Grid {
	return e.grid
}

// Doses returns the per-point accumulated dose, indexed in parallel with
// the grid's point sequence. The slice is owned by the engine.
func (e *Engine) Doses() []float64 {
	return e.dose
}

// Geometry returns the transformed coordinates from the most recently
// applied beam, or nil before any beam has been applied.
func (e *Engine) Geometry() []anatomy.Coord {
	return e.geometry
}

// BeamsApplied returns how many beams have been applied so far.
func (e *Engine) BeamsApplied() int {
	return e.beamsApplied
}

// ApplyBeam applies one beam at the given angle: the grid is rotated to a
// fresh geometry snapshot, the entry surface is located, each point's
// depth beneath the surface is computed, and the table dose at the
// point's (off-axis, depth) position is added to its accumulator slot.
//
// Air points in front of the entry surface receive no dose; the beam has
// not yet entered tissue there. An attenuating point in front of the
// surface fails with ErrPointAboveSurface.
//
// The beam's doses are computed into a scratch buffer and folded into
// the accumulator only once the whole beam has succeeded, so a failing
// call leaves dose from earlier beams intact.
func (e *Engine) ApplyBeam(table *interpolation.DoseTable, angleDegrees float64) (models.BeamSummary, error) {
	coords := e.grid.Rotate(angleDegrees)

	surfaceY, err := e.grid.FindSurface(coords)
	if err != nil {
		return models.BeamSummary{}, fmt.Errorf("beam at %g degrees: %w", angleDegrees, err)
	}

	scratch := make([]float64, len(coords))
	maxDepth := 0.0
	for i, c := range coords {
		depth := surfaceY - c.Y
		if depth < 0 {
			if e.grid.Points()[i].Class.Attenuates() {
				return models.BeamSummary{}, fmt.Errorf("beam at %g degrees: point %d at depth %g: %w",
					angleDegrees, i, depth, ErrPointAboveSurface)
			}
			continue
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		scratch[i] = table.Interpolate(c.X, depth)
	}

	floats.Add(e.dose, scratch)
	e.geometry = coords
	e.beamsApplied++

	return models.BeamSummary{
		Beam:     models.Beam{AngleDegrees: angleDegrees},
		SurfaceY: surfaceY,
		MaxDepth: maxDepth,
	}, nil
}

// DoseStats summarizes the accumulated dose distribution.
type DoseStats struct {
	Min   float64
	Max   float64
	Mean  float64
	Total float64
}

// Stats computes summary statistics over the current accumulator.
func (e *Engine) Stats() DoseStats {
	if len(e.dose) == 0 {
		return DoseStats{}
	}
	return DoseStats{
		Min:   floats.Min(e.dose),
		Max:   floats.Max(e.dose),
		Mean:  stat.Mean(e.dose, nil),
		Total: floats.Sum(e.dose),
	}
}
