// Package anatomy models a 2D grid of patient tissue samples and the
// geometric queries a treatment beam needs: rotation of the patient about
// its own center and detection of the surface where the beam enters tissue.
package anatomy

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoSurface is returned when surface detection finds no attenuating
// point, meaning no tissue intersects the beam path.
var ErrNoSurface = errors.New("no surface found: every grid point is air")

// TissueClass identifies the tissue type at a grid point. Input files carry
// free-form structure codes; those are mapped onto this closed set once at
// ingestion so the rest of the pipeline never compares raw strings.
type TissueClass int

const (
	// Air is non-attenuating background; the beam passes through it
	// without depositing dose and it never counts as surface.
	Air TissueClass = iota

	// Prostate is the treatment target structure.
	Prostate

	// SoftTissue is any other attenuating tissue.
	SoftTissue
)

// ClassifyCode maps a raw structure code from an anatomy input file onto
// the closed tissue tag set. Codes follow the data source convention:
// "A" marks air and "P" marks prostate; anything else is generic tissue.
func ClassifyCode(code string) TissueClass {
	switch code {
	case "A", "a", "air":
		return Air
	case "P", "p":
		return Prostate
	default:
		return SoftTissue
	}
}

// Attenuates reports whether the beam deposits dose in this tissue class.
// Only air is transparent.
func (t TissueClass) Attenuates() bool {
	return t != Air
}

func (t TissueClass) String() string {
	switch t {
	case Air:
		return "air"
	case Prostate:
		return "prostate"
	default:
		return "tissue"
	}
}

// GridPoint is one sample of the patient anatomy: its position in the
// internal coordinate system (+y points posterior to anterior) and its
// tissue classification. The raw structure code is kept for reporting.
type GridPoint struct {
	X, Y  float64
	Class TissueClass
	Code  string
}

// Coord is one transformed point position in a beam geometry snapshot.
type Coord struct {
	X, Y float64
}

// Grid owns an ordered, row-major sequence of grid points together with
// the bounding box and geometric center derived from them. Point order is
// semantically meaningful: index i here corresponds to index i in every
// geometry snapshot and in the engine's dose accumulator, and consecutive
// runs of Stride() points reconstruct the original rectangular rows.
type Grid struct {
	points []GridPoint
	stride int

	minX, maxX float64
	minY, maxY float64
}

// NewGrid creates an empty grid with the given stride (points per row).
func NewGrid(stride int) *Grid {
	return &Grid{stride: stride}
}

// AddPoint appends a point and folds its position into the bounding box.
// The center used by Rotate is always the midpoint of the bounds of all
// points added so far, so the full grid must be populated before any
// rotation or surface query is meaningful.
func (g *Grid) AddPoint(p GridPoint) {
	if len(g.points) == 0 {
		g.minX, g.maxX = p.X, p.X
		g.minY, g.maxY = p.Y, p.Y
	} else {
		g.minX = math.Min(g.minX, p.X)
		g.maxX = math.Max(g.maxX, p.X)
		g.minY = math.Min(g.minY, p.Y)
		g.maxY = math.Max(g.maxY, p.Y)
	}
	g.points = append(g.points, p)
}

// Points returns the grid's point sequence in row-major order. The slice
// is owned by the grid; callers must not reorder it.
func (g *Grid) Points() []GridPoint {
	return g.points
}

// NumPoints returns the number of points in the grid.
func (g *Grid) NumPoints() int {
	return len(g.points)
}

// Stride returns the number of points per row.
func (g *Grid) Stride() int {
	return g.stride
}

// Bounds returns the bounding box of all points added so far.
func (g *Grid) Bounds() (minX, minY, maxX, maxY float64) {
	return g.minX, g.minY, g.maxX, g.maxY
}

// Center returns the midpoint of the current bounding box. Rotations are
// defined relative to this point so they are symmetric about the patient.
func (g *Grid) Center() (x, y float64) {
	return (g.minX + g.maxX) / 2, (g.minY + g.maxY) / 2
}

// Rotate returns the grid's geometry after rotating every point by
// angleDegrees counter-clockwise about the grid center. The result is a
// fresh snapshot indexed in parallel with Points(); the grid itself is
// never mutated, so rotation is not cumulative: Rotate(30) twice yields
// the same geometry as a single Rotate(30). This models "set beam angle
// to theta", not "rotate further by theta".
func (g *Grid) Rotate(angleDegrees float64) []Coord {
	rad := angleDegrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := g.Center()

	coords := make([]Coord, len(g.points))
	for i, p := range g.points {
		dx := p.X - cx
		dy := p.Y - cy
		coords[i] = Coord{
			X: cx + dx*cos - dy*sin,
			Y: cy + dx*sin + dy*cos,
		}
	}
	return coords
}

// FindSurface returns the maximum transformed y among attenuating points,
// i.e. the most anterior non-air point in the given beam geometry. After
// rotation the beam travels in the -y direction, so this is where it first
// strikes tissue. Returns ErrNoSurface when every point is air.
func (g *Grid) FindSurface(coords []Coord) (float64, error) {
	if len(coords) != len(g.points) {
		return 0, fmt.Errorf("geometry snapshot has %d coords for %d points", len(coords), len(g.points))
	}

	surfaceY := math.Inf(-1)
	found := false
	for i, p := range g.points {
		if !p.Class.Attenuates() {
			continue
		}
		if coords[i].Y > surfaceY {
			surfaceY = coords[i].Y
		}
		found = true
	}
	if !found {
		return 0, ErrNoSurface
	}
	return surfaceY, nil
}
