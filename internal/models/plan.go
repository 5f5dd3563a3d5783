package models

// Beam describes one treatment beam to apply to the patient grid.
type Beam struct {
	// AngleDegrees is the beam's incidence angle. The patient grid is
	// rotated counter-clockwise by this angle so the beam always travels
	// in the -y direction of the rotated frame.
	AngleDegrees float64

	// Label is an optional human-readable name used in logs and reports.
	Label string
}

// Plan groups the beams applied to one patient in sequence. Dose from
// every beam accumulates additively on the same grid.
type Plan struct {
	Beams []Beam
}

// BeamSummary records the outcome of applying a single beam, for
// reporting after a run.
type BeamSummary struct {
	Beam Beam

	// SurfaceY is the transformed y coordinate where the beam first
	// struck attenuating tissue.
	SurfaceY float64

	// MaxDepth is the deepest point reached beneath the surface.
	MaxDepth float64
}
