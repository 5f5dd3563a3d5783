// Package interpolation provides the percent-depth-dose table and its
// two-dimensional interpolated lookup. A DoseTable holds measured dose
// fractions on a sparse rectangular (off-axis position x depth) grid and
// predicts dose at unmeasured coordinates by bilinear interpolation.
package interpolation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DoseTable is an immutable rectangular table of measured dose fractions.
// Rows are indexed by off-axis position (lateral distance from the beam's
// central axis) and columns by depth beneath the entry surface. Both
// coordinate axes are strictly ascending; the lookup's bracketing search
// depends on that ordering.
type DoseTable struct {
	offAxis []float64
	depths  []float64
	values  *mat.Dense
}

// NewDoseTable builds a dose table from its two coordinate axes and a
// values matrix with one row per off-axis coordinate and one column per
// depth. Each axis needs at least two entries so every query has a
// bracketing interval. Axes that are not strictly ascending, or a values
// matrix whose shape does not match the axes, are rejected.
func NewDoseTable(offAxis, depths []float64, values [][]float64) (*DoseTable, error) {
	if len(offAxis) < 2 {
		return nil, fmt.Errorf("off-axis axis has %d coordinates, need at least 2", len(offAxis))
	}
	if len(depths) < 2 {
		return nil, fmt.Errorf("depth axis has %d coordinates, need at least 2", len(depths))
	}
	if err := checkAscending("off-axis", offAxis); err != nil {
		return nil, err
	}
	if err := checkAscending("depth", depths); err != nil {
		return nil, err
	}
	if len(values) != len(offAxis) {
		return nil, fmt.Errorf("table has %d rows for %d off-axis coordinates", len(values), len(offAxis))
	}

	dense := mat.NewDense(len(offAxis), len(depths), nil)
	for i, row := range values {
		if len(row) != len(depths) {
			return nil, fmt.Errorf("table row %d has %d values for %d depths", i, len(row), len(depths))
		}
		dense.SetRow(i, row)
	}

	return &DoseTable{
		offAxis: append([]float64(nil), offAxis...),
		depths:  append([]float64(nil), depths...),
		values:  dense,
	}, nil
}

func checkAscending(name string, axis []float64) error {
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return fmt.Errorf("%s axis is not strictly ascending at index %d (%g after %g)",
				name, i, axis[i], axis[i-1])
		}
	}
	return nil
}

// NumOffAxis returns the number of off-axis coordinates.
func (t *DoseTable) NumOffAxis() int {
	return len(t.offAxis)
}

// NumDepths returns the number of depth coordinates.
func (t *DoseTable) NumDepths() int {
	return len(t.depths)
}

// At returns the stored dose fraction at the given axis indices. Indices
// outside the table bounds are an error; interpolation never produces
// them, so a failure here indicates a caller bug.
func (t *DoseTable) At(offAxisIdx, depthIdx int) (float64, error) {
	if offAxisIdx < 0 || offAxisIdx >= len(t.offAxis) {
		return 0, fmt.Errorf("off-axis index %d out of range [0, %d)", offAxisIdx, len(t.offAxis))
	}
	if depthIdx < 0 || depthIdx >= len(t.depths) {
		return 0, fmt.Errorf("depth index %d out of range [0, %d)", depthIdx, len(t.depths))
	}
	return t.values.At(offAxisIdx, depthIdx), nil
}

// Interpolate returns the bilinearly interpolated dose fraction at the
// given off-axis position and depth. Queries at or beyond the last
// coordinate of either axis extrapolate along that axis's final interval;
// queries below the first coordinate fall into the first interval. No
// other range policing is applied.
func (t *DoseTable) Interpolate(offAxis, depth float64) float64 {
	i := bracket(t.offAxis, offAxis)
	j := bracket(t.depths, depth)

	fx := (offAxis - t.offAxis[i]) / (t.offAxis[i+1] - t.offAxis[i])
	fy := (depth - t.depths[j]) / (t.depths[j+1] - t.depths[j])

	v00 := t.values.At(i, j)
	v10 := t.values.At(i+1, j)
	v01 := t.values.At(i, j+1)
	v11 := t.values.At(i+1, j+1)

	// Linear along off-axis at each bracketing depth, then along depth.
	low := v00 + fx*(v10-v00)
	high := v01 + fx*(v11-v01)
	return low + fy*(high-low)
}

// bracket returns the lower index of the axis interval containing v: the
// index before the first coordinate strictly greater than v. When no
// coordinate exceeds v the final interval is used, so out-of-table
// queries extrapolate from the last segment's slope.
func bracket(axis []float64, v float64) int {
	for i, c := range axis {
		if c > v {
			if i > 0 {
				return i - 1
			}
			return 0
		}
	}
	return len(axis) - 2
}
