// Package planio reads the two tabular inputs of a treatment plan: the
// patient anatomy grid and the measured percent-depth-dose table. Both
// formats are fixed by data-source convention and validated strictly;
// a malformed row is fatal, there is no partial recovery.
package planio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"beamdose/pkg/anatomy"
	"beamdose/pkg/interpolation"
)

// ParseAnatomy reads an anatomy grid in the source CSV convention: the
// first row holds a corner/header cell followed by ascending x
// coordinates; every following row holds a y coordinate followed by one
// structure code per x column. Every row must have exactly as many cells
// as the header.
//
// Source files grow downward, so y is negated on ingestion to yield the
// internal +y-up (posterior to anterior) coordinate system.
func ParseAnatomy(r io.Reader) (*anatomy.Grid, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading anatomy input: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("anatomy input needs a header row and at least one data row, got %d rows", len(rows))
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("anatomy header has %d cells, need a corner cell plus x coordinates", len(header))
	}
	xCoords := make([]float64, len(header)-1)
	for i, cell := range header[1:] {
		x, err := parseCell(cell)
		if err != nil {
			return nil, fmt.Errorf("anatomy header x coordinate %d: %w", i, err)
		}
		xCoords[i] = x
	}

	grid := anatomy.NewGrid(len(xCoords))
	for rowIdx, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("anatomy row %d has %d cells, header has %d", rowIdx+1, len(row), len(header))
		}
		y, err := parseCell(row[0])
		if err != nil {
			return nil, fmt.Errorf("anatomy row %d y coordinate: %w", rowIdx+1, err)
		}
		for col, code := range row[1:] {
			code = strings.TrimSpace(code)
			grid.AddPoint(anatomy.GridPoint{
				X:     xCoords[col],
				Y:     -y,
				Class: anatomy.ClassifyCode(code),
				Code:  code,
			})
		}
	}
	return grid, nil
}

// ParseDoseTable reads a percent-depth-dose table: two descriptive header
// rows (ignored), then a row holding the depth coordinates after an
// ignored corner cell, then one row per off-axis coordinate with a dose
// value per depth column. A row whose length does not match the depth
// axis rejects the whole input.
func ParseDoseTable(r io.Reader) (*interpolation.DoseTable, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("reading dose table input: %w", err)
	}
	if len(rows) < 4 {
		return nil, fmt.Errorf("dose table input needs 2 header rows, a depth row and at least one data row, got %d rows", len(rows))
	}

	depthRow := rows[2]
	if len(depthRow) < 2 {
		return nil, fmt.Errorf("dose table depth row has %d cells, need a corner cell plus depths", len(depthRow))
	}
	depths := make([]float64, len(depthRow)-1)
	for i, cell := range depthRow[1:] {
		d, err := parseCell(cell)
		if err != nil {
			return nil, fmt.Errorf("dose table depth coordinate %d: %w", i, err)
		}
		depths[i] = d
	}

	var offAxis []float64
	var values [][]float64
	for rowIdx, row := range rows[3:] {
		if len(row) != len(depths)+1 {
			return nil, fmt.Errorf("dose table row %d has %d values for %d depths", rowIdx, len(row)-1, len(depths))
		}
		pos, err := parseCell(row[0])
		if err != nil {
			return nil, fmt.Errorf("dose table row %d off-axis coordinate: %w", rowIdx, err)
		}
		doses := make([]float64, len(depths))
		for col, cell := range row[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("dose table row %d column %d: %w", rowIdx, col, err)
			}
			doses[col] = v
		}
		offAxis = append(offAxis, pos)
		values = append(values, doses)
	}

	table, err := interpolation.NewDoseTable(offAxis, depths, values)
	if err != nil {
		return nil, fmt.Errorf("building dose table: %w", err)
	}
	return table, nil
}

// LoadAnatomyFile parses an anatomy grid from a CSV file on disk.
func LoadAnatomyFile(path string) (*anatomy.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening anatomy file: %w", err)
	}
	defer f.Close()
	return ParseAnatomy(f)
}

// LoadDoseTableFile parses a dose table from a CSV file on disk.
func LoadDoseTableFile(path string) (*interpolation.DoseTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dose table file: %w", err)
	}
	defer f.Close()
	return ParseDoseTable(f)
}

// readRows slurps every CSV record without enforcing a uniform field
// count; row-length validation happens per format with clearer errors.
func readRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func parseCell(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q as number: %w", cell, err)
	}
	return v, nil
}
