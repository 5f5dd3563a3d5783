package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamdose/pkg/anatomy"
	"beamdose/pkg/engine"
)

func testGrid() *anatomy.Grid {
	g := anatomy.NewGrid(2)
	g.AddPoint(anatomy.GridPoint{X: 0, Y: 0, Class: anatomy.SoftTissue})
	g.AddPoint(anatomy.GridPoint{X: 1, Y: 0, Class: anatomy.SoftTissue})
	g.AddPoint(anatomy.GridPoint{X: 0, Y: -1, Class: anatomy.SoftTissue})
	g.AddPoint(anatomy.GridPoint{X: 1, Y: -1, Class: anatomy.Prostate})
	return g
}

func TestWriteText(t *testing.T) {
	var sb strings.Builder
	err := WriteText(&sb, testGrid(), []float64{1, 2, 3, 4})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2, "one line per grid row")
	assert.Equal(t, []string{"1.000", "2.000"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"3.000", "4.000"}, strings.Fields(lines[1]))
}

func TestWriteTextLengthMismatch(t *testing.T) {
	var sb strings.Builder
	err := WriteText(&sb, testGrid(), []float64{1, 2})
	require.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	stats := engine.DoseStats{Min: 1, Max: 4, Mean: 2.5, Total: 10}
	require.NoError(t, WriteSummary(&sb, stats, 2))

	out := sb.String()
	assert.Contains(t, out, "Beams applied: 2")
	assert.Contains(t, out, "Dose max:  4.000")
	assert.Contains(t, out, "Dose total: 10.000")
}

func TestSaveHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dose.png")
	err := SaveHeatmap(path, testGrid(), []float64{1, 2, 3, 4})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveHeatmapNotRectangular(t *testing.T) {
	g := anatomy.NewGrid(2)
	g.AddPoint(anatomy.GridPoint{X: 0, Y: 0, Class: anatomy.SoftTissue})
	g.AddPoint(anatomy.GridPoint{X: 1, Y: 0, Class: anatomy.SoftTissue})
	g.AddPoint(anatomy.GridPoint{X: 0, Y: -1, Class: anatomy.SoftTissue})

	path := filepath.Join(t.TempDir(), "dose.png")
	err := SaveHeatmap(path, g, []float64{1, 2, 3})
	require.Error(t, err)
}
