package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
)

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	els := []element.Element{
		element.NewRectangle(0, geometry.Coords{X1: 100, Y1: 100, X2: 300, Y2: 200}),
		element.NewLine(1, geometry.Coords{X1: 100, Y1: 100, X2: 300, Y2: 200}),
		element.NewFreedraw(2, 120, 150).WithPoint(130, 160).WithPoint(150, 150),
	}

	require.NoError(t, ExportPDF(path, els))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 100)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportEmptyCanvas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, ExportPDF(path, nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, []element.Element{
		element.NewLine(0, geometry.Coords{X2: 40, Y2: 40}),
	}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestShiftToOrigin(t *testing.T) {
	els := []element.Element{
		element.NewRectangle(0, geometry.Coords{X1: 100, Y1: 50, X2: 200, Y2: 80}),
		element.NewFreedraw(1, 150, 60),
	}
	got := shiftToOrigin(els, 0)
	assert.Equal(t, geometry.Coords{X1: 0, Y1: 0, X2: 100, Y2: 30}, got[0].Coords())
	assert.Equal(t, []geometry.Point{{X: 50, Y: 10}}, got[1].Points)
	assert.Equal(t, float64(100), els[0].X1, "input is not modified")
}
