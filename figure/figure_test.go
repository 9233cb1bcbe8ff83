package figure

import "image/png"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/fetalheart/metrics"

func TestConfusionChart(t *testing.T) {
	r, err := metrics.Compute([]string{"absent", "regular", "irregular"},
		[]int{0, 0, 1, 1, 2, 2}, []int{0, 1, 1, 1, 2, 0})
	require.NoError(t, err)

	img, err := ConfusionChart(r, "Test")
	require.NoError(t, err)
	size := 2*margin + 3*cell + summary
	assert.Equal(t, size, img.Bounds().Dx())
	assert.Equal(t, size, img.Bounds().Dy())

	// regular is always recognised: its diagonal cell is fully blue
	c := img.RGBAAt(margin+cell+2, margin+cell+2)
	assert.Equal(t, blue, c)
	// irregular never predicted as regular: white
	c = img.RGBAAt(margin+cell+2, margin+2*cell+2)
	assert.Equal(t, white, c)

	name := filepath.Join(t.TempDir(), "confusion.png")
	require.NoError(t, SavePNG(name, img))
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestConfusionChartEmpty(t *testing.T) {
	_, err := ConfusionChart(&metrics.Report{}, "empty")
	assert.Error(t, err)
}

func TestBlend(t *testing.T) {
	assert.Equal(t, white, blend(red, 0))
	assert.Equal(t, red, blend(red, 1))
	assert.Equal(t, red, blend(red, 2))
}
