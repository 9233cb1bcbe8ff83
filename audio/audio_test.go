package audio

import "math"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func sine(freq float64, rate, n int) *Clip {
	c := &Clip{Samples: make([]float64, n), SampleRate: rate}
	for i := range c.Samples {
		c.Samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return c
}

func TestWriteRead(t *testing.T) {
	name := filepath.Join(t.TempDir(), "sine.wav")
	in := sine(440, 8000, 4000)
	require.NoError(t, Write(name, in, 16))

	out, err := Read(name)
	require.NoError(t, err)
	assert.Equal(t, 8000, out.SampleRate)
	require.Len(t, out.Samples, len(in.Samples))
	for i := range in.Samples {
		assert.InDelta(t, in.Samples[i], out.Samples[i], 1e-3)
	}
	assert.InDelta(t, 0.5, out.Duration(), 1e-9)
}

func TestWriteUnsupportedDepth(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "x.wav"), sine(1, 8000, 10), 12))
}

func TestReadInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(name, []byte("this is not a riff file at all"), 0o644))
	_, err := Read(name)
	assert.ErrorIs(t, err, ErrInvalidWav)

	_, err = Read(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	in := sine(200, 8000, 8000)

	same, err := Resample(in, 0)
	require.NoError(t, err)
	assert.Same(t, in, same)

	out, err := Resample(in, 4000)
	require.NoError(t, err)
	assert.Equal(t, 4000, out.SampleRate)
	assert.InDelta(t, 4000, len(out.Samples), 2)
	for _, s := range out.Samples {
		assert.LessOrEqual(t, math.Abs(s), 1.0)
	}

	// the last quarter is not lost in the filter delay
	var energy float64
	for _, s := range out.Samples[3000:] {
		energy += s * s
	}
	assert.Greater(t, energy/1000, 0.05)

	up, err := Resample(sine(200, 4000, 1001), 8000)
	require.NoError(t, err)
	assert.Len(t, up.Samples, 2002)

	_, err = Resample(in, -1)
	assert.Error(t, err)
}
