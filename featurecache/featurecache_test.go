package featurecache

import "os"
import "path/filepath"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "gorgonia.org/tensor"

import "github.com/neurlang/fetalheart/spectrogram"

func TestPutGet(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(name, []byte("abc"), 0o644))

	c, err := Open(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	k, err := NewKey(name, spectrogram.DefaultParams(), 4000, 3, 2, 2)
	require.NoError(t, err)

	_, err = c.Get(k)
	assert.ErrorIs(t, err, ErrMiss)

	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	img := tensor.New(tensor.WithShape(3, 2, 2), tensor.WithBacking(data))
	require.NoError(t, c.Put(k, img))

	got, err := c.Get(k)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 2}, []int(got.Shape()))
	assert.Equal(t, data, got.Data().([]float32))
	require.NoError(t, c.Close())

	// persisted across reopen
	c, err = Open(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	defer c.Close()
	got, err = c.Get(k)
	require.NoError(t, err)
	assert.Equal(t, data, got.Data().([]float32))

	// other parameters miss
	p := spectrogram.DefaultParams()
	p.Bands = 64
	k2, err := NewKey(name, p, 4000, 3, 2, 2)
	require.NoError(t, err)
	_, err = c.Get(k2)
	assert.ErrorIs(t, err, ErrMiss)

	// a modified file misses
	require.NoError(t, os.WriteFile(name, []byte("abcd"), 0o644))
	require.NoError(t, os.Chtimes(name, time.Now(), time.Now().Add(time.Hour)))
	k3, err := NewKey(name, spectrogram.DefaultParams(), 4000, 3, 2, 2)
	require.NoError(t, err)
	_, err = c.Get(k3)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemory(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	defer c.Close()
	k := Key{Path: "x", Shape: []int{1, 1, 2}}
	require.NoError(t, c.Put(k, tensor.New(tensor.WithShape(1, 1, 2), tensor.WithBacking([]float32{1, 2}))))
	got, err := c.Get(k)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got.Data().([]float32))
}

func TestNewKeyMissingFile(t *testing.T) {
	_, err := NewKey(filepath.Join(t.TempDir(), "nope.wav"), spectrogram.DefaultParams(), 0, 3, 1, 1)
	assert.Error(t, err)
}
