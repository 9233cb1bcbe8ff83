package fetalheart

import "math/rand"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/fetalheart/datasets"

func touch(t *testing.T, name string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, nil, 0o644))
}

func TestAssemble(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "absent", "b.wav"))
	touch(t, filepath.Join(root, "absent", "a.WAV"))
	touch(t, filepath.Join(root, "absent", "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "absent", "sub.wav"), 0o755))
	touch(t, filepath.Join(root, "regular", "x.wav"))
	touch(t, filepath.Join(root, "irregular", "y.wav"))

	d, err := Assemble(root, DefaultCategories, "wav")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories, d.Classes)
	assert.Equal(t, []datasets.Sample{
		{Path: filepath.Join(root, "absent", "a.WAV"), Label: 0},
		{Path: filepath.Join(root, "absent", "b.wav"), Label: 0},
		{Path: filepath.Join(root, "regular", "x.wav"), Label: 1},
		{Path: filepath.Join(root, "irregular", "y.wav"), Label: 2},
	}, d.Samples)
}

func TestAssembleEmpty(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "absent", "a.wav"))
	touch(t, filepath.Join(root, "regular", "a.mp3"))

	_, err := Assemble(root, DefaultCategories, DefaultExtension)
	assert.ErrorIs(t, err, datasets.ErrEmptyDataset)

	_, err = Assemble(filepath.Join(root, "missing"), DefaultCategories, DefaultExtension)
	assert.ErrorIs(t, err, datasets.ErrEmptyDataset)

	_, err = Assemble(root, nil, DefaultExtension)
	assert.ErrorIs(t, err, datasets.ErrEmptyDataset)
}

func TestHundredFilesSplit(t *testing.T) {
	root := t.TempDir()
	n := 0
	for i := 0; i < 100; i++ {
		category := DefaultCategories[i%3]
		touch(t, filepath.Join(root, category, string(rune('a'+i/26))+string(rune('a'+i%26))+".wav"))
		n++
	}
	d, err := Assemble(root, DefaultCategories, DefaultExtension)
	require.NoError(t, err)
	require.Equal(t, n, d.Len())
	assert.Equal(t, []int{34, 33, 33}, d.CountLabels())

	d.Shuffle(rand.New(rand.NewSource(42)))
	s, err := d.Split(0.8, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 80, s.Train.Len())
	assert.Equal(t, 10, s.Validation.Len())
	assert.Equal(t, 10, s.Test.Len())
}

func TestAssembleFollowsSymlinks(t *testing.T) {
	store := t.TempDir()
	touch(t, filepath.Join(store, "rec1.wav"))
	touch(t, filepath.Join(store, "rec2.wav"))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "absent"), 0o755))
	if err := os.Symlink(filepath.Join(store, "rec1.wav"), filepath.Join(root, "absent", "linked.wav")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(store, "gone.wav"), filepath.Join(root, "absent", "dangling.wav")))
	require.NoError(t, os.Symlink(store, filepath.Join(root, "regular")))
	touch(t, filepath.Join(root, "irregular", "y.wav"))

	d, err := Assemble(root, DefaultCategories, DefaultExtension)
	require.NoError(t, err)
	assert.Equal(t, []datasets.Sample{
		{Path: filepath.Join(root, "absent", "linked.wav"), Label: 0},
		{Path: filepath.Join(root, "regular", "rec1.wav"), Label: 1},
		{Path: filepath.Join(root, "regular", "rec2.wav"), Label: 1},
		{Path: filepath.Join(root, "irregular", "y.wav"), Label: 2},
	}, d.Samples)
}
