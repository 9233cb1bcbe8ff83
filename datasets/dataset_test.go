package datasets

import "fmt"
import "math/rand"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func makeDataset(counts ...int) Dataset {
	var d Dataset
	for label, n := range counts {
		d.Classes = append(d.Classes, fmt.Sprintf("class%d", label))
		for i := 0; i < n; i++ {
			d.Samples = append(d.Samples, Sample{Path: fmt.Sprintf("%d/%03d.wav", label, i), Label: label})
		}
	}
	return d
}

func assertPartition(t *testing.T, d Dataset, s Splits) {
	seen := make(map[string]int)
	for _, part := range []Dataset{s.Train, s.Validation, s.Test} {
		for _, sample := range part.Samples {
			seen[sample.Path]++
		}
	}
	assert.Len(t, seen, d.Len())
	for _, sample := range d.Samples {
		assert.Equal(t, 1, seen[sample.Path], sample.Path)
	}
	assert.Equal(t, d.Len(), s.Train.Len()+s.Validation.Len()+s.Test.Len())
}

func TestSplitHundred(t *testing.T) {
	d := makeDataset(34, 33, 33)
	d.Shuffle(rand.New(rand.NewSource(1)))
	s, err := d.Split(0.8, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 80, s.Train.Len())
	assert.Equal(t, 10, s.Validation.Len())
	assert.Equal(t, 10, s.Test.Len())
	assertPartition(t, d, s)

	for i, n := range s.Train.CountLabels() {
		assert.InDelta(t, 0.8*float64(d.CountLabels()[i]), n, 1)
	}
	for _, part := range []Dataset{s.Validation, s.Test} {
		for _, n := range part.CountLabels() {
			assert.InDelta(t, 10.0/3, n, 1)
		}
	}
}

func TestSplitNeverDropsOrDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		d := makeDataset(1+rng.Intn(20), rng.Intn(20), rng.Intn(20))
		d.Shuffle(rng)
		s, err := d.Split(0.8, 0.1)
		require.NoError(t, err)
		assertPartition(t, d, s)
	}
}

func TestSplitKeepsOrder(t *testing.T) {
	d := makeDataset(10, 10)
	d.Shuffle(rand.New(rand.NewSource(3)))
	s, err := d.Split(0.8, 0.1)
	require.NoError(t, err)

	index := make(map[string]int)
	for i, sample := range d.Samples {
		index[sample.Path] = i
	}
	for _, part := range []Dataset{s.Train, s.Validation, s.Test} {
		for i := 1; i < part.Len(); i++ {
			assert.Less(t, index[part.Samples[i-1].Path], index[part.Samples[i].Path])
		}
	}
}

func TestSplitErrors(t *testing.T) {
	var empty Dataset
	_, err := empty.Split(0.8, 0.1)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	d := makeDataset(3)
	_, err = d.Split(0.1, 0.1)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = d.Split(0.9, 0.2)
	assert.Error(t, err)
}

func TestApportion(t *testing.T) {
	assert.Equal(t, []int{27, 27, 26}, Apportion(80, []int{34, 33, 33}))
	assert.Equal(t, []int{4, 3, 3}, Apportion(10, []int{7, 6, 7}))
	assert.Equal(t, []int{0, 0}, Apportion(5, []int{0, 0}))
	assert.Equal(t, []int{2, 0}, Apportion(2, []int{2, 0}))
	assert.Equal(t, []int{1, 1, 0}, Apportion(2, []int{1, 1, 1}))
}

func TestShuffleIsSeeded(t *testing.T) {
	a, b := makeDataset(5, 5), makeDataset(5, 5)
	a.Shuffle(rand.New(rand.NewSource(4)))
	b.Shuffle(rand.New(rand.NewSource(4)))
	assert.Equal(t, a.Samples, b.Samples)
}
