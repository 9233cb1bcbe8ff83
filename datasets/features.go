package datasets

import "gorgonia.org/tensor"

// Feature is the spectrogram image of one sample. Image is a float32
// tensor of shape (channels, height, width).
type Feature struct {
	Path  string
	Label int
	Image *tensor.Dense
}

// Data returns the image values in channel, row, column order
func (f *Feature) Data() []float32 {
	return f.Image.Data().([]float32)
}

// FeatureSet holds the features of a whole split in memory
type FeatureSet struct {
	Classes  []string
	Features []Feature
}

func (s *FeatureSet) Len() int {
	return len(s.Features)
}

// Input returns the network input of sample i
func (s *FeatureSet) Input(i int) []float32 {
	return s.Features[i].Data()
}

// Label returns the class index of sample i
func (s *FeatureSet) Label(i int) int {
	return s.Features[i].Label
}

// Labels returns the class indexes of all samples
func (s *FeatureSet) Labels() []int {
	o := make([]int, len(s.Features))
	for i := range s.Features {
		o[i] = s.Features[i].Label
	}
	return o
}
