// Package inference classifies audio files with a trained network
package inference

import "fmt"

import "github.com/neurlang/fetalheart/features"
import "github.com/neurlang/fetalheart/net/feedforward"
import "github.com/neurlang/fetalheart/spectrogram"

type Prediction struct {
	Path          string
	Class         int
	Label         string
	Probabilities []float32
}

type Model struct {
	Net       *feedforward.FeedforwardNetwork
	Extractor *features.Extractor
}

// New prepares a model whose extractor produces images of the network input shape
func New(net *feedforward.FeedforwardNetwork, params spectrogram.Params, sampleRate int) (*Model, error) {
	if len(net.Classes()) == 0 {
		return nil, fmt.Errorf("inference: network has no classification output")
	}
	e, err := features.New(params, net.InputShape())
	if err != nil {
		return nil, err
	}
	e.SampleRate = sampleRate
	return &Model{Net: net, Extractor: e}, nil
}

// Infer classifies the audio file at path
func (m *Model) Infer(path string) (*Prediction, error) {
	img, err := m.Extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	class, p := m.Net.Classify(img.Data().([]float32))
	return &Prediction{
		Path:          path,
		Class:         class,
		Label:         m.Net.Classes()[class],
		Probabilities: append([]float32(nil), p...),
	}, nil
}
