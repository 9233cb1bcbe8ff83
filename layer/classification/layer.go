// Package classification implements the cross-entropy classification output layer
package classification

import "fmt"
import "math"

import "github.com/neurlang/fetalheart/layer"

const Type = "classification"

// epsilon bounds probabilities away from zero inside the logarithm
const epsilon = 1e-8

type ClassificationLayer struct {
	LayerName  string   `json:"name"`
	ClassNames []string `json:"classes"`
}

// New creates a classification output layer over the given class names
func New(name string, classes []string) *ClassificationLayer {
	return &ClassificationLayer{LayerName: name, ClassNames: append([]string(nil), classes...)}
}

func (i *ClassificationLayer) Name() string           { return i.LayerName }
func (i *ClassificationLayer) Type() string           { return Type }
func (i *ClassificationLayer) Params() []*layer.Param { return nil }
func (i *ClassificationLayer) Classes() []string      { return i.ClassNames }

// OutputShape accepts a probability vector with one entry per class
func (i *ClassificationLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if len(i.ClassNames) != 0 && in.Size() != len(i.ClassNames) {
		return layer.Shape{}, fmt.Errorf("classification %s: %d inputs for %d classes", i.LayerName, in.Size(), len(i.ClassNames))
	}
	return layer.Vector(in.Size()), nil
}

func (i *ClassificationLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	return &Classification{dx: make([]float32, in.Size())}
}

type Classification struct {
	dx []float32
}

func (f *Classification) Forward(x []float32) []float32 {
	return x
}

func (f *Classification) Backward(dy []float32, grads [][]float32) []float32 {
	return dy
}

// Loss computes the cross-entropy -log p[label] and its gradient -1/p[label]
func (f *Classification) Loss(p []float32, label int) (float32, []float32) {
	for i := range f.dx {
		f.dx[i] = 0
	}
	q := math.Max(float64(p[label]), epsilon)
	f.dx[label] = float32(-1 / q)
	return float32(-math.Log(q)), f.dx
}
