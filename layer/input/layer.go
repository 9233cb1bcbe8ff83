// Package input implements the image input layer
package input

import "fmt"

import "github.com/neurlang/fetalheart/layer"

const Type = "input"

// InputLayer declares the network input shape and subtracts a per-channel mean
type InputLayer struct {
	LayerName string      `json:"name"`
	Shape     layer.Shape `json:"shape"`
	Mean      []float32   `json:"mean,omitempty"`
}

// New creates an input layer; mean may be nil or hold one value per channel
func New(name string, shape layer.Shape, mean []float32) (*InputLayer, error) {
	if shape.Size() <= 0 {
		return nil, fmt.Errorf("New Input: invalid shape %s", shape)
	}
	if mean != nil && len(mean) != shape.C {
		return nil, fmt.Errorf("New Input: %d means for %d channels", len(mean), shape.C)
	}
	return &InputLayer{LayerName: name, Shape: shape, Mean: mean}, nil
}

func (i *InputLayer) Name() string           { return i.LayerName }
func (i *InputLayer) Type() string           { return Type }
func (i *InputLayer) Params() []*layer.Param { return nil }

func (i *InputLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if in != i.Shape {
		return layer.Shape{}, fmt.Errorf("input %s: got %s, want %s", i.LayerName, in, i.Shape)
	}
	return in, nil
}

func (i *InputLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	return &Input{l: i, y: make([]float32, in.Size())}
}

type Input struct {
	l *InputLayer
	y []float32
}

func (f *Input) Forward(x []float32) []float32 {
	if f.l.Mean == nil {
		copy(f.y, x)
		return f.y
	}
	area := f.l.Shape.H * f.l.Shape.W
	for c, m := range f.l.Mean {
		for i := c * area; i < (c+1)*area; i++ {
			f.y[i] = x[i] - m
		}
	}
	return f.y
}

func (f *Input) Backward(dy []float32, grads [][]float32) []float32 {
	return dy
}
