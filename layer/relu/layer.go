// Package relu implements a rectified linear unit layer
package relu

import "github.com/neurlang/fetalheart/layer"

const Type = "relu"

type ReluLayer struct {
	LayerName string `json:"name"`
}

func New(name string) *ReluLayer {
	return &ReluLayer{LayerName: name}
}

func (i *ReluLayer) Name() string           { return i.LayerName }
func (i *ReluLayer) Type() string           { return Type }
func (i *ReluLayer) Params() []*layer.Param { return nil }

func (i *ReluLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	return in, nil
}

func (i *ReluLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	return &Relu{
		y:  make([]float32, in.Size()),
		dx: make([]float32, in.Size()),
	}
}

type Relu struct {
	y, dx []float32
}

func (f *Relu) Forward(x []float32) []float32 {
	for i, v := range x {
		if v > 0 {
			f.y[i] = v
		} else {
			f.y[i] = 0
		}
	}
	return f.y
}

func (f *Relu) Backward(dy []float32, grads [][]float32) []float32 {
	for i, g := range dy {
		if f.y[i] > 0 {
			f.dx[i] = g
		} else {
			f.dx[i] = 0
		}
	}
	return f.dx
}
