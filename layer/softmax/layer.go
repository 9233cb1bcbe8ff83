// Package softmax implements a softmax layer
package softmax

import "math"

import "github.com/neurlang/fetalheart/layer"

const Type = "softmax"

type SoftmaxLayer struct {
	LayerName string `json:"name"`
}

func New(name string) *SoftmaxLayer {
	return &SoftmaxLayer{LayerName: name}
}

func (i *SoftmaxLayer) Name() string           { return i.LayerName }
func (i *SoftmaxLayer) Type() string           { return Type }
func (i *SoftmaxLayer) Params() []*layer.Param { return nil }

func (i *SoftmaxLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	return layer.Vector(in.Size()), nil
}

func (i *SoftmaxLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	return &Softmax{
		y:  make([]float32, in.Size()),
		dx: make([]float32, in.Size()),
	}
}

type Softmax struct {
	y, dx []float32
}

// Forward computes the numerically stable softmax of x
func (f *Softmax) Forward(x []float32) []float32 {
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range x {
		e := math.Exp(float64(v - max))
		f.y[i] = float32(e)
		sum += e
	}
	for i := range f.y {
		f.y[i] = float32(float64(f.y[i]) / sum)
	}
	return f.y
}

// Backward applies the softmax Jacobian: dx_i = y_i (dy_i - sum_j y_j dy_j)
func (f *Softmax) Backward(dy []float32, grads [][]float32) []float32 {
	var dot float32
	for i, g := range dy {
		dot += g * f.y[i]
	}
	for i, g := range dy {
		f.dx[i] = f.y[i] * (g - dot)
	}
	return f.dx
}
