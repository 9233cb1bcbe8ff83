// Package gap implements a global average pooling layer and combiner
package gap

import "fmt"

import "github.com/neurlang/fetalheart/layer"

const Type = "gap"

type GapLayer struct {
	LayerName string `json:"name"`
}

// New creates a new global average pooling layer
func New(name string) *GapLayer {
	return &GapLayer{LayerName: name}
}

func (i *GapLayer) Name() string           { return i.LayerName }
func (i *GapLayer) Type() string           { return Type }
func (i *GapLayer) Params() []*layer.Param { return nil }

// OutputShape averages each channel to one value
func (i *GapLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if in.Size() == 0 {
		return layer.Shape{}, fmt.Errorf("gap %s: empty input", i.LayerName)
	}
	return layer.Vector(in.C), nil
}

// Lay turns gap layer into a combiner
func (i *GapLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	return &Gap{
		in: in,
		y:  make([]float32, in.C),
		dx: make([]float32, in.Size()),
	}
}

type Gap struct {
	in    layer.Shape
	y, dx []float32
}

func (f *Gap) Forward(x []float32) []float32 {
	area := f.in.H * f.in.W
	for c := range f.y {
		var sum float32
		for _, v := range x[c*area : (c+1)*area] {
			sum += v
		}
		f.y[c] = sum / float32(area)
	}
	return f.y
}

func (f *Gap) Backward(dy []float32, grads [][]float32) []float32 {
	area := f.in.H * f.in.W
	for c, g := range dy {
		g /= float32(area)
		for i := c * area; i < (c+1)*area; i++ {
			f.dx[i] = g
		}
	}
	return f.dx
}
