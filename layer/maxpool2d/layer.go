// Package maxpool2d implements a 2D max pooling layer and combiner
package maxpool2d

import "fmt"

import "github.com/neurlang/fetalheart/layer"

const Type = "maxpool2d"

type MaxPool2DLayer struct {
	LayerName string `json:"name"`
	Size      int    `json:"size"`
	Stride    int    `json:"stride"`
}

// MustNew creates a new MaxPool2D layer with pooling window size and stride
func MustNew(name string, size, stride int) *MaxPool2DLayer {
	o, err := New(name, size, stride)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new MaxPool2D layer with pooling window size and stride
func New(name string, size, stride int) (o *MaxPool2DLayer, err error) {
	if size <= 0 || stride <= 0 {
		return nil, fmt.Errorf("New MaxPool2D: invalid size %d or stride %d", size, stride)
	}
	return &MaxPool2DLayer{LayerName: name, Size: size, Stride: stride}, nil
}

func (i *MaxPool2DLayer) Name() string           { return i.LayerName }
func (i *MaxPool2DLayer) Type() string           { return Type }
func (i *MaxPool2DLayer) Params() []*layer.Param { return nil }

// OutputShape computes the pooled shape, windows never leave the input
func (i *MaxPool2DLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if in.H < i.Size || in.W < i.Size {
		return layer.Shape{}, fmt.Errorf("maxpool2d %s: input %s smaller than window %d", i.LayerName, in, i.Size)
	}
	return layer.Shape{
		C: in.C,
		H: (in.H-i.Size)/i.Stride + 1,
		W: (in.W-i.Size)/i.Stride + 1,
	}, nil
}

// Lay turns MaxPool2D layer into a combiner
func (i *MaxPool2DLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	out, err := i.OutputShape(in)
	if err != nil {
		panic(err.Error())
	}
	return &MaxPool2D{
		l:      i,
		in:     in,
		out:    out,
		y:      make([]float32, out.Size()),
		argmax: make([]int, out.Size()),
		dx:     make([]float32, in.Size()),
	}
}
