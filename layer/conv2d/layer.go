// Package conv2d implements a 2D convolution layer and combiner
package conv2d

import "fmt"
import "math"
import "math/rand"

import "github.com/neurlang/fetalheart/layer"

const Type = "conv2d"

type Conv2DLayer struct {
	LayerName   string      `json:"name"`
	InChannels  int         `json:"in_channels"`
	OutChannels int         `json:"out_channels"`
	Size        int         `json:"size"`
	Stride      int         `json:"stride"`
	Padding     int         `json:"padding"`
	Weights     layer.Param `json:"weights"`
	Bias        layer.Param `json:"bias"`
}

// MustNew creates a new Conv2D layer with He initialized weights
func MustNew(name string, in, out, size, stride, padding int, rng *rand.Rand) *Conv2DLayer {
	o, err := New(name, in, out, size, stride, padding, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv2D layer with in input channels, out filters of size x size,
// stride and zero padding. Weights are He initialized from rng.
func New(name string, in, out, size, stride, padding int, rng *rand.Rand) (o *Conv2DLayer, err error) {
	if in <= 0 || out <= 0 || size <= 0 {
		return nil, fmt.Errorf("New Conv2D: invalid channels %d/%d or size %d", in, out, size)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("New Conv2D: Stride %d is not positive", stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("New Conv2D: Padding %d is negative", padding)
	}
	o = new(Conv2DLayer)
	o.LayerName = name
	o.InChannels = in
	o.OutChannels = out
	o.Size = size
	o.Stride = stride
	o.Padding = padding
	o.Weights = layer.NewParam("weights", out*in*size*size)
	o.Bias = layer.NewParam("bias", out)
	o.Bias.L2Factor = 0
	std := math.Sqrt(2 / float64(in*size*size))
	for i := range o.Weights.Value {
		o.Weights.Value[i] = float32(rng.NormFloat64() * std)
	}
	return
}

func (i *Conv2DLayer) Name() string { return i.LayerName }
func (i *Conv2DLayer) Type() string { return Type }

func (i *Conv2DLayer) Params() []*layer.Param {
	return []*layer.Param{&i.Weights, &i.Bias}
}

// OutputShape computes the convolution output shape
func (i *Conv2DLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if in.C != i.InChannels {
		return layer.Shape{}, fmt.Errorf("conv2d %s: input has %d channels, want %d", i.LayerName, in.C, i.InChannels)
	}
	if in.H+2*i.Padding < i.Size || in.W+2*i.Padding < i.Size {
		return layer.Shape{}, fmt.Errorf("conv2d %s: input %s smaller than filter %d", i.LayerName, in, i.Size)
	}
	h := (in.H+2*i.Padding-i.Size)/i.Stride + 1
	w := (in.W+2*i.Padding-i.Size)/i.Stride + 1
	return layer.Shape{C: i.OutChannels, H: h, W: w}, nil
}

// Lay turns Conv2D layer into a combiner
func (i *Conv2DLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	out, err := i.OutputShape(in)
	if err != nil {
		panic(err.Error())
	}
	return &Conv2D{
		l:   i,
		in:  in,
		out: out,
		y:   make([]float32, out.Size()),
		dx:  make([]float32, in.Size()),
	}
}
