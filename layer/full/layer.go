// Package full implements a fully connected layer and combiner
package full

import "fmt"
import "math"
import "math/rand"

import "github.com/neurlang/fetalheart/layer"

const Type = "full"

type FullLayer struct {
	LayerName string      `json:"name"`
	In        int         `json:"in"`
	Out       int         `json:"out"`
	Weights   layer.Param `json:"weights"`
	Bias      layer.Param `json:"bias"`
}

// MustNew creates a new full layer mapping in inputs to out outputs
func MustNew(name string, in, out int, rng *rand.Rand) *FullLayer {
	o, err := New(name, in, out, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer mapping in inputs to out outputs.
// Weights are Glorot initialized from rng, the bias starts at zero.
func New(name string, in, out int, rng *rand.Rand) (o *FullLayer, err error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("New Full: invalid size %d -> %d", in, out)
	}
	o = new(FullLayer)
	o.LayerName = name
	o.In = in
	o.Out = out
	o.Weights = layer.NewParam("weights", out*in)
	o.Bias = layer.NewParam("bias", out)
	o.Bias.L2Factor = 0
	limit := math.Sqrt(6 / float64(in+out))
	for i := range o.Weights.Value {
		o.Weights.Value[i] = float32((2*rng.Float64() - 1) * limit)
	}
	return
}

// SetLearnRateFactors sets the weight and bias learn rate multipliers
func (i *FullLayer) SetLearnRateFactors(weights, bias float32) {
	i.Weights.LearnRateFactor = weights
	i.Bias.LearnRateFactor = bias
}

func (i *FullLayer) Name() string { return i.LayerName }
func (i *FullLayer) Type() string { return Type }

func (i *FullLayer) Params() []*layer.Param {
	return []*layer.Param{&i.Weights, &i.Bias}
}

// OutputShape flattens any input of In values to an Out vector
func (i *FullLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	if in.Size() != i.In {
		return layer.Shape{}, fmt.Errorf("full %s: input %s has %d values, want %d", i.LayerName, in, in.Size(), i.In)
	}
	return layer.Vector(i.Out), nil
}

// Lay turns full layer into a combiner
func (i *FullLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	if _, err := i.OutputShape(in); err != nil {
		panic(err.Error())
	}
	return &Full{
		l:  i,
		y:  make([]float32, i.Out),
		dx: make([]float32, i.In),
	}
}
