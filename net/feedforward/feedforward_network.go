// Package feedforward implements a feedforward network type
package feedforward

import "errors"
import "fmt"

import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/input"

var (
	// ErrUnknownLayer is returned when a layer name or layer type is not known
	ErrUnknownLayer = errors.New("feedforward: unknown layer")

	// ErrDuplicateLayer is returned when two layers share a name
	ErrDuplicateLayer = errors.New("feedforward: duplicate layer name")

	// ErrNotChain is returned when a layer graph is not a single input to output chain
	ErrNotChain = errors.New("feedforward: layer graph is not a chain")
)

// FeedforwardNetwork is the feedforward network: a chain of layers starting
// with an input layer and ending with an output layer computing the loss.
type FeedforwardNetwork struct {
	layers  []layer.Layer
	shapes  []layer.Shape
	offsets []int
}

// New creates a feedforward network from a chain of layers. The first layer
// must be an input layer, the last one an output layer.
func New(layers ...layer.Layer) (*FeedforwardNetwork, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least an input and an output layer", ErrNotChain)
	}
	in, ok := layers[0].(*input.InputLayer)
	if !ok {
		return nil, fmt.Errorf("%w: first layer %q is %s, not input", ErrNotChain, layers[0].Name(), layers[0].Type())
	}
	f := &FeedforwardNetwork{
		layers:  layers,
		shapes:  make([]layer.Shape, len(layers)+1),
		offsets: make([]int, len(layers)+1),
	}
	f.shapes[0] = in.Shape
	var names = make(map[string]struct{}, len(layers))
	for i, l := range layers {
		if _, dup := names[l.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLayer, l.Name())
		}
		names[l.Name()] = struct{}{}
		out, err := l.OutputShape(f.shapes[i])
		if err != nil {
			return nil, err
		}
		f.shapes[i+1] = out
		f.offsets[i+1] = f.offsets[i] + len(l.Params())
	}
	if _, ok := layers[len(layers)-1].Lay(f.shapes[len(layers)-1], false).(layer.Output); !ok {
		return nil, fmt.Errorf("%w: last layer %q is not an output layer", ErrNotChain, layers[len(layers)-1].Name())
	}
	return f, nil
}

// MustNew creates a feedforward network or panics
func MustNew(layers ...layer.Layer) *FeedforwardNetwork {
	f, err := New(layers...)
	if err != nil {
		panic(err.Error())
	}
	return f
}

// Len returns the number of layers
func (f *FeedforwardNetwork) Len() int {
	return len(f.layers)
}

// Layers returns the layers in forward order
func (f *FeedforwardNetwork) Layers() []layer.Layer {
	return append([]layer.Layer(nil), f.layers...)
}

// GetLayer gets the layer with the given name, or nil
func (f *FeedforwardNetwork) GetLayer(name string) layer.Layer {
	for _, l := range f.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

// InputShape reports the declared input shape of the network
func (f *FeedforwardNetwork) InputShape() layer.Shape {
	return f.shapes[0]
}

// LayerOutputShape reports the output shape of the named layer
func (f *FeedforwardNetwork) LayerOutputShape(name string) (layer.Shape, error) {
	for i, l := range f.layers {
		if l.Name() == name {
			return f.shapes[i+1], nil
		}
	}
	return layer.Shape{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// Classes returns the class names of the output layer, if it has any
func (f *FeedforwardNetwork) Classes() []string {
	if c, ok := f.layers[len(f.layers)-1].(layer.Classifier); ok {
		return c.Classes()
	}
	return nil
}

// Params returns all learnable parameters in layer order
func (f *FeedforwardNetwork) Params() (o []*layer.Param) {
	for _, l := range f.layers {
		o = append(o, l.Params()...)
	}
	return
}

// NewGradients allocates zeroed gradient buffers aligned with Params
func (f *FeedforwardNetwork) NewGradients() [][]float32 {
	params := f.Params()
	o := make([][]float32, len(params))
	for i, p := range params {
		o[i] = make([]float32, len(p.Value))
	}
	return o
}

// Graph returns a layer graph holding the layers of this network, connected in order.
// The layers are shared, not copied.
func (f *FeedforwardNetwork) Graph() *Graph {
	g, _ := NewGraph(f.layers...)
	return g
}

// Infer infers the network output (class probabilities) for one input
func (f *FeedforwardNetwork) Infer(in []float32) []float32 {
	out := f.Lay(false).Forward(in)
	return append([]float32(nil), out...)
}

// Classify returns the most probable class index and the class probabilities
func (f *FeedforwardNetwork) Classify(in []float32) (int, []float32) {
	p := f.Infer(in)
	return Argmax(p), p
}

// Lay creates a pass: one combiner per layer, usable by a single goroutine
func (f *FeedforwardNetwork) Lay(train bool) *Pass {
	p := &Pass{
		f:         f,
		combiners: make([]layer.Combiner, len(f.layers)),
		first:     len(f.layers),
	}
	for i, l := range f.layers {
		p.combiners[i] = l.Lay(f.shapes[i], train)
		if p.first == len(f.layers) {
			for _, param := range l.Params() {
				if param.LearnRateFactor != 0 {
					p.first = i
					break
				}
			}
		}
	}
	p.out = p.combiners[len(p.combiners)-1].(layer.Output)
	return p
}

// Pass runs forward and backward propagation of single samples
type Pass struct {
	f         *FeedforwardNetwork
	combiners []layer.Combiner
	out       layer.Output
	first     int
	y         []float32
}

// Forward computes the network output for input in. The result is owned by the pass.
func (p *Pass) Forward(in []float32) []float32 {
	y := in
	for _, c := range p.combiners {
		y = c.Forward(y)
	}
	p.y = y
	return y
}

// Loss reports the loss of the last Forward against label
func (p *Pass) Loss(label int) float32 {
	loss, _ := p.out.Loss(p.y, label)
	return loss
}

// Backward backpropagates the loss of the last Forward against label and
// accumulates parameter gradients into grads (see NewGradients). Layers below
// the first trainable layer are skipped. It returns the loss.
func (p *Pass) Backward(label int, grads [][]float32) float32 {
	loss, d := p.out.Loss(p.y, label)
	for i := len(p.combiners) - 1; i >= p.first && i > 0; i-- {
		d = p.combiners[i].Backward(d, grads[p.f.offsets[i]:p.f.offsets[i+1]])
	}
	return loss
}

// Argmax returns the index of the largest value, the first one on ties
func Argmax(v []float32) (o int) {
	for i := range v {
		if v[i] > v[o] {
			o = i
		}
	}
	return
}
