// Package transfer replaces the classification head of a pretrained network
package transfer

import "fmt"
import "math/rand"

import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/classification"
import "github.com/neurlang/fetalheart/layer/full"
import "github.com/neurlang/fetalheart/layer/softmax"
import "github.com/neurlang/fetalheart/net/feedforward"

// HeadLayers is the number of layers detached from the pretrained network
const HeadLayers = 3

type Options struct {
	Classes []string

	// learn rate multipliers of the new fully connected layer
	WeightLearnRateFactor float32
	BiasLearnRateFactor   float32

	// FreezeBackbone sets the learn rate of all kept layers to zero
	FreezeBackbone bool

	Seed int64

	FCName, SoftmaxName, OutputName string
}

// DefaultOptions returns learn rate factors of 10 and the head names fc, softmax and classoutput
func DefaultOptions(classes []string) Options {
	return Options{
		Classes:               classes,
		WeightLearnRateFactor: 10,
		BiasLearnRateFactor:   10,
		Seed:                  1,
		FCName:                "fc",
		SoftmaxName:           "softmax",
		OutputName:            "classoutput",
	}
}

// Adapt detaches the final fully connected, softmax and classification layers
// of net and attaches a new head sized to o.Classes behind the remaining
// tail (usually global average pooling followed by dropout). The kept layers
// are shared with net, not copied.
func Adapt(net *feedforward.FeedforwardNetwork, o Options) (*feedforward.FeedforwardNetwork, error) {
	if len(o.Classes) < 2 {
		return nil, fmt.Errorf("transfer: need at least 2 classes, got %d", len(o.Classes))
	}
	layers := net.Layers()
	if len(layers) < HeadLayers+2 {
		return nil, fmt.Errorf("transfer: %w: %d layers, nothing left after removing the head", feedforward.ErrNotChain, len(layers))
	}
	head := layers[len(layers)-HeadLayers:]
	if _, ok := head[0].(*full.FullLayer); !ok {
		return nil, fmt.Errorf("transfer: layer %q is %s, want %s", head[0].Name(), head[0].Type(), full.Type)
	}
	if _, ok := head[1].(*softmax.SoftmaxLayer); !ok {
		return nil, fmt.Errorf("transfer: layer %q is %s, want %s", head[1].Name(), head[1].Type(), softmax.Type)
	}
	if _, ok := head[2].(*classification.ClassificationLayer); !ok {
		return nil, fmt.Errorf("transfer: layer %q is %s, want %s", head[2].Name(), head[2].Type(), classification.Type)
	}
	tail := layers[len(layers)-HeadLayers-1]
	shape, err := net.LayerOutputShape(tail.Name())
	if err != nil {
		return nil, err
	}

	g := net.Graph()
	if err := g.RemoveLayers(head[0].Name(), head[1].Name(), head[2].Name()); err != nil {
		return nil, err
	}
	fc, err := full.New(o.FCName, shape.Size(), len(o.Classes), rand.New(rand.NewSource(o.Seed)))
	if err != nil {
		return nil, err
	}
	fc.SetLearnRateFactors(o.WeightLearnRateFactor, o.BiasLearnRateFactor)
	err = g.AddLayers(fc, softmax.New(o.SoftmaxName), classification.New(o.OutputName, o.Classes))
	if err != nil {
		return nil, err
	}
	if err := g.ConnectLayers(tail.Name(), fc.Name()); err != nil {
		return nil, err
	}
	adapted, err := g.Assemble()
	if err != nil {
		return nil, err
	}
	if o.FreezeBackbone {
		Freeze(adapted.Layers()[:len(layers)-HeadLayers]...)
	}
	return adapted, nil
}

// Freeze sets the learn rate factor of every parameter of layers to zero
func Freeze(layers ...layer.Layer) {
	for _, l := range layers {
		for _, p := range l.Params() {
			p.LearnRateFactor = 0
		}
	}
}
