// Package backbone builds a compact convolutional image classifier used as
// the pretrained network when no other model file is available
package backbone

import "fmt"
import "math/rand"

import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/classification"
import "github.com/neurlang/fetalheart/layer/conv2d"
import "github.com/neurlang/fetalheart/layer/dropout"
import "github.com/neurlang/fetalheart/layer/full"
import "github.com/neurlang/fetalheart/layer/gap"
import "github.com/neurlang/fetalheart/layer/input"
import "github.com/neurlang/fetalheart/layer/maxpool2d"
import "github.com/neurlang/fetalheart/layer/relu"
import "github.com/neurlang/fetalheart/layer/softmax"
import "github.com/neurlang/fetalheart/net/feedforward"

// Names of the tail layers
const (
	PoolName       = "pool5-7x7_s1"
	DropName       = "pool5-drop_7x7_s1"
	ClassifierName = "loss3-classifier"
	ProbName       = "prob"
	OutputName     = "output"
)

type Options struct {
	Size     int     // input height and width
	Channels int     // input channels
	Widths   []int   // filters of the convolution stages
	Classes  int     // outputs of the classifier
	Dropout  float32 // dropout probability before the classifier
	Seed     int64
}

// DefaultOptions returns a 224x224x3 input, three stages of 16, 32 and 64 filters and 1000 classes
func DefaultOptions() Options {
	return Options{
		Size:     224,
		Channels: 3,
		Widths:   []int{16, 32, 64},
		Classes:  1000,
		Dropout:  0.4,
		Seed:     1,
	}
}

// New creates the network: a stride 2 stem convolution, then per stage a 3x3
// convolution, ReLU and 2x2 max pooling (no pooling after the last stage),
// global average pooling, dropout, a fully connected classifier, softmax and
// a classification output. Weights are He initialized.
func New(o Options) (*feedforward.FeedforwardNetwork, error) {
	if len(o.Widths) == 0 || o.Classes <= 0 || o.Channels <= 0 {
		return nil, fmt.Errorf("backbone: invalid options %+v", o)
	}
	if o.Size < 4<<uint(len(o.Widths)) {
		return nil, fmt.Errorf("backbone: input size %d too small for %d stages", o.Size, len(o.Widths))
	}
	rng := rand.New(rand.NewSource(o.Seed))
	in, err := input.New("data", layer.Shape{C: o.Channels, H: o.Size, W: o.Size}, nil)
	if err != nil {
		return nil, err
	}
	layers := []layer.Layer{
		in,
		conv2d.MustNew("conv1-5x5_s2", o.Channels, o.Widths[0], 5, 2, 2, rng),
		relu.New("conv1-relu_5x5"),
	}
	prev := o.Widths[0]
	for i, w := range o.Widths {
		stage := i + 2
		layers = append(layers,
			conv2d.MustNew(fmt.Sprintf("conv%d-3x3", stage), prev, w, 3, 1, 1, rng),
			relu.New(fmt.Sprintf("conv%d-relu_3x3", stage)),
		)
		if i+1 < len(o.Widths) {
			layers = append(layers, maxpool2d.MustNew(fmt.Sprintf("pool%d-2x2_s2", stage), 2, 2))
		}
		prev = w
	}
	drop, err := dropout.New(DropName, o.Dropout, o.Seed)
	if err != nil {
		return nil, err
	}
	layers = append(layers,
		gap.New(PoolName),
		drop,
		full.MustNew(ClassifierName, prev, o.Classes, rng),
		softmax.New(ProbName),
		classification.New(OutputName, nil),
	)
	return feedforward.New(layers...)
}
