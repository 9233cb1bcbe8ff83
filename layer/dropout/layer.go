// Package dropout implements an inverted dropout layer and combiner
package dropout

import "fmt"
import "math/rand"
import "sync/atomic"

import "github.com/neurlang/fetalheart/layer"

const Type = "dropout"

type DropoutLayer struct {
	LayerName   string  `json:"name"`
	Probability float32 `json:"probability"`
	Seed        int64   `json:"seed"`

	lays atomic.Int64
}

// MustNew creates a new dropout layer dropping values with probability p
func MustNew(name string, p float32, seed int64) *DropoutLayer {
	o, err := New(name, p, seed)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new dropout layer dropping values with probability p.
// Every training combiner draws its mask from its own source derived from seed.
func New(name string, p float32, seed int64) (o *DropoutLayer, err error) {
	if p < 0 || p >= 1 {
		return nil, fmt.Errorf("New Dropout: probability %v outside [0, 1)", p)
	}
	return &DropoutLayer{LayerName: name, Probability: p, Seed: seed}, nil
}

func (i *DropoutLayer) Name() string           { return i.LayerName }
func (i *DropoutLayer) Type() string           { return Type }
func (i *DropoutLayer) Params() []*layer.Param { return nil }

func (i *DropoutLayer) OutputShape(in layer.Shape) (layer.Shape, error) {
	return in, nil
}

// Lay turns dropout layer into a combiner. Outside of training it is the identity.
func (i *DropoutLayer) Lay(in layer.Shape, train bool) layer.Combiner {
	if !train || i.Probability == 0 {
		return identity{}
	}
	n := i.lays.Add(1)
	return &Dropout{
		p:    i.Probability,
		rng:  rand.New(rand.NewSource(i.Seed + n)),
		mask: make([]float32, in.Size()),
		y:    make([]float32, in.Size()),
		dx:   make([]float32, in.Size()),
	}
}
