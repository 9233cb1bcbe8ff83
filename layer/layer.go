package layer

import "fmt"

// Shape is the channels x height x width shape of a layer input or output.
// Vectors are stored as C x 1 x 1.
type Shape struct {
	C int `json:"c"`
	H int `json:"h"`
	W int `json:"w"`
}

// Size returns the number of values held by a tensor of this shape
func (s Shape) Size() int {
	return s.C * s.H * s.W
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.C, s.H, s.W)
}

// Vector returns the shape of an n-element vector
func Vector(n int) Shape {
	return Shape{C: n, H: 1, W: 1}
}

// Param is a learnable parameter tensor of a layer
type Param struct {
	Name  string    `json:"name"`
	Value []float32 `json:"value"`

	// LearnRateFactor multiplies the global learning rate for this parameter
	LearnRateFactor float32 `json:"learn_rate_factor"`

	// L2Factor multiplies the global L2 regularization for this parameter
	L2Factor float32 `json:"l2_factor"`
}

// NewParam allocates a zeroed parameter with unit learn rate and L2 factors
func NewParam(name string, size int) Param {
	return Param{
		Name:            name,
		Value:           make([]float32, size),
		LearnRateFactor: 1,
		L2Factor:        1,
	}
}

// Layer is the layer which can be used for instantiating a combiner.
// A Layer owns the parameters; a combiner owns the per-sample buffers.
type Layer interface {

	// Name is the unique name of the layer inside a network
	Name() string

	// Type is the layer type tag used in model files
	Type() string

	// OutputShape validates the input shape and reports the output shape
	OutputShape(in Shape) (Shape, error)

	// Params lists the learnable parameters, nil for parameterless layers
	Params() []*Param

	// Lay creates a combiner for input shape in. When train is set the
	// combiner behaves as during training (dropout active).
	Lay(in Shape, train bool) Combiner
}

// Output is implemented by combiners of output layers which compute a loss
type Output interface {

	// Loss reports the loss of the network output out against label and
	// the loss gradient with respect to out.
	Loss(out []float32, label int) (loss float32, dout []float32)
}

// Classifier is implemented by output layers which carry class names
type Classifier interface {
	Classes() []string
}
