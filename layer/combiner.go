// Package layer defines the layer and combiner interfaces of a network
package layer

// Combiner holds the working buffers of one layer for one sample at a time.
// A combiner is not safe for concurrent use; each worker lays its own.
type Combiner interface {

	// Forward computes the layer output for input in. The returned slice
	// is owned by the combiner and valid until the next Forward.
	Forward(in []float32) []float32

	// Backward takes the loss gradient with respect to the last output and
	// returns the gradient with respect to the last input. Parameter
	// gradients are accumulated into grads, aligned with the layer's Params.
	Backward(dout []float32, grads [][]float32) []float32
}
