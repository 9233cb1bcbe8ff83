package full

import "gonum.org/v1/gonum/blas"
import "gonum.org/v1/gonum/blas/blas32"

type Full struct {
	l     *FullLayer
	x     []float32
	y, dx []float32
}

func (f *Full) weights() blas32.General {
	return blas32.General{Rows: f.l.Out, Cols: f.l.In, Stride: f.l.In, Data: f.l.Weights.Value}
}

// Forward computes y = W x + b
func (f *Full) Forward(x []float32) []float32 {
	f.x = x
	copy(f.y, f.l.Bias.Value)
	blas32.Gemv(blas.NoTrans, 1, f.weights(),
		blas32.Vector{N: f.l.In, Inc: 1, Data: x}, 1,
		blas32.Vector{N: f.l.Out, Inc: 1, Data: f.y})
	return f.y
}

// Backward accumulates dW += dy x^T, db += dy and returns W^T dy
func (f *Full) Backward(dy []float32, grads [][]float32) []float32 {
	dyv := blas32.Vector{N: f.l.Out, Inc: 1, Data: dy}
	blas32.Ger(1, dyv, blas32.Vector{N: f.l.In, Inc: 1, Data: f.x},
		blas32.General{Rows: f.l.Out, Cols: f.l.In, Stride: f.l.In, Data: grads[0]})
	db := grads[1]
	for i, g := range dy {
		db[i] += g
	}
	blas32.Gemv(blas.Trans, 1, f.weights(), dyv, 0,
		blas32.Vector{N: f.l.In, Inc: 1, Data: f.dx})
	return f.dx
}
