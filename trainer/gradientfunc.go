package trainer

import "math"

import "gonum.org/v1/gonum/blas/blas32"

import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/net/feedforward"
import "github.com/neurlang/fetalheart/parallel"

// Batch is the outcome of one mini-batch gradient computation
type Batch struct {
	Loss     float64
	Accuracy float64
	// Grads are the mean gradients, aligned with the network params
	Grads [][]float32
}

type worker struct {
	pass    *feedforward.Pass
	grads   [][]float32
	loss    float64
	correct int
}

// NewGradientFunc returns a function computing the mean gradient of a
// mini-batch of samples of set. Samples are split into contiguous chunks, one
// per worker, and worker gradients are summed in worker order, so the result
// only depends on the batch and the thread count.
func NewGradientFunc(net *feedforward.FeedforwardNetwork, set *datasets.FeatureSet, threads int) func(batch []int) *Batch {
	if threads <= 0 {
		threads = 1
	}
	workers := make([]*worker, threads)
	for w := range workers {
		workers[w] = &worker{pass: net.Lay(true), grads: net.NewGradients()}
	}
	out := &Batch{Grads: net.NewGradients()}
	return func(batch []int) *Batch {
		n := len(batch)
		active := threads
		if active > n {
			active = n
		}
		parallel.ForEach(active, active, func(w int) {
			wk := workers[w]
			wk.loss, wk.correct = 0, 0
			for _, g := range wk.grads {
				for i := range g {
					g[i] = 0
				}
			}
			for _, i := range batch[w*n/active : (w+1)*n/active] {
				label := set.Label(i)
				y := wk.pass.Forward(set.Input(i))
				if feedforward.Argmax(y) == label {
					wk.correct++
				}
				wk.loss += float64(wk.pass.Backward(label, wk.grads))
			}
		})
		var correct int
		out.Loss = 0
		for _, g := range out.Grads {
			for i := range g {
				g[i] = 0
			}
		}
		for _, wk := range workers[:active] {
			out.Loss += wk.loss
			correct += wk.correct
			for p, g := range wk.grads {
				blas32.Axpy(1, vector(g), vector(out.Grads[p]))
			}
		}
		scale := 1 / float32(n)
		for _, g := range out.Grads {
			blas32.Scal(scale, vector(g))
		}
		out.Loss /= float64(n)
		out.Accuracy = float64(correct) / float64(n)
		return out
	}
}

func vector(v []float32) blas32.Vector {
	return blas32.Vector{N: len(v), Inc: 1, Data: v}
}

// ClipGradients rescales grads so that their global L2 norm is at most threshold.
// It returns the norm before clipping.
func ClipGradients(grads [][]float32, threshold float64) float64 {
	var sq float64
	for _, g := range grads {
		if len(g) == 0 {
			continue
		}
		n := float64(blas32.Nrm2(vector(g)))
		sq += n * n
	}
	norm := math.Sqrt(sq)
	if threshold > 0 && norm > threshold {
		scale := float32(threshold / norm)
		for _, g := range grads {
			if len(g) > 0 {
				blas32.Scal(scale, vector(g))
			}
		}
	}
	return norm
}
