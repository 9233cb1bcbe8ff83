package trainer

import "math"

import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/net/feedforward"
import "github.com/neurlang/fetalheart/parallel"

// Evaluation is the result of running the network over a whole set
type Evaluation struct {
	Loss     float64
	Accuracy float64
	// Sum fingerprints the predicted classes, equal sums mean equal predictions
	Sum [32]byte
}

// NewEvaluateFunc returns a function computing mean loss and accuracy of net
// on set with inference behaviour (no dropout)
func NewEvaluateFunc(net *feedforward.FeedforwardNetwork, set *datasets.FeatureSet, threads int) func() Evaluation {
	return func() Evaluation {
		length := set.Len()
		if length == 0 {
			return Evaluation{Loss: math.NaN(), Accuracy: math.NaN()}
		}
		if threads <= 0 {
			threads = 1
		}
		if threads > length {
			threads = length
		}
		hsh := parallel.NewUint16Hasher(length)
		losses := make([]float64, threads)
		correct := make([]int, threads)
		parallel.ForEach(threads, threads, func(w int) {
			pass := net.Lay(false)
			for i := w * length / threads; i < (w+1)*length/threads; i++ {
				out := pass.Forward(set.Input(i))
				predicted := feedforward.Argmax(out)
				hsh.MustPutUint16(i, uint16(predicted))
				losses[w] += float64(pass.Loss(set.Label(i)))
				if predicted == set.Label(i) {
					correct[w]++
				}
			}
		})
		var e Evaluation
		var c int
		for w := range losses {
			e.Loss += losses[w]
			c += correct[w]
		}
		e.Loss /= float64(length)
		e.Accuracy = float64(c) / float64(length)
		e.Sum = hsh.Sum()
		return e
	}
}
