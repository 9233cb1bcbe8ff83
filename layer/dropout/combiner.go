package dropout

import "math/rand"

type identity struct{}

func (identity) Forward(x []float32) []float32                      { return x }
func (identity) Backward(dy []float32, grads [][]float32) []float32 { return dy }

type Dropout struct {
	p     float32
	rng   *rand.Rand
	mask  []float32
	y, dx []float32
}

// Forward zeroes values with probability p and scales the survivors by 1/(1-p)
func (f *Dropout) Forward(x []float32) []float32 {
	scale := 1 / (1 - f.p)
	for i, v := range x {
		if f.rng.Float32() < f.p {
			f.mask[i] = 0
		} else {
			f.mask[i] = scale
		}
		f.y[i] = v * f.mask[i]
	}
	return f.y
}

func (f *Dropout) Backward(dy []float32, grads [][]float32) []float32 {
	for i, g := range dy {
		f.dx[i] = g * f.mask[i]
	}
	return f.dx
}
