package maxpool2d

import "github.com/neurlang/fetalheart/layer"

type MaxPool2D struct {
	l       *MaxPool2DLayer
	in, out layer.Shape
	y       []float32
	argmax  []int
	dx      []float32
}

// Forward takes the maximum of every window and remembers where it was
func (f *MaxPool2D) Forward(x []float32) []float32 {
	for c := 0; c < f.out.C; c++ {
		base := c * f.in.H * f.in.W
		for oy := 0; oy < f.out.H; oy++ {
			for ox := 0; ox < f.out.W; ox++ {
				best := base + (oy*f.l.Stride)*f.in.W + ox*f.l.Stride
				for ky := 0; ky < f.l.Size; ky++ {
					for kx := 0; kx < f.l.Size; kx++ {
						pos := base + (oy*f.l.Stride+ky)*f.in.W + ox*f.l.Stride + kx
						if x[pos] > x[best] {
							best = pos
						}
					}
				}
				n := (c*f.out.H+oy)*f.out.W + ox
				f.y[n] = x[best]
				f.argmax[n] = best
			}
		}
	}
	return f.y
}

// Backward routes each gradient to the position of its window maximum
func (f *MaxPool2D) Backward(dy []float32, grads [][]float32) []float32 {
	for i := range f.dx {
		f.dx[i] = 0
	}
	for n, g := range dy {
		f.dx[f.argmax[n]] += g
	}
	return f.dx
}
