package conv2d

import "github.com/neurlang/fetalheart/layer"

type Conv2D struct {
	l       *Conv2DLayer
	in, out layer.Shape
	x       []float32
	y, dx   []float32
}

// Forward convolves the input with every filter and adds the bias
func (f *Conv2D) Forward(x []float32) []float32 {
	f.x = x
	l := f.l
	k := l.Size
	w := l.Weights.Value
	for oc := 0; oc < f.out.C; oc++ {
		bias := l.Bias.Value[oc]
		for oy := 0; oy < f.out.H; oy++ {
			for ox := 0; ox < f.out.W; ox++ {
				sum := bias
				for ic := 0; ic < f.in.C; ic++ {
					wbase := (oc*f.in.C + ic) * k * k
					xbase := ic * f.in.H * f.in.W
					for ky := 0; ky < k; ky++ {
						iy := oy*l.Stride + ky - l.Padding
						if iy < 0 || iy >= f.in.H {
							continue
						}
						for kx := 0; kx < k; kx++ {
							ix := ox*l.Stride + kx - l.Padding
							if ix < 0 || ix >= f.in.W {
								continue
							}
							sum += w[wbase+ky*k+kx] * x[xbase+iy*f.in.W+ix]
						}
					}
				}
				f.y[(oc*f.out.H+oy)*f.out.W+ox] = sum
			}
		}
	}
	return f.y
}

// Backward accumulates weight and bias gradients and returns the input gradient
func (f *Conv2D) Backward(dy []float32, grads [][]float32) []float32 {
	l := f.l
	k := l.Size
	w := l.Weights.Value
	dw, db := grads[0], grads[1]
	for i := range f.dx {
		f.dx[i] = 0
	}
	for oc := 0; oc < f.out.C; oc++ {
		for oy := 0; oy < f.out.H; oy++ {
			for ox := 0; ox < f.out.W; ox++ {
				g := dy[(oc*f.out.H+oy)*f.out.W+ox]
				if g == 0 {
					continue
				}
				db[oc] += g
				for ic := 0; ic < f.in.C; ic++ {
					wbase := (oc*f.in.C + ic) * k * k
					xbase := ic * f.in.H * f.in.W
					for ky := 0; ky < k; ky++ {
						iy := oy*l.Stride + ky - l.Padding
						if iy < 0 || iy >= f.in.H {
							continue
						}
						for kx := 0; kx < k; kx++ {
							ix := ox*l.Stride + kx - l.Padding
							if ix < 0 || ix >= f.in.W {
								continue
							}
							dw[wbase+ky*k+kx] += g * f.x[xbase+iy*f.in.W+ix]
							f.dx[xbase+iy*f.in.W+ix] += g * w[wbase+ky*k+kx]
						}
					}
				}
			}
		}
	}
	return f.dx
}
