package learning

import "fmt"

import "github.com/neurlang/fetalheart/layer"

// SGDM is stochastic gradient descent with momentum:
//
//	v = momentum*v - rate*f*(g + l2*l2f*w)
//	w = w + v
//
// where f and l2f are the learn rate and L2 factors of each parameter.
type SGDM struct {
	params   []*layer.Param
	velocity [][]float32
	momentum float64
	l2       float64
}

// NewSGDM creates a solver for params with zero initial velocity
func NewSGDM(params []*layer.Param, momentum, l2 float64) *SGDM {
	s := &SGDM{
		params:   params,
		velocity: make([][]float32, len(params)),
		momentum: momentum,
		l2:       l2,
	}
	for i, p := range params {
		s.velocity[i] = make([]float32, len(p.Value))
	}
	return s
}

// Step applies one update from grads (aligned with params, already averaged over the mini-batch)
func (s *SGDM) Step(grads [][]float32, rate float64) error {
	if len(grads) != len(s.params) {
		return fmt.Errorf("sgdm: %d gradients for %d parameters", len(grads), len(s.params))
	}
	mu := float32(s.momentum)
	for i, p := range s.params {
		if p.LearnRateFactor == 0 {
			continue
		}
		eta := float32(rate) * p.LearnRateFactor
		decay := float32(s.l2) * p.L2Factor
		v, w, g := s.velocity[i], p.Value, grads[i]
		for j := range w {
			v[j] = mu*v[j] - eta*(g[j]+decay*w[j])
			w[j] += v[j]
		}
	}
	return nil
}

// Velocity exposes the momentum buffers, aligned with params
func (s *SGDM) Velocity() [][]float32 {
	return s.velocity
}
