package learning

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/fetalheart/layer"

func TestSGDMStep(t *testing.T) {
	w := layer.NewParam("w", 2)
	w.Value[0], w.Value[1] = 1, -2
	frozen := layer.NewParam("frozen", 1)
	frozen.Value[0] = 5
	frozen.LearnRateFactor = 0
	bias := layer.NewParam("b", 1)
	bias.L2Factor = 0
	bias.LearnRateFactor = 10

	s := NewSGDM([]*layer.Param{&w, &frozen, &bias}, 0.5, 0.1)
	grads := [][]float32{{1, 1}, {100}, {2}}

	require.NoError(t, s.Step(grads, 0.1))
	// v = -0.1*(1 + 0.1*1) = -0.11 ; w = 0.89
	assert.InDelta(t, 0.89, w.Value[0], 1e-6)
	// v = -0.1*(1 + 0.1*-2) = -0.08 ; w = -2.08
	assert.InDelta(t, -2.08, w.Value[1], 1e-6)
	assert.Equal(t, float32(5), frozen.Value[0])
	// v = -0.1*10*2 = -2
	assert.InDelta(t, -2, bias.Value[0], 1e-6)

	require.NoError(t, s.Step(grads, 0.1))
	// v = 0.5*-0.11 - 0.1*(1 + 0.1*0.89) = -0.1639
	assert.InDelta(t, 0.89-0.1639, w.Value[0], 1e-6)
	assert.InDelta(t, -0.1639, s.Velocity()[0][0], 1e-6)

	assert.Error(t, s.Step(grads[:1], 0.1))
}

func TestDefaults(t *testing.T) {
	h := Defaults()
	require.NoError(t, h.Validate())
	assert.Equal(t, 0.9, h.Momentum)
	assert.Equal(t, 1e-4, h.LearnRate)
	assert.Equal(t, 10, h.MiniBatch)
	assert.Equal(t, 6, h.MaxEpochs)
	assert.Equal(t, 3, h.ValidationFrequency)
	assert.True(t, h.Shuffle)
	assert.Greater(t, h.Threads, 0)
	assert.Equal(t, h.LearnRate, h.LearnRateAt(5))
	assert.NotNil(t, h.Logger())
}

func TestLearnRateSchedule(t *testing.T) {
	h := Defaults()
	h.LearnRate = 1
	h.LearnRateDropFactor = 0.5
	h.LearnRateDropPeriod = 2
	assert.Equal(t, 1.0, h.LearnRateAt(0))
	assert.Equal(t, 1.0, h.LearnRateAt(1))
	assert.Equal(t, 0.5, h.LearnRateAt(2))
	assert.Equal(t, 0.25, h.LearnRateAt(5))
}

func TestValidate(t *testing.T) {
	for _, mutate := range []func(*HyperParameters){
		func(h *HyperParameters) { h.Momentum = 1 },
		func(h *HyperParameters) { h.LearnRate = 0 },
		func(h *HyperParameters) { h.L2 = -1 },
		func(h *HyperParameters) { h.MiniBatch = 0 },
		func(h *HyperParameters) { h.MaxEpochs = 0 },
		func(h *HyperParameters) { h.LearnRateDropFactor = 2 },
		func(h *HyperParameters) { h.LearnRateDropFactor = 0.5; h.LearnRateDropPeriod = 0 },
		func(h *HyperParameters) { h.GradientThreshold = -1 },
		func(h *HyperParameters) { h.ValidationPatience = -1 },
	} {
		h := Defaults()
		mutate(&h)
		assert.Error(t, h.Validate())
	}
}

func TestCPU(t *testing.T) {
	assert.Greater(t, DefaultThreads(), 0)
	assert.NotEmpty(t, CPUName())
}
