package trainer

import "bytes"
import "context"
import "math"
import "math/rand"
import "strings"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "gorgonia.org/tensor"

import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/classification"
import "github.com/neurlang/fetalheart/layer/full"
import "github.com/neurlang/fetalheart/layer/input"
import "github.com/neurlang/fetalheart/layer/softmax"
import "github.com/neurlang/fetalheart/learning"
import "github.com/neurlang/fetalheart/net/feedforward"

var toyShape = layer.Shape{C: 1, H: 2, W: 2}

func toyNet(t *testing.T, seed int64) *feedforward.FeedforwardNetwork {
	in, err := input.New("input", toyShape, nil)
	require.NoError(t, err)
	return feedforward.MustNew(
		in,
		full.MustNew("fc", toyShape.Size(), 2, rand.New(rand.NewSource(seed))),
		softmax.New("softmax"),
		classification.New("classoutput", []string{"low", "high"}),
	)
}

// toySet is linearly separable: class 1 has positive values, class 0 negative
func toySet(n int, seed int64) *datasets.FeatureSet {
	rng := rand.New(rand.NewSource(seed))
	set := &datasets.FeatureSet{Classes: []string{"low", "high"}}
	for i := 0; i < n; i++ {
		label := i % 2
		data := make([]float32, toyShape.Size())
		for j := range data {
			v := float32(0.5 + rng.Float64())
			if label == 0 {
				v = -v
			}
			data[j] = v
		}
		set.Features = append(set.Features, datasets.Feature{
			Label: label,
			Image: tensor.New(tensor.WithShape(1, 2, 2), tensor.WithBacking(data)),
		})
	}
	return set
}

func toyParams() learning.HyperParameters {
	h := learning.Defaults()
	h.LearnRate = 0.1
	h.MiniBatch = 4
	h.MaxEpochs = 10
	h.Seed = 7
	h.Threads = 3
	return h
}

func TestTrainConverges(t *testing.T) {
	net := toyNet(t, 1)
	h := toyParams()
	var out bytes.Buffer
	history, err := Train(context.Background(), net, toySet(40, 2), toySet(10, 3), &h, &out)
	require.NoError(t, err)

	assert.Equal(t, 1.0, history.FinalValidation.Accuracy)
	assert.Len(t, history.Iterations, 10*10)
	first, last := history.Iterations[0], history.Iterations[len(history.Iterations)-1]
	assert.Less(t, last.TrainLoss, first.TrainLoss)
	assert.False(t, math.IsNaN(last.ValidationLoss))
	assert.True(t, math.IsNaN(history.Iterations[0].ValidationLoss))
	assert.False(t, math.IsNaN(history.Iterations[2].ValidationLoss))
	assert.Contains(t, out.String(), "Epoch")
	assert.Contains(t, out.String(), "100.00%")
}

func TestTrainDeterministic(t *testing.T) {
	run := func() []float32 {
		net := toyNet(t, 1)
		h := toyParams()
		h.Verbose = false
		_, err := Train(context.Background(), net, toySet(30, 2), toySet(6, 3), &h, nil)
		require.NoError(t, err)
		return append([]float32(nil), net.Params()[0].Value...)
	}
	assert.Equal(t, run(), run())
}

func TestTrainDiscardsPartialBatch(t *testing.T) {
	net := toyNet(t, 1)
	h := toyParams()
	h.Verbose = false
	h.MaxEpochs = 2
	history, err := Train(context.Background(), net, toySet(11, 2), nil, &h, nil)
	require.NoError(t, err)
	assert.Len(t, history.Iterations, 2*2)

	h.MiniBatch = 100
	history, err = Train(context.Background(), net, toySet(11, 2), nil, &h, nil)
	require.NoError(t, err)
	assert.Len(t, history.Iterations, 2)
}

func TestTrainDiverges(t *testing.T) {
	net := toyNet(t, 1)
	set := toySet(8, 2)
	set.Input(0)[0] = float32(math.NaN())
	h := toyParams()
	h.Verbose = false
	h.MiniBatch = 8
	_, err := Train(context.Background(), net, set, nil, &h, nil)
	assert.ErrorIs(t, err, ErrDiverged)
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := toyParams()
	h.Verbose = false
	history, err := Train(ctx, toyNet(t, 1), toySet(8, 2), nil, &h, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history.Iterations)
}

func TestTrainRejects(t *testing.T) {
	h := toyParams()
	_, err := Train(context.Background(), toyNet(t, 1), &datasets.FeatureSet{}, nil, &h, nil)
	assert.ErrorIs(t, err, datasets.ErrEmptyDataset)

	h.MiniBatch = 0
	_, err = Train(context.Background(), toyNet(t, 1), toySet(4, 1), nil, &h, nil)
	assert.Error(t, err)
}

func TestValidationPatience(t *testing.T) {
	h := toyParams()
	h.Verbose = false
	h.LearnRate = 1e-12
	h.ValidationFrequency = 1
	h.ValidationPatience = 2
	history, err := Train(context.Background(), toyNet(t, 1), toySet(40, 2), toySet(10, 3), &h, nil)
	require.NoError(t, err)
	assert.True(t, history.StoppedEarly)
	assert.Less(t, len(history.Iterations), 100)
}

func TestCheckpointResume(t *testing.T) {
	dir := t.TempDir()
	h := toyParams()
	h.Verbose = false
	h.MaxEpochs = 3
	h.CheckpointPath = dir
	net := toyNet(t, 1)
	_, err := Train(context.Background(), net, toySet(20, 2), nil, &h, nil)
	require.NoError(t, err)

	epoch, name, err := LatestCheckpoint(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, epoch)
	assert.Equal(t, CheckpointName(dir, 3), name)

	other := toyNet(t, 99)
	h.Resume = true
	h.MaxEpochs = 4
	history, err := Train(context.Background(), other, toySet(20, 2), nil, &h, nil)
	require.NoError(t, err)
	assert.Len(t, history.Iterations, 5)
	assert.Equal(t, 4, history.Iterations[0].Epoch)

	epoch, _, err = LatestCheckpoint(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, epoch)
}

func TestClipGradients(t *testing.T) {
	grads := [][]float32{{3, 0}, {4}}
	norm := ClipGradients(grads, 1)
	assert.InDelta(t, 5, norm, 1e-6)
	assert.InDelta(t, 0.6, grads[0][0], 1e-6)
	assert.InDelta(t, 0.8, grads[1][0], 1e-6)

	grads = [][]float32{{0.3}, {0.4}}
	ClipGradients(grads, 1)
	assert.InDelta(t, 0.3, grads[0][0], 1e-6)
}

func TestEvaluateFingerprint(t *testing.T) {
	net := toyNet(t, 1)
	set := toySet(9, 4)
	a := NewEvaluateFunc(net, set, 1)()
	b := NewEvaluateFunc(net, set, 4)()
	assert.Equal(t, a.Sum, b.Sum)
	assert.InDelta(t, a.Loss, b.Loss, 1e-9)
	assert.Equal(t, a.Accuracy, b.Accuracy)
}

func TestProgressCells(t *testing.T) {
	var out bytes.Buffer
	printHeader(&out)
	printRow(&out, &Iteration{Epoch: 3, Iteration: 120, Elapsed: 75 * time.Second, TrainAccuracy: 0.5,
		ValidationAccuracy: math.NaN(), TrainLoss: 0.25, ValidationLoss: math.NaN(), LearnRate: 0.0001})

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	width := len(progressColumns)*(progressWidth+3) + 1
	for _, line := range lines {
		assert.Equal(t, width, len(line), line)
	}
	assert.Contains(t, lines[1], "  Mini-batch  ")
	assert.Contains(t, lines[2], "   Accuracy   ")

	cells := strings.Split(strings.Trim(lines[4], "|"), "|")
	require.Len(t, cells, len(progressColumns))
	want := []string{"3", "120", "00:01:15", "50.00%", "", "0.2500", "", "0.0001"}
	for i, c := range cells {
		assert.Equal(t, progressWidth+2, len(c))
		assert.Equal(t, want[i], strings.TrimSpace(c))
	}
	assert.Equal(t, "    00:01:15    ", cells[2])
}
