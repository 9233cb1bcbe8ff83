package transfer

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/fetalheart/backbone"
import "github.com/neurlang/fetalheart/layer/full"
import "github.com/neurlang/fetalheart/layer/relu"
import "github.com/neurlang/fetalheart/net/feedforward"

func smallBackbone(t *testing.T) *feedforward.FeedforwardNetwork {
	o := backbone.DefaultOptions()
	o.Size = 32
	o.Widths = []int{4, 8}
	o.Classes = 20
	net, err := backbone.New(o)
	require.NoError(t, err)
	return net
}

var classes = []string{"absent", "regular", "irregular"}

func TestAdapt(t *testing.T) {
	pre := smallBackbone(t)
	net, err := Adapt(pre, DefaultOptions(classes))
	require.NoError(t, err)

	assert.Equal(t, pre.Len(), net.Len())
	assert.Equal(t, classes, net.Classes())
	assert.Nil(t, net.GetLayer(backbone.ClassifierName))
	assert.Nil(t, net.GetLayer(backbone.OutputName))

	layers := net.Layers()
	assert.Equal(t, backbone.DropName, layers[len(layers)-4].Name())
	fc := net.GetLayer("fc").(*full.FullLayer)
	assert.Equal(t, 8, fc.In)
	assert.Equal(t, 3, fc.Out)
	assert.Equal(t, float32(10), fc.Weights.LearnRateFactor)
	assert.Equal(t, float32(10), fc.Bias.LearnRateFactor)
	assert.Equal(t, float32(1), net.Params()[0].LearnRateFactor)

	p := net.Infer(make([]float32, net.InputShape().Size()))
	assert.Len(t, p, 3)
	assert.Equal(t, pre.InputShape(), net.InputShape())
}

func TestAdaptFreeze(t *testing.T) {
	o := DefaultOptions(classes)
	o.FreezeBackbone = true
	net, err := Adapt(smallBackbone(t), o)
	require.NoError(t, err)
	for _, l := range net.Layers()[:net.Len()-HeadLayers] {
		for _, p := range l.Params() {
			assert.Zero(t, p.LearnRateFactor, l.Name())
		}
	}
	assert.Equal(t, float32(10), net.GetLayer("fc").(*full.FullLayer).Weights.LearnRateFactor)
}

func TestAdaptRejects(t *testing.T) {
	_, err := Adapt(smallBackbone(t), DefaultOptions([]string{"one"}))
	assert.Error(t, err)

	o := DefaultOptions(classes)
	o.FCName = backbone.PoolName
	_, err = Adapt(smallBackbone(t), o)
	assert.ErrorIs(t, err, feedforward.ErrDuplicateLayer)

	// a network whose head is not fc, softmax, classification
	pre := smallBackbone(t)
	g := pre.Graph()
	require.NoError(t, g.RemoveLayers(backbone.ProbName))
	require.NoError(t, g.AddLayers(relu.New("notsoftmax")))
	require.NoError(t, g.ConnectLayers(backbone.ClassifierName, "notsoftmax"))
	require.NoError(t, g.ConnectLayers("notsoftmax", backbone.OutputName))
	odd, err := g.Assemble()
	require.NoError(t, err)
	_, err = Adapt(odd, DefaultOptions(classes))
	assert.Error(t, err)
}

func TestFreeze(t *testing.T) {
	net := smallBackbone(t)
	Freeze(net.Layers()...)
	for _, p := range net.Params() {
		assert.Zero(t, p.LearnRateFactor)
	}
}
