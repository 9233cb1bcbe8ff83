package backbone

import "fmt"
import "strings"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/conv2d"
import "github.com/neurlang/fetalheart/layer/maxpool2d"

func TestNew(t *testing.T) {
	o := DefaultOptions()
	o.Size = 32
	o.Widths = []int{4, 8}
	o.Classes = 10
	net, err := New(o)
	require.NoError(t, err)

	assert.Equal(t, layer.Shape{C: 3, H: 32, W: 32}, net.InputShape())
	layers := net.Layers()
	names := []string{}
	for _, l := range layers[len(layers)-5:] {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{PoolName, DropName, ClassifierName, ProbName, OutputName}, names)

	shape, err := net.LayerOutputShape(DropName)
	require.NoError(t, err)
	assert.Equal(t, layer.Vector(8), shape)

	p := net.Infer(make([]float32, net.InputShape().Size()))
	assert.Len(t, p, 10)
}

func TestNewSeeded(t *testing.T) {
	o := DefaultOptions()
	o.Size = 32
	o.Widths = []int{4}
	a, err := New(o)
	require.NoError(t, err)
	b, err := New(o)
	require.NoError(t, err)
	assert.Equal(t, a.Params()[0].Value, b.Params()[0].Value)
}

func TestNewInvalid(t *testing.T) {
	o := DefaultOptions()
	o.Size = 8
	_, err := New(o)
	assert.Error(t, err)

	o = DefaultOptions()
	o.Widths = nil
	_, err = New(o)
	assert.Error(t, err)
}

func TestLayerNamesMatchKernels(t *testing.T) {
	net, err := New(DefaultOptions())
	require.NoError(t, err)
	var convs, pools int
	for _, l := range net.Layers() {
		switch l := l.(type) {
		case *conv2d.Conv2DLayer:
			convs++
			kernel := fmt.Sprintf("-%dx%d", l.Size, l.Size)
			assert.True(t, strings.Contains(l.Name(), kernel), "%s is %dx%d", l.Name(), l.Size, l.Size)
			if l.Stride != 1 {
				assert.True(t, strings.HasSuffix(l.Name(), fmt.Sprintf("_s%d", l.Stride)), l.Name())
			}
		case *maxpool2d.MaxPool2DLayer:
			pools++
			assert.Equal(t, fmt.Sprintf("-%dx%d_s%d", l.Size, l.Size, l.Stride), l.Name()[strings.Index(l.Name(), "-"):])
		}
	}
	assert.Equal(t, 4, convs)
	assert.Equal(t, 2, pools)
}
