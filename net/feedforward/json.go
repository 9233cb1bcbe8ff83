package feedforward

import "compress/lzw"
import "encoding/json"
import "fmt"
import "io"
import "os"

import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/layer/classification"
import "github.com/neurlang/fetalheart/layer/conv2d"
import "github.com/neurlang/fetalheart/layer/dropout"
import "github.com/neurlang/fetalheart/layer/full"
import "github.com/neurlang/fetalheart/layer/gap"
import "github.com/neurlang/fetalheart/layer/input"
import "github.com/neurlang/fetalheart/layer/maxpool2d"
import "github.com/neurlang/fetalheart/layer/relu"
import "github.com/neurlang/fetalheart/layer/softmax"

const modelVersion = 1

type modelJson struct {
	Version int         `json:"version"`
	Layers  []layerJson `json:"layers"`
}

type layerJson struct {
	Type  string          `json:"type"`
	Layer json.RawMessage `json:"layer"`
}

func newLayer(typ string) (layer.Layer, error) {
	switch typ {
	case input.Type:
		return new(input.InputLayer), nil
	case conv2d.Type:
		return new(conv2d.Conv2DLayer), nil
	case relu.Type:
		return new(relu.ReluLayer), nil
	case maxpool2d.Type:
		return new(maxpool2d.MaxPool2DLayer), nil
	case gap.Type:
		return new(gap.GapLayer), nil
	case dropout.Type:
		return new(dropout.DropoutLayer), nil
	case full.Type:
		return new(full.FullLayer), nil
	case softmax.Type:
		return new(softmax.SoftmaxLayer), nil
	case classification.Type:
		return new(classification.ClassificationLayer), nil
	}
	return nil, fmt.Errorf("%w type %q", ErrUnknownLayer, typ)
}

// WriteCompressedToFile writes the model (architecture and weights) to a lzw file
func (f *FeedforwardNetwork) WriteCompressedToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressed(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressed writes the model to a writer as lzw compressed json
func (f *FeedforwardNetwork) WriteCompressed(w io.Writer) error {
	var m = modelJson{Version: modelVersion}
	for _, l := range f.layers {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode layer %q: %w", l.Name(), err)
		}
		m.Layers = append(m.Layers, layerJson{Type: l.Type(), Layer: raw})
	}
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	if err := json.NewEncoder(lw).Encode(&m); err != nil {
		lw.Close()
		return err
	}
	return lw.Close()
}

// ReadCompressedFromFile reads a model from a lzw file
func ReadCompressedFromFile(name string) (*FeedforwardNetwork, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCompressed(file)
}

// ReadCompressed reads a model written by WriteCompressed
func ReadCompressed(r io.Reader) (*FeedforwardNetwork, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	var m modelJson
	if err := json.NewDecoder(lr).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Version != modelVersion {
		return nil, fmt.Errorf("decode model: unsupported version %d", m.Version)
	}
	var layers = make([]layer.Layer, 0, len(m.Layers))
	for _, lj := range m.Layers {
		l, err := newLayer(lj.Type)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lj.Layer, l); err != nil {
			return nil, fmt.Errorf("decode layer of type %q: %w", lj.Type, err)
		}
		layers = append(layers, l)
	}
	return New(layers...)
}

// ReadCompressedWeightsFromFile loads the weights of a model file into f.
// The file must hold the same architecture.
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	other, err := ReadCompressedFromFile(name)
	if err != nil {
		return err
	}
	return f.CopyWeights(other)
}

// CopyWeights copies parameter values from a network of the same architecture
func (f *FeedforwardNetwork) CopyWeights(from *FeedforwardNetwork) error {
	if len(from.layers) != len(f.layers) {
		return fmt.Errorf("copy weights: %d layers, want %d", len(from.layers), len(f.layers))
	}
	for i, l := range f.layers {
		o := from.layers[i]
		if o.Name() != l.Name() || o.Type() != l.Type() {
			return fmt.Errorf("copy weights: layer %d is %s %q, want %s %q", i, o.Type(), o.Name(), l.Type(), l.Name())
		}
		src, dst := o.Params(), l.Params()
		for j := range dst {
			if len(src[j].Value) != len(dst[j].Value) {
				return fmt.Errorf("copy weights: layer %q param %q size %d, want %d",
					l.Name(), dst[j].Name, len(src[j].Value), len(dst[j].Value))
			}
			copy(dst[j].Value, src[j].Value)
		}
	}
	return nil
}
