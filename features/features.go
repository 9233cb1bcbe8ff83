// Package features turns the audio files of a dataset into spectrogram images
package features

import "context"
import "errors"
import "fmt"
import "log/slog"
import "time"

import "gorgonia.org/tensor"

import "github.com/neurlang/fetalheart/audio"
import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/featurecache"
import "github.com/neurlang/fetalheart/layer"
import "github.com/neurlang/fetalheart/parallel"
import "github.com/neurlang/fetalheart/spectrogram"

// Extractor computes (channels, height, width) log mel images of audio files
type Extractor struct {
	Params spectrogram.Params
	Shape  layer.Shape

	// SampleRate resamples every clip before analysis, 0 keeps the file rate
	SampleRate int

	Threads int
	Cache   *featurecache.Cache
	Logger  *slog.Logger
}

// New creates an extractor producing images of the given network input shape
func New(params spectrogram.Params, shape layer.Shape) (*Extractor, error) {
	if shape.C <= 0 || shape.H <= 0 || shape.W <= 0 {
		return nil, fmt.Errorf("features: invalid image shape %s", shape)
	}
	if err := params.Validate(0); err != nil {
		return nil, err
	}
	return &Extractor{Params: params, Shape: shape, Threads: 1}, nil
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// ExtractFile computes the image of one file, consulting the cache if any
func (e *Extractor) ExtractFile(path string) (*tensor.Dense, error) {
	var key featurecache.Key
	if e.Cache != nil {
		var err error
		key, err = featurecache.NewKey(path, e.Params, e.SampleRate, e.Shape.C, e.Shape.H, e.Shape.W)
		if err != nil {
			return nil, err
		}
		img, err := e.Cache.Get(key)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, featurecache.ErrMiss) {
			e.logger().Warn("feature cache read failed", "path", path, "error", err)
		}
	}
	clip, err := audio.Read(path)
	if err != nil {
		return nil, err
	}
	clip, err = audio.Resample(clip, e.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sx, err := spectrogram.NewExtractor(e.Params, clip.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img := sx.Extract(clip.Samples, e.Shape.C, e.Shape.H, e.Shape.W)
	if e.Cache != nil {
		if err := e.Cache.Put(key, img); err != nil {
			e.logger().Warn("feature cache write failed", "path", path, "error", err)
		}
	}
	return img, nil
}

// Extract computes the images of all samples of d, in dataset order
func (e *Extractor) Extract(ctx context.Context, d *datasets.Dataset) (*datasets.FeatureSet, error) {
	start := time.Now()
	set := &datasets.FeatureSet{
		Classes:  d.Classes,
		Features: make([]datasets.Feature, d.Len()),
	}
	err := parallel.ForEachErr(ctx, d.Len(), e.Threads, func(ctx context.Context, i int) error {
		s := d.Samples[i]
		img, err := e.ExtractFile(s.Path)
		if err != nil {
			return err
		}
		if shape := img.Shape(); len(shape) != 3 || shape[0] != e.Shape.C || shape[1] != e.Shape.H || shape[2] != e.Shape.W {
			return fmt.Errorf("features: %s has shape %v, want %s", s.Path, shape, e.Shape)
		}
		set.Features[i] = datasets.Feature{Path: s.Path, Label: s.Label, Image: img}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger().Info("extracted features", "samples", d.Len(), "shape", e.Shape.String(), "elapsed", time.Since(start).Round(time.Millisecond))
	return set, nil
}
