// Package config holds the run configuration of the fetal heart classifier
package config

import "errors"
import "fmt"
import "os"
import "path/filepath"

import "github.com/goccy/go-yaml"

import "github.com/neurlang/fetalheart/datasets/fetalheart"
import "github.com/neurlang/fetalheart/learning"
import "github.com/neurlang/fetalheart/spectrogram"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

type Dataset struct {
	Root       string   `yaml:"root"`
	Categories []string `yaml:"categories"`
	Extension  string   `yaml:"extension"`
	Train      float64  `yaml:"train"`      // fraction of files used for training
	Validation float64  `yaml:"validation"` // fraction used for validation, the rest is test
	Seed       int64    `yaml:"seed"`       // shuffle seed, 0 seeds from time
}

type Spectrogram struct {
	spectrogram.Params `yaml:",inline"`
	SampleRate         int `yaml:"sample_rate"` // resample to this rate, 0 keeps the native rate
}

type Network struct {
	// Backbone is the pretrained model file, empty builds a fresh backbone of Size
	Backbone string `yaml:"backbone"`
	Size     int    `yaml:"size"`

	WeightLearnRateFactor float32 `yaml:"weight_learn_rate_factor"`
	BiasLearnRateFactor   float32 `yaml:"bias_learn_rate_factor"`
	Freeze                bool    `yaml:"freeze"`
	Seed                  int64   `yaml:"seed"`
}

type Output struct {
	Dir    string `yaml:"dir"`    // results folder, empty asks when Prompt is set
	Prompt bool   `yaml:"prompt"` // ask for the results folder on the terminal
}

type Cache struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // empty keeps the cache in memory
}

type Config struct {
	Dataset     Dataset                  `yaml:"dataset"`
	Spectrogram Spectrogram              `yaml:"spectrogram"`
	Network     Network                  `yaml:"network"`
	Training    learning.HyperParameters `yaml:"training"`
	Output      Output                   `yaml:"output"`
	Cache       Cache                    `yaml:"cache"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Dataset: Dataset{
			Root:       "dataset",
			Categories: append([]string(nil), fetalheart.DefaultCategories...),
			Extension:  fetalheart.DefaultExtension,
			Train:      0.8,
			Validation: 0.1,
		},
		Spectrogram: Spectrogram{Params: spectrogram.DefaultParams()},
		Network: Network{
			Size:                  224,
			WeightLearnRateFactor: 10,
			BiasLearnRateFactor:   10,
			Seed:                  1,
		},
		Training: learning.Defaults(),
		Output:   Output{Prompt: true},
	}
}

// Load reads path over the defaults, so a file only needs the settings it changes
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate rejects inconsistent values with an error wrapping ErrInvalid
func (c *Config) Validate() error {
	d := &c.Dataset
	if d.Root == "" {
		return invalid("dataset root is empty")
	}
	if len(d.Categories) < 2 {
		return invalid("need at least 2 categories, got %d", len(d.Categories))
	}
	seen := make(map[string]bool)
	for _, cat := range d.Categories {
		if cat == "" || seen[cat] {
			return invalid("empty or duplicate category %q", cat)
		}
		seen[cat] = true
	}
	if d.Train <= 0 || d.Validation < 0 || d.Train+d.Validation > 1 {
		return invalid("split fractions train %v validation %v", d.Train, d.Validation)
	}
	if c.Spectrogram.SampleRate < 0 {
		return invalid("sample rate %d", c.Spectrogram.SampleRate)
	}
	if err := c.Spectrogram.Validate(c.Spectrogram.SampleRate); err != nil {
		return invalid("%v", err)
	}
	if c.Network.Backbone == "" && c.Network.Size <= 0 {
		return invalid("network size %d", c.Network.Size)
	}
	if c.Network.WeightLearnRateFactor < 0 || c.Network.BiasLearnRateFactor < 0 {
		return invalid("negative learn rate factor")
	}
	if err := c.Training.Validate(); err != nil {
		return invalid("training: %v", err)
	}
	return nil
}
