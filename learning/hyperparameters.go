// Package learning holds the training hyper-parameters and the SGD with momentum solver
package learning

import "fmt"
import "log/slog"
import "math"

// SetLogger sets the logger of training events, nil restores slog.Default
func (h *HyperParameters) SetLogger(l *slog.Logger) {
	h.l = l
}

// Logger returns the logger of training events
func (h *HyperParameters) Logger() *slog.Logger {
	if h.l == nil {
		return slog.Default()
	}
	return h.l
}

type HyperParameters struct {
	Threads int `yaml:"threads"` // number of threads for gradient computation, 0 means physical cores

	Shuffle bool  `yaml:"shuffle"` // whether to shuffle the train set before each epoch
	Seed    int64 `yaml:"seed"`    // prng seed, 0 seeds from time

	Momentum  float64 `yaml:"momentum"`
	LearnRate float64 `yaml:"learn_rate"` // initial learn rate
	L2        float64 `yaml:"l2"`         // L2 regularization

	MiniBatch int `yaml:"mini_batch"`
	MaxEpochs int `yaml:"max_epochs"`

	LearnRateDropFactor float64 `yaml:"learn_rate_drop_factor"` // piecewise schedule, 0 or 1 disables
	LearnRateDropPeriod int     `yaml:"learn_rate_drop_period"` // epochs between drops

	GradientThreshold float64 `yaml:"gradient_threshold"` // L2 norm clipping, 0 disables

	ValidationFrequency int `yaml:"validation_frequency"` // iterations between validations
	ValidationPatience  int `yaml:"validation_patience"`  // stop after this many non improving validations, 0 disables

	Verbose          bool `yaml:"verbose"`           // print the progress table
	VerboseFrequency int  `yaml:"verbose_frequency"` // iterations between progress rows

	CheckpointPath string `yaml:"checkpoint_path"` // directory for per epoch checkpoints, empty disables
	Resume         bool   `yaml:"resume"`          // load the latest checkpoint before training

	l *slog.Logger
}

// Defaults returns SGD with momentum 0.9, learn rate 1e-4, L2 1e-4,
// mini-batch 10, 6 epochs, shuffling every epoch and validation every 3 iterations
func Defaults() HyperParameters {
	return HyperParameters{
		Threads:             DefaultThreads(),
		Shuffle:             true,
		Momentum:            0.9,
		LearnRate:           1e-4,
		L2:                  1e-4,
		MiniBatch:           10,
		MaxEpochs:           6,
		LearnRateDropFactor: 1,
		LearnRateDropPeriod: 10,
		ValidationFrequency: 3,
		Verbose:             true,
		VerboseFrequency:    3,
	}
}

// Validate rejects unusable values
func (h *HyperParameters) Validate() error {
	switch {
	case h.Momentum < 0 || h.Momentum >= 1:
		return fmt.Errorf("momentum %v outside [0, 1)", h.Momentum)
	case h.LearnRate <= 0 || math.IsInf(h.LearnRate, 0) || math.IsNaN(h.LearnRate):
		return fmt.Errorf("learn rate %v is not positive", h.LearnRate)
	case h.L2 < 0:
		return fmt.Errorf("L2 regularization %v is negative", h.L2)
	case h.MiniBatch <= 0:
		return fmt.Errorf("mini-batch size %d is not positive", h.MiniBatch)
	case h.MaxEpochs <= 0:
		return fmt.Errorf("max epochs %d is not positive", h.MaxEpochs)
	case h.LearnRateDropFactor < 0 || h.LearnRateDropFactor > 1:
		return fmt.Errorf("learn rate drop factor %v outside [0, 1]", h.LearnRateDropFactor)
	case h.LearnRateDropFactor != 0 && h.LearnRateDropFactor != 1 && h.LearnRateDropPeriod <= 0:
		return fmt.Errorf("learn rate drop period %d is not positive", h.LearnRateDropPeriod)
	case h.GradientThreshold < 0:
		return fmt.Errorf("gradient threshold %v is negative", h.GradientThreshold)
	case h.ValidationFrequency < 0 || h.ValidationPatience < 0 || h.VerboseFrequency < 0:
		return fmt.Errorf("negative frequency or patience")
	}
	return nil
}

// LearnRateAt returns the learn rate of the 0-based epoch
func (h *HyperParameters) LearnRateAt(epoch int) float64 {
	if h.LearnRateDropFactor == 0 || h.LearnRateDropFactor == 1 || h.LearnRateDropPeriod <= 0 {
		return h.LearnRate
	}
	return h.LearnRate * math.Pow(h.LearnRateDropFactor, float64(epoch/h.LearnRateDropPeriod))
}
