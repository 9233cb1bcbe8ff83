// Package pipeline runs the fetal heart classifier from audio folders to
// saved metrics: assemble, split, extract, adapt, train, evaluate.
package pipeline

import "context"
import "fmt"
import "io"
import "log/slog"
import "math/rand"
import "os"
import "path/filepath"
import "time"

import "github.com/google/uuid"

import "github.com/neurlang/fetalheart/backbone"
import "github.com/neurlang/fetalheart/config"
import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/datasets/fetalheart"
import "github.com/neurlang/fetalheart/featurecache"
import "github.com/neurlang/fetalheart/features"
import "github.com/neurlang/fetalheart/figure"
import "github.com/neurlang/fetalheart/learning"
import "github.com/neurlang/fetalheart/metrics"
import "github.com/neurlang/fetalheart/net/feedforward"
import "github.com/neurlang/fetalheart/picker"
import "github.com/neurlang/fetalheart/trainer"
import "github.com/neurlang/fetalheart/transfer"

// Result is everything a run produces
type Result struct {
	RunID      string
	Config     *config.Config
	Splits     datasets.Splits
	Network    *feedforward.FeedforwardNetwork
	History    *trainer.History
	Validation *metrics.Report
	Test       *metrics.Report
}

// LoadBackbone reads the pretrained network named by c, or builds a fresh
// backbone when no file is configured
func LoadBackbone(c *config.Network) (*feedforward.FeedforwardNetwork, error) {
	if c.Backbone != "" {
		return feedforward.ReadCompressedFromFile(c.Backbone)
	}
	o := backbone.DefaultOptions()
	o.Size = c.Size
	o.Seed = c.Seed
	return backbone.New(o)
}

// Run executes all stages for c. The progress table and metrics tables are
// written to out; nil out means stdout.
func Run(ctx context.Context, c *config.Config, log *slog.Logger, out io.Writer) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	r := &Result{RunID: uuid.New().String(), Config: c}
	log = log.With("run", r.RunID)

	start := time.Now()
	d, err := fetalheart.Assemble(c.Dataset.Root, c.Dataset.Categories, c.Dataset.Extension)
	if err != nil {
		return nil, err
	}
	seed := c.Dataset.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d.Shuffle(rand.New(rand.NewSource(seed)))
	r.Splits, err = d.Split(c.Dataset.Train, c.Dataset.Validation)
	if err != nil {
		return nil, err
	}
	log.Info("assembled dataset", "root", c.Dataset.Root, "files", d.Len(), "per_class", d.CountLabels(),
		"train", r.Splits.Train.Len(), "validation", r.Splits.Validation.Len(), "test", r.Splits.Test.Len())

	pre, err := LoadBackbone(&c.Network)
	if err != nil {
		return nil, fmt.Errorf("load backbone: %w", err)
	}
	shape := pre.InputShape()
	if shape.C != 3 {
		return nil, fmt.Errorf("backbone input %s does not have 3 channels", shape)
	}
	o := transfer.DefaultOptions(d.Classes)
	o.WeightLearnRateFactor = c.Network.WeightLearnRateFactor
	o.BiasLearnRateFactor = c.Network.BiasLearnRateFactor
	o.FreezeBackbone = c.Network.Freeze
	o.Seed = c.Network.Seed
	r.Network, err = transfer.Adapt(pre, o)
	if err != nil {
		return nil, err
	}
	log.Info("adapted network", "layers", r.Network.Len(), "input", shape.String(), "classes", len(d.Classes))

	threads := c.Training.Threads
	if threads <= 0 {
		threads = learning.DefaultThreads()
	}
	e, err := features.New(c.Spectrogram.Params, shape)
	if err != nil {
		return nil, err
	}
	e.SampleRate = c.Spectrogram.SampleRate
	e.Threads = threads
	e.Logger = log
	if c.Cache.Enabled {
		cache, err := featurecache.Open(c.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("open feature cache: %w", err)
		}
		defer cache.Close()
		e.Cache = cache
	}
	train, err := e.Extract(ctx, &r.Splits.Train)
	if err != nil {
		return nil, err
	}
	validation, err := e.Extract(ctx, &r.Splits.Validation)
	if err != nil {
		return nil, err
	}
	test, err := e.Extract(ctx, &r.Splits.Test)
	if err != nil {
		return nil, err
	}

	h := c.Training
	h.Threads = threads
	h.SetLogger(log)
	r.History, err = trainer.Train(ctx, r.Network, train, validation, &h, out)
	if err != nil {
		return nil, err
	}

	r.Validation, err = metrics.Evaluate(r.Network, validation, threads)
	if err != nil {
		return nil, err
	}
	r.Validation.Name = "validation"
	r.Test, err = metrics.Evaluate(r.Network, test, threads)
	if err != nil {
		return nil, err
	}
	r.Test.Name = "test"
	fmt.Fprintln(out, r.Validation.Table())
	fmt.Fprintln(out, r.Test.Table())
	log.Info("finished", "validation_accuracy", r.Validation.Accuracy, "test_accuracy", r.Test.Accuracy,
		"test_macro_f1", r.Test.MacroF1(), "elapsed", time.Since(start).Round(time.Millisecond))
	return r, nil
}

// Save writes the model, the confusion charts, the metrics and the config
// into a new folder named after the run id under dir and returns its path
func (r *Result) Save(dir string) (string, error) {
	run := filepath.Join(dir, r.RunID)
	if err := os.MkdirAll(run, 0755); err != nil {
		return "", err
	}
	if err := r.Network.WriteCompressedToFile(filepath.Join(run, "model.json.lzw")); err != nil {
		return "", err
	}
	for _, rep := range []*metrics.Report{r.Validation, r.Test} {
		img, err := figure.ConfusionChart(rep, "Confusion Matrix ("+rep.Name+")")
		if err != nil {
			return "", err
		}
		if err := figure.SavePNG(filepath.Join(run, "confusion_"+rep.Name+".png"), img); err != nil {
			return "", err
		}
	}
	if err := metrics.WriteYAML(filepath.Join(run, "metrics.yaml"), r.Validation, r.Test); err != nil {
		return "", err
	}
	if r.Config != nil {
		if err := r.Config.Save(filepath.Join(run, "config.yaml")); err != nil {
			return "", err
		}
	}
	return run, nil
}

// OutputDir decides where results go: the configured folder, else the
// answer to a prompt on in and out when prompting is enabled. ok is false
// when saving is skipped.
func OutputDir(c *config.Output, in io.Reader, out io.Writer) (dir string, ok bool, err error) {
	if c.Dir != "" {
		return c.Dir, true, nil
	}
	if !c.Prompt {
		return "", false, nil
	}
	return picker.Prompt(in, out, "results")
}
