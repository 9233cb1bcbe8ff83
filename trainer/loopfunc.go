package trainer

import "context"
import "errors"
import "fmt"
import "io"
import "math"
import "math/rand"
import "os"
import "time"

import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/learning"
import "github.com/neurlang/fetalheart/net/feedforward"

// ErrDiverged is returned when a mini-batch loss becomes NaN or infinite
var ErrDiverged = errors.New("trainer: training diverged")

// Iteration records the state after one mini-batch update. Validation
// values are NaN on iterations without validation.
type Iteration struct {
	Epoch              int
	Iteration          int
	Elapsed            time.Duration
	TrainLoss          float64
	TrainAccuracy      float64
	ValidationLoss     float64
	ValidationAccuracy float64
	LearnRate          float64
}

// History is the training record
type History struct {
	Iterations []Iteration

	// FinalValidation is the validation evaluation after the last update
	FinalValidation Evaluation

	// StoppedEarly is set when validation patience ran out
	StoppedEarly bool
}

// Train fine-tunes net on train with mini-batch SGD with momentum, monitoring
// validation (which may be empty). The progress table goes to out when
// h.Verbose is set; nil out means stdout. The final partial mini-batch of
// every epoch is discarded; a train set smaller than the mini-batch is one batch.
func Train(ctx context.Context, net *feedforward.FeedforwardNetwork, train, validation *datasets.FeatureSet,
	h *learning.HyperParameters, out io.Writer) (*History, error) {

	if err := h.Validate(); err != nil {
		return nil, err
	}
	if train.Len() == 0 {
		return nil, fmt.Errorf("train: %w", datasets.ErrEmptyDataset)
	}
	if validation == nil {
		validation = new(datasets.FeatureSet)
	}
	if out == nil {
		out = os.Stdout
	}
	log := h.Logger()
	threads := h.Threads
	if threads <= 0 {
		threads = learning.DefaultThreads()
	}
	seed := h.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	batchSize := h.MiniBatch
	if batchSize > train.Len() {
		batchSize = train.Len()
	}
	perEpoch := train.Len() / batchSize
	order := make([]int, train.Len())
	for i := range order {
		order[i] = i
	}

	startEpoch := 0
	if h.Resume && h.CheckpointPath != "" {
		var err error
		startEpoch, err = Resume(net, h.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if startEpoch > 0 {
			log.Info("resumed from checkpoint", "dir", h.CheckpointPath, "epoch", startEpoch)
		}
	}

	solver := learning.NewSGDM(net.Params(), h.Momentum, h.L2)
	gradient := NewGradientFunc(net, train, threads)
	evaluate := NewEvaluateFunc(net, validation, threads)

	log.Info("training started",
		"samples", train.Len(), "validation", validation.Len(), "mini_batch", batchSize,
		"iterations_per_epoch", perEpoch, "epochs", h.MaxEpochs, "threads", threads, "cpu", learning.CPUName())

	history := new(History)
	start := time.Now()
	best := math.Inf(1)
	var stale int
	iteration := startEpoch * perEpoch
	total := h.MaxEpochs * perEpoch
	if h.Verbose {
		printHeader(out)
	}

	for epoch := startEpoch; epoch < h.MaxEpochs; epoch++ {
		if h.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		rate := h.LearnRateAt(epoch)
		for b := 0; b < perEpoch; b++ {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			iteration++
			batch := gradient(order[b*batchSize : (b+1)*batchSize])
			if math.IsNaN(batch.Loss) || math.IsInf(batch.Loss, 0) {
				return history, fmt.Errorf("epoch %d iteration %d loss %v: %w", epoch+1, iteration, batch.Loss, ErrDiverged)
			}
			if h.GradientThreshold > 0 {
				ClipGradients(batch.Grads, h.GradientThreshold)
			}
			if err := solver.Step(batch.Grads, rate); err != nil {
				return history, err
			}

			it := Iteration{
				Epoch:              epoch + 1,
				Iteration:          iteration,
				Elapsed:            time.Since(start),
				TrainLoss:          batch.Loss,
				TrainAccuracy:      batch.Accuracy,
				ValidationLoss:     math.NaN(),
				ValidationAccuracy: math.NaN(),
				LearnRate:          rate,
			}
			validated := validation.Len() > 0 && ((h.ValidationFrequency > 0 && iteration%h.ValidationFrequency == 0) || iteration == total)
			if validated {
				e := evaluate()
				it.ValidationLoss, it.ValidationAccuracy = e.Loss, e.Accuracy
				history.FinalValidation = e
				if e.Loss < best {
					best, stale = e.Loss, 0
				} else {
					stale++
				}
			}
			history.Iterations = append(history.Iterations, it)
			if h.Verbose && (validated || iteration == 1 || iteration == total ||
				(h.VerboseFrequency > 0 && iteration%h.VerboseFrequency == 0)) {
				printRow(out, &it)
			}
			if validated && h.ValidationPatience > 0 && stale >= h.ValidationPatience {
				history.StoppedEarly = true
				break
			}
		}
		if h.CheckpointPath != "" {
			if err := Checkpoint(net, h.CheckpointPath, epoch+1); err != nil {
				return history, err
			}
		}
		if history.StoppedEarly {
			log.Info("validation patience exhausted", "epoch", epoch+1, "best_loss", best)
			break
		}
	}
	if h.Verbose {
		rule(out)
	}
	if validation.Len() > 0 {
		history.FinalValidation = evaluate()
	}
	log.Info("training finished", "iterations", iteration, "elapsed", time.Since(start).Round(time.Millisecond),
		"validation_accuracy", history.FinalValidation.Accuracy)
	return history, nil
}
