// Package datasets implements the labelled audio dataset type and its splits
package datasets

import "errors"
import "fmt"
import "math"
import "math/rand"
import "sort"

// ErrEmptyDataset is returned when a dataset, a category or a split holds no samples
var ErrEmptyDataset = errors.New("datasets: empty dataset")

// Sample is one labelled file
type Sample struct {
	Path  string
	Label int
}

// Dataset is an ordered list of labelled samples over named classes
type Dataset struct {
	Classes []string
	Samples []Sample
}

// Splits holds the disjoint train, validation and test parts of a dataset
type Splits struct {
	Train      Dataset
	Validation Dataset
	Test       Dataset
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Shuffle permutes the samples
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Samples), func(i, j int) {
		d.Samples[i], d.Samples[j] = d.Samples[j], d.Samples[i]
	})
}

// CountLabels counts the samples of every class
func (d *Dataset) CountLabels() []int {
	counts := make([]int, len(d.Classes))
	for _, s := range d.Samples {
		counts[s.Label]++
	}
	return counts
}

// Split partitions the dataset by label proportion. A fraction train of all
// samples goes to the train split, a fraction validation to the validation
// split, and the rest to the test split. Per-class counts are apportioned by
// the largest remainder method, samples keep their relative order.
func (d *Dataset) Split(train, validation float64) (o Splits, err error) {
	if train <= 0 || validation < 0 || train+validation > 1 {
		return o, fmt.Errorf("split fractions %v/%v out of range", train, validation)
	}
	total := len(d.Samples)
	if total == 0 {
		return o, fmt.Errorf("split: %w", ErrEmptyDataset)
	}
	for _, s := range d.Samples {
		if s.Label < 0 || s.Label >= len(d.Classes) {
			return o, fmt.Errorf("split: sample %s has label %d of %d classes", s.Path, s.Label, len(d.Classes))
		}
	}
	counts := d.CountLabels()
	trainTotal := int(math.Round(train * float64(total)))
	validationTotal := int(math.Round(validation * float64(total)))
	if trainTotal+validationTotal > total {
		validationTotal = total - trainTotal
	}
	if trainTotal == 0 {
		return o, fmt.Errorf("split: train split of %d samples: %w", total, ErrEmptyDataset)
	}

	trainCounts := Apportion(trainTotal, counts)
	rest := make([]int, len(counts))
	for i := range counts {
		rest[i] = counts[i] - trainCounts[i]
	}
	validationCounts := Apportion(validationTotal, rest)

	for _, part := range []*Dataset{&o.Train, &o.Validation, &o.Test} {
		part.Classes = d.Classes
	}
	taken := make([]int, len(counts))
	for _, s := range d.Samples {
		n := taken[s.Label]
		taken[s.Label]++
		switch {
		case n < trainCounts[s.Label]:
			o.Train.Samples = append(o.Train.Samples, s)
		case n < trainCounts[s.Label]+validationCounts[s.Label]:
			o.Validation.Samples = append(o.Validation.Samples, s)
		default:
			o.Test.Samples = append(o.Test.Samples, s)
		}
	}
	return o, nil
}

// Apportion distributes total seats among groups proportionally to weights
// using the largest remainder method. Ties go to the lower group index.
// The result never exceeds a group's weight when total <= sum(weights).
func Apportion(total int, weights []int) []int {
	o := make([]int, len(weights))
	var sum int
	for _, w := range weights {
		sum += w
	}
	if sum == 0 || total <= 0 {
		return o
	}
	type remainder struct {
		group int
		frac  int
	}
	var given int
	rems := make([]remainder, 0, len(weights))
	for i, w := range weights {
		o[i] = total * w / sum
		given += o[i]
		rems = append(rems, remainder{i, total * w % sum})
	}
	sort.SliceStable(rems, func(i, j int) bool {
		return rems[i].frac > rems[j].frac
	})
	for i := 0; given < total && i < len(rems); i++ {
		if o[rems[i].group] < weights[rems[i].group] {
			o[rems[i].group]++
			given++
		}
	}
	return o
}
