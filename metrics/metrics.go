// Package metrics computes classification metrics from a confusion matrix
package metrics

import "encoding/hex"
import "fmt"
import "os"

import "github.com/goccy/go-yaml"

import "github.com/neurlang/fetalheart/datasets"
import "github.com/neurlang/fetalheart/net/feedforward"
import "github.com/neurlang/fetalheart/parallel"

// ClassMetrics are the one-vs-rest metrics of one class. An undefined
// precision (no predictions of the class) or recall (no instances of the
// class) is reported as 0 with the Defined flag unset; F1 is 0 whenever
// precision + recall is 0.
type ClassMetrics struct {
	Class            string  `yaml:"class"`
	TP               int     `yaml:"tp"`
	FP               int     `yaml:"fp"`
	FN               int     `yaml:"fn"`
	Support          int     `yaml:"support"`
	Precision        float64 `yaml:"precision"`
	Recall           float64 `yaml:"recall"`
	F1               float64 `yaml:"f1"`
	PrecisionDefined bool    `yaml:"precision_defined"`
	RecallDefined    bool    `yaml:"recall_defined"`
}

// Report holds the evaluation of one set. Confusion rows are true classes,
// columns predicted classes.
type Report struct {
	Name        string         `yaml:"name,omitempty"`
	Classes     []string       `yaml:"classes"`
	Confusion   [][]int        `yaml:"confusion"`
	Total       int            `yaml:"total"`
	Correct     int            `yaml:"correct"`
	Accuracy    float64        `yaml:"accuracy"`
	PerClass    []ClassMetrics `yaml:"per_class"`
	Fingerprint string         `yaml:"fingerprint,omitempty"`
}

// Compute builds the report of predicted against truth labels
func Compute(classes []string, truth, predicted []int) (*Report, error) {
	if len(truth) != len(predicted) {
		return nil, fmt.Errorf("metrics: %d labels for %d predictions", len(truth), len(predicted))
	}
	k := len(classes)
	r := &Report{
		Classes:   classes,
		Confusion: make([][]int, k),
		Total:     len(truth),
		PerClass:  make([]ClassMetrics, k),
	}
	for i := range r.Confusion {
		r.Confusion[i] = make([]int, k)
	}
	for i := range truth {
		t, p := truth[i], predicted[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return nil, fmt.Errorf("metrics: sample %d label %d predicted %d outside %d classes", i, t, p, k)
		}
		r.Confusion[t][p]++
		if t == p {
			r.Correct++
		}
	}
	if r.Total > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Total)
	}
	for c := 0; c < k; c++ {
		m := ClassMetrics{Class: classes[c], TP: r.Confusion[c][c]}
		for o := 0; o < k; o++ {
			m.Support += r.Confusion[c][o]
			if o != c {
				m.FN += r.Confusion[c][o]
				m.FP += r.Confusion[o][c]
			}
		}
		if m.TP+m.FP > 0 {
			m.Precision = float64(m.TP) / float64(m.TP+m.FP)
			m.PrecisionDefined = true
		}
		if m.TP+m.FN > 0 {
			m.Recall = float64(m.TP) / float64(m.TP+m.FN)
			m.RecallDefined = true
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.PerClass[c] = m
	}
	return r, nil
}

// Predict classifies every sample of set using up to threads goroutines.
// It returns the predicted classes and their sha256 fingerprint.
func Predict(net *feedforward.FeedforwardNetwork, set *datasets.FeatureSet, threads int) ([]int, [32]byte) {
	n := set.Len()
	predicted := make([]int, n)
	if threads <= 0 {
		threads = 1
	}
	if threads > n {
		threads = n
	}
	h := parallel.NewUint16Hasher(n)
	if n == 0 {
		return predicted, h.Sum()
	}
	parallel.ForEach(threads, threads, func(w int) {
		pass := net.Lay(false)
		for i := w * n / threads; i < (w+1)*n/threads; i++ {
			predicted[i] = feedforward.Argmax(pass.Forward(set.Input(i)))
			h.MustPutUint16(i, uint16(predicted[i]))
		}
	})
	return predicted, h.Sum()
}

// Evaluate runs inference over set and computes its report
func Evaluate(net *feedforward.FeedforwardNetwork, set *datasets.FeatureSet, threads int) (*Report, error) {
	predicted, sum := Predict(net, set, threads)
	r, err := Compute(set.Classes, set.Labels(), predicted)
	if err != nil {
		return nil, err
	}
	r.Fingerprint = hex.EncodeToString(sum[:])
	return r, nil
}

// MacroF1 is the mean F1 over all classes
func (r *Report) MacroF1() float64 {
	if len(r.PerClass) == 0 {
		return 0
	}
	var sum float64
	for _, m := range r.PerClass {
		sum += m.F1
	}
	return sum / float64(len(r.PerClass))
}

// WriteYAML writes the reports to a YAML file
func WriteYAML(path string, reports ...*Report) error {
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadYAML reads reports written by WriteYAML
func ReadYAML(path string) ([]*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reports []*Report
	if err := yaml.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return reports, nil
}
