// Package trainer provides high-level training orchestration for feedforward networks.
// It runs mini-batch SGD with momentum over in-memory feature sets, computing
// per-sample gradients on all CPU cores, monitoring a validation set and
// printing a live progress table.
package trainer
