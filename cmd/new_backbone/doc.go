// Package main writes a freshly initialized convolutional image classifier that
// train_fetalheart can adapt when no pretrained network file is at hand.
package main
