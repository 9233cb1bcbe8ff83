// Package main provides a program classifying WAV recordings with a trained fetal
// heart rate model, printing the predicted category and class probabilities.
package main
