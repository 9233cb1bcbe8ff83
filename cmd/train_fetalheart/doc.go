// Package main provides the program training the fetal heart rate classifier. It
// reads WAV recordings from one folder per category, converts them to log mel
// spectrogram images, fine-tunes a pretrained network on them and saves the model,
// the confusion matrix charts and the metrics of the validation and test sets.
package main
