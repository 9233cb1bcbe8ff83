// Package audio reads, writes and resamples mono waveforms
package audio

import "errors"
import "fmt"
import "math"
import "os"

import goaudio "github.com/go-audio/audio"
import "github.com/go-audio/wav"
import resampling "github.com/tphakala/go-audio-resampling"

// ErrInvalidWav is returned for files which are not PCM WAV
var ErrInvalidWav = errors.New("audio: not a valid PCM wav file")

// Clip is a mono waveform normalized to [-1, 1]
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Read decodes a PCM WAV file, mixing all channels down to mono
func Read(path string) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWav)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	channels := buf.Format.NumChannels
	if channels <= 0 || buf.SourceBitDepth <= 0 {
		return nil, fmt.Errorf("%s: %d channels at %d bits: %w", path, channels, buf.SourceBitDepth, ErrInvalidWav)
	}
	scale := float64(int64(1) << uint(buf.SourceBitDepth-1))
	var offset float64
	if buf.SourceBitDepth == 8 {
		// 8 bit wav is unsigned
		offset = 128
	}
	clip := &Clip{
		Samples:    make([]float64, len(buf.Data)/channels),
		SampleRate: buf.Format.SampleRate,
	}
	for i := range clip.Samples {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) - offset
		}
		clip.Samples[i] = clamp(sum / float64(channels) / scale)
	}
	return clip, nil
}

// Write encodes the clip as a mono PCM WAV file of the given bit depth
func Write(path string, clip *Clip, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	scale := float64(int64(1)<<uint(bitDepth-1) - 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           make([]int, len(clip.Samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range clip.Samples {
		buf.Data[i] = int(clamp(s) * scale)
	}
	enc := wav.NewEncoder(file, clip.SampleRate, bitDepth, 1, 1)
	if err = enc.Write(buf); err == nil {
		err = enc.Close()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Resample converts the clip to the target sample rate.
// A zero rate or the clip's own rate returns the clip unchanged.
func Resample(clip *Clip, rate int) (*Clip, error) {
	if rate == 0 || rate == clip.SampleRate {
		return clip, nil
	}
	if rate < 0 || clip.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: cannot resample %d Hz to %d Hz", clip.SampleRate, rate)
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(clip.SampleRate),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: create resampler: %w", err)
	}
	out, err := r.Process(clip.Samples)
	if err != nil {
		return nil, fmt.Errorf("audio: resample: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("audio: resample flush: %w", err)
	}
	out = append(out, tail...)

	// the filter tail may over or undershoot by a few samples
	want := int(math.Round(float64(len(clip.Samples)) * float64(rate) / float64(clip.SampleRate)))
	if len(out) > want {
		out = out[:want]
	}
	for len(out) < want {
		out = append(out, 0)
	}
	for i := range out {
		out[i] = clamp(out[i])
	}
	return &Clip{Samples: out, SampleRate: rate}, nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
