// Package spectrogram computes log mel spectrogram images of audio clips.
//
// A clip is cut into periodic Hann windowed frames, each frame is zero
// padded to the FFT length, its power spectrum is mapped onto triangular
// HTK mel bands and the result is log compressed. The bands x frames plane
// is then bilinearly resized to the network input size and stacked into a
// pseudo RGB image.
package spectrogram

import "fmt"
import "math"

import "gonum.org/v1/gonum/dsp/fourier"
import "gorgonia.org/tensor"

// Params are the analysis parameters
type Params struct {
	WindowLength int     `yaml:"window" msgpack:"window"`
	Overlap      int     `yaml:"overlap" msgpack:"overlap"`
	FFTLength    int     `yaml:"fft" msgpack:"fft"`
	Bands        int     `yaml:"bands" msgpack:"bands"`
	FMin         float64 `yaml:"fmin" msgpack:"fmin"`
	// FMax of zero means the Nyquist frequency
	FMax    float64 `yaml:"fmax" msgpack:"fmax"`
	Epsilon float64 `yaml:"epsilon" msgpack:"epsilon"`
}

// DefaultParams returns window 256, overlap 128, FFT 512, 96 bands, 0 Hz to Nyquist, epsilon 1e-6
func DefaultParams() Params {
	return Params{
		WindowLength: 256,
		Overlap:      128,
		FFTLength:    512,
		Bands:        96,
		Epsilon:      1e-6,
	}
}

// Hop returns the distance between frame starts
func (p Params) Hop() int {
	return p.WindowLength - p.Overlap
}

// Validate checks the parameters are usable for a sample rate (0 skips the frequency checks)
func (p Params) Validate(sampleRate int) error {
	if p.WindowLength <= 0 || p.Overlap < 0 || p.Overlap >= p.WindowLength {
		return fmt.Errorf("spectrogram: window %d with overlap %d", p.WindowLength, p.Overlap)
	}
	if p.FFTLength < p.WindowLength {
		return fmt.Errorf("spectrogram: fft length %d shorter than window %d", p.FFTLength, p.WindowLength)
	}
	if p.Bands <= 0 {
		return fmt.Errorf("spectrogram: %d bands", p.Bands)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("spectrogram: epsilon %v is not positive", p.Epsilon)
	}
	if p.FMin < 0 || (p.FMax != 0 && p.FMax <= p.FMin) {
		return fmt.Errorf("spectrogram: band range %v..%v Hz", p.FMin, p.FMax)
	}
	if sampleRate != 0 && p.FMax > float64(sampleRate)/2 {
		return fmt.Errorf("spectrogram: fmax %v above nyquist of %d Hz", p.FMax, sampleRate)
	}
	return nil
}

// Spectrogram is a bands x frames plane stored band-major, lowest band first
type Spectrogram struct {
	Bands  int
	Frames int
	Data   []float64
}

// At returns the value of band b at frame t
func (s *Spectrogram) At(b, t int) float64 {
	return s.Data[b*s.Frames+t]
}

// Frames returns the frame count of a clip of n samples. Clips shorter than
// one window are padded to one window.
func (p Params) Frames(n int) int {
	if n < p.WindowLength {
		return 1
	}
	return (n - p.Overlap) / p.Hop()
}

// Extractor computes mel spectrograms at one sample rate.
// It is not safe for concurrent use.
type Extractor struct {
	p       Params
	rate    int
	window  []float64
	filters []filter
	fft     *fourier.FFT
	frame   []float64
	coeff   []complex128
	power   []float64
}

type filter struct {
	first   int
	weights []float64
}

// NewExtractor creates an extractor for clips of the given sample rate
func NewExtractor(p Params, sampleRate int) (*Extractor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("spectrogram: sample rate %d", sampleRate)
	}
	if err := p.Validate(sampleRate); err != nil {
		return nil, err
	}
	e := &Extractor{
		p:      p,
		rate:   sampleRate,
		window: hann(p.WindowLength),
		fft:    fourier.NewFFT(p.FFTLength),
		frame:  make([]float64, p.FFTLength),
		coeff:  make([]complex128, p.FFTLength/2+1),
		power:  make([]float64, p.FFTLength/2+1),
	}
	fmax := p.FMax
	if fmax == 0 {
		fmax = float64(sampleRate) / 2
	}
	e.filters = melFilters(p.Bands, p.FFTLength, sampleRate, p.FMin, fmax)
	return e, nil
}

// Mel computes the mel power spectrogram of samples
func (e *Extractor) Mel(samples []float64) *Spectrogram {
	p := e.p
	frames := p.Frames(len(samples))
	s := &Spectrogram{
		Bands:  p.Bands,
		Frames: frames,
		Data:   make([]float64, p.Bands*frames),
	}
	for t := 0; t < frames; t++ {
		start := t * p.Hop()
		for i := range e.frame {
			e.frame[i] = 0
		}
		for i := 0; i < p.WindowLength && start+i < len(samples); i++ {
			e.frame[i] = samples[start+i] * e.window[i]
		}
		e.coeff = e.fft.Coefficients(e.coeff, e.frame)
		for k, c := range e.coeff {
			e.power[k] = real(c)*real(c) + imag(c)*imag(c)
		}
		for b, f := range e.filters {
			var sum float64
			for k, w := range f.weights {
				sum += w * e.power[f.first+k]
			}
			s.Data[b*frames+t] = sum
		}
	}
	return s
}

// Log replaces every value v by log10(v + eps)
func Log(s *Spectrogram, eps float64) {
	for i, v := range s.Data {
		s.Data[i] = math.Log10(v + eps)
	}
}

// hann returns a periodic Hann window
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilters builds bands triangular filters with edges equally spaced on
// the mel scale between fmin and fmax, evaluated at the FFT bin frequencies.
// Every filter covers at least one bin.
func melFilters(bands, fftLength, rate int, fmin, fmax float64) []filter {
	bins := fftLength/2 + 1
	lo, hi := hzToMel(fmin), hzToMel(fmax)
	edges := make([]float64, bands+2)
	for i := range edges {
		edges[i] = melToHz(lo + (hi-lo)*float64(i)/float64(bands+1))
	}
	o := make([]filter, bands)
	for b := range o {
		left, center, right := edges[b], edges[b+1], edges[b+2]
		var f filter
		for k := 0; k < bins; k++ {
			hz := float64(k) * float64(rate) / float64(fftLength)
			var w float64
			switch {
			case hz > left && hz <= center:
				w = (hz - left) / (center - left)
			case hz > center && hz < right:
				w = (right - hz) / (right - center)
			}
			if w <= 0 {
				if f.weights != nil {
					break
				}
				continue
			}
			if f.weights == nil {
				f.first = k
			}
			f.weights = append(f.weights, w)
		}
		if f.weights == nil {
			// narrower than the bin spacing: take the bin nearest the center
			k := int(math.Round(center * float64(fftLength) / float64(rate)))
			if k >= bins {
				k = bins - 1
			}
			f = filter{first: k, weights: []float64{1}}
		}
		o[b] = f
	}
	return o
}

// Resize bilinearly resizes the plane to h x w float32 values, row-major.
// Rows are bands, columns are frames.
func Resize(s *Spectrogram, h, w int) []float32 {
	o := make([]float32, h*w)
	sy := float64(s.Bands) / float64(h)
	sx := float64(s.Frames) / float64(w)
	for y := 0; y < h; y++ {
		y0, y1, fy := sourceCoord(y, sy, s.Bands)
		for x := 0; x < w; x++ {
			x0, x1, fx := sourceCoord(x, sx, s.Frames)
			top := s.At(y0, x0)*(1-fx) + s.At(y0, x1)*fx
			bottom := s.At(y1, x0)*(1-fx) + s.At(y1, x1)*fx
			o[y*w+x] = float32(top*(1-fy) + bottom*fy)
		}
	}
	return o
}

// sourceCoord maps a destination pixel center to the two neighbouring
// source indexes and the interpolation weight of the second one
func sourceCoord(d int, scale float64, n int) (int, int, float64) {
	src := (float64(d)+0.5)*scale - 0.5
	if src <= 0 {
		return 0, 0, 0
	}
	if src >= float64(n-1) {
		return n - 1, n - 1, 0
	}
	i := int(src)
	return i, i + 1, src - float64(i)
}

// Image stacks a h x w plane channels times into a (channels, h, w) tensor
func Image(plane []float32, channels, h, w int) *tensor.Dense {
	data := make([]float32, 0, channels*h*w)
	for c := 0; c < channels; c++ {
		data = append(data, plane...)
	}
	return tensor.New(tensor.WithShape(channels, h, w), tensor.WithBacking(data))
}

// Extract computes the (channels, h, w) log mel spectrogram image of samples
func (e *Extractor) Extract(samples []float64, channels, h, w int) *tensor.Dense {
	s := e.Mel(samples)
	Log(s, e.p.Epsilon)
	return Image(Resize(s, h, w), channels, h, w)
}
