// Package analysis measures rendered audio: levels, envelopes and
// FFT spectra for the scope display and the offline tools.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Band is a named frequency range.
type Band struct {
	Name string
	LoHz float64
	HiHz float64
}

// DefaultBands splits the audible range into seven bands.
var DefaultBands = []Band{
	{"sub-bass", 20, 100},
	{"bass", 100, 300},
	{"low-mid", 300, 1000},
	{"mid", 1000, 3000},
	{"hi-mid", 3000, 6000},
	{"high", 6000, 12000},
	{"air", 12000, 20000},
}

// Analyzer computes Hann-windowed magnitude spectra of a fixed size. It
// owns its buffers, so repeated calls do not allocate; it is not safe for
// concurrent use.
type Analyzer struct {
	size       int
	sampleRate float64
	forward    func(dst []complex128, src []float64)

	window []float64
	buf    []float64
	spec   []complex128
	mag    []float64
	gain   float64
}

// NewAnalyzer creates an analyzer whose FFT size is size rounded up to a
// power of two.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < 2 {
		return nil, fmt.Errorf("fft size %d too small", size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %v", sampleRate)
	}
	n := 1
	for n < size {
		n <<= 1
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}
	a := &Analyzer{
		size:       n,
		sampleRate: sampleRate,
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
		window: make([]float64, n),
		buf:    make([]float64, n),
		spec:   make([]complex128, n/2+1),
		mag:    make([]float64, n/2+1),
	}
	var sum float64
	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		sum += a.window[i]
	}
	// A full-scale sine centred on a bin reads as amplitude 1.
	a.gain = 2 / sum
	return a, nil
}

// Size returns the FFT length.
func (a *Analyzer) Size() int { return a.size }

// BinHz returns the bin spacing.
func (a *Analyzer) BinHz() float64 { return a.sampleRate / float64(a.size) }

// Magnitudes returns amplitude per bin (Size()/2+1 values) for the first
// Size() samples of x, zero padding shorter input. The slice is reused by
// the next call.
func (a *Analyzer) Magnitudes(x []float32) []float64 {
	n := min(len(x), a.size)
	for i := 0; i < n; i++ {
		a.buf[i] = float64(x[i]) * a.window[i]
	}
	clear(a.buf[n:])
	a.forward(a.spec, a.buf)
	for k, c := range a.spec {
		a.mag[k] = cmplx.Abs(c) * a.gain
	}
	return a.mag
}

// PeakFrequency returns the frequency of the strongest bin above DC,
// refined by parabolic interpolation. Silence yields 0.
func (a *Analyzer) PeakFrequency(x []float32) float64 {
	mag := a.Magnitudes(x)
	best := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	if mag[best] < 1e-9 {
		return 0
	}
	offset := 0.0
	if best > 1 && best < len(mag)-1 {
		l, c, r := mag[best-1], mag[best], mag[best+1]
		if den := l - 2*c + r; den != 0 {
			offset = 0.5 * (l - r) / den
		}
	}
	return (float64(best) + offset) * a.BinHz()
}

// BandLevelsDB returns the peak level in dBFS within each band. Bands
// outside the analyzable range report the floor level.
func (a *Analyzer) BandLevelsDB(x []float32, bands []Band, dst []float64) []float64 {
	mag := a.Magnitudes(x)
	dst = dst[:0]
	binHz := a.BinHz()
	for _, b := range bands {
		lo := max(1, int(math.Ceil(b.LoHz/binHz)))
		hi := min(len(mag)-1, int(math.Floor(b.HiHz/binHz)))
		peak := 0.0
		for k := lo; k <= hi; k++ {
			peak = math.Max(peak, mag[k])
		}
		dst = append(dst, LinToDB(peak))
	}
	return dst
}
