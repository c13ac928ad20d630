package dsp

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTableSize is the number of points per wavetable cycle.
const DefaultTableSize = 1 << 7

// WaveType selects one of the bank's fixed single-cycle shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
	WaveSaw
	WaveSquare

	numWaveTypes
)

var waveNames = [numWaveTypes]string{"sine", "triangle", "saw", "square"}

func (w WaveType) String() string {
	if w < 0 || w >= numWaveTypes {
		return fmt.Sprintf("WaveType(%d)", int(w))
	}
	return waveNames[w]
}

// Valid reports whether w names one of the four bank shapes.
func (w WaveType) Valid() bool {
	return w >= 0 && w < numWaveTypes
}

// ParseWaveType accepts a shape name (case-insensitive) or its index.
func ParseWaveType(s string) (WaveType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range waveNames {
		if s == name || s == fmt.Sprint(i) {
			return WaveType(i), nil
		}
	}
	return WaveSine, fmt.Errorf("unknown wave type %q", s)
}

// Wavetable is one cycle of a waveform with a trailing guard sample equal to
// the first, so readers can interpolate across the wrap without a modulo.
type Wavetable struct {
	samples []float32
}

// Size returns the number of points in one cycle (excluding the guard).
func (t *Wavetable) Size() int {
	return len(t.samples) - 1
}

// At returns the sample at index i in [0, Size()].
func (t *Wavetable) At(i int) float32 {
	return t.samples[i]
}

func newWavetable(size int, shape func(x float64) float64) *Wavetable {
	samples := make([]float32, size+1)
	delta := 1.0 / float64(size)
	x := 0.0
	for i := 0; i < size; i++ {
		samples[i] = float32(shape(x))
		x += delta
	}
	samples[size] = samples[0]
	return &Wavetable{samples: samples}
}

func sineShape(x float64) float64 {
	return math.Sin(2 * math.Pi * x)
}

func triangleShape(x float64) float64 {
	return 4*math.Abs(x-math.Floor(x+0.75)+0.25) - 1
}

func sawShape(x float64) float64 {
	return 2 * (x - math.Floor(0.5+x))
}

func squareShape(x float64) float64 {
	return 2*(2*math.Floor(x)-math.Floor(2*x)) + 1
}

// Bank owns the four shared tables. It is built once and never mutated.
type Bank struct {
	tables [numWaveTypes]*Wavetable
}

// NewBank builds sine, triangle, saw and square tables of the given size.
// Sizes below 2 fall back to DefaultTableSize.
func NewBank(size int) *Bank {
	if size < 2 {
		size = DefaultTableSize
	}
	b := &Bank{}
	b.tables[WaveSine] = newWavetable(size, sineShape)
	b.tables[WaveTriangle] = newWavetable(size, triangleShape)
	b.tables[WaveSaw] = newWavetable(size, sawShape)
	b.tables[WaveSquare] = newWavetable(size, squareShape)
	return b
}

// Table returns the table for w; unknown types get the sine table.
func (b *Bank) Table(w WaveType) *Wavetable {
	if !w.Valid() {
		return b.tables[WaveSine]
	}
	return b.tables[w]
}

// Size returns the common cycle length of the bank's tables.
func (b *Bank) Size() int {
	return b.tables[WaveSine].Size()
}

// Shape evaluates the closed-form reference for w at cycle position x in [0,1).
func Shape(w WaveType, x float64) float64 {
	switch w {
	case WaveTriangle:
		return triangleShape(x)
	case WaveSaw:
		return sawShape(x)
	case WaveSquare:
		return squareShape(x)
	default:
		return sineShape(x)
	}
}
