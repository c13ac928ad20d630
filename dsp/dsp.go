// Package dsp holds the real-time building blocks of the synthesizer:
// wavetables and their oscillator, the ADSR envelope and the ladder filter.
// Nothing in this package allocates once a unit has been prepared.
package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// lerp interpolates linearly between a and b.
func lerp(a, b, frac float32) float32 {
	return a + frac*(b-a)
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// flush zeroes denormal filter state.
func flush(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}
