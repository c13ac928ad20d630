package synth

import (
	"math"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

func makeBuffer(channels, n int) [][]float32 {
	buf := make([][]float32, channels)
	for ch := range buf {
		buf[ch] = make([]float32, n)
	}
	return buf
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

// shortParams returns fast envelope settings so tests finish in a few blocks.
func shortParams() Params {
	p := DefaultParams()
	p.Attack = 0.01
	p.Decay = 0.01
	p.Sustain = 0.7
	p.Release = 0.01
	return p
}

func newTestPool(n int, sampleRate float64, p Params) *Pool {
	pool := NewPool(n, dsp.NewBank(dsp.DefaultTableSize))
	pool.SetSampleRate(sampleRate)
	pool.ApplyParams(p)
	return pool
}

func activeNotes(p *Pool) map[int]bool {
	notes := map[int]bool{}
	for i := 0; i < p.Len(); i++ {
		if v := p.Voice(i); v.IsActive() {
			notes[v.Note()] = true
		}
	}
	return notes
}
