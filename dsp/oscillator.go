package dsp

import "math"

// Oscillator reads a wavetable by phase accumulation with linear
// interpolation. The zero value is silent until a table is set.
type Oscillator struct {
	table *Wavetable
	size  float32
	index float32
	delta float32
}

// NewOscillator creates an oscillator reading t.
func NewOscillator(t *Wavetable) *Oscillator {
	o := &Oscillator{}
	o.SetWavetable(t)
	return o
}

// SetFrequency sets the per-sample phase increment for freq at sampleRate.
func (o *Oscillator) SetFrequency(freq, sampleRate float64) {
	if sampleRate <= 0 {
		o.delta = 0
		return
	}
	o.delta = float32(freq * float64(o.size) / sampleRate)
}

// SetWavetable swaps the table without touching the phase, so changing
// shape mid-note does not click.
func (o *Oscillator) SetWavetable(t *Wavetable) {
	o.table = t
	if t == nil {
		o.size = 0
		return
	}
	o.size = float32(t.Size())
}

// Wavetable returns the table currently read.
func (o *Oscillator) Wavetable() *Wavetable {
	return o.table
}

// NextSample returns the interpolated sample at the current phase and
// advances by one sample.
func (o *Oscillator) NextSample() float32 {
	if o.table == nil || o.size <= 0 {
		return 0
	}
	// A switch to a shorter table can leave the phase past its end.
	o.wrap()

	i0 := int(o.index)
	frac := o.index - float32(i0)
	out := lerp(o.table.samples[i0], o.table.samples[i0+1], frac)

	o.index += o.delta
	o.wrap()
	return out
}

// wrap folds index into [0, size) in constant time. Steps of several
// cycles fall back to math.Mod; a non-finite phase restarts the cycle.
func (o *Oscillator) wrap() {
	if o.index < o.size {
		return
	}
	o.index -= o.size
	if o.index >= o.size {
		o.index = float32(math.Mod(float64(o.index), float64(o.size)))
	}
	if !(o.index >= 0 && o.index < o.size) {
		o.index = 0
	}
}

// Index returns the fractional read position in [0, table size).
func (o *Oscillator) Index() float32 {
	return o.index
}

// Delta returns the per-sample phase increment.
func (o *Oscillator) Delta() float32 {
	return o.delta
}

// Reset rewinds the phase to the start of the cycle.
func (o *Oscillator) Reset() {
	o.index = 0
}
