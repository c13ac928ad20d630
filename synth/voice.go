package synth

import (
	"math"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

// Sound is a capability set. The pool assigns a note only to a voice
// whose CanPlay accepts the note's sound.
type Sound uint32

const (
	SoundWavetable Sound = 1 << iota
)

// noteToFreq converts a MIDI note to Hz in equal temperament, A4 = 440 Hz.
func noteToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Voice plays one note: a wavetable oscillator shaped by an ADSR.
// Voices live in the pool arena and are reused, never reallocated.
type Voice struct {
	bank       *dsp.Bank
	osc        dsp.Oscillator
	env        dsp.ADSR
	sampleRate float64

	note       int
	velocity   float32
	pitchWheel int
	waveType   dsp.WaveType
	volume     float32

	keyDown   bool
	sustained bool
	age       uint64
}

func (v *Voice) init(bank *dsp.Bank) {
	v.bank = bank
	v.note = -1
	v.volume = 1
	v.waveType = dsp.WaveSine
	v.osc.SetWavetable(bank.Table(dsp.WaveSine))
}

// CanPlay reports whether the voice supports s.
func (v *Voice) CanPlay(s Sound) bool {
	return s&SoundWavetable != 0
}

// SetSampleRate retunes the envelope. It does not change a sounding
// oscillator's pitch; the next StartNote does.
func (v *Voice) SetSampleRate(sampleRate float64) {
	v.sampleRate = sampleRate
	v.env.SetSampleRate(sampleRate)
}

// StartNote begins note from the envelope's current level. Velocity and
// pitch wheel are recorded but not applied to the sound.
func (v *Voice) StartNote(note int, velocity float32, pitchWheel int) {
	v.note = note
	v.velocity = velocity
	v.pitchWheel = pitchWheel
	v.keyDown = true
	v.sustained = false
	v.osc.SetFrequency(noteToFreq(note), v.sampleRate)
	// The oscillator may still hold a table from before a bank swap.
	v.osc.SetWavetable(v.bank.Table(v.waveType))
	v.env.NoteOn()
}

// StopNote releases the note. Without tail-off, or when the envelope is
// already silent, the voice is freed at once.
func (v *Voice) StopNote(velocity float32, allowTailOff bool) {
	v.keyDown = false
	v.sustained = false
	if !allowTailOff {
		v.clear()
		return
	}
	v.env.NoteOff()
	if !v.env.IsActive() {
		v.clear()
	}
}

func (v *Voice) clear() {
	v.env.Reset()
	v.osc.Reset()
	v.note = -1
	v.keyDown = false
	v.sustained = false
}

// RenderNextBlock adds n samples starting at start to every channel of out.
// Existing buffer content is kept. The voice frees itself as soon as its
// envelope finishes.
func (v *Voice) RenderNextBlock(out [][]float32, start, n int) {
	if v.note < 0 {
		return
	}
	for i := start; i < start+n; i++ {
		if !v.env.IsActive() {
			v.clear()
			return
		}
		s := v.osc.NextSample() * v.volume * v.env.NextSample()
		for ch := range out {
			out[ch][i] += s
		}
	}
	if !v.env.IsActive() {
		v.clear()
	}
}

// SetWaveType switches the table; the oscillator phase is kept.
func (v *Voice) SetWaveType(w dsp.WaveType) {
	if w == v.waveType {
		return
	}
	v.waveType = w
	v.osc.SetWavetable(v.bank.Table(w))
}

// SetVolume sets the output gain.
func (v *Voice) SetVolume(volume float32) {
	v.volume = volume
}

// SetADSRParameters forwards envelope settings.
func (v *Voice) SetADSRParameters(p dsp.ADSRParams) {
	v.env.SetParameters(p)
}

// IsActive reports whether the voice is sounding a note.
func (v *Voice) IsActive() bool {
	return v.note >= 0
}

// Note returns the sounding MIDI note, or -1.
func (v *Voice) Note() int {
	return v.note
}

// KeyDown reports whether the note's key is still held.
func (v *Voice) KeyDown() bool {
	return v.keyDown
}

// Stage returns the envelope stage.
func (v *Voice) Stage() dsp.ADSRStage {
	return v.env.Stage()
}

// Oscillator exposes the voice oscillator for inspection.
func (v *Voice) Oscillator() *dsp.Oscillator {
	return &v.osc
}
