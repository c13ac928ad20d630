package synth

import (
	"math/bits"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

// DefaultVoices is the pool size used when none is configured.
const DefaultVoices = 127

// Pool is a fixed arena of voices with an active bitmask.
//
// Note-on allocation, among voices that can play the requested sound:
//  1. voices still sounding the same note are released with tail-off;
//  2. the lowest-index idle voice is used;
//  3. otherwise the oldest voice in its release stage is stolen, else the
//     oldest sounding voice. Stealing cuts the voice without a tail.
type Pool struct {
	voices []Voice
	active []uint64

	clock       uint64
	sustainDown bool
	pitchWheel  int
}

// NewPool allocates n voices reading from bank.
func NewPool(n int, bank *dsp.Bank) *Pool {
	if n < 1 {
		n = DefaultVoices
	}
	p := &Pool{
		voices:     make([]Voice, n),
		active:     make([]uint64, (n+63)/64),
		pitchWheel: PitchWheelCenter,
	}
	for i := range p.voices {
		p.voices[i].init(bank)
	}
	return p
}

// Len returns the pool size.
func (p *Pool) Len() int {
	return len(p.voices)
}

// Voice returns the voice in slot i.
func (p *Pool) Voice(i int) *Voice {
	return &p.voices[i]
}

// SetSampleRate prepares every voice for sampleRate.
func (p *Pool) SetSampleRate(sampleRate float64) {
	for i := range p.voices {
		p.voices[i].SetSampleRate(sampleRate)
	}
}

func (p *Pool) isActive(i int) bool {
	return p.active[i>>6]&(1<<(uint(i)&63)) != 0
}

// sync mirrors voice i's state into the bitmask.
func (p *Pool) sync(i int) {
	bit := uint64(1) << (uint(i) & 63)
	if p.voices[i].IsActive() {
		p.active[i>>6] |= bit
	} else {
		p.active[i>>6] &^= bit
	}
}

// freeSlot returns the lowest idle voice able to play s, or -1.
func (p *Pool) freeSlot(s Sound) int {
	for w, word := range p.active {
		free := ^word
		for free != 0 {
			i := w*64 + bits.TrailingZeros64(free)
			free &= free - 1
			if i >= len(p.voices) {
				break
			}
			if p.voices[i].CanPlay(s) {
				return i
			}
		}
	}
	return -1
}

func (p *Pool) stealSlot(s Sound) int {
	oldest, oldestReleasing := -1, -1
	for i := range p.voices {
		if !p.isActive(i) || !p.voices[i].CanPlay(s) {
			continue
		}
		v := &p.voices[i]
		if oldest < 0 || v.age < p.voices[oldest].age {
			oldest = i
		}
		if v.Stage() == dsp.StageRelease && (oldestReleasing < 0 || v.age < p.voices[oldestReleasing].age) {
			oldestReleasing = i
		}
	}
	if oldestReleasing >= 0 {
		return oldestReleasing
	}
	return oldest
}

// NoteOn starts note with the wavetable sound. See NoteOnSound.
func (p *Pool) NoteOn(note int, velocity float32) int {
	return p.NoteOnSound(SoundWavetable, note, velocity)
}

// NoteOnSound starts note on a voice able to play s, chosen by the
// allocation policy, and returns its slot. Notes outside 0..127 and sounds
// no voice supports are ignored and return -1.
func (p *Pool) NoteOnSound(s Sound, note int, velocity float32) int {
	if note < 0 || note > 127 {
		return -1
	}
	for i := range p.voices {
		if p.isActive(i) && p.voices[i].note == note && p.voices[i].CanPlay(s) {
			p.voices[i].StopNote(1, true)
			p.sync(i)
		}
	}

	slot := p.freeSlot(s)
	if slot < 0 {
		slot = p.stealSlot(s)
		if slot < 0 {
			return -1
		}
		p.voices[slot].StopNote(0, false)
	}

	p.clock++
	v := &p.voices[slot]
	v.age = p.clock
	v.StartNote(note, velocity, p.pitchWheel)
	p.sync(slot)
	return slot
}

// NoteOff releases every held voice playing note. With the sustain pedal
// down the voices keep sounding until the pedal is lifted.
func (p *Pool) NoteOff(note int, velocity float32) {
	for i := range p.voices {
		v := &p.voices[i]
		if !p.isActive(i) || v.note != note || !v.keyDown {
			continue
		}
		if p.sustainDown {
			v.keyDown = false
			v.sustained = true
			continue
		}
		v.StopNote(velocity, true)
		p.sync(i)
	}
}

// SetSustainPedal holds released notes while down; lifting it releases
// every voice whose key is already up.
func (p *Pool) SetSustainPedal(down bool) {
	p.sustainDown = down
	if down {
		return
	}
	for i := range p.voices {
		v := &p.voices[i]
		if p.isActive(i) && v.sustained && !v.keyDown {
			v.StopNote(0, true)
			p.sync(i)
		}
	}
}

// SustainPedal reports the pedal state.
func (p *Pool) SustainPedal() bool {
	return p.sustainDown
}

// SetPitchWheel records the wheel position handed to new notes.
func (p *Pool) SetPitchWheel(value int) {
	p.pitchWheel = value
}

// AllNotesOff releases every voice, with a tail when allowTailOff is set.
func (p *Pool) AllNotesOff(allowTailOff bool) {
	for i := range p.voices {
		if p.isActive(i) {
			p.voices[i].StopNote(0, allowTailOff)
			p.sync(i)
		}
	}
}

// HandleEvent applies one MIDI event.
func (p *Pool) HandleEvent(e Event) {
	switch e.Kind {
	case EventNoteOn:
		p.NoteOn(e.Note, e.Velocity)
	case EventNoteOff:
		p.NoteOff(e.Note, e.Velocity)
	case EventPitchWheel:
		p.SetPitchWheel(e.Value)
	case EventControlChange:
		switch e.Controller {
		case CCSustainPedal:
			p.SetSustainPedal(e.Value >= 64)
		case CCAllNotesOff:
			p.AllNotesOff(true)
		case CCAllSoundOff:
			p.AllNotesOff(false)
		}
	}
}

// ApplyParams pushes the block's wave type, volume and envelope to every
// voice, idle or not.
func (p *Pool) ApplyParams(prm Params) {
	adsr := prm.ADSR()
	for i := range p.voices {
		v := &p.voices[i]
		v.SetWaveType(prm.WaveType)
		v.SetVolume(prm.Volume)
		v.SetADSRParameters(adsr)
	}
}

// Render adds n samples from start of every sounding voice into out.
func (p *Pool) Render(out [][]float32, start, n int) {
	for w, word := range p.active {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			word &= word - 1
			i := w*64 + b
			p.voices[i].RenderNextBlock(out, start, n)
			p.sync(i)
		}
	}
}

// ActiveCount returns the number of sounding voices.
func (p *Pool) ActiveCount() int {
	n := 0
	for _, word := range p.active {
		n += bits.OnesCount64(word)
	}
	return n
}
