package main

import (
	"time"

	"github.com/cwbudde/algo-wavesynth/dsp"
	"github.com/cwbudde/algo-wavesynth/synth"
)

// Two-row piano layout starting at C of the current octave.
var keyNotes = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13, 'l': 14,
}

const keyHelp = "a-l play, z/x octave, 1-4 wave, 0 filter, [/] cutoff, m mode, space panic, q quit"

// keyboard turns raw terminal bytes into events and parameter changes.
// Terminals report no key release, so each note is closed by a gate timer.
type keyboard struct {
	send   func(synth.Event)
	store  *synth.ParamStore
	octave int
	gate   time.Duration

	afterFunc func(time.Duration, func())
}

func newKeyboard(send func(synth.Event), store *synth.ParamStore, gate time.Duration) *keyboard {
	return &keyboard{
		send:      send,
		store:     store,
		octave:    4,
		gate:      gate,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// handle processes one key and reports whether the player should quit.
func (k *keyboard) handle(b byte) (quit bool) {
	if off, ok := keyNotes[b]; ok {
		note := (k.octave+1)*12 + off
		if note > 127 {
			return false
		}
		k.send(synth.NoteOn(note, 1))
		k.afterFunc(k.gate, func() { k.send(synth.NoteOff(note)) })
		return false
	}

	switch b {
	case 'q', 3:
		return true
	case 'z':
		k.octave = max(0, k.octave-1)
	case 'x':
		k.octave = min(9, k.octave+1)
	case '1', '2', '3', '4':
		_ = k.store.Set(synth.ParamWaveType, float32(b-'1'))
	case '0':
		v, _ := k.store.Get(synth.ParamLadderEnabled)
		_ = k.store.Set(synth.ParamLadderEnabled, 1-v)
	case '[', ']':
		v, _ := k.store.Get(synth.ParamLadderCutoff)
		if b == '[' {
			v /= 1.25
		} else {
			v *= 1.25
		}
		_ = k.store.Set(synth.ParamLadderCutoff, v)
	case 'm':
		v, _ := k.store.Get(synth.ParamLadderMode)
		next := (dsp.LadderMode(v) + 1) % (dsp.BPF24 + 1)
		_ = k.store.Set(synth.ParamLadderMode, float32(next))
	case ' ':
		k.send(synth.ControlChange(synth.CCAllSoundOff, 0))
	}
	return false
}
