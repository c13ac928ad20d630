// Package score loads timed note and parameter scripts written in Lua and
// slices them into per-block event batches for offline rendering.
//
// A script calls these globals:
//
//	bpm(120)                  -- tempo used by beat()
//	beat(4)                   -- seconds at the current tempo
//	note(t, n, dur [, vel])   -- note-on at t, note-off at t+dur
//	on(t, n [, vel]) / off(t, n)
//	cc(t, controller, value)
//	set(t, name, value)       -- parameter change, e.g. set(1, "laddercutoff", 800)
//	tail(seconds)             -- silence rendered after the last event
//
// Times are in seconds, velocities 0..127.
package score

import (
	"context"
	"fmt"
	"os"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-wavesynth/synth"
)

// DefaultTail is the render time after the last event when the script does
// not call tail().
const DefaultTail = 1.0

// Entry is one timed action.
type Entry struct {
	Time float64

	// Param is set for parameter changes; Event is used otherwise.
	Param string
	Value float32
	Event synth.Event
}

// IsParam reports whether the entry changes a parameter.
func (e Entry) IsParam() bool { return e.Param != "" }

// Score is a time-sorted list of entries.
type Score struct {
	Entries []Entry
	Tail    float64
}

// Duration returns the time of the last entry plus the tail.
func (s *Score) Duration() float64 {
	last := 0.0
	for _, e := range s.Entries {
		last = max(last, e.Time)
	}
	return last + s.Tail
}

type builder struct {
	score *Score
	bpm   float64
}

func (b *builder) add(L *lua.LState, e Entry) {
	if e.Time < 0 {
		L.ArgError(1, "time must be >= 0")
	}
	b.score.Entries = append(b.score.Entries, e)
}

func checkNote(L *lua.LState, n int) int {
	note := L.CheckInt(n)
	if note < 0 || note > 127 {
		L.ArgError(n, "note must be in 0..127")
	}
	return note
}

func checkVelocity(L *lua.LState, n int) float32 {
	v := float64(L.OptNumber(n, 100))
	if v < 0 || v > 127 {
		L.ArgError(n, "velocity must be in 0..127")
	}
	return float32(v / 127)
}

func (b *builder) register(L *lua.LState) {
	L.SetGlobal("bpm", L.NewFunction(func(L *lua.LState) int {
		v := float64(L.CheckNumber(1))
		if v <= 0 {
			L.ArgError(1, "bpm must be > 0")
		}
		b.bpm = v
		return 0
	}))
	L.SetGlobal("beat", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(float64(L.CheckNumber(1)) * 60 / b.bpm))
		return 1
	}))
	L.SetGlobal("note", L.NewFunction(func(L *lua.LState) int {
		t := float64(L.CheckNumber(1))
		note := checkNote(L, 2)
		dur := float64(L.CheckNumber(3))
		if dur <= 0 {
			L.ArgError(3, "duration must be > 0")
		}
		vel := checkVelocity(L, 4)
		b.add(L, Entry{Time: t, Event: synth.NoteOn(note, vel)})
		b.add(L, Entry{Time: t + dur, Event: synth.NoteOff(note)})
		return 0
	}))
	L.SetGlobal("on", L.NewFunction(func(L *lua.LState) int {
		t := float64(L.CheckNumber(1))
		note := checkNote(L, 2)
		b.add(L, Entry{Time: t, Event: synth.NoteOn(note, checkVelocity(L, 3))})
		return 0
	}))
	L.SetGlobal("off", L.NewFunction(func(L *lua.LState) int {
		t := float64(L.CheckNumber(1))
		b.add(L, Entry{Time: t, Event: synth.NoteOff(checkNote(L, 2))})
		return 0
	}))
	L.SetGlobal("cc", L.NewFunction(func(L *lua.LState) int {
		t := float64(L.CheckNumber(1))
		ctl := L.CheckInt(2)
		val := L.CheckInt(3)
		if ctl < 0 || ctl > 127 || val < 0 || val > 127 {
			L.RaiseError("cc controller and value must be in 0..127")
		}
		b.add(L, Entry{Time: t, Event: synth.ControlChange(ctl, val)})
		return 0
	}))
	L.SetGlobal("set", L.NewFunction(func(L *lua.LState) int {
		t := float64(L.CheckNumber(1))
		name := L.CheckString(2)
		if _, _, _, err := synth.ParamRange(name); err != nil {
			L.ArgError(2, err.Error())
		}
		b.add(L, Entry{Time: t, Param: name, Value: float32(L.CheckNumber(3))})
		return 0
	}))
	L.SetGlobal("tail", L.NewFunction(func(L *lua.LState) int {
		v := float64(L.CheckNumber(1))
		if v < 0 {
			L.ArgError(1, "tail must be >= 0")
		}
		b.score.Tail = v
		return 0
	}))
}

func run(ctx context.Context, exec func(L *lua.LState) error) (*Score, error) {
	L := lua.NewState()
	defer L.Close()
	if ctx != nil {
		L.SetContext(ctx)
	}

	b := &builder{score: &Score{Tail: DefaultTail}, bpm: 120}
	b.register(L)
	if err := exec(L); err != nil {
		return nil, err
	}
	sort.SliceStable(b.score.Entries, func(i, j int) bool {
		return b.score.Entries[i].Time < b.score.Entries[j].Time
	})
	return b.score, nil
}

// Parse runs a score script held in memory.
func Parse(ctx context.Context, src string) (*Score, error) {
	s, err := run(ctx, func(L *lua.LState) error { return L.DoString(src) })
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	return s, nil
}

// Load runs the score script at path.
func Load(ctx context.Context, path string) (*Score, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	s, err := run(ctx, func(L *lua.LState) error { return L.DoFile(path) })
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", path, err)
	}
	return s, nil
}

// Single returns a score holding one note, used when no script is given.
func Single(note int, velocity float32, releaseAfter, tail float64) *Score {
	return &Score{
		Entries: []Entry{
			{Time: 0, Event: synth.NoteOn(note, velocity)},
			{Time: releaseAfter, Event: synth.NoteOff(note)},
		},
		Tail: tail,
	}
}
