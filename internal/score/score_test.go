package score

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-wavesynth/synth"
)

func TestParseBuildsSortedEntries(t *testing.T) {
	s, err := Parse(context.Background(), `
bpm(120)
note(beat(2), 64, 0.5)
note(0, 60, 1, 127)
set(0.25, "laddercutoff", 800)
cc(2, 64, 127)
tail(0.5)
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s.Entries) != 6 {
		t.Fatalf("entries=%d want 6", len(s.Entries))
	}
	for i := 1; i < len(s.Entries); i++ {
		if s.Entries[i].Time < s.Entries[i-1].Time {
			t.Fatalf("entries not sorted at %d: %+v", i, s.Entries)
		}
	}
	first := s.Entries[0]
	if first.Event.Kind != synth.EventNoteOn || first.Event.Note != 60 || first.Event.Velocity != 1 {
		t.Fatalf("first entry=%+v", first)
	}
	if p := s.Entries[1]; !p.IsParam() || p.Param != synth.ParamLadderCutoff || p.Value != 800 {
		t.Fatalf("param entry=%+v", p)
	}
	if s.Tail != 0.5 {
		t.Fatalf("tail=%f", s.Tail)
	}
	if got := s.Duration(); got != 2.5 {
		t.Fatalf("duration=%f want 2.5", got)
	}
}

func TestParseEqualTimesKeepScriptOrder(t *testing.T) {
	s, err := Parse(context.Background(), `note(0, 60, 1) note(1, 60, 1)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// The off of the first note stays ahead of the retrigger.
	if s.Entries[1].Event.Kind != synth.EventNoteOff || s.Entries[2].Event.Kind != synth.EventNoteOn {
		t.Fatalf("order=%+v", s.Entries)
	}
}

func TestParseRejectsBadScripts(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", `note(0, 60`},
		{"unknown param", `set(0, "pan", 1)`},
		{"note range", `on(0, 200)`},
		{"velocity range", `on(0, 60, 300)`},
		{"negative time", `off(-1, 60)`},
		{"zero duration", `note(0, 60, 0)`},
		{"cc range", `cc(0, 64, 500)`},
		{"bad tempo", `bpm(0)`},
		{"runtime error", `error("boom")`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(context.Background(), tc.src); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := Parse(ctx, `while true do end`); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.lua")
	if err := os.WriteFile(path, []byte(`on(0, 69) off(1, 69) tail(0)`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Entries) != 2 || s.Duration() != 1 {
		t.Fatalf("score=%+v", s)
	}
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCursorSlicesBlocks(t *testing.T) {
	s, err := Parse(context.Background(), `
on(0, 60)
on(0.1, 64)
set(0.1, "volume", 0.25)
off(0.2, 60)
tail(0)
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	const sr, block = 48000, 512
	store := synth.NewParamStore()
	c := s.Cursor(sr)
	if c.TotalSamples() != 9600 {
		t.Fatalf("total=%d want 9600", c.TotalSamples())
	}

	var got []struct {
		block int
		ev    synth.Event
	}
	buf := make([]synth.Event, 0, 8)
	for n := 0; !c.Done(); n++ {
		buf = c.Next(block, buf[:0], store)
		for _, e := range buf {
			got = append(got, struct {
				block int
				ev    synth.Event
			}{n, e})
		}
		if n > 100 {
			t.Fatalf("cursor never finished")
		}
	}

	// 4800/512 = 9.375, 9600/512 = 18.75
	want := []struct {
		block int
		kind  synth.EventKind
		note  int
	}{
		{0, synth.EventNoteOn, 60},
		{9, synth.EventNoteOn, 64},
		{18, synth.EventNoteOff, 60},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].block != w.block || got[i].ev.Kind != w.kind || got[i].ev.Note != w.note {
			t.Fatalf("event %d: block=%d %+v want %+v", i, got[i].block, got[i].ev, w)
		}
	}
	if v, _ := store.Get(synth.ParamVolume); v != 0.25 {
		t.Fatalf("volume=%f want 0.25", v)
	}
	if c.Position() < c.TotalSamples() {
		t.Fatalf("position %d short of total %d", c.Position(), c.TotalSamples())
	}
}

func TestSingle(t *testing.T) {
	s := Single(69, 0.5, 0.12, 1)
	c := s.Cursor(1000)
	ev := c.Next(100, nil, nil)
	if len(ev) != 1 || ev[0].Kind != synth.EventNoteOn || ev[0].Velocity != 0.5 {
		t.Fatalf("first block=%+v", ev)
	}
	ev = c.Next(100, nil, nil)
	if len(ev) != 1 || ev[0].Kind != synth.EventNoteOff {
		t.Fatalf("second block=%+v", ev)
	}
	if math.Abs(s.Duration()-1.12) > 1e-9 {
		t.Fatalf("duration=%f", s.Duration())
	}
}
