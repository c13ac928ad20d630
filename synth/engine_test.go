package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

func TestEngineSineNoteScenario(t *testing.T) {
	const (
		sr     = 44100.0
		block  = 512
		blocks = 24
	)
	e := NewEngine(DefaultConfig())
	e.Prepare(sr, block)

	p := DefaultParams()
	p.Attack, p.Decay, p.Sustain, p.Release = 0.1, 0.1, 1.0, 0.1
	p.Volume = 1
	p.WaveType = dsp.WaveSine
	p.FilterEnabled = false

	out := make([]float32, 0, block*blocks)
	buf := makeBuffer(2, block)
	for b := 0; b < blocks; b++ {
		var events []Event
		if b == 0 {
			events = []Event{NoteOn(69, 1)}
		}
		e.ProcessBlock(buf, events, p)
		if maxAbsDiff(buf[0], buf[1]) != 0 {
			t.Fatalf("block %d: channels differ", b)
		}
		out = append(out, buf[0]...)
	}

	if out[0] != 0 {
		t.Fatalf("first sample=%f want exactly 0", out[0])
	}

	// Reference chain built from the same primitives.
	osc := dsp.NewOscillator(e.Bank().Table(dsp.WaveSine))
	osc.SetFrequency(440, sr)
	var env dsp.ADSR
	env.SetSampleRate(sr)
	env.SetParameters(p.ADSR())
	env.NoteOn()
	for i, got := range out {
		want := osc.NextSample() * env.NextSample()
		if d := math.Abs(float64(got - want)); d > 1e-6 {
			t.Fatalf("sample %d: got %f want %f", i, got, want)
		}
	}

	// Attack ramp bounds the first 0.1 s.
	for i := 0; i < 4410; i++ {
		ramp := float64(i+1) / 4410
		if math.Abs(float64(out[i])) > ramp+1e-3 {
			t.Fatalf("sample %d: |%f| exceeds attack ramp %f", i, out[i], ramp)
		}
	}

	// Past the attack the output is the plain sine.
	for i := 5000; i < len(out); i++ {
		want := math.Sin(2 * math.Pi * 440 * float64(i) / sr)
		if d := math.Abs(float64(out[i]) - want); d > 0.01 {
			t.Fatalf("sample %d: got %f want %f", i, out[i], want)
		}
	}
}

func TestEngineScopeMirrorsFirstChannel(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Prepare(48000, 256)
	buf := makeBuffer(2, 200)
	e.ProcessBlock(buf, []Event{NoteOn(60, 1)}, shortParams())

	snap := e.Scope().Snapshot(nil)
	if len(snap) != 200 {
		t.Fatalf("scope length=%d want 200", len(snap))
	}
	if d := maxAbsDiff(snap, buf[0]); d != 0 {
		t.Fatalf("scope differs from output by %g", d)
	}
	if e.Scope().Blocks() != 1 {
		t.Fatalf("blocks=%d want 1", e.Scope().Blocks())
	}
}

func TestEngineFilterDarkensSaw(t *testing.T) {
	render := func(enabled bool) float64 {
		e := NewEngine(DefaultConfig())
		e.Prepare(48000, 512)
		p := shortParams()
		p.WaveType = dsp.WaveSaw
		p.FilterEnabled = enabled
		p.FilterMode = dsp.LPF24
		p.Cutoff = 300
		buf := makeBuffer(1, 512)
		var last float64
		for b := 0; b < 16; b++ {
			var events []Event
			if b == 0 {
				events = []Event{NoteOn(76, 1)}
			}
			e.ProcessBlock(buf, events, p)
			last = windowRMS(buf[0])
		}
		return last
	}
	dry := render(false)
	wet := render(true)
	if dry < 0.1 {
		t.Fatalf("unfiltered saw too quiet: %f", dry)
	}
	if wet > dry*0.5 {
		t.Fatalf("low-pass did not attenuate: dry=%f wet=%f", dry, wet)
	}
}

func TestEngineClearsOnlyNonInputChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputChannels = 1
	e := NewEngine(cfg)
	e.Prepare(48000, 64)

	buf := makeBuffer(2, 64)
	for ch := range buf {
		for i := range buf[ch] {
			buf[ch][i] = 0.5
		}
	}
	e.ProcessBlock(buf, nil, DefaultParams())
	for i := range buf[0] {
		if buf[0][i] != 0.5 {
			t.Fatalf("input channel modified at %d: %f", i, buf[0][i])
		}
		if buf[1][i] != 0 {
			t.Fatalf("output channel not cleared at %d: %f", i, buf[1][i])
		}
	}
}

func TestEngineVoicesFreeAfterRelease(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Prepare(48000, 512)
	p := shortParams()
	buf := makeBuffer(2, 512)
	e.ProcessBlock(buf, []Event{NoteOn(60, 1), NoteOn(64, 1), NoteOn(67, 1)}, p)
	if e.ActiveVoices() != 3 {
		t.Fatalf("active=%d want 3", e.ActiveVoices())
	}
	e.ProcessBlock(buf, []Event{NoteOff(60), NoteOff(64), NoteOff(67)}, p)
	for b := 0; b < 4; b++ {
		e.ProcessBlock(buf, nil, p)
	}
	if e.ActiveVoices() != 0 {
		t.Fatalf("active=%d want 0 after release", e.ActiveVoices())
	}
	if windowRMS(buf[0]) != 0 {
		t.Fatalf("expected silence once all voices finished")
	}
}

func TestEngineIgnoresOutOfRangeNote(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Prepare(48000, 512)
	buf := makeBuffer(2, 512)
	e.ProcessBlock(buf, []Event{NoteOn(600, 1)}, shortParams())
	if e.ActiveVoices() != 0 {
		t.Fatalf("active=%d want 0", e.ActiveVoices())
	}
	if windowRMS(buf[0]) != 0 {
		t.Fatalf("expected silence")
	}
}

func TestEnginePreconditionsPanic(t *testing.T) {
	cases := []struct {
		name string
		run  func(e *Engine)
	}{
		{"before prepare", func(e *Engine) {
			e.ProcessBlock(makeBuffer(2, 16), nil, DefaultParams())
		}},
		{"too many channels", func(e *Engine) {
			e.Prepare(48000, 64)
			e.ProcessBlock(makeBuffer(3, 16), nil, DefaultParams())
		}},
		{"block too long", func(e *Engine) {
			e.Prepare(48000, 64)
			e.ProcessBlock(makeBuffer(2, 65), nil, DefaultParams())
		}},
		{"bad sample rate", func(e *Engine) {
			e.Prepare(0, 64)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tc.run(NewEngine(DefaultConfig()))
		})
	}
}

func TestEngineProcessBlockDoesNotAllocate(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.Prepare(48000, 256)
	buf := makeBuffer(2, 256)
	p := shortParams()
	p.FilterEnabled = true
	events := []Event{NoteOn(60, 1), NoteOn(67, 1)}
	e.ProcessBlock(buf, events, p)

	allocs := testing.AllocsPerRun(20, func() {
		e.ProcessBlock(buf, nil, p)
	})
	if allocs != 0 {
		t.Fatalf("ProcessBlock allocated %v times per block", allocs)
	}
}
