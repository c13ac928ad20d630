package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/internal/score"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
)

// paramFlags collects repeated -param name=value overrides.
type paramFlags []paramOverride

type paramOverride struct {
	name  string
	value float32
}

func (p *paramFlags) String() string {
	parts := make([]string, len(*p))
	for i, o := range *p {
		parts[i] = fmt.Sprintf("%s=%g", o.name, o.value)
	}
	return strings.Join(parts, ",")
}

func (p *paramFlags) Set(s string) error {
	name, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want name=value, got %q", s)
	}
	name = strings.TrimSpace(name)
	if _, _, _, err := synth.ParamRange(name); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*p = append(*p, paramOverride{name, float32(v)})
	return nil
}

func main() {
	var params paramFlags

	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	duration := flag.Float64("duration", 2.0, "Total duration in seconds for single-note renders")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(-1), "Stop the tail early once block RMS falls below this dBFS (e.g. -90). Disabled by default")
	scorePath := flag.String("score", "", "Lua score script (overrides -note)")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	flag.Var(&params, "param", "Parameter override name=value (repeatable)")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	blockSize := flag.Int("block-size", 512, "Render block size in frames")
	voices := flag.Int("voices", 0, "Voice count override (0 = preset)")
	channels := flag.Int("channels", 2, "Output channel count")
	irPath := flag.String("ir", "", "Room IR WAV path override (optional)")
	irWet := flag.Float64("ir-wet", -1, "Room IR wet mix override in [0,1]")
	roomT60 := flag.Float64("room-t60", 0, "Synthesize a room with this low-band T60 in seconds when no IR file is set (0 = off)")
	outRate := flag.Int("out-rate", 0, "Resample the output to this rate (0 = render rate)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		var err error
		if p, err = preset.Load(*presetPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if len(params) > 0 {
		store := synth.NewParamStore()
		store.Load(p.Params)
		for _, o := range params {
			if err := store.Set(o.name, o.value); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		p.Params = store.Snapshot()
	}
	if *irPath != "" {
		p.IRWavPath = *irPath
	}
	if *irWet >= 0 {
		p.IRWetMix = float32(min(*irWet, 1))
	}
	if *voices > 0 {
		p.Config.Voices = *voices
	}
	p.Config.Channels = *channels

	var sc *score.Score
	if *scorePath != "" {
		var err error
		if sc, err = score.Load(context.Background(), *scorePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading score: %v\n", err)
			os.Exit(1)
		}
	} else {
		tail := max(*duration-*releaseAfter, 0)
		sc = score.Single(*note, float32(*velocity)/127, *releaseAfter, tail)
	}

	opts := renderOptions{
		SampleRate: *sampleRate,
		BlockSize:  *blockSize,
		OutRate:    *outRate,
		DecayDBFS:  *decayDBFS,
	}
	if *roomT60 > 0 {
		rc := room.DefaultRoomConfig()
		rc.LowT60S = *roomT60
		rc.HighT60S = min(rc.HighT60S, *roomT60)
		rc.DurationS = max(rc.DurationS, 1.25*(*roomT60))
		opts.Room = &rc
	}
	fmt.Printf("Rendering %.2f seconds at %d Hz (%d voices, %s, filter %v)...\n",
		sc.Duration(), *sampleRate, p.Config.Voices, p.Params.WaveType, p.Params.FilterEnabled)

	res, err := render(p, sc, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}
	if err := res.write(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames, peak voices %d)\n", *output, res.frames(), res.PeakVoices)
}
