package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/internal/score"
	"github.com/cwbudde/algo-wavesynth/internal/wavio"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
)

type renderOptions struct {
	SampleRate int
	BlockSize  int
	OutRate    int
	// DecayDBFS ends the render early once the score is past its last event
	// and a block's RMS drops below it. -Inf disables.
	DecayDBFS float64
	// Room is used when the preset names no IR file.
	Room *room.RoomConfig
}

type renderResult struct {
	Interleaved []float32
	Channels    int
	SampleRate  int
	PeakVoices  int
}

func (r *renderResult) frames() int {
	if r.Channels == 0 {
		return 0
	}
	return len(r.Interleaved) / r.Channels
}

func (r *renderResult) write(path string) error {
	return wavio.WriteWAV(path, r.Interleaved, r.SampleRate, r.Channels)
}

// lastEventSample returns the sample index of the score's last entry.
func lastEventSample(sc *score.Score, sampleRate int) int64 {
	last := 0.0
	for _, e := range sc.Entries {
		last = max(last, e.Time)
	}
	return int64(math.Round(last * float64(sampleRate)))
}

func render(p *preset.Preset, sc *score.Score, opts renderOptions) (*renderResult, error) {
	if opts.SampleRate <= 0 || opts.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d or block size %d", opts.SampleRate, opts.BlockSize)
	}
	cfg := p.Config
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", cfg.Channels)
	}

	eng := synth.NewEngine(cfg)
	eng.Prepare(float64(opts.SampleRate), opts.BlockSize)

	var conv *room.Convolver
	if p.IRWavPath != "" || opts.Room != nil {
		var err error
		conv, err = room.New(opts.SampleRate, cfg.Channels, room.DefaultPartSize)
		if err != nil {
			return nil, err
		}
		// Only the final block may be shorter than a partition.
		if opts.BlockSize%conv.PartSize() != 0 {
			return nil, fmt.Errorf("block size %d is not a multiple of the room partition size %d", opts.BlockSize, conv.PartSize())
		}
		if p.IRWavPath != "" {
			err = conv.LoadIR(p.IRWavPath)
		} else {
			err = conv.SetRoom(*opts.Room)
		}
		if err != nil {
			return nil, fmt.Errorf("room: %w", err)
		}
		conv.SetMix(p.IRWetMix, 1-p.IRWetMix)
	}

	store := synth.NewParamStore()
	store.Load(p.Params)
	cur := sc.Cursor(float64(opts.SampleRate))
	lastEvent := lastEventSample(sc, opts.SampleRate)
	threshold := math.Pow(10, opts.DecayDBFS/20)

	buf := make([][]float32, cfg.Channels)
	for ch := range buf {
		buf[ch] = make([]float32, opts.BlockSize)
	}
	events := make([]synth.Event, 0, 64)
	res := &renderResult{Channels: cfg.Channels, SampleRate: opts.SampleRate}
	out := make([]float32, 0, int(cur.TotalSamples())*cfg.Channels)

	for !cur.Done() {
		n := int(min(int64(opts.BlockSize), max(cur.TotalSamples()-cur.Position(), 1)))
		block := buf
		if n < opts.BlockSize {
			block = make([][]float32, cfg.Channels)
			for ch := range block {
				block[ch] = buf[ch][:n]
			}
		}

		events = cur.Next(n, events[:0], store)
		eng.ProcessBlock(block, events, store.Snapshot())
		res.PeakVoices = max(res.PeakVoices, eng.ActiveVoices())
		if conv != nil {
			if err := conv.Process(block); err != nil {
				return nil, err
			}
		}
		out = append(out, wavio.Interleave(block)...)

		if cur.Position() > lastEvent && eng.ActiveVoices() == 0 && analysis.RMS(block[0]) < threshold {
			break
		}
	}

	res.Interleaved = out
	if opts.OutRate > 0 && opts.OutRate != opts.SampleRate {
		r, err := wavio.ResampleInterleaved(out, cfg.Channels, opts.SampleRate, opts.OutRate)
		if err != nil {
			return nil, fmt.Errorf("resample: %w", err)
		}
		res.Interleaved = r
		res.SampleRate = opts.OutRate
	}
	return res, nil
}
