package main

import (
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/synth"
)

// statusLine formats one scope line: level meter, detected pitch, voice
// count and pedal state.
type statusLine struct {
	scope    func() *synth.Scope
	analyzer *analysis.Analyzer
	samples  []float32
}

func newStatusLine(scope func() *synth.Scope, sampleRate float64, size int) (*statusLine, error) {
	a, err := analysis.NewAnalyzer(size, sampleRate)
	if err != nil {
		return nil, err
	}
	return &statusLine{scope: scope, analyzer: a, samples: make([]float32, 0, size)}, nil
}

func (s *statusLine) write(w io.Writer, voices int, pedal bool, p synth.Params) {
	s.samples = s.scope().Snapshot(s.samples)
	db := analysis.LinToDB(analysis.RMS(s.samples))
	pitch := 0.0
	if len(s.samples) > 0 {
		pitch = s.analyzer.PeakFrequency(s.samples)
	}
	filter := "off"
	if p.FilterEnabled {
		filter = fmt.Sprintf("%s %.0fHz", p.FilterMode, p.Cutoff)
	}
	sustain := "up"
	if pedal {
		sustain = "down"
	}
	fmt.Fprintf(w, "\r%s %6.1fdB %7.1fHz voices=%3d pedal=%-4s wave=%-8s filter=%-14s",
		analysis.Meter(db, -60, 30), math.Max(db, -99.9), pitch, voices, sustain, p.WaveType, filter)
}
