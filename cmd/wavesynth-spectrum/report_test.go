package main

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func sine(freq float64, sr, n int, decayPerS float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = float32(0.5 * math.Exp(-decayPerS*t) * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

func TestReportFindsFundamentalAndDecay(t *testing.T) {
	const sr = 48000
	x := sine(445.3125, sr, sr, 3)
	var out bytes.Buffer
	if err := report(&out, x, nil, sr, reportOptions{FFTSize: 4096}); err != nil {
		t.Fatalf("report: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Fundamental: 445.", "Decay: -", "--- sustain (100-500ms)", "low-mid"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "late (2-4s)") {
		t.Fatalf("window past the signal end reported:\n%s", s)
	}
}

func TestReportComparesReference(t *testing.T) {
	const sr = 48000
	x := sine(440, sr, sr/2, 0)
	var out bytes.Buffer
	if err := report(&out, x, x, sr, reportOptions{FFTSize: 2048, Align: true}); err != nil {
		t.Fatalf("report: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "lag 0 samples") || !strings.Contains(s, "diff=+0.0dB") {
		t.Fatalf("self-comparison not neutral:\n%s", s)
	}
	if strings.Contains(s, "<<<") {
		t.Fatalf("self-comparison flagged a band:\n%s", s)
	}
}

func TestAlignPeaks(t *testing.T) {
	in := []float32{0, 0, 0, 1, 0}
	ref := []float32{0, 1, 0, 0, 0}
	a, b, lag := alignPeaks(in, ref)
	if lag != 2 || len(a) != 3 || a[0] != 1 || b[1] != 1 {
		t.Fatalf("lag=%d a=%v b=%v", lag, a, b)
	}
}

func TestReportRejectsEmpty(t *testing.T) {
	if err := report(&bytes.Buffer{}, nil, nil, 48000, reportOptions{FFTSize: 1024}); err == nil {
		t.Fatalf("expected error")
	}
}
