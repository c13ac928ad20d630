package analysis

import (
	"math"
	"testing"
)

func TestRMSAndPeakOfSine(t *testing.T) {
	x := makeSine(48000, 1000, 0.8, 48000)
	if got := RMS(x); math.Abs(got-0.8/math.Sqrt2) > 1e-3 {
		t.Fatalf("rms=%f want %f", got, 0.8/math.Sqrt2)
	}
	if got := Peak(x); math.Abs(got-0.8) > 1e-3 {
		t.Fatalf("peak=%f want 0.8", got)
	}
	if RMS(nil) != 0 {
		t.Fatalf("rms of empty input should be 0")
	}
}

func TestLinToDB(t *testing.T) {
	if got := LinToDB(1); got != 0 {
		t.Fatalf("LinToDB(1)=%f", got)
	}
	if got := LinToDB(0.1); math.Abs(got+20) > 1e-9 {
		t.Fatalf("LinToDB(0.1)=%f", got)
	}
	if got := LinToDB(0); got != FloorDB {
		t.Fatalf("LinToDB(0)=%f want floor", got)
	}
}

func TestDecaySlopeMatchesExponential(t *testing.T) {
	const sr = 48000
	tau := 0.25
	x := makeDecaySine(sr, 440, 2, tau)
	env := RMSEnvelope(x, 256, 128)
	got := DecaySlopeDBPerS(env, 128.0/sr)
	// exp(-t/tau) falls 20*log10(e)/tau dB per second.
	want := -20 * math.Log10(math.E) / tau
	if math.Abs(got-want) > 2 {
		t.Fatalf("slope=%f want %f", got, want)
	}
	if !math.IsNaN(DecaySlopeDBPerS(env[:4], 128.0/sr)) {
		t.Fatalf("short envelope should give NaN")
	}
}

func TestMeter(t *testing.T) {
	cases := []struct {
		db   float64
		want string
	}{
		{0, "##########"},
		{-30, "#####....."},
		{-60, ".........."},
		{-100, ".........."},
	}
	for _, tc := range cases {
		if got := Meter(tc.db, -60, 10); got != tc.want {
			t.Fatalf("Meter(%f)=%q want %q", tc.db, got, tc.want)
		}
	}
}
