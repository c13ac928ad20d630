package room

import (
	"math"
	"testing"
)

func TestConvolverMatchesDirectConvolution(t *testing.T) {
	c, err := New(48000, 2, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	leftIR := []float32{1.0, 0.3, -0.2, 0.1, 0.05}
	rightIR := []float32{0.8, -0.1, 0.05}
	if err := c.SetIR([][]float32{leftIR, rightIR}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}

	input := make([]float32, 1024)
	for i := range input {
		input[i] = float32(math.Sin(float64(i)*0.07)) * 0.8
	}
	left := append([]float32(nil), input...)
	right := append([]float32(nil), input...)
	// Two calls to check state carries over.
	if err := c.Process([][]float32{left[:512], right[:512]}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := c.Process([][]float32{left[512:], right[512:]}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if d := maxAbsDiff(left, directConvolve(input, leftIR)[:len(input)]); d > 1e-4 {
		t.Fatalf("left channel mismatch: max diff=%g", d)
	}
	if d := maxAbsDiff(right, directConvolve(input, rightIR)[:len(input)]); d > 1e-4 {
		t.Fatalf("right channel mismatch: max diff=%g", d)
	}
}

func TestConvolverMonoIRFeedsAllChannels(t *testing.T) {
	c, err := New(48000, 2, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SetIR([][]float32{{1, 0.4, 0.2, 0.1}}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}
	l := make([]float32, 64)
	r := make([]float32, 64)
	l[0], r[0] = 1, 1
	if err := c.Process([][]float32{l, r}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if d := maxAbsDiff(l, r); d > 1e-6 {
		t.Fatalf("expected dual-mono output, diff=%g", d)
	}
	if math.Abs(float64(l[1]-0.4)) > 1e-5 {
		t.Fatalf("impulse response not reproduced: %v", l[:4])
	}
}

func TestConvolverMix(t *testing.T) {
	c, err := New(48000, 1, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SetIR([][]float32{{0, 1}}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}
	c.SetMix(0.5, 1)
	x := make([]float32, 16)
	x[0] = 1
	if err := c.Process([][]float32{x}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if math.Abs(float64(x[0]-1)) > 1e-5 || math.Abs(float64(x[1]-0.5)) > 1e-5 {
		t.Fatalf("mix wrong: %v", x[:3])
	}
}

func TestConvolverResetClearsTail(t *testing.T) {
	c, err := New(48000, 1, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SetIR([][]float32{{1, 0.5, 0.25, 0.125, 0.06}}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}
	impulse := make([]float32, 16)
	impulse[0] = 1
	_ = c.Process([][]float32{impulse})
	c.Reset()
	after := make([]float32, 16)
	_ = c.Process([][]float32{after})
	for i, v := range after {
		if math.Abs(float64(v)) > 1e-7 {
			t.Fatalf("tail survived reset at %d: %g", i, v)
		}
	}
}

func TestConvolverLoadsAndResamplesIR(t *testing.T) {
	path := writeTempIRWav(t, [][]float32{{0.9, 0.2, 0.1, 0}, {0.5, 0.1, 0.05, 0}}, 96000)
	c, err := New(48000, 2, 128)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.LoadIR(path); err != nil {
		t.Fatalf("LoadIR: %v", err)
	}
	if c.IRLength() < 1 {
		t.Fatalf("no IR installed")
	}
	l := make([]float32, 256)
	r := make([]float32, 256)
	l[0], r[0] = 1, 1
	if err := c.Process([][]float32{l, r}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	var peakL, peakR float64
	for i := range l {
		peakL = math.Max(peakL, math.Abs(float64(l[i])))
		peakR = math.Max(peakR, math.Abs(float64(r[i])))
	}
	if peakL < 1e-7 || peakR < 1e-7 {
		t.Fatalf("weak response after load/resample: L=%g R=%g", peakL, peakR)
	}
}

func TestNewRejectsZeroChannels(t *testing.T) {
	if _, err := New(48000, 0, 64); err == nil {
		t.Fatalf("expected error")
	}
}
