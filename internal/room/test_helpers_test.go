package room

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavesynth/internal/wavio"
)

func directConvolve(x []float32, h []float32) []float32 {
	y := make([]float32, len(x)+len(h)-1)
	for i := 0; i < len(x); i++ {
		for j := 0; j < len(h); j++ {
			y[i+j] += x[i] * h[j]
		}
	}
	return y
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

func writeTempIRWav(t *testing.T, chs [][]float32, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ir.wav")
	if err := wavio.WriteWAV(path, wavio.Interleave(chs), sampleRate, len(chs)); err != nil {
		t.Fatalf("write ir: %v", err)
	}
	return path
}
