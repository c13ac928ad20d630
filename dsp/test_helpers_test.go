package dsp

import "math"

func sineBlock(freq, sampleRate float64, n int, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// ladderRMS runs a sine through l in 256-sample blocks and measures the
// second half of the output.
func ladderRMS(l *Ladder, freq, sampleRate float64, n int) float64 {
	in := sineBlock(freq, sampleRate, n, 0.1)
	const block = 256
	for start := 0; start < n; start += block {
		end := start + block
		if end > n {
			end = n
		}
		l.Process([][]float32{in[start:end]})
	}
	return windowRMS(in[n/2:])
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
