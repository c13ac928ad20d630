package analysis

import "math"

func makeSine(sr int, freq, amp float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sr)))
	}
	return out
}

func makeDecaySine(sr int, freq float64, seconds float64, tau float64) []float32 {
	n := int(float64(sr) * seconds)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = float32(math.Exp(-t/tau) * math.Sin(2*math.Pi*freq*t))
	}
	return out
}
