package wavio

import (
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// Resample converts in from fromRate to toRate. Equal rates return in.
func Resample(in []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// Resample32 is Resample for float32 channel data.
func Resample32(in []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	x := make([]float64, len(in))
	for i, v := range in {
		x[i] = float64(v)
	}
	y, err := Resample(x, fromRate, toRate)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(y))
	for i, v := range y {
		out[i] = float32(v)
	}
	return out, nil
}

// ResampleInterleaved converts every channel of interleaved audio.
func ResampleInterleaved(interleaved []float32, channels, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return interleaved, nil
	}
	chs := Deinterleave(interleaved, channels)
	for c := range chs {
		r, err := Resample32(chs[c], fromRate, toRate)
		if err != nil {
			return nil, err
		}
		chs[c] = r
	}
	// Resamplers may disagree by a sample at the edges.
	n := len(chs[0])
	for _, ch := range chs[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	for c := range chs {
		chs[c] = chs[c][:n]
	}
	return Interleave(chs), nil
}
