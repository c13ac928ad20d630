package main

import (
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-wavesynth/analysis"
)

type reportOptions struct {
	FFTSize int
	Align   bool
}

type timeWindow struct {
	name    string
	startMs float64
	endMs   float64
}

var windows = []timeWindow{
	{"attack (0-20ms)", 0, 20},
	{"early (20-100ms)", 20, 100},
	{"sustain (100-500ms)", 100, 500},
	{"decay (0.5-2s)", 500, 2000},
	{"late (2-4s)", 2000, 4000},
}

func peakIndex(x []float32) int {
	best, idx := -1.0, 0
	for i, v := range x {
		if a := math.Abs(float64(v)); a > best {
			best, idx = a, i
		}
	}
	return idx
}

// alignPeaks trims the leading samples of whichever signal peaks later.
func alignPeaks(in, ref []float32) ([]float32, []float32, int) {
	lag := peakIndex(in) - peakIndex(ref)
	switch {
	case lag > 0:
		in = in[lag:]
	case lag < 0:
		ref = ref[-lag:]
	}
	return in, ref, lag
}

// averageBands averages band levels over hop-spaced frames of x in
// [start,end). Windows shorter than one frame are analyzed zero-padded.
func averageBands(a *analysis.Analyzer, x []float32, start, end int, levels []float64) (avg []float64, frames int) {
	size := a.Size()
	avg = make([]float64, len(analysis.DefaultBands))
	for pos := start; pos+size <= end; pos += size / 2 {
		levels = a.BandLevelsDB(x[pos:pos+size], analysis.DefaultBands, levels)
		for i, v := range levels {
			avg[i] += v
		}
		frames++
	}
	if frames == 0 {
		levels = a.BandLevelsDB(x[start:end], analysis.DefaultBands, levels)
		copy(avg, levels)
		return avg, 1
	}
	for i := range avg {
		avg[i] /= float64(frames)
	}
	return avg, frames
}

func report(w io.Writer, in, ref []float32, sampleRate int, opts reportOptions) error {
	if len(in) == 0 {
		return fmt.Errorf("empty input")
	}
	a, err := analysis.NewAnalyzer(opts.FFTSize, float64(sampleRate))
	if err != nil {
		return err
	}

	inPeak := analysis.Peak(in)
	fmt.Fprintf(w, "Peak: %.4f (%.1f dBFS)  RMS: %.1f dBFS\n", inPeak, analysis.LinToDB(inPeak), analysis.LinToDB(analysis.RMS(in)))
	fmt.Fprintf(w, "Fundamental: %.2f Hz\n", a.PeakFrequency(in[:min(len(in), a.Size())]))

	hop := sampleRate / 100
	if env := analysis.RMSEnvelope(in, 2*hop, hop); env != nil {
		slope := analysis.DecaySlopeDBPerS(env, float64(hop)/float64(sampleRate))
		if !math.IsNaN(slope) {
			fmt.Fprintf(w, "Decay: %.1f dB/s", slope)
			if slope < 0 {
				fmt.Fprintf(w, " (T60 %.2fs)", -60/slope)
			}
			fmt.Fprintln(w)
		}
	}

	if ref != nil && opts.Align {
		var lag int
		in, ref, lag = alignPeaks(in, ref)
		fmt.Fprintf(w, "Aligned: lag %d samples (%.1fms)\n", lag, float64(lag)/float64(sampleRate)*1000)
	}
	fmt.Fprintln(w)

	n := len(in)
	if ref != nil {
		n = min(n, len(ref))
	}
	levels := make([]float64, 0, len(analysis.DefaultBands))
	for _, tw := range windows {
		start := int(tw.startMs / 1000 * float64(sampleRate))
		end := min(int(tw.endMs/1000*float64(sampleRate)), n)
		if start >= end {
			continue
		}
		inAvg, frames := averageBands(a, in, start, end, levels)
		var refAvg []float64
		if ref != nil {
			refAvg, _ = averageBands(a, ref, start, end, levels)
		}

		fmt.Fprintf(w, "--- %s (%d frames) ---\n", tw.name, frames)
		for i, b := range analysis.DefaultBands {
			fmt.Fprintf(w, "  %-9s %7.1fdB %s", b.Name, inAvg[i], analysis.Meter(inAvg[i], -96, 24))
			if refAvg != nil {
				diff := inAvg[i] - refAvg[i]
				marker := ""
				if math.Abs(diff) > 15 {
					marker = " <<<"
				}
				fmt.Fprintf(w, "  ref=%7.1fdB diff=%+.1fdB%s", refAvg[i], diff, marker)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	return nil
}
