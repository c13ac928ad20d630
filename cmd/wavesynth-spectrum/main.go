package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-wavesynth/internal/wavio"
)

func main() {
	inPath := flag.String("input", "output.wav", "WAV file to analyze")
	refPath := flag.String("reference", "", "Reference WAV to compare against (optional)")
	fftSize := flag.Int("fft-size", 4096, "FFT size")
	align := flag.Bool("align", true, "Align reference and input on their peak sample")
	flag.Parse()

	in, sr, err := readMono(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Input: %d frames @ %d Hz (%.2fs)\n", len(in), sr, float64(len(in))/float64(sr))

	var ref []float32
	if *refPath != "" {
		var refRate int
		ref, refRate, err = readMono(*refPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reference: %v\n", err)
			os.Exit(1)
		}
		if refRate != sr {
			if ref, err = wavio.Resample32(ref, refRate, sr); err != nil {
				fmt.Fprintf(os.Stderr, "reference resample: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Printf("Reference: %d frames @ %d Hz\n", len(ref), refRate)
	}
	fmt.Println()

	opts := reportOptions{FFTSize: *fftSize, Align: *align}
	if err := report(os.Stdout, in, ref, sr, opts); err != nil {
		fmt.Fprintf(os.Stderr, "analysis: %v\n", err)
		os.Exit(1)
	}
}

// readMono reads a WAV file and averages its channels.
func readMono(path string) ([]float32, int, error) {
	chs, sr, err := wavio.ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float32, len(chs[0]))
	for _, ch := range chs {
		for i, v := range ch {
			out[i] += v / float32(len(chs))
		}
	}
	return out, sr, nil
}
