package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/internal/wavio"
)

func main() {
	cfg := room.DefaultRoomConfig()

	output := flag.String("output", "room.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.IntVar(&cfg.Channels, "channels", cfg.Channels, "Output channel count")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.PreDelayS, "pre-delay", cfg.PreDelayS, "Pre-delay in seconds")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.EarlyLevel, "early-level", cfg.EarlyLevel, "Early reflection level")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.LowT60S, "low-t60", cfg.LowT60S, "Low-band T60 (s)")
	flag.Float64Var(&cfg.HighT60S, "high-t60", cfg.HighT60S, "High-band T60 (s)")
	flag.Float64Var(&cfg.StereoWidth, "width", cfg.StereoWidth, "Channel decorrelation in [0,1]")
	flag.Float64Var(&cfg.FadeOutS, "fade", cfg.FadeOutS, "Fade-out length (s)")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	irs, err := room.GenerateRoom(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "room error: %v\n", err)
		os.Exit(1)
	}
	if err := wavio.WriteWAV(*output, wavio.Interleave(irs), cfg.SampleRate, cfg.Channels); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Channels: %d, Duration: %.3f s, Samples: %d\n",
		cfg.SampleRate, cfg.Channels, cfg.DurationS, len(irs[0]))
	for ch, ir := range irs {
		hop := cfg.SampleRate / 100
		slope := analysis.DecaySlopeDBPerS(analysis.RMSEnvelope(ir, 2*hop, hop), float64(hop)/float64(cfg.SampleRate))
		fmt.Printf("ch%d: peak %.1f dBFS, RMS %.1f dBFS, decay %.1f dB/s\n",
			ch, analysis.LinToDB(analysis.Peak(ir)), analysis.LinToDB(analysis.RMS(ir)), slope)
	}
}
