package room

import (
	"fmt"
	"math"
	"math/rand"
)

// ln(1000): an envelope exp(-t*t60k/T60) falls 60 dB at T60.
const t60k = 6.907755278982137

// RoomConfig shapes a synthetic room response: a sparse cluster of early
// reflections followed by a two-band noise tail whose low and high bands
// decay at their own T60.
type RoomConfig struct {
	SampleRate int
	Channels   int
	DurationS  float64
	Seed       int64

	PreDelayS   float64
	EarlyCount  int
	EarlyLevel  float64
	LateLevel   float64
	LowT60S     float64
	HighT60S    float64
	StereoWidth float64
	FadeOutS    float64

	NormalizePeak float64
}

// DefaultRoomConfig returns a medium room at 48 kHz.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		SampleRate:    48000,
		Channels:      2,
		DurationS:     1.5,
		Seed:          1,
		PreDelayS:     0.008,
		EarlyCount:    18,
		EarlyLevel:    0.5,
		LateLevel:     0.25,
		LowT60S:       1.2,
		HighT60S:      0.35,
		StereoWidth:   0.6,
		FadeOutS:      0.02,
		NormalizePeak: 0.5,
	}
}

func (c *RoomConfig) Validate() error {
	switch {
	case c.SampleRate < 8000:
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	case c.Channels < 1:
		return fmt.Errorf("channels must be >= 1")
	case c.DurationS <= 0:
		return fmt.Errorf("duration must be > 0")
	case c.PreDelayS < 0 || c.PreDelayS >= c.DurationS:
		return fmt.Errorf("pre-delay must be in [0,duration)")
	case c.EarlyCount < 0:
		return fmt.Errorf("early count must be >= 0")
	case c.EarlyLevel < 0 || c.LateLevel < 0:
		return fmt.Errorf("levels must be >= 0")
	case c.EarlyCount == 0 && c.LateLevel == 0, c.EarlyLevel == 0 && c.LateLevel == 0:
		return fmt.Errorf("room has no energy")
	case c.LowT60S <= 0 || c.HighT60S <= 0:
		return fmt.Errorf("T60 must be > 0")
	case c.StereoWidth < 0 || c.StereoWidth > 1:
		return fmt.Errorf("stereo width must be in [0,1]")
	case c.NormalizePeak <= 0:
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// pan spreads channel ch of n across [-1,1].
func pan(ch, n int) float64 {
	if n < 2 {
		return 0
	}
	return 2*float64(ch)/float64(n-1) - 1
}

// GenerateRoom renders cfg.Channels decorrelated room responses. The result
// is deterministic for a given seed.
func GenerateRoom(cfg RoomConfig) ([][]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sr := float64(cfg.SampleRate)
	n := max(1, int(math.Round(cfg.DurationS*sr)))
	pre := int(cfg.PreDelayS * sr)
	rng := rand.New(rand.NewSource(cfg.Seed))

	bufs := make([][]float64, cfg.Channels)
	for ch := range bufs {
		bufs[ch] = make([]float64, n)
	}

	// Early reflections within 50 ms after the pre-delay.
	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.001 + 0.049*rng.Float64()
		idx := pre + int(t*sr)
		if idx >= n {
			continue
		}
		amp := cfg.EarlyLevel * (0.3 + 0.7*rng.Float64()) * math.Exp(-t*t60k/cfg.HighT60S)
		side := (rng.Float64()*2 - 1) * cfg.StereoWidth
		for ch := range bufs {
			bufs[ch][idx] += amp * (1 + 0.5*side*pan(ch, cfg.Channels))
		}
	}

	// Late tail: one-pole split of per-channel noise into low and high bands.
	if cfg.LateLevel > 0 {
		lp := make([]float64, cfg.Channels)
		for i := pre; i < n; i++ {
			t := float64(i-pre) / sr
			lowEnv := math.Exp(-t * t60k / cfg.LowT60S)
			highEnv := math.Exp(-t * t60k / cfg.HighT60S)
			shared := rng.NormFloat64()
			for ch := range bufs {
				x := (1-cfg.StereoWidth)*shared + cfg.StereoWidth*rng.NormFloat64()
				lp[ch] += 0.05 * (x - lp[ch])
				bufs[ch][i] += cfg.LateLevel * (lowEnv*lp[ch]*3 + highEnv*(x-lp[ch]))
			}
		}
	}

	peak := 0.0
	for _, b := range bufs {
		blockDC(b, 0.995)
		fadeOut(b, cfg.FadeOutS, cfg.SampleRate)
		peak = max(peak, maxAbs(b))
	}
	if peak < 1e-12 {
		return nil, fmt.Errorf("room response is silent")
	}
	s := cfg.NormalizePeak / peak
	out := make([][]float32, cfg.Channels)
	for ch, b := range bufs {
		out[ch] = make([]float32, n)
		for i, v := range b {
			out[ch][i] = float32(v * s)
		}
	}
	return out, nil
}

// SetRoom replaces the IR with a synthetic room response at the
// convolver's sample rate.
func (c *Convolver) SetRoom(cfg RoomConfig) error {
	cfg.SampleRate = c.sampleRate
	cfg.Channels = len(c.ola)
	irs, err := GenerateRoom(cfg)
	if err != nil {
		return err
	}
	return c.SetIR(irs)
}

func blockDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i, v := range x {
		y := v - prevIn + r*prevOut
		prevIn = v
		prevOut = y
		x[i] = y
	}
}

// fadeOut applies a raised-cosine fade over the last fadeS seconds.
func fadeOut(x []float64, fadeS float64, sampleRate int) {
	n := min(len(x), int(fadeS*float64(sampleRate)))
	if n <= 0 {
		return
	}
	start := len(x) - n
	for i := 0; i < n; i++ {
		x[start+i] *= 0.5 + 0.5*math.Cos(math.Pi*float64(i)/float64(n))
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
