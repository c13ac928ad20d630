package dsp

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-approx"
)

// LadderMode selects the output tap combination of the ladder.
type LadderMode int

const (
	LPF12 LadderMode = iota
	HPF12
	BPF12
	LPF24
	HPF24
	BPF24

	numLadderModes
)

var ladderModeNames = [numLadderModes]string{"LPF12", "HPF12", "BPF12", "LPF24", "HPF24", "BPF24"}

func (m LadderMode) String() string {
	if m < 0 || m >= numLadderModes {
		return fmt.Sprintf("LadderMode(%d)", int(m))
	}
	return ladderModeNames[m]
}

// Valid reports whether m is one of the six ladder modes.
func (m LadderMode) Valid() bool {
	return m >= 0 && m < numLadderModes
}

// ParseLadderMode accepts a mode name such as "LPF24" (case-insensitive) or its index.
func ParseLadderMode(s string) (LadderMode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range ladderModeNames {
		if s == name || s == fmt.Sprint(i) {
			return LadderMode(i), nil
		}
	}
	return LPF12, fmt.Errorf("unknown ladder mode %q", s)
}

// Tap weights on the five ladder nodes (input, four pole outputs).
var ladderTaps = [numLadderModes]struct {
	mix  [5]float32
	comp float32
}{
	LPF12: {[5]float32{0, 0, 1, 0, 0}, 0.5},
	HPF12: {[5]float32{1, -2, 1, 0, 0}, 0},
	BPF12: {[5]float32{0, 0, -1, 1, 0}, 0.5},
	LPF24: {[5]float32{0, 0, 0, 0, 1}, 0.5},
	HPF24: {[5]float32{1, -4, 6, -4, 1}, 0},
	BPF24: {[5]float32{0, 0, 1, -2, 1}, 0.5},
}

const (
	ladderOutputGain = 1.2
	ladderRampTime   = 0.05

	satPoints = 128
	satRange  = 5.0
)

// satLUT is tanh sampled on [-satRange, satRange]; inputs outside are clamped.
type satLUT struct {
	data  [satPoints + 1]float32
	scale float32
}

func newSatLUT() *satLUT {
	l := &satLUT{scale: float32(satPoints-1) / (2 * satRange)}
	for i := 0; i < satPoints; i++ {
		x := -satRange + 2*satRange*float64(i)/float64(satPoints-1)
		l.data[i] = float32(math.Tanh(x))
	}
	l.data[satPoints] = l.data[satPoints-1]
	return l
}

func (l *satLUT) at(x float32) float32 {
	pos := (clampf(x, -satRange, satRange) + satRange) * l.scale
	i := int(pos)
	return lerp(l.data[i], l.data[i+1], pos-float32(i))
}

// Ladder is a nonlinear four-stage transistor-ladder filter with 12 and
// 24 dB/oct low, high and band pass outputs. Cutoff and resonance changes
// are ramped over 50 ms. Each channel keeps its own state.
type Ladder struct {
	sampleRate float64
	mode       LadderMode
	mix        [5]float32
	comp       float32

	cutoffHz  float32
	resonance float32
	drive     float32
	gain      float32
	drive2    float32
	gain2     float32

	cutoffScale     float32
	cutoffTransform smoother
	scaledRes       smoother

	state [][5]float32
	sat   *satLUT
}

// NewLadder creates a ladder prepared for sampleRate and channels, in
// LPF12 mode at 200 Hz with resonance 0 and unity drive.
func NewLadder(sampleRate float64, channels int) *Ladder {
	l := &Ladder{
		sat:      newSatLUT(),
		cutoffHz: 200,
	}
	l.applyMode(LPF12)
	l.SetDrive(1)
	l.SetResonance(0)
	l.Prepare(sampleRate, channels)
	return l
}

// Prepare sizes per-channel state and retunes for sampleRate. Not real-time safe.
func (l *Ladder) Prepare(sampleRate float64, channels int) {
	if sampleRate <= 0 {
		panic("dsp: ladder sample rate must be positive")
	}
	if channels < 1 {
		channels = 1
	}
	l.sampleRate = sampleRate
	l.cutoffScale = float32(-2 * math.Pi / sampleRate)
	l.cutoffTransform.reset(sampleRate, ladderRampTime)
	l.scaledRes.reset(sampleRate, ladderRampTime)
	if len(l.state) != channels {
		l.state = make([][5]float32, channels)
	}
	l.updateCutoff()
	l.updateResonance()
	l.Reset()
}

// Reset clears the filter memory and jumps smoothers to their targets.
func (l *Ladder) Reset() {
	for ch := range l.state {
		l.state[ch] = [5]float32{}
	}
	l.cutoffTransform.snap(l.cutoffTransform.target)
	l.scaledRes.snap(l.scaledRes.target)
}

// SetMode switches the output taps. Changing mode clears the state.
func (l *Ladder) SetMode(m LadderMode) {
	if !m.Valid() {
		m = LPF12
	}
	if m == l.mode {
		return
	}
	l.applyMode(m)
	l.Reset()
}

func (l *Ladder) applyMode(m LadderMode) {
	taps := ladderTaps[m]
	for i, a := range taps.mix {
		l.mix[i] = a * ladderOutputGain
	}
	l.comp = taps.comp
	l.mode = m
}

// SetCutoffHz sets the cutoff target. Callers keep it inside (0, Nyquist).
func (l *Ladder) SetCutoffHz(hz float32) {
	l.cutoffHz = hz
	l.updateCutoff()
}

// SetResonance sets resonance in [0,1].
func (l *Ladder) SetResonance(r float32) {
	l.resonance = clampf(r, 0, 1)
	l.updateResonance()
}

// SetDrive sets the input drive (>= 1) and the matching gain compensation.
func (l *Ladder) SetDrive(d float32) {
	if d < 1 {
		d = 1
	}
	l.drive = d
	l.gain = float32(math.Pow(float64(d), -2.642)*0.6103 + 0.3903)
	l.drive2 = d*0.04 + 0.96
	l.gain2 = float32(math.Pow(float64(l.drive2), -2.642)*0.6103 + 0.3903)
}

func (l *Ladder) updateCutoff() {
	l.cutoffTransform.setTarget(approx.FastExp(l.cutoffHz * l.cutoffScale))
}

func (l *Ladder) updateResonance() {
	l.scaledRes.setTarget(0.1 + 0.9*l.resonance)
}

// Mode returns the current mode.
func (l *Ladder) Mode() LadderMode { return l.mode }

// CutoffHz returns the cutoff target.
func (l *Ladder) CutoffHz() float32 { return l.cutoffHz }

// Resonance returns the resonance setting.
func (l *Ladder) Resonance() float32 { return l.resonance }

// Drive returns the drive setting.
func (l *Ladder) Drive() float32 { return l.drive }

// Channels returns the number of prepared channels.
func (l *Ladder) Channels() int { return len(l.state) }

func (l *Ladder) processSample(x float32, ch int, a1, res float32) float32 {
	s := &l.state[ch]
	g := 1 - a1
	b0 := g * 0.76923076923
	b1 := g * 0.23076923076

	dx := l.gain * l.sat.at(l.drive*x)
	a := dx - 4*res*(l.gain2*l.sat.at(l.drive2*s[4])-dx*l.comp)
	b := b1*s[0] + a1*s[1] + b0*a
	c := b1*s[1] + a1*s[2] + b0*b
	d := b1*s[2] + a1*s[3] + b0*c
	e := b1*s[3] + a1*s[4] + b0*d

	s[0] = flush(a)
	s[1] = flush(b)
	s[2] = flush(c)
	s[3] = flush(d)
	s[4] = flush(e)

	return a*l.mix[0] + b*l.mix[1] + c*l.mix[2] + d*l.mix[3] + e*l.mix[4]
}

// Process filters every channel of buf in place. Channels beyond the
// prepared count are left untouched.
func (l *Ladder) Process(buf [][]float32) {
	if len(buf) == 0 {
		return
	}
	channels := len(buf)
	if channels > len(l.state) {
		channels = len(l.state)
	}
	n := len(buf[0])
	for i := 0; i < n; i++ {
		a1 := l.cutoffTransform.next()
		res := l.scaledRes.next()
		for ch := 0; ch < channels; ch++ {
			buf[ch][i] = l.processSample(buf[ch][i], ch, a1, res)
		}
	}
}
