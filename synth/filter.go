package synth

import "github.com/cwbudde/algo-wavesynth/dsp"

const (
	minCutoffHz    = 1
	maxCutoffRatio = 0.499
)

// FilterStage is the global post-mix ladder filter with bypass.
type FilterStage struct {
	ladder     *dsp.Ladder
	enabled    bool
	sampleRate float64
}

// NewFilterStage returns a disabled filter prepared for sampleRate and channels.
func NewFilterStage(sampleRate float64, channels int) *FilterStage {
	return &FilterStage{
		ladder:     dsp.NewLadder(sampleRate, channels),
		sampleRate: sampleRate,
	}
}

// Prepare resizes and retunes the ladder. Not for the audio thread.
func (f *FilterStage) Prepare(sampleRate float64, channels int) {
	f.sampleRate = sampleRate
	f.ladder.Prepare(sampleRate, channels)
	f.SetCutoffFrequencyHz(f.ladder.CutoffHz())
}

// SetEnabled switches the stage between filtering and bypass.
func (f *FilterStage) SetEnabled(enabled bool) { f.enabled = enabled }

// Enabled reports whether the stage filters.
func (f *FilterStage) Enabled() bool { return f.enabled }

// SetMode selects the ladder response; a change clears the filter state.
func (f *FilterStage) SetMode(m dsp.LadderMode) { f.ladder.SetMode(m) }

// SetCutoffFrequencyHz clamps hz to [1, 0.499*sampleRate].
func (f *FilterStage) SetCutoffFrequencyHz(hz float32) {
	hi := float32(f.sampleRate * maxCutoffRatio)
	if hz > hi {
		hz = hi
	}
	if hz < minCutoffHz || hz != hz {
		hz = minCutoffHz
	}
	f.ladder.SetCutoffHz(hz)
}

// SetResonance sets resonance in [0,1].
func (f *FilterStage) SetResonance(r float32) { f.ladder.SetResonance(r) }

// SetDrive sets the input drive, at least 1.
func (f *FilterStage) SetDrive(d float32) { f.ladder.SetDrive(d) }

// Configure applies the filter fields of a block snapshot.
func (f *FilterStage) Configure(p Params) {
	f.SetEnabled(p.FilterEnabled)
	f.SetMode(p.FilterMode)
	f.SetCutoffFrequencyHz(p.Cutoff)
	f.SetResonance(p.Resonance)
	f.SetDrive(p.Drive)
}

// Process filters buf in place. A disabled stage leaves buf and its own
// state untouched.
func (f *FilterStage) Process(buf [][]float32) {
	if !f.enabled {
		return
	}
	f.ladder.Process(buf)
}

// Ladder returns the underlying filter.
func (f *FilterStage) Ladder() *dsp.Ladder { return f.ladder }
