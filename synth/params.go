package synth

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

// Params is the per-block parameter snapshot shared by every voice and the
// filter. It is passed by value into ProcessBlock.
type Params struct {
	WaveType dsp.WaveType

	// Envelope segment times in seconds; Sustain is a gain in 0..1.
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32

	Volume float32

	FilterEnabled bool
	FilterMode    dsp.LadderMode
	Cutoff        float32 // Hz
	Resonance     float32
	Drive         float32
}

// DefaultParams returns the factory settings.
func DefaultParams() Params {
	return Params{
		WaveType:      dsp.WaveSine,
		Attack:        0.1,
		Decay:         0.1,
		Sustain:       1.0,
		Release:       0.1,
		Volume:        1.0,
		FilterEnabled: false,
		FilterMode:    dsp.LPF12,
		Cutoff:        200,
		Resonance:     0.1,
		Drive:         1.0,
	}
}

// ADSR returns the envelope part of the snapshot.
func (p Params) ADSR() dsp.ADSRParams {
	return dsp.ADSRParams{
		Attack:  p.Attack,
		Decay:   p.Decay,
		Sustain: p.Sustain,
		Release: p.Release,
	}
}

// Parameter names understood by ParamStore.
const (
	ParamWaveType        = "wavetype"
	ParamLadderMode      = "laddermode"
	ParamLadderEnabled   = "ladderbutton"
	ParamAttack          = "attack"
	ParamDecay           = "decay"
	ParamSustain         = "sustain"
	ParamRelease         = "release"
	ParamVolume          = "volume"
	ParamLadderCutoff    = "laddercutoff"
	ParamLadderResonance = "ladderresonance"
	ParamLadderDrive     = "ladderdrive"
)

// paramRange bounds one parameter. A non-zero step snaps stored values to
// min + k*step; discrete parameters use step 1.
type paramRange struct {
	name string
	min  float32
	max  float32
	def  float32
	step float64
}

const (
	idxWaveType = iota
	idxLadderMode
	idxLadderEnabled
	idxAttack
	idxDecay
	idxSustain
	idxRelease
	idxVolume
	idxCutoff
	idxResonance
	idxDrive
	numParams
)

var paramRanges = [numParams]paramRange{
	idxWaveType:      {ParamWaveType, 0, 3, 0, 1},
	idxLadderMode:    {ParamLadderMode, 0, 5, 0, 1},
	idxLadderEnabled: {ParamLadderEnabled, 0, 1, 0, 1},
	idxAttack:        {ParamAttack, 0.1, 1, 0.1, 0.1},
	idxDecay:         {ParamDecay, 0.1, 1, 0.1, 0.1},
	idxSustain:       {ParamSustain, 0.1, 1, 1, 0.1},
	idxRelease:       {ParamRelease, 0.1, 3, 0.1, 0.1},
	idxVolume:        {ParamVolume, 0, 1, 1, 0},
	idxCutoff:        {ParamLadderCutoff, 1, 10000, 200, 1},
	idxResonance:     {ParamLadderResonance, 0, 1, 0.1, 0},
	idxDrive:         {ParamLadderDrive, 1, 5, 1, 0},
}

var paramIndex = func() map[string]int {
	m := make(map[string]int, numParams)
	for i, r := range paramRanges {
		m[r.name] = i
	}
	return m
}()

// ParamNames lists every parameter name in a stable order.
func ParamNames() []string {
	names := make([]string, numParams)
	for i, r := range paramRanges {
		names[i] = r.name
	}
	return names
}

// ParamRange reports the bounds and default of a named parameter.
func ParamRange(name string) (min, max, def float32, err error) {
	i, ok := paramIndex[name]
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown parameter %q", name)
	}
	r := paramRanges[i]
	return r.min, r.max, r.def, nil
}

func (r paramRange) clamp(v float32) float32 {
	if v != v {
		return r.def
	}
	if v < r.min {
		v = r.min
	}
	if v > r.max {
		v = r.max
	}
	if r.step > 0 {
		lo := float64(r.min)
		k := math.Round((float64(v) - lo) / r.step)
		v = min(float32(lo+k*r.step), r.max)
	}
	return v
}

// ParamStore holds the current value of every named parameter. Writers
// (UI, MIDI knobs, automation) and the audio thread share it without
// locks; each value is stored as atomic float bits.
type ParamStore struct {
	values [numParams]atomic.Uint32
}

// NewParamStore returns a store holding the defaults.
func NewParamStore() *ParamStore {
	s := &ParamStore{}
	for i, r := range paramRanges {
		s.values[i].Store(math.Float32bits(r.def))
	}
	return s
}

func (s *ParamStore) get(i int) float32 {
	return math.Float32frombits(s.values[i].Load())
}

func (s *ParamStore) set(i int, v float32) {
	s.values[i].Store(math.Float32bits(paramRanges[i].clamp(v)))
}

// Set writes a value in the parameter's natural unit, clamped to its range.
func (s *ParamStore) Set(name string, v float32) error {
	i, ok := paramIndex[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	s.set(i, v)
	return nil
}

// SetNormalized maps norm in 0..1 linearly onto the parameter's range.
func (s *ParamStore) SetNormalized(name string, norm float32) error {
	i, ok := paramIndex[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	r := paramRanges[i]
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	s.set(i, r.min+norm*(r.max-r.min))
	return nil
}

// Get returns the current value of a named parameter.
func (s *ParamStore) Get(name string) (float32, error) {
	i, ok := paramIndex[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q", name)
	}
	return s.get(i), nil
}

// Snapshot reads every parameter once. Values written concurrently may or
// may not be included; each field is individually consistent.
func (s *ParamStore) Snapshot() Params {
	return Params{
		WaveType:      dsp.WaveType(s.get(idxWaveType)),
		Attack:        s.get(idxAttack),
		Decay:         s.get(idxDecay),
		Sustain:       s.get(idxSustain),
		Release:       s.get(idxRelease),
		Volume:        s.get(idxVolume),
		FilterEnabled: s.get(idxLadderEnabled) >= 0.5,
		FilterMode:    dsp.LadderMode(s.get(idxLadderMode)),
		Cutoff:        s.get(idxCutoff),
		Resonance:     s.get(idxResonance),
		Drive:         s.get(idxDrive),
	}
}

// Load writes all fields of p into the store, clamping each.
func (s *ParamStore) Load(p Params) {
	enabled := float32(0)
	if p.FilterEnabled {
		enabled = 1
	}
	s.set(idxWaveType, float32(p.WaveType))
	s.set(idxLadderMode, float32(p.FilterMode))
	s.set(idxLadderEnabled, enabled)
	s.set(idxAttack, p.Attack)
	s.set(idxDecay, p.Decay)
	s.set(idxSustain, p.Sustain)
	s.set(idxRelease, p.Release)
	s.set(idxVolume, p.Volume)
	s.set(idxCutoff, p.Cutoff)
	s.set(idxResonance, p.Resonance)
	s.set(idxDrive, p.Drive)
}
