package dsp

// ADSRStage is the envelope's state machine position.
type ADSRStage int

const (
	StageIdle ADSRStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s ADSRStage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "idle"
	}
}

// ADSRParams holds segment times in seconds and the sustain gain (0..1).
type ADSRParams struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// ADSR is a linear attack/decay/sustain/release envelope producing one gain
// value per sample.
type ADSR struct {
	params     ADSRParams
	sampleRate float64

	stage ADSRStage
	level float32

	attackRate  float32
	decayRate   float32
	releaseRate float32
}

// SetSampleRate must be called before the first NextSample.
func (e *ADSR) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		panic("dsp: ADSR sample rate must be positive")
	}
	e.sampleRate = sampleRate
	e.recalculateRates()
}

// SetParameters applies new segment settings. A running release keeps the
// slope it was given at note-off, scaled to the new release time.
func (e *ADSR) SetParameters(p ADSRParams) {
	if p.Attack < 0 {
		p.Attack = 0
	}
	if p.Decay < 0 {
		p.Decay = 0
	}
	if p.Release < 0 {
		p.Release = 0
	}
	p.Sustain = clampf(p.Sustain, 0, 1)

	prevRelease := e.params.Release
	e.params = p
	e.recalculateRates()

	if e.stage == StageRelease && prevRelease != p.Release {
		if p.Release <= 0 {
			e.Reset()
			return
		}
		// Keep the remaining fraction of the segment, shorten or stretch the rest.
		e.releaseRate *= prevRelease / p.Release
	}
}

// Parameters returns the current settings.
func (e *ADSR) Parameters() ADSRParams {
	return e.params
}

func (e *ADSR) rate(distance, seconds float32) float32 {
	if seconds <= 0 || e.sampleRate <= 0 {
		return -1
	}
	return distance / (seconds * float32(e.sampleRate))
}

func (e *ADSR) recalculateRates() {
	e.attackRate = e.rate(1, e.params.Attack)
	e.decayRate = e.rate(1-e.params.Sustain, e.params.Decay)

	switch {
	case e.stage == StageAttack && e.attackRate <= 0:
		e.advance()
	case e.stage == StageDecay && (e.decayRate <= 0 || e.level <= e.params.Sustain):
		e.advance()
	}
}

// NoteOn restarts the attack from the current level.
func (e *ADSR) NoteOn() {
	switch {
	case e.attackRate > 0:
		e.stage = StageAttack
	case e.decayRate > 0:
		e.level = 1
		e.stage = StageDecay
	default:
		e.level = e.params.Sustain
		e.stage = StageSustain
	}
}

// NoteOff enters the release segment from any non-idle stage.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	if e.params.Release <= 0 || e.level <= 0 {
		e.Reset()
		return
	}
	e.releaseRate = e.level / (e.params.Release * float32(e.sampleRate))
	e.stage = StageRelease
}

// NextSample advances the envelope by one sample and returns its gain.
func (e *ADSR) NextSample() float32 {
	if e.sampleRate <= 0 {
		panic("dsp: ADSR used before SetSampleRate")
	}

	switch e.stage {
	case StageIdle:
		return 0
	case StageAttack:
		e.level += e.attackRate
		if e.level >= 1 {
			e.level = 1
			e.advance()
		}
	case StageDecay:
		e.level -= e.decayRate
		if e.level <= e.params.Sustain {
			e.level = e.params.Sustain
			e.advance()
		}
	case StageSustain:
		e.level = e.params.Sustain
	case StageRelease:
		e.level -= e.releaseRate
		if e.level <= 0 {
			e.Reset()
		}
	}
	return e.level
}

func (e *ADSR) advance() {
	switch e.stage {
	case StageAttack:
		if e.decayRate > 0 {
			e.stage = StageDecay
		} else {
			e.stage = StageSustain
		}
	case StageDecay:
		e.stage = StageSustain
	case StageRelease:
		e.Reset()
	}
}

// IsActive reports whether the envelope is anywhere but idle.
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle
}

// Stage returns the current segment.
func (e *ADSR) Stage() ADSRStage {
	return e.stage
}

// Level returns the most recent gain without advancing.
func (e *ADSR) Level() float32 {
	return e.level
}

// Reset returns to idle at zero gain.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
}
