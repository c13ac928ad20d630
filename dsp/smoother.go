package dsp

// smoother ramps linearly from its current value to a target over a fixed
// number of samples.
type smoother struct {
	current float32
	target  float32
	step    float32
	steps   int
	left    int
}

func (s *smoother) reset(sampleRate float64, rampSeconds float64) {
	s.steps = int(sampleRate * rampSeconds)
	s.snap(s.target)
}

func (s *smoother) snap(v float32) {
	s.current = v
	s.target = v
	s.left = 0
}

func (s *smoother) setTarget(v float32) {
	if v == s.target {
		return
	}
	if s.steps <= 0 {
		s.snap(v)
		return
	}
	s.target = v
	s.left = s.steps
	s.step = (s.target - s.current) / float32(s.steps)
}

func (s *smoother) next() float32 {
	if s.left <= 0 {
		return s.target
	}
	s.left--
	if s.left == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}
