package control

import (
	"math"
	"time"
)

// DefaultSmoothing is the time constant used when an effect does not pick one.
const DefaultSmoothing = 20 * time.Millisecond

// Smoother follows a control with a one-pole lowpass to avoid zipper noise.
// It is owned by the audio thread; only the control's target is shared.
type Smoother struct {
	c      *Control
	cur    float64
	coef   float64
	primed bool
}

func NewSmoother(c *Control, sampleRate int, tau time.Duration) *Smoother {
	s := &Smoother{c: c, coef: 1}
	if sampleRate > 0 && tau > 0 {
		s.coef = 1 - math.Exp(-1/(tau.Seconds()*float64(sampleRate)))
	}
	return s
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float64 {
	target := s.c.Value()
	if !s.primed {
		s.cur = target
		s.primed = true
		return s.cur
	}
	s.cur += s.coef * (target - s.cur)
	if math.Abs(target-s.cur) < 1e-9 {
		s.cur = target
	}
	return s.cur
}

// Snap jumps to the current target.
func (s *Smoother) Snap() {
	s.cur = s.c.Value()
	s.primed = true
}
