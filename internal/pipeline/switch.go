package pipeline

import (
	"math"
	"sync/atomic"
	"time"
)

type commit struct {
	p    *Pipeline
	fade int
}

// outgoing is a superseded pipeline fading out from the gain it had when it
// was replaced.
type outgoing struct {
	p        *Pipeline
	from     float64
	pos, len int
}

// Switch hands committed pipelines to the audio thread and crossfades from
// the previous ones at equal power. The engine drives Process; Commit, Route
// and Current may be called from any goroutine.
type Switch struct {
	sampleRate int
	next       atomic.Pointer[commit]
	current    atomic.Pointer[Pipeline]
	offset     atomic.Int32

	// audio thread
	cur          *Pipeline
	inPos, inLen int
	outs         []outgoing
	buf          []float32
}

func NewSwitch(sampleRate int) *Switch {
	return &Switch{sampleRate: sampleRate}
}

// Commit replaces the live pipeline. A nil pipeline fades to silence.
func (s *Switch) Commit(p *Pipeline, fade time.Duration) {
	frames := int(fade.Seconds() * float64(s.sampleRate))
	s.current.Store(p)
	s.next.Store(&commit{p: p, fade: max(frames, 0)})
}

// Current returns the most recently committed pipeline.
func (s *Switch) Current() *Pipeline { return s.current.Load() }

// Route sets the first engine channel the pipeline writes to.
func (s *Switch) Route(offset int) { s.offset.Store(int32(offset)) }

func (s *Switch) Offset() int { return int(s.offset.Load()) }

// fadeIn is the gain of the current pipeline f frames into the block.
func (s *Switch) fadeIn(f int) float64 {
	if s.inLen == 0 || s.inPos+f >= s.inLen {
		return 1
	}
	return math.Sin(float64(s.inPos+f) / float64(s.inLen) * math.Pi / 2)
}

func (o *outgoing) gain(f int) float64 {
	t := float64(o.pos+f) / float64(o.len)
	if t >= 1 {
		return 0
	}
	return o.from * math.Cos(t*math.Pi/2)
}

func (s *Switch) accept(c *commit) {
	if c.fade == 0 {
		clear(s.outs)
		s.outs = s.outs[:0]
	} else if s.cur != nil {
		s.outs = append(s.outs, outgoing{p: s.cur, from: s.fadeIn(0), len: c.fade})
	}
	s.cur = c.p
	s.inPos, s.inLen = 0, c.fade
}

// Process renders frames for an engine with the given channel count. Pipeline
// output lands at the routed offset; channels past the engine width are
// dropped and all other channels are silent.
func (s *Switch) Process(dst []float32, channels int) {
	clear(dst)
	if channels < 1 {
		return
	}
	if c := s.next.Swap(nil); c != nil {
		s.accept(c)
	}
	frames := len(dst) / channels
	offset := int(s.offset.Load())

	if s.inLen == 0 {
		s.mix(dst, channels, offset, frames, s.cur, nil)
	} else {
		s.mix(dst, channels, offset, frames, s.cur, s.fadeIn)
		s.inPos += frames
		if s.inPos >= s.inLen {
			s.inPos, s.inLen = 0, 0
		}
	}
	live := s.outs[:0]
	for i := range s.outs {
		o := &s.outs[i]
		s.mix(dst, channels, offset, frames, o.p, o.gain)
		o.pos += frames
		if o.pos < o.len {
			live = append(live, *o)
		}
	}
	clear(s.outs[len(live):])
	s.outs = live
}

func (s *Switch) mix(dst []float32, channels, offset, frames int, p *Pipeline, gain func(int) float64) {
	if p == nil {
		return
	}
	out := p.OutChannels()
	n := frames * out
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	b := s.buf[:n]
	p.Process(b)
	for f := 0; f < frames; f++ {
		g := float32(1)
		if gain != nil {
			g = float32(gain(f))
		}
		for c := 0; c < out; c++ {
			ch := offset + c
			if ch < 0 || ch >= channels {
				continue
			}
			dst[f*channels+ch] += b[f*out+c] * g
		}
	}
}
