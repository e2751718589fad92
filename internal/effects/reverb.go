package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var reverbSchema = []control.Spec{
	control.Num("room", 0.5, 0.05, 1).Fixed(),
	control.Num("feedback", 0.7, 0, 0.95),
	control.Num("wet", 0.25, 0, 1),
}

// Reverb is a Schroeder reverb: four parallel combs into two allpasses, fed
// by the mono sum of all channels and mixed back into each channel.
type Reverb struct {
	combs    [4]combFilter
	allpass  [2]allpassFilter
	feedback *control.Smoother
	wet      *control.Smoother
}

type combFilter struct {
	buf []float32
	pos int
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

func newReverb(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	base := int(float64(env.SampleRate) * p.Num("room") * 0.05)
	if base < 10 {
		base = 10
	}
	r := &Reverb{
		feedback: smoothed(env, p, "feedback"),
		wet:      smoothed(env, p, "wet"),
	}
	// prime-ish ratios keep the comb resonances apart
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i].buf = make([]float32, combLens[i])
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		r.allpass[i] = allpassFilter{buf: make([]float32, max(apLens[i], 1)), fb: 0.5}
	}
	return r, nil
}

func (r *Reverb) Process(block []float32, channels int) {
	scale := 1 / float32(channels)
	for i := 0; i+channels <= len(block); i += channels {
		fb := float32(r.feedback.Next())
		wet := float32(r.wet.Next())
		var mono float32
		for c := 0; c < channels; c++ {
			mono += block[i+c]
		}
		mono *= scale
		var out float32
		for k := range r.combs {
			out += r.combs[k].process(mono, fb)
		}
		out *= 0.25
		for k := range r.allpass {
			out = r.allpass[k].process(out)
		}
		for c := 0; c < channels; c++ {
			block[i+c] = block[i+c]*(1-wet) + out*wet
		}
	}
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
	}
	for i := range r.allpass {
		clear(r.allpass[i].buf)
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in, fb float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
