package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/lfo"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var chorusSchema = []control.Spec{
	control.Num("delay", 15, 1, 50).WithUnit("ms").Fixed(),
	control.Num("depth", 3, 0, 20).WithUnit("ms").Fixed(),
	control.Num("rate", 1.5, 0.01, 10).WithUnit("Hz"),
	control.Num("feedback", 0.3, 0, 0.9),
	control.Num("wet", 0.4, 0, 1),
}

// Chorus is a modulated delay. Each channel's LFO is phase-offset so the
// channels drift against each other.
type Chorus struct {
	sampleRate float64
	bufs       [][]float32
	lfos       []*lfo.LFO
	pos        int
	size       int
	depth      float64
	rate       *control.Control
	feedback   *control.Smoother
	wet        *control.Smoother
}

func newChorus(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	n := channelCount(env)
	sr := float64(env.SampleRate)
	baseSamples := int(p.Num("delay") * sr / 1000.0)
	depthSamples := p.Num("depth") * sr / 1000.0
	size := 2*(baseSamples+int(depthSamples)) + 4
	c := &Chorus{
		sampleRate: sr,
		bufs:       make([][]float32, n),
		lfos:       make([]*lfo.LFO, n),
		size:       size,
		depth:      depthSamples,
		rate:       p.Control("rate"),
		feedback:   smoothed(env, p, "feedback"),
		wet:        smoothed(env, p, "wet"),
	}
	for ch := range c.bufs {
		c.bufs[ch] = make([]float32, size)
		c.lfos[ch] = lfo.New(float64(ch)/float64(n), uint64(ch+1))
	}
	return c, nil
}

func (c *Chorus) Process(block []float32, channels int) {
	n := min(channels, len(c.bufs))
	rate := c.rate.Value()
	for _, l := range c.lfos {
		l.Set(c.depth, rate, lfo.WaveSine)
	}
	center := float64(c.size / 2)
	for i := 0; i+channels <= len(block); i += channels {
		fb := float32(c.feedback.Next())
		wet := float32(c.wet.Next())
		for ch := 0; ch < n; ch++ {
			buf := c.bufs[ch]
			buf[c.pos] = block[i+ch]
			readPos := float64(c.pos) - (center + c.lfos[ch].Sample(c.sampleRate))
			for readPos < 0 {
				readPos += float64(c.size)
			}
			idx := int(readPos)
			frac := float32(readPos - float64(idx))
			idx2 := idx + 1
			if idx2 >= c.size {
				idx2 = 0
			}
			del := buf[idx]*(1-frac) + buf[idx2]*frac
			buf[c.pos] += del * fb
			block[i+ch] = block[i+ch]*(1-wet) + del*wet
		}
		c.pos++
		if c.pos >= c.size {
			c.pos = 0
		}
	}
}

func (c *Chorus) Reset() {
	for ch := range c.bufs {
		clear(c.bufs[ch])
		c.lfos[ch].Reset()
	}
	c.pos = 0
}
