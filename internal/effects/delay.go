package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var delaySchema = []control.Spec{
	control.Num("time", 250, 1, 10000).WithUnit("ms"),
	control.Num("max", 2000, 10, 10000).WithUnit("ms").Fixed(),
	control.Num("feedback", 0.4, 0, 0.95),
	control.Num("cross", 0.2, 0, 1),
	control.Num("wet", 0.3, 0, 1),
}

// Delay is a multichannel feedback delay. Cross feedback routes each
// channel's tap into its neighbour, which for two channels is ping-pong.
type Delay struct {
	sampleRate float64
	bufs       [][]float32
	taps       []float32
	pos        int
	time       *control.Smoother
	feedback   *control.Smoother
	cross      *control.Smoother
	wet        *control.Smoother
}

func newDelay(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	n := channelCount(env)
	size := int(p.Num("max")*float64(env.SampleRate)/1000.0) + 2
	if size < 4 {
		size = 4
	}
	d := &Delay{
		sampleRate: float64(env.SampleRate),
		bufs:       make([][]float32, n),
		taps:       make([]float32, n),
		time:       smoothed(env, p, "time"),
		feedback:   smoothed(env, p, "feedback"),
		cross:      smoothed(env, p, "cross"),
		wet:        smoothed(env, p, "wet"),
	}
	for c := range d.bufs {
		d.bufs[c] = make([]float32, size)
	}
	return d, nil
}

func (d *Delay) Process(block []float32, channels int) {
	n := min(channels, len(d.bufs))
	size := len(d.bufs[0])
	for i := 0; i+channels <= len(block); i += channels {
		delay := float32(d.time.Next() * d.sampleRate / 1000.0)
		delay = clamp(delay, 1, float32(size-2))
		fb := float32(d.feedback.Next())
		cross := float32(d.cross.Next())
		wet := float32(d.wet.Next())

		readPos := float32(d.pos) - delay
		if readPos < 0 {
			readPos += float32(size)
		}
		idx := int(readPos)
		frac := readPos - float32(idx)
		idx2 := idx + 1
		if idx2 >= size {
			idx2 = 0
		}
		for c := 0; c < n; c++ {
			d.taps[c] = d.bufs[c][idx]*(1-frac) + d.bufs[c][idx2]*frac
		}
		for c := 0; c < n; c++ {
			other := d.taps[(c+1)%n]
			x := block[i+c]
			d.bufs[c][d.pos] = x + d.taps[c]*fb*(1-cross) + other*fb*cross
			block[i+c] = x*(1-wet) + d.taps[c]*wet
		}
		d.pos++
		if d.pos >= size {
			d.pos = 0
		}
	}
}

func (d *Delay) Reset() {
	for c := range d.bufs {
		clear(d.bufs[c])
	}
	d.pos = 0
}
