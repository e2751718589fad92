package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/lfo"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var tremoloSchema = []control.Spec{
	control.Num("rate", 5, 0.1, 20).WithUnit("Hz"),
	control.Num("depth", 0.5, 0, 1),
	control.OneOf("wave", "sine", lfo.WaveNames...),
}

// Tremolo modulates amplitude with an LFO shared by all channels.
type Tremolo struct {
	sampleRate float64
	osc        *lfo.LFO
	rate       *control.Control
	depth      *control.Smoother
	wave       *control.Control
}

func newTremolo(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Tremolo{
		sampleRate: float64(env.SampleRate),
		osc:        lfo.New(0, 7),
		rate:       p.Control("rate"),
		depth:      smoothed(env, p, "depth"),
		wave:       p.Control("wave"),
	}, nil
}

func (t *Tremolo) Process(block []float32, channels int) {
	t.osc.Set(1, t.rate.Value(), lfo.Wave(int(t.wave.Value())))
	for i := 0; i+channels <= len(block); i += channels {
		depth := t.depth.Next()
		// modulator in [0, 1]
		m := t.osc.Unipolar(t.sampleRate)
		g := float32(1 - depth*m)
		for c := 0; c < channels; c++ {
			block[i+c] *= g
		}
	}
}

func (t *Tremolo) Reset() {
	t.osc.Reset()
}
