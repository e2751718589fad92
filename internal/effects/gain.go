package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var gainSchema = []control.Spec{
	control.Num("amp", 1, 0, 4),
}

// Gain scales every channel by a smoothed amplitude.
type Gain struct {
	amp *control.Smoother
}

func newGain(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Gain{amp: smoothed(env, p, "amp")}, nil
}

func (g *Gain) Process(block []float32, channels int) {
	for i := 0; i+channels <= len(block); i += channels {
		a := float32(g.amp.Next())
		for c := 0; c < channels; c++ {
			block[i+c] *= a
		}
	}
}

func (g *Gain) Reset() { g.amp.Snap() }
