package effects

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var bitcrushSchema = []control.Spec{
	control.Num("rate", 1, 1, 64),
	control.Num("bits", 16, 1, 24),
	control.Num("wet", 1, 0, 1),
}

// Bitcrush holds every rate-th frame and quantizes it to bits of resolution.
type Bitcrush struct {
	rate    *control.Control
	bits    *control.Control
	wet     *control.Smoother
	held    []float32
	counter int
}

func newBitcrush(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Bitcrush{
		rate: p.Control("rate"),
		bits: p.Control("bits"),
		wet:  smoothed(env, p, "wet"),
		held: make([]float32, channelCount(env)),
	}, nil
}

func (b *Bitcrush) Process(block []float32, channels int) {
	hold := max(int(b.rate.Value()), 1)
	steps := float32(math.Exp2(math.Round(b.bits.Value()) - 1))
	n := min(channels, len(b.held))
	for i := 0; i+channels <= len(block); i += channels {
		wet := float32(b.wet.Next())
		if b.counter == 0 {
			for c := 0; c < n; c++ {
				b.held[c] = float32(math.Round(float64(block[i+c]*steps))) / steps
			}
		}
		b.counter++
		if b.counter >= hold {
			b.counter = 0
		}
		for c := 0; c < n; c++ {
			block[i+c] = block[i+c]*(1-wet) + b.held[c]*wet
		}
	}
}

func (b *Bitcrush) Reset() {
	clear(b.held)
	b.counter = 0
}
