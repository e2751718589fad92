package effects

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var lowpassSchema = []control.Spec{
	control.Num("freq", 1000, 20, 20000).WithUnit("Hz"),
	control.Num("q", 0.707, 0.1, 20),
}

// Lowpass is an RBJ biquad lowpass, one direct-form-I state per channel.
// Coefficients are recomputed per block from the smoothed controls.
type Lowpass struct {
	sampleRate float64
	freq       *control.Smoother
	q          *control.Control
	b0, b1, b2 float64
	a1, a2     float64
	state      [][4]float64 // x1, x2, y1, y2
	lastFreq   float64
	lastQ      float64
}

func newLowpass(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Lowpass{
		sampleRate: float64(env.SampleRate),
		freq:       smoothed(env, p, "freq"),
		q:          p.Control("q"),
		state:      make([][4]float64, channelCount(env)),
		lastFreq:   -1,
	}, nil
}

func (f *Lowpass) design(freq, q float64) {
	if freq == f.lastFreq && q == f.lastQ {
		return
	}
	f.lastFreq, f.lastQ = freq, q
	freq = math.Min(freq, f.sampleRate*0.49)
	w0 := 2 * math.Pi * freq / f.sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	f.b0 = (1 - cosw) / 2 / a0
	f.b1 = (1 - cosw) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *Lowpass) Process(block []float32, channels int) {
	frames := len(block) / channels
	if frames == 0 {
		return
	}
	// advance the smoother across the block, design once at its end value
	var freq float64
	for i := 0; i < frames; i++ {
		freq = f.freq.Next()
	}
	f.design(freq, f.q.Value())
	n := min(channels, len(f.state))
	for i := 0; i+channels <= len(block); i += channels {
		for c := 0; c < n; c++ {
			s := &f.state[c]
			x := float64(block[i+c])
			y := f.b0*x + f.b1*s[0] + f.b2*s[1] - f.a1*s[2] - f.a2*s[3]
			s[1], s[0] = s[0], x
			s[3], s[2] = s[2], y
			block[i+c] = float32(y)
		}
	}
}

func (f *Lowpass) Reset() {
	clear(f.state)
}
