package effects

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var eqSchema = []control.Spec{
	control.Num("low", 1, 0, 4),
	control.Num("mid", 1, 0, 4),
	control.Num("high", 1, 0, 4),
	control.Num("lowfreq", 300, 20, 2000).WithUnit("Hz").Fixed(),
	control.Num("highfreq", 3000, 500, 16000).WithUnit("Hz").Fixed(),
}

// EQ3Band splits each channel with two one-pole filters and rescales the
// low, mid and high bands.
type EQ3Band struct {
	lowGain  *control.Smoother
	midGain  *control.Smoother
	highGain *control.Smoother
	lpAlpha  float32
	hpAlpha  float32
	lp       []float32
	hp       []float32
}

func onePoleAlpha(sampleRate int, freq float64) float32 {
	rc := 1.0 / (2.0 * math.Pi * freq)
	dt := 1.0 / float64(sampleRate)
	return float32(dt / (rc + dt))
}

func newEQ3Band(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	n := channelCount(env)
	return &EQ3Band{
		lowGain:  smoothed(env, p, "low"),
		midGain:  smoothed(env, p, "mid"),
		highGain: smoothed(env, p, "high"),
		lpAlpha:  onePoleAlpha(env.SampleRate, p.Num("lowfreq")),
		hpAlpha:  onePoleAlpha(env.SampleRate, p.Num("highfreq")),
		lp:       make([]float32, n),
		hp:       make([]float32, n),
	}, nil
}

func (eq *EQ3Band) Process(block []float32, channels int) {
	n := min(channels, len(eq.lp))
	for i := 0; i+channels <= len(block); i += channels {
		lg := float32(eq.lowGain.Next())
		mg := float32(eq.midGain.Next())
		hg := float32(eq.highGain.Next())
		for c := 0; c < n; c++ {
			x := block[i+c]
			eq.lp[c] += eq.lpAlpha * (x - eq.lp[c])
			eq.hp[c] += eq.hpAlpha * (x - eq.hp[c])
			low := eq.lp[c]
			high := x - eq.hp[c]
			mid := x - low - high
			block[i+c] = low*lg + mid*mg + high*hg
		}
	}
}

func (eq *EQ3Band) Reset() {
	clear(eq.lp)
	clear(eq.hp)
}
