package effects

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var distortionSchema = []control.Spec{
	control.Num("pregain", 4, 0.1, 50),
	control.Num("postgain", 0.5, 0, 2),
	control.Num("cutoff", 8000, 0, 20000).WithUnit("Hz"),
}

// Distortion is tanh waveshaping between a pre and post gain, followed by a
// one-pole lowpass. A cutoff of 0 disables the filter.
type Distortion struct {
	sampleRate float64
	preGain    *control.Smoother
	postGain   *control.Smoother
	cutoff     *control.Control
	lastCutoff float64
	alpha      float32
	lpf        []float32
}

func newDistortion(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Distortion{
		sampleRate: float64(env.SampleRate),
		preGain:    smoothed(env, p, "pregain"),
		postGain:   smoothed(env, p, "postgain"),
		cutoff:     p.Control("cutoff"),
		lastCutoff: -1,
		lpf:        make([]float32, channelCount(env)),
	}, nil
}

func (d *Distortion) updateFilter() {
	cutoff := d.cutoff.Value()
	if cutoff == d.lastCutoff {
		return
	}
	d.lastCutoff = cutoff
	d.alpha = 0
	if cutoff > 0 && cutoff < d.sampleRate/2 {
		rc := 1.0 / (2.0 * math.Pi * cutoff)
		dt := 1.0 / d.sampleRate
		d.alpha = float32(dt / (rc + dt))
	}
}

func (d *Distortion) Process(block []float32, channels int) {
	d.updateFilter()
	n := min(channels, len(d.lpf))
	for i := 0; i+channels <= len(block); i += channels {
		pre := d.preGain.Next()
		post := float32(d.postGain.Next())
		for c := 0; c < n; c++ {
			x := float32(math.Tanh(float64(block[i+c])*pre)) * post
			if d.alpha > 0 {
				d.lpf[c] += d.alpha * (x - d.lpf[c])
				x = d.lpf[c]
			}
			block[i+c] = x
		}
	}
}

func (d *Distortion) Reset() {
	clear(d.lpf)
}
