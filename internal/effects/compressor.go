package effects

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

var compressorSchema = []control.Spec{
	control.Num("threshold", -20, -60, 0).WithUnit("dB"),
	control.Num("ratio", 4, 1, 20),
	control.Num("attack", 5, 0.1, 500).WithUnit("ms"),
	control.Num("release", 100, 1, 2000).WithUnit("ms"),
	control.Num("makeup", 6, 0, 24).WithUnit("dB"),
	control.Toggle("linked", true),
}

// Compressor is a peak-envelope compressor. When linked, all channels share
// the loudest channel's gain reduction.
type Compressor struct {
	sampleRate float64
	threshold  *control.Control
	ratio      *control.Control
	attackMs   *control.Control
	releaseMs  *control.Control
	makeupDB   *control.Control
	linked     *control.Control
	env        []float32

	// coefficients, refreshed once per block
	thr     float32
	invR    float64
	attack  float32
	release float32
	makeup  float32
}

func newCompressor(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	return &Compressor{
		sampleRate: float64(env.SampleRate),
		threshold:  p.Control("threshold"),
		ratio:      p.Control("ratio"),
		attackMs:   p.Control("attack"),
		releaseMs:  p.Control("release"),
		makeupDB:   p.Control("makeup"),
		linked:     p.Control("linked"),
		env:        make([]float32, channelCount(env)),
	}, nil
}

func (c *Compressor) refresh() {
	c.thr = float32(math.Pow(10, c.threshold.Value()/20))
	c.invR = 1.0/c.ratio.Value() - 1
	c.attack = float32(1.0 - math.Exp(-1.0/(c.attackMs.Value()*c.sampleRate/1000.0)))
	c.release = float32(1.0 - math.Exp(-1.0/(c.releaseMs.Value()*c.sampleRate/1000.0)))
	c.makeup = float32(math.Pow(10, c.makeupDB.Value()/20))
}

func (c *Compressor) Process(block []float32, channels int) {
	c.refresh()
	linked := c.linked.Value() >= 0.5
	n := min(channels, len(c.env))
	for i := 0; i+channels <= len(block); i += channels {
		var peak float32
		for ch := 0; ch < n; ch++ {
			abs := float32(math.Abs(float64(block[i+ch])))
			if abs > c.env[ch] {
				c.env[ch] += c.attack * (abs - c.env[ch])
			} else {
				c.env[ch] += c.release * (abs - c.env[ch])
			}
			peak = max(peak, c.env[ch])
		}
		for ch := 0; ch < n; ch++ {
			e := c.env[ch]
			if linked {
				e = peak
			}
			block[i+ch] *= c.gain(e) * c.makeup
		}
	}
}

func (c *Compressor) gain(env float32) float32 {
	if env <= c.thr || c.thr <= 0 {
		return 1
	}
	return float32(math.Pow(float64(env/c.thr), c.invR))
}

func (c *Compressor) Reset() {
	clear(c.env)
}
