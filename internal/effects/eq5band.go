package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

// Bands are split at 200Hz, 800Hz, 2.5kHz and 8kHz.
var defaultCrossovers = [4]float64{200, 800, 2500, 8000}

var eq5Schema = []control.Spec{
	control.Num("band0", 1, 0, 4),
	control.Num("band1", 1, 0, 4),
	control.Num("band2", 1, 0, 4),
	control.Num("band3", 1, 0, 4),
	control.Num("band4", 1, 0, 4),
}

// EQ5Band is a graphic equalizer built from four cascaded one-pole splits.
type EQ5Band struct {
	gains  [5]*control.Smoother
	alphas [4]float32
	lp     [][4]float32
}

func newEQ5Band(env catalog.Env, p *control.Values) (pipeline.Unit, error) {
	eq := &EQ5Band{lp: make([][4]float32, channelCount(env))}
	for i, freq := range defaultCrossovers {
		eq.alphas[i] = onePoleAlpha(env.SampleRate, freq)
	}
	for i := range eq.gains {
		eq.gains[i] = smoothed(env, p, eq5Schema[i].Name)
	}
	return eq, nil
}

func (eq *EQ5Band) Process(block []float32, channels int) {
	n := min(channels, len(eq.lp))
	var g [5]float32
	for i := 0; i+channels <= len(block); i += channels {
		for b := range eq.gains {
			g[b] = float32(eq.gains[b].Next())
		}
		for c := 0; c < n; c++ {
			rem := block[i+c]
			var out float32
			for k := 0; k < 4; k++ {
				eq.lp[c][k] += eq.alphas[k] * (rem - eq.lp[c][k])
				band := eq.lp[c][k]
				out += band * g[k]
				rem -= band
			}
			block[i+c] = out + rem*g[4]
		}
	}
}

func (eq *EQ5Band) Reset() {
	clear(eq.lp)
}
