// Package effects holds the built-in effect kinds. Each kind processes N
// interleaved channels with per-channel state and reads its live parameters
// from the controls the catalog created for its stage prefix.
package effects

import (
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
)

// RegisterBuiltins registers every built-in kind on c.
func RegisterBuiltins(c *catalog.Catalog) {
	c.MustRegister("gain", catalog.BuilderFunc(newGain), gainSchema...)
	c.MustRegister("delay", catalog.BuilderFunc(newDelay), delaySchema...)
	c.MustRegister("reverb", catalog.BuilderFunc(newReverb), reverbSchema...)
	c.MustRegister("chorus", catalog.BuilderFunc(newChorus), chorusSchema...)
	c.MustRegister("distortion", catalog.BuilderFunc(newDistortion), distortionSchema...)
	c.MustRegister("eq", catalog.BuilderFunc(newEQ3Band), eqSchema...)
	c.MustRegister("eq5", catalog.BuilderFunc(newEQ5Band), eq5Schema...)
	c.MustRegister("compressor", catalog.BuilderFunc(newCompressor), compressorSchema...)
	c.MustRegister("bitcrush", catalog.BuilderFunc(newBitcrush), bitcrushSchema...)
	c.MustRegister("lowpass", catalog.BuilderFunc(newLowpass), lowpassSchema...)
	c.MustRegister("tremolo", catalog.BuilderFunc(newTremolo), tremoloSchema...)
}

// Builtin returns a fresh catalog holding the built-in kinds.
func Builtin() *catalog.Catalog {
	c := catalog.New()
	RegisterBuiltins(c)
	return c
}

func smoothed(env catalog.Env, p *control.Values, name string) *control.Smoother {
	return control.NewSmoother(p.Control(name), env.SampleRate, control.DefaultSmoothing)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func channelCount(env catalog.Env) int {
	if env.Channels < 1 {
		return 1
	}
	return env.Channels
}
