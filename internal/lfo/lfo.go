package lfo

import (
	"math"
	"math/rand/v2"
)

// Wave selects the LFO waveform.
type Wave int

const (
	WaveSine Wave = iota
	WaveTriangle
	WaveSquare
	WaveSaw
	WaveRandom
)

// WaveNames lists waveform names in Wave order, for choice parameters.
var WaveNames = []string{"sine", "triangle", "square", "saw", "random"}

// ParseWave maps a waveform name to its Wave. Unknown names fall back to sine.
func ParseWave(name string) Wave {
	for i, n := range WaveNames {
		if n == name {
			return Wave(i)
		}
	}
	return WaveSine
}

// LFO is a low-frequency oscillator producing one modulation value per sample.
// Each effect owns its own LFO; the phase is not shared across stages.
type LFO struct {
	depth   float64
	rateHz  float64
	wave    Wave
	phase   float64 // [0, 1)
	offset  float64
	held    float64
	rng     *rand.Rand
	seed    uint64
	started bool
}

// New returns an LFO with the given starting phase in [0, 1). Phase offsets let
// multichannel effects decorrelate their channels.
func New(phase float64, seed uint64) *LFO {
	l := &LFO{seed: seed}
	l.offset = phase - math.Floor(phase)
	l.phase = l.offset
	l.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return l
}

// Set configures depth, rate and waveform. Out-of-range waveforms become sine.
func (l *LFO) Set(depth, rateHz float64, w Wave) {
	l.depth = depth
	l.rateHz = rateHz
	if w < WaveSine || w > WaveRandom {
		w = WaveSine
	}
	l.wave = w
}

// Sample advances the LFO by one sample and returns a value in [-depth, +depth].
func (l *LFO) Sample(sampleRate float64) float64 {
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 {
		return 0
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(l.seed, l.seed^0x9e3779b97f4a7c15))
	}
	if !l.started && l.wave == WaveRandom {
		l.held = l.rng.Float64()*2 - 1
	}
	l.started = true

	var v float64
	switch l.wave {
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case WaveSaw:
		v = 1 - 2*l.phase
	case WaveRandom:
		v = l.held
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}

	l.phase += l.rateHz / sampleRate
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
		if l.wave == WaveRandom {
			l.held = l.rng.Float64()*2 - 1
		}
	}
	return v * l.depth
}

// Unipolar maps Sample into [0, depth].
func (l *LFO) Unipolar(sampleRate float64) float64 {
	return 0.5 * (l.Sample(sampleRate) + l.depth)
}

// Reset returns the LFO to its starting phase and reseeds the random source.
func (l *LFO) Reset() {
	l.phase = l.offset
	l.held = 0
	l.started = false
	l.rng = rand.New(rand.NewPCG(l.seed, l.seed^0x9e3779b97f4a7c15))
}

// Active reports whether the LFO produces any modulation.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}
