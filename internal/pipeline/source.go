package pipeline

import (
	"math/rand/v2"

	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/spec"
)

// Input supplies live input frames.
type Input interface {
	// Read fills block with interleaved frames of the given channel count.
	Read(block []float32, channels int)
}

// Placeholder selects what a synthetic source produces.
type Placeholder int

const (
	PlaceholderNoise Placeholder = iota
	PlaceholderSilence
)

func (p Placeholder) String() string {
	if p == PlaceholderSilence {
		return "silence"
	}
	return "noise"
}

// ParsePlaceholder accepts "noise" or "silence".
func ParsePlaceholder(name string) (Placeholder, bool) {
	switch name {
	case "noise":
		return PlaceholderNoise, true
	case "silence":
		return PlaceholderSilence, true
	}
	return PlaceholderNoise, false
}

// AmpSpec declares the source and destination amplitude controls.
var AmpSpec = control.Num("amp", 1, 0, 4)

// Source is the first unit of every pipeline: live input when an Input is
// given, otherwise a placeholder, scaled by the src_amp control.
type Source struct {
	input       Input
	placeholder Placeholder
	rng         *rand.Rand
	ampCtl      *control.Control
	amp         *control.Smoother
}

func NewSource(input Input, placeholder Placeholder, amp float64, sampleRate int) *Source {
	ctl := control.New(spec.SourcePrefix, AmpSpec, amp)
	return &Source{
		input:       input,
		placeholder: placeholder,
		rng:         rand.New(rand.NewPCG(0x5eed, 0xfeed)),
		ampCtl:      ctl,
		amp:         control.NewSmoother(ctl, sampleRate, control.DefaultSmoothing),
	}
}

// Live reports whether the source reads real input.
func (s *Source) Live() bool { return s.input != nil }

func (s *Source) Amp() *control.Control { return s.ampCtl }

// Render fills block with the next frames.
func (s *Source) Render(block []float32, channels int) {
	switch {
	case s.input != nil:
		s.input.Read(block, channels)
	case s.placeholder == PlaceholderSilence:
		clear(block)
	default:
		for i := range block {
			block[i] = float32(s.rng.Float64()*2 - 1)
		}
	}
	for i := 0; i+channels <= len(block); i += channels {
		a := float32(s.amp.Next())
		for c := 0; c < channels; c++ {
			block[i+c] *= a
		}
	}
}
