package pipeline

import (
	"math"

	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/spec"
)

// Mode is the destination routing mode.
type Mode int

const (
	Passthrough Mode = iota
	Stereo
)

func (m Mode) String() string {
	if m == Stereo {
		return "stereo"
	}
	return "passthrough"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Strategy picks the stereo downmix.
type Strategy int

const (
	// Spread pans channels evenly from left to right at equal power.
	Spread Strategy = iota
	// Weighted sends channel 0 left, channel 1 right and blends the rest
	// into both sides by a BlendPolicy.
	Weighted
)

func (s Strategy) String() string {
	if s == Weighted {
		return "weighted"
	}
	return "spread"
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseStrategy accepts "spread" or "weighted".
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "spread":
		return Spread, true
	case "weighted":
		return Weighted, true
	}
	return Spread, false
}

// BlendPolicy returns the left and right weights for channel ch (ch >= 2) of n
// in a weighted downmix.
type BlendPolicy func(ch, n int) (l, r float64)

// EqualBlend sends extra channels to both sides at half level.
func EqualBlend(ch, n int) (float64, float64) { return 0.5, 0.5 }

// Plan is a resolved destination.
type Plan struct {
	Mode        Mode     `json:"mode" yaml:"mode"`
	Strategy    Strategy `json:"strategy" yaml:"strategy"`
	InChannels  int      `json:"in" yaml:"in"`
	OutChannels int      `json:"out" yaml:"out"`
}

// ResolveDestination produces a stereo plan when tag is the stereo kind or the
// engine has at most two output channels; otherwise channels pass through.
func ResolveDestination(tag string, engineChannels, chainChannels int, pref Strategy) Plan {
	if tag == spec.DestStereo || engineChannels <= 2 {
		return Plan{Mode: Stereo, Strategy: pref, InChannels: chainChannels, OutChannels: 2}
	}
	return Plan{Mode: Passthrough, Strategy: pref, InChannels: chainChannels, OutChannels: chainChannels}
}

// Destination maps chain channels to output channels and applies dst_amp.
type Destination struct {
	plan   Plan
	matrix [][2]float32 // per input channel, stereo plans only
	ampCtl *control.Control
	amp    *control.Smoother
}

func NewDestination(plan Plan, blend BlendPolicy, amp float64, sampleRate int) *Destination {
	ctl := control.New(spec.DestPrefix, AmpSpec, amp)
	d := &Destination{
		plan:   plan,
		ampCtl: ctl,
		amp:    control.NewSmoother(ctl, sampleRate, control.DefaultSmoothing),
	}
	if plan.Mode == Stereo {
		if blend == nil {
			blend = EqualBlend
		}
		d.matrix = downmixMatrix(plan.Strategy, plan.InChannels, blend)
	}
	return d
}

func downmixMatrix(s Strategy, n int, blend BlendPolicy) [][2]float32 {
	m := make([][2]float32, n)
	if n == 1 {
		m[0] = [2]float32{1, 1}
		return m
	}
	switch s {
	case Weighted:
		m[0] = [2]float32{1, 0}
		m[1] = [2]float32{0, 1}
		for ch := 2; ch < n; ch++ {
			l, r := blend(ch, n)
			m[ch] = [2]float32{float32(l), float32(r)}
		}
	default:
		comp := 1 / math.Sqrt(float64(n))
		for ch := 0; ch < n; ch++ {
			pos := float64(ch) / float64(n-1) // 0 = left, 1 = right
			theta := pos * math.Pi / 2
			m[ch] = [2]float32{float32(math.Cos(theta) * comp), float32(math.Sin(theta) * comp)}
		}
	}
	return m
}

func (d *Destination) Plan() Plan { return d.plan }

func (d *Destination) Amp() *control.Control { return d.ampCtl }

// Render writes len(dst)/OutChannels frames from src, which holds
// InChannels-wide frames.
func (d *Destination) Render(dst, src []float32) {
	in, out := d.plan.InChannels, d.plan.OutChannels
	frames := min(len(dst)/out, len(src)/in)
	for f := 0; f < frames; f++ {
		a := float32(d.amp.Next())
		s := src[f*in : f*in+in]
		o := dst[f*out : f*out+out]
		if d.plan.Mode == Passthrough {
			for c := range o {
				o[c] = s[c] * a
			}
			continue
		}
		var l, r float32
		for c, g := range d.matrix {
			l += s[c] * g[0]
			r += s[c] * g[1]
		}
		o[0], o[1] = l*a, r*a
	}
}
