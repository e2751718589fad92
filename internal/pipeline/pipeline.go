package pipeline

import (
	"fmt"

	"github.com/cbegin/fxchain-go/internal/control"
)

// Pipeline renders source, stages and destination in order. Controls are
// shared with the control side; everything else belongs to the audio thread.
type Pipeline struct {
	channels int
	source   *Source
	stages   []Stage
	dest     *Destination
	controls map[control.Key]*control.Control
	order    []*control.Control
	scratch  []float32
}

// New assembles a pipeline. Control keys must be unique across all units.
func New(channels int, source *Source, stages []Stage, dest *Destination) (*Pipeline, error) {
	if channels < 1 {
		return nil, fmt.Errorf("pipeline: invalid channel count %d", channels)
	}
	if in := dest.Plan().InChannels; in != channels {
		return nil, fmt.Errorf("pipeline: destination expects %d channels, chain has %d", in, channels)
	}
	p := &Pipeline{
		channels: channels,
		source:   source,
		stages:   append([]Stage(nil), stages...),
		dest:     dest,
		controls: make(map[control.Key]*control.Control),
	}
	add := func(c *control.Control) error {
		if _, dup := p.controls[c.Key()]; dup {
			return fmt.Errorf("pipeline: duplicate control %s", c.Key())
		}
		p.controls[c.Key()] = c
		p.order = append(p.order, c)
		return nil
	}
	if err := add(source.Amp()); err != nil {
		return nil, err
	}
	for _, st := range p.stages {
		for _, c := range st.Controls {
			if err := add(c); err != nil {
				return nil, err
			}
		}
	}
	if err := add(dest.Amp()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Channels() int { return p.channels }

func (p *Pipeline) OutChannels() int { return p.dest.Plan().OutChannels }

func (p *Pipeline) Destination() Plan { return p.dest.Plan() }

// Control returns the control registered under k.
func (p *Pipeline) Control(k control.Key) (*control.Control, bool) {
	c, ok := p.controls[k]
	return c, ok
}

// Controls lists controls from source through destination.
func (p *Pipeline) Controls() []*control.Control { return p.order }

// Process renders len(dst)/OutChannels frames into dst.
func (p *Pipeline) Process(dst []float32) {
	frames := len(dst) / p.OutChannels()
	n := frames * p.channels
	if cap(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	block := p.scratch[:n]
	p.source.Render(block, p.channels)
	for _, st := range p.stages {
		st.Unit.Process(block, p.channels)
	}
	p.dest.Render(dst, block)
}

// Reset clears the state of every stage.
func (p *Pipeline) Reset() {
	for _, st := range p.stages {
		st.Unit.Reset()
	}
}
