package fxchain

import (
	"errors"
	"fmt"
	"time"

	"github.com/cbegin/fxchain-go/internal/pipeline"
	"github.com/cbegin/fxchain-go/internal/spec"
)

const (
	MaxChannels = 64
	MaxFade     = 10 * time.Second
)

// Config is the chain configuration. Only the setters on Chain change it
// after construction.
type Config struct {
	// Channels is the chain's internal channel count.
	Channels int `json:"channels" yaml:"channels"`
	// RealInput feeds the chain from the configured Input instead of the
	// placeholder.
	RealInput bool `json:"real_input" yaml:"real_input"`
	// Placeholder is "noise" or "silence".
	Placeholder string `json:"placeholder" yaml:"placeholder"`
	// Downmix is "spread" or "weighted".
	Downmix   string        `json:"downmix" yaml:"downmix"`
	SourceAmp float64       `json:"source_amp" yaml:"source_amp"`
	DestAmp   float64       `json:"dest_amp" yaml:"dest_amp"`
	Fade      time.Duration `json:"fade" yaml:"fade"`
}

func DefaultConfig() Config {
	return Config{
		Channels:    2,
		Placeholder: pipeline.PlaceholderNoise.String(),
		Downmix:     pipeline.Spread.String(),
		SourceAmp:   1,
		DestAmp:     1,
		Fade:        50 * time.Millisecond,
	}
}

// Validate reports the first out-of-range field as ErrInvalidParamRange.
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > MaxChannels {
		return spec.InvalidParam("channels", c.Channels, fmt.Errorf("must be in [1, %d]", MaxChannels))
	}
	if _, ok := pipeline.ParsePlaceholder(c.Placeholder); !ok {
		return spec.InvalidParam("placeholder", c.Placeholder, errors.New("must be noise or silence"))
	}
	if _, ok := pipeline.ParseStrategy(c.Downmix); !ok {
		return spec.InvalidParam("downmix", c.Downmix, errors.New("must be spread or weighted"))
	}
	if err := checkAmp("source_amp", c.SourceAmp); err != nil {
		return err
	}
	if err := checkAmp("dest_amp", c.DestAmp); err != nil {
		return err
	}
	if c.Fade < 0 || c.Fade > MaxFade {
		return spec.InvalidParam("fade", c.Fade, fmt.Errorf("must be in [0, %s]", MaxFade))
	}
	return nil
}

func checkAmp(field string, v float64) error {
	if _, err := pipeline.AmpSpec.Coerce(v); err != nil {
		return spec.InvalidParam(field, v, fmt.Errorf("must be in [%g, %g]", pipeline.AmpSpec.Min, pipeline.AmpSpec.Max))
	}
	return nil
}

func (c Config) placeholder() pipeline.Placeholder {
	p, _ := pipeline.ParsePlaceholder(c.Placeholder)
	return p
}

func (c Config) strategy() pipeline.Strategy {
	s, _ := pipeline.ParseStrategy(c.Downmix)
	return s
}

// topology reports whether moving from c to next needs a rebuild.
func (c Config) topology(next Config) bool {
	return c.Channels != next.Channels || c.RealInput != next.RealInput ||
		c.Placeholder != next.Placeholder || c.Downmix != next.Downmix
}

// SetChannels changes the chain's channel count and rebuilds.
func (ch *Chain) SetChannels(n int) error {
	return ch.reconfigure(func(c *Config) { c.Channels = n })
}

// SetRealInput switches between live input and the placeholder source.
func (ch *Chain) SetRealInput(on bool) error {
	return ch.reconfigure(func(c *Config) { c.RealInput = on })
}

// SetPlaceholder selects "noise" or "silence" for the synthetic source.
func (ch *Chain) SetPlaceholder(name string) error {
	return ch.reconfigure(func(c *Config) { c.Placeholder = name })
}

// SetDownmix selects the "spread" or "weighted" stereo strategy.
func (ch *Chain) SetDownmix(name string) error {
	return ch.reconfigure(func(c *Config) { c.Downmix = name })
}

// SetFade changes the crossfade applied by later commits.
func (ch *Chain) SetFade(d time.Duration) error {
	return ch.reconfigure(func(c *Config) { c.Fade = d })
}

func (ch *Chain) SetSourceAmp(v float64) error {
	return ch.SetSource(map[string]any{"amp": v})
}

func (ch *Chain) SetDestAmp(v float64) error {
	return ch.SetDest(map[string]any{"amp": v})
}

// reconfigure applies mutate to a copy of the config, validates it and
// rebuilds the committed spec when the topology changed. The config is left
// untouched if either step fails.
func (ch *Chain) reconfigure(mutate func(*Config)) error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	cur := ch.Config()
	next := cur
	mutate(&next)
	next.SourceAmp, next.DestAmp = cur.SourceAmp, cur.DestAmp
	if err := ch.checkConfig(next); err != nil {
		return err
	}
	if st := ch.state.Load(); st != nil && cur.topology(next) {
		if err := ch.build(st.spec, next); err != nil {
			return err
		}
	}
	ch.cfg.Store(&next)
	ch.log.Debug("chain reconfigured", "config", next)
	return nil
}

func (ch *Chain) checkConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.RealInput && ch.input == nil {
		return spec.InvalidParam("real_input", true, errors.New("no input configured"))
	}
	return nil
}
