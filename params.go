package fxchain

import (
	"errors"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
	"github.com/cbegin/fxchain-go/internal/spec"
)

var errNotLive = errors.New("not a live parameter")

// SetFx updates live controls of the stage ref resolves to. Each name
// addresses the control {prefix}_{name}. All values are checked before any
// is applied; the spec and registry are not touched.
func (ch *Chain) SetFx(ref Ref, params map[string]any) error {
	if ch.freed.Load() {
		return spec.Plain(ErrChainFreed)
	}
	st := ch.state.Load()
	if st == nil {
		return spec.StageNotFound(ref)
	}
	e, err := st.registry.Resolve(ref)
	if err != nil {
		return err
	}
	return ch.apply(e.Prefix, params, func(k control.Key) (*control.Control, bool) {
		return st.pipeline.Control(k)
	})
}

// SetSource updates the source controls (amp).
func (ch *Chain) SetSource(params map[string]any) error {
	return ch.setEndpoint(spec.SourcePrefix, &ch.srcAmp, params)
}

// SetDest updates the destination controls (amp).
func (ch *Chain) SetDest(params map[string]any) error {
	return ch.setEndpoint(spec.DestPrefix, &ch.dstAmp, params)
}

// setEndpoint checks params against a fixed namespace, keeps the amplitude
// for later builds and applies it to the committed pipeline. The level is
// stored before the pipeline is loaded, and build syncs it after each commit,
// so an update racing a rebuild lands on one of the two pipelines.
func (ch *Chain) setEndpoint(prefix string, level *atomic.Uint64, params map[string]any) error {
	if ch.freed.Load() {
		return spec.Plain(ErrChainFreed)
	}
	amp := control.New(prefix, pipeline.AmpSpec, loadLevel(level))
	err := ch.apply(prefix, params, func(k control.Key) (*control.Control, bool) {
		return amp, k == amp.Key()
	})
	if err != nil || len(params) == 0 {
		return err
	}
	storeLevel(level, amp.Value())
	if st := ch.state.Load(); st != nil {
		if c, ok := st.pipeline.Control(amp.Key()); ok {
			c.Store(amp.Value())
		}
	}
	return nil
}

// syncLevels copies the kept source and destination amplitudes onto p.
func (ch *Chain) syncLevels(p *pipeline.Pipeline) {
	for prefix, level := range map[string]*atomic.Uint64{
		spec.SourcePrefix: &ch.srcAmp,
		spec.DestPrefix:   &ch.dstAmp,
	} {
		if c, ok := p.Control(control.Key{Prefix: prefix, Name: pipeline.AmpSpec.Name}); ok {
			c.Store(loadLevel(level))
		}
	}
}

func (ch *Chain) apply(prefix string, params map[string]any, lookup func(control.Key) (*control.Control, bool)) error {
	type update struct {
		c *control.Control
		v float64
	}
	updates := make([]update, 0, len(params))
	for _, name := range slices.Sorted(maps.Keys(params)) {
		k := control.Key{Prefix: prefix, Name: name}
		raw := params[name]
		c, ok := lookup(k)
		if !ok {
			return spec.InvalidParam(k.String(), raw, errNotLive)
		}
		v, err := c.Spec().Coerce(raw)
		if err != nil {
			var re *control.RangeError
			if errors.As(err, &re) {
				return spec.InvalidParam(k.String(), raw, errors.New(re.Reason))
			}
			return spec.InvalidParam(k.String(), raw, err)
		}
		updates = append(updates, update{c, v})
	}
	for _, u := range updates {
		u.c.Store(u.v)
		ch.log.Debug("control set", "control", u.c.Key().String(), "value", u.v)
	}
	return nil
}
