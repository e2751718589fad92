package fxchain

import (
	"github.com/cbegin/fxchain-go/internal/pipeline"
	"github.com/cbegin/fxchain-go/internal/spec"
)

// Status is a read-only snapshot of a chain.
type Status struct {
	ID      string    `json:"id" yaml:"id"`
	Built   bool      `json:"built" yaml:"built"`
	Playing bool      `json:"playing" yaml:"playing"`
	Offset  int       `json:"offset" yaml:"offset"`
	Spec    ChainSpec `json:"spec" yaml:"spec"`
	Entries []Entry   `json:"entries" yaml:"entries"`
	// Channels is the chain's internal width, Output the width after the
	// destination and Engine the engine's output width.
	Channels    int             `json:"channels" yaml:"channels"`
	Output      int             `json:"output" yaml:"output"`
	Engine      int             `json:"engine" yaml:"engine"`
	Destination DestinationPlan `json:"destination" yaml:"destination"`
	Config      Config          `json:"config" yaml:"config"`
}

// Status reports the committed spec, its registry, channel counts and the
// source and downmix settings.
func (ch *Chain) Status() (Status, error) {
	if ch.freed.Load() {
		return Status{}, spec.Plain(ErrChainFreed)
	}
	cfg := ch.Config()
	st := Status{
		ID:       ch.id.String(),
		Playing:  ch.playing.Load(),
		Offset:   ch.sw.Offset(),
		Entries:  []Entry{},
		Channels: cfg.Channels,
		Engine:   ch.engine.Channels(),
		Config:   cfg,
	}
	if cur := ch.state.Load(); cur != nil {
		st.Built = true
		st.Spec = cur.spec.Clone()
		st.Entries = cur.registry.Entries()
		st.Channels = cur.pipeline.Channels()
		st.Output = cur.pipeline.OutChannels()
		st.Destination = cur.pipeline.Destination()
	} else {
		st.Destination = pipeline.ResolveDestination(spec.DestMulti, st.Engine, cfg.Channels, cfg.strategy())
	}
	return st, nil
}

// Prefixes returns the committed prefixes in position order.
func (s Status) Prefixes() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Prefix
	}
	return out
}
