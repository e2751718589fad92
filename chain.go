package fxchain

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/fxchain-go/internal/address"
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
	"github.com/cbegin/fxchain-go/internal/spec"
)

// state is one commit: the spec, its registry and the pipeline built from
// them. It is replaced whole and never modified.
type state struct {
	spec     ChainSpec
	registry *address.Registry
	pipeline *pipeline.Pipeline
}

// Chain is one independently editable effect chain. Structural operations
// (Build, the edits, the config setters, Play, Stop, Free) are serialized; a
// second one arriving while the first runs fails with ErrChainBusy. Parameter
// updates and Status never wait on them.
type Chain struct {
	id      uuid.UUID
	catalog *catalog.Catalog
	engine  Engine
	log     *slog.Logger
	input   Input
	blend   pipeline.BlendPolicy
	sw      *pipeline.Switch

	mu      sync.Mutex
	cfg     atomic.Pointer[Config]
	state   atomic.Pointer[state]
	srcAmp  atomic.Uint64
	dstAmp  atomic.Uint64
	playing atomic.Bool
	freed   atomic.Bool
}

// New creates an empty chain. Nothing sounds until Build and Play.
func New(cat *Catalog, engine Engine, cfg Config, opts ...Option) (*Chain, error) {
	if cat == nil {
		return nil, errors.New("nil catalog")
	}
	if engine == nil {
		return nil, errors.New("nil engine")
	}
	if engine.SampleRate() <= 0 || engine.Channels() <= 0 {
		return nil, fmt.Errorf("engine reports %d Hz with %d channels", engine.SampleRate(), engine.Channels())
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ch := &Chain{
		id:      uuid.New(),
		catalog: cat,
		engine:  engine,
		log:     o.logger,
		input:   o.input,
		blend:   o.blend,
		sw:      pipeline.NewSwitch(engine.SampleRate()),
	}
	if err := ch.checkConfig(cfg); err != nil {
		return nil, err
	}
	ch.cfg.Store(&cfg)
	storeLevel(&ch.srcAmp, cfg.SourceAmp)
	storeLevel(&ch.dstAmp, cfg.DestAmp)
	ch.log = ch.log.With("chain", ch.id.String())
	return ch, nil
}

// ID identifies the chain in logs and status.
func (ch *Chain) ID() uuid.UUID { return ch.id }

// Config returns the current configuration.
func (ch *Chain) Config() Config {
	c := *ch.cfg.Load()
	c.SourceAmp = loadLevel(&ch.srcAmp)
	c.DestAmp = loadLevel(&ch.dstAmp)
	return c
}

func (ch *Chain) lock() (func(), error) {
	if ch.freed.Load() {
		return nil, spec.Plain(ErrChainFreed)
	}
	if !ch.mu.TryLock() {
		return nil, spec.Plain(ErrChainBusy)
	}
	if ch.freed.Load() {
		ch.mu.Unlock()
		return nil, spec.Plain(ErrChainFreed)
	}
	return ch.mu.Unlock, nil
}

// Build validates s, builds a pipeline from it and commits both, replacing
// the live pipeline with a crossfade. On any error the previous commit stays
// live and unchanged.
func (ch *Chain) Build(s ChainSpec) error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return ch.build(s, ch.Config())
}

func (ch *Chain) build(s ChainSpec, cfg Config) error {
	if err := spec.Validate(s, ch.catalog); err != nil {
		ch.log.Warn("chain build rejected", "err", err)
		return err
	}
	s = s.Clone()
	reg := address.Build(s.Stages)
	p, err := ch.assemble(s, reg, cfg)
	if err != nil {
		ch.log.Warn("chain build failed", "err", err)
		return err
	}
	if ch.playing.Load() {
		if err := ch.checkRoute(p.OutChannels(), ch.sw.Offset()); err != nil {
			return err
		}
	}
	ch.state.Store(&state{spec: s, registry: reg, pipeline: p})
	ch.syncLevels(p)
	ch.sw.Commit(p, cfg.Fade)
	ch.log.Info("chain committed",
		"stages", reg.Len(),
		"channels", cfg.Channels,
		"destination", p.Destination().Mode.String(),
		"out", p.OutChannels(),
	)
	return nil
}

// assemble instantiates every stage concurrently. When several fail, the
// error of the lowest position is returned.
func (ch *Chain) assemble(s ChainSpec, reg *address.Registry, cfg Config) (*pipeline.Pipeline, error) {
	env := catalog.Env{SampleRate: ch.engine.SampleRate(), Channels: cfg.Channels}
	entries := reg.Entries()
	stages := make([]pipeline.Stage, len(s.Stages))
	errs := make([]error, len(s.Stages))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range s.Stages {
		g.Go(func() error {
			stages[i], errs[i] = ch.catalog.Instantiate(env, d.Kind, entries[i].Prefix, d.Params)
			return errs[i]
		})
	}
	if g.Wait() != nil {
		for i, err := range errs {
			if err != nil {
				return nil, stageError(i, s.Stages[i].Kind, err)
			}
		}
	}

	var in pipeline.Input
	if cfg.RealInput {
		in = ch.input.Open()
	}
	src := pipeline.NewSource(in, cfg.placeholder(), loadLevel(&ch.srcAmp), env.SampleRate)
	plan := pipeline.ResolveDestination(s.Destination, ch.engine.Channels(), cfg.Channels, cfg.strategy())
	dst := pipeline.NewDestination(plan, ch.blend, loadLevel(&ch.dstAmp), env.SampleRate)
	return pipeline.New(cfg.Channels, src, stages, dst)
}

func stageError(pos int, kind string, err error) error {
	var re *control.RangeError
	if errors.As(err, &re) {
		e := spec.InvalidParam(re.Field, re.Value, errors.New(re.Reason))
		e.Position, e.Effect = pos, kind
		return e
	}
	if errors.Is(err, catalog.ErrUnknownKind) {
		return spec.UnknownEffect(pos, kind)
	}
	return spec.BuilderFailed(pos, kind, err)
}

func (ch *Chain) checkRoute(out, offset int) error {
	if n := ch.engine.Channels(); offset < 0 || offset+out > n {
		return spec.InvalidParam("offset", offset,
			fmt.Errorf("%d output channels do not fit %d engine channels", out, n))
	}
	return nil
}

// Play starts the engine with the chain's output at engine channel offset.
// Starting from stopped clears effect state left from the last run. Calling
// Play again while playing moves the output.
func (ch *Chain) Play(offset int) error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	out := 1
	if st := ch.state.Load(); st != nil {
		out = st.pipeline.OutChannels()
	}
	if err := ch.checkRoute(out, offset); err != nil {
		return err
	}
	ch.sw.Route(offset)
	if !ch.playing.Load() {
		if st := ch.state.Load(); st != nil {
			st.pipeline.Reset()
		}
		if err := ch.engine.Start(ch.sw); err != nil {
			return err
		}
		ch.playing.Store(true)
	}
	ch.log.Info("chain playing", "offset", offset)
	return nil
}

// Stop halts the engine. The committed chain is kept.
func (ch *Chain) Stop() error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return ch.stop()
}

func (ch *Chain) stop() error {
	if !ch.playing.Load() {
		return nil
	}
	ch.playing.Store(false)
	if err := ch.engine.Stop(); err != nil {
		return err
	}
	ch.log.Info("chain stopped")
	return nil
}

// Free stops the chain and releases its pipeline. Every later operation
// fails with ErrChainFreed.
func (ch *Chain) Free() error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	err = ch.stop()
	ch.sw.Commit(nil, 0)
	ch.state.Store(nil)
	ch.freed.Store(true)
	ch.log.Info("chain freed")
	return err
}

func storeLevel(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }

func loadLevel(a *atomic.Uint64) float64 { return math.Float64frombits(a.Load()) }
