package fxchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/fxchain-go/internal/pipeline"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	for _, tc := range []struct {
		field  string
		mutate func(*Config)
	}{
		{"channels", func(c *Config) { c.Channels = 0 }},
		{"channels", func(c *Config) { c.Channels = MaxChannels + 1 }},
		{"placeholder", func(c *Config) { c.Placeholder = "pink" }},
		{"downmix", func(c *Config) { c.Downmix = "mono" }},
		{"source_amp", func(c *Config) { c.SourceAmp = -1 }},
		{"dest_amp", func(c *Config) { c.DestAmp = 5 }},
		{"fade", func(c *Config) { c.Fade = time.Minute }},
	} {
		c := DefaultConfig()
		tc.mutate(&c)
		err := c.Validate()
		require.ErrorIs(t, err, ErrInvalidParamRange)
		var e *Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, tc.field, e.Field)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 0
	_, err := New(BuiltinCatalog(), NewOfflineEngine(8000, 2), cfg)
	require.ErrorIs(t, err, ErrInvalidParamRange)

	cfg = DefaultConfig()
	cfg.RealInput = true
	_, err = New(BuiltinCatalog(), NewOfflineEngine(8000, 2), cfg)
	require.ErrorIs(t, err, ErrInvalidParamRange)

	_, err = New(nil, NewOfflineEngine(8000, 2), DefaultConfig())
	require.Error(t, err)
	_, err = New(BuiltinCatalog(), nil, DefaultConfig())
	require.Error(t, err)
}

func TestSettersRebuildTopology(t *testing.T) {
	k := newKit(t, 8, DefaultConfig())
	require.NoError(t, k.chain.Build(NewSpec(DestMulti, Stage("delay", "d", nil))))
	live := k.chain.sw.Current()

	require.NoError(t, k.chain.SetChannels(4))
	st := status(t, k.chain)
	require.Equal(t, 4, st.Channels)
	require.Equal(t, pipeline.Passthrough, st.Destination.Mode)
	require.NotSame(t, live, k.chain.sw.Current())

	require.NoError(t, k.chain.SetDownmix("weighted"))
	require.Equal(t, "weighted", k.chain.Config().Downmix)
	require.NoError(t, k.chain.Build(NewSpec(DestStereo, Stage("delay", "d", nil))))
	require.Equal(t, pipeline.Weighted, status(t, k.chain).Destination.Strategy)

	require.NoError(t, k.chain.SetPlaceholder("silence"))
	require.Equal(t, "silence", status(t, k.chain).Config.Placeholder)

	live = k.chain.sw.Current()
	require.NoError(t, k.chain.SetFade(10*time.Millisecond))
	require.Same(t, live, k.chain.sw.Current(), "fade changes apply to later commits only")
	require.Equal(t, 10*time.Millisecond, k.chain.Config().Fade)
}

func TestSetterFailureKeepsConfig(t *testing.T) {
	k := newKit(t, 2, DefaultConfig())
	require.NoError(t, k.chain.Build(scenarioSpec()))
	before := status(t, k.chain)
	require.ErrorIs(t, k.chain.SetChannels(0), ErrInvalidParamRange)
	require.ErrorIs(t, k.chain.SetDownmix("mono"), ErrInvalidParamRange)
	require.ErrorIs(t, k.chain.SetRealInput(true), ErrInvalidParamRange)
	require.ErrorIs(t, k.chain.SetFade(-time.Second), ErrInvalidParamRange)
	require.Equal(t, before, status(t, k.chain))
}

func TestSetBeforeBuildOnlyStoresConfig(t *testing.T) {
	k := newKit(t, 2, DefaultConfig())
	require.NoError(t, k.chain.SetChannels(3))
	require.Nil(t, k.chain.sw.Current())
	require.NoError(t, k.chain.Build(NewSpec(DestMulti, Stage("gain", "", nil))))
	st := status(t, k.chain)
	require.Equal(t, 3, st.Channels)
	require.Equal(t, 2, st.Output)
}
