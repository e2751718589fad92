package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/fxchain-go"
)

func newTestConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	ch, err := fxchain.New(fxchain.BuiltinCatalog(), fxchain.NewOfflineEngine(8000, 2), fxchain.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, ch.Build(fxchain.NewSpec(fxchain.DestStereo,
		fxchain.Stage("tremolo", "x1", map[string]any{"rate": 8}),
		fxchain.Stage("lowpass", "y1", map[string]any{"freq": 500}),
	)))
	var out bytes.Buffer
	return &console{chain: ch, out: &out}, &out
}

func prefixes(t *testing.T, c *console) []string {
	t.Helper()
	st, err := c.chain.Status()
	require.NoError(t, err)
	return st.Prefixes()
}

func TestParseAssignments(t *testing.T) {
	p, err := parseAssignments([]string{"freq=2000", "wave=square", "linked=false", "id=7"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"freq": 2000, "wave": "square", "linked": false, "id": 7}, p)

	_, err = parseAssignments([]string{"freq"})
	require.Error(t, err)
	_, err = parseAssignments([]string{"=3"})
	require.Error(t, err)
}

func TestConsoleEdits(t *testing.T) {
	c, _ := newTestConsole(t)
	for _, line := range []string{
		"insert 1 delay id=d1 time=120",
		"move x1 2",
		"set y1 freq=2000",
		"src amp=0.5",
		"dst amp=2",
		"fade 10ms",
		"",
	} {
		quit, err := c.exec(line)
		require.NoError(t, err, line)
		require.False(t, quit)
	}
	require.Equal(t, []string{"d1", "y1", "x1"}, prefixes(t, c))
	require.Equal(t, 2.0, c.chain.Config().DestAmp)

	_, err := c.exec("remove 0")
	require.NoError(t, err)
	require.Equal(t, []string{"y1", "x1"}, prefixes(t, c))
}

func TestConsoleErrors(t *testing.T) {
	c, _ := newTestConsole(t)
	_, err := c.exec("remove zz")
	require.ErrorIs(t, err, fxchain.ErrStageNotFound)
	_, err = c.exec("set y1 freq=1")
	require.ErrorIs(t, err, fxchain.ErrInvalidParamRange)
	_, err = c.exec("insert 0 Unknown")
	require.ErrorIs(t, err, fxchain.ErrUnknownEffect)
	_, err = c.exec("move x1")
	require.ErrorIs(t, err, errUsage)
	_, err = c.exec("frobnicate")
	require.Error(t, err)
	require.Equal(t, []string{"x1", "y1"}, prefixes(t, c))
}

func TestConsoleStatusAndQuit(t *testing.T) {
	c, out := newTestConsole(t)
	_, err := c.exec("status")
	require.NoError(t, err)
	require.Contains(t, out.String(), "prefix: x1")
	require.Contains(t, out.String(), "mode: stereo")

	quit, err := c.exec("quit")
	require.NoError(t, err)
	require.True(t, quit)
}
