package fxchain

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 48000, 2)
	require.Len(t, wav, 44+len(samples)*4)
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.EqualValues(t, 3, binary.LittleEndian.Uint16(wav[20:]))
	require.EqualValues(t, 2, binary.LittleEndian.Uint16(wav[22:]))
	require.EqualValues(t, 48000, binary.LittleEndian.Uint32(wav[24:]))
	require.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(wav[48:])))
}

func TestOfflineEngineRendersInBlocks(t *testing.T) {
	e := NewOfflineEngine(8000, 3)
	require.Len(t, e.Render(10), 30)

	calls := 0
	require.NoError(t, e.Start(rendererFunc(func(dst []float32, channels int) {
		calls++
		require.Equal(t, 3, channels)
		require.LessOrEqual(t, len(dst), BlockFrames*3)
		for i := range dst {
			dst[i] = 1
		}
	})))
	out := e.Render(BlockFrames*2 + 10)
	require.Equal(t, 3, calls)
	for _, v := range out {
		require.Equal(t, float32(1), v)
	}
	require.NoError(t, e.Stop())
	require.False(t, e.Running())
}

type rendererFunc func(dst []float32, channels int)

func (f rendererFunc) Process(dst []float32, channels int) { f(dst, channels) }

func writeTestWAV(t *testing.T, samples []float32, sampleRate, channels int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, samples, sampleRate, channels, 16))
	require.NoError(t, f.Close())
	return path
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.25, 1, -1}
	path := writeTestWAV(t, samples, 8000, 2)
	in, err := LoadWAVInput(path, 8000)
	require.NoError(t, err)
	require.Equal(t, 2, in.Channels())
	require.Equal(t, 3, in.Frames())

	s := in.Open()
	block := make([]float32, 4*3)
	s.Read(block, 4)
	// four chain channels over a stereo file: c maps to c%2
	require.InDelta(t, 0.0, block[0], 1e-3)
	require.InDelta(t, 0.5, block[1], 1e-3)
	require.InDelta(t, 0.0, block[2], 1e-3)
	require.InDelta(t, 0.5, block[3], 1e-3)
	require.InDelta(t, -0.5, block[4], 1e-3)
	require.InDelta(t, 1.0, block[8], 1e-3)
	require.InDelta(t, -1.0, block[9], 1e-3)

	s.Read(block[:4], 4)
	require.InDelta(t, 0.0, block[0], 1e-3, "input should loop")
}

func TestWriteWAVRejectsBitDepth(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	require.NoError(t, err)
	defer f.Close()
	require.Error(t, WriteWAV(f, nil, 8000, 1, 8))
}

func TestLoadWAVInputResamples(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = 0.25
	}
	in, err := LoadWAVInput(writeTestWAV(t, samples, 4000, 1), 8000)
	require.NoError(t, err)
	require.Equal(t, 1, in.Channels())
	require.Equal(t, 200, in.Frames())
}

func TestRealInputFeedsChain(t *testing.T) {
	samples := make([]float32, 64)
	for i := range samples {
		samples[i] = 0.5
	}
	in, err := LoadWAVInput(writeTestWAV(t, samples, 8000, 1), 8000)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RealInput = true
	cfg.Fade = 0
	cfg.Downmix = "weighted"
	k := newKit(t, 2, cfg, WithInput(in))
	require.NoError(t, k.chain.Build(NewSpec(DestStereo, Stage("gain", "g", map[string]any{"amp": 2}))))
	require.NoError(t, k.chain.Play(0))
	out := k.engine.Render(16)
	require.InDelta(t, 1.0, out[0], 1e-3)
	require.InDelta(t, 1.0, out[1], 1e-3)

	require.NoError(t, k.chain.SetRealInput(false))
	require.False(t, status(t, k.chain).Config.RealInput)
}
