package fxchain

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BlockFrames is the callback size OfflineEngine renders in.
const BlockFrames = 256

// OfflineEngine renders on demand instead of on a device clock. It accepts
// any output width, so multichannel passthrough can be exercised headless.
type OfflineEngine struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	r          Renderer
}

func NewOfflineEngine(sampleRate, channels int) *OfflineEngine {
	return &OfflineEngine{sampleRate: sampleRate, channels: max(channels, 1)}
}

func (e *OfflineEngine) SampleRate() int { return e.sampleRate }
func (e *OfflineEngine) Channels() int   { return e.channels }

func (e *OfflineEngine) Start(r Renderer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.r = r
	return nil
}

func (e *OfflineEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.r = nil
	return nil
}

// Running reports whether a renderer is attached.
func (e *OfflineEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.r != nil
}

// Render produces frames interleaved frames in BlockFrames callbacks.
// A stopped engine renders silence.
func (e *OfflineEngine) Render(frames int) []float32 {
	out := make([]float32, frames*e.channels)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.r == nil {
		return out
	}
	for start := 0; start < frames; start += BlockFrames {
		end := min(start+BlockFrames, frames)
		e.r.Process(out[start*e.channels:end*e.channels], e.channels)
	}
	return out
}

// RenderSeconds renders the given duration.
func (e *OfflineEngine) RenderSeconds(seconds float64) []float32 {
	return e.Render(int(float64(e.sampleRate) * seconds))
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// WriteWAV encodes samples as 16- or 24-bit integer PCM, clipping to [-1, 1].
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate, channels, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return errors.New("bitDepth must be 16 or 24")
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, 1)
	scale := float64(int(1)<<(bitDepth-1) - 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		buf.Data[i] = int(math.Round(v * scale))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
