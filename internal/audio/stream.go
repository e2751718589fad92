// Package audio plays a sample source on the default output device through
// ebiten's audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Channels is the device output width. ebiten always renders stereo.
const Channels = 2

// SampleSource renders interleaved frames for an output of the given width.
type SampleSource interface {
	Process(dst []float32, channels int)
}

// StreamReader adapts a SampleSource to the 32-bit float little-endian
// stream ebiten expects.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	closed bool
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.EOF
	}
	const frameBytes = Channels * 4
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	need := frames * Channels
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf, Channels)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * frameBytes, nil
}

func (r *StreamReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Short buffer keeps parameter changes responsive.
	pl.SetBufferSize(40 * time.Millisecond)
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()           { p.player.Play() }
func (p *Player) Pause()          { p.player.Pause() }
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
