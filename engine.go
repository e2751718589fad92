package fxchain

import (
	"errors"
	"fmt"
	"sync"

	intaudio "github.com/cbegin/fxchain-go/internal/audio"
)

// Renderer produces interleaved frames for an output of the given width.
type Renderer interface {
	Process(dst []float32, channels int)
}

// Engine is the real-time audio collaborator. It pulls frames from a
// Renderer on its own schedule between Start and Stop.
type Engine interface {
	SampleRate() int
	Channels() int
	Start(r Renderer) error
	Stop() error
}

type devicePlayer interface {
	Play()
	Stop() error
}

// DeviceEngine plays through the default output device.
type DeviceEngine struct {
	mu         sync.Mutex
	sampleRate int
	player     devicePlayer
	open       func(sampleRate int, r Renderer) (devicePlayer, error)
}

func NewDeviceEngine(sampleRate int) (*DeviceEngine, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	return &DeviceEngine{sampleRate: sampleRate, open: openDevicePlayer}, nil
}

func openDevicePlayer(sampleRate int, r Renderer) (devicePlayer, error) {
	return intaudio.NewPlayer(sampleRate, r)
}

func (e *DeviceEngine) SampleRate() int { return e.sampleRate }

func (e *DeviceEngine) Channels() int { return intaudio.Channels }

// Start replaces any running player. If the old player fails to stop, no new
// one is started.
func (e *DeviceEngine) Start(r Renderer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.player != nil {
		err := e.player.Stop()
		e.player = nil
		if err != nil {
			return fmt.Errorf("stop previous player: %w", err)
		}
	}
	backend, err := e.open(e.sampleRate, r)
	if err != nil {
		return err
	}
	e.player = backend
	e.player.Play()
	return nil
}

func (e *DeviceEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.player == nil {
		return nil
	}
	err := e.player.Stop()
	e.player = nil
	return err
}
