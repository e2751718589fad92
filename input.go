package fxchain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// InputStream supplies live input frames to one built pipeline.
type InputStream interface {
	Read(block []float32, channels int)
}

// Input opens a fresh stream for every build.
type Input interface {
	Open() InputStream
}

// WAVInput loops a decoded WAV file. Chain channels map onto file channels
// modulo the file's channel count.
type WAVInput struct {
	samples  []float32
	channels int
	frames   int
}

// LoadWAVInput decodes path and resamples it to sampleRate.
func LoadWAVInput(path string, sampleRate int) (*WAVInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	in, err := DecodeWAVInput(f, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// DecodeWAVInput decodes integer PCM WAV data from r.
func DecodeWAVInput(r io.ReadSeeker, sampleRate int) (*WAVInput, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	bitDepth := int(d.BitDepth)
	if bitDepth == 0 || buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, errors.New("WAV file has no format")
	}
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, errors.New("WAV file has no audio")
	}
	factor := math.Pow(2, float64(bitDepth-1))
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = float32(float64(buf.Data[i]) / factor)
	}
	if src := buf.Format.SampleRate; src > 0 && sampleRate > 0 && src != sampleRate {
		samples = resampleLinear(samples, channels, float64(src)/float64(sampleRate))
		frames = len(samples) / channels
	}
	return &WAVInput{samples: samples, channels: channels, frames: frames}, nil
}

func resampleLinear(in []float32, channels int, step float64) []float32 {
	frames := len(in) / channels
	outFrames := max(int(float64(frames)/step), 1)
	out := make([]float32, outFrames*channels)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * step
		i := int(pos)
		frac := float32(pos - float64(i))
		j := min(i+1, frames-1)
		for c := 0; c < channels; c++ {
			a, b := in[i*channels+c], in[j*channels+c]
			out[f*channels+c] = a + (b-a)*frac
		}
	}
	return out
}

func (w *WAVInput) Channels() int { return w.channels }
func (w *WAVInput) Frames() int   { return w.frames }

func (w *WAVInput) Open() InputStream { return &wavStream{in: w} }

type wavStream struct {
	in  *WAVInput
	pos int
}

func (s *wavStream) Read(block []float32, channels int) {
	w := s.in
	for f := 0; f+channels <= len(block); f += channels {
		frame := w.samples[s.pos*w.channels : s.pos*w.channels+w.channels]
		for c := 0; c < channels; c++ {
			block[f+c] = frame[c%w.channels]
		}
		s.pos++
		if s.pos == w.frames {
			s.pos = 0
		}
	}
}
