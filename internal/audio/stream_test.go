package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

type rampSource struct{ calls int }

func (s *rampSource) Process(dst []float32, channels int) {
	s.calls++
	for i := range dst {
		dst[i] = float32(i%channels) - 0.5
	}
}

func TestStreamReaderEncodesStereoFloat(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	p := make([]byte, 4*Channels*3+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 4*Channels*3 {
		t.Fatalf("read %d bytes, want whole frames only", n)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		want := float32(i%2) - 0.5
		if got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
	if n, _ := r.Read(p[:3]); n != 0 || src.calls != 1 {
		t.Fatalf("partial frame read should not render, n=%d calls=%d", n, src.calls)
	}
	r.Close()
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("closed reader should return EOF, got %v", err)
	}
}
