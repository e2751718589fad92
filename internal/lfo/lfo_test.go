package lfo

import (
	"math"
	"testing"
)

func TestLFOSineShape(t *testing.T) {
	l := New(0, 1)
	l.Set(1.0, 1.0, WaveSine)

	sr := 100.0
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}
	if math.Abs(samples[0]) > 1e-9 {
		t.Errorf("sine at phase 0: got %f, want 0", samples[0])
	}
	if math.Abs(samples[25]-1) > 0.01 {
		t.Errorf("sine at phase 0.25: got %f, want 1", samples[25])
	}
	if math.Abs(samples[75]+1) > 0.01 {
		t.Errorf("sine at phase 0.75: got %f, want -1", samples[75])
	}
}

func TestLFOTriangleBasicShape(t *testing.T) {
	l := New(0, 1)
	l.Set(1.0, 1.0, WaveTriangle)

	sr := 100.0
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}
	if math.Abs(samples[0]-(-1.0)) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1.0", samples[0])
	}
	if math.Abs(samples[25]) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", samples[25])
	}
	if math.Abs(samples[50]-1.0) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1.0", samples[50])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(0, 1)
	l.Set(2.0, 1.0, WaveSquare)

	sr := 100.0
	v := l.Sample(sr)
	if math.Abs(v-2.0) > 0.01 {
		t.Errorf("square first half: got %f, want 2.0", v)
	}
	for i := 1; i < 50; i++ {
		l.Sample(sr)
	}
	v = l.Sample(sr)
	if math.Abs(v-(-2.0)) > 0.01 {
		t.Errorf("square second half: got %f, want -2.0", v)
	}
}

func TestLFOPhaseOffset(t *testing.T) {
	a := New(0, 1)
	b := New(0.5, 1)
	a.Set(1, 1, WaveSaw)
	b.Set(1, 1, WaveSaw)
	if va, vb := a.Sample(100), b.Sample(100); math.Abs(va-1) > 1e-9 || math.Abs(vb) > 1e-9 {
		t.Errorf("saw with offsets: got %f and %f, want 1 and 0", va, vb)
	}
}

func TestLFOZeroDepthOrRateReturnsZero(t *testing.T) {
	l := New(0, 1)
	l.Set(0, 5.0, WaveTriangle)
	if v := l.Sample(44100); v != 0 {
		t.Errorf("zero depth should return 0, got %f", v)
	}
	l.Set(1.0, 0, WaveTriangle)
	if v := l.Sample(44100); v != 0 {
		t.Errorf("zero rate should return 0, got %f", v)
	}
	if l.Active() {
		t.Error("zero-rate LFO should not be active")
	}
}

func TestLFORandomIsDeterministicPerSeed(t *testing.T) {
	a := New(0, 42)
	b := New(0, 42)
	a.Set(1, 10, WaveRandom)
	b.Set(1, 10, WaveRandom)
	for i := 0; i < 500; i++ {
		va, vb := a.Sample(1000), b.Sample(1000)
		if va != vb {
			t.Fatalf("sample %d differs: %f vs %f", i, va, vb)
		}
		if math.Abs(va) > 1 {
			t.Fatalf("random sample exceeds depth: %f", va)
		}
	}
	a.Reset()
	c := New(0, 42)
	c.Set(1, 10, WaveRandom)
	if a.Sample(1000) != c.Sample(1000) {
		t.Fatal("reset should restart the random sequence")
	}
}

func TestParseWave(t *testing.T) {
	if ParseWave("square") != WaveSquare {
		t.Error("square not parsed")
	}
	if ParseWave("wobble") != WaveSine {
		t.Error("unknown wave should fall back to sine")
	}
}
