package control

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testSchema() []Spec {
	return []Spec{
		Num("freq", 1000, 20, 20000).WithUnit("Hz"),
		Num("size", 64, 1, 4096).Fixed(),
		Toggle("hold", false),
		OneOf("wave", "sine", "sine", "square", "triangle"),
	}
}

func TestResolveFillsDefaults(t *testing.T) {
	v, err := Resolve("fx0", testSchema(), nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := v.Num("freq"); got != 1000 {
		t.Fatalf("freq = %v, want 1000", got)
	}
	if v.Bool("hold") {
		t.Fatalf("hold should default to false")
	}
	if got := v.Choice("wave"); got != "sine" {
		t.Fatalf("wave = %q, want sine", got)
	}
	if v.Control("size") != nil {
		t.Fatalf("fixed parameter should not get a control")
	}
	names := []string{}
	for _, c := range v.Controls() {
		names = append(names, c.Key().String())
	}
	want := []string{"fx0_freq", "fx0_hold", "fx0_wave"}
	if len(names) != len(want) {
		t.Fatalf("controls = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("controls = %v, want %v", names, want)
		}
	}
}

func TestResolveCoercesValues(t *testing.T) {
	v, err := Resolve("y1", testSchema(), map[string]any{
		"freq": 500,
		"hold": "true",
		"wave": "Square",
		"size": "128",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v.Num("freq") != 500 || !v.Bool("hold") || v.Choice("wave") != "square" || v.Int("size") != 128 {
		t.Fatalf("unexpected values freq=%v hold=%v wave=%q size=%v",
			v.Num("freq"), v.Bool("hold"), v.Choice("wave"), v.Int("size"))
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	for _, tc := range []struct {
		name  string
		raw   map[string]any
		field string
	}{
		{"unknown key", map[string]any{"bogus": 1}, "x_bogus"},
		{"out of range", map[string]any{"freq": 5}, "x_freq"},
		{"not a number", map[string]any{"freq": "loud"}, "x_freq"},
		{"bad choice", map[string]any{"wave": "saw"}, "x_wave"},
		{"nan", map[string]any{"freq": math.NaN()}, "x_freq"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve("x", testSchema(), tc.raw)
			var re *RangeError
			if !errors.As(err, &re) {
				t.Fatalf("expected RangeError, got %v", err)
			}
			if re.Field != tc.field {
				t.Fatalf("field = %q, want %q", re.Field, tc.field)
			}
		})
	}
}

func TestControlSetChecksRange(t *testing.T) {
	c := New("y1", Num("freq", 500, 20, 20000), 500)
	if err := c.Set(2000); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Value() != 2000 {
		t.Fatalf("value = %v, want 2000", c.Value())
	}
	err := c.Set(1e6)
	var re *RangeError
	if !errors.As(err, &re) || re.Field != "y1_freq" {
		t.Fatalf("expected y1_freq range error, got %v", err)
	}
	if c.Value() != 2000 {
		t.Fatalf("rejected set must not change value, got %v", c.Value())
	}
}

func TestSmootherConverges(t *testing.T) {
	c := New("g", Num("amp", 0, 0, 1), 0)
	s := NewSmoother(c, 1000, 10*time.Millisecond)
	if s.Next() != 0 {
		t.Fatalf("first sample should start at the target")
	}
	c.Store(1)
	first := s.Next()
	if first <= 0 || first >= 1 {
		t.Fatalf("smoothed value should move gradually, got %v", first)
	}
	for i := 0; i < 1000; i++ {
		s.Next()
	}
	if math.Abs(s.Next()-1) > 1e-6 {
		t.Fatalf("smoother did not converge")
	}
}
