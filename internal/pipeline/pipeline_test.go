package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/cbegin/fxchain-go/internal/control"
)

type constInput float32

func (c constInput) Read(block []float32, channels int) {
	for i := range block {
		block[i] = float32(c)
	}
}

type rampInput struct{}

func (rampInput) Read(block []float32, channels int) {
	for i := range block {
		block[i] = float32(i%channels + 1)
	}
}

type scale struct {
	ctl    *control.Control
	resets int
}

func (s *scale) Process(block []float32, channels int) {
	g := float32(s.ctl.Value())
	for i := range block {
		block[i] *= g
	}
}

func (s *scale) Reset() { s.resets++ }

func scaleStage(prefix string, g float64) Stage {
	ctl := control.New(prefix, control.Num("amp", 1, 0, 8), g)
	return Stage{Prefix: prefix, Kind: "gain", Unit: &scale{ctl: ctl}, Controls: []*control.Control{ctl}}
}

func build(t *testing.T, in Input, channels int, plan Plan, stages ...Stage) *Pipeline {
	t.Helper()
	src := NewSource(in, PlaceholderSilence, 1, 1000)
	p, err := New(channels, src, stages, NewDestination(plan, nil, 1, 1000))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func TestResolveDestination(t *testing.T) {
	for _, tc := range []struct {
		tag    string
		engine int
		chain  int
		mode   Mode
		out    int
	}{
		{"multi", 2, 4, Stereo, 2},
		{"multi", 1, 4, Stereo, 2},
		{"multi", 8, 4, Passthrough, 4},
		{"stereo", 8, 4, Stereo, 2},
		{"stereo", 2, 2, Stereo, 2},
	} {
		p := ResolveDestination(tc.tag, tc.engine, tc.chain, Weighted)
		if p.Mode != tc.mode || p.OutChannels != tc.out || p.InChannels != tc.chain || p.Strategy != Weighted {
			t.Fatalf("%s/%d/%d: got %+v", tc.tag, tc.engine, tc.chain, p)
		}
	}
}

func TestPassthroughCopiesChannels(t *testing.T) {
	plan := ResolveDestination("multi", 8, 3, Spread)
	p := build(t, rampInput{}, 3, plan, scaleStage("fx0", 2))
	out := make([]float32, 3*4)
	p.Process(out)
	for f := 0; f < 4; f++ {
		for c := 0; c < 3; c++ {
			if got, want := out[f*3+c], float32(2*(c+1)); got != want {
				t.Fatalf("frame %d ch %d = %v, want %v", f, c, got, want)
			}
		}
	}
}

func TestSpreadDownmixIsBalanced(t *testing.T) {
	plan := ResolveDestination("stereo", 2, 4, Spread)
	p := build(t, constInput(1), 4, plan)
	out := make([]float32, 2*8)
	p.Process(out)
	l, r := out[14], out[15]
	if math.Abs(float64(l-r)) > 1e-5 {
		t.Fatalf("spread of equal channels should be centred, got l=%v r=%v", l, r)
	}
	m := downmixMatrix(Spread, 4, EqualBlend)
	var power float64
	for _, g := range m {
		power += float64(g[0]*g[0] + g[1]*g[1])
	}
	if math.Abs(power-1) > 1e-5 {
		t.Fatalf("spread matrix power = %v, want 1", power)
	}
}

func TestWeightedDownmix(t *testing.T) {
	plan := ResolveDestination("stereo", 2, 3, Weighted)
	p := build(t, rampInput{}, 3, plan)
	out := make([]float32, 2)
	p.Process(out)
	// ch0=1 left, ch1=2 right, ch2=3 blended at half level into both
	if out[0] != 2.5 || out[1] != 3.5 {
		t.Fatalf("weighted downmix = %v, want [2.5 3.5]", out)
	}
	m := downmixMatrix(Weighted, 3, func(ch, n int) (float64, float64) { return 1, 0 })
	if m[2] != [2]float32{1, 0} {
		t.Fatalf("custom blend ignored: %v", m[2])
	}
}

func TestMonoChainFeedsBothSides(t *testing.T) {
	for _, s := range []Strategy{Spread, Weighted} {
		plan := ResolveDestination("multi", 2, 1, s)
		p := build(t, constInput(0.5), 1, plan)
		out := make([]float32, 2)
		p.Process(out)
		if out[0] != 0.5 || out[1] != 0.5 {
			t.Fatalf("%v: mono output = %v", s, out)
		}
	}
}

func TestPipelineControls(t *testing.T) {
	plan := ResolveDestination("stereo", 2, 2, Spread)
	p := build(t, nil, 2, plan, scaleStage("fx0", 1), scaleStage("a", 1))
	var keys []string
	for _, c := range p.Controls() {
		keys = append(keys, c.Key().String())
	}
	want := []string{"src_amp", "fx0_amp", "a_amp", "dst_amp"}
	if len(keys) != len(want) {
		t.Fatalf("controls = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("controls = %v, want %v", keys, want)
		}
	}
	if _, ok := p.Control(control.Key{Prefix: "a", Name: "amp"}); !ok {
		t.Fatalf("a_amp not found")
	}
	src := NewSource(nil, PlaceholderSilence, 1, 1000)
	_, err := New(2, src, []Stage{scaleStage("x", 1), scaleStage("x", 1)}, NewDestination(plan, nil, 1, 1000))
	if err == nil {
		t.Fatalf("duplicate control keys should be rejected")
	}
}

func TestNoisePlaceholderIsBounded(t *testing.T) {
	s := NewSource(nil, PlaceholderNoise, 1, 1000)
	block := make([]float32, 512)
	s.Render(block, 2)
	var nonzero bool
	for _, v := range block {
		if v < -1 || v > 1 {
			t.Fatalf("noise sample out of range: %v", v)
		}
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Fatalf("noise placeholder produced silence")
	}
	if s.Live() {
		t.Fatalf("placeholder source should not report live input")
	}
}

func TestSwitchRoutesAtOffset(t *testing.T) {
	sw := NewSwitch(1000)
	sw.Route(1)
	sw.Commit(build(t, constInput(1), 2, ResolveDestination("stereo", 4, 2, Weighted)), 0)
	out := make([]float32, 4*2)
	sw.Process(out, 4)
	want := []float32{0, 1, 1, 0, 0, 1, 1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
	sw.Route(3)
	sw.Process(out, 4)
	if out[3] != 1 || out[0] != 0 || out[1] != 0 || out[2] != 0 {
		t.Fatalf("overflowing channels should be dropped, got %v", out)
	}
}

func TestSwitchCrossfadesAtEqualPower(t *testing.T) {
	sw := NewSwitch(1000)
	plan := ResolveDestination("stereo", 2, 2, Weighted)
	sw.Commit(build(t, constInput(1), 2, plan), 0)
	out := make([]float32, 2*10)
	sw.Process(out, 2)
	if out[0] != 1 {
		t.Fatalf("immediate commit should be audible, got %v", out[0])
	}
	sw.Commit(build(t, constInput(1), 2, plan), 100*time.Millisecond)
	out = make([]float32, 2*50)
	sw.Process(out, 2)
	// identical signals crossfaded at equal power sum to cos+sin >= 1
	for f := 0; f < 50; f++ {
		if out[f*2] < 1-1e-5 || out[f*2] > float32(math.Sqrt2)+1e-5 {
			t.Fatalf("frame %d = %v outside equal-power envelope", f, out[f*2])
		}
	}
	if mid := out[2*49]; mid < 1.3 {
		t.Fatalf("mid-fade level = %v, want near sqrt2", mid)
	}
	out = make([]float32, 2*100)
	sw.Process(out, 2)
	if last := out[len(out)-2]; math.Abs(float64(last-1)) > 1e-5 {
		t.Fatalf("fade should settle at unity, got %v", last)
	}
}

func TestSwitchCommitNilFadesOut(t *testing.T) {
	sw := NewSwitch(1000)
	plan := ResolveDestination("stereo", 2, 2, Weighted)
	p := build(t, constInput(1), 2, plan)
	sw.Commit(p, 0)
	if sw.Current() != p {
		t.Fatalf("current should be the committed pipeline")
	}
	sw.Commit(nil, 0)
	out := make([]float32, 4)
	sw.Process(out, 2)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("nil commit should silence output, got %v", out)
		}
	}
}

func leftChannel(sw *Switch, frames int) []float32 {
	out := make([]float32, 2*frames)
	sw.Process(out, 2)
	left := make([]float32, frames)
	for f := range left {
		left[f] = out[2*f]
	}
	return left
}

func TestSwitchRecommitDuringFadeIsContinuous(t *testing.T) {
	plan := ResolveDestination("stereo", 2, 2, Weighted)
	loud := func() *Pipeline { return build(t, constInput(1), 2, plan) }
	silent := func() *Pipeline { return build(t, constInput(1), 2, plan, scaleStage("fx0", 0)) }
	fade := 100 * time.Millisecond

	for _, tc := range []struct {
		name  string
		first *Pipeline
		steps []*Pipeline
		end   float32
	}{
		{"outgoing keeps fading", loud(), []*Pipeline{silent(), silent()}, 0},
		{"incoming fades out from its level", silent(), []*Pipeline{loud(), silent()}, 0},
		{"back and forth", loud(), []*Pipeline{silent(), loud(), silent(), loud()}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sw := NewSwitch(1000)
			sw.Commit(tc.first, 0)
			var seq []float32
			seq = append(seq, leftChannel(sw, 10)...)
			for _, p := range tc.steps {
				sw.Commit(p, fade)
				seq = append(seq, leftChannel(sw, 30)...)
			}
			seq = append(seq, leftChannel(sw, 300)...)
			for i := 1; i < len(seq); i++ {
				if d := math.Abs(float64(seq[i] - seq[i-1])); d > 0.05 {
					t.Fatalf("jump of %v at frame %d (%v -> %v)", d, i, seq[i-1], seq[i])
				}
			}
			if last := seq[len(seq)-1]; math.Abs(float64(last-tc.end)) > 1e-5 {
				t.Fatalf("output settles at %v, want %v", last, tc.end)
			}
		})
	}
}

func TestSwitchDropsFinishedFades(t *testing.T) {
	plan := ResolveDestination("stereo", 2, 2, Weighted)
	sw := NewSwitch(1000)
	for range 4 {
		sw.Commit(build(t, constInput(1), 2, plan), 20*time.Millisecond)
		leftChannel(sw, 5)
	}
	if len(sw.outs) == 0 {
		t.Fatalf("superseded pipelines should still be fading")
	}
	leftChannel(sw, 20)
	if len(sw.outs) != 0 {
		t.Fatalf("finished fades should be dropped, %d left", len(sw.outs))
	}
}

func TestPipelineResetReachesEveryStage(t *testing.T) {
	a, b := scaleStage("fx0", 1), scaleStage("fx1", 1)
	p := build(t, constInput(1), 2, ResolveDestination("stereo", 2, 2, Weighted), a, b)
	p.Reset()
	for _, st := range []Stage{a, b} {
		if n := st.Unit.(*scale).resets; n != 1 {
			t.Fatalf("%s reset %d times, want 1", st.Prefix, n)
		}
	}
}
