package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name     string
	priority int
	active   bool
	layer    Layer
	color    RGB
	silent   bool

	ctx    *Context
	deltas []float64
	inputs []InputState
	log    *[]string
	out    Contribution
}

func (r *recorder) Initialize(ctx *Context) {
	r.ctx = ctx
	r.out = Contribution{Colors: make([]RGB, ctx.ButtonCount()), Layer: r.layer}
}

func (r *recorder) Update(deltaMs float64, in InputState) *Contribution {
	r.deltas = append(r.deltas, deltaMs)
	r.inputs = append(r.inputs, in)
	if r.log != nil {
		*r.log = append(*r.log, r.name)
	}
	if r.silent {
		return nil
	}
	for i := range r.out.Colors {
		r.out.Colors[i] = r.color
	}
	return &r.out
}

func (r *recorder) Active() bool  { return r.active }
func (r *recorder) Priority() int { return r.priority }

func newTestContext(t *testing.T, opts ...ContextOption) *Context {
	t.Helper()
	ctx, err := NewContext([]string{"P1_A", "P1_B", "P1_START"}, opts...)
	require.NoError(t, err)
	return ctx
}

func TestNewContext(t *testing.T) {
	ctx := newTestContext(t)
	assert.Equal(t, 3, ctx.ButtonCount())
	assert.Equal(t, map[string]int{"P1_A": 0, "P1_B": 1, "P1_START": 2}, ctx.Index)
	assert.Equal(t, DefaultSeed, ctx.Seed)
	assert.NotNil(t, ctx.Rand)

	_, err := NewContext([]string{"P1_A", "P1_A"})
	assert.Error(t, err)
}

func TestContextSeedIsReproducible(t *testing.T) {
	a := newTestContext(t, WithSeed(42))
	b := newTestContext(t, WithSeed(42))
	assert.Equal(t, a.Rand.Uint64(), b.Rand.Uint64())
}

func TestContextGroup(t *testing.T) {
	ctx := newTestContext(t, WithConfig(Config{
		Groups: map[string][]string{"P1_Action": {"P1_B", "GHOST", "P1_A"}},
	}))
	assert.Equal(t, []int{1, 0}, ctx.Group("P1_Action"))
	assert.Empty(t, ctx.Group("P2_Action"))
}

func TestEngineOrdersByPriorityStably(t *testing.T) {
	var order []string
	e := NewEngine(newTestContext(t), NewMixer(3))
	e.AddEffect(&recorder{name: "overlay-1", priority: 80, active: true, layer: LayerOverlay, log: &order})
	e.AddEffect(&recorder{name: "base", priority: 10, active: true, layer: LayerBase, log: &order})
	e.AddEffect(&recorder{name: "overlay-2", priority: 80, active: true, layer: LayerOverlay, log: &order})
	e.AddEffect(&recorder{name: "tint", priority: 20, active: true, layer: LayerBase, log: &order})

	e.Tick(IdleInput(), 0, false)
	assert.Equal(t, []string{"base", "tint", "overlay-1", "overlay-2"}, order)
	assert.Len(t, e.Effects(), 4)
}

func TestEngineInitializesOnAdd(t *testing.T) {
	ctx := newTestContext(t)
	r := &recorder{active: true}
	NewEngine(ctx, NewMixer(3), r)
	assert.Same(t, ctx, r.ctx)
}

func TestEngineDelta(t *testing.T) {
	r := &recorder{active: true, silent: true}
	e := NewEngine(newTestContext(t), NewMixer(3), r)

	e.Tick(IdleInput(), 1000, false)
	e.Tick(IdleInput(), 1016, false)
	e.Tick(IdleInput(), 1010, false) // clock went backwards
	e.Tick(IdleInput(), 1030, false)
	e.ResetClock()
	e.Tick(IdleInput(), 5000, false)

	assert.Equal(t, []float64{0, 16, 0, 20, 0}, r.deltas)
}

func TestEngineSkipsInactiveAndNil(t *testing.T) {
	inactive := &recorder{active: false, layer: LayerBase, color: RGB{255, 0, 0}}
	silent := &recorder{active: true, silent: true}
	lit := &recorder{active: true, layer: LayerBase, color: RGB{0, 0, 90}}
	e := NewEngine(newTestContext(t), NewMixer(3), inactive, silent, lit)

	frame := e.Tick(IdleInput(), 0, false)
	assert.Empty(t, inactive.deltas)
	assert.Len(t, silent.deltas, 1)
	assert.Equal(t, []RGB{{0, 0, 90}, {0, 0, 90}, {0, 0, 90}}, frame)
}

func TestEngineStampsInputCopy(t *testing.T) {
	r := &recorder{active: true, silent: true}
	e := NewEngine(newTestContext(t), NewMixer(3), r)

	in := InputState{Pressed: NewButtonSet("P1_A"), IdleMs: 12, NowMs: 1}
	e.Tick(in, 250, false)

	require.Len(t, r.inputs, 1)
	assert.Equal(t, 250.0, r.inputs[0].NowMs)
	assert.True(t, r.inputs[0].Pressed.Has("P1_A"))
	assert.Equal(t, 1.0, in.NowMs)
}

func TestEngineAttractGate(t *testing.T) {
	attract := &recorder{active: true, layer: LayerAttract, color: RGB{0, 200, 0}}
	e := NewEngine(newTestContext(t), NewMixer(3), attract)

	assert.Equal(t, []RGB{{}, {}, {}}, e.Tick(IdleInput(), 0, false))
	assert.Equal(t, []RGB{{0, 200, 0}, {0, 200, 0}, {0, 200, 0}}, e.Tick(IdleInput(), 10, true))
}

func TestEngineTickNowUsesClock(t *testing.T) {
	now := 100.0
	r := &recorder{active: true, layer: LayerAttract, color: RGB{0, 0, 50}}
	e := NewEngine(newTestContext(t, WithClock(func() float64 { return now })), NewMixer(3), r)

	var seen []float64
	input := func(nowMs float64) (InputState, bool) {
		seen = append(seen, nowMs)
		return IdleInput(), nowMs > 120
	}

	assert.Equal(t, []RGB{{}, {}, {}}, e.TickNow(input))
	now = 133
	assert.Equal(t, []RGB{{0, 0, 50}, {0, 0, 50}, {0, 0, 50}}, e.TickNow(input))

	assert.Equal(t, []float64{100, 133}, seen)
	assert.Equal(t, []float64{0, 33}, r.deltas)
	assert.Equal(t, 133.0, r.inputs[1].NowMs)
}

func TestEnginePanicsPropagate(t *testing.T) {
	e := NewEngine(newTestContext(t), NewMixer(3), &panicky{})
	assert.Panics(t, func() { e.Tick(IdleInput(), 0, false) })
}

type panicky struct{}

func (panicky) Initialize(*Context) {}
func (panicky) Update(float64, InputState) *Contribution {
	panic("effect exploded")
}
func (panicky) Active() bool  { return true }
func (panicky) Priority() int { return 0 }

func TestInputPressedCount(t *testing.T) {
	ctx := newTestContext(t)
	in := InputState{Pressed: NewButtonSet("P1_A", "COIN_DOOR", "P1_START")}
	assert.Equal(t, 2, in.PressedCount(ctx))
	assert.Equal(t, 0, IdleInput().PressedCount(ctx))
	assert.True(t, IdleInput().InMenu)
}

func TestRGB(t *testing.T) {
	assert.Equal(t, RGB{127, 63, 0}, RGB{255, 127, 1}.Scale(0.5))
	assert.Equal(t, RGB{255, 127, 1}, RGB{255, 127, 1}.Scale(3))
	assert.True(t, RGB{9, 9, 9}.Scale(-1).IsBlack())
	assert.Equal(t, "#ff8000", RGB{255, 128, 0}.Hex())
	assert.Equal(t, uint8(255), ClampU8(300))
	assert.Equal(t, uint8(0), ClampU8(-3))
	assert.Equal(t, uint8(12), ClampU8(12.9))
}
