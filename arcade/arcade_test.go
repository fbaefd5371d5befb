package arcade

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/lights"
)

type scriptedSource struct {
	mu     sync.Mutex
	script []Events
}

func (s *scriptedSource) Poll() Events {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return Events{InMenu: true}
	}
	ev := s.script[0]
	s.script = s.script[1:]
	return ev
}

type recordingService struct {
	lights int
	frames atomic.Int32

	mu   sync.Mutex
	last []fx.RGB
}

func (s *recordingService) Start(context.Context) {}
func (s *recordingService) Stop()                 {}
func (s *recordingService) LightCount() int       { return s.lights }

func (s *recordingService) SetFrame(_ context.Context, frame []fx.RGB) {
	s.frames.Add(1)
	s.mu.Lock()
	s.last = append(s.last[:0], frame...)
	s.mu.Unlock()
}

// solid paints every button dim red.
type solid struct{ n int }

func (s *solid) Initialize(ctx *fx.Context) { s.n = ctx.ButtonCount() }
func (s *solid) Active() bool               { return true }
func (s *solid) Priority() int              { return 0 }

func (s *solid) Update(float64, fx.InputState) *fx.Contribution {
	colors := make([]fx.RGB, s.n)
	for i := range colors {
		colors[i] = fx.RGB{R: 10}
	}
	return &fx.Contribution{Colors: colors, Layer: fx.LayerBase}
}

func newEngine(t *testing.T, clock func() float64) *fx.Engine {
	t.Helper()
	ctx, err := fx.NewContext([]string{"P1_A", "P1_B"}, fx.WithClock(clock))
	require.NoError(t, err)
	return fx.NewEngine(ctx, fx.NewMixer(ctx.ButtonCount()), &solid{})
}

func TestInputTrackerIdle(t *testing.T) {
	tracker := NewInputTracker(500 * time.Millisecond)
	assert.False(t, tracker.Attract(0))

	in := tracker.Observe(Events{InMenu: true}, 100)
	assert.Equal(t, 0.0, in.IdleMs)
	assert.True(t, in.InMenu)
	assert.Equal(t, 100.0, in.NowMs)

	in = tracker.Observe(Events{}, 550)
	assert.Equal(t, 450.0, in.IdleMs)
	assert.False(t, tracker.Attract(550))

	tracker.Observe(Events{}, 600)
	assert.True(t, tracker.Attract(600))

	in = tracker.Observe(Events{Pressed: []string{"P1_A"}, Held: []string{"P1_A"}}, 700)
	assert.Equal(t, 0.0, in.IdleMs)
	assert.True(t, in.Pressed.Has("P1_A"))
	assert.True(t, in.Held.Has("P1_A"))
	assert.False(t, tracker.Attract(700))

	in = tracker.Observe(Events{Released: []string{"P1_A"}}, 900)
	assert.Equal(t, 200.0, in.IdleMs)
	assert.True(t, in.Released.Has("P1_A"))
	assert.Empty(t, in.Pressed)
}

func TestStepSkipsServicesWithoutLights(t *testing.T) {
	now := 0.0
	engine := newEngine(t, func() float64 { return now })
	lit := &recordingService{lights: 1}
	dark := &recordingService{lights: 0}

	r := &runner{
		engine:   engine,
		source:   &scriptedSource{},
		services: []lights.LightService{lit, dark},
		tracker:  NewInputTracker(time.Second),
	}

	frame := r.step(context.Background())
	now = 16
	r.step(context.Background())

	assert.Equal(t, []fx.RGB{{R: 10}, {R: 10}}, frame)
	assert.Equal(t, int32(2), lit.frames.Load())
	assert.Equal(t, int32(0), dark.frames.Load())
	assert.Equal(t, []fx.RGB{{R: 10}, {R: 10}}, lit.last)
}

func TestStepStopsAfterCancel(t *testing.T) {
	engine := newEngine(t, func() float64 { return 0 })
	service := &recordingService{lights: 1}
	r := &runner{
		engine:   engine,
		source:   &scriptedSource{},
		services: []lights.LightService{service},
		tracker:  NewInputTracker(time.Second),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.step(ctx)
	assert.Equal(t, int32(0), service.frames.Load())
}

func TestStepTracksTheEngineClock(t *testing.T) {
	now := 250.0
	engine := newEngine(t, func() float64 { return now })
	r := &runner{
		engine:  engine,
		source:  &scriptedSource{script: []Events{{Pressed: []string{"P1_A"}}}},
		tracker: NewInputTracker(100 * time.Millisecond),
	}

	r.step(context.Background())
	assert.Equal(t, 250.0, r.tracker.lastPressMs)
	assert.False(t, r.tracker.Attract(250))

	now = 400
	r.step(context.Background())
	assert.Equal(t, 250.0, r.tracker.lastPressMs)
	assert.True(t, r.tracker.Attract(400))
}

func TestRun(t *testing.T) {
	start := time.Now()
	engine := newEngine(t, func() float64 { return float64(time.Since(start).Milliseconds()) })
	service := &recordingService{lights: 1}
	source := &scriptedSource{script: []Events{{Pressed: []string{"P1_A"}}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, Config{FrameInterval: 5 * time.Millisecond, AttractTimeout: time.Minute}, engine, source, service)
	}()

	require.Eventually(t, func() bool { return service.frames.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestIdleSource(t *testing.T) {
	in := NewInputTracker(time.Second).Observe(IdleSource{}.Poll(), 0)
	assert.True(t, in.InMenu)
	assert.False(t, in.InGame)
	assert.Empty(t, in.Pressed)
}
