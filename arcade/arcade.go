package arcade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/logging"
	"github.com/scheerer/arcade-button-fx/lights"
)

var logger = logging.New("arcade")

type Config struct {
	FrameInterval  time.Duration
	AttractTimeout time.Duration
}

// Events is what an input source saw since the previous poll.
type Events struct {
	Pressed    []string
	Held       []string
	Released   []string
	InGame     bool
	InMenu     bool
	HasCredits bool
}

type InputSource interface {
	Poll() Events
}

// IdleSource is a cabinet nobody touches, sitting in its menu.
type IdleSource struct{}

func (IdleSource) Poll() Events {
	return Events{InMenu: true}
}

// InputTracker turns polled events into engine input. Idle time counts from
// the last press, or from the first observation when nothing was pressed yet.
type InputTracker struct {
	attractTimeoutMs float64
	lastPressMs      float64
	pressedNow       bool
	started          bool
}

func NewInputTracker(attractTimeout time.Duration) *InputTracker {
	return &InputTracker{attractTimeoutMs: float64(attractTimeout.Milliseconds())}
}

func (t *InputTracker) Observe(events Events, nowMs float64) fx.InputState {
	if !t.started {
		t.started = true
		t.lastPressMs = nowMs
	}
	t.pressedNow = len(events.Pressed) > 0
	if t.pressedNow {
		t.lastPressMs = nowMs
	}

	return fx.InputState{
		Pressed:    fx.NewButtonSet(events.Pressed...),
		Held:       fx.NewButtonSet(events.Held...),
		Released:   fx.NewButtonSet(events.Released...),
		NowMs:      nowMs,
		IdleMs:     max(0, nowMs-t.lastPressMs),
		InGame:     events.InGame,
		InMenu:     events.InMenu,
		HasCredits: events.HasCredits,
	}
}

// Attract reports whether the panel has been idle long enough for the attract
// layer, as of the last Observe.
func (t *InputTracker) Attract(nowMs float64) bool {
	if !t.started || t.pressedNow {
		return false
	}
	return nowMs-t.lastPressMs >= t.attractTimeoutMs
}

type runner struct {
	engine   *fx.Engine
	source   InputSource
	services []lights.LightService
	tracker  *InputTracker
}

func (r *runner) step(ctx context.Context) []fx.RGB {
	frame := r.engine.TickNow(func(nowMs float64) (fx.InputState, bool) {
		in := r.tracker.Observe(r.source.Poll(), nowMs)
		return in, r.tracker.Attract(nowMs)
	})

	for _, service := range r.services {
		if ctx.Err() != nil {
			// context is done - avoid pushing a frame to services that are shutting down
			break
		}
		if service.LightCount() == 0 {
			continue
		}
		service.SetFrame(ctx, frame)
	}
	return frame
}

// Run ticks the engine every FrameInterval and hands each frame to the light
// services until ctx is done.
func Run(ctx context.Context, config Config, engine *fx.Engine, source InputSource, services ...lights.LightService) {
	r := &runner{
		engine:   engine,
		source:   source,
		services: services,
		tracker:  NewInputTracker(config.AttractTimeout),
	}

	logger.With(
		zap.Stringer("frameInterval", config.FrameInterval),
		zap.Stringer("attractTimeout", config.AttractTimeout),
		zap.Int("services", len(services))).
		Info("Starting effect loop")

	timer := time.NewTimer(0)
	defer timer.Stop()

	var lastWarning time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("Effect loop stopped")
			return
		case <-timer.C:
		}

		startTime := time.Now()
		r.step(ctx)
		totalDuration := time.Since(startTime)

		untilNextTick := config.FrameInterval - totalDuration
		if untilNextTick <= 0 {
			if time.Since(lastWarning) > 10*time.Second {
				logger.With(
					zap.Stringer("totalDuration", totalDuration),
					zap.Stringer("frameInterval", config.FrameInterval)).
					Warn("Cannot keep up with FRAME_INTERVAL. Consider increasing FRAME_INTERVAL or disabling slow light services.")
				lastWarning = time.Now()
			}
			untilNextTick = 0
		}
		timer.Reset(untilNextTick)
	}
}
