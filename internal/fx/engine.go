package fx

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/logging"
)

var logger = logging.New("fx")

// Engine runs effects in priority order and mixes their output. It is not
// safe for concurrent use; effects are added during setup only.
type Engine struct {
	ctx     *Context
	mixer   *Mixer
	effects []Effect

	lastTickMs float64
	ticked     bool
}

func NewEngine(ctx *Context, mixer *Mixer, effects ...Effect) *Engine {
	e := &Engine{
		ctx:   ctx,
		mixer: mixer,
	}
	for _, effect := range effects {
		e.AddEffect(effect)
	}
	return e
}

func (e *Engine) Context() *Context {
	return e.ctx
}

// Effects returns the effects in execution order.
func (e *Engine) Effects() []Effect {
	return slices.Clone(e.effects)
}

// AddEffect initializes effect and inserts it by priority. Effects with equal
// priority keep insertion order.
func (e *Engine) AddEffect(effect Effect) {
	effect.Initialize(e.ctx)
	e.effects = append(e.effects, effect)
	slices.SortStableFunc(e.effects, func(a, b Effect) int {
		return a.Priority() - b.Priority()
	})

	logger.With(
		zap.String("effect", fmt.Sprintf("%T", effect)),
		zap.Int("priority", effect.Priority()),
		zap.Int("effects", len(e.effects))).
		Debug("Added effect")
}

// ResetClock makes the next tick see a zero delta.
func (e *Engine) ResetClock() {
	e.ticked = false
}

// Tick advances every active effect to nowMs and returns the composed frame,
// index-aligned with Context.Buttons. The frame is reused by the next tick.
func (e *Engine) Tick(in InputState, nowMs float64, attractActive bool) []RGB {
	in.NowMs = nowMs

	deltaMs := 0.0
	if e.ticked {
		deltaMs = max(0, nowMs-e.lastTickMs)
	}
	e.lastTickMs = nowMs
	e.ticked = true

	e.mixer.Clear()
	for _, effect := range e.effects {
		if !effect.Active() {
			continue
		}
		if c := effect.Update(deltaMs, in); c != nil {
			e.mixer.Add(c)
		}
	}
	return e.mixer.Compose(attractActive)
}

// TickNow reads the context clock once and ticks at that time. input builds
// the tick's input and attract flag for the reading.
func (e *Engine) TickNow(input func(nowMs float64) (InputState, bool)) []RGB {
	nowMs := e.ctx.Clock()
	in, attractActive := input(nowMs)
	return e.Tick(in, nowMs, attractActive)
}
