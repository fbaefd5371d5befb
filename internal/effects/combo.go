package effects

import (
	"slices"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

type ComboExplosionConfig struct {
	ComboPressCount int
	ComboWindowMs   float64
	HoldMs          float64
	FadeMs          float64
	CooldownMs      float64
	Color           fx.RGB
}

func DefaultComboExplosionConfig() ComboExplosionConfig {
	return ComboExplosionConfig{
		ComboPressCount: 5,
		ComboWindowMs:   1000,
		HoldMs:          110,
		FadeMs:          420,
		CooldownMs:      1200,
		Color:           fx.RGB{R: 255, G: 255, B: 255},
	}
}

// ComboExplosion flashes the whole panel when enough presses land inside a
// sliding window.
type ComboExplosion struct {
	frame
	cfg ComboExplosionConfig

	presses       []float64
	bursting      bool
	burstStartMs  float64
	triggered     bool
	lastTriggerMs float64
}

func NewComboExplosion(cfg ComboExplosionConfig) *ComboExplosion {
	cfg.ComboPressCount = max(2, cfg.ComboPressCount)
	cfg.ComboWindowMs = max(50, cfg.ComboWindowMs)
	cfg.HoldMs = max(10, cfg.HoldMs)
	cfg.FadeMs = max(50, cfg.FadeMs)
	cfg.CooldownMs = max(0, cfg.CooldownMs)
	return &ComboExplosion{cfg: cfg}
}

func (e *ComboExplosion) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerOverlay)
	e.presses = make([]float64, 0, e.cfg.ComboPressCount*2)
	e.bursting = false
	e.triggered = false
}

func (e *ComboExplosion) Update(_ float64, in fx.InputState) *fx.Contribution {
	now := in.NowMs

	for n := in.PressedCount(e.ctx); n > 0; n-- {
		e.presses = append(e.presses, now)
	}
	e.prune(now - e.cfg.ComboWindowMs)

	cooled := !e.triggered || now-e.lastTriggerMs >= e.cfg.CooldownMs
	if len(e.presses) >= e.cfg.ComboPressCount && cooled {
		e.bursting = true
		e.burstStartMs = now
		e.triggered = true
		e.lastTriggerMs = now
		e.presses = e.presses[:0]
	}

	amp := e.amplitude(now)
	if amp <= 0 {
		return e.blackout()
	}
	return e.fill(e.cfg.Color.Scale(amp))
}

// prune drops presses older than cutoff. A clock that stepped backwards can
// leave presses out of order, so every entry is checked.
func (e *ComboExplosion) prune(cutoff float64) {
	e.presses = slices.DeleteFunc(e.presses, func(t float64) bool {
		return t < cutoff
	})
}

// amplitude holds at 1 for HoldMs then fades linearly over FadeMs.
func (e *ComboExplosion) amplitude(now float64) float64 {
	if !e.bursting {
		return 0
	}
	age := now - e.burstStartMs
	if age <= e.cfg.HoldMs {
		return 1
	}
	fadeAge := age - e.cfg.HoldMs
	if fadeAge <= e.cfg.FadeMs {
		return 1 - fadeAge/e.cfg.FadeMs
	}
	e.bursting = false
	return 0
}

func (e *ComboExplosion) Priority() int {
	return 90
}
