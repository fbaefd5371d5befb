package effects

import (
	"math"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

type IdleSoftGlowConfig struct {
	Color            fx.RGB
	MinBrightness    float64
	MaxBrightness    float64
	PeriodMs         float64
	SuspendInAttract bool
	AttractTimeoutMs float64
}

func DefaultIdleSoftGlowConfig() IdleSoftGlowConfig {
	return IdleSoftGlowConfig{
		Color:            fx.RGB{R: 190, G: 215, B: 255},
		MinBrightness:    0.10,
		MaxBrightness:    0.18,
		PeriodMs:         4500,
		SuspendInAttract: true,
		AttractTimeoutMs: 45000,
	}
}

// IdleSoftGlow breathes every button in one tint on a sine wave.
type IdleSoftGlow struct {
	frame
	cfg IdleSoftGlowConfig
}

func NewIdleSoftGlow(cfg IdleSoftGlowConfig) *IdleSoftGlow {
	cfg.PeriodMs = max(250, cfg.PeriodMs)
	cfg.AttractTimeoutMs = max(0, cfg.AttractTimeoutMs)
	return &IdleSoftGlow{cfg: cfg}
}

func (e *IdleSoftGlow) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerBase)
}

func (e *IdleSoftGlow) Update(_ float64, in fx.InputState) *fx.Contribution {
	if e.cfg.SuspendInAttract && in.IdleMs >= e.cfg.AttractTimeoutMs {
		return e.blackout()
	}

	wave := 0.5 + 0.5*math.Sin(in.NowMs/e.cfg.PeriodMs*tau)
	b := e.cfg.MinBrightness + (e.cfg.MaxBrightness-e.cfg.MinBrightness)*wave
	return e.fill(e.cfg.Color.Scale(b))
}

func (e *IdleSoftGlow) Priority() int {
	return 10
}
