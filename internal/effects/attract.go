package effects

import (
	"math"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
)

type AttractChaseRainbowConfig struct {
	IdleTimeoutMs float64
	StepMs        float64
	HueSpeedHz    float64
}

func DefaultAttractChaseRainbowConfig() AttractChaseRainbowConfig {
	return AttractChaseRainbowConfig{
		IdleTimeoutMs: 45000,
		StepMs:        700,
		HueSpeedHz:    0.06,
	}
}

// AttractChaseRainbow sweeps a rainbow highlight across the layout groups
// once the panel has been idle long enough. Any press blanks it at once.
type AttractChaseRainbow struct {
	frame
	cfg     AttractChaseRainbowConfig
	groups  [][]int
	running bool
}

func NewAttractChaseRainbow(cfg AttractChaseRainbowConfig) *AttractChaseRainbow {
	cfg.IdleTimeoutMs = max(0, cfg.IdleTimeoutMs)
	cfg.StepMs = max(50, cfg.StepMs)
	cfg.HueSpeedHz = max(0.001, cfg.HueSpeedHz)
	return &AttractChaseRainbow{cfg: cfg}
}

// Initialize collects the non-empty groups in layout order. Without any
// groups every button is its own group.
func (e *AttractChaseRainbow) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerAttract)
	e.groups = e.groups[:0]
	for _, name := range layout.GroupOrder {
		if idx := ctx.Group(name); len(idx) > 0 {
			e.groups = append(e.groups, idx)
		}
	}
	if len(e.groups) == 0 {
		for i := 0; i < ctx.ButtonCount(); i++ {
			e.groups = append(e.groups, []int{i})
		}
	}
}

// Running reports whether the last update rendered the chase.
func (e *AttractChaseRainbow) Running() bool {
	return e.running
}

func (e *AttractChaseRainbow) Update(_ float64, in fx.InputState) *fx.Contribution {
	if in.PressedCount(e.ctx) > 0 || in.IdleMs < e.cfg.IdleTimeoutMs {
		e.running = false
		return e.blackout()
	}
	e.running = true

	count := float64(max(1, len(e.groups)))
	head := math.Mod(in.NowMs/e.cfg.StepMs, count)
	hueBase := in.NowMs / 1000 * e.cfg.HueSpeedHz

	e.blackout()
	for gi, group := range e.groups {
		dist := math.Abs(float64(gi) - head)
		dist = min(dist, count-dist)
		if dist >= 1 {
			continue
		}
		c := hsv(hueBase+float64(gi)/count, 1, 1).Scale(1 - dist)
		for _, idx := range group {
			e.out.Colors[idx] = c
		}
	}
	return &e.out
}

func (e *AttractChaseRainbow) Priority() int {
	return 40
}
