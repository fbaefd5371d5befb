package effects

import (
	"math"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

const defaultBlinkButton = "P1_START"

type InsertCoinBlinkConfig struct {
	BlinkButton   string
	CadenceMs     float64
	Color         fx.RGB
	Brightness    float64
	OnlyNoCredits bool
}

func DefaultInsertCoinBlinkConfig() InsertCoinBlinkConfig {
	return InsertCoinBlinkConfig{
		BlinkButton:   defaultBlinkButton,
		CadenceMs:     600,
		Color:         fx.RGB{R: 255, G: 220, B: 40},
		Brightness:    1.0,
		OnlyNoCredits: true,
	}
}

// InsertCoinBlink blinks one button while the machine waits in its menu.
type InsertCoinBlink struct {
	frame
	cfg InsertCoinBlinkConfig
	idx int
}

func NewInsertCoinBlink(cfg InsertCoinBlinkConfig) *InsertCoinBlink {
	cfg.CadenceMs = max(120, cfg.CadenceMs)
	cfg.Brightness = fx.Clamp01(cfg.Brightness)
	return &InsertCoinBlink{cfg: cfg, idx: -1}
}

func (e *InsertCoinBlink) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerOverlay)
	e.idx = -1
	if i, ok := ctx.Index[e.cfg.BlinkButton]; ok {
		e.idx = i
	} else if i, ok := ctx.Index[defaultBlinkButton]; ok {
		e.idx = i
	}
}

func (e *InsertCoinBlink) Update(_ float64, in fx.InputState) *fx.Contribution {
	if e.idx < 0 {
		return nil
	}
	e.blackout()

	menuGate := in.InMenu || !in.InGame
	creditGate := !e.cfg.OnlyNoCredits || !in.HasCredits
	if !menuGate || !creditGate {
		return &e.out
	}

	// even cadence periods are lit, counting from floor(now/cadence)
	if int(math.Floor(in.NowMs/e.cfg.CadenceMs))&1 == 0 {
		e.out.Colors[e.idx] = e.cfg.Color.Scale(e.cfg.Brightness)
	}
	return &e.out
}

func (e *InsertCoinBlink) Priority() int {
	return 70
}
