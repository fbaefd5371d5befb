package effects

import (
	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
)

type PlayerIdentitySplitConfig struct {
	Enabled  bool
	Strength float64
	P1Tint   fx.RGB
	P2Tint   fx.RGB
}

func DefaultPlayerIdentitySplitConfig() PlayerIdentitySplitConfig {
	return PlayerIdentitySplitConfig{
		Enabled:  false,
		Strength: 0.25,
		P1Tint:   fx.RGB{R: 255, G: 120, B: 40},
		P2Tint:   fx.RGB{R: 0, G: 180, B: 255},
	}
}

// PlayerIdentitySplit tints each player's buttons in that player's colour.
type PlayerIdentitySplit struct {
	frame
	cfg PlayerIdentitySplitConfig
}

func NewPlayerIdentitySplit(cfg PlayerIdentitySplitConfig) *PlayerIdentitySplit {
	cfg.Strength = fx.Clamp01(cfg.Strength)
	return &PlayerIdentitySplit{cfg: cfg}
}

// Initialize renders the static tint once; Update only hands it out.
func (e *PlayerIdentitySplit) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerBase)
	for i, b := range ctx.Buttons {
		switch layout.PlayerOf(ctx.Config.Groups, b) {
		case 1:
			e.out.Colors[i] = e.cfg.P1Tint.Scale(e.cfg.Strength)
		case 2:
			e.out.Colors[i] = e.cfg.P2Tint.Scale(e.cfg.Strength)
		default:
			e.out.Colors[i] = fx.Black
		}
	}
}

func (e *PlayerIdentitySplit) Update(float64, fx.InputState) *fx.Contribution {
	if !e.cfg.Enabled {
		return nil
	}
	return &e.out
}

func (e *PlayerIdentitySplit) Priority() int {
	return 20
}
