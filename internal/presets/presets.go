// Package presets is the catalog of named effect bundles.
package presets

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/effects"
	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/logging"
)

var logger = logging.New("presets")

var ErrUnknownPreset = errors.New("unknown preset")

const DefaultID = "showroom_default"

// Preset builds a fresh, independent effect list on every Build call.
type Preset struct {
	ID          string
	Name        string
	Description string
	Build       func() []fx.Effect
}

var catalog = []Preset{
	{
		ID:          "showroom_default",
		Name:        "Showroom Default",
		Description: "Idle glow, attract chase rainbow, ripple press response, combo flash, and start-button blink.",
		Build:       showroomDefault,
	},
	{
		ID:          "classic_static",
		Name:        "Classic Static",
		Description: "Role-color style static baseline without animated overlays.",
		Build:       classicStatic,
	},
	{
		ID:          "neon_minimal",
		Name:        "Neon Minimal",
		Description: "Subtle idle glow with responsive press ripple only.",
		Build:       neonMinimal,
	},
	{
		ID:          "party_mode",
		Name:        "Party Mode",
		Description: "Faster attract/ripple/combo behavior, ready for music-reactive expansion.",
		Build:       partyMode,
	},
	{
		ID:          "tease",
		Name:        "Tease",
		Description: "Staggered per-button pulse color cycle with speed sweep between 2.0 and 0.5 pulses per second.",
		Build:       tease,
	},
	{
		ID:          "tease_independent",
		Name:        "Tease Independent",
		Description: "Every button pulses and cycles color on its own schedule.",
		Build:       teaseIndependent,
	},
}

// All returns the catalog in display order.
func All() []Preset {
	return slices.Clone(catalog)
}

// Map returns the catalog keyed by preset id.
func Map() map[string]Preset {
	m := make(map[string]Preset, len(catalog))
	for _, p := range catalog {
		m[p.ID] = p
	}
	return m
}

func Lookup(id string) (Preset, bool) {
	i := slices.IndexFunc(catalog, func(p Preset) bool { return p.ID == id })
	if i < 0 {
		return Preset{}, false
	}
	return catalog[i], true
}

// Build instantiates the effects of preset id.
func Build(id string) ([]fx.Effect, error) {
	p, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	list := p.Build()
	logger.With(zap.String("preset", id), zap.Int("effects", len(list))).Debug("Built preset")
	return list, nil
}

func showroomDefault() []fx.Effect {
	return []fx.Effect{
		effects.NewIdleSoftGlow(effects.IdleSoftGlowConfig{
			Color:            fx.RGB{R: 190, G: 215, B: 255},
			MinBrightness:    0.10,
			MaxBrightness:    0.18,
			PeriodMs:         4500,
			SuspendInAttract: true,
			AttractTimeoutMs: 45000,
		}),
		effects.NewPlayerIdentitySplit(effects.PlayerIdentitySplitConfig{
			Enabled:  true,
			Strength: 0.16,
			P1Tint:   fx.RGB{R: 255, G: 120, B: 40},
			P2Tint:   fx.RGB{R: 0, G: 180, B: 255},
		}),
		effects.NewInsertCoinBlink(effects.DefaultInsertCoinBlinkConfig()),
		effects.NewPressRipple(effects.PressRippleConfig{
			PeakBrightness: 1.0,
			Ring1DelayMs:   60,
			Ring2DelayMs:   120,
			DecayMs:        210,
			ColorMode:      effects.RippleColorByRole,
		}),
		effects.NewComboExplosion(effects.ComboExplosionConfig{
			ComboPressCount: 5,
			ComboWindowMs:   1000,
			HoldMs:          100,
			FadeMs:          450,
			CooldownMs:      1100,
			Color:           fx.RGB{R: 255, G: 255, B: 255},
		}),
		effects.NewAttractChaseRainbow(effects.AttractChaseRainbowConfig{
			IdleTimeoutMs: 45000,
			StepMs:        700,
			HueSpeedHz:    0.06,
		}),
	}
}

func classicStatic() []fx.Effect {
	return []fx.Effect{
		effects.NewIdleSoftGlow(effects.IdleSoftGlowConfig{
			Color:            fx.RGB{R: 240, G: 240, B: 240},
			MinBrightness:    0.14,
			MaxBrightness:    0.14,
			PeriodMs:         20000,
			SuspendInAttract: true,
			AttractTimeoutMs: 45000,
		}),
	}
}

func neonMinimal() []fx.Effect {
	ripple := effects.DefaultPressRippleConfig()
	ripple.PeakBrightness = 0.95
	ripple.Ring1DelayMs = 50
	ripple.Ring2DelayMs = 95
	ripple.DecayMs = 180
	ripple.ColorMode = effects.RippleColorByPlayer

	return []fx.Effect{
		effects.NewIdleSoftGlow(effects.IdleSoftGlowConfig{
			Color:            fx.RGB{R: 170, G: 220, B: 255},
			MinBrightness:    0.11,
			MaxBrightness:    0.17,
			PeriodMs:         5000,
			SuspendInAttract: true,
			AttractTimeoutMs: 45000,
		}),
		effects.NewPressRipple(ripple),
	}
}

func partyMode() []fx.Effect {
	return []fx.Effect{
		effects.NewIdleSoftGlow(effects.IdleSoftGlowConfig{
			Color:            fx.RGB{R: 190, G: 220, B: 255},
			MinBrightness:    0.10,
			MaxBrightness:    0.16,
			PeriodMs:         3600,
			SuspendInAttract: true,
			AttractTimeoutMs: 30000,
		}),
		effects.NewPressRipple(effects.PressRippleConfig{
			PeakBrightness: 1.0,
			Ring1DelayMs:   45,
			Ring2DelayMs:   90,
			DecayMs:        190,
			ColorMode:      effects.RippleColorByRole,
		}),
		effects.NewComboExplosion(effects.ComboExplosionConfig{
			ComboPressCount: 4,
			ComboWindowMs:   900,
			HoldMs:          110,
			FadeMs:          420,
			CooldownMs:      900,
			Color:           fx.RGB{R: 255, G: 255, B: 255},
		}),
		effects.NewAttractChaseRainbow(effects.AttractChaseRainbowConfig{
			IdleTimeoutMs: 30000,
			StepMs:        580,
			HueSpeedHz:    0.10,
		}),
	}
}

func tease() []fx.Effect {
	return []fx.Effect{
		effects.NewTeasePulseCycle(effects.DefaultTeaseConfig()),
	}
}

func teaseIndependent() []fx.Effect {
	return []fx.Effect{
		effects.NewTeaseIndependentColorCycle(effects.DefaultTeaseConfig()),
	}
}
