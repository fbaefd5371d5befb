package effects

import (
	"math"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

// TeaseConfig drives both tease effects. The pulse frequency sweeps
// MinHz -> MaxHz -> MinHz over SweepPeriodMs.
type TeaseConfig struct {
	MinHz         float64
	MaxHz         float64
	SweepPeriodMs float64
	MinBrightness float64
	MaxBrightness float64
	HueSpeedHz    float64
	Saturation    float64
}

func DefaultTeaseConfig() TeaseConfig {
	return TeaseConfig{
		MinHz:         0.5,
		MaxHz:         2.0,
		SweepPeriodMs: 16000,
		MinBrightness: 0.08,
		MaxBrightness: 1.0,
		HueSpeedHz:    0.03,
		Saturation:    1.0,
	}
}

func (c TeaseConfig) normalized() TeaseConfig {
	c.MinHz = max(0.05, c.MinHz)
	c.MaxHz = max(c.MinHz, c.MaxHz)
	c.SweepPeriodMs = max(1000, c.SweepPeriodMs)
	c.MinBrightness = fx.Clamp01(c.MinBrightness)
	c.MaxBrightness = fx.Clamp01(c.MaxBrightness)
	c.HueSpeedHz = max(0.001, c.HueSpeedHz)
	c.Saturation = fx.Clamp01(c.Saturation)
	return c
}

func (c TeaseConfig) brightness(pulse float64) float64 {
	return c.MinBrightness + max(0, c.MaxBrightness-c.MinBrightness)*pulse
}

// TeasePulseCycle pulses all buttons off one shared phase whose speed sweeps
// over time. Buttons are staggered within the pulse and around the hue wheel.
type TeasePulseCycle struct {
	frame
	cfg          TeaseConfig
	phase        float64
	pulseOffsets []float64
	hueOffsets   []float64
}

func NewTeasePulseCycle(cfg TeaseConfig) *TeasePulseCycle {
	return &TeasePulseCycle{cfg: cfg.normalized()}
}

func (e *TeasePulseCycle) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerBase)
	e.phase = 0
	n := ctx.ButtonCount()
	e.pulseOffsets = make([]float64, n)
	e.hueOffsets = make([]float64, n)
	for i := 0; i < n; i++ {
		e.pulseOffsets[i] = stagger(i, goldenRatioFrac) * tau
		e.hueOffsets[i] = stagger(i, goldenAngleFrac)
	}
}

func (e *TeasePulseCycle) Update(deltaMs float64, in fx.InputState) *fx.Contribution {
	sweep := math.Mod(in.NowMs, e.cfg.SweepPeriodMs) / e.cfg.SweepPeriodMs
	hz := e.cfg.MinHz + (e.cfg.MaxHz-e.cfg.MinHz)*triangle(sweep)
	e.phase += tau * hz * max(0, deltaMs) / 1000

	hueBase := in.NowMs / 1000 * e.cfg.HueSpeedHz
	for i := range e.out.Colors {
		pulse := 0.5 + 0.5*math.Sin(e.phase+e.pulseOffsets[i])
		c := hsv(hueBase+e.hueOffsets[i], e.cfg.Saturation, 1)
		e.out.Colors[i] = c.Scale(e.cfg.brightness(pulse))
	}
	return &e.out
}

func (e *TeasePulseCycle) Priority() int {
	return 15
}

// TeaseIndependentColorCycle gives every button its own sweep position and
// hue speed so buttons drift out of sync with each other.
type TeaseIndependentColorCycle struct {
	frame
	cfg          TeaseConfig
	pulseOffsets []float64
	sweepOffsets []float64
	hueOffsets   []float64
	hueSpeeds    []float64
}

func NewTeaseIndependentColorCycle(cfg TeaseConfig) *TeaseIndependentColorCycle {
	return &TeaseIndependentColorCycle{cfg: cfg.normalized()}
}

func (e *TeaseIndependentColorCycle) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerBase)
	n := ctx.ButtonCount()
	e.pulseOffsets = make([]float64, n)
	e.sweepOffsets = make([]float64, n)
	e.hueOffsets = make([]float64, n)
	e.hueSpeeds = make([]float64, n)
	for i := 0; i < n; i++ {
		e.pulseOffsets[i] = stagger(i, goldenRatioFrac) * tau
		e.sweepOffsets[i] = stagger(i, sqrt2Frac) * e.cfg.SweepPeriodMs
		e.hueOffsets[i] = stagger(i, goldenAngleFrac)
		e.hueSpeeds[i] = e.cfg.HueSpeedHz * (0.75 + stagger(i, eFrac)*0.90)
	}
}

func (e *TeaseIndependentColorCycle) Update(_ float64, in fx.InputState) *fx.Contribution {
	nowS := in.NowMs / 1000
	hzSpan := max(0, e.cfg.MaxHz-e.cfg.MinHz)

	for i := range e.out.Colors {
		sweep := math.Mod(in.NowMs+e.sweepOffsets[i], e.cfg.SweepPeriodMs) / e.cfg.SweepPeriodMs
		hz := e.cfg.MinHz + hzSpan*triangle(sweep)
		pulse := 0.5 + 0.5*math.Sin(nowS*hz*tau+e.pulseOffsets[i])
		c := hsv(nowS*e.hueSpeeds[i]+e.hueOffsets[i], e.cfg.Saturation, 1)
		e.out.Colors[i] = c.Scale(e.cfg.brightness(pulse))
	}
	return &e.out
}

func (e *TeaseIndependentColorCycle) Priority() int {
	return 15
}
