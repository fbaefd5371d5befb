// Package effects holds the concrete lighting behaviours run by fx.Engine.
//
// Every effect owns its working buffers; they are sized in Initialize and
// reused by Update, so the returned contribution is only valid until the next
// Update call.
package effects

import (
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

const tau = 2 * math.Pi

// Irrational multipliers used to stagger buttons deterministically.
const (
	goldenRatioFrac = 0.61803398875
	goldenAngleFrac = 0.38196601125
	sqrt2Frac       = 0.41421356237
	eFrac           = 0.27182818284
)

// stagger returns the fractional part of i*k.
func stagger(i int, k float64) float64 {
	return math.Mod(float64(i)*k, 1)
}

// frame is the buffer every effect renders into.
type frame struct {
	ctx *fx.Context
	out fx.Contribution
}

func (f *frame) init(ctx *fx.Context, layer fx.Layer) {
	f.ctx = ctx
	f.out = fx.Contribution{Colors: make([]fx.RGB, ctx.ButtonCount()), Layer: layer}
}

func (f *frame) fill(c fx.RGB) *fx.Contribution {
	for i := range f.out.Colors {
		f.out.Colors[i] = c
	}
	return &f.out
}

func (f *frame) blackout() *fx.Contribution {
	return f.fill(fx.Black)
}

func (f *frame) Active() bool {
	return true
}

// hsv converts hue in turns, saturation and value to RGB. Channels are
// truncated, not rounded.
func hsv(hue, saturation, value float64) fx.RGB {
	h := math.Mod(hue, 1)
	if h < 0 {
		h++
	}
	c := colorful.Hsv(h*360, fx.Clamp01(saturation), fx.Clamp01(value)).Clamped()
	return fx.RGB{R: fx.ClampU8(c.R * 255), G: fx.ClampU8(c.G * 255), B: fx.ClampU8(c.B * 255)}
}

// triangle maps a [0,1) sweep position to 0 -> 1 -> 0.
func triangle(sweep float64) float64 {
	return 1 - math.Abs(2*sweep-1)
}

// RoleColor is the fixed palette colour of a button by its role.
func RoleColor(button string) fx.RGB {
	n := strings.ToUpper(button)
	switch {
	case strings.HasSuffix(n, "_A"):
		return fx.RGB{R: 255, G: 128, B: 0}
	case strings.HasSuffix(n, "_B"):
		return fx.RGB{R: 255, G: 210, B: 0}
	case strings.HasSuffix(n, "_C"):
		return fx.RGB{R: 255, G: 0, B: 170}
	case strings.HasSuffix(n, "_X"):
		return fx.RGB{R: 0, G: 230, B: 120}
	case strings.HasSuffix(n, "_Y"):
		return fx.RGB{R: 0, G: 220, B: 255}
	case strings.HasSuffix(n, "_Z"):
		return fx.RGB{R: 40, G: 130, B: 255}
	case strings.Contains(n, "START"):
		return fx.RGB{R: 255, G: 255, B: 255}
	case strings.Contains(n, "REWIND"):
		return fx.RGB{R: 180, G: 0, B: 255}
	case strings.Contains(n, "MENU"):
		return fx.RGB{R: 0, G: 170, B: 255}
	}
	return fx.RGB{R: 200, G: 200, B: 200}
}
