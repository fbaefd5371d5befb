package effects

import (
	"slices"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
)

type RippleColorMode string

const (
	RippleColorByRole   RippleColorMode = "role"
	RippleColorByPlayer RippleColorMode = "player"
)

const maxRipples = 64

type PressRippleConfig struct {
	PeakBrightness float64
	Ring1DelayMs   float64
	Ring2DelayMs   float64
	DecayMs        float64
	ColorMode      RippleColorMode
	PlayerColorP1  fx.RGB
	PlayerColorP2  fx.RGB
}

func DefaultPressRippleConfig() PressRippleConfig {
	return PressRippleConfig{
		PeakBrightness: 1.0,
		Ring1DelayMs:   60,
		Ring2DelayMs:   120,
		DecayMs:        210,
		ColorMode:      RippleColorByRole,
		PlayerColorP1:  fx.RGB{R: 255, G: 160, B: 30},
		PlayerColorP2:  fx.RGB{R: 0, G: 180, B: 255},
	}
}

type ripple struct {
	origin  int
	startMs float64
	color   fx.RGB
}

// PressRipple flashes a pressed button and spreads the flash to its
// neighbours and their neighbours with increasing delay.
type PressRipple struct {
	frame
	cfg PressRippleConfig

	// rings[button] holds the origin, direct neighbours and second-order
	// neighbours of button as indexes.
	rings     [][3][]int
	ripples   []ripple
	intensity []float64
}

func NewPressRipple(cfg PressRippleConfig) *PressRipple {
	cfg.PeakBrightness = fx.Clamp01(cfg.PeakBrightness)
	cfg.DecayMs = max(30, cfg.DecayMs)
	return &PressRipple{cfg: cfg}
}

func (e *PressRipple) Initialize(ctx *fx.Context) {
	e.init(ctx, fx.LayerOverlay)
	e.intensity = make([]float64, ctx.ButtonCount())
	e.ripples = make([]ripple, 0, maxRipples)

	adj := ctx.Config.Adjacency
	e.rings = make([][3][]int, ctx.ButtonCount())
	for i, name := range ctx.Buttons {
		ring1 := adj[name]
		var ring2 []string
		for _, n1 := range ring1 {
			for _, n2 := range adj[n1] {
				if n2 != name && !slices.Contains(ring1, n2) && !slices.Contains(ring2, n2) {
					ring2 = append(ring2, n2)
				}
			}
		}
		slices.Sort(ring2)
		e.rings[i] = [3][]int{{i}, indexes(ctx, ring1), indexes(ctx, ring2)}
	}
}

// indexes maps names to button indexes, skipping unknown names.
func indexes(ctx *fx.Context, names []string) []int {
	out := make([]int, 0, len(names))
	for _, n := range names {
		if i, ok := ctx.Index[n]; ok {
			out = append(out, i)
		}
	}
	return out
}

// Live reports how many ripples are being tracked.
func (e *PressRipple) Live() int {
	return len(e.ripples)
}

func (e *PressRipple) Update(_ float64, in fx.InputState) *fx.Contribution {
	now := in.NowMs

	// Walk buttons in panel order so simultaneous presses stack the same way
	// on every run.
	if len(in.Pressed) > 0 {
		for i, name := range e.ctx.Buttons {
			if in.Pressed.Has(name) {
				e.ripples = append(e.ripples, ripple{origin: i, startMs: now, color: e.pickColor(name)})
			}
		}
		if over := len(e.ripples) - maxRipples; over > 0 {
			e.ripples = slices.Delete(e.ripples, 0, over)
		}
	}

	e.blackout()
	clear(e.intensity)

	lifetime := e.cfg.Ring2DelayMs + e.cfg.DecayMs
	live := e.ripples[:0]
	for _, r := range e.ripples {
		age := now - r.startMs
		if age > lifetime {
			continue
		}
		live = append(live, r)
		e.applyRing(r, age, 0, 0)
		e.applyRing(r, age, e.cfg.Ring1DelayMs, 1)
		e.applyRing(r, age, e.cfg.Ring2DelayMs, 2)
	}
	e.ripples = live

	for i, strength := range e.intensity {
		if strength <= 0 {
			continue
		}
		e.out.Colors[i] = e.out.Colors[i].Scale(strength * e.cfg.PeakBrightness)
	}
	return &e.out
}

// applyRing lights one ring of r; the strongest envelope on a button wins and
// brings its colour.
func (e *PressRipple) applyRing(r ripple, age, delayMs float64, ring int) {
	local := age - delayMs
	if local < 0 || local > e.cfg.DecayMs {
		return
	}
	envelope := 1 - local/e.cfg.DecayMs
	for _, idx := range e.rings[r.origin][ring] {
		if envelope > e.intensity[idx] {
			e.intensity[idx] = envelope
			e.out.Colors[idx] = r.color
		}
	}
}

func (e *PressRipple) pickColor(button string) fx.RGB {
	if e.cfg.ColorMode == RippleColorByPlayer {
		if layout.PlayerOf(e.ctx.Config.Groups, button) == 1 {
			return e.cfg.PlayerColorP1
		}
		return e.cfg.PlayerColorP2
	}
	return RoleColor(button)
}

func (e *PressRipple) Priority() int {
	return 80
}
