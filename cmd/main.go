package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env"
	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/effects"
	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
	"github.com/scheerer/arcade-button-fx/internal/logging"
	"github.com/scheerer/arcade-button-fx/internal/presets"
)

var logger = logging.New("dryrun")

type DryRunConfig struct {
	Preset        string        `env:"PRESET" envDefault:"showroom_default"`
	FrameInterval time.Duration `env:"FRAME_INTERVAL" envDefault:"20ms"`
	Duration      time.Duration `env:"DRY_RUN_DURATION" envDefault:"3s"`
	LogEvery      int           `env:"DRY_RUN_LOG_EVERY" envDefault:"10"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

type check struct {
	name string
	run  func() error
}

var checks = []check{
	{"attract_enter_exit", checkAttractEnterExit},
	{"press_ripple_adjacency", checkPressRippleAdjacency},
	{"combo_trigger_window", checkComboTriggerWindow},
}

func main() {
	defer logger.Sync()

	config := DryRunConfig{}
	if err := env.Parse(&config); err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	logging.GetLeveler().SetAllLevels(logging.ParseLevel(config.LogLevel))

	failed := runChecks()

	if err := replayPreset(config); err != nil {
		logger.With(zap.Error(err)).Error("Preset replay failed")
		failed++
	}

	if failed > 0 {
		logger.With(zap.Int("failed", failed)).Error("Dry run failed")
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("All effect dry-run checks passed")
}

func runChecks() int {
	failed := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			logger.With(zap.String("check", c.name), zap.Error(err)).Error("FAIL")
			failed++
			continue
		}
		logger.With(zap.String("check", c.name)).Info("PASS")
	}
	return failed
}

func buildEngine(list ...fx.Effect) (*fx.Engine, *fx.Context, layout.ButtonLayout, error) {
	l := layout.Build(layout.DefaultButtons(), layout.Document{})
	ctx, err := fx.NewContext(l.Buttons, fx.WithConfig(fx.Config{Groups: l.Groups, Adjacency: l.Adjacency}))
	if err != nil {
		return nil, nil, l, err
	}
	return fx.NewEngine(ctx, fx.NewMixer(ctx.ButtonCount()), list...), ctx, l, nil
}

func nonBlack(c fx.RGB) bool {
	return !c.IsBlack()
}

func checkAttractEnterExit() error {
	engine, _, _, err := buildEngine(effects.NewAttractChaseRainbow(effects.AttractChaseRainbowConfig{
		IdleTimeoutMs: 500,
		StepMs:        250,
		HueSpeedHz:    0.06,
	}))
	if err != nil {
		return err
	}
	t0 := 10_000.0

	in := fx.IdleInput()
	in.IdleMs = 200
	if slices.ContainsFunc(engine.Tick(in, t0, false), nonBlack) {
		return errors.New("attract should be off before timeout")
	}

	in.IdleMs = 900
	if !slices.ContainsFunc(engine.Tick(in, t0+600, true), nonBlack) {
		return errors.New("attract should render after timeout")
	}

	in.Pressed = fx.NewButtonSet("P1_A")
	if slices.ContainsFunc(engine.Tick(in, t0+650, false), nonBlack) {
		return errors.New("any press should clear attract output")
	}
	return nil
}

func checkPressRippleAdjacency() error {
	ripple := effects.DefaultPressRippleConfig()
	ripple.DecayMs = 240
	engine, ctx, l, err := buildEngine(effects.NewPressRipple(ripple))
	if err != nil {
		return err
	}

	origin := "P1_A"
	ring1 := l.Adjacency[origin]
	if len(ring1) == 0 {
		return errors.New("adjacency map should provide ring1 nodes for ripple")
	}
	t0 := 10_000.0

	in := fx.IdleInput()
	in.Pressed = fx.NewButtonSet(origin)
	if frame := engine.Tick(in, t0, false); frame[ctx.Index[origin]].IsBlack() {
		return errors.New("origin should flash immediately on press")
	}

	frame := engine.Tick(fx.IdleInput(), t0+70, false)
	lit := slices.ContainsFunc(ring1, func(n string) bool {
		i, ok := ctx.Index[n]
		return ok && nonBlack(frame[i])
	})
	if !lit {
		return errors.New("ring1 should light after delay")
	}
	return nil
}

func checkComboTriggerWindow() error {
	engine, _, _, err := buildEngine(effects.NewComboExplosion(effects.ComboExplosionConfig{
		ComboPressCount: 5,
		ComboWindowMs:   1000,
		HoldMs:          100,
		FadeMs:          300,
		CooldownMs:      1000,
		Color:           fx.RGB{R: 255, G: 255, B: 255},
	}))
	if err != nil {
		return err
	}
	t0 := 10_000.0

	var frame []fx.RGB
	for i, button := range []string{"P1_A", "P1_B", "P1_X", "P1_Y", "P1_C"} {
		in := fx.IdleInput()
		in.Pressed = fx.NewButtonSet(button)
		frame = engine.Tick(in, t0+float64(i)*150, false)
	}
	if !slices.ContainsFunc(frame, nonBlack) {
		return errors.New("combo explosion should trigger on threshold within window")
	}
	return nil
}

// scriptedPress is a press the replay injects at atMs.
type scriptedPress struct {
	atMs    float64
	buttons []string
}

var replayScript = []scriptedPress{
	{500, []string{"P1_A"}},
	{900, []string{"P1_B", "P2_A"}},
	{1500, []string{"P1_A"}},
	{1600, []string{"P1_B"}},
	{1700, []string{"P1_X"}},
	{1800, []string{"P1_Y"}},
	{1900, []string{"P1_START"}},
}

// replayPreset drives a preset through replayScript on a simulated clock and
// logs a summary of every LogEvery-th frame.
func replayPreset(config DryRunConfig) error {
	list, err := presets.Build(config.Preset)
	if err != nil {
		return err
	}
	engine, ctx, _, err := buildEngine(list...)
	if err != nil {
		return err
	}

	step := float64(config.FrameInterval.Milliseconds())
	if step <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be at least 1ms, got %v", config.FrameInterval)
	}
	end := float64(config.Duration.Milliseconds())
	logEvery := max(1, config.LogEvery)

	next := 0
	lastPress := 0.0
	for frameNo, now := 0, 0.0; now <= end; frameNo, now = frameNo+1, now+step {
		in := fx.IdleInput()
		var pressed []string
		for next < len(replayScript) && replayScript[next].atMs <= now {
			pressed = append(pressed, replayScript[next].buttons...)
			next++
		}
		if len(pressed) > 0 {
			in.Pressed = fx.NewButtonSet(pressed...)
			lastPress = now
		}
		in.IdleMs = now - lastPress

		frame := engine.Tick(in, now, false)
		if frameNo%logEvery != 0 && len(pressed) == 0 {
			continue
		}
		lit, brightest := summarize(frame)
		logger.With(
			zap.String("preset", config.Preset),
			zap.Float64("nowMs", now),
			zap.Strings("pressed", pressed),
			zap.Int("lit", lit),
			zap.String("brightest", ctx.Buttons[brightest]),
			zap.String("color", frame[brightest].Hex())).
			Info("Frame")
	}
	return nil
}

// summarize counts lit buttons and finds the brightest one.
func summarize(frame []fx.RGB) (lit, brightest int) {
	best := -1
	for i, c := range frame {
		if c.IsBlack() {
			continue
		}
		lit++
		if sum := int(c.R) + int(c.G) + int(c.B); sum > best {
			best = sum
			brightest = i
		}
	}
	return lit, brightest
}
