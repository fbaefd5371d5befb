package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/arcade"
	"github.com/scheerer/arcade-button-fx/internal/broadcast"
	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
	"github.com/scheerer/arcade-button-fx/internal/lights/lifx"
	"github.com/scheerer/arcade-button-fx/internal/logging"
	"github.com/scheerer/arcade-button-fx/internal/presets"
	"github.com/scheerer/arcade-button-fx/internal/preview"
	"github.com/scheerer/arcade-button-fx/internal/util"
	"github.com/scheerer/arcade-button-fx/lights"
)

var (
	logger = logging.New("main")
	config = Config{}
)

type Config struct {
	FrameInterval  time.Duration `env:"FRAME_INTERVAL" envDefault:"20ms"`
	Preset         string        `env:"PRESET" envDefault:"showroom_default"`
	LayoutConfig   string        `env:"LAYOUT_CONFIG"`
	Buttons        []string      `env:"BUTTONS"`
	Seed           int           `env:"SEED" envDefault:"1337"`
	BaseBlend      string        `env:"BASE_BLEND" envDefault:"max"`
	OverlayBlend   string        `env:"OVERLAY_BLEND" envDefault:"screen"`
	AttractBlend   string        `env:"ATTRACT_BLEND" envDefault:"screen"`
	AttractTimeout time.Duration `env:"ATTRACT_TIMEOUT" envDefault:"45s"`
	LightType      string        `env:"LIGHT_TYPE" envDefault:"NONE"`
	LightGroupName string        `env:"LIGHT_GROUP_NAME" envDefault:"ARCADE"`
	ColorAlgo      string        `env:"COLOR_ALGO" envDefault:"AVERAGE"`
	MaxBrightness  float64       `env:"MAX_BRIGHTNESS" envDefault:"0.65"`
	MinBrightness  float64       `env:"MIN_BRIGHTNESS" envDefault:"0"`
	MirrorInterval time.Duration `env:"MIRROR_INTERVAL" envDefault:"100ms"`
	Preview        string        `env:"PREVIEW" envDefault:"TERMINAL"`
	WSAddr         string        `env:"WS_ADDR"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string        `env:"LOG_FILE" envDefault:"arcade-button-fx.log"`
}

func main() {
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "layout-schema" {
		printLayoutSchema()
		return
	}

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	logging.GetLeveler().SetAllLevels(logging.ParseLevel(config.LogLevel))

	logger.With(zap.Any("config", config)).Info("Starting arcade button effects")

	logger.Info("Adjust PRESET to pick a lighting theme. Valid values are: ", presetIDs())
	logger.Info("Adjust FRAME_INTERVAL to change how often the panel is redrawn.")
	logger.Info("Adjust LAYOUT_CONFIG to point at a layout document (see `layout-schema`).")
	logger.Info("LIGHT_TYPE supports NONE and LIFX. LIFX mirrors the panel onto LIGHT_GROUP_NAME.")
	logger.Info("Adjust PREVIEW to TERMINAL or NONE, and WS_ADDR to stream frames to a browser.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := newEngine(config)
	h := newHost(config, engine)

	for _, service := range h.services {
		go service.Start(ctx)
	}
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		arcade.Run(ctx, arcade.Config{
			FrameInterval:  config.FrameInterval,
			AttractTimeout: config.AttractTimeout,
		}, engine, h.source, h.services...)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdown:
	case <-h.quit:
	}
	cancel()
	<-loopDone
	for _, service := range h.services {
		service.Stop()
	}
	if h.logFile != nil {
		logging.Redirect(os.Stdout)
		h.logFile.Close()
	}
	logger.Info("Shutting down")
}

func newEngine(config Config) *fx.Engine {
	buttons := config.Buttons
	if len(buttons) == 0 {
		buttons = layout.DefaultButtons()
	}
	l := layout.BuildFromFile(buttons, config.LayoutConfig)

	fxCtx, err := fx.NewContext(l.Buttons,
		fx.WithSeed(uint64(config.Seed)),
		fx.WithConfig(fx.Config{Groups: l.Groups, Adjacency: l.Adjacency}))
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid BUTTONS")
	}

	mixer := fx.NewMixer(fxCtx.ButtonCount(),
		fx.WithBlend(fx.LayerBase, fx.ParseBlendMode(config.BaseBlend, fx.BlendMax)),
		fx.WithBlend(fx.LayerOverlay, fx.ParseBlendMode(config.OverlayBlend, fx.BlendScreen)),
		fx.WithBlend(fx.LayerAttract, fx.ParseBlendMode(config.AttractBlend, fx.BlendScreen)))

	effects, err := presets.Build(config.Preset)
	if err != nil {
		logger.With(zap.Error(err), zap.Strings("presets", presetIDs())).Fatal("Invalid PRESET")
	}
	return fx.NewEngine(fxCtx, mixer, effects...)
}

// host is everything around the engine: where input comes from and where
// frames go. quit is closed when the user quits from the terminal preview.
type host struct {
	source   arcade.InputSource
	services []lights.LightService
	quit     <-chan struct{}
	logFile  *os.File
}

func newHost(config Config, engine *fx.Engine) host {
	h := host{source: arcade.IdleSource{}}
	fxCtx := engine.Context()

	switch config.LightType {
	case "NONE":
	case "LIFX":
		reduce, err := util.ReducerByName(config.ColorAlgo)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Invalid COLOR_ALGO")
		}
		lightService, err := lifx.NewLifx(lifx.Config{
			GroupName:      config.LightGroupName,
			MinBrightness:  config.MinBrightness,
			MaxBrightness:  config.MaxBrightness,
			MirrorInterval: config.MirrorInterval,
			Reduce:         reduce,
		})
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to create LIFX light service")
		}
		h.services = append(h.services, lightService)
	default:
		logger.Fatalf("unknown light type: %v", config.LightType)
	}

	if config.WSAddr != "" {
		h.services = append(h.services, broadcast.NewHub(config.WSAddr, fxCtx.Buttons, fxCtx.Clock))
	}

	switch config.Preview {
	case "NONE":
	case "TERMINAL":
		logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open LOG_FILE")
		}
		logger.With(zap.String("file", config.LogFile)).Info("Terminal preview owns the screen, logging to file")
		logging.Redirect(logFile)
		h.logFile = logFile

		screen, err := tcell.NewScreen()
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open terminal")
		}
		panel, err := preview.NewPanel(screen, layout.ButtonLayout{
			Buttons:   fxCtx.Buttons,
			Groups:    fxCtx.Config.Groups,
			Adjacency: fxCtx.Config.Adjacency,
		}, preview.Config{
			Preset:         config.Preset,
			AttractTimeout: config.AttractTimeout,
		})
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to start terminal preview")
		}
		h.source = panel
		h.services = append(h.services, panel)
		h.quit = panel.Done()
	default:
		logger.Fatalf("unknown preview: %v", config.Preview)
	}

	return h
}

func presetIDs() []string {
	var ids []string
	for _, p := range presets.All() {
		ids = append(ids, p.ID)
	}
	return ids
}

func printLayoutSchema() {
	data, err := json.MarshalIndent(layout.Schema(), "", "  ")
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to encode layout schema")
	}
	fmt.Println(string(data))
}
