package lifx

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/logging"
	"github.com/scheerer/arcade-button-fx/internal/util"
)

var logger = logging.New("lifx")

const (
	discoveryInterval = 15 * time.Second
	discoveryTimeout  = 5 * time.Second
	kelvin            = 3500
)

// LifxLights mirrors the panel onto a LIFX group as one reduced colour.
type LifxLights struct {
	config Config
	client *golifx.Client

	lightsMu sync.RWMutex
	group    common.Group

	sendMu   sync.Mutex
	lastSent time.Time
	last     common.Color
	sent     bool

	stopOnce sync.Once
	stop     chan struct{}
}

type Config struct {
	GroupName      string
	MaxBrightness  float64
	MinBrightness  float64
	MirrorInterval time.Duration
	Reduce         util.ColorReducer
}

func NewLifx(config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, err
	}
	if config.Reduce == nil {
		config.Reduce = util.AverageColor
	}

	return &LifxLights{
		config: config,
		client: client,
		stop:   make(chan struct{}),
	}, nil
}

// Start discovers the group and keeps rediscovering it until ctx is done or
// Stop is called.
func (l *LifxLights) Start(ctx context.Context) {
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	l.client.SetDiscoveryInterval(discoveryInterval)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, discoveryTimeout)
	l.discover(ctxWithTimeout)
	cancel()

	for {
		select {
		case <-ticker.C:
			ctxWithTimeout, cancel := context.WithTimeout(ctx, discoveryTimeout)
			l.discover(ctxWithTimeout)
			cancel()
		case <-l.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *LifxLights) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
		if err := l.client.Close(); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to close LIFX client")
		}
	})
}

func (l *LifxLights) discover(ctx context.Context) {
	logger.With(zap.String("group", l.config.GroupName)).Debug("LIFX discovery starting...")

	type result struct {
		group common.Group
		err   error
	}
	completed := make(chan result, 1)

	go func() {
		g, err := l.client.GetGroupByLabel(l.config.GroupName)
		completed <- result{group: g, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.With(zap.Error(ctx.Err())).Warn("LIFX discovery timed out.")
	case r := <-completed:
		if r.err != nil || r.group == nil {
			logger.With(zap.Error(r.err)).Warn("Couldn't discover group.")
			return
		}
		logger.With(zap.String("group", r.group.GetLabel())).Info("LIFX group found")
		l.lightsMu.Lock()
		l.group = r.group
		l.lightsMu.Unlock()
	}
}

func (l *LifxLights) LightCount() int {
	l.lightsMu.RLock()
	defer l.lightsMu.RUnlock()

	if l.group == nil {
		return 0
	}
	count := 0
	for range l.group.Lights() {
		count++
	}
	return count
}

// SetFrame reduces frame to one colour and sends it to the group, at most
// once per MirrorInterval and only when the colour changed.
func (l *LifxLights) SetFrame(_ context.Context, frame []fx.RGB) {
	l.lightsMu.RLock()
	group := l.group
	l.lightsMu.RUnlock()
	if group == nil {
		return
	}

	color := frameColor(frame, l.config)

	l.sendMu.Lock()
	now := time.Now()
	if !shouldSend(l.sent, l.last, l.lastSent, color, now, l.config.MirrorInterval) {
		l.sendMu.Unlock()
		return
	}
	l.sent = true
	l.last = color
	l.lastSent = now
	l.sendMu.Unlock()

	if err := group.SetColor(color, l.config.MirrorInterval); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to set color for LIFX group")
	}
}

func shouldSend(sent bool, last common.Color, lastSent time.Time, next common.Color, now time.Time, interval time.Duration) bool {
	if !sent {
		return true
	}
	if now.Sub(lastSent) < interval {
		return false
	}
	return next != last
}

func frameColor(frame []fx.RGB, config Config) common.Color {
	return adjustColor(newLifxColor(config.Reduce(frame)), config)
}

func newLifxColor(color fx.RGB) common.Color {
	hue, saturation, brightness := util.RgbToHsb(color)

	return common.Color{
		Hue:        hue,
		Saturation: saturation,
		Brightness: brightness,
		Kelvin:     kelvin,
	}
}

func adjustColor(color common.Color, config Config) common.Color {
	blackThreshold := 0.015 * 0xFFFF
	if color.Brightness <= uint16(blackThreshold) && color.Saturation <= uint16(blackThreshold) {
		// blackish color - turn off the light
		return common.Color{Kelvin: kelvin}
	}
	if util.IsColorGreyish(color.Saturation) {
		// white at the bulb's kelvin instead of a washed out hue
		color.Hue = 0
		color.Saturation = 0
	}

	color.Brightness = uint16(math.Min(config.MaxBrightness*0xFFFF, math.Max(config.MinBrightness*0xFFFF, float64(color.Brightness))))

	return color
}
