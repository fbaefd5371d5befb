package fx

// BlendMode is the rule merging contributions within one layer.
type BlendMode string

const (
	BlendAdditive BlendMode = "additive"
	BlendMax      BlendMode = "max"
	BlendScreen   BlendMode = "screen"
)

// ParseBlendMode returns the named mode or def for unknown names.
func ParseBlendMode(name string, def BlendMode) BlendMode {
	switch m := BlendMode(name); m {
	case BlendAdditive, BlendMax, BlendScreen:
		return m
	}
	return def
}

type layerBuffer struct {
	mode    BlendMode
	r, g, b []float64
}

func newLayerBuffer(n int, mode BlendMode) *layerBuffer {
	return &layerBuffer{
		mode: mode,
		r:    make([]float64, n),
		g:    make([]float64, n),
		b:    make([]float64, n),
	}
}

func (l *layerBuffer) clear() {
	clear(l.r)
	clear(l.g)
	clear(l.b)
}

func (l *layerBuffer) blend(i int, r, g, b float64) {
	l.r[i] = blendChannel(l.mode, l.r[i], r)
	l.g[i] = blendChannel(l.mode, l.g[i], g)
	l.b[i] = blendChannel(l.mode, l.b[i], b)
}

func blendChannel(mode BlendMode, current, value float64) float64 {
	switch mode {
	case BlendAdditive:
		return min(255, current+value)
	case BlendMax:
		if value > current {
			return value
		}
		return current
	default:
		return screen(current, value)
	}
}

// screen is photographic screen blending in 0..255 space.
func screen(a, b float64) float64 {
	if a <= 0 {
		return min(255, b)
	}
	if b <= 0 {
		return min(255, a)
	}
	return 255 * (1 - (1-a/255)*(1-b/255))
}

// Mixer accumulates contributions on three layers and composes them into a
// frame. Buffers are allocated once and reused.
type Mixer struct {
	buttonCount int
	base        *layerBuffer
	overlay     *layerBuffer
	attract     *layerBuffer
	out         []RGB
}

type MixerOption func(*Mixer)

// WithBlend sets the blend mode of one layer.
func WithBlend(layer Layer, mode BlendMode) MixerOption {
	return func(m *Mixer) {
		m.layer(layer).mode = mode
	}
}

// NewMixer uses max on the base layer and screen on overlay and attract
// unless overridden.
func NewMixer(buttonCount int, opts ...MixerOption) *Mixer {
	m := &Mixer{
		buttonCount: buttonCount,
		base:        newLayerBuffer(buttonCount, BlendMax),
		overlay:     newLayerBuffer(buttonCount, BlendScreen),
		attract:     newLayerBuffer(buttonCount, BlendScreen),
		out:         make([]RGB, buttonCount),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mixer) ButtonCount() int {
	return m.buttonCount
}

// BlendModeOf reports the blend mode of a layer.
func (m *Mixer) BlendModeOf(layer Layer) BlendMode {
	return m.layer(layer).mode
}

func (m *Mixer) layer(layer Layer) *layerBuffer {
	switch layer {
	case LayerBase:
		return m.base
	case LayerOverlay:
		return m.overlay
	default:
		return m.attract
	}
}

func (m *Mixer) Clear() {
	m.base.clear()
	m.overlay.clear()
	m.attract.clear()
}

// Add blends a contribution into its layer. Only the prefix shared with the
// mixer (and with Brightness, when present) is used.
func (m *Mixer) Add(c *Contribution) {
	if c == nil {
		return
	}
	target := m.layer(c.Layer)
	n := min(m.buttonCount, len(c.Colors))

	if c.Brightness == nil {
		for i := 0; i < n; i++ {
			col := c.Colors[i]
			target.blend(i, float64(col.R), float64(col.G), float64(col.B))
		}
		return
	}

	n = min(n, len(c.Brightness))
	for i := 0; i < n; i++ {
		br := Clamp01(c.Brightness[i])
		col := c.Colors[i]
		target.blend(i, float64(col.R)*br, float64(col.G)*br, float64(col.B)*br)
	}
}

// Compose screens overlay over base and, only when attractActive, the attract
// layer over that. The returned slice is reused by the next Compose.
func (m *Mixer) Compose(attractActive bool) []RGB {
	for i := 0; i < m.buttonCount; i++ {
		r := screen(m.base.r[i], m.overlay.r[i])
		g := screen(m.base.g[i], m.overlay.g[i])
		b := screen(m.base.b[i], m.overlay.b[i])

		if attractActive {
			r = screen(r, m.attract.r[i])
			g = screen(g, m.attract.g[i])
			b = screen(b, m.attract.b[i])
		}

		m.out[i] = RGB{R: ClampU8(r), G: ClampU8(g), B: ClampU8(b)}
	}
	return m.out
}
