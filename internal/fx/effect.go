package fx

// Layer is a compositing plane.
type Layer string

const (
	LayerBase    Layer = "base"
	LayerOverlay Layer = "overlay"
	LayerAttract Layer = "attract"
)

// Contribution is the output of one effect update. Colors is index-aligned
// with Context.Buttons. Brightness, when set, scales Colors per button.
type Contribution struct {
	Colors     []RGB
	Brightness []float64
	Layer      Layer
}

// Effect is one independently stateful lighting behaviour.
//
// Initialize is called once when the effect is added to an engine. Update
// returns nil when the effect has nothing to contribute this tick; a returned
// Contribution may be reused by the effect on the next tick. A panic inside
// Update aborts the whole tick.
type Effect interface {
	Initialize(ctx *Context)
	Update(deltaMs float64, in InputState) *Contribution
	Active() bool
	Priority() int
}
