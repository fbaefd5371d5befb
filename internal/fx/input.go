package fx

// ButtonSet is a set of button identifiers.
type ButtonSet map[string]struct{}

func NewButtonSet(buttons ...string) ButtonSet {
	s := make(ButtonSet, len(buttons))
	for _, b := range buttons {
		s[b] = struct{}{}
	}
	return s
}

func (s ButtonSet) Has(button string) bool {
	_, ok := s[button]
	return ok
}

// InputState is the host's view of the panel for one tick. The engine and
// effects only read it.
type InputState struct {
	Pressed  ButtonSet
	Held     ButtonSet
	Released ButtonSet

	NowMs  float64
	IdleMs float64

	InGame     bool
	InMenu     bool
	HasCredits bool
}

// IdleInput is the state of an untouched machine sitting in its menu.
func IdleInput() InputState {
	return InputState{InMenu: true}
}

// PressedCount counts the pressed buttons known to ctx. Unknown identifiers
// are ignored.
func (in InputState) PressedCount(ctx *Context) int {
	n := 0
	for b := range in.Pressed {
		if _, ok := ctx.Index[b]; ok {
			n++
		}
	}
	return n
}
