package fx

import "fmt"

// RGB is one button colour with 8-bit channels.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var Black = RGB{}

func (c RGB) IsBlack() bool {
	return c == Black
}

// Scale multiplies each channel by brightness clamped to [0,1], truncating.
func (c RGB) Scale(brightness float64) RGB {
	b := Clamp01(brightness)
	return RGB{
		R: uint8(float64(c.R) * b),
		G: uint8(float64(c.G) * b),
		B: uint8(float64(c.B) * b),
	}
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func Clamp01(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// ClampU8 truncates a channel value to [0,255].
func ClampU8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
