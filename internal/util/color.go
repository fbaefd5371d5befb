package util

import (
	"fmt"
	"math"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

// ColorReducer collapses a frame into the single colour a bulb can show.
type ColorReducer func(frame []fx.RGB) fx.RGB

// ReducerByName resolves a COLOR_ALGO value.
func ReducerByName(name string) (ColorReducer, error) {
	switch name {
	case "AVERAGE":
		return AverageColor, nil
	case "SQUARED_AVERAGE":
		return SquaredAverageColor, nil
	case "MEDIAN":
		return MedianColor, nil
	case "MODE":
		return ModeColor, nil
	default:
		return nil, fmt.Errorf("unknown color algorithm: %v", name)
	}
}

// RgbToHsb converts to the 16-bit hue/saturation/brightness triple bulbs take.
func RgbToHsb(c fx.RGB) (uint16, uint16, uint16) {
	h, s, v := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()

	hue := uint16(math.Round(h / 360 * 0xFFFF))
	saturation := uint16(math.Round(s * 0xFFFF))
	brightness := uint16(math.Round(v * 0xFFFF))

	return hue, saturation, brightness
}

// IsColorGreyish reports a saturation of at most 20%.
func IsColorGreyish(saturation uint16) bool {
	satThreshold := float64(0xFFFF) * 0.2
	return float64(saturation) <= satThreshold
}

func AverageColor(frame []fx.RGB) fx.RGB {
	if len(frame) == 0 {
		return fx.Black
	}
	var sumR, sumG, sumB int
	for _, c := range frame {
		sumR += int(c.R)
		sumG += int(c.G)
		sumB += int(c.B)
	}
	n := len(frame)
	return fx.RGB{R: uint8(sumR / n), G: uint8(sumG / n), B: uint8(sumB / n)}
}

// SquaredAverageColor is the root mean square per channel. It favours the
// lit buttons over the dark ones.
func SquaredAverageColor(frame []fx.RGB) fx.RGB {
	if len(frame) == 0 {
		return fx.Black
	}
	var sumR, sumG, sumB float64
	for _, c := range frame {
		sumR += float64(c.R) * float64(c.R)
		sumG += float64(c.G) * float64(c.G)
		sumB += float64(c.B) * float64(c.B)
	}
	n := float64(len(frame))
	return fx.RGB{
		R: fx.ClampU8(math.Sqrt(sumR / n)),
		G: fx.ClampU8(math.Sqrt(sumG / n)),
		B: fx.ClampU8(math.Sqrt(sumB / n)),
	}
}

func MedianColor(frame []fx.RGB) fx.RGB {
	if len(frame) == 0 {
		return fx.Black
	}
	reds := make([]uint8, 0, len(frame))
	greens := make([]uint8, 0, len(frame))
	blues := make([]uint8, 0, len(frame))
	for _, c := range frame {
		reds = append(reds, c.R)
		greens = append(greens, c.G)
		blues = append(blues, c.B)
	}
	slices.Sort(reds)
	slices.Sort(greens)
	slices.Sort(blues)

	median := func(values []uint8) uint8 {
		n := len(values)
		if n%2 == 0 {
			return uint8((int(values[n/2-1]) + int(values[n/2])) / 2)
		}
		return values[n/2]
	}

	return fx.RGB{R: median(reds), G: median(greens), B: median(blues)}
}

// ModeColor returns the most common colour; ties go to the colour that
// reached the count first.
func ModeColor(frame []fx.RGB) fx.RGB {
	counts := make(map[fx.RGB]int, len(frame))
	var mode fx.RGB
	maxCount := 0
	for _, c := range frame {
		counts[c]++
		if counts[c] > maxCount {
			maxCount = counts[c]
			mode = c
		}
	}
	return mode
}
