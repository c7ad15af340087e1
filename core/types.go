package core

import (
	"texture-array/math"
)

// Color is a straight (non-premultiplied) RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorRed         = Color{1, 0, 0, 1}
	ColorGreen       = Color{0, 1, 0, 1}
	ColorBlue        = Color{0, 0, 1, 1}
	ColorYellow      = Color{1, 1, 0, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

func (c Color) Vec4() math.Vec4 {
	return math.NewVec4(c.R, c.G, c.B, c.A)
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" (the leading '#' is optional).
func ParseHexColor(s string) (Color, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	var comps [4]float32
	comps[3] = 1
	for i := 0; i < len(s)/2; i++ {
		hi, ok1 := hexNibble(s[2*i])
		lo, ok2 := hexNibble(s[2*i+1])
		if !ok1 || !ok2 {
			return Color{}, false
		}
		comps[i] = float32(hi<<4|lo) / 255
	}
	return Color{comps[0], comps[1], comps[2], comps[3]}, true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
