package pdf

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an RGB colour with 0-255 components.
type Color struct {
	R, G, B int
}

// Common colours.
var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// Hex renders the colour as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA converts the colour for use with image encoders.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// ParseColor parses #RGB, #RRGGBB or rgb(r, g, b).
func ParseColor(value string) (Color, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	if strings.HasPrefix(v, "#") {
		if r, g, b, ok := parseHexColor(v[1:]); ok {
			return Color{r, g, b}, nil
		}
		return Color{}, fmt.Errorf("invalid hex color %q", value)
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(v, "rgb("), ")"), ",")
		if len(parts) == 3 {
			var comps [3]int
			for i, p := range parts {
				n, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil || n < 0 || n > 255 {
					return Color{}, fmt.Errorf("invalid rgb color %q", value)
				}
				comps[i] = n
			}
			return Color{comps[0], comps[1], comps[2]}, nil
		}
	}
	return Color{}, fmt.Errorf("unsupported color %q", value)
}

func parseHexColor(s string) (int, int, int, bool) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	r, err1 := strconv.ParseUint(s[0:2], 16, 8)
	g, err2 := strconv.ParseUint(s[2:4], 16, 8)
	b, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(r), int(g), int(b), true
}
