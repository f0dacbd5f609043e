package report

import (
	"fmt"

	"github.com/inkacorp/solicitudes/internal/render/pdf"
)

// Theme is the brand palette of the report.
type Theme struct {
	Primary   pdf.Color
	Secondary pdf.Color
	Tertiary  pdf.Color
	Contrast1 pdf.Color
	Contrast2 pdf.Color
	TextDark  pdf.Color
	LightGray pdf.Color
}

// DefaultTheme returns the corporate palette.
func DefaultTheme() Theme {
	return Theme{
		Primary:   pdf.Color{R: 14, G: 89, B: 54},
		Secondary: pdf.Color{R: 22, G: 115, B: 54},
		Tertiary:  pdf.Color{R: 17, G: 76, B: 89},
		Contrast1: pdf.Color{R: 191, G: 75, B: 33},
		Contrast2: pdf.Color{R: 242, G: 177, B: 56},
		TextDark:  pdf.Color{R: 51, G: 51, B: 51},
		LightGray: pdf.Color{R: 240, G: 240, B: 240},
	}
}

// ThemeFromStrings overrides the default palette with CSS colour strings
// keyed by role name. Unknown roles are an error.
func ThemeFromStrings(colors map[string]string) (Theme, error) {
	t := DefaultTheme()
	slots := map[string]*pdf.Color{
		"primary":   &t.Primary,
		"secondary": &t.Secondary,
		"tertiary":  &t.Tertiary,
		"contrast1": &t.Contrast1,
		"contrast2": &t.Contrast2,
		"textdark":  &t.TextDark,
		"lightgray": &t.LightGray,
	}
	for role, value := range colors {
		slot, ok := slots[role]
		if !ok {
			return Theme{}, fmt.Errorf("unknown theme colour %q", role)
		}
		c, err := pdf.ParseColor(value)
		if err != nil {
			return Theme{}, fmt.Errorf("theme colour %s: %w", role, err)
		}
		*slot = c
	}
	return t, nil
}
