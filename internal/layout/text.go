package layout

import (
	"strings"
	"unicode"
)

// WidthFunc measures the rendered width of s in the current font.
type WidthFunc func(s string) float64

// WrapText splits text into lines no wider than width. Explicit newlines start
// a new line; words wider than width are broken between runes.
func WrapText(text string, width float64, measure WidthFunc) []string {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if width <= 0 || measure == nil {
		return strings.Split(text, "\n")
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, width, measure)...)
	}
	return lines
}

func wrapParagraph(paragraph string, width float64, measure WidthFunc) []string {
	words := splitIntoWords(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if measure(word) <= width {
			current = word
			continue
		}
		broken := breakWord(word, width, measure)
		lines = append(lines, broken[:len(broken)-1]...)
		current = broken[len(broken)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// breakWord splits a single word that does not fit on one line.
func breakWord(word string, width float64, measure WidthFunc) []string {
	var parts []string
	var b strings.Builder
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && measure(next) > width {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	parts = append(parts, b.String())
	return parts
}

func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
