// Package pdftest provides a recording drawing surface for layout tests.
package pdftest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/inkacorp/solicitudes/internal/render/pdf"
)

// Op kinds recorded by Recorder.
const (
	OpAddPage = "addpage"
	OpRect    = "rect"
	OpLine    = "line"
	OpText    = "text"
	OpImage   = "image"
)

// ErrImage is returned for images listed in Recorder.FailImages.
var ErrImage = errors.New("image rejected")

// Op is one recorded drawing call.
type Op struct {
	Kind  string
	Page  int
	X, Y  float64
	W, H  float64
	Text  string
	Name  string
	Style string
	Size  float64
	Fill  pdf.Color
}

// Recorder is a pdf.Surface that keeps every call in memory. Text widths are
// approximated from the rune count and the font size.
type Recorder struct {
	// FailImages makes Image fail for these names.
	FailImages map[string]bool
	// OutputErr is returned by Output when set.
	OutputErr error

	Ops []Op

	pages    int
	current  int
	fill     pdf.Color
	fontSize float64
	style    string
}

var _ pdf.Surface = (*Recorder)(nil)

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{fontSize: 10, FailImages: map[string]bool{}}
}

func (r *Recorder) AddPage() {
	r.pages++
	r.current = r.pages
	r.Ops = append(r.Ops, Op{Kind: OpAddPage, Page: r.current})
}

func (r *Recorder) PageCount() int { return r.pages }

func (r *Recorder) SetPage(n int) {
	if n >= 1 && n <= r.pages {
		r.current = n
	}
}

func (r *Recorder) SetFillColor(c pdf.Color) { r.fill = c }
func (r *Recorder) SetTextColor(pdf.Color)   {}
func (r *Recorder) SetDrawColor(pdf.Color)   {}
func (r *Recorder) SetLineWidth(float64)     {}

func (r *Recorder) SetFont(style string, size float64) {
	r.style = style
	r.fontSize = size
}

func (r *Recorder) Rect(x, y, w, h float64, style string) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Page: r.current, X: x, Y: y, W: w, H: h, Style: style, Fill: r.fill})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Page: r.current, X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

func (r *Recorder) Text(x, y float64, s string) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.current, X: x, Y: y, Text: s, Style: r.style, Size: r.fontSize})
}

// TextWidth assumes an average glyph of half an em.
func (r *Recorder) TextWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.fontSize * 0.5 * 0.3528
}

func (r *Recorder) Image(name string, _ []byte, imageType string, x, y, w, h float64) error {
	if r.FailImages[name] {
		return fmt.Errorf("%w: %s", ErrImage, name)
	}
	r.Ops = append(r.Ops, Op{Kind: OpImage, Page: r.current, X: x, Y: y, W: w, H: h, Name: name, Style: imageType})
	return nil
}

// Output writes a plain-text dump of the recorded operations.
func (r *Recorder) Output(w io.Writer) error {
	if r.OutputErr != nil {
		return r.OutputErr
	}
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%d %s %.2f %.2f %s\n", op.Page, op.Kind, op.X, op.Y, op.Text); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Err() error { return nil }

// Filter returns the ops of one kind.
func (r *Recorder) Filter(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every text run, in drawing order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Filter(OpText) {
		out = append(out, op.Text)
	}
	return out
}

// FindText returns the first text op containing substr.
func (r *Recorder) FindText(substr string) (Op, bool) {
	for _, op := range r.Filter(OpText) {
		if strings.Contains(op.Text, substr) {
			return op, true
		}
	}
	return Op{}, false
}

// TextsOnPage returns the text runs drawn on page n.
func (r *Recorder) TextsOnPage(n int) []string {
	var out []string
	for _, op := range r.Filter(OpText) {
		if op.Page == n {
			out = append(out, op.Text)
		}
	}
	return out
}
