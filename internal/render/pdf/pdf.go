package pdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
)

// fontFamily is the core font used for every text run.
const fontFamily = "Helvetica"

// RenderOptions contains document metadata.
type RenderOptions struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
	// Compress toggles stream compression; tests disable it to inspect content.
	Compress bool
}

// Document is an fpdf-backed Surface for A4 portrait pages in millimetres.
type Document struct {
	// Debug enables verbose logging of drawing operations
	Debug bool

	pdf       *fpdf.Fpdf
	translate func(string) string
	images    map[string]bool
}

var _ Surface = (*Document)(nil)

// NewDocument creates an empty document. The caller adds the first page.
func NewDocument(options RenderOptions) *Document {
	pdf := fpdf.New("P", "mm", "A4", "")

	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(options.Compress)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	if !options.CreationDate.IsZero() {
		pdf.SetCreationDate(options.CreationDate)
		pdf.SetModificationDate(options.CreationDate)
	}
	pdf.SetFont(fontFamily, FontRegular, 10)

	return &Document{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]bool),
	}
}

// AddPage appends a page and makes it current.
func (d *Document) AddPage() {
	d.pdf.AddPage()
	if d.Debug {
		log.Debug().Int("page", d.pdf.PageNo()).Msg("page added")
	}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pdf.PageCount() }

// SetPage selects an existing page for further drawing.
func (d *Document) SetPage(n int) { d.pdf.SetPage(n) }

func (d *Document) SetFillColor(c Color) { d.pdf.SetFillColor(c.R, c.G, c.B) }
func (d *Document) SetTextColor(c Color) { d.pdf.SetTextColor(c.R, c.G, c.B) }
func (d *Document) SetDrawColor(c Color) { d.pdf.SetDrawColor(c.R, c.G, c.B) }
func (d *Document) SetLineWidth(w float64) {
	d.pdf.SetLineWidth(w)
}

// SetFont selects the core font in the given style and point size.
func (d *Document) SetFont(style string, size float64) {
	d.pdf.SetFont(fontFamily, style, size)
}

func (d *Document) Rect(x, y, w, h float64, style string) {
	d.pdf.Rect(x, y, w, h, style)
}

func (d *Document) Line(x1, y1, x2, y2 float64) {
	d.pdf.Line(x1, y1, x2, y2)
}

// Text writes s with its baseline at y.
func (d *Document) Text(x, y float64, s string) {
	d.pdf.Text(x, y, d.translate(s))
}

// TextWidth measures s in the current font.
func (d *Document) TextWidth(s string) float64 {
	return d.pdf.GetStringWidth(d.translate(s))
}

// Image registers data under name once and draws it in the given box.
func (d *Document) Image(name string, data []byte, imageType string, x, y, w, h float64) error {
	if err := d.pdf.Error(); err != nil {
		return err
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	if !d.images[name] {
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if err := d.pdf.Error(); err != nil {
			d.pdf.ClearError()
			return fmt.Errorf("failed to register image %s: %w", name, err)
		}
		d.images[name] = true
	}

	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return fmt.Errorf("failed to draw image %s: %w", name, err)
	}
	if d.Debug {
		log.Debug().Str("image", name).Float64("x", x).Float64("y", y).
			Float64("w", w).Float64("h", h).Msg("image placed")
	}
	return nil
}

// Output writes the finished document. The document cannot be drawn on afterwards.
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Err returns the first drawing error, if any.
func (d *Document) Err() error { return d.pdf.Error() }
