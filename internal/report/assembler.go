// Package report lays out a credit application as a paginated PDF document.
package report

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/layout"
	"github.com/inkacorp/solicitudes/internal/pagination"
	"github.com/inkacorp/solicitudes/internal/qr"
	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/render/pdf"
	"github.com/inkacorp/solicitudes/internal/res"
)

// Page geometry in millimetres.
const (
	Margin       = 20.0
	ContentWidth = 170.0
	headerHeight = 40.0
	bandHeight   = 8.0
	footerHeight = 25.0
	columnGap    = 10.0
)

// Defaults for Config.
const (
	DefaultCompany    = "INKA CORP"
	DefaultSystemName = "Sistema de Gestión de Solicitudes"
	DefaultTermsURL   = "https://solicitud.inkacorp.net"
)

// ImageSource resolves the images referenced by a record.
type ImageSource interface {
	ResolveImage(ctx context.Context, url string) res.Image
	ResolveLogo(ctx context.Context, url string) res.Image
}

// Config controls the content and geometry of the report.
type Config struct {
	Company    string
	SystemName string
	TermsURL   string
	// LogoURL is drawn in the header; the text fallback is used when empty
	// or unreadable.
	LogoURL string
	Theme   Theme

	MaxImageWidth  float64
	MaxImageHeight float64
	Page           pagination.Options

	// Now is the clock used for the signature and footer timestamps.
	Now func() time.Time
	// Debug logs layout decisions.
	Debug bool
}

// DefaultConfig returns the standard report configuration.
func DefaultConfig() Config {
	return Config{
		Company:        DefaultCompany,
		SystemName:     DefaultSystemName,
		TermsURL:       DefaultTermsURL,
		Theme:          DefaultTheme(),
		MaxImageWidth:  layout.DefaultMaxWidth,
		MaxImageHeight: layout.DefaultMaxHeight,
		Page:           pagination.NewEngine().Options(),
		Now:            time.Now,
	}
}

// Summary describes a finished report.
type Summary struct {
	Pages int
	// Photos is the number of document cards drawn.
	Photos int
	// Skipped counts photos that were referenced but could not be drawn.
	Skipped int
	Breaks  int
}

// Assembler draws reports onto a pdf.Surface.
type Assembler struct {
	cfg    Config
	images ImageSource
	qr     qr.Encoder
	engine *pagination.Engine
}

// NewAssembler creates an assembler. images and enc may be nil: photos and
// the logo are then omitted and the signature falls back to text.
func NewAssembler(cfg Config, images ImageSource, enc qr.Encoder) *Assembler {
	def := DefaultConfig()
	if cfg.Company == "" {
		cfg.Company = def.Company
	}
	if cfg.SystemName == "" {
		cfg.SystemName = def.SystemName
	}
	if cfg.TermsURL == "" {
		cfg.TermsURL = def.TermsURL
	}
	if cfg.MaxImageWidth <= 0 {
		cfg.MaxImageWidth = def.MaxImageWidth
	}
	if cfg.MaxImageHeight <= 0 {
		cfg.MaxImageHeight = def.MaxImageHeight
	}
	if cfg.Page.PageHeight <= 0 || cfg.Page.PageWidth <= 0 {
		cfg.Page = def.Page
	}
	if cfg.Page.MarginTop <= 0 {
		cfg.Page.MarginTop = def.Page.MarginTop
	}
	if cfg.Page.FooterReserve <= 0 {
		cfg.Page.FooterReserve = def.Page.FooterReserve
	}
	if cfg.Theme == (Theme{}) {
		cfg.Theme = def.Theme
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	engine := pagination.NewEngine()
	engine.SetOptions(cfg.Page)
	return &Assembler{cfg: cfg, images: images, qr: enc, engine: engine}
}

// Config returns the effective configuration.
func (a *Assembler) Config() Config { return a.cfg }

// writer holds the state of one Assemble call.
type writer struct {
	*Assembler
	ctx     context.Context
	s       pdf.Surface
	cur     *pagination.Cursor
	rec     record.Record
	now     time.Time
	summary Summary
}

// Assemble draws rec onto s. Unreadable images are left out; any surface
// error aborts the report.
func (a *Assembler) Assemble(ctx context.Context, s pdf.Surface, rec record.Record) (Summary, error) {
	w := &writer{
		Assembler: a,
		ctx:       ctx,
		s:         s,
		rec:       rec,
		now:       a.cfg.Now(),
	}

	s.AddPage()
	w.cur = a.engine.NewCursor(s, headerHeight+15)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"header", w.header},
		{"disclaimer", w.disclaimer},
		{"personal section", func() error { return w.section(titlePersonal, rec.PersonalFields()) }},
		{"family section", func() error { return w.section(titleFamily, rec.FamilyFields()) }},
		{"credit section", func() error { return w.section(titleCredit, rec.CreditFields()) }},
		{"documents", w.photos},
		{"signature", w.signature},
		{"footer", w.footer},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return w.summary, fmt.Errorf("failed to draw %s: %w", step.name, err)
		}
		if err := s.Err(); err != nil {
			return w.summary, fmt.Errorf("failed to draw %s: %w", step.name, err)
		}
	}

	w.summary.Pages = s.PageCount()
	w.summary.Breaks = w.cur.Breaks()
	if a.cfg.Debug {
		log.Debug().Str("solicitud", rec.ID).Int("pages", w.summary.Pages).
			Int("photos", w.summary.Photos).Int("skipped", w.summary.Skipped).
			Msg("report assembled")
	}
	return w.summary, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName is the download name of the report for rec.
func FileName(rec record.Record) string {
	name := whitespace.ReplaceAllString(rec.DisplayName("Cliente"), "_")
	return fmt.Sprintf("Solicitud_%s_%s.pdf", rec.ID, name)
}

// band draws a full-width coloured title strip at y.
func (w *writer) band(y float64, fill pdf.Color, title string, size float64) {
	w.s.SetFillColor(fill)
	w.s.Rect(Margin, y, ContentWidth, bandHeight, "F")
	w.s.SetTextColor(pdf.White)
	w.s.SetFont(pdf.FontBold, size)
	w.s.Text(Margin+3, y+5.5, title)
}

func (w *writer) wrap(text string, width float64) []string {
	return layout.WrapText(text, width, w.s.TextWidth)
}

// centered writes s horizontally centred on the page.
func (w *writer) centered(y float64, s string) {
	w.s.Text((w.cfg.Page.PageWidth-w.s.TextWidth(s))/2, y, s)
}
