package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/metrics"
	"github.com/inkacorp/solicitudes/internal/pagination"
	"github.com/inkacorp/solicitudes/internal/qr"
	"github.com/inkacorp/solicitudes/internal/record"
	"github.com/inkacorp/solicitudes/internal/render/pdf"
	"github.com/inkacorp/solicitudes/internal/report"
	"github.com/inkacorp/solicitudes/internal/res"
	"github.com/inkacorp/solicitudes/internal/storage"
)

// Record is a credit application as read from the store.
type Record = record.Record

// RecordFromMap builds a Record from a raw database row.
func RecordFromMap(row map[string]any) Record { return record.FromMap(row) }

// Result describes a generated document.
type Result = report.Summary

// Generator is the main API for turning credit applications into PDF reports
type Generator struct {
	options Options
	theme   report.Theme
	err     error
}

// New creates a new generator with default options
func New() *Generator {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new generator with the specified options
func NewWithOptions(options Options) *Generator {
	g := &Generator{options: options}
	g.theme, g.err = report.ThemeFromStrings(options.Colors)
	return g
}

// Options returns the generator's options.
func (g *Generator) Options() Options { return g.options }

// FileName is the download name of the report for rec.
func (g *Generator) FileName(rec Record) string { return report.FileName(rec) }

// Generate renders rec and writes the PDF to output. Nothing is written when
// generation fails.
func (g *Generator) Generate(ctx context.Context, rec Record, output io.Writer) error {
	data, _, err := g.render(ctx, rec)
	if err != nil {
		return err
	}
	if _, err := output.Write(data); err != nil {
		return fmt.Errorf("failed to copy PDF to output: %w", err)
	}
	return nil
}

// GenerateBytes renders rec and returns the PDF bytes.
func (g *Generator) GenerateBytes(ctx context.Context, rec Record) ([]byte, error) {
	data, _, err := g.render(ctx, rec)
	return data, err
}

// GenerateWithResult is GenerateBytes plus the layout summary.
func (g *Generator) GenerateWithResult(ctx context.Context, rec Record) ([]byte, Result, error) {
	return g.render(ctx, rec)
}

// GenerateToFile renders rec into dir under FileName(rec) and returns the
// path. The file only appears once it is complete.
func (g *Generator) GenerateToFile(ctx context.Context, rec Record, dir string) (string, error) {
	data, _, err := g.render(ctx, rec)
	if err != nil {
		return "", err
	}
	return storage.NewFileSink(dir).Put(ctx, g.FileName(rec), data)
}

func (g *Generator) render(ctx context.Context, rec Record) (data []byte, summary Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveGeneration(metrics.Result(err), time.Since(start), summary.Pages)
		if err != nil {
			log.Error().Err(err).Str("solicitud", rec.ID).Msg("report generation failed")
		}
	}()

	if g.err != nil {
		return nil, summary, fmt.Errorf("invalid options: %w", g.err)
	}

	now := time.Now
	if g.options.Clock != nil {
		now = g.options.Clock
	}
	stamp := now()

	title := g.options.Title
	if title == "" {
		title = "Solicitud de Crédito #" + rec.ID
	}
	doc := pdf.NewDocument(pdf.RenderOptions{
		Title:        title,
		Author:       g.options.Author,
		Subject:      g.options.Subject,
		Keywords:     g.options.Keywords,
		Creator:      "solicitudes",
		Producer:     "solicitudes",
		CreationDate: stamp,
		Compress:     g.options.Compress,
	})
	doc.Debug = g.options.Debug

	cfg := report.Config{
		Company:        g.options.Company,
		SystemName:     g.options.SystemName,
		TermsURL:       g.options.TermsURL,
		LogoURL:        g.options.LogoURL,
		Theme:          g.theme,
		MaxImageWidth:  g.options.MaxImageWidth,
		MaxImageHeight: g.options.MaxImageHeight,
		Page: pagination.Options{
			PageWidth:     PageWidth,
			PageHeight:    PageHeight,
			MarginTop:     g.options.MarginTop,
			FooterReserve: g.options.FooterReserve,
		},
		Now:   func() time.Time { return stamp },
		Debug: g.options.Debug,
	}
	encoder := qr.NewEncoder(cfg.Theme.Primary.NRGBA())

	if g.options.Debug {
		log.Debug().Str("solicitud", rec.ID).Int("photos", len(rec.Photos())).Msg("generating report")
	}

	summary, err = report.NewAssembler(cfg, g.newLoader(), encoder).Assemble(ctx, doc, rec)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to assemble report: %w", err)
	}

	var buf bytes.Buffer
	if err = doc.Output(&buf); err != nil {
		return nil, summary, err
	}

	if g.options.Verify {
		pages, verr := pdf.Verify(buf.Bytes())
		if verr != nil {
			err = fmt.Errorf("generated PDF is invalid: %w", verr)
			return nil, summary, err
		}
		if pages != summary.Pages {
			err = fmt.Errorf("generated PDF has %d pages, expected %d", pages, summary.Pages)
			return nil, summary, err
		}
	}

	return buf.Bytes(), summary, nil
}

// newLoader returns a loader whose cache lives for one report.
func (g *Generator) newLoader() *res.Loader {
	loader := res.NewLoader("")
	if g.options.ImageTimeout > 0 {
		loader.Timeout = g.options.ImageTimeout
	}
	if g.options.HTTPClient != nil {
		loader.SetHTTPClient(g.options.HTTPClient)
	}
	for _, path := range g.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	loader.OnSkip = func(string, error) { metrics.IncImageSkipped() }
	return loader
}

// WithOptions returns a new generator with the specified options
func (g *Generator) WithOptions(options Options) *Generator {
	return NewWithOptions(options)
}

// WithOption returns a new generator with the specified option set
func (g *Generator) WithOption(option Option) *Generator {
	newOptions := g.options
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// AddResourcePath adds a path to search for local images
func (g *Generator) AddResourcePath(path string) *Generator {
	newOptions := g.options
	newOptions.ResourcePaths = append(append([]string{}, newOptions.ResourcePaths...), path)
	return NewWithOptions(newOptions)
}

// SetDebug sets the debug mode
func (g *Generator) SetDebug(debug bool) *Generator {
	newOptions := g.options
	newOptions.Debug = debug
	return NewWithOptions(newOptions)
}

// SetVerify enables output validation
func (g *Generator) SetVerify(verify bool) *Generator {
	newOptions := g.options
	newOptions.Verify = verify
	return NewWithOptions(newOptions)
}

// SetLogoURL sets the header logo
func (g *Generator) SetLogoURL(url string) *Generator {
	newOptions := g.options
	newOptions.LogoURL = url
	return NewWithOptions(newOptions)
}

// SetTitle sets the document title
func (g *Generator) SetTitle(title string) *Generator {
	newOptions := g.options
	newOptions.Title = title
	return NewWithOptions(newOptions)
}

// SetAuthor sets the document author
func (g *Generator) SetAuthor(author string) *Generator {
	newOptions := g.options
	newOptions.Author = author
	return NewWithOptions(newOptions)
}
