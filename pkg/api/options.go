package api

import (
	"net/http"
	"time"
)

// Options represents configuration options for the report generator
type Options struct {
	// Branding
	Company    string
	SystemName string
	TermsURL   string
	LogoURL    string
	// Colors overrides theme colours by role (primary, secondary, tertiary,
	// contrast1, contrast2, textdark, lightgray).
	Colors map[string]string

	// Page flow, in millimetres
	MarginTop     float64
	FooterReserve float64

	// Maximum photo box, in millimetres
	MaxImageWidth  float64
	MaxImageHeight float64

	// Resource loading
	ImageTimeout  time.Duration
	ResourcePaths []string
	HTTPClient    *http.Client

	// Rendering options
	Debug bool
	// Verify re-reads every produced document and checks its page count
	Verify bool
	// Compress toggles PDF stream compression
	Compress bool

	// Clock is used for the signature and footer timestamps
	Clock func() time.Time

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Company:    "INKA CORP",
		SystemName: "Sistema de Gestión de Solicitudes",
		TermsURL:   "https://solicitud.inkacorp.net",

		// 20mm restart margin and 50mm kept free for the footer
		MarginTop:     20,
		FooterReserve: 50,

		MaxImageWidth:  70,
		MaxImageHeight: 50,

		ImageTimeout:  30 * time.Second,
		ResourcePaths: []string{},

		Debug:    false,
		Verify:   false,
		Compress: true,

		Clock: time.Now,

		Author:  "INKA CORP",
		Subject: "Solicitud de crédito",
	}
}

// WithLogoURL sets the header logo (http(s), data: URL or local path)
func WithLogoURL(url string) Option {
	return func(o *Options) {
		o.LogoURL = url
	}
}

// WithCompany sets the company name used in the disclaimer and footer
func WithCompany(company string) Option {
	return func(o *Options) {
		o.Company = company
	}
}

// WithTermsURL sets the terms and conditions URL quoted in the disclaimer
func WithTermsURL(url string) Option {
	return func(o *Options) {
		o.TermsURL = url
	}
}

// WithColors overrides theme colours by role
func WithColors(colors map[string]string) Option {
	return func(o *Options) {
		o.Colors = colors
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithVerify enables validation of every produced document
func WithVerify(verify bool) Option {
	return func(o *Options) {
		o.Verify = verify
	}
}

// WithClock sets the clock used for timestamps
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithImageTimeout bounds each image download
func WithImageTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.ImageTimeout = timeout
	}
}

// WithHTTPClient sets the client used to download images
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithResourcePath adds a path to search for local images
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithFooterReserve sets the space kept free above the bottom edge
func WithFooterReserve(mm float64) Option {
	return func(o *Options) {
		o.FooterReserve = mm
	}
}

// WithTopMargin sets where content restarts after a page break
func WithTopMargin(mm float64) Option {
	return func(o *Options) {
		o.MarginTop = mm
	}
}

// WithMaxImageSize sets the largest box a photo is scaled into
func WithMaxImageSize(width, height float64) Option {
	return func(o *Options) {
		o.MaxImageWidth = width
		o.MaxImageHeight = height
	}
}

// A4 portrait in millimetres
const (
	PageWidth  = 210.0
	PageHeight = 297.0
)
