package solicitudes

import (
	"github.com/inkacorp/solicitudes/pkg/api"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type Record = api.Record
type Result = api.Result

func New() *Generator                           { return api.New() }
func NewWithOptions(options Options) *Generator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }
func RecordFromMap(row map[string]any) Record   { return api.RecordFromMap(row) }

var (
	WithLogoURL       = api.WithLogoURL
	WithCompany       = api.WithCompany
	WithTermsURL      = api.WithTermsURL
	WithColors        = api.WithColors
	WithDebug         = api.WithDebug
	WithVerify        = api.WithVerify
	WithClock         = api.WithClock
	WithImageTimeout  = api.WithImageTimeout
	WithHTTPClient    = api.WithHTTPClient
	WithResourcePath  = api.WithResourcePath
	WithTitle         = api.WithTitle
	WithAuthor        = api.WithAuthor
	WithFooterReserve = api.WithFooterReserve
	WithTopMargin     = api.WithTopMargin
	WithMaxImageSize  = api.WithMaxImageSize
)

const (
	PageWidth  = api.PageWidth
	PageHeight = api.PageHeight
)
