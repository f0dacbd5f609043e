package pdf

import "io"

// Font styles accepted by Surface.SetFont.
const (
	FontRegular = ""
	FontBold    = "B"
)

// Image types accepted by Surface.Image.
const (
	ImageJPEG = "JPG"
	ImagePNG  = "PNG"
)

// Surface is the drawing capability the report is written against. Units are
// millimetres with the origin at the top-left corner of the page.
type Surface interface {
	AddPage()
	PageCount() int
	SetPage(n int)

	SetFillColor(c Color)
	SetTextColor(c Color)
	SetDrawColor(c Color)
	SetLineWidth(w float64)
	SetFont(style string, size float64)

	Rect(x, y, w, h float64, style string)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, s string)
	TextWidth(s string) float64

	// Image places an encoded bitmap. A failing image leaves the surface usable.
	Image(name string, data []byte, imageType string, x, y, w, h float64) error

	Output(w io.Writer) error
	Err() error
}
