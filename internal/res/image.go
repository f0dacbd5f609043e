package res

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Fallback pixel size used when an image does not report its dimensions.
const (
	FallbackWidth  = 800
	FallbackHeight = 600
)

// JPEGQuality is used when photos have to be re-encoded.
const JPEGQuality = 80

// svgRasterSize is the longest side, in pixels, of a rasterised SVG.
const svgRasterSize = 512

// Image types understood by the drawing surface.
const (
	TypeJPEG = "JPG"
	TypePNG  = "PNG"
)

// Image is a resolved bitmap ready to be placed on a page. Data is nil when
// the source could not be fetched or decoded.
type Image struct {
	URL    string
	Width  int
	Height int
	Data   []byte
	Type   string
}

// OK reports whether the image can be drawn.
func (i Image) OK() bool { return len(i.Data) > 0 }

// ResolveImage fetches a photo and reports its pixel size. JPEG and plain
// 8-bit PNG payloads are kept as-is; interlaced or 16-bit PNGs and other
// raster formats are re-encoded as JPEG.
// Failures are logged and yield an Image without data.
func (l *Loader) ResolveImage(ctx context.Context, urlStr string) Image {
	img, err := l.resolve(ctx, urlStr, TypeJPEG)
	if err != nil {
		l.skip(urlStr, err)
		return Image{URL: urlStr}
	}
	return img
}

// ResolveLogo is ResolveImage for artwork: SVG and other non-native formats
// are converted to PNG to keep transparency.
func (l *Loader) ResolveLogo(ctx context.Context, urlStr string) Image {
	img, err := l.resolve(ctx, urlStr, TypePNG)
	if err != nil {
		l.skip(urlStr, err)
		return Image{URL: urlStr}
	}
	return img
}

func (l *Loader) skip(urlStr string, err error) {
	log.Warn().Err(err).Str("url", urlStr).Msg("image skipped")
	if l.OnSkip != nil {
		l.OnSkip(urlStr, err)
	}
}

func (l *Loader) resolve(ctx context.Context, urlStr, reencodeAs string) (Image, error) {
	res, err := l.LoadImage(ctx, urlStr)
	if err != nil {
		return Image{}, err
	}

	if res.Type == ResourceTypeSVG {
		rgba, err := rasterizeSVG(res.Data, svgRasterSize)
		if err != nil {
			return Image{}, err
		}
		return encode(urlStr, rgba, TypePNG)
	}

	switch {
	case res.MimeType == "image/jpeg":
		out := Image{URL: urlStr, Data: res.Data, Type: TypeJPEG}
		out.Width, out.Height = dimensions(res.Data)
		return out, nil
	case res.MimeType == "image/png" && plainPNG(res.Data):
		out := Image{URL: urlStr, Data: res.Data, Type: TypePNG}
		out.Width, out.Height = dimensions(res.Data)
		return out, nil
	}

	decoded, _, err := image.Decode(res.GetReader())
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode %s: %w", res.MimeType, err)
	}
	return encode(urlStr, decoded, reencodeAs)
}

// plainPNG reports whether the PNG header describes an image the drawing
// surface embeds directly: at most 8 bits per channel and no interlacing.
func plainPNG(data []byte) bool {
	const (
		depthOffset     = 24
		interlaceOffset = 28
	)
	if len(data) <= interlaceOffset || string(data[12:16]) != "IHDR" {
		return false
	}
	return data[depthOffset] <= 8 && data[interlaceOffset] == 0
}

// dimensions reads the pixel size from the image header, falling back to
// 800x600 when the header cannot be read.
func dimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return FallbackWidth, FallbackHeight
	}
	return cfg.Width, cfg.Height
}

func encode(urlStr string, img image.Image, as string) (Image, error) {
	var buf bytes.Buffer
	switch as {
	case TypePNG:
		if err := png.Encode(&buf, toNRGBA(img)); err != nil {
			return Image{}, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		as = TypeJPEG
		if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return Image{}, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		w, h = FallbackWidth, FallbackHeight
	}
	return Image{URL: urlStr, Width: w, Height: h, Data: buf.Bytes(), Type: as}, nil
}

// toNRGBA converts img to 8 bits per channel so the PNG encoder never
// writes a 16-bit image.
func toNRGBA(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.Paletted, *image.Gray:
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// flatten composes img over white; JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func rasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(size), float64(size)
	}
	w, h := size, size
	if vw > vh {
		h = int(float64(size) * vh / vw)
	} else {
		w = int(float64(size) * vw / vh)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}
