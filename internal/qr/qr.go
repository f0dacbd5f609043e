// Package qr renders the electronic signature code.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Encoder turns text into a PNG scannable code.
type Encoder interface {
	Encode(text string) ([]byte, error)
}

// PNGEncoder encodes QR codes with medium error correction.
type PNGEncoder struct {
	// Size is the side of the output image in pixels.
	Size int
	// Foreground is the module colour; the background is white.
	Foreground color.Color
}

// NewEncoder returns an encoder producing 200px codes in the given colour.
func NewEncoder(fg color.Color) *PNGEncoder {
	return &PNGEncoder{Size: 200, Foreground: fg}
}

// Encode renders text as a PNG QR code.
func (e *PNGEncoder) Encode(text string) ([]byte, error) {
	code, err := qr.Encode(text, qr.M, qr.Unicode)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	size := e.Size
	if size <= 0 {
		size = 200
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, e.paint(scaled)); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// paint maps dark modules to the foreground colour.
func (e *PNGEncoder) paint(src image.Image) image.Image {
	fg := e.Foreground
	if fg == nil {
		fg = color.Black
	}
	b := src.Bounds()
	dst := image.NewPaletted(b, color.Palette{color.White, fg})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if lum := color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y; lum < 128 {
				dst.SetColorIndex(x, y, 1)
			}
		}
	}
	return dst
}
