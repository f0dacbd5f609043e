package layout

import "math"

// PxToMM converts pixels at 96 DPI to millimetres.
const PxToMM = 0.264583

// Default maximum image box on the report, in millimetres.
const (
	DefaultMaxWidth  = 70.0
	DefaultMaxHeight = 50.0
)

// Box is a scaled image box in millimetres.
type Box struct {
	MaxWidth  float64
	MaxHeight float64
	Width     float64
	Height    float64
}

// ComputeBox scales an image of originalWidth x originalHeight pixels to fit
// inside maxWidth x maxHeight millimetres. Images are never enlarged and the
// aspect ratio is preserved. Non-positive sizes give an empty box.
func ComputeBox(originalWidth, originalHeight, maxWidth, maxHeight float64) Box {
	box := Box{MaxWidth: maxWidth, MaxHeight: maxHeight}
	if originalWidth <= 0 || originalHeight <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return box
	}

	widthMM := originalWidth * PxToMM
	heightMM := originalHeight * PxToMM

	scale := math.Min(math.Min(maxWidth/widthMM, maxHeight/heightMM), 1)

	box.Width = widthMM * scale
	box.Height = heightMM * scale
	return box
}

// Fits reports whether the box lies inside its maximum bounds.
func (b Box) Fits() bool {
	const eps = 1e-9
	return b.Width <= b.MaxWidth+eps && b.Height <= b.MaxHeight+eps
}
