package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{14, 89, 54, 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDocumentOutputVerifies(t *testing.T) {
	doc := NewDocument(RenderOptions{Title: "Solicitud", Producer: "solicitudes"})
	doc.AddPage()
	doc.SetFont(FontBold, 18)
	doc.SetFillColor(Color{14, 89, 54})
	doc.Rect(0, 0, 210, 40, "F")
	doc.Text(55, 20, "SOLICITUD DE CRÉDITO")
	doc.AddPage()
	doc.SetPage(1)
	doc.Text(20, 280, "Página 1 de 2")

	if err := doc.Image("logo", pngBytes(t, 40, 20), ImagePNG, 15, 8, 25, 25); err != nil {
		t.Fatalf("Image returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
	pages, err := Verify(buf.Bytes())
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if pages != 2 {
		t.Errorf("Expected 2 pages, got %d", pages)
	}
}

func TestDocumentBrokenImageKeepsSurfaceUsable(t *testing.T) {
	doc := NewDocument(RenderOptions{})
	doc.AddPage()

	if err := doc.Image("broken", []byte("not an image"), ImageJPEG, 20, 20, 10, 10); err == nil {
		t.Fatal("Expected an error for undecodable image data")
	}
	if doc.Err() != nil {
		t.Fatalf("Surface kept the image error: %v", doc.Err())
	}

	doc.Text(20, 40, "sigue")
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
}

func TestTextWidthGrowsWithText(t *testing.T) {
	doc := NewDocument(RenderOptions{})
	doc.SetFont(FontRegular, 9)
	short := doc.TextWidth("Cédula")
	long := doc.TextWidth("Cédula de identidad")
	if short <= 0 || long <= short {
		t.Errorf("Unexpected widths: %v, %v", short, long)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#0E5936", Color{14, 89, 54}, false},
		{"#fff", Color{255, 255, 255}, false},
		{"rgb(191, 75, 33)", Color{191, 75, 33}, false},
		{"#12", Color{}, true},
		{"green", Color{}, true},
		{"rgb(300, 0, 0)", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if (Color{14, 89, 54}).Hex() != "#0E5936" {
		t.Error("Hex round trip failed")
	}
}
