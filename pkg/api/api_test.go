package api

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkacorp/solicitudes/internal/render/pdf"
)

func photoServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		img.Set(x, x%48, color.RGBA{191, 75, 33, 255})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
	data := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func sampleRow(base string) map[string]any {
	return map[string]any{
		"solicitudid":    "202401151430001",
		"nombresocio":    "María López",
		"cedulasocio":    "0102030405",
		"estadocivil":    "Casada",
		"paisresidencia": "Ecuador",
		"whatsappsocio":  "+593991234567",
		"monto":          1500,
		"estado":         "pendiente",
		"fotoidentidad":  base + "/id.jpg",
		"fotoconid":      base + "/missing.jpg",
		"fotodireccion":  base + "/home.jpg",
		"bien":           "Vehículo",
	}
}

func fixedClock() time.Time {
	return time.Date(2024, time.January, 15, 14, 30, 5, 0, time.UTC)
}

func TestGenerateBytes(t *testing.T) {
	server := photoServer(t)
	gen := NewWithOptions(DefaultOptions()).
		WithOption(WithClock(fixedClock)).
		WithOption(WithHTTPClient(server.Client())).
		SetVerify(true)

	data, result, err := gen.GenerateWithResult(context.Background(), RecordFromMap(sampleRow(server.URL)))
	if err != nil {
		t.Fatalf("GenerateWithResult returned error: %v", err)
	}
	if result.Photos != 2 || result.Skipped != 1 {
		t.Errorf("Expected 2 photos and 1 skipped, got %d and %d", result.Photos, result.Skipped)
	}
	pages, err := pdf.Verify(data)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if pages != result.Pages {
		t.Errorf("Expected %d pages, got %d", result.Pages, pages)
	}
}

// adam7PNG is a 1x1 interlaced RGB PNG; image/png only writes
// non-interlaced files.
func adam7PNG(t *testing.T) []byte {
	t.Helper()
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write([]byte{0, 14, 89, 54}); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	for _, c := range []struct {
		typ  string
		data []byte
	}{
		{"IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 1}},
		{"IDAT", idat.Bytes()},
		{"IEND", nil},
	} {
		binary.Write(&buf, binary.BigEndian, uint32(len(c.data)))
		body := append([]byte(c.typ), c.data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	return buf.Bytes()
}

func TestGenerateDrawsInterlacedPNG(t *testing.T) {
	data := adam7PNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	gen := New().
		WithOption(WithClock(fixedClock)).
		WithOption(WithHTTPClient(server.Client()))
	rec := RecordFromMap(map[string]any{
		"solicitudid":   "202401151430001",
		"nombresocio":   "María López",
		"fotoidentidad": server.URL + "/id.png",
	})

	_, result, err := gen.GenerateWithResult(context.Background(), rec)
	if err != nil {
		t.Fatalf("GenerateWithResult returned error: %v", err)
	}
	if result.Photos != 1 || result.Skipped != 0 {
		t.Errorf("Expected 1 photo and none skipped, got %d and %d", result.Photos, result.Skipped)
	}
}

func TestGenerateWritesOnlyOnSuccess(t *testing.T) {
	server := photoServer(t)
	gen := New().WithOption(WithHTTPClient(server.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := gen.Generate(ctx, RecordFromMap(sampleRow(server.URL)), &out); err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}
	if out.Len() != 0 {
		t.Errorf("Expected nothing written, got %d bytes", out.Len())
	}

	if err := gen.Generate(context.Background(), RecordFromMap(sampleRow(server.URL)), &out); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("%PDF-")) {
		t.Error("Expected a PDF header")
	}
}

func TestGenerateToFile(t *testing.T) {
	dir := t.TempDir()
	rec := RecordFromMap(map[string]any{"solicitudid": "202401151430001", "nombresocio": "Ana  Torres"})

	path, err := New().GenerateToFile(context.Background(), rec, dir)
	if err != nil {
		t.Fatalf("GenerateToFile returned error: %v", err)
	}
	if want := filepath.Join(dir, "Solicitud_202401151430001_Ana_Torres.pdf"); path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("Expected a non-empty file, got %v", err)
	}
}

func TestInvalidColors(t *testing.T) {
	gen := NewWithOptions(DefaultOptions()).WithOption(WithColors(map[string]string{"primary": "not-a-colour"}))
	if _, err := gen.GenerateBytes(context.Background(), Record{ID: "1"}); err == nil {
		t.Fatal("Expected an error for an invalid colour")
	}
}

func TestBuilderReturnsNewGenerator(t *testing.T) {
	base := New()
	debug := base.SetDebug(true)
	withPath := base.AddResourcePath("/srv/fotos")

	if base.Options().Debug {
		t.Error("SetDebug modified the original generator")
	}
	if !debug.Options().Debug {
		t.Error("SetDebug did not apply")
	}
	if len(base.Options().ResourcePaths) != 0 || len(withPath.Options().ResourcePaths) != 1 {
		t.Error("AddResourcePath must not share the original slice")
	}
	if got := base.SetLogoURL("logo.svg").Options().LogoURL; got != "logo.svg" {
		t.Errorf("Expected logo.svg, got %s", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.MarginTop != 20 || opts.FooterReserve != 50 {
		t.Errorf("Unexpected page flow defaults %v/%v", opts.MarginTop, opts.FooterReserve)
	}
	if opts.MaxImageWidth != 70 || opts.MaxImageHeight != 50 {
		t.Errorf("Unexpected image box defaults %vx%v", opts.MaxImageWidth, opts.MaxImageHeight)
	}

	for _, opt := range []Option{WithFooterReserve(40), WithTopMargin(15), WithMaxImageSize(60, 40), WithTermsURL("https://x"), WithCompany("ACME"), WithImageTimeout(time.Second)} {
		opt(&opts)
	}
	if opts.FooterReserve != 40 || opts.MarginTop != 15 || opts.MaxImageWidth != 60 || opts.TermsURL != "https://x" || opts.Company != "ACME" || opts.ImageTimeout != time.Second {
		t.Errorf("Options not applied: %+v", opts)
	}
}
