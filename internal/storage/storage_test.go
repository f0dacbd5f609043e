package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFileSinkPut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewFileSink(dir)

	path, err := sink.Put(context.Background(), "Solicitud_1_Ana.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if path != filepath.Join(dir, "Solicitud_1_Ana.pdf") {
		t.Errorf("Unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("Expected document contents, got %q (%v)", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the document in the directory, got %d entries", len(entries))
	}
}

func TestFileSinkRejectsBadNames(t *testing.T) {
	sink := NewFileSink(t.TempDir())
	for _, name := range []string{"", "../escape.pdf", "a/b.pdf"} {
		if _, err := sink.Put(context.Background(), name, []byte("x")); err == nil {
			t.Errorf("Expected an error for %q", name)
		}
	}
}

func TestFileSinkCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileSink(dir).Put(ctx, "a.pdf", []byte("x")); err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("Cancelled put left %d files behind", len(entries))
	}
}

func TestMinioSinkURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      MinioConfig
		object   string
		expected string
	}{
		{
			name:     "http url",
			cfg:      MinioConfig{Endpoint: "localhost:9000", Bucket: "reports"},
			object:   "Solicitud_1_Ana.pdf",
			expected: "http://localhost:9000/reports/Solicitud_1_Ana.pdf",
		},
		{
			name:     "https url with prefix",
			cfg:      MinioConfig{Endpoint: "minio.example.com", Bucket: "reports", Prefix: "2024", UseSSL: true},
			object:   "2024/Solicitud_1_Ana.pdf",
			expected: "https://minio.example.com/reports/2024/Solicitud_1_Ana.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &MinioSink{cfg: tt.cfg}
			if got := sink.URL(sink.ObjectName("Solicitud_1_Ana.pdf")); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestMinioSinkPut(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
		ctype  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body, ctype = r.Method, r.URL.Path, string(data), r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink, err := NewMinioSink(MinioConfig{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		AccessKey: "test",
		SecretKey: "testtest",
		Bucket:    "reports",
		Prefix:    "solicitudes",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinioSink returned error: %v", err)
	}

	url, err := sink.Put(context.Background(), "Solicitud_1_Ana.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut || path != "/reports/solicitudes/Solicitud_1_Ana.pdf" {
		t.Errorf("Unexpected request %s %s", method, path)
	}
	if !strings.Contains(body, "%PDF-1.4") {
		t.Errorf("Unexpected body %q", body)
	}
	if ctype != "application/pdf" {
		t.Errorf("Unexpected content type %q", ctype)
	}
	if !strings.HasSuffix(url, "/reports/solicitudes/Solicitud_1_Ana.pdf") {
		t.Errorf("Unexpected URL %s", url)
	}
}
