package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is a raster image
	ResourceTypeImage
	// ResourceTypeSVG is a vector image
	ResourceTypeSVG
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader handles loading resources
type Loader struct {
	// Base URL or file path for resolving relative URLs
	BaseURL string

	// Timeout bounds each remote request
	Timeout time.Duration

	// OnSkip is called for every image that could not be resolved
	OnSkip func(url string, err error)

	// Resource cache
	cache     map[string]*Resource
	cacheLock sync.RWMutex

	// Resource search paths
	searchPaths []string

	// HTTP client for remote resources
	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		cache:       make(map[string]*Resource),
		searchPaths: []string{},
		client:      &http.Client{},
	}
}

// SetHTTPClient replaces the client used for remote resources.
func (l *Loader) SetHTTPClient(c *http.Client) {
	l.client = c
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL or file path
func (l *Loader) Load(ctx context.Context, urlStr string) (*Resource, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return nil, errors.New("empty resource URL")
	}

	l.cacheLock.RLock()
	if res, ok := l.cache[urlStr]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	if strings.HasPrefix(urlStr, "data:") {
		res, err = parseDataURL(urlStr)
	} else {
		var resolvedURL string
		resolvedURL, err = l.resolveURL(urlStr)
		if err != nil {
			return nil, err
		}
		if isRemote(resolvedURL) {
			res, err = l.loadRemote(ctx, resolvedURL)
		} else {
			res, err = l.loadLocal(resolvedURL)
		}
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[urlStr] = res
	l.cacheLock.Unlock()

	return res, nil
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource.
// Examples:
//
//	data:image/png;base64,<base64>
//	data:image/svg+xml,%3Csvg...
func parseDataURL(u string) (*Resource, error) {
	s := strings.TrimPrefix(u, "data:")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid data URL")
	}
	meta, dataPart := parts[0], parts[1]

	isBase64 := false
	for _, c := range strings.Split(meta, ";")[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.QueryUnescape(dataPart); err == nil {
		data = []byte(d)
	} else {
		data = []byte(dataPart)
	}

	return newResource(u, data), nil
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// resolveURL resolves a URL relative to the base URL
func (l *Loader) resolveURL(urlStr string) (string, error) {
	if isRemote(urlStr) || filepath.IsAbs(urlStr) {
		return urlStr, nil
	}
	if strings.HasPrefix(urlStr, "file://") {
		return strings.TrimPrefix(urlStr, "file://"), nil
	}

	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" {
			return urlStr, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), urlStr), nil
	}

	baseURL, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	relURL, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relURL).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, urlStr string) (*Resource, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return newResource(urlStr, data), nil
}

// loadLocal loads a resource from a local file
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l.loadFromSearchPaths(path)
		}
		return nil, err
	}
	return newResource(path, data), nil
}

// loadFromSearchPaths tries to load a resource from the search paths
func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	baseFilename := filepath.Base(filename)

	for _, searchPath := range l.searchPaths {
		path := filepath.Join(searchPath, baseFilename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return newResource(path, data), nil
	}

	return nil, fmt.Errorf("resource not found: %s", filename)
}

// newResource sniffs the content type from the payload.
func newResource(u string, data []byte) *Resource {
	mime := mimetype.Detect(data)
	res := &Resource{URL: u, Data: data, MimeType: mime.String()}
	res.Type = determineResourceType(mime)
	return res
}

// determineResourceType determines the type of a resource
func determineResourceType(mime *mimetype.MIME) ResourceType {
	for m := mime; m != nil; m = m.Parent() {
		switch {
		case m.Is("image/svg+xml"):
			return ResourceTypeSVG
		case strings.HasPrefix(m.String(), "image/"):
			return ResourceTypeImage
		}
	}
	return ResourceTypeOther
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ctx context.Context, urlStr string) (*Resource, error) {
	res, err := l.Load(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	if res.Type != ResourceTypeImage && res.Type != ResourceTypeSVG {
		return nil, fmt.Errorf("resource is not an image: %s (%s)", urlStr, res.MimeType)
	}

	return res, nil
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}
