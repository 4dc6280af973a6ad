// Package text serves Toolhub responses from files on disk. It backs
// file:// base URLs, which is handy for offline fixtures and mirrors.
package text

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/toolhub-scripting/go-toolhub/src/transports"
)

var extensions = []struct {
	ext         string
	contentType string
}{
	{".json", "application/json"},
	{".yaml", "application/yaml"},
	{".yml", "application/yaml"},
}

// TextTransport maps file:// request URLs onto JSON or YAML documents.
// GET file:///srv/th/api/tools/x/ reads /srv/th/api/tools/x.json, then
// x.yaml, then x.yml. Query strings are ignored.
type TextTransport struct {
	log      func(string, ...interface{})
	basePath string
}

// NewTextTransport creates a new TextTransport.
func NewTextTransport(logger func(string, ...interface{})) *TextTransport {
	if logger == nil {
		logger = func(string, ...interface{}) {}
	}
	return &TextTransport{log: logger}
}

// SetBasePath restricts reads to files below path.
func (t *TextTransport) SetBasePath(path string) { t.basePath = filepath.Clean(path) }

// Request reads the document for rawURL. Missing documents answer 404; an
// empty file yields a Response without a body.
func (t *TextTransport) Request(ctx context.Context, method, rawURL string, options map[string]any) (*transports.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if method != http.MethodGet && method != http.MethodHead {
		return nil, fmt.Errorf("text transport: method %s not supported", method)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("text transport: unsupported scheme %q", u.Scheme)
	}

	stem := filepath.Clean(filepath.FromSlash(strings.TrimRight(u.Path, "/")))
	if t.basePath != "" && stem != t.basePath && !strings.HasPrefix(stem, t.basePath+string(filepath.Separator)) {
		return nil, fmt.Errorf("text transport: %s is outside %s", stem, t.basePath)
	}

	for _, e := range extensions {
		data, err := os.ReadFile(stem + e.ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		t.log("text transport: %s %s -> %s%s", method, rawURL, stem, e.ext)
		resp := &transports.Response{StatusCode: http.StatusOK, ContentType: e.contentType}
		if len(data) > 0 && method == http.MethodGet {
			resp.Body = data
		}
		return resp, nil
	}
	return nil, &transports.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
}
