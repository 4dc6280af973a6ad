package text

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/toolhub-scripting/go-toolhub/src/transports"
)

func writeFixture(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fileURL(dir, path string) string {
	return "file://" + filepath.ToSlash(dir) + path
}

func TestTextTransport(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "api/tools/test.json", `{"mock": "response"}`)
	writeFixture(t, dir, "api/lists/1.yaml", "mock: response\n")
	writeFixture(t, dir, "api/lists/2.json", "")

	tr := NewTextTransport(nil)
	tr.SetBasePath(dir)
	ctx := context.Background()

	res, err := tr.Request(ctx, "GET", fileURL(dir, "/api/tools/test/"), nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if string(res.Body) != `{"mock": "response"}` || res.ContentType != "application/json" {
		t.Fatalf("unexpected response %+v", res)
	}

	res, err = tr.Request(ctx, "GET", fileURL(dir, "/api/lists/1/?page=2"), nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if res.ContentType != "application/yaml" {
		t.Fatalf("expected yaml content type, got %q", res.ContentType)
	}

	res, err = tr.Request(ctx, "GET", fileURL(dir, "/api/lists/2/"), nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if res.Body != nil {
		t.Fatalf("expected nil body for empty fixture, got %q", res.Body)
	}
}

func TestTextTransport_Errors(t *testing.T) {
	dir := t.TempDir()
	tr := NewTextTransport(nil)
	tr.SetBasePath(dir)
	ctx := context.Background()

	_, err := tr.Request(ctx, "GET", fileURL(dir, "/api/tools/missing/"), nil)
	var se *transports.StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 {
		t.Fatalf("expected 404 status error, got %v", err)
	}

	if _, err := tr.Request(ctx, "GET", fileURL(dir, "/../escape/"), nil); err == nil {
		t.Fatalf("expected error for path outside base")
	}
	if _, err := tr.Request(ctx, "POST", fileURL(dir, "/api/tools/x/"), nil); err == nil {
		t.Fatalf("expected error for POST")
	}
	if _, err := tr.Request(ctx, "GET", "https://example.org/api/tools/x/", nil); err == nil {
		t.Fatalf("expected error for non-file scheme")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := tr.Request(cancelled, "GET", fileURL(dir, "/api/tools/x/"), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
