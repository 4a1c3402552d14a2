package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-doctemplate/internal/config"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/persistence"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := a.Backend.(*persistence.Memory); !ok {
		t.Fatalf("expected in-memory backend, got %T", a.Backend)
	}

	srv := httptest.NewServer(a.Server().Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/templates")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestNew_ThemeAndPresets(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Theme.Manifest = writeFile(t, dir, "theme.yaml", `
name: print
tokens:
  doc.filled: "print-filled"
variants:
  dark:
    doc.unfilled: "print-blank"
`)
	cfg.Theme.Variant = "dark"
	cfg.Presets = writeFile(t, dir, "presets.yaml", `
templates:
  notice-to-vacate:
    title: "Notice"
`)

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	prepared, err := a.Orchestrator.Prepare(context.Background(), "notice-to-vacate", "en")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if prepared.Template.Title != "Notice" {
		t.Fatalf("preset not applied: %q", prepared.Template.Title)
	}

	out, _, err := a.Orchestrator.Render(context.Background(), orchestrator.Request{
		Prepared: prepared,
		Values:   document.TextValues(map[string]string{"tenant_name": "Taylor"}),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`class="print-filled" data-field="tenant_name"`, `class="print-blank"`} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("theme markers missing %q in %s", want, out)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeFile(t, dir, "m.json", `{"name":"json-theme","tokens":{"doc.signature":"sig"}}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	markers := render.MarkersFromSelection(nil)
	if markers != render.DefaultMarkers() {
		t.Fatalf("nil selection should yield default markers")
	}
	if manifest.Name != "json-theme" || manifest.Tokens["doc.signature"] != "sig" {
		t.Fatalf("unexpected manifest %#v", manifest)
	}
	if _, err := LoadManifest(writeFile(t, dir, "bad.yaml", "tokens: {}\n")); err == nil {
		t.Fatalf("expected error for nameless manifest")
	}
}
