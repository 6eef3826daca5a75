package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `{
  "sources": {"x": {"shape": [4]}, "state": {"shape": [4]}},
  "programs": [{"id": "p", "path": "p.json"}],
  "links": [["sources.x", "p.in"], ["p.out", "sources.state"]],
  "parameters": {"n": 4, "scale": "dynamic_scale"},
  "window": {"title": "w", "width": 640, "height": 480}
}`

func writeTempManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeTempManifest(t, sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(m.Sources))
	}
	if len(m.Programs) != 1 || m.Programs[0].ID != "p" {
		t.Fatalf("unexpected programs: %+v", m.Programs)
	}
	if len(m.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(m.Links))
	}
}

func TestResolveParameters(t *testing.T) {
	path := writeTempManifest(t, sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rp, err := m.ResolveParameters()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.Concrete["n"] != 4 {
		t.Fatalf("expected n=4, got %d", rp.Concrete["n"])
	}
	if !rp.Dynamic["scale"] {
		t.Fatal("expected scale to be left dynamic")
	}
}

func TestValidateAddressesUnknownSource(t *testing.T) {
	bad := `{"sources": {"x": {"shape": [4]}}, "programs": [{"id": "p", "path": "p.json"}], "links": [["sources.missing", "p.in"]]}`
	path := writeTempManifest(t, bad)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.ValidateAddresses(); err == nil {
		t.Fatal("expected error for unknown source reference")
	}
}
