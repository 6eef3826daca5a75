package build

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewBundleSortsFilesAndProgramIDs(t *testing.T) {
	files := map[string]string{
		"P.c":       "int p;",
		"runtime.c": "void execute_all(void) {}",
		"P.h":       "#ifndef P_H",
	}
	b := NewBundle([]string{"Q", "P"}, files)

	if got, want := b.Manifest.ProgramIDs, []string{"P", "Q"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("program ids not sorted: %v", got)
	}

	wantOrder := []string{"P.c", "P.h", "runtime.c"}
	for i, entry := range b.Manifest.Files {
		if entry.Name != wantOrder[i] {
			t.Fatalf("file %d: got %s, want %s", i, entry.Name, wantOrder[i])
		}
		if entry.Size != len(files[entry.Name]) {
			t.Fatalf("file %s: size %d, want %d", entry.Name, entry.Size, len(files[entry.Name]))
		}
		if entry.Checksum == "" {
			t.Fatalf("file %s: missing checksum", entry.Name)
		}
	}
}

func TestWriteProducesReadableArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nested", "bundle.tar.gz")

	files := map[string]string{"P.c": "int p;"}
	b := NewBundle([]string{"P"}, files)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := b.Write(archivePath, now); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	tr := tar.NewReader(gz)

	names := map[string]string{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar next: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("tar read: %v", err)
		}
		names[header.Name] = string(data)
	}

	if names["generated/P.c"] != "int p;" {
		t.Fatalf("expected generated/P.c in archive, got entries: %v", names)
	}

	var manifest Manifest
	if err := json.Unmarshal([]byte(names["manifest.json"]), &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if len(manifest.ProgramIDs) != 1 || manifest.ProgramIDs[0] != "P" {
		t.Fatalf("unexpected manifest program ids: %v", manifest.ProgramIDs)
	}
}
