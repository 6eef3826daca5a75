// Package manifest loads and interprets the top-level project manifest:
// named sources, programs, links, and parameter values (spec.md §4.2,
// §6; SPEC_FULL.md §4.2 for the window-slot parameter extension).
package manifest

import (
	"encoding/json"
	"os"

	cerrors "tensorc/internal/errors"
	"tensorc/internal/types"
)

// SourceDef describes one named external resource the runtime owns.
type SourceDef struct {
	Kind  string
	Shape types.Shape
}

// ProgramEntry names one program and the graph file it compiles from.
type ProgramEntry struct {
	ID   string
	Path string
}

// Link is a directed wire between two manifest addresses, e.g.
// "sources.x" -> "prog.in", or "prog.out" -> "sources.state".
type Link struct {
	Source      string
	Destination string
}

// TestCase is one `--test` scenario: literal input arrays and expected
// output arrays keyed by manifest address.
type TestCase struct {
	Name     string
	Inputs   map[string][]float32
	Expected map[string][]float32
}

// WindowConfig supplies concrete values for the "window.width" /
// "window.height" parameter slot references.
type WindowConfig struct {
	Title  string
	Width  int64
	Height int64
}

// Manifest is the parsed project manifest.
type Manifest struct {
	Sources     map[string]SourceDef
	Programs    []ProgramEntry
	Links       []Link
	Parameters  map[string]json.RawMessage
	TypeMapping map[string]types.Datatype
	Tests       []TestCase
	Window      *WindowConfig
}

type manifestJSON struct {
	Sources map[string]struct {
		Type  string          `json:"type"`
		Shape json.RawMessage `json:"shape"`
	} `json:"sources"`
	Programs []struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	} `json:"programs"`
	Links      [][2]string                `json:"links"`
	Parameters map[string]json.RawMessage `json:"parameters"`
	TypeMapping map[string]string         `json:"type_mapping"`
	Window      *struct {
		Title  string `json:"title"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	} `json:"window"`
	Tests []struct {
		Name     string                     `json:"name"`
		Inputs   map[string][]float32       `json:"inputs"`
		Expected map[string][]float32       `json:"expected"`
	} `json:"tests"`
}

// Load reads and parses the manifest JSON at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.New(cerrors.IoError, path, "failed to read manifest: %v", err)
	}

	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, cerrors.New(cerrors.ManifestParse, path, "invalid manifest JSON: %v", err)
	}

	m := &Manifest{
		Sources:     map[string]SourceDef{},
		TypeMapping: map[string]types.Datatype{},
		Parameters:  raw.Parameters,
	}

	for id, s := range raw.Sources {
		shape, err := types.ParseShapeJSON(s.Shape)
		if err != nil {
			return nil, cerrors.New(cerrors.ManifestParse, id, "invalid shape for source: %v", err)
		}
		m.Sources[id] = SourceDef{Kind: s.Type, Shape: shape}
	}

	for _, p := range raw.Programs {
		m.Programs = append(m.Programs, ProgramEntry{ID: p.ID, Path: p.Path})
	}

	for _, l := range raw.Links {
		m.Links = append(m.Links, Link{Source: l[0], Destination: l[1]})
	}

	for k, v := range raw.TypeMapping {
		dt, err := types.ParseDatatype(v)
		if err != nil {
			return nil, cerrors.New(cerrors.ManifestParse, k, "invalid type_mapping entry: %v", err)
		}
		m.TypeMapping[k] = dt
	}

	if raw.Window != nil {
		m.Window = &WindowConfig{Title: raw.Window.Title, Width: raw.Window.Width, Height: raw.Window.Height}
	}

	for _, tc := range raw.Tests {
		m.Tests = append(m.Tests, TestCase{Name: tc.Name, Inputs: tc.Inputs, Expected: tc.Expected})
	}

	return m, nil
}
