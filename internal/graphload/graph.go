// Package graphload parses a single program graph JSON document into a
// logical graph of primitive nodes and sub-graph references (spec.md §4.3).
package graphload

import (
	"encoding/json"
	"os"
	"path/filepath"

	cerrors "tensorc/internal/errors"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// PortDecl is a declared top-level input or output port. Dtype and Shape
// are optional in the JSON; a nil Shape/empty Dtype means the resolver must
// infer it.
type PortDecl struct {
	Name  string
	Dtype types.Datatype
	Shape types.Shape
}

// NodeDef is one entry of the graph's node list: either a primitive
// operator instance or a reference to a sub-graph file.
type NodeDef struct {
	ID           string
	Op           ops.Op
	IsSubgraph   bool
	SubgraphPath string
}

// LinkDef is one raw (source address, destination address) pair as it
// appears in the graph JSON, before inlining resolves addresses to ports.
type LinkDef struct {
	Source      string
	Destination string
}

// Graph is the parsed logical graph for one program or sub-graph file.
type Graph struct {
	Imports map[string]string
	Inputs  []PortDecl
	Outputs []PortDecl
	Nodes   []NodeDef
	Links   []LinkDef

	// Path is the file this graph was parsed from; BaseDir is its
	// containing directory, used to resolve relative sub-graph references.
	Path    string
	BaseDir string
}

type graphJSON struct {
	Imports map[string]string `json:"imports"`
	Inputs  []portJSON        `json:"inputs"`
	Outputs []portJSON        `json:"outputs"`
	Nodes   []json.RawMessage `json:"nodes"`
	Links   [][2]string       `json:"links"`
}

type portJSON struct {
	Name  string          `json:"name"`
	Dtype string          `json:"dtype"`
	Shape json.RawMessage `json:"shape"`
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Op       json.RawMessage `json:"op"`
	Subgraph string          `json:"subgraph"`
}

// Parse reads and parses the graph JSON file at path.
func Parse(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.New(cerrors.IoError, path, "failed to read graph file: %v", err)
	}

	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, cerrors.New(cerrors.GraphParse, path, "invalid graph JSON: %v", err)
	}

	g := &Graph{
		Imports: raw.Imports,
		Path:    path,
		BaseDir: filepath.Dir(path),
	}

	for _, p := range raw.Inputs {
		decl, err := parsePortDecl(p)
		if err != nil {
			return nil, err
		}
		g.Inputs = append(g.Inputs, decl)
	}
	for _, p := range raw.Outputs {
		decl, err := parsePortDecl(p)
		if err != nil {
			return nil, err
		}
		g.Outputs = append(g.Outputs, decl)
	}

	for _, rawNode := range raw.Nodes {
		var nj nodeJSON
		if err := json.Unmarshal(rawNode, &nj); err != nil {
			return nil, cerrors.New(cerrors.GraphParse, path, "invalid node entry: %v", err)
		}
		if nj.ID == "" {
			return nil, cerrors.New(cerrors.GraphParse, path, "node entry missing id")
		}
		if nj.Subgraph != "" {
			g.Nodes = append(g.Nodes, NodeDef{ID: nj.ID, IsSubgraph: true, SubgraphPath: nj.Subgraph})
			continue
		}
		op, err := ops.ParseOpJSON(nj.Op, nj.ID)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, NodeDef{ID: nj.ID, Op: op})
	}

	for _, l := range raw.Links {
		g.Links = append(g.Links, LinkDef{Source: l[0], Destination: l[1]})
	}

	return g, nil
}

func parsePortDecl(p portJSON) (PortDecl, error) {
	decl := PortDecl{Name: p.Name}
	if p.Dtype != "" {
		dt, err := types.ParseDatatype(p.Dtype)
		if err != nil {
			return PortDecl{}, cerrors.New(cerrors.GraphParse, p.Name, "invalid dtype: %v", err)
		}
		decl.Dtype = dt
	}
	if len(p.Shape) > 0 {
		shape, err := types.ParseShapeJSON(p.Shape)
		if err != nil {
			return PortDecl{}, err
		}
		decl.Shape = shape
	}
	return decl, nil
}
