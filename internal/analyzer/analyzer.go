// Package analyzer builds the inter-program dependency graph from the
// manifest's links and computes the program execution order (spec.md
// §4.7).
package analyzer

import (
	"strings"

	cerrors "tensorc/internal/errors"
	"tensorc/internal/manifest"
)

// Binding describes what drives one program input port: either a named
// resource or another program's output port.
type Binding struct {
	IsResource    bool
	ResourceID    string
	SourceProgram string
	SourcePort    string
}

// ProgramPlan is one program's place in the project: its input bindings,
// materialized so the resolver can seed Input shapes and the runtime
// emitter can generate argument lists.
type ProgramPlan struct {
	ID             string
	Path           string
	InputBindings  map[string]Binding
}

// ProjectPlan is the analyzer's output: programs in execution order, the
// manifest's resources, and the feedback links the runtime must copy back
// after each execute_all() tick.
type ProjectPlan struct {
	Programs  []ProgramPlan
	Resources map[string]manifest.SourceDef
	Feedback  []manifest.Link
}

// Analyze computes the project plan for m.
func Analyze(m *manifest.Manifest) (*ProjectPlan, error) {
	declOrder := make([]string, len(m.Programs))
	pathByID := map[string]string{}
	for i, p := range m.Programs {
		declOrder[i] = p.ID
		pathByID[p.ID] = p.Path
	}
	programSet := map[string]bool{}
	for _, id := range declOrder {
		programSet[id] = true
	}

	adj := map[string][]string{}
	bindings := map[string]map[string]Binding{}
	for _, id := range declOrder {
		bindings[id] = map[string]Binding{}
	}
	var feedback []manifest.Link

	for _, link := range m.Links {
		srcRoot, srcRest := splitAddr(link.Source)
		dstRoot, dstRest := splitAddr(link.Destination)

		if dstRoot == "sources" {
			if srcRoot != "sources" {
				feedback = append(feedback, link)
			}
			continue
		}

		if !programSet[dstRoot] {
			return nil, cerrors.New(cerrors.UnknownReference, link.Destination, "link destination references unknown program")
		}

		if srcRoot == "sources" {
			bindings[dstRoot][dstRest] = Binding{IsResource: true, ResourceID: srcRest}
			continue
		}

		if !programSet[srcRoot] {
			return nil, cerrors.New(cerrors.UnknownReference, link.Source, "link source references unknown program")
		}
		bindings[dstRoot][dstRest] = Binding{SourceProgram: srcRoot, SourcePort: srcRest}
		adj[srcRoot] = append(adj[srcRoot], dstRoot)
	}

	order, err := topoSortPrograms(declOrder, adj)
	if err != nil {
		return nil, err
	}

	plan := &ProjectPlan{Resources: m.Sources, Feedback: feedback}
	for _, id := range order {
		plan.Programs = append(plan.Programs, ProgramPlan{
			ID:            id,
			Path:          pathByID[id],
			InputBindings: bindings[id],
		})
	}
	return plan, nil
}

func splitAddr(addr string) (root, rest string) {
	idx := strings.Index(addr, ".")
	if idx < 0 {
		return addr, ""
	}
	return addr[:idx], addr[idx+1:]
}
