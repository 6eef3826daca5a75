// Package runtimegen emits the single runtime translation unit that ties
// every program together: parameter and resource declarations, per-program
// workspace arrays, execute_all() in the analyzer's order, and the
// feedback copy-back phase (spec.md §4.9).
package runtimegen

import (
	"fmt"
	"strings"

	"tensorc/internal/analyzer"
	cerrors "tensorc/internal/errors"
	"tensorc/internal/ir"
	"tensorc/internal/manifest"
	"tensorc/internal/types"
)

// Program bundles one compiled program's id with its linear graph, the
// input the runtime emitter needs to size workspace arrays and resolve
// argument buffers.
type Program struct {
	ID     string
	Linear *ir.LinearGraph
}

type emitter struct {
	manifest  *manifest.Manifest
	plan      *analyzer.ProjectPlan
	params    *manifest.ResolvedParameters
	programs  map[string]*ir.LinearGraph
	resources map[string]types.Shape // resolved (fully concrete) resource shapes
	order     []string                // program ids in the analyzer's execution order
}

// EmitRuntime renders runtime.c's contents.
func EmitRuntime(m *manifest.Manifest, plan *analyzer.ProjectPlan, programs []Program, params *manifest.ResolvedParameters) (string, error) {
	progByID := map[string]*ir.LinearGraph{}
	for _, p := range programs {
		progByID[p.ID] = p.Linear
	}

	order := make([]string, len(plan.Programs))
	for i, p := range plan.Programs {
		order[i] = p.ID
	}

	e := &emitter{manifest: m, plan: plan, params: params, programs: progByID, resources: map[string]types.Shape{}, order: order}
	for id, def := range plan.Resources {
		shape, err := resolveResourceShape(def.Shape, params.Concrete)
		if err != nil {
			return "", cerrors.New(cerrors.UnresolvedDimension, id, "resource shape left unresolved: %v", err)
		}
		e.resources[id] = shape
	}

	var b strings.Builder
	b.WriteString("#include <stdint.h>\n#include <stdlib.h>\n#include <string.h>\n\n")
	for _, id := range e.order {
		fmt.Fprintf(&b, "#include \"%s.h\"\n", sanitize(id))
	}
	b.WriteString("\n")

	b.WriteString(e.emitParameters())
	b.WriteString(e.emitResources())
	b.WriteString(e.emitOutputBuffers())
	b.WriteString(e.emitWorkspaces())
	b.WriteString(e.emitReallocate())
	b.WriteString(e.emitExecuteAll())

	return b.String(), nil
}

func sanitize(id string) string { return strings.NewReplacer("/", "_", ".", "_").Replace(id) }
