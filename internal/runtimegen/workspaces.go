package runtimegen

import (
	"fmt"
	"sort"
	"strings"

	"tensorc/internal/ir"
)

// slotOrder returns, in execution order, the nodes holding a workspace
// slot. Index in this slice is the slot index the code emitter casts
// workspace[<index>] to for that same node, so the two packages must (and
// do) derive the ordering identically from lg.Order and lg.Slots alone.
func slotOrder(lg *ir.LinearGraph) []ir.NodeIndex {
	var out []ir.NodeIndex
	for _, idx := range lg.Order {
		if _, ok := lg.Slots[idx]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// emitWorkspaces declares one void* array per program, sized to its node
// count requiring scratch space.
func (e *emitter) emitWorkspaces() string {
	var b strings.Builder
	for _, id := range e.order {
		lg := e.programs[id]
		fmt.Fprintf(&b, "static void* workspace_%s[%d];\n", sanitize(id), len(slotOrder(lg)))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// emitReallocate renders reallocate_resources(): frees and reallocates
// every resource and workspace slot buffer, zero-initializing resources
// (spec.md §4.9). Workspace scratch need not be zeroed; every kernel
// either writes every element it reads or overwrites it on the next tick.
func (e *emitter) emitReallocate() string {
	var b strings.Builder
	b.WriteString("void reallocate_resources(void) {\n")

	ids := make([]string, 0, len(e.resources))
	for id := range e.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := e.resources[id].ConcreteElementCount()
		ctype := e.resourceDatatype(id).CType()
		fmt.Fprintf(&b, "    free(resource_%s);\n", sanitize(id))
		fmt.Fprintf(&b, "    resource_%s = (%s*)calloc(%d, sizeof(%s));\n", sanitize(id), ctype, n, ctype)
	}

	for _, id := range e.order {
		lg := e.programs[id]
		for i, idx := range slotOrder(lg) {
			n := lg.Nodes[idx]
			slot := lg.Slots[idx]
			ctype := n.Datatype.CType()
			fmt.Fprintf(&b, "    free(workspace_%s[%d]);\n", sanitize(id), i)
			fmt.Fprintf(&b, "    workspace_%s[%d] = calloc(%d, sizeof(%s));\n", sanitize(id), i, slot.ElementCount, ctype)
		}
	}

	b.WriteString("}\n\n")
	return b.String()
}
