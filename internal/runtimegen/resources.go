package runtimegen

import (
	"fmt"
	"sort"
	"strings"

	"tensorc/internal/ops"
	"tensorc/internal/types"
)

func (e *emitter) resourceDatatype(id string) types.Datatype {
	if dt, ok := e.manifest.TypeMapping[id]; ok {
		return dt
	}
	return types.F32
}

// emitResources declares one pointer-typed global per manifest resource;
// reallocate_resources() owns their allocation. External linkage (no
// "static") so a separately compiled test_runner.c can read and seed
// them directly.
func (e *emitter) emitResources() string {
	ids := make([]string, 0, len(e.resources))
	for id := range e.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s* resource_%s = NULL;\n", e.resourceDatatype(id).CType(), sanitize(id))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// outputPort finds the Output node bound to the given port name in prog's
// linear graph.
func (e *emitter) outputPort(prog, port string) (types.Shape, types.Datatype, bool) {
	lg, ok := e.programs[prog]
	if !ok {
		return nil, "", false
	}
	for _, n := range lg.Nodes {
		if n.Op.Kind == ops.Output && n.Op.Name == port {
			return n.Shape, n.Datatype, true
		}
	}
	return nil, "", false
}

// emitOutputBuffers declares one buffer per program output port;
// execute_all() passes these as the out_<port> arguments and feedback
// copy-back, other programs' inputs, and test_runner.c all read from
// them afterward. External linkage for the same reason as resources.
func (e *emitter) emitOutputBuffers() string {
	var b strings.Builder
	for _, id := range e.order {
		lg := e.programs[id]
		var ports []string
		for _, n := range lg.Nodes {
			if n.Op.Kind == ops.Output {
				ports = append(ports, n.Op.Name)
			}
		}
		sort.Strings(ports)
		for _, port := range ports {
			shape, dt, _ := e.outputPort(id, port)
			fmt.Fprintf(&b, "%s out_%s_%s[%d];\n", dt.CType(), sanitize(id), sanitize(port), shape.ConcreteElementCount())
		}
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}
