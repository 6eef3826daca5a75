package runtimegen

import (
	"fmt"
	"sort"
	"strings"

	"tensorc/internal/ops"
)

func (e *emitter) inputPortNames(prog string) []string {
	var names []string
	for _, n := range e.programs[prog].Nodes {
		if n.Op.Kind == ops.Input {
			names = append(names, n.Op.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (e *emitter) outputPortNames(prog string) []string {
	var names []string
	for _, n := range e.programs[prog].Nodes {
		if n.Op.Kind == ops.Output {
			names = append(names, n.Op.Name)
		}
	}
	sort.Strings(names)
	return names
}

// emitExecuteAll renders execute_all(): one call per program in the
// analyzer's topological order, followed by the feedback copy-back phase
// (spec.md §4.9).
func (e *emitter) emitExecuteAll() string {
	var b strings.Builder
	b.WriteString("void execute_all(void) {\n")

	for _, prog := range e.plan.Programs {
		var args []string
		args = append(args, fmt.Sprintf("workspace_%s", sanitize(prog.ID)))
		for _, port := range e.inputPortNames(prog.ID) {
			binding := prog.InputBindings[port]
			if binding.IsResource {
				args = append(args, fmt.Sprintf("resource_%s", sanitize(binding.ResourceID)))
			} else {
				args = append(args, fmt.Sprintf("out_%s_%s", sanitize(binding.SourceProgram), sanitize(binding.SourcePort)))
			}
		}
		for _, port := range e.outputPortNames(prog.ID) {
			args = append(args, fmt.Sprintf("out_%s_%s", sanitize(prog.ID), sanitize(port)))
		}
		fmt.Fprintf(&b, "    %s_func(%s);\n", sanitize(prog.ID), strings.Join(args, ", "))
	}

	b.WriteString(e.emitFeedbackCopyBack())
	b.WriteString("}\n\n")
	return b.String()
}

// emitFeedbackCopyBack copies every feedback link's source program output
// buffer into its destination resource, elementwise, after one execute_all
// tick (spec.md §4.9).
func (e *emitter) emitFeedbackCopyBack() string {
	var b strings.Builder
	for _, link := range e.plan.Feedback {
		srcProg, srcPort := splitAddr(link.Source)
		_, dstRest := splitAddr(link.Destination)
		shape, _, ok := e.outputPort(srcProg, srcPort)
		if !ok {
			continue
		}
		n := shape.ConcreteElementCount()
		fmt.Fprintf(&b, "    for (int64_t i = 0; i < %d; i++) { resource_%s[i] = out_%s_%s[i]; }\n",
			n, sanitize(dstRest), sanitize(srcProg), sanitize(srcPort))
	}
	return b.String()
}

func splitAddr(addr string) (root, rest string) {
	idx := strings.Index(addr, ".")
	if idx < 0 {
		return addr, ""
	}
	return addr[:idx], addr[idx+1:]
}
