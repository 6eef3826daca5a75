package codegen

import (
	"fmt"
	"sort"
	"strings"

	"tensorc/internal/ir"
	"tensorc/internal/ops"
)

// boundaryPort is one Input or Output node exposed as a C function
// parameter.
type boundaryPort struct {
	Name     string
	CType    string
	IsOutput bool
}

// boundaryPorts returns a program's Input and Output ports, each sorted by
// name so the generated signature is stable regardless of node insertion
// order.
func boundaryPorts(lg *ir.LinearGraph) (inputs, outputs []boundaryPort) {
	for _, n := range lg.Nodes {
		switch n.Op.Kind {
		case ops.Input:
			inputs = append(inputs, boundaryPort{Name: n.Op.Name, CType: n.Datatype.CType()})
		case ops.Output:
			outputs = append(outputs, boundaryPort{Name: n.Op.Name, CType: n.Datatype.CType(), IsOutput: true})
		}
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Name < outputs[j].Name })
	return inputs, outputs
}

// signature renders the shared function signature used by both the header
// declaration and the source definition.
func signature(progID string, lg *ir.LinearGraph) string {
	inputs, outputs := boundaryPorts(lg)
	params := []string{"void** workspace"}
	for _, p := range inputs {
		params = append(params, fmt.Sprintf("const %s* restrict in_%s", p.CType, p.Name))
	}
	for _, p := range outputs {
		params = append(params, fmt.Sprintf("%s* restrict out_%s", p.CType, p.Name))
	}
	return fmt.Sprintf("void %s_func(%s)", SanitizeID(progID), strings.Join(params, ", "))
}

// EmitHeader renders the per-program header declaring <prog>_func.
func EmitHeader(progID string, lg *ir.LinearGraph) string {
	guard := strings.ToUpper(SanitizeID(progID)) + "_H"
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	b.WriteString("#include <stdint.h>\n\n")
	fmt.Fprintf(&b, "%s;\n\n", signature(progID, lg))
	b.WriteString("#endif\n")
	return b.String()
}
