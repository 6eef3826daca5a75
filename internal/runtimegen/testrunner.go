package runtimegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tensorc/internal/ir"
	"tensorc/internal/manifest"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

// EmitTestRunner renders test_runner.c: one function per manifest test case
// that preloads input resources with literal arrays, runs execute_all()
// once, and compares each expected output elementwise within a small
// tolerance, plus a main() driving all cases (spec.md §4.9, §6). programs
// supplies each compiled program's linear graph so output port datatypes
// can be declared extern correctly; runtime.c defines the actual storage
// with external linkage.
func EmitTestRunner(m *manifest.Manifest, programs map[string]*ir.LinearGraph) (string, error) {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n#include <math.h>\n#include <stdint.h>\n\n")
	b.WriteString("extern void reallocate_resources(void);\nextern void execute_all(void);\n\n")
	b.WriteString(externDeclarations(m, programs))

	var testFuncs []string
	for _, tc := range m.Tests {
		name := sanitizeTestName(tc.Name)
		testFuncs = append(testFuncs, name)
		b.WriteString(emitTestCase(name, tc))
	}

	b.WriteString("int main(void) {\n")
	b.WriteString("    int failures = 0;\n")
	for _, name := range testFuncs {
		fmt.Fprintf(&b, "    if (!run_test_%s()) { failures++; }\n", name)
	}
	b.WriteString("    if (failures == 0) { printf(\"all tests passed\\n\"); } else { printf(\"%d test(s) failed\\n\", failures); }\n")
	b.WriteString("    return failures == 0 ? 0 : 1;\n")
	b.WriteString("}\n")

	return b.String(), nil
}

func emitTestCase(name string, tc manifest.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "static int run_test_%s(void) {\n", name)
	b.WriteString("    reallocate_resources();\n")

	inputIDs := make([]string, 0, len(tc.Inputs))
	for resourceID := range tc.Inputs {
		inputIDs = append(inputIDs, resourceID)
	}
	sort.Strings(inputIDs)
	for _, resourceID := range inputIDs {
		for i, v := range tc.Inputs[resourceID] {
			fmt.Fprintf(&b, "    resource_%s[%d] = %sf;\n", sanitize(resourceID), i, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
	}

	b.WriteString("    execute_all();\n")
	b.WriteString("    int ok = 1;\n")

	addresses := make([]string, 0, len(tc.Expected))
	for address := range tc.Expected {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	for _, address := range addresses {
		expected := tc.Expected[address]
		buf := expectedBufferExpr(address)
		cName := sanitizeTestName(address)
		for i, v := range expected {
			fmt.Fprintf(&b, "    if (fabs((double)%s[%d] - %s) > 1e-5) { printf(\"%s: mismatch at %s[%d]\\n\"); ok = 0; }\n",
				buf, i, strconv.FormatFloat(float64(v), 'g', -1, 64), name, cName, i)
		}
	}

	b.WriteString("    return ok;\n}\n\n")
	return b.String()
}

// externDeclarations renders extern declarations for every resource and
// program output buffer the test cases reference, sorted for
// determinism, so test_runner.c can see storage runtime.c defines.
func externDeclarations(m *manifest.Manifest, programs map[string]*ir.LinearGraph) string {
	resourceIDs := map[string]bool{}
	outputs := map[string]bool{} // "prog.port"

	for _, tc := range m.Tests {
		for id := range tc.Inputs {
			resourceIDs[id] = true
		}
		for address := range tc.Expected {
			root, rest := splitAddr(address)
			if root == "sources" {
				resourceIDs[rest] = true
			} else {
				outputs[root+"."+rest] = true
			}
		}
	}

	var b strings.Builder

	ids := make([]string, 0, len(resourceIDs))
	for id := range resourceIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		dt := m.TypeMapping[id]
		if dt == "" {
			dt = types.F32
		}
		fmt.Fprintf(&b, "extern %s* resource_%s;\n", dt.CType(), sanitize(id))
	}

	addrs := make([]string, 0, len(outputs))
	for addr := range outputs {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		prog, port := splitAddr(addr)
		dt := outputDatatype(programs[prog], port)
		fmt.Fprintf(&b, "extern %s out_%s_%s[];\n", dt.CType(), sanitize(prog), sanitize(port))
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// outputDatatype finds the datatype of prog's Output node named port,
// defaulting to f32 if the program or port cannot be found (should not
// happen for a validated manifest).
func outputDatatype(lg *ir.LinearGraph, port string) types.Datatype {
	if lg == nil {
		return types.F32
	}
	for _, n := range lg.Nodes {
		if n.Op.Kind == ops.Output && n.Op.Name == port {
			return n.Datatype
		}
	}
	return types.F32
}

// expectedBufferExpr maps a test's expected-output address ("sources.id" or
// "prog.port") to the C buffer holding that data once execute_all() has
// run.
func expectedBufferExpr(address string) string {
	root, rest := splitAddr(address)
	if root == "sources" {
		return fmt.Sprintf("resource_%s", sanitize(rest))
	}
	return fmt.Sprintf("out_%s_%s", sanitize(root), sanitize(rest))
}

func sanitizeTestName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}
