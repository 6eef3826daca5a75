package runtimegen

import (
	"fmt"
	"sort"
	"strings"
)

// emitParameters declares one C variable per manifest parameter: concrete
// parameters as compile-time constants, dynamic (unbound symbolic) ones as
// mutable globals a future watch/devserver tick could update (spec.md
// §4.9).
func (e *emitter) emitParameters() string {
	var b strings.Builder

	names := make([]string, 0, len(e.params.Concrete))
	for n := range e.params.Concrete {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "static const int64_t param_%s = %d;\n", sanitize(n), e.params.Concrete[n])
	}

	dynNames := make([]string, 0, len(e.params.Dynamic))
	for n := range e.params.Dynamic {
		dynNames = append(dynNames, n)
	}
	sort.Strings(dynNames)
	for _, n := range dynNames {
		fmt.Fprintf(&b, "static int64_t param_%s = 0;\n", sanitize(n))
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}
