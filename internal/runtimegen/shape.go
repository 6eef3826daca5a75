package runtimegen

import (
	"fmt"

	"tensorc/internal/types"
)

// resolveResourceShape substitutes concrete manifest parameters into a
// resource's declared shape and requires the result be fully concrete. The
// resolver reports only wildcard and ellipsis dims as UnresolvedDimension;
// a symbol with no concrete binding passes it and is rejected here.
func resolveResourceShape(shape types.Shape, params map[string]int64) (types.Shape, error) {
	out := make(types.Shape, len(shape))
	for i, d := range shape {
		resolved := d.SubstituteSymbols(params).Simplify()
		if resolved.IsUnresolved() || !resolved.IsConcrete() {
			return nil, fmt.Errorf("dimension %s left unresolved", d.String())
		}
		out[i] = resolved
	}
	return out, nil
}
