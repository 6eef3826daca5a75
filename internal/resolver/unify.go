package resolver

import (
	cerrors "tensorc/internal/errors"
	"tensorc/internal/types"
)

// unifyDim implements spec.md §4.5 rule 4's per-dimension unification:
// equal concrete dims unify to that dim; a wildcard or ellipsis unifies with
// anything, becoming the other; broadcasting (a concrete dim of 1) unifies
// with anything; other unequal concrete dims are a ShapeMismatch. A symbol
// against a concrete value becomes that value when params binds the symbol
// to it, and is a ShapeMismatch when params binds it to a different value.
// Mismatches between symbols are not reported: two symbols (equal or not),
// or a symbol against a concrete value params does not bind it to, unify
// to the symbol (the left-hand one for two symbols).
func unifyDim(a, b types.Dimension, params map[string]int64, node string) (types.Dimension, error) {
	if a.Kind == types.DimWildcard {
		return b, nil
	}
	if b.Kind == types.DimWildcard {
		return a, nil
	}
	if a.IsConcrete() && b.IsConcrete() {
		if a.Value == b.Value {
			return a, nil
		}
		if a.Value == 1 {
			return b, nil
		}
		if b.Value == 1 {
			return a, nil
		}
		return types.Dimension{}, cerrors.New(cerrors.ShapeMismatch, node, "incompatible concrete dims %d and %d", a.Value, b.Value)
	}
	if a.Kind == types.DimSymbol && b.Kind == types.DimSymbol {
		if a.Symbol == b.Symbol {
			return a, nil
		}
		// Two distinct symbols: neither is bound to the other, so this is
		// only resolvable once a concrete binding exists for one of them;
		// leave it as the left-hand symbol for a later pass to reconcile.
		return a, nil
	}
	if a.Kind == types.DimSymbol && b.IsConcrete() {
		if bound, ok := params[a.Symbol]; ok && bound == b.Value {
			return b, nil
		}
		if b.Value == 1 {
			return a, nil
		}
		if _, ok := params[a.Symbol]; ok {
			return types.Dimension{}, cerrors.New(cerrors.ShapeMismatch, node, "symbol %q bound to %d, incompatible with %d", a.Symbol, params[a.Symbol], b.Value)
		}
		return a, nil
	}
	if b.Kind == types.DimSymbol && a.IsConcrete() {
		return unifyDim(b, a, params, node)
	}
	if a.Kind == types.DimEllipsis {
		return b, nil
	}
	if b.Kind == types.DimEllipsis {
		return a, nil
	}
	return a, nil
}

// unifyShapes unifies two shapes dimension-by-dimension. If either shape is
// empty/unseeded the other wins outright. If the shapes differ in rank and
// one contains a literal ellipsis entry, the ellipsis is first expanded
// into enough wildcards to equalize rank before the per-dim unification in
// unifyDim runs.
func unifyShapes(existing, incoming types.Shape, params map[string]int64, node string) (types.Shape, error) {
	if existing == nil {
		return incoming, nil
	}
	if incoming == nil {
		return existing, nil
	}

	a, b := existing, incoming
	if len(a) != len(b) {
		var err error
		a, b, err = equalizeRankViaEllipsis(a, b)
		if err != nil {
			return nil, err
		}
	}
	if len(a) != len(b) {
		return nil, cerrors.New(cerrors.ShapeMismatch, node, "rank mismatch: %s vs %s", existing.String(), incoming.String())
	}

	out := make(types.Shape, len(a))
	for i := range a {
		d, err := unifyDim(a[i], b[i], params, node)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func equalizeRankViaEllipsis(a, b types.Shape) (types.Shape, types.Shape, error) {
	if ai := ellipsisIndex(a); ai >= 0 && len(b) >= len(a)-1 {
		return expandEllipsisAt(a, ai, len(b)-(len(a)-1)), b, nil
	}
	if bi := ellipsisIndex(b); bi >= 0 && len(a) >= len(b)-1 {
		return a, expandEllipsisAt(b, bi, len(a)-(len(b)-1)), nil
	}
	return a, b, nil
}

func ellipsisIndex(s types.Shape) int {
	for i, d := range s {
		if d.Kind == types.DimEllipsis {
			return i
		}
	}
	return -1
}

func expandEllipsisAt(s types.Shape, at, count int) types.Shape {
	out := make(types.Shape, 0, len(s)-1+count)
	out = append(out, s[:at]...)
	for i := 0; i < count; i++ {
		out = append(out, types.Wildcard())
	}
	out = append(out, s[at+1:]...)
	return out
}
