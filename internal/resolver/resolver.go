// Package resolver infers and unifies shapes and datatypes over a flattened
// raw IR graph (spec.md §4.5).
package resolver

import (
	cerrors "tensorc/internal/errors"
	"tensorc/internal/ir"
	"tensorc/internal/ops"
	"tensorc/internal/types"
)

const maxPasses = 15

// Options carries the caller-supplied context the resolver needs beyond the
// raw graph itself.
type Options struct {
	// InputSpecs maps a top-level Input node's declared name to the
	// concrete port the caller supplies (spec.md §4.5 step 2).
	InputSpecs map[string]types.Port
	// Params is the manifest's resolved concrete parameter bindings, used
	// to unify a symbolic dim with a concrete one (spec.md §4.5 rule 4).
	Params map[string]int64
	// TypeMapping overrides the default f32 datatype for explicitly typed
	// ports (SPEC_FULL.md open-question resolution).
	TypeMapping map[string]types.Datatype
}

type state struct {
	raw            *ir.RawGraph
	shapes         []types.Shape
	dtypes         []types.Datatype
	symbolBindings map[string]int64
	opts           Options
}

// Resolve runs shape/type inference to a fixed point and returns the
// resolved graph, or a structured error on the first failure.
func Resolve(raw *ir.RawGraph, opts Options) (*ir.ResolvedGraph, error) {
	order, err := topoSort(raw)
	if err != nil {
		return nil, err
	}

	st := &state{
		raw:            raw,
		shapes:         make([]types.Shape, len(raw.Nodes)),
		dtypes:         make([]types.Datatype, len(raw.Nodes)),
		symbolBindings: map[string]int64{},
		opts:           opts,
	}

	if err := st.seed(); err != nil {
		return nil, err
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, idx := range order {
			nodeChanged, err := st.step(idx)
			if err != nil {
				return nil, err
			}
			changed = changed || nodeChanged
		}
		if !changed {
			break
		}
	}

	for _, idx := range order {
		n := raw.Nodes[idx]
		if st.shapes[idx] == nil || !st.shapes[idx].IsResolved() {
			return nil, cerrors.New(cerrors.UnresolvedDimension, n.ID, "shape could not be fully resolved")
		}
	}

	resolved := &ir.ResolvedGraph{Order: order, Edges: raw.Edges}
	resolved.Nodes = make([]ir.ResolvedNode, len(raw.Nodes))
	for i, n := range raw.Nodes {
		resolved.Nodes[i] = ir.ResolvedNode{ID: n.ID, Op: n.Op, Shape: st.shapes[i], Datatype: st.dtypes[i]}
	}
	return resolved, nil
}

func (st *state) seed() error {
	for i, n := range st.raw.Nodes {
		switch n.Op.Kind {
		case ops.Input:
			port, ok := st.opts.InputSpecs[n.Op.Name]
			if !ok {
				return cerrors.New(cerrors.UnknownReference, n.ID, "no input spec supplied for Input %q", n.Op.Name)
			}
			st.shapes[i] = port.Shape
			dt := port.Datatype
			if dt == "" {
				dt = st.defaultDatatype(n.Op.Name)
			}
			st.dtypes[i] = dt
		case ops.Constant:
			st.shapes[i] = types.Shape{types.Concrete(int64(len(n.Op.Values)))}
			st.dtypes[i] = st.defaultDatatype(n.ID)
		}
	}
	return nil
}

func (st *state) defaultDatatype(key string) types.Datatype {
	if dt, ok := st.opts.TypeMapping[key]; ok {
		return dt
	}
	return types.F32
}

// step recomputes node idx's shape/datatype from its current producers and
// reports whether anything changed this pass.
func (st *state) step(idx ir.NodeIndex) (bool, error) {
	n := st.raw.Nodes[idx]

	switch n.Op.Kind {
	case ops.Input, ops.Constant:
		return false, nil
	}

	incoming := st.raw.IncomingSortedByDstPort(idx)
	inputShapes := make([]types.Shape, len(incoming))
	for i, e := range incoming {
		shape := st.shapes[e.Src]
		if shape != nil {
			shape = shape.Clone()
			for j, d := range shape {
				shape[j] = d.SubstituteSymbols(st.symbolBindings).Simplify()
			}
		}
		inputShapes[i] = shape
	}

	var inferred types.Shape
	var err error
	if n.Op.Kind == ops.Split {
		// Split's single resolved shape is its per-tile shape; which tile a
		// given consumer reads is a linearizer/codegen concern, not a
		// resolver one.
		if len(inputShapes) != 1 || inputShapes[0] == nil {
			return false, nil
		}
		inferred, err = n.Op.InferSplitShape(inputShapes[0], 0, n.ID)
	} else {
		for _, s := range inputShapes {
			if s == nil {
				return false, nil
			}
		}
		inferred, err = n.Op.InferShape(inputShapes, n.ID)
	}
	if err != nil {
		return false, err
	}

	unified, err := unifyShapes(st.shapes[idx], inferred, st.opts.Params, n.ID)
	if err != nil {
		return false, err
	}

	changed := !shapesEqual(st.shapes[idx], unified)
	st.shapes[idx] = unified
	st.recordBindings(unified)

	if len(incoming) > 0 {
		dt := st.dtypes[incoming[0].Src]
		if dt != "" && dt != st.dtypes[idx] {
			st.dtypes[idx] = dt
			changed = true
		}
	}
	if st.dtypes[idx] == "" {
		st.dtypes[idx] = st.defaultDatatype(n.ID)
	}

	return changed, nil
}

// recordBindings scans a fully/partially resolved shape for symbols that
// happen to equal a manifest-bound parameter value, carrying that binding
// forward so later passes can resolve the same symbol elsewhere in the
// graph (spec.md §4.5 rule 6).
func (st *state) recordBindings(shape types.Shape) {
	for _, d := range shape {
		if d.Kind == types.DimSymbol {
			if v, ok := st.opts.Params[d.Symbol]; ok {
				st.symbolBindings[d.Symbol] = v
			}
		}
	}
}

func shapesEqual(a, b types.Shape) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
