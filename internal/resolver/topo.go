package resolver

import (
	cerrors "tensorc/internal/errors"
	"tensorc/internal/ir"
)

// topoSort computes a topological order over raw's nodes via depth-first
// search with visited/visiting color maps, the same cycle-safe traversal
// the project's module linker uses to order dependencies. Ties are broken
// by node id ascending for determinism (spec.md §5).
func topoSort(raw *ir.RawGraph) ([]ir.NodeIndex, error) {
	adj := make([][]ir.NodeIndex, len(raw.Nodes))
	for _, e := range raw.Edges {
		adj[e.Src] = append(adj[e.Src], e.Dst)
	}
	for i := range adj {
		sortNodeIndicesByID(adj[i], raw)
	}

	order := make([]ir.NodeIndex, 0, len(raw.Nodes))
	visited := make([]bool, len(raw.Nodes))
	visiting := make([]bool, len(raw.Nodes))

	roots := make([]ir.NodeIndex, len(raw.Nodes))
	for i := range roots {
		roots[i] = ir.NodeIndex(i)
	}
	sortNodeIndicesByID(roots, raw)

	var visit func(n ir.NodeIndex) error
	visit = func(n ir.NodeIndex) error {
		if visited[n] {
			return nil
		}
		if visiting[n] {
			return cerrors.New(cerrors.CycleDetected, raw.Nodes[n].ID, "cycle detected within program graph")
		}
		visiting[n] = true
		for k := len(adj[n]) - 1; k >= 0; k-- {
			if err := visit(adj[n][k]); err != nil {
				return err
			}
		}
		visiting[n] = false
		visited[n] = true
		order = append(order, n)
		return nil
	}

	// Roots and successors are visited in descending id order so that the
	// reversed post-order below breaks ties by ascending id.
	for i := len(roots) - 1; i >= 0; i-- {
		if err := visit(roots[i]); err != nil {
			return nil, err
		}
	}

	// visit appends in post-order (producers after consumers); reverse to
	// obtain a valid topological (producers-before-consumers) order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

func sortNodeIndicesByID(idxs []ir.NodeIndex, raw *ir.RawGraph) {
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && raw.Nodes[idxs[j]].ID < raw.Nodes[idxs[j-1]].ID; j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
}
