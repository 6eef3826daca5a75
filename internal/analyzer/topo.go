package analyzer

import (
	"sort"

	cerrors "tensorc/internal/errors"
)

// topoSortPrograms orders program ids so that every edge P -> Q (P feeds a
// port of Q) has P before Q. Ties are broken by the order programs appear
// in the manifest (spec.md §5), not by id.
func topoSortPrograms(declOrder []string, adj map[string][]string) ([]string, error) {
	declIndex := map[string]int{}
	for i, id := range declOrder {
		declIndex[id] = i
	}
	for id := range adj {
		targets := adj[id]
		sort.Slice(targets, func(i, j int) bool { return declIndex[targets[i]] > declIndex[targets[j]] })
	}

	visited := map[string]bool{}
	visiting := map[string]bool{}
	var order []string

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return cerrors.New(cerrors.CycleDetected, id, "cycle detected among program dependencies")
		}
		visiting[id] = true
		for _, next := range adj[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	// Roots and successors are visited in reverse manifest order so that,
	// once the post-order is reversed below, ties come out in manifest order.
	for i := len(declOrder) - 1; i >= 0; i-- {
		if err := visit(declOrder[i]); err != nil {
			return nil, err
		}
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
