package manifest

import (
	"strings"

	cerrors "tensorc/internal/errors"
)

// ValidateAddresses checks that every link references a known source or
// program id. Port-level validation (does program P actually have an input
// named "in2"?) happens later, once program interfaces are known, so this
// only catches the top-level identifier typos spec.md §4.2 requires be
// surfaced "after all ingestion is done".
func (m *Manifest) ValidateAddresses() error {
	programIDs := map[string]bool{}
	for _, p := range m.Programs {
		programIDs[p.ID] = true
	}

	for _, link := range m.Links {
		for _, addr := range []string{link.Source, link.Destination} {
			root, rest, ok := splitAddress(addr)
			if !ok {
				return cerrors.New(cerrors.UnknownReference, addr, "malformed link address")
			}
			if root == "sources" {
				if _, ok := m.Sources[rest]; !ok {
					return cerrors.New(cerrors.UnknownReference, addr, "link references unknown source %q", rest)
				}
				continue
			}
			if !programIDs[root] {
				return cerrors.New(cerrors.UnknownReference, addr, "link references unknown program %q", root)
			}
		}
	}
	return nil
}

// splitAddress splits "sources.x" into ("sources", "x") or "prog.port"
// into ("prog", "port").
func splitAddress(addr string) (root, rest string, ok bool) {
	idx := strings.Index(addr, ".")
	if idx < 0 {
		return "", "", false
	}
	root = addr[:idx]
	rest = addr[idx+1:]
	if root == "sources" {
		return root, rest, true
	}
	return root, rest, true
}
