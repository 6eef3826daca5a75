package graphload

import (
	"os"
	"path/filepath"
	"strings"

	cerrors "tensorc/internal/errors"
)

// ResolveSubgraphPath implements spec.md §4.3's sub-graph path resolution:
// if imports contains a prefix matching ref, it is substituted first (the
// longest matching prefix wins, ties by lexical order); the resulting path
// is tried relative to baseDir; if not found, it is tried under libDir. A
// ".json" extension is appended if missing. Resolution is deterministic
// and the first successful lookup wins.
func ResolveSubgraphPath(ref string, imports map[string]string, baseDir, libDir string) (string, error) {
	candidate := ref
	best, matched := "", false
	for prefix := range imports {
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		if !matched || len(prefix) > len(best) || (len(prefix) == len(best) && prefix < best) {
			best, matched = prefix, true
		}
	}
	if matched {
		candidate = imports[best] + strings.TrimPrefix(ref, best)
	}

	candidate = withJSONExt(candidate)

	relative := candidate
	if !filepath.IsAbs(relative) {
		relative = filepath.Join(baseDir, candidate)
	}
	if fileExists(relative) {
		return relative, nil
	}

	if libDir != "" {
		libPath := filepath.Join(libDir, candidate)
		if fileExists(libPath) {
			return libPath, nil
		}
	}

	return "", cerrors.New(cerrors.IoError, ref, "sub-graph reference could not be resolved under %q or the project library directory", baseDir)
}

func withJSONExt(p string) string {
	if strings.HasSuffix(p, ".json") {
		return p
	}
	return p + ".json"
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
