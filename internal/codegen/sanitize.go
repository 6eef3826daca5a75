// Package codegen emits one C translation unit (header + source) per
// program from its linear IR (spec.md §4.8).
package codegen

import "strings"

var idReplacer = strings.NewReplacer("/", "_", ".", "_")

// SanitizeID replaces '/' and '.' with '_' so a node id or program id
// becomes a valid, deterministic C identifier. Sanitization is total: every
// input produces exactly one output. It is not injective: ids that differ
// only by '/', '.' or '_' in the same position (for example "a/b", "a.b"
// and "a_b") all map to the same identifier, and no collision check is made.
func SanitizeID(id string) string {
	return idReplacer.Replace(id)
}
