// Package types holds the core data model shared by every compiler stage:
// Datatype, the symbolic Dimension algebra, Shape, and Port.
package types

import (
	"fmt"
)

// Datatype is the closed set of scalar element types a tensor may carry.
type Datatype string

const (
	F32 Datatype = "f32"
	F64 Datatype = "f64"
	I32 Datatype = "i32"
	I64 Datatype = "i64"
	U32 Datatype = "u32"
)

// CType returns the C scalar type name corresponding to d.
func (d Datatype) CType() string {
	switch d {
	case F32:
		return "float"
	case F64:
		return "double"
	case I32:
		return "int32_t"
	case I64:
		return "int64_t"
	case U32:
		return "uint32_t"
	default:
		return "float"
	}
}

// Valid reports whether d is one of the closed set of datatypes.
func (d Datatype) Valid() bool {
	switch d {
	case F32, F64, I32, I64, U32:
		return true
	default:
		return false
	}
}

// ParseDatatype maps a manifest/type_mapping string to a Datatype.
func ParseDatatype(s string) (Datatype, error) {
	d := Datatype(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown datatype %q", s)
	}
	return d, nil
}
