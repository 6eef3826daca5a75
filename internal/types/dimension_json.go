package types

import (
	"encoding/json"
	"fmt"

	cerrors "tensorc/internal/errors"
)

// ParseDimensionJSON decodes a single dimension literal from its JSON
// encoding: an integer, the strings "_" or "...", a bare symbol string, or
// an arithmetic object {"Add": [a, b]} (op in Add/Sub/Mul/Div).
func ParseDimensionJSON(raw json.RawMessage) (Dimension, error) {
	var asInt int64
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return Concrete(asInt), nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		switch asString {
		case "_":
			return Wildcard(), nil
		case "...":
			return Ellipsis(), nil
		default:
			return Sym(asString), nil
		}
	}

	var asObject map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if len(asObject) != 1 {
			return Dimension{}, cerrors.New(cerrors.GraphParse, "", "dimension arithmetic object must have exactly one operator key")
		}
		for opName, operands := range asObject {
			op := ArithOp(opName)
			switch op {
			case OpAdd, OpSub, OpMul, OpDiv:
			default:
				return Dimension{}, cerrors.New(cerrors.GraphParse, opName, "unknown dimension arithmetic operator")
			}
			if len(operands) != 2 {
				return Dimension{}, cerrors.New(cerrors.GraphParse, opName, "dimension arithmetic operator requires exactly two operands")
			}
			left, err := ParseDimensionJSON(operands[0])
			if err != nil {
				return Dimension{}, err
			}
			right, err := ParseDimensionJSON(operands[1])
			if err != nil {
				return Dimension{}, err
			}
			return NewArith(op, left, right), nil
		}
	}

	return Dimension{}, cerrors.New(cerrors.GraphParse, "", fmt.Sprintf("dimension literal not understood: %s", string(raw)))
}

// ParseShapeJSON decodes an array of dimension literals into a Shape.
func ParseShapeJSON(raw json.RawMessage) (Shape, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, cerrors.New(cerrors.GraphParse, "", "shape must be a JSON array: %v", err)
	}
	out := make(Shape, len(elems))
	for i, e := range elems {
		d, err := ParseDimensionJSON(e)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
