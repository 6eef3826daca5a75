package ops

import (
	"encoding/json"

	cerrors "tensorc/internal/errors"
	"tensorc/internal/types"
)

// opJSONParams mirrors the permissible op-parameter object shapes across
// every operator kind; unused fields are simply left zero for a given kind.
type opJSONParams struct {
	Name        string            `json:"name"`
	Values      []float32         `json:"values"`
	NewShape    []json.RawMessage `json:"new_shape"`
	Permutation []int             `json:"permutation"`
	Axis        int               `json:"axis"`
	Parts       int               `json:"parts"`
}

// ParseOpJSON decodes a node's "op" field (a bare string for parameterless
// operators, or a single-key object {"OpName": {...params}} otherwise) into
// an Op. node is the enclosing node id, used only for error attribution.
func ParseOpJSON(raw json.RawMessage, node string) (Op, error) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return opFromNameAndParams(bare, opJSONParams{}, node)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Op{}, cerrors.New(cerrors.GraphParse, node, "op must be a string or a single-key object: %v", err)
	}
	if len(obj) != 1 {
		return Op{}, cerrors.New(cerrors.GraphParse, node, "op object must have exactly one key")
	}
	for name, paramsRaw := range obj {
		var params opJSONParams
		if len(paramsRaw) > 0 && string(paramsRaw) != "null" {
			if err := json.Unmarshal(paramsRaw, &params); err != nil {
				return Op{}, cerrors.New(cerrors.GraphParse, node, "invalid parameters for op %q: %v", name, err)
			}
		}
		return opFromNameAndParams(name, params, node)
	}
	return Op{}, cerrors.New(cerrors.GraphParse, node, "unreachable: empty op object")
}

func opFromNameAndParams(name string, p opJSONParams, node string) (Op, error) {
	kind := Kind(name)
	switch kind {
	case Input, Output:
		return Op{Kind: kind, Name: p.Name}, nil
	case Constant:
		return Op{Kind: kind, Values: p.Values}, nil
	case Sin, Abs, Sqrt, Square, Exp, Log,
		Add, Sub, Mul, Div, Min, Max, Pow, Transpose, MatMul:
		return Op{Kind: kind, Permutation: p.Permutation}, nil
	case Reshape:
		shape := make(types.Shape, len(p.NewShape))
		for i, raw := range p.NewShape {
			d, err := types.ParseDimensionJSON(raw)
			if err != nil {
				return Op{}, err
			}
			shape[i] = d
		}
		return Op{Kind: kind, NewShape: shape}, nil
	case Split:
		return Op{Kind: kind, Axis: p.Axis, Parts: p.Parts}, nil
	case ReduceSum:
		return Op{Kind: kind, Axis: p.Axis}, nil
	default:
		return Op{}, cerrors.New(cerrors.GraphParse, node, "unknown operator %q", name)
	}
}
