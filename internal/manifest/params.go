package manifest

import (
	"encoding/json"

	cerrors "tensorc/internal/errors"
)

// ResolvedParameters is the outcome of interpreting the manifest's
// `parameters` object: concrete values ready to substitute into symbolic
// dimensions, and the subset left dynamic (a symbolic tag with no concrete
// binding, destined to become a mutable global in the emitted runtime).
type ResolvedParameters struct {
	Concrete map[string]int64
	Dynamic  map[string]bool
}

// ResolveParameters interprets m.Parameters: a JSON number resolves
// directly; a string matching "window.width" or "window.height" resolves
// against m.Window; any other string is a symbolic tag and is left dynamic.
func (m *Manifest) ResolveParameters() (*ResolvedParameters, error) {
	out := &ResolvedParameters{Concrete: map[string]int64{}, Dynamic: map[string]bool{}}

	for name, raw := range m.Parameters {
		var asInt int64
		if err := json.Unmarshal(raw, &asInt); err == nil {
			out.Concrete[name] = asInt
			continue
		}

		var asString string
		if err := json.Unmarshal(raw, &asString); err != nil {
			return nil, cerrors.New(cerrors.ManifestParse, name, "parameter value must be an integer or a string tag")
		}

		switch asString {
		case "window.width":
			if m.Window == nil {
				return nil, cerrors.New(cerrors.ManifestParse, name, "parameter references window.width but manifest has no window section")
			}
			out.Concrete[name] = m.Window.Width
		case "window.height":
			if m.Window == nil {
				return nil, cerrors.New(cerrors.ManifestParse, name, "parameter references window.height but manifest has no window section")
			}
			out.Concrete[name] = m.Window.Height
		default:
			out.Dynamic[name] = true
		}
	}

	return out, nil
}
