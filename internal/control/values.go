package control

import (
	"sort"
)

// Values is a parameter bag resolved against a schema: every declared
// parameter has a value, and live parameters have a control under prefix.
type Values struct {
	prefix   string
	schema   []Spec
	vals     map[string]float64
	controls map[string]*Control
}

// Resolve checks raw against schema and fills in defaults for missing keys.
// Unknown keys and invalid values fail with a *RangeError whose Field is the
// namespaced control name.
func Resolve(prefix string, schema []Spec, raw map[string]any) (*Values, error) {
	v := &Values{
		prefix:   prefix,
		schema:   schema,
		vals:     make(map[string]float64, len(schema)),
		controls: make(map[string]*Control),
	}
	declared := make(map[string]Spec, len(schema))
	for _, s := range schema {
		declared[s.Name] = s
	}
	// sorted so the first reported error does not depend on map order
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := declared[k]; !ok {
			return nil, &RangeError{Field: Key{prefix, k}.String(), Value: raw[k], Reason: "unknown parameter"}
		}
	}
	for _, s := range schema {
		f := s.Default
		if rv, ok := raw[s.Name]; ok {
			var err error
			f, err = s.Coerce(rv)
			if err != nil {
				err.(*RangeError).Field = Key{prefix, s.Name}.String()
				return nil, err
			}
		}
		v.vals[s.Name] = f
		if s.Live {
			v.controls[s.Name] = New(prefix, s, f)
		}
	}
	return v, nil
}

func (v *Values) Prefix() string { return v.prefix }

// Num returns the resolved value of a declared parameter.
func (v *Values) Num(name string) float64 {
	return v.vals[name]
}

func (v *Values) Int(name string) int {
	return int(v.vals[name])
}

func (v *Values) Bool(name string) bool {
	return v.vals[name] >= 0.5
}

// Choice returns the selected choice name.
func (v *Values) Choice(name string) string {
	for _, s := range v.schema {
		if s.Name == name && s.Type == Choice {
			i := int(v.vals[name])
			if i >= 0 && i < len(s.Choices) {
				return s.Choices[i]
			}
		}
	}
	return ""
}

// Control returns the live control for name, or nil when the parameter is
// not live.
func (v *Values) Control(name string) *Control {
	return v.controls[name]
}

// Controls returns the live controls in schema order.
func (v *Values) Controls() []*Control {
	out := make([]*Control, 0, len(v.controls))
	for _, s := range v.schema {
		if c := v.controls[s.Name]; c != nil {
			out = append(out, c)
		}
	}
	return out
}
