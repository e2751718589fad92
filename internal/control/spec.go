// Package control declares effect parameter schemas and the live, namespaced
// controls a pipeline exposes for them.
package control

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the value domain of a parameter.
type Type int

const (
	Number Type = iota
	Bool
	Choice
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Choice:
		return "choice"
	default:
		return "number"
	}
}

// Spec declares one parameter of an effect kind. Choice values are stored as
// the index into Choices; Bool values as 0 or 1.
type Spec struct {
	Name    string
	Type    Type
	Default float64
	Min     float64
	Max     float64
	Choices []string
	Unit    string
	// Live parameters get a control that can be changed without a rebuild.
	Live bool
}

// Num declares a live numeric parameter.
func Num(name string, def, min, max float64) Spec {
	return Spec{Name: name, Type: Number, Default: def, Min: min, Max: max, Live: true}
}

// Toggle declares a live on/off parameter.
func Toggle(name string, def bool) Spec {
	s := Spec{Name: name, Type: Bool, Min: 0, Max: 1, Live: true}
	if def {
		s.Default = 1
	}
	return s
}

// OneOf declares a live choice parameter. def must be one of choices.
func OneOf(name, def string, choices ...string) Spec {
	s := Spec{Name: name, Type: Choice, Min: 0, Max: float64(len(choices) - 1), Choices: choices, Live: true}
	for i, c := range choices {
		if c == def {
			s.Default = float64(i)
		}
	}
	return s
}

// Fixed marks the parameter as build-time only.
func (s Spec) Fixed() Spec {
	s.Live = false
	return s
}

// WithUnit sets a display unit.
func (s Spec) WithUnit(unit string) Spec {
	s.Unit = unit
	return s
}

// RangeError reports a parameter value that does not fit its declaration.
type RangeError struct {
	Field  string
	Value  any
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

// Coerce converts a raw parameter value to its stored float form and checks
// it against the declared range.
func (s Spec) Coerce(v any) (float64, error) {
	switch s.Type {
	case Bool:
		return s.coerceBool(v)
	case Choice:
		return s.coerceChoice(v)
	default:
		return s.coerceNumber(v)
	}
}

func (s Spec) coerceNumber(v any) (float64, error) {
	f, ok := toFloat(v)
	if !ok {
		return 0, &RangeError{Field: s.Name, Value: v, Reason: "expected a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &RangeError{Field: s.Name, Value: v, Reason: "not a finite number"}
	}
	if f < s.Min || f > s.Max {
		return 0, &RangeError{Field: s.Name, Value: v, Reason: fmt.Sprintf("out of range [%g, %g]", s.Min, s.Max)}
	}
	return f, nil
}

func (s Spec) coerceBool(v any) (float64, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return 0, &RangeError{Field: s.Name, Value: v, Reason: "expected true or false"}
		}
		return s.coerceBool(b)
	}
	f, ok := toFloat(v)
	if !ok || (f != 0 && f != 1) {
		return 0, &RangeError{Field: s.Name, Value: v, Reason: "expected true or false"}
	}
	return f, nil
}

func (s Spec) coerceChoice(v any) (float64, error) {
	if str, ok := v.(string); ok {
		str = strings.ToLower(strings.TrimSpace(str))
		for i, c := range s.Choices {
			if c == str {
				return float64(i), nil
			}
		}
		return 0, &RangeError{Field: s.Name, Value: v, Reason: "expected one of " + strings.Join(s.Choices, "|")}
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < 0 || int(f) >= len(s.Choices) {
		return 0, &RangeError{Field: s.Name, Value: v, Reason: "expected one of " + strings.Join(s.Choices, "|")}
	}
	return f, nil
}

// Format renders a stored value the way it would be written in a spec.
func (s Spec) Format(f float64) any {
	switch s.Type {
	case Bool:
		return f >= 0.5
	case Choice:
		i := int(f)
		if i >= 0 && i < len(s.Choices) {
			return s.Choices[i]
		}
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
