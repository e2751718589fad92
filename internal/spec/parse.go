package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// IDKey is the reserved parameter key that carries a stage's stable id.
const IDKey = "id"

// Parse decodes the external sequence form from YAML or JSON:
//
//   - source
//   - bitcrush
//   - [lowpass, {id: y1, freq: 500}]
//   - {kind: delay, time: 120}
//   - stereo
//
// Parse only checks element shapes; call Validate for the chain rules.
func Parse(data []byte) (ChainSpec, error) {
	var elems []any
	if err := yaml.Unmarshal(data, &elems); err != nil {
		return ChainSpec{}, Malformed(-1, err)
	}
	return FromSequence(elems)
}

// FromSequence converts decoded sequence elements into a spec. The first
// element becomes the source tag and the last the destination tag.
func FromSequence(elems []any) (ChainSpec, error) {
	var s ChainSpec
	if len(elems) == 0 {
		return s, nil
	}
	s.Source = tagOf(elems[0])
	if len(elems) == 1 {
		return s, nil
	}
	s.Destination = tagOf(elems[len(elems)-1])
	for i, el := range elems[1 : len(elems)-1] {
		d, err := parseStage(el)
		if err != nil {
			return ChainSpec{}, Malformed(i, err)
		}
		s.Stages = append(s.Stages, d)
	}
	return s, nil
}

func tagOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func parseStage(el any) (StageDescriptor, error) {
	switch t := el.(type) {
	case string:
		return StageDescriptor{Kind: t}, nil
	case []any:
		if len(t) == 0 || len(t) > 2 {
			return StageDescriptor{}, fmt.Errorf("stage pair must be [kind] or [kind, params], got %d elements", len(t))
		}
		kind, ok := t[0].(string)
		if !ok {
			return StageDescriptor{}, fmt.Errorf("stage kind must be a string, got %T", t[0])
		}
		if len(t) == 1 || t[1] == nil {
			return StageDescriptor{Kind: kind}, nil
		}
		params, ok := t[1].(map[string]any)
		if !ok {
			return StageDescriptor{}, fmt.Errorf("stage %s: params must be a mapping, got %T", kind, t[1])
		}
		return withParams(kind, params)
	case map[string]any:
		kind, ok := t["kind"].(string)
		if !ok {
			return StageDescriptor{}, errors.New("stage mapping needs a string kind")
		}
		params := maps.Clone(t)
		delete(params, "kind")
		return withParams(kind, params)
	default:
		return StageDescriptor{}, fmt.Errorf("unsupported stage element %T", el)
	}
}

func withParams(kind string, raw map[string]any) (StageDescriptor, error) {
	d := StageDescriptor{Kind: kind}
	params := maps.Clone(raw)
	if v, ok := params[IDKey]; ok {
		delete(params, IDKey)
		if v == nil {
			return d, fmt.Errorf("stage %s: empty id", kind)
		}
		d.ID = CanonicalID(v)
		if d.ID == "" {
			return d, fmt.Errorf("stage %s: empty id", kind)
		}
	}
	if len(params) > 0 {
		d.Params = params
	}
	return d, nil
}

// CanonicalID converts an id value of any scalar type to its string form.
func CanonicalID(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Element returns the descriptor in its external form: a bare kind, or a
// [kind, params] pair with the id folded into params.
func (d StageDescriptor) Element() any {
	if d.ID == "" && len(d.Params) == 0 {
		return d.Kind
	}
	params := make(map[string]any, len(d.Params)+1)
	maps.Copy(params, d.Params)
	if d.ID != "" {
		params[IDKey] = d.ID
	}
	return []any{d.Kind, params}
}

// Sequence returns the spec in its external sequence form.
func (s ChainSpec) Sequence() []any {
	if s.IsEmpty() {
		return []any{}
	}
	out := make([]any, 0, len(s.Stages)+2)
	out = append(out, s.Source)
	for _, d := range s.Stages {
		out = append(out, d.Element())
	}
	return append(out, s.Destination)
}

func (s ChainSpec) MarshalYAML() (any, error) {
	return s.Sequence(), nil
}

func (s *ChainSpec) UnmarshalYAML(n *yaml.Node) error {
	var elems []any
	if err := n.Decode(&elems); err != nil {
		return Malformed(-1, err)
	}
	parsed, err := FromSequence(elems)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ChainSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sequence())
}

func (s *ChainSpec) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
