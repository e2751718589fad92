// Package spec defines chain specifications, their external sequence form,
// validation against an effect catalog, and the pure edits that derive a new
// specification from a committed one.
package spec

import (
	"maps"
	"reflect"
	"slices"
)

// Reserved tags.
const (
	SourceTag = "source"
	// DestMulti passes every chain channel through to the engine.
	DestMulti = "multi"
	// DestStereo always downmixes to two channels.
	DestStereo = "stereo"
)

// Reserved namespaces for the source and destination controls. Stage ids
// may not take these.
const (
	SourcePrefix = "src"
	DestPrefix   = "dst"
)

// IsDestination reports whether tag names a destination kind.
func IsDestination(tag string) bool {
	return tag == DestMulti || tag == DestStereo
}

// StageDescriptor describes one effect stage. Descriptors held by a
// committed spec are never mutated; edits build new ones.
type StageDescriptor struct {
	Kind   string
	ID     string
	Params map[string]any
}

// Stage is a convenience constructor.
func Stage(kind, id string, params map[string]any) StageDescriptor {
	return StageDescriptor{Kind: kind, ID: id, Params: params}
}

// Clone deep-copies the parameter bag.
func (d StageDescriptor) Clone() StageDescriptor {
	d.Params = maps.Clone(d.Params)
	return d
}

// Equal compares kind, id and parameters.
func (d StageDescriptor) Equal(o StageDescriptor) bool {
	if d.Kind != o.Kind || d.ID != o.ID || len(d.Params) != len(o.Params) {
		return false
	}
	for k, v := range d.Params {
		ov, ok := o.Params[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			return false
		}
	}
	return true
}

// ChainSpec is source -> stages -> destination. Validate before building.
type ChainSpec struct {
	Source      string
	Stages      []StageDescriptor
	Destination string
}

// New returns a spec with the reserved source tag.
func New(destination string, stages ...StageDescriptor) ChainSpec {
	return ChainSpec{Source: SourceTag, Stages: stages, Destination: destination}
}

// IsEmpty reports whether the spec has no elements at all.
func (s ChainSpec) IsEmpty() bool {
	return s.Source == "" && s.Destination == "" && len(s.Stages) == 0
}

// Clone deep-copies the spec.
func (s ChainSpec) Clone() ChainSpec {
	out := s
	out.Stages = make([]StageDescriptor, len(s.Stages))
	for i, d := range s.Stages {
		out.Stages[i] = d.Clone()
	}
	return out
}

// Equal compares the full element sequence.
func (s ChainSpec) Equal(o ChainSpec) bool {
	return s.Source == o.Source && s.Destination == o.Destination &&
		slices.EqualFunc(s.Stages, o.Stages, StageDescriptor.Equal)
}

// Len returns the number of interior stages.
func (s ChainSpec) Len() int { return len(s.Stages) }
