// Package address assigns control prefixes to chain stages and resolves
// stage references. A Registry is computed wholesale from a stage list and
// never patched, so positions stay dense and prefixes unique after any edit.
package address

import (
	"fmt"
	"strconv"

	"github.com/cbegin/fxchain-go/internal/spec"
)

// GeneratedTag is combined with a stage position to name stages without an id.
const GeneratedTag = "fx"

// Entry is one stage's address.
type Entry struct {
	Position int    `json:"position" yaml:"position"`
	Prefix   string `json:"prefix" yaml:"prefix"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
}

// Registry is an immutable position/id/prefix index.
type Registry struct {
	entries  []Entry
	byID     map[string]int
	byPrefix map[string]int
}

// Build computes the registry for stages, which must already be validated
// (no duplicate ids).
func Build(stages []spec.StageDescriptor) *Registry {
	r := &Registry{
		entries:  make([]Entry, len(stages)),
		byID:     make(map[string]int, len(stages)),
		byPrefix: make(map[string]int, len(stages)),
	}
	taken := map[string]struct{}{
		spec.SourcePrefix: {},
		spec.DestPrefix:   {},
	}
	for _, d := range stages {
		if d.ID != "" {
			taken[d.ID] = struct{}{}
		}
	}
	for p, d := range stages {
		prefix := d.ID
		if prefix == "" {
			prefix = generate(p, taken)
			taken[prefix] = struct{}{}
		} else {
			r.byID[d.ID] = p
		}
		r.entries[p] = Entry{Position: p, Prefix: prefix, ID: d.ID, Kind: d.Kind}
		r.byPrefix[prefix] = p
	}
	return r
}

func generate(p int, taken map[string]struct{}) string {
	base := GeneratedTag + strconv.Itoa(p)
	if _, clash := taken[base]; !clash {
		return base
	}
	for k := 1; ; k++ {
		name := fmt.Sprintf("%s_%d", base, k)
		if _, clash := taken[name]; !clash {
			return name
		}
	}
}

// Len returns the number of stages.
func (r *Registry) Len() int { return len(r.entries) }

// PrefixAt returns the prefix of the stage at pos.
func (r *Registry) PrefixAt(pos int) (string, bool) {
	if pos < 0 || pos >= len(r.entries) {
		return "", false
	}
	return r.entries[pos].Prefix, true
}

// PositionOf returns the position of the stage with id.
func (r *Registry) PositionOf(id string) (int, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// PositionOfPrefix returns the position of the stage using prefix.
func (r *Registry) PositionOfPrefix(prefix string) (int, bool) {
	p, ok := r.byPrefix[prefix]
	return p, ok
}

// Resolve looks a reference up, failing with ErrStageNotFound.
func (r *Registry) Resolve(ref spec.Ref) (Entry, error) {
	pos := ref.Pos()
	if ref.IsID() {
		p, ok := r.byID[ref.Name()]
		if !ok {
			return Entry{}, spec.StageNotFound(ref)
		}
		pos = p
	}
	if pos < 0 || pos >= len(r.entries) {
		return Entry{}, spec.StageNotFound(ref)
	}
	return r.entries[pos], nil
}

// Entries returns a copy of all entries ordered by position.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}
