// Package pipeline holds the live processing graph a chain commits: a source,
// an ordered list of effect stages and a destination, plus the table of
// namespaced controls that parameter updates write to.
package pipeline

import "github.com/cbegin/fxchain-go/internal/control"

// Unit processes an interleaved block of frames in place.
type Unit interface {
	Process(block []float32, channels int)
	Reset()
}

// Stage is one built effect, addressed by its control prefix.
type Stage struct {
	Prefix   string
	Kind     string
	Unit     Unit
	Controls []*control.Control
}
