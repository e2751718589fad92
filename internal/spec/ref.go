package spec

import (
	"strconv"
	"strings"
)

// Ref addresses a stage either by position or by id.
type Ref struct {
	pos  int
	id   string
	byID bool
}

func At(pos int) Ref { return Ref{pos: pos} }

func ByID(id string) Ref { return Ref{id: id, byID: true} }

// ParseRef reads a decimal integer as a position and anything else as an id.
// An "id:" prefix forces id lookup for ids that look numeric.
func ParseRef(s string) Ref {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "id:"); ok {
		return ByID(rest)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return At(n)
	}
	return ByID(s)
}

func (r Ref) IsID() bool   { return r.byID }
func (r Ref) Pos() int     { return r.pos }
func (r Ref) Name() string { return r.id }

func (r Ref) String() string {
	if r.byID {
		return strconv.Quote(r.id)
	}
	return "#" + strconv.Itoa(r.pos)
}
