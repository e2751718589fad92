package spec

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrEmptySpec         = errors.New("empty chain spec")
	ErrBadSource         = errors.New("chain must start with the source tag")
	ErrBadDestination    = errors.New("chain must end with a destination tag")
	ErrUnknownEffect     = errors.New("unknown effect kind")
	ErrDuplicateID       = errors.New("duplicate stage id")
	ErrStageNotFound     = errors.New("stage not found")
	ErrBuilderFailed     = errors.New("effect builder failed")
	ErrInvalidParamRange = errors.New("invalid parameter value")
	ErrMalformedSpec     = errors.New("malformed chain spec")
	ErrChainBusy         = errors.New("structural edit already in progress")
	ErrChainFreed        = errors.New("chain has been freed")
)

// Error is the single structured value every failing chain operation
// returns. Fields that do not apply are left zero; Position is -1 when no
// stage position is involved.
type Error struct {
	Kind     error
	Position int
	Effect   string
	ID       string
	Ref      string
	Field    string
	Value    any
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	var details []string
	if e.Effect != "" {
		details = append(details, "kind "+e.Effect)
	}
	if e.ID != "" {
		details = append(details, fmt.Sprintf("id %q", e.ID))
	}
	if e.Ref != "" {
		details = append(details, "stage "+e.Ref)
	}
	if e.Position >= 0 {
		details = append(details, fmt.Sprintf("position %d", e.Position))
	}
	if e.Field != "" {
		details = append(details, fmt.Sprintf("%s=%v", e.Field, e.Value))
	}
	if len(details) > 0 {
		b.WriteString(" (" + strings.Join(details, ", ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind error) *Error {
	return &Error{Kind: kind, Position: -1}
}

func UnknownEffect(pos int, kind string) *Error {
	e := newError(ErrUnknownEffect)
	e.Position, e.Effect = pos, kind
	return e
}

func DuplicateID(pos int, id string) *Error {
	e := newError(ErrDuplicateID)
	e.Position, e.ID = pos, id
	return e
}

func StageNotFound(ref Ref) *Error {
	e := newError(ErrStageNotFound)
	e.Ref = ref.String()
	return e
}

func BuilderFailed(pos int, kind string, cause error) *Error {
	e := newError(ErrBuilderFailed)
	e.Position, e.Effect, e.Err = pos, kind, cause
	return e
}

// InvalidParam reports a rejected field value. reason may be nil.
func InvalidParam(field string, value any, reason error) *Error {
	e := newError(ErrInvalidParamRange)
	e.Field, e.Value, e.Err = field, value, reason
	return e
}

func Malformed(pos int, reason error) *Error {
	e := newError(ErrMalformedSpec)
	e.Position, e.Err = pos, reason
	return e
}

// Plain wraps a bare kind, e.g. ErrChainBusy.
func Plain(kind error) *Error {
	return newError(kind)
}
