package spec

// Kinds reports which effect kinds exist. *catalog.Catalog satisfies it.
type Kinds interface {
	Has(kind string) bool
}

// Validate checks, in order: the spec is non-empty, starts with the source
// tag, ends with a destination tag, uses only known effect kinds, and has no
// duplicate ids. It returns the first violation and never mutates s.
func Validate(s ChainSpec, kinds Kinds) error {
	if s.IsEmpty() {
		return Plain(ErrEmptySpec)
	}
	if s.Source != SourceTag {
		e := Plain(ErrBadSource)
		e.Value = s.Source
		return e
	}
	if !IsDestination(s.Destination) {
		e := Plain(ErrBadDestination)
		e.Value = s.Destination
		return e
	}
	for i, d := range s.Stages {
		if d.Kind == "" || kinds == nil || !kinds.Has(d.Kind) {
			return UnknownEffect(i, d.Kind)
		}
	}
	seen := map[string]struct{}{
		SourcePrefix: {},
		DestPrefix:   {},
	}
	for i, d := range s.Stages {
		if d.ID == "" {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			return DuplicateID(i, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}
