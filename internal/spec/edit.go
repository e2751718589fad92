package spec

// Insert returns a copy of s with d at pos. pos is clamped to [0, Len()].
func (s ChainSpec) Insert(pos int, d StageDescriptor) ChainSpec {
	out := s.Clone()
	pos = clampPos(pos, len(out.Stages))
	out.Stages = append(out.Stages, StageDescriptor{})
	copy(out.Stages[pos+1:], out.Stages[pos:])
	out.Stages[pos] = d.Clone()
	return out
}

// Remove returns a copy of s without the stage at pos. pos must be valid.
func (s ChainSpec) Remove(pos int) ChainSpec {
	out := s.Clone()
	out.Stages = append(out.Stages[:pos], out.Stages[pos+1:]...)
	return out
}

// Move returns a copy of s with the stage at from re-inserted at to. to is
// clamped to the range valid after removal. The stage keeps its id and
// parameters.
func (s ChainSpec) Move(from, to int) ChainSpec {
	d := s.Stages[from]
	return s.Remove(from).Insert(to, d)
}

func clampPos(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
