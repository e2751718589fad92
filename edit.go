package fxchain

import (
	"github.com/cbegin/fxchain-go/internal/address"
	"github.com/cbegin/fxchain-go/internal/spec"
)

// InsertStage inserts d at pos, clamped to [0, len], and rebuilds.
func (ch *Chain) InsertStage(pos int, d StageDescriptor) error {
	return ch.edit("insert", func(s ChainSpec, _ *address.Registry) (ChainSpec, error) {
		return s.Insert(pos, d), nil
	})
}

// RemoveStage removes the stage ref resolves to and rebuilds.
func (ch *Chain) RemoveStage(ref Ref) error {
	return ch.edit("remove", func(s ChainSpec, reg *address.Registry) (ChainSpec, error) {
		e, err := reg.Resolve(ref)
		if err != nil {
			return ChainSpec{}, err
		}
		return s.Remove(e.Position), nil
	})
}

// MoveStage moves the stage ref resolves to so that it ends up at pos,
// clamped to the valid range, keeping its id and parameters.
func (ch *Chain) MoveStage(ref Ref, pos int) error {
	return ch.edit("move", func(s ChainSpec, reg *address.Registry) (ChainSpec, error) {
		e, err := reg.Resolve(ref)
		if err != nil {
			return ChainSpec{}, err
		}
		return s.Move(e.Position, pos), nil
	})
}

// edit derives a new spec from the committed one and rebuilds it in full.
func (ch *Chain) edit(op string, derive func(ChainSpec, *address.Registry) (ChainSpec, error)) error {
	unlock, err := ch.lock()
	if err != nil {
		return err
	}
	defer unlock()
	st := ch.state.Load()
	if st == nil {
		return spec.Plain(ErrEmptySpec)
	}
	next, err := derive(st.spec, st.registry)
	if err != nil {
		ch.log.Warn("chain edit rejected", "op", op, "err", err)
		return err
	}
	return ch.build(next, ch.Config())
}
