package control

import (
	"math"
	"sync/atomic"
)

// Key addresses a control by its stage prefix and parameter name.
type Key struct {
	Prefix string
	Name   string
}

// String returns the flat control name, {prefix}_{name}.
func (k Key) String() string {
	return k.Prefix + "_" + k.Name
}

// Control is a live parameter. Values are stored as float64 bit patterns so
// the audio thread can read them without locking.
type Control struct {
	key  Key
	spec Spec
	bits atomic.Uint64
}

// New creates a control holding initial. initial is assumed to be valid for s.
func New(prefix string, s Spec, initial float64) *Control {
	c := &Control{key: Key{Prefix: prefix, Name: s.Name}, spec: s}
	c.bits.Store(math.Float64bits(initial))
	return c
}

func (c *Control) Key() Key   { return c.key }
func (c *Control) Spec() Spec { return c.spec }

// Value returns the current target value.
func (c *Control) Value() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Set coerces and range-checks v, then publishes it.
func (c *Control) Set(v any) error {
	f, err := c.spec.Coerce(v)
	if err != nil {
		if re, ok := err.(*RangeError); ok {
			re.Field = c.key.String()
		}
		return err
	}
	c.bits.Store(math.Float64bits(f))
	return nil
}

// Store publishes f without validation. Used for values that were already
// checked, e.g. configuration amplitudes.
func (c *Control) Store(f float64) {
	c.bits.Store(math.Float64bits(f))
}
