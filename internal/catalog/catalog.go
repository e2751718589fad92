// Package catalog maps effect kind names to builders. A catalog is shared
// read-only by every chain; new kinds may be registered at any time.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/pipeline"
)

// Env describes the processing context a unit is built for.
type Env struct {
	SampleRate int
	Channels   int
}

// Builder constructs a processing unit for one stage. params is already
// resolved against the kind's schema and carries the stage's live controls.
type Builder interface {
	Build(env Env, params *control.Values) (pipeline.Unit, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(env Env, params *control.Values) (pipeline.Unit, error)

func (f BuilderFunc) Build(env Env, params *control.Values) (pipeline.Unit, error) {
	return f(env, params)
}

// Kind is a registered effect kind.
type Kind struct {
	Name    string
	Schema  []control.Spec
	Builder Builder
}

var (
	errDuplicateKind = errors.New("duplicate effect kind")
	// ErrUnknownKind is returned by Instantiate for unregistered kinds.
	ErrUnknownKind = errors.New("unknown effect kind")
)

// Catalog is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

func New() *Catalog {
	return &Catalog{kinds: make(map[string]Kind)}
}

// Register adds a kind. Existing kinds cannot be replaced.
func (c *Catalog) Register(name string, b Builder, schema ...control.Spec) error {
	if name == "" {
		return errors.New("empty effect kind")
	}
	if b == nil {
		return errors.New("nil builder")
	}
	seen := make(map[string]struct{}, len(schema))
	for _, s := range schema {
		if s.Name == "" {
			return fmt.Errorf("effect kind %s: unnamed parameter", name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("effect kind %s: duplicate parameter %q", name, s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.kinds[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKind, name)
	}
	c.kinds[name] = Kind{Name: name, Schema: append([]control.Spec(nil), schema...), Builder: b}
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(name string, b Builder, schema ...control.Spec) {
	if err := c.Register(name, b, schema...); err != nil {
		panic("catalog: " + err.Error())
	}
}

func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.kinds[name]
	return ok
}

// Lookup returns the kind registered under name.
func (c *Catalog) Lookup(name string) (Kind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.kinds[name]
	return k, ok
}

// List returns registered kind names, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.kinds))
	for name := range c.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate resolves raw against the kind's schema and invokes its builder
// under prefix. Schema violations are returned as *control.RangeError; errors
// from the builder itself are returned wrapped in *BuildError.
func (c *Catalog) Instantiate(env Env, kind, prefix string, raw map[string]any) (pipeline.Stage, error) {
	k, ok := c.Lookup(kind)
	if !ok {
		return pipeline.Stage{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	vals, err := control.Resolve(prefix, k.Schema, raw)
	if err != nil {
		return pipeline.Stage{}, err
	}
	unit, err := safeBuild(k.Builder, env, vals)
	if err != nil {
		return pipeline.Stage{}, &BuildError{Kind: kind, Prefix: prefix, Err: err}
	}
	if unit == nil {
		return pipeline.Stage{}, &BuildError{Kind: kind, Prefix: prefix, Err: errors.New("builder returned no unit")}
	}
	return pipeline.Stage{Prefix: prefix, Kind: kind, Unit: unit, Controls: vals.Controls()}, nil
}

// BuildError reports a failing builder.
type BuildError struct {
	Kind   string
	Prefix string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s as %q: %v", e.Kind, e.Prefix, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func safeBuild(b Builder, env Env, vals *control.Values) (u pipeline.Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			u, err = nil, fmt.Errorf("builder panicked: %v", r)
		}
	}()
	return b.Build(env, vals)
}
