// Package fxchain builds and edits named, multi-stage audio effect chains
// while they play. A Chain owns one specification, the address registry
// derived from it and the live pipeline built from both; every structural
// edit rebuilds all three and commits them together or not at all.
package fxchain

import (
	"github.com/cbegin/fxchain-go/internal/address"
	"github.com/cbegin/fxchain-go/internal/catalog"
	"github.com/cbegin/fxchain-go/internal/control"
	"github.com/cbegin/fxchain-go/internal/effects"
	"github.com/cbegin/fxchain-go/internal/pipeline"
	"github.com/cbegin/fxchain-go/internal/spec"
)

type (
	ChainSpec       = spec.ChainSpec
	StageDescriptor = spec.StageDescriptor
	Ref             = spec.Ref
	Error           = spec.Error
	Entry           = address.Entry
	Catalog         = catalog.Catalog
	Env             = catalog.Env
	Builder         = catalog.Builder
	BuilderFunc     = catalog.BuilderFunc
	Unit            = pipeline.Unit
	Params          = control.Values
	ParamSpec       = control.Spec
	DestinationPlan = pipeline.Plan
)

// Error kinds returned by chain operations. Match with errors.Is.
var (
	ErrEmptySpec         = spec.ErrEmptySpec
	ErrBadSource         = spec.ErrBadSource
	ErrBadDestination    = spec.ErrBadDestination
	ErrUnknownEffect     = spec.ErrUnknownEffect
	ErrDuplicateID       = spec.ErrDuplicateID
	ErrStageNotFound     = spec.ErrStageNotFound
	ErrBuilderFailed     = spec.ErrBuilderFailed
	ErrInvalidParamRange = spec.ErrInvalidParamRange
	ErrMalformedSpec     = spec.ErrMalformedSpec
	ErrChainBusy         = spec.ErrChainBusy
	ErrChainFreed        = spec.ErrChainFreed
)

// Reserved spec tags.
const (
	Source     = spec.SourceTag
	DestMulti  = spec.DestMulti
	DestStereo = spec.DestStereo
)

// NewSpec returns a spec from the source through stages to destination.
func NewSpec(destination string, stages ...StageDescriptor) ChainSpec {
	return spec.New(destination, stages...)
}

// Stage describes one effect stage. id may be empty.
func Stage(kind, id string, params map[string]any) StageDescriptor {
	return spec.Stage(kind, id, params)
}

// ParseSpec decodes the YAML or JSON sequence form of a chain.
func ParseSpec(data []byte) (ChainSpec, error) { return spec.Parse(data) }

// Validate checks s against cat without building anything.
func Validate(s ChainSpec, cat *Catalog) error { return spec.Validate(s, cat) }

func At(pos int) Ref           { return spec.At(pos) }
func ByID(id string) Ref       { return spec.ByID(id) }
func ParseRef(s string) Ref    { return spec.ParseRef(s) }
func NewCatalog() *Catalog     { return catalog.New() }
func BuiltinCatalog() *Catalog { return effects.Builtin() }
