// Package refs holds the per-scope artifact caches used while building API
// types from the model catalog: canonical model references, find-unique
// resolvers and include specifications, plus the cursor codecs selected for
// each model's primary key.
package refs

import (
	"context"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/scopecache"
)

// Ref is a type reference. Refs are cache keys and compare by identity.
type Ref interface {
	Name() string
}

// ModelRef is the canonical reference to a catalog model within one scope
type ModelRef struct {
	model *catalog.Model
}

// Name returns the model name
func (r *ModelRef) Name() string {
	return r.model.Name
}

// Model returns the catalog model the reference points to
func (r *ModelRef) Model() *catalog.Model {
	return r.model
}

func (r *ModelRef) String() string {
	return "ModelRef(" + r.model.Name + ")"
}

// VariantRef is an additional reference to a model, such as a narrowed
// view with its own include specification.
type VariantRef struct {
	name  string
	model *catalog.Model
}

// NewVariantRef creates a variant reference named name for model
func NewVariantRef(name string, model *catalog.Model) *VariantRef {
	return &VariantRef{name: name, model: model}
}

// Name returns the variant name
func (r *VariantRef) Name() string {
	return r.name
}

// Model returns the model the variant narrows
func (r *VariantRef) Model() *catalog.Model {
	return r.model
}

func (r *VariantRef) String() string {
	return "VariantRef(" + r.name + ")"
}

// FindUniqueFunc loads the single record identified by args
type FindUniqueFunc func(ctx context.Context, args map[string]any) (any, error)

// Include is a relation include specification ({"author": true, ...})
type Include map[string]any

// RefCache maps model names to their canonical reference
type RefCache = scopecache.Table[string, *ModelRef]

// ResolverCache maps refs to their find-unique resolver; a nil resolver
// records that the ref intentionally has none.
type ResolverCache = scopecache.Table[Ref, FindUniqueFunc]

// IncludeCache maps refs to their include specification; a nil include
// records that the ref intentionally has none.
type IncludeCache = scopecache.Table[Ref, Include]

// CodecKey identifies the cursor field of a model
type CodecKey struct {
	Model string
	Field string
}

// CodecCache maps (model, cursor field) to the cursor codec selected for it
type CodecCache = scopecache.Table[CodecKey, *cursor.Codec]

// NewRefCache creates an empty ref cache
func NewRefCache() *RefCache {
	return scopecache.NewTable[string, *ModelRef]("refs")
}

// NewResolverCache creates an empty find-unique resolver cache
func NewResolverCache() *ResolverCache {
	return scopecache.NewTable[Ref, FindUniqueFunc]("findUnique")
}

// NewIncludeCache creates an empty include cache
func NewIncludeCache() *IncludeCache {
	return scopecache.NewTable[Ref, Include]("includes")
}

// NewCodecCache creates an empty codec cache
func NewCodecCache() *CodecCache {
	return scopecache.NewTable[CodecKey, *cursor.Codec]("cursors")
}
