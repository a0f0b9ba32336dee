package refs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/relations"
	"github.com/conduit-lang/modelref/internal/scopecache"
)

// Registry resolves cached artifacts for a catalog. All lookups are
// scoped; the registry itself holds no per-build state.
type Registry struct {
	catalog   *catalog.Catalog
	relations *relations.Resolver
	logger    *zap.Logger

	refs       *RefCache
	findUnique *ResolverCache
	includes   *IncludeCache
	codecs     *CodecCache
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry over c
func NewRegistry(c *catalog.Catalog, opts ...Option) *Registry {
	r := &Registry{
		catalog:    c,
		relations:  relations.NewResolver(c),
		logger:     zap.NewNop(),
		refs:       NewRefCache(),
		findUnique: NewResolverCache(),
		includes:   NewIncludeCache(),
		codecs:     NewCodecCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog backing the registry
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Relations returns the relation resolver backing the registry
func (r *Registry) Relations() *relations.Resolver {
	return r.relations
}

// RefFromModel returns the canonical reference for the named model in
// scope, creating it on first use.
func (r *Registry) RefFromModel(scope *scopecache.Scope, name string) (*ModelRef, error) {
	return r.refs.GetOrCreate(scope, name, func() (*ModelRef, error) {
		m, err := r.catalog.GetModel(name)
		if err != nil {
			return nil, err
		}
		return &ModelRef{model: m}, nil
	})
}

// RelatedRef returns the canonical reference of a relation's target model
func (r *Registry) RelatedRef(scope *scopecache.Scope, modelName, relation string) (*ModelRef, error) {
	field, err := r.relations.Resolve(modelName, relation)
	if err != nil {
		return nil, err
	}
	return r.RefFromModel(scope, field.RelationTarget)
}

// FindUniqueForRef returns the find-unique resolver recorded for ref.
// ok is false when nothing was recorded; a recorded nil resolver returns
// (nil, true).
func (r *Registry) FindUniqueForRef(scope *scopecache.Scope, ref Ref) (fn FindUniqueFunc, ok bool) {
	return r.findUnique.Get(scope, ref)
}

// SetFindUniqueForRef records the find-unique resolver of ref; nil records
// that ref has none.
func (r *Registry) SetFindUniqueForRef(scope *scopecache.Scope, ref Ref, fn FindUniqueFunc) error {
	if err := r.findUnique.Set(scope, ref, fn); err != nil {
		return err
	}
	r.logger.Debug("find-unique recorded",
		zap.String("scope", scope.ID()),
		zap.String("ref", ref.Name()),
		zap.Bool("absent", fn == nil),
	)
	return nil
}

// FindUniqueForRefOrCreate returns the resolver recorded for ref, creating
// it with factory on first use.
func (r *Registry) FindUniqueForRefOrCreate(scope *scopecache.Scope, ref Ref, factory func() (FindUniqueFunc, error)) (FindUniqueFunc, error) {
	return r.findUnique.GetOrCreate(scope, ref, factory)
}

// IncludeForRef returns the include specification recorded for ref.
// ok is false when nothing was recorded.
func (r *Registry) IncludeForRef(scope *scopecache.Scope, ref Ref) (include Include, ok bool) {
	return r.includes.Get(scope, ref)
}

// SetIncludeForRef records the include specification of ref; nil records
// that ref has none.
func (r *Registry) SetIncludeForRef(scope *scopecache.Scope, ref Ref, include Include) error {
	return r.includes.Set(scope, ref, include)
}

// IncludeForVariant returns the include specification of a variant ref,
// building it from relations of model on first use. Every relation is
// validated before anything is cached; no relations caches a nil include.
func (r *Registry) IncludeForVariant(scope *scopecache.Scope, ref Ref, model string, relationNames ...string) (Include, error) {
	return r.includes.GetOrCreate(scope, ref, func() (Include, error) {
		return r.BuildInclude(model, relationNames...)
	})
}

// BuildInclude validates relationNames on model and returns an include
// selecting each of them, or nil if none are given.
func (r *Registry) BuildInclude(model string, relationNames ...string) (Include, error) {
	if len(relationNames) == 0 {
		return nil, nil
	}

	include := make(Include, len(relationNames))
	for _, name := range relationNames {
		if _, err := r.relations.Resolve(model, name); err != nil {
			return nil, err
		}
		include[name] = true
	}
	return include, nil
}

// Codec returns the cursor codec for cursorField of model, memoized per scope
func (r *Registry) Codec(scope *scopecache.Scope, model, cursorField string) (*cursor.Codec, error) {
	return r.codecs.GetOrCreate(scope, CodecKey{Model: model, Field: cursorField}, func() (*cursor.Codec, error) {
		m, err := r.catalog.GetModel(model)
		if err != nil {
			return nil, err
		}
		return cursor.Select(m, cursorField)
	})
}

// CursorFormatter returns a function encoding the cursor of a record of model
func (r *Registry) CursorFormatter(scope *scopecache.Scope, model, cursorField string) (func(record map[string]any) (string, error), error) {
	codec, err := r.Codec(scope, model, cursorField)
	if err != nil {
		return nil, err
	}
	return codec.Format, nil
}

// CursorParser returns a function decoding a cursor into the query cursor
// argument {cursorField: value}. value is the scalar for raw cursors and a
// field map for composite keys.
func (r *Registry) CursorParser(scope *scopecache.Scope, model, cursorField string) (func(raw string) (map[string]any, error), error) {
	codec, err := r.Codec(scope, model, cursorField)
	if err != nil {
		return nil, err
	}

	return func(raw string) (map[string]any, error) {
		v, err := codec.ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", model, cursorField, err)
		}
		return map[string]any{cursorField: v}, nil
	}, nil
}
