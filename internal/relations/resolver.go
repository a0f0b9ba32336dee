// Package relations validates relation fields against the model catalog
// before any artifact is derived from them.
package relations

import (
	"fmt"

	"github.com/conduit-lang/modelref/internal/catalog"
	ustrings "github.com/conduit-lang/modelref/internal/util/strings"
)

// Resolver resolves named relations of catalog models
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver backed by c
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve returns the relation field named relation on model modelName.
// It fails with catalog.ErrModelNotFound, catalog.ErrFieldNotFound or a
// *NotARelationError carrying the field's kind.
func (r *Resolver) Resolve(modelName, relation string) (*catalog.Field, error) {
	field, err := r.catalog.GetField(modelName, relation)
	if err != nil {
		return nil, err
	}

	if !field.IsRelation() {
		return nil, &NotARelationError{Model: modelName, Field: relation, Kind: field.Kind}
	}
	return field, nil
}

// RelatedModel returns the target model of a relation
func (r *Resolver) RelatedModel(modelName, relation string) (*catalog.Model, error) {
	field, err := r.Resolve(modelName, relation)
	if err != nil {
		return nil, err
	}

	target, err := r.catalog.GetModel(field.RelationTarget)
	if err != nil {
		return nil, fmt.Errorf("relation %s.%s: %w", modelName, relation, err)
	}
	return target, nil
}

// RelatedDelegateName returns the delegate name of a relation's target model
func (r *Resolver) RelatedDelegateName(modelName, relation string) (string, error) {
	field, err := r.Resolve(modelName, relation)
	if err != nil {
		return "", err
	}
	return DelegateName(field.RelationTarget), nil
}

// DelegateName returns the conventional delegate name for a model: the model
// name with its first rune lower-cased (BlogPost -> blogPost).
func DelegateName(model string) string {
	return ustrings.LowerFirst(model)
}

// LookupDelegate returns the delegate registered for model under its
// conventional name.
func LookupDelegate[T any](delegates map[string]T, model string) (T, error) {
	d, ok := delegates[DelegateName(model)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unable to find delegate for model %s", ErrDelegateNotFound, model)
	}
	return d, nil
}
