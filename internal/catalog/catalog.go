package catalog

import (
	"fmt"
	"sort"

	ustrings "github.com/conduit-lang/modelref/internal/util/strings"
)

// Catalog is an immutable set of models keyed by name.
// It is safe for concurrent reads once constructed.
type Catalog struct {
	models map[string]*Model
	names  []string
}

// New builds a catalog from models. Only existence-level checks are made:
// every model needs a name, and model and field names must be unique.
// Models without a table name get the snake_case form of their name.
// The catalog stores copies; the caller's models are left untouched.
func New(models ...*Model) (*Catalog, error) {
	c := &Catalog{
		models: make(map[string]*Model, len(models)),
		names:  make([]string, 0, len(models)),
	}

	for _, src := range models {
		if src == nil || src.Name == "" {
			return nil, fmt.Errorf("%w: model without a name", ErrInvalidModel)
		}
		m := src.clone()
		if _, exists := c.models[m.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModel, m.Name)
		}

		index := make(map[string]int, len(m.Fields))
		for i, f := range m.Fields {
			if f == nil || f.Name == "" {
				return nil, fmt.Errorf("%w: model %s has a field without a name", ErrInvalidModel, m.Name)
			}
			if _, exists := index[f.Name]; exists {
				return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, m.Name, f.Name)
			}
			index[f.Name] = i
		}
		m.fieldIndex = index

		if m.TableName == "" {
			m.TableName = ustrings.ToSnakeCase(m.Name)
		}

		c.models[m.Name] = m
		c.names = append(c.names, m.Name)
	}

	sort.Strings(c.names)
	return c, nil
}

func (m *Model) clone() *Model {
	out := *m
	out.fieldIndex = nil
	if m.Fields != nil {
		out.Fields = make([]*Field, len(m.Fields))
	}
	for i, f := range m.Fields {
		if f != nil {
			fc := *f
			f = &fc
		}
		out.Fields[i] = f
	}
	if m.PrimaryKey != nil {
		pk := *m.PrimaryKey
		if m.PrimaryKey.Fields != nil {
			pk.Fields = append([]string{}, m.PrimaryKey.Fields...)
		}
		out.PrimaryKey = &pk
	}
	return &out
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(models ...*Model) *Catalog {
	c, err := New(models...)
	if err != nil {
		panic(err)
	}
	return c
}

// GetModel returns the model with the given name
func (c *Catalog) GetModel(name string) (*Model, error) {
	m, ok := c.models[name]
	if !ok {
		return nil, &ModelNotFoundError{
			Name:        name,
			Suggestions: ustrings.FindSimilar(name, c.names, nil),
		}
	}
	return m, nil
}

// GetField returns the named field of the named model
func (c *Catalog) GetField(modelName, fieldName string) (*Field, error) {
	m, err := c.GetModel(modelName)
	if err != nil {
		return nil, err
	}

	f, ok := m.Field(fieldName)
	if !ok {
		return nil, &FieldNotFoundError{
			Model:       modelName,
			Field:       fieldName,
			Suggestions: ustrings.FindSimilar(fieldName, m.FieldNames(), nil),
		}
	}
	return f, nil
}

// Has returns true if a model with the given name exists
func (c *Catalog) Has(name string) bool {
	_, ok := c.models[name]
	return ok
}

// Names returns the model names in sorted order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Models returns the models sorted by name
func (c *Catalog) Models() []*Model {
	out := make([]*Model, len(c.names))
	for i, name := range c.names {
		out[i] = c.models[name]
	}
	return out
}

// Len returns the number of models
func (c *Catalog) Len() int {
	return len(c.models)
}
