// Package catalog provides the read-only model catalog that cursor selection,
// relation resolution and the artifact caches are validated against.
// It describes models with an ordered field list, a closed set of field kinds
// and an optional (possibly composite) primary key.
package catalog

import (
	"fmt"
	"strings"
)

// FieldKind classifies a model field
type FieldKind int

const (
	// KindScalar is a plain column value (String, Int, DateTime, ...)
	KindScalar FieldKind = iota
	// KindRelation is a link to another model
	KindRelation
	// KindEnum is a value restricted to a named enum
	KindEnum
	// KindUnsupported is a column type the catalog source could not map
	KindUnsupported
)

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRelation:
		return "relation"
	case KindEnum:
		return "enum"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ParseFieldKind converts a string to a FieldKind.
// "object" is accepted as an alias of "relation".
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "", "scalar":
		return KindScalar, nil
	case "relation", "object":
		return KindRelation, nil
	case "enum":
		return KindEnum, nil
	case "unsupported":
		return KindUnsupported, nil
	default:
		return 0, fmt.Errorf("unknown field kind: %s", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *FieldKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field represents a field of a model
type Field struct {
	Name string    `yaml:"name" json:"name"`
	Kind FieldKind `yaml:"kind,omitempty" json:"kind"`
	Type string    `yaml:"type,omitempty" json:"type,omitempty"`

	// Relation fields only
	RelationTarget string `yaml:"target,omitempty" json:"target,omitempty"`
	RelationName   string `yaml:"relationName,omitempty" json:"relationName,omitempty"`

	IsList     bool `yaml:"list,omitempty" json:"list,omitempty"`
	IsRequired bool `yaml:"required,omitempty" json:"required,omitempty"`
	IsID       bool `yaml:"id,omitempty" json:"id,omitempty"`
	IsUnique   bool `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// IsRelation returns true if the field links to another model
func (f *Field) IsRelation() bool {
	return f.Kind == KindRelation
}

// PrimaryKey is a single or composite primary key.
// Name is optional; when empty the key is addressed by its synthesized name.
type PrimaryKey struct {
	Name   string   `yaml:"name,omitempty" json:"name,omitempty"`
	Fields []string `yaml:"fields" json:"fields"`
}

// KeyNameSeparator joins composite key fields into the synthesized key name
const KeyNameSeparator = "_"

// IsComposite returns true if the key spans more than one field
func (pk *PrimaryKey) IsComposite() bool {
	return pk != nil && len(pk.Fields) > 1
}

// SynthesizedName returns the key's fields joined with KeyNameSeparator
// (["authorId", "slug"] -> "authorId_slug").
func (pk *PrimaryKey) SynthesizedName() string {
	if pk == nil {
		return ""
	}
	return strings.Join(pk.Fields, KeyNameSeparator)
}

// KeyName returns the explicit name if set, otherwise the synthesized name
func (pk *PrimaryKey) KeyName() string {
	if pk == nil {
		return ""
	}
	if pk.Name != "" {
		return pk.Name
	}
	return pk.SynthesizedName()
}

// Matches reports whether name addresses this key, either by its explicit
// name or by its synthesized name. Comparison is case-sensitive.
func (pk *PrimaryKey) Matches(name string) bool {
	if pk == nil || name == "" {
		return false
	}
	return (pk.Name != "" && name == pk.Name) || name == pk.SynthesizedName()
}

// Model represents a model and its metadata
type Model struct {
	Name          string      `yaml:"name" json:"name"`
	TableName     string      `yaml:"table,omitempty" json:"table,omitempty"`
	Documentation string      `yaml:"doc,omitempty" json:"doc,omitempty"`
	Fields        []*Field    `yaml:"fields" json:"fields"`
	PrimaryKey    *PrimaryKey `yaml:"primaryKey,omitempty" json:"primaryKey,omitempty"`

	fieldIndex map[string]int
}

// Field returns the field with the given name
func (m *Model) Field(name string) (*Field, bool) {
	if m.fieldIndex != nil {
		i, ok := m.fieldIndex[name]
		if !ok {
			return nil, false
		}
		return m.Fields[i], true
	}

	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// HasField returns true if the model has a field with the given name
func (m *Model) HasField(name string) bool {
	_, ok := m.Field(name)
	return ok
}

// FieldNames returns field names in declaration order
func (m *Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// IDField returns the first field flagged as id
func (m *Model) IDField() (*Field, bool) {
	for _, f := range m.Fields {
		if f.IsID {
			return f, true
		}
	}
	return nil, false
}

// PrimaryKeyFields returns the ordered primary key fields: the declared
// primary key if any, otherwise the id field, otherwise nil.
func (m *Model) PrimaryKeyFields() []string {
	if m.PrimaryKey != nil && len(m.PrimaryKey.Fields) > 0 {
		out := make([]string, len(m.PrimaryKey.Fields))
		copy(out, m.PrimaryKey.Fields)
		return out
	}
	if id, ok := m.IDField(); ok {
		return []string{id.Name}
	}
	return nil
}

// Relations returns the relation fields in declaration order
func (m *Model) Relations() []*Field {
	var out []*Field
	for _, f := range m.Fields {
		if f.IsRelation() {
			out = append(out, f)
		}
	}
	return out
}
