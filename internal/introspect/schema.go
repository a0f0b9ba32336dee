package introspect

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/modelref/internal/catalog"
	ustrings "github.com/conduit-lang/modelref/internal/util/strings"
)

type columnInfo struct {
	name     string
	kind     catalog.FieldKind
	typ      string
	list     bool
	nullable bool
}

type foreignKey struct {
	name    string
	columns []string
	target  string
}

type tableInfo struct {
	name        string
	columns     []*columnInfo
	primaryKey  []string
	foreignKeys []*foreignKey
}

func (t *tableInfo) column(name string) *columnInfo {
	for _, c := range t.columns {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (t *tableInfo) foreignKey(name string) *foreignKey {
	for _, fk := range t.foreignKeys {
		if fk.name == name {
			return fk
		}
	}
	fk := &foreignKey{name: name}
	t.foreignKeys = append(t.foreignKeys, fk)
	return fk
}

// schemaInfo is the dialect-neutral result of reading a database
type schemaInfo struct {
	tables []*tableInfo
	index  map[string]*tableInfo
}

func newSchemaInfo() *schemaInfo {
	return &schemaInfo{index: make(map[string]*tableInfo)}
}

// table returns the named table, adding it in first-seen order
func (s *schemaInfo) table(name string) *tableInfo {
	if t, ok := s.index[name]; ok {
		return t
	}
	t := &tableInfo{name: name}
	s.index[name] = t
	s.tables = append(s.tables, t)
	return t
}

// build converts the raw metadata into a catalog
func (s *schemaInfo) build() (*catalog.Catalog, error) {
	models := make(map[string]*catalog.Model, len(s.tables))
	ordered := make([]*catalog.Model, 0, len(s.tables))

	for _, t := range s.tables {
		m := &catalog.Model{
			Name:      ustrings.ToPascalCase(t.name),
			TableName: t.name,
		}

		for _, c := range t.columns {
			m.Fields = append(m.Fields, &catalog.Field{
				Name:       c.name,
				Kind:       c.kind,
				Type:       c.typ,
				IsList:     c.list,
				IsRequired: !c.nullable,
				IsID:       len(t.primaryKey) == 1 && t.primaryKey[0] == c.name,
			})
		}
		if len(t.primaryKey) > 1 {
			m.PrimaryKey = &catalog.PrimaryKey{Fields: append([]string(nil), t.primaryKey...)}
		}

		models[t.name] = m
		ordered = append(ordered, m)
	}

	for _, t := range s.tables {
		src := models[t.name]
		for _, fk := range t.foreignKeys {
			target, ok := models[fk.target]
			if !ok {
				// references a table outside the introspected schema
				continue
			}

			required := true
			for _, col := range fk.columns {
				if c := t.column(col); c == nil || c.nullable {
					required = false
				}
			}

			src.Fields = append(src.Fields, &catalog.Field{
				Name:           uniqueFieldName(src, forwardRelationName(fk, target)),
				Kind:           catalog.KindRelation,
				RelationTarget: target.Name,
				RelationName:   fk.name,
				IsRequired:     required,
			})
			target.Fields = append(target.Fields, &catalog.Field{
				Name:           uniqueFieldName(target, backRelationName(src)),
				Kind:           catalog.KindRelation,
				RelationTarget: src.Name,
				RelationName:   fk.name,
				IsList:         true,
			})
		}
	}

	c, err := catalog.New(ordered...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, nil
}

// forwardRelationName names the relation after its single key column with
// the id suffix removed (author_id -> author), else after the target model.
func forwardRelationName(fk *foreignKey, target *catalog.Model) string {
	if len(fk.columns) == 1 {
		col := fk.columns[0]
		for _, suffix := range []string{"_id", "Id", "_ID"} {
			if base := strings.TrimSuffix(col, suffix); base != col && base != "" {
				return base
			}
		}
	}
	return ustrings.LowerFirst(target.Name)
}

// backRelationName names the list side after the source model. Models built
// from plural table names (posts -> Posts) are not pluralized again.
func backRelationName(src *catalog.Model) string {
	name := ustrings.LowerFirst(src.Name)
	if strings.HasSuffix(name, "s") {
		return name
	}
	return ustrings.Pluralize(name)
}

func uniqueFieldName(m *catalog.Model, name string) string {
	if !m.HasField(name) {
		return name
	}
	candidate := name + "Relation"
	for n := 2; m.HasField(candidate); n++ {
		candidate = fmt.Sprintf("%sRelation%d", name, n)
	}
	return candidate
}
