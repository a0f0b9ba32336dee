package introspect

import (
	"strings"

	"github.com/conduit-lang/modelref/internal/catalog"
)

// postgresType maps information_schema data types to catalog scalar types
var postgresType = map[string]string{
	"text":                        "String",
	"character varying":           "String",
	"character":                   "String",
	"citext":                      "String",
	"uuid":                        "String",
	"smallint":                    "Int",
	"integer":                     "Int",
	"bigint":                      "BigInt",
	"real":                        "Float",
	"double precision":            "Float",
	"numeric":                     "Decimal",
	"boolean":                     "Boolean",
	"timestamp without time zone": "DateTime",
	"timestamp with time zone":    "DateTime",
	"date":                        "DateTime",
	"time without time zone":      "DateTime",
	"time with time zone":         "DateTime",
	"json":                        "Json",
	"jsonb":                       "Json",
	"bytea":                       "Bytes",
}

// postgresUDT maps array element udt names (without the leading underscore)
var postgresUDT = map[string]string{
	"text":        "String",
	"varchar":     "String",
	"bpchar":      "String",
	"uuid":        "String",
	"int2":        "Int",
	"int4":        "Int",
	"int8":        "BigInt",
	"float4":      "Float",
	"float8":      "Float",
	"numeric":     "Decimal",
	"bool":        "Boolean",
	"timestamp":   "DateTime",
	"timestamptz": "DateTime",
	"date":        "DateTime",
	"json":        "Json",
	"jsonb":       "Json",
	"bytea":       "Bytes",
}

// mapPostgresColumn classifies a PostgreSQL column. enums holds the names of
// user-defined enum types.
func mapPostgresColumn(dataType, udtName string, enums map[string]bool) (kind catalog.FieldKind, typ string, list bool) {
	switch dataType {
	case "USER-DEFINED":
		if enums[udtName] {
			return catalog.KindEnum, udtName, false
		}
		return catalog.KindUnsupported, udtName, false
	case "ARRAY":
		elem := strings.TrimPrefix(udtName, "_")
		if t, ok := postgresUDT[elem]; ok {
			return catalog.KindScalar, t, true
		}
		if enums[elem] {
			return catalog.KindEnum, elem, true
		}
		return catalog.KindUnsupported, udtName, true
	}

	if t, ok := postgresType[dataType]; ok {
		return catalog.KindScalar, t, false
	}
	return catalog.KindUnsupported, dataType, false
}

// mapSQLiteColumn classifies a SQLite column by its declared type, following
// SQLite's type affinity rules.
func mapSQLiteColumn(declared string) (catalog.FieldKind, string) {
	t := strings.ToUpper(strings.TrimSpace(declared))

	switch {
	case t == "":
		return catalog.KindScalar, "Bytes"
	case strings.Contains(t, "BIGINT"):
		return catalog.KindScalar, "BigInt"
	case strings.Contains(t, "INT"):
		return catalog.KindScalar, "Int"
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return catalog.KindScalar, "String"
	case strings.Contains(t, "BLOB"):
		return catalog.KindScalar, "Bytes"
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return catalog.KindScalar, "Float"
	case strings.Contains(t, "BOOL"):
		return catalog.KindScalar, "Boolean"
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return catalog.KindScalar, "DateTime"
	case strings.Contains(t, "JSON"):
		return catalog.KindScalar, "Json"
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"):
		return catalog.KindScalar, "Decimal"
	default:
		return catalog.KindUnsupported, declared
	}
}
