package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conduit-lang/modelref/internal/catalog"
)

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *options) jsonOutput() (bool, error) {
	switch o.format {
	case "table":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("invalid format %q: must be table or json", o.format)
	}
}

// keyLabel describes how a model is addressed: its primary key fields
// with the key name for composite keys
func keyLabel(m *catalog.Model) string {
	fields := m.PrimaryKeyFields()
	if len(fields) == 0 {
		return "-"
	}
	if m.PrimaryKey.IsComposite() {
		return fmt.Sprintf("%s (%s)", m.PrimaryKey.KeyName(), strings.Join(fields, ", "))
	}
	return fields[0]
}

// modifiers lists the flags set on a field
func modifiers(f *catalog.Field) string {
	var out []string
	if f.IsID {
		out = append(out, "id")
	}
	if f.IsRequired {
		out = append(out, "required")
	}
	if f.IsUnique {
		out = append(out, "unique")
	}
	if f.IsList {
		out = append(out, "list")
	}
	return strings.Join(out, ", ")
}

// formatValue renders a decoded cursor value
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprint(val)
	}
}
