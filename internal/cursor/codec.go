package cursor

import (
	"fmt"
)

// Codec formats and parses cursors for one key shape: either a single raw
// field or an ordered composite key. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	fields    []string
	composite bool
}

// Composite returns a codec for an ordered multi-field key
func Composite(fields ...string) *Codec {
	f := make([]string, len(fields))
	copy(f, fields)
	return &Codec{fields: f, composite: true}
}

// Raw returns a codec for a single scalar field
func Raw(field string) *Codec {
	return &Codec{fields: []string{field}}
}

// Fields returns the key fields in cursor order
func (c *Codec) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// IsComposite returns true for composite key codecs
func (c *Codec) IsComposite() bool {
	return c.composite
}

// Format extracts the key values from record and encodes them
func (c *Codec) Format(record map[string]any) (string, error) {
	values := make([]any, len(c.fields))
	for i, field := range c.fields {
		v, ok := record[field]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingKeyField, field)
		}
		values[i] = v
	}
	return c.FormatValues(values...)
}

// FormatValues encodes an already extracted tuple, one value per key field
func (c *Codec) FormatValues(values ...any) (string, error) {
	if len(values) != len(c.fields) {
		return "", fmt.Errorf("cursor for %v expects %d values, got %d", c.fields, len(c.fields), len(values))
	}

	if !c.composite {
		return Encode(values[0])
	}

	chunk, err := formatComposite(values)
	if err != nil {
		return "", err
	}
	return wrap(chunk), nil
}

// ParseValues decodes a cursor into its ordered tuple. Composite cursors
// whose arity differs from the codec's field count are rejected.
func (c *Codec) ParseValues(cursor string) ([]any, error) {
	if !c.composite {
		v, err := Decode(cursor)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	chunk, err := unwrap(cursor)
	if err != nil {
		return nil, err
	}
	values, err := parseComposite(cursor, chunk)
	if err != nil {
		return nil, err
	}
	if len(values) != len(c.fields) {
		return nil, malformed(cursor, "expected %d values, got %d", len(c.fields), len(values))
	}
	return values, nil
}

// Parse decodes a cursor into a field -> value map
func (c *Codec) Parse(cursor string) (map[string]any, error) {
	values, err := c.ParseValues(cursor)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(values))
	for i, field := range c.fields {
		out[field] = values[i]
	}
	return out, nil
}

// ParseValue decodes a cursor into the value handed to a query's cursor
// argument: the scalar for raw codecs, the field map for composite ones.
func (c *Codec) ParseValue(cursor string) (any, error) {
	if !c.composite {
		return Decode(cursor)
	}
	return c.Parse(cursor)
}

// Encode formats a single scalar value as a raw cursor
func Encode(value any) (string, error) {
	chunk, err := formatChunk(value)
	if err != nil {
		return "", err
	}
	return wrap(chunk), nil
}

// Decode parses a raw cursor into its scalar value
func Decode(cursor string) (any, error) {
	chunk, err := unwrap(cursor)
	if err != nil {
		return nil, err
	}
	return parseChunk(cursor, chunk)
}
