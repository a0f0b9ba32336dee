package cursor

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	prefix = "GPC:"

	tagString    = "S:"
	tagNumber    = "N:"
	tagDate      = "D:"
	tagBool      = "B:"
	tagComposite = "J:"
)

var encoding = base64.RawURLEncoding

// formatChunk renders a single scalar value with its type tag
func formatChunk(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return tagString + v, nil
	case int:
		return tagNumber + strconv.FormatInt(int64(v), 10), nil
	case int8:
		return tagNumber + strconv.FormatInt(int64(v), 10), nil
	case int16:
		return tagNumber + strconv.FormatInt(int64(v), 10), nil
	case int32:
		return tagNumber + strconv.FormatInt(int64(v), 10), nil
	case int64:
		return tagNumber + strconv.FormatInt(v, 10), nil
	case uint:
		return formatUint(uint64(v))
	case uint8:
		return formatUint(uint64(v))
	case uint16:
		return formatUint(uint64(v))
	case uint32:
		return formatUint(uint64(v))
	case uint64:
		return formatUint(v)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case bool:
		return tagBool + strconv.FormatBool(v), nil
	case time.Time:
		return tagDate + strconv.FormatInt(v.UnixMilli(), 10), nil
	case *time.Time:
		if v == nil {
			return "", fmt.Errorf("%w: nil time", ErrUnsupportedValue)
		}
		return tagDate + strconv.FormatInt(v.UnixMilli(), 10), nil
	case nil:
		return "", fmt.Errorf("%w: nil", ErrUnsupportedValue)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

func formatUint(v uint64) (string, error) {
	if v > math.MaxInt64 {
		return "", fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
	}
	return tagNumber + strconv.FormatUint(v, 10), nil
}

func formatFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, v)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	// keep floats distinguishable from integers
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return tagNumber + s, nil
}

// parseChunk decodes a tagged scalar chunk. cursor is only used for error reporting.
func parseChunk(cursor, chunk string) (any, error) {
	if len(chunk) < 2 {
		return nil, malformed(cursor, "truncated chunk")
	}
	tag, body := chunk[:2], chunk[2:]

	switch tag {
	case tagString:
		return body, nil
	case tagNumber:
		if strings.ContainsAny(body, ".e") {
			f, err := strconv.ParseFloat(body, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, malformed(cursor, "invalid number %q", body)
			}
			if canonical, _ := formatFloat(f); canonical != tagNumber+body {
				return nil, malformed(cursor, "non-canonical number %q", body)
			}
			return f, nil
		}
		n, err := parseCanonicalInt(body)
		if err != nil {
			return nil, malformed(cursor, "invalid number %q", body)
		}
		return n, nil
	case tagDate:
		ms, err := parseCanonicalInt(body)
		if err != nil {
			return nil, malformed(cursor, "invalid date %q", body)
		}
		return time.UnixMilli(ms).UTC(), nil
	case tagBool:
		b, err := strconv.ParseBool(body)
		if err != nil || (body != "true" && body != "false") {
			return nil, malformed(cursor, "invalid bool %q", body)
		}
		return b, nil
	case tagComposite:
		return nil, malformed(cursor, "unexpected composite chunk")
	default:
		return nil, malformed(cursor, "unknown chunk tag %q", tag)
	}
}

// wrap turns a chunk into the opaque cursor string
func wrap(chunk string) string {
	return encoding.EncodeToString([]byte(prefix + chunk))
}

// unwrap reverses wrap
func unwrap(cursor string) (string, error) {
	raw, err := encoding.DecodeString(cursor)
	if err != nil {
		return "", malformed(cursor, "invalid encoding")
	}
	s := string(raw)
	if !strings.HasPrefix(s, prefix) {
		return "", malformed(cursor, "missing %q prefix", prefix)
	}
	return s[len(prefix):], nil
}

// formatComposite frames each scalar chunk as "<byte length>:<chunk>" so no
// value content is ever interpreted as a separator.
func formatComposite(values []any) (string, error) {
	var b strings.Builder
	b.WriteString(tagComposite)
	for i, v := range values {
		chunk, err := formatChunk(v)
		if err != nil {
			return "", fmt.Errorf("value %d: %w", i, err)
		}
		b.WriteString(strconv.Itoa(len(chunk)))
		b.WriteByte(':')
		b.WriteString(chunk)
	}
	return b.String(), nil
}

func parseComposite(cursor, chunk string) ([]any, error) {
	if !strings.HasPrefix(chunk, tagComposite) {
		return nil, malformed(cursor, "expected composite chunk")
	}

	rest := chunk[len(tagComposite):]
	var values []any
	for len(rest) > 0 {
		sep := strings.IndexByte(rest, ':')
		if sep <= 0 {
			return nil, malformed(cursor, "missing length prefix")
		}
		size, err := parseCanonicalInt(rest[:sep])
		if err != nil || size < 0 {
			return nil, malformed(cursor, "invalid length prefix %q", rest[:sep])
		}
		rest = rest[sep+1:]
		if size > int64(len(rest)) {
			return nil, malformed(cursor, "length prefix exceeds payload")
		}

		v, err := parseChunk(cursor, rest[:size])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		rest = rest[size:]
	}
	return values, nil
}

// parseCanonicalInt accepts only the form strconv.FormatInt produces: no
// sign other than a leading '-', no leading zeros, no "-0".
func parseCanonicalInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if strconv.FormatInt(n, 10) != s {
		return 0, fmt.Errorf("non-canonical integer %q", s)
	}
	return n, nil
}
