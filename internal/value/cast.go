// Package value converts textual CQL literals to typed Go values and back,
// and compares typed values for predicate evaluation and ordering.
package value

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

// BaseType returns the lowercased base name of a CQL type, unwrapping
// frozen<...> and dropping collection arguments: "frozen<map<text, int>>"
// yields "map".
func BaseType(cqlType string) string {
	t := strings.ToLower(strings.TrimSpace(cqlType))
	for strings.HasPrefix(t, "frozen<") && strings.HasSuffix(t, ">") {
		t = strings.TrimSpace(t[len("frozen<") : len(t)-1])
	}
	if i := strings.IndexByte(t, '<'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return t
}

// typeArgs returns the comma-separated arguments of a parameterized type.
func typeArgs(cqlType string) []string {
	t := strings.TrimSpace(cqlType)
	for strings.HasPrefix(strings.ToLower(t), "frozen<") && strings.HasSuffix(t, ">") {
		t = strings.TrimSpace(t[len("frozen<") : len(t)-1])
	}
	open := strings.IndexByte(t, '<')
	if open < 0 || !strings.HasSuffix(t, ">") {
		return nil
	}
	return SplitTop(t[open+1 : len(t)-1])
}

// Cast converts a textual literal to the Go representation of the declared
// CQL type. Quoted scalars are unquoted first. NULL casts to nil for every
// type.
func Cast(raw string, cqlType string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "null") {
		return nil, nil
	}

	switch BaseType(cqlType) {
	case "int", "bigint", "smallint", "tinyint", "varint", "counter":
		n, err := cast.ToInt64E(Unquote(trimmed))
		if err != nil {
			return nil, cqlerr.Invalidf("value %q is not a valid %s", raw, BaseType(cqlType))
		}
		return n, nil

	case "text", "varchar", "ascii", "inet", "blob":
		return Unquote(trimmed), nil

	case "boolean":
		b, err := cast.ToBoolE(Unquote(trimmed))
		if err != nil {
			return nil, cqlerr.Invalidf("value %q is not a valid boolean", raw)
		}
		return b, nil

	case "float", "double", "decimal":
		f, err := cast.ToFloat64E(Unquote(trimmed))
		if err != nil {
			return nil, cqlerr.Invalidf("value %q is not a valid %s", raw, BaseType(cqlType))
		}
		return f, nil

	case "uuid", "timeuuid":
		return castUUID(trimmed)

	case "timestamp":
		if IsQuoted(trimmed) {
			return Unquote(trimmed), nil
		}
		if n, err := cast.ToInt64E(trimmed); err == nil {
			return n, nil
		}
		return nil, cqlerr.Invalidf("value %q is not a valid timestamp", raw)

	case "list":
		return castList(trimmed, cqlType, "[", "]")

	case "set":
		return castList(trimmed, cqlType, "{", "}")

	case "map":
		return castMap(trimmed, cqlType)

	default:
		// Unknown or user-defined type: keep the unquoted literal.
		return Unquote(trimmed), nil
	}
}

func castUUID(raw string) (any, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "uuid()" || lowered == "now()" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(Unquote(raw))
	if err != nil {
		return nil, cqlerr.Invalidf("value %q is not a valid uuid", raw)
	}
	return id, nil
}

func castList(raw, cqlType, open, close string) (any, error) {
	if !strings.HasPrefix(raw, open) || !strings.HasSuffix(raw, close) {
		return nil, cqlerr.Invalidf("value %q is not a valid %s literal", raw, BaseType(cqlType))
	}
	args := typeArgs(cqlType)
	elemType := "text"
	if len(args) == 1 {
		elemType = args[0]
	}
	inner := strings.TrimSpace(raw[len(open) : len(raw)-len(close)])
	if inner == "" {
		return []any{}, nil
	}
	var out []any
	for _, part := range SplitTop(inner) {
		v, err := Cast(part, elemType)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func castMap(raw, cqlType string) (any, error) {
	entries, ok := mapEntries(raw)
	if !ok {
		return nil, cqlerr.Invalidf("value %q is not a valid map literal", raw)
	}
	args := typeArgs(cqlType)
	valType := "text"
	if len(args) == 2 {
		valType = args[1]
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		cv, err := Cast(v, valType)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

// mapEntries parses a {k: v, ...} literal into raw string entries keyed by
// the unquoted key text.
func mapEntries(raw string) (map[string]string, bool) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	out := map[string]string{}
	if inner == "" {
		return out, true
	}
	for _, part := range SplitTop(inner) {
		k, v, ok := cutTopColon(part)
		if !ok {
			return nil, false
		}
		out[Unquote(k)] = strings.TrimSpace(v)
	}
	return out, true
}

// cutTopColon splits "k : v" on the first top-level colon.
func cutTopColon(s string) (string, string, bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			depth--
		case c == ':' && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// ParseStringMap parses a {k: v} literal with every key and value coerced to
// its string form. Used for replication descriptors and table options.
func ParseStringMap(raw string) (map[string]string, bool) {
	entries, ok := mapEntries(raw)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		out[k] = Unquote(v)
	}
	return out, true
}

// ParseUDTLiteral parses a {field: value, ...} user-defined-type literal into
// a field map, casting each field by its declared type. Fields absent from
// the declaration keep their unquoted literal form.
func ParseUDTLiteral(raw string, fieldTypes map[string]string) (map[string]any, error) {
	entries, ok := mapEntries(raw)
	if !ok {
		return nil, cqlerr.Invalidf("value %q is not a valid UDT literal", raw)
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		if ft, found := fieldTypes[k]; found {
			cv, err := Cast(v, ft)
			if err != nil {
				return nil, err
			}
			out[k] = cv
			continue
		}
		out[k] = Unquote(v)
	}
	return out, nil
}
