package engine

import (
	"strings"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

// bindParams renders parameters to CQL literal text and substitutes them for
// positional ("?" or the normalized "%s" marker) and named (":name")
// placeholders outside quoted regions. Placeholder and parameter counts must
// match exactly; every named parameter must be referenced.
func bindParams(stmt string, positional []any, named map[string]any) (string, error) {
	var out strings.Builder
	var quote byte
	used := 0
	usedNames := map[string]bool{}

	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			out.WriteByte(c)

		case c == '\'' || c == '"':
			quote = c
			out.WriteByte(c)

		case c == '?':
			if used >= len(positional) {
				return "", cqlerr.Bindf("statement has more positional placeholders than the %d supplied parameters", len(positional))
			}
			out.WriteString(value.Render(positional[used]))
			used++

		case c == '%' && i+1 < len(stmt) && stmt[i+1] == 's':
			if used >= len(positional) {
				return "", cqlerr.Bindf("statement has more positional placeholders than the %d supplied parameters", len(positional))
			}
			out.WriteString(value.Render(positional[used]))
			used++
			i++

		case c == ':' && i+1 < len(stmt) && isNameStart(stmt[i+1]):
			j := i + 1
			for j < len(stmt) && isNameChar(stmt[j]) {
				j++
			}
			name := stmt[i+1 : j]
			v, ok := named[name]
			if !ok {
				return "", cqlerr.Bindf("no value supplied for named parameter %q", name)
			}
			out.WriteString(value.Render(v))
			usedNames[name] = true
			i = j - 1

		default:
			out.WriteByte(c)
		}
	}

	if used != len(positional) {
		return "", cqlerr.Bindf("statement has %d positional placeholders but %d parameters were supplied", used, len(positional))
	}
	for name := range named {
		if !usedNames[name] {
			return "", cqlerr.Bindf("named parameter %q does not appear in the statement", name)
		}
	}
	return out.String(), nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
