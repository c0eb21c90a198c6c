package value

import "strings"

// SplitTop splits a comma-separated list at nesting depth zero, respecting
// single/double quoted strings and (), [], {}, <> pairs. Nested collection
// and UDT literals therefore survive as single items.
func SplitTop(s string) []string {
	var parts []string
	var cur strings.Builder
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
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// Balanced returns the index of the bracket matching s[open], or -1 when the
// brackets are unbalanced. Quoted sections are skipped.
func Balanced(s string, open int) int {
	pairs := map[byte]byte{'(': ')', '[': ']', '{': '}'}
	closer, ok := pairs[s[open]]
	if !ok {
		return -1
	}
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == s[open]:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// CutKeyword splits s around the first top-level, word-bounded,
// case-insensitive occurrence of kw (which may contain spaces, e.g.
// "GROUP BY"). Quoted strings and bracketed sections are never split.
func CutKeyword(s, kw string) (before, after string, found bool) {
	idx := IndexKeyword(s, kw)
	if idx < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(kw):]), true
}

// IndexKeyword returns the index of the first top-level occurrence of kw in
// s, or -1. Matching is case-insensitive and requires word boundaries.
func IndexKeyword(s, kw string) int {
	up := strings.ToUpper(s)
	kwUp := strings.ToUpper(kw)
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			continue
		case c == '\'' || c == '"':
			quote = c
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
			continue
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 {
			continue
		}
		if strings.HasPrefix(up[i:], kwUp) && boundaryBefore(s, i) && boundaryAfter(s, i+len(kw)) {
			return i
		}
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordByte(s[i])
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Unquote strips one level of matching single or double quotes and collapses
// doubled single quotes. Unquoted input is returned trimmed but otherwise
// unchanged.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if s[0] == '\'' && s[len(s)-1] == '\'' {
			return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
		}
		if s[0] == '"' && s[len(s)-1] == '"' {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// IsQuoted reports whether s is wrapped in matching quotes.
func IsQuoted(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && (s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"')
}
