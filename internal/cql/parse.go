package cql

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

// Parse classifies a single CQL statement into an AST node. A trailing ';'
// is accepted and stripped. Statements matching no known shape fail with an
// unsupported-query error rather than being silently ignored.
func Parse(stmt string) (Statement, error) {
	s := strings.TrimSpace(stmt)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, cqlerr.Syntaxf("empty statement")
	}

	up := strings.ToUpper(s)

	switch {
	case strings.HasPrefix(up, "CREATE KEYSPACE"):
		return parseCreateKeyspace(s[len("CREATE KEYSPACE"):])
	case strings.HasPrefix(up, "DROP KEYSPACE"):
		return parseDropKeyspace(s[len("DROP KEYSPACE"):])
	case strings.HasPrefix(up, "USE "):
		return parseUse(s[len("USE "):])

	case strings.HasPrefix(up, "CREATE TABLE"):
		return parseCreateTable(s[len("CREATE TABLE"):])
	case strings.HasPrefix(up, "ALTER TABLE"):
		return parseAlterTable(s[len("ALTER TABLE"):])
	case strings.HasPrefix(up, "DROP TABLE"):
		return parseDropTable(s[len("DROP TABLE"):])
	case strings.HasPrefix(up, "TRUNCATE"):
		return parseTruncate(s[len("TRUNCATE"):])

	case strings.HasPrefix(up, "CREATE TYPE"):
		return parseCreateType(s[len("CREATE TYPE"):])
	case strings.HasPrefix(up, "DROP TYPE"):
		return parseDropType(s[len("DROP TYPE"):])

	case strings.HasPrefix(up, "CREATE INDEX"):
		return parseCreateIndex(s[len("CREATE INDEX"):])
	case strings.HasPrefix(up, "DROP INDEX"):
		return parseDropIndex(s[len("DROP INDEX"):])

	case strings.HasPrefix(up, "CREATE MATERIALIZED VIEW"):
		return parseCreateView(s[len("CREATE MATERIALIZED VIEW"):])
	case strings.HasPrefix(up, "DROP MATERIALIZED VIEW"):
		return parseDropView(s[len("DROP MATERIALIZED VIEW"):])

	case strings.HasPrefix(up, "INSERT INTO"):
		return parseInsert(s[len("INSERT INTO"):])
	case strings.HasPrefix(up, "UPDATE "):
		return parseUpdate(s[len("UPDATE "):])
	case strings.HasPrefix(up, "DELETE"):
		return parseDelete(s[len("DELETE"):])
	case strings.HasPrefix(up, "SELECT"):
		return parseSelect(s[len("SELECT"):])
	case strings.HasPrefix(up, "BEGIN"):
		return parseBatch(s)

	default:
		return nil, cqlerr.Unsupportedf("statement not understood: %q", stmt)
	}
}

// parseIdent validates a bare identifier (keyspace/table/column name).
func parseIdent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", cqlerr.Syntaxf("missing identifier")
	}
	if len(strings.Fields(s)) != 1 {
		return "", cqlerr.Syntaxf("invalid identifier %q", s)
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return "", cqlerr.Syntaxf("invalid identifier %q", s)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", cqlerr.Syntaxf("invalid identifier %q", s)
		}
	}
	return s, nil
}

// parseQualifiedName parses "name" or "keyspace.name".
func parseQualifiedName(s string) (QualifiedName, error) {
	s = strings.TrimSpace(s)
	if ks, name, ok := strings.Cut(s, "."); ok {
		k, err := parseIdent(ks)
		if err != nil {
			return QualifiedName{}, err
		}
		n, err := parseIdent(name)
		if err != nil {
			return QualifiedName{}, err
		}
		return QualifiedName{Keyspace: k, Name: n}, nil
	}
	n, err := parseIdent(s)
	if err != nil {
		return QualifiedName{}, err
	}
	return QualifiedName{Name: n}, nil
}

// cutColumnDef splits a "name type" definition on the first whitespace run.
func cutColumnDef(def string) (string, string, bool) {
	def = strings.TrimSpace(def)
	i := strings.IndexFunc(def, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	return def[:i], strings.TrimSpace(def[i:]), true
}

// cutModifier strips a leading keyword sequence like "IF NOT EXISTS" when
// present, returning the remainder and whether it was found.
func cutModifier(s, modifier string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	up := strings.ToUpper(trimmed)
	modUp := strings.ToUpper(modifier)
	if strings.HasPrefix(up, modUp) {
		rest := trimmed[len(modifier):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' {
			return strings.TrimSpace(rest), true
		}
	}
	return trimmed, false
}

// splitAnd splits a clause on top-level AND boundaries.
func splitAnd(s string) []string {
	var parts []string
	rest := strings.TrimSpace(s)
	for rest != "" {
		before, after, found := value.CutKeyword(rest, "AND")
		if !found {
			parts = append(parts, rest)
			break
		}
		if before != "" {
			parts = append(parts, before)
		}
		rest = after
	}
	return parts
}

// parseWhere parses a conjunction of comparison/membership predicates.
// Operand literals stay raw; the engine casts them by column type.
func parseWhere(s string) ([]Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var conds []Condition
	for _, raw := range splitAnd(s) {
		cond, err := parseCondition(raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

var comparisonOps = []string{">=", "<=", "!=", "=", ">", "<"}

func parseCondition(raw string) (Condition, error) {
	raw = strings.TrimSpace(raw)

	if before, after, found := value.CutKeyword(raw, "IN"); found {
		col, err := parseIdent(before)
		if err == nil {
			list := strings.TrimSpace(after)
			if !strings.HasPrefix(list, "(") || !strings.HasSuffix(list, ")") {
				return Condition{}, cqlerr.Syntaxf("IN operand must be a parenthesized list: %q", raw)
			}
			return Condition{
				Column: col,
				Op:     "IN",
				Values: value.SplitTop(list[1 : len(list)-1]),
			}, nil
		}
	}

	// Find the first top-level comparison operator.
	depth := 0
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
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
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, op := range comparisonOps {
			if strings.HasPrefix(raw[i:], op) {
				col, err := parseIdent(raw[:i])
				if err != nil {
					return Condition{}, err
				}
				val := strings.TrimSpace(raw[i+len(op):])
				if val == "" {
					return Condition{}, cqlerr.Syntaxf("missing operand in condition %q", raw)
				}
				return Condition{Column: col, Op: op, Value: val}, nil
			}
		}
	}
	return Condition{}, cqlerr.Syntaxf("unsupported condition %q", raw)
}

// parseUsing parses "TTL n [AND TIMESTAMP t]" in either order.
func parseUsing(s string) (UsingClause, error) {
	var u UsingClause
	s = strings.TrimSpace(s)
	if s == "" {
		return u, nil
	}
	for _, part := range splitAnd(s) {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return u, cqlerr.Syntaxf("invalid USING option %q", part)
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return u, cqlerr.Syntaxf("invalid USING value %q", fields[1])
		}
		switch strings.ToUpper(fields[0]) {
		case "TTL":
			u.TTL = &n
		case "TIMESTAMP":
			u.Timestamp = &n
		default:
			return u, cqlerr.Syntaxf("unknown USING option %q", fields[0])
		}
	}
	return u, nil
}

// parseLWT parses the text after "IF": NOT EXISTS, EXISTS, or a condition
// conjunction.
func parseLWT(s string) (LWTClause, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LWTClause{Kind: LWTNone}, nil
	}
	up := strings.ToUpper(s)
	if up == "NOT EXISTS" {
		return LWTClause{Kind: LWTIfNotExists}, nil
	}
	if up == "EXISTS" {
		return LWTClause{Kind: LWTIfExists}, nil
	}
	conds, err := parseWhere(s)
	if err != nil {
		return LWTClause{}, err
	}
	return LWTClause{Kind: LWTConditions, Conditions: conds}, nil
}

// splitStatements splits batch bodies on top-level semicolons.
func splitStatements(s string) []string {
	var parts []string
	var cur strings.Builder
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
		case c == ';':
			if p := strings.TrimSpace(cur.String()); p != "" {
				parts = append(parts, p)
			}
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
