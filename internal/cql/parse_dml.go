package cql

import (
	"strconv"
	"strings"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

func parseInsert(rest string) (Statement, error) {
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return nil, cqlerr.Syntaxf("INSERT missing column list")
	}
	closing := value.Balanced(rest, open)
	if closing < 0 {
		return nil, cqlerr.Syntaxf("INSERT has unbalanced parentheses")
	}
	table, err := parseQualifiedName(rest[:open])
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid INSERT table: %v", err)
	}

	stmt := &InsertStmt{Table: table}
	for _, col := range value.SplitTop(rest[open+1 : closing]) {
		name, err := parseIdent(col)
		if err != nil {
			return nil, cqlerr.Syntaxf("invalid INSERT column: %v", err)
		}
		stmt.Columns = append(stmt.Columns, name)
	}

	tail := strings.TrimSpace(rest[closing+1:])
	tail, found := cutModifier(tail, "VALUES")
	if !found {
		return nil, cqlerr.Syntaxf("INSERT missing VALUES clause")
	}
	if !strings.HasPrefix(tail, "(") {
		return nil, cqlerr.Syntaxf("INSERT VALUES must be parenthesized")
	}
	vClose := value.Balanced(tail, 0)
	if vClose < 0 {
		return nil, cqlerr.Syntaxf("INSERT VALUES has unbalanced parentheses")
	}
	// Bracket-aware split keeps nested collection/UDT literals whole.
	stmt.Values = value.SplitTop(tail[1:vClose])

	after := strings.TrimSpace(tail[vClose+1:])
	usingPart, ifPart, err := cutUsingAndIf(after)
	if err != nil {
		return nil, err
	}
	if stmt.Using, err = parseUsing(usingPart); err != nil {
		return nil, err
	}
	if stmt.Cond, err = parseLWT(ifPart); err != nil {
		return nil, err
	}
	return stmt, nil
}

// cutUsingAndIf splits a mutation tail into its USING and IF clauses,
// accepting either order.
func cutUsingAndIf(tail string) (usingPart, ifPart string, err error) {
	if tail == "" {
		return "", "", nil
	}
	usingIdx := value.IndexKeyword(tail, "USING")
	ifIdx := value.IndexKeyword(tail, "IF")

	switch {
	case usingIdx < 0 && ifIdx < 0:
		return "", "", cqlerr.Syntaxf("unexpected trailing text %q", tail)
	case usingIdx < 0:
		return "", strings.TrimSpace(tail[ifIdx+len("IF"):]), nil
	case ifIdx < 0:
		return strings.TrimSpace(tail[usingIdx+len("USING"):]), "", nil
	case usingIdx < ifIdx:
		return strings.TrimSpace(tail[usingIdx+len("USING") : ifIdx]),
			strings.TrimSpace(tail[ifIdx+len("IF"):]), nil
	default:
		return strings.TrimSpace(tail[usingIdx+len("USING"):]),
			strings.TrimSpace(tail[ifIdx+len("IF") : usingIdx]), nil
	}
}

func parseUpdate(rest string) (Statement, error) {
	beforeSet, afterSet, found := value.CutKeyword(rest, "SET")
	if !found {
		return nil, cqlerr.Syntaxf("UPDATE missing SET clause")
	}

	var usingPart string
	if before, after, ok := value.CutKeyword(beforeSet, "USING"); ok {
		beforeSet, usingPart = before, after
	}
	table, err := parseQualifiedName(beforeSet)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid UPDATE table: %v", err)
	}

	setPart, wherePart, found := value.CutKeyword(afterSet, "WHERE")
	if !found {
		return nil, cqlerr.Syntaxf("UPDATE missing WHERE clause")
	}

	var ifPart string
	if before, after, ok := value.CutKeyword(wherePart, "IF"); ok {
		wherePart, ifPart = before, after
	}

	stmt := &UpdateStmt{Table: table}
	if stmt.Using, err = parseUsing(usingPart); err != nil {
		return nil, err
	}
	if stmt.Assignments, err = parseAssignments(setPart); err != nil {
		return nil, err
	}
	if stmt.Where, err = parseWhere(wherePart); err != nil {
		return nil, err
	}
	if stmt.Cond, err = parseLWT(ifPart); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseAssignments(setPart string) ([]Assignment, error) {
	var assigns []Assignment
	for _, pair := range value.SplitTop(setPart) {
		col, rhs, found := strings.Cut(pair, "=")
		if !found {
			return nil, cqlerr.Syntaxf("invalid assignment %q", pair)
		}
		name, err := parseIdent(col)
		if err != nil {
			return nil, cqlerr.Syntaxf("invalid assignment column: %v", err)
		}
		rhs = strings.TrimSpace(rhs)

		// Self-referential arithmetic (c = c + 1) is a counter delta.
		if delta, ok := counterDelta(name, rhs); ok {
			assigns = append(assigns, Assignment{Column: name, CounterDelta: &delta})
			continue
		}
		assigns = append(assigns, Assignment{Column: name, Value: rhs})
	}
	if len(assigns) == 0 {
		return nil, cqlerr.Syntaxf("SET clause cannot be empty")
	}
	return assigns, nil
}

func counterDelta(col, rhs string) (int64, bool) {
	if !strings.HasPrefix(strings.ToLower(rhs), strings.ToLower(col)) {
		return 0, false
	}
	tail := strings.TrimSpace(rhs[len(col):])
	if tail == "" {
		return 0, false
	}
	sign := int64(1)
	switch tail[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(tail[1:]), 10, 64)
	if err != nil {
		return 0, false
	}
	return sign * n, true
}

func parseDelete(rest string) (Statement, error) {
	_, fromPart, found := value.CutKeyword(rest, "FROM")
	if !found {
		return nil, cqlerr.Syntaxf("DELETE missing FROM clause")
	}

	tablePart := fromPart
	var wherePart, ifPart string
	hasWhere := false
	if before, after, ok := value.CutKeyword(fromPart, "WHERE"); ok {
		tablePart, wherePart = before, after
		hasWhere = true
	}
	if before, after, ok := value.CutKeyword(wherePart, "IF"); ok {
		wherePart, ifPart = before, after
	}
	if !hasWhere {
		if before, after, ok := value.CutKeyword(tablePart, "IF"); ok {
			tablePart, ifPart = before, after
		}
	}

	table, err := parseQualifiedName(tablePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DELETE table: %v", err)
	}

	stmt := &DeleteStmt{Table: table, HasWhere: hasWhere}
	if stmt.Where, err = parseWhere(wherePart); err != nil {
		return nil, err
	}
	if stmt.Cond, err = parseLWT(ifPart); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseBatch(s string) (Statement, error) {
	up := strings.ToUpper(s)
	if !strings.HasPrefix(up, "BEGIN") {
		return nil, cqlerr.Syntaxf("invalid BATCH statement")
	}
	rest := strings.TrimSpace(s[len("BEGIN"):])
	rest, _ = cutModifier(rest, "UNLOGGED")
	rest, _ = cutModifier(rest, "COUNTER")
	rest, found := cutModifier(rest, "BATCH")
	if !found {
		return nil, cqlerr.Syntaxf("BEGIN must be followed by BATCH")
	}

	applyIdx := strings.LastIndex(strings.ToUpper(rest), "APPLY BATCH")
	if applyIdx < 0 {
		return nil, cqlerr.Syntaxf("BATCH missing APPLY BATCH terminator")
	}
	if tail := strings.TrimSpace(rest[applyIdx+len("APPLY BATCH"):]); tail != "" && tail != ";" {
		return nil, cqlerr.Syntaxf("unexpected text after APPLY BATCH: %q", tail)
	}

	return &BatchStmt{Statements: splitStatements(rest[:applyIdx])}, nil
}
