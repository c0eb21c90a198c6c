package cql

import (
	"strconv"
	"strings"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

var aggregateFuncs = map[string]bool{
	"count": true,
	"sum":   true,
	"min":   true,
	"max":   true,
	"avg":   true,
}

var metaFuncs = map[string]bool{
	"writetime": true,
	"ttl":       true,
}

// selectClauses are scanned in statement order; each clause's text runs to
// the start of the next clause present.
var selectClauses = []string{"WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT", "ALLOW FILTERING"}

func parseSelect(rest string) (Statement, error) {
	itemsPart, fromPart, found := value.CutKeyword(rest, "FROM")
	if !found {
		return nil, cqlerr.Syntaxf("SELECT missing FROM clause")
	}

	stmt := &SelectStmt{}

	itemsPart = strings.TrimSpace(itemsPart)
	if cut, ok := cutModifier(itemsPart, "DISTINCT"); ok {
		if cut == "" {
			return nil, cqlerr.Syntaxf("SELECT DISTINCT requires at least one column")
		}
		stmt.Distinct = true
		itemsPart = cut
	}

	items, err := parseSelectItems(itemsPart)
	if err != nil {
		return nil, err
	}
	stmt.Items = items

	tablePart, clauses := splitSelectClauses(fromPart)
	table, err := parseQualifiedName(tablePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid SELECT table: %v", err)
	}
	stmt.Table = table

	if where, ok := clauses["WHERE"]; ok {
		if stmt.Where, err = parseWhere(where); err != nil {
			return nil, err
		}
	}
	if groupBy, ok := clauses["GROUP BY"]; ok {
		for _, col := range value.SplitTop(groupBy) {
			name, err := parseIdent(col)
			if err != nil {
				return nil, cqlerr.Syntaxf("invalid GROUP BY column: %v", err)
			}
			stmt.GroupBy = append(stmt.GroupBy, name)
		}
		if len(stmt.GroupBy) == 0 {
			return nil, cqlerr.Syntaxf("GROUP BY clause cannot be empty")
		}
	}
	if having, ok := clauses["HAVING"]; ok {
		if stmt.Having, err = parseHaving(having); err != nil {
			return nil, err
		}
	}
	if orderBy, ok := clauses["ORDER BY"]; ok {
		if stmt.OrderBy, err = parseOrderBy(orderBy); err != nil {
			return nil, err
		}
	}
	if limit, ok := clauses["LIMIT"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil {
			return nil, cqlerr.Invalidf("LIMIT value must be an integer literal, got %q", limit)
		}
		stmt.Limit = &n
	}
	if _, ok := clauses["ALLOW FILTERING"]; ok {
		// Accepted and recorded; no behavioral effect.
		stmt.AllowFiltering = true
	}
	return stmt, nil
}

// splitSelectClauses separates the table name from the trailing clauses.
func splitSelectClauses(fromPart string) (string, map[string]string) {
	type hit struct {
		kw  string
		idx int
	}
	var hits []hit
	for _, kw := range selectClauses {
		if idx := value.IndexKeyword(fromPart, kw); idx >= 0 {
			hits = append(hits, hit{kw, idx})
		}
	}

	end := len(fromPart)
	for _, h := range hits {
		if h.idx < end {
			end = h.idx
		}
	}
	table := strings.TrimSpace(fromPart[:end])

	clauses := map[string]string{}
	for i, h := range hits {
		next := len(fromPart)
		for j, other := range hits {
			if j != i && other.idx > h.idx && other.idx < next {
				next = other.idx
			}
		}
		clauses[h.kw] = strings.TrimSpace(fromPart[h.idx+len(h.kw) : next])
	}
	return table, clauses
}

func parseSelectItems(itemsPart string) ([]SelectItem, error) {
	raw := value.SplitTop(itemsPart)
	if len(raw) == 0 {
		return nil, cqlerr.Invalidf("no columns specified in SELECT clause")
	}

	var items []SelectItem
	for _, item := range raw {
		parsed, err := parseSelectItem(item)
		if err != nil {
			return nil, err
		}
		items = append(items, parsed)
	}
	return items, nil
}

func parseSelectItem(item string) (SelectItem, error) {
	item = strings.TrimSpace(item)
	if item == "*" {
		return SelectItem{Kind: ItemWildcard}, nil
	}

	if open := strings.IndexByte(item, '('); open > 0 {
		fn := strings.ToLower(strings.TrimSpace(item[:open]))
		closing := value.Balanced(item, open)
		if closing < 0 {
			return SelectItem{}, cqlerr.Syntaxf("unbalanced parentheses in %q", item)
		}
		arg := strings.TrimSpace(item[open+1 : closing])
		alias, err := parseAlias(item[closing+1:])
		if err != nil {
			return SelectItem{}, err
		}

		switch {
		case aggregateFuncs[fn]:
			return buildAggregateItem(fn, arg, alias)
		case metaFuncs[fn]:
			if alias == "" {
				alias = fn + "(" + arg + ")"
			}
			return SelectItem{Kind: ItemMetaFunc, Func: fn, Arg: arg, Alias: alias}, nil
		default:
			return SelectItem{}, cqlerr.Invalidf("unsupported SELECT expression: %q", item)
		}
	}

	// Plain column with optional AS alias.
	name, alias := item, ""
	if before, after, found := value.CutKeyword(item, "AS"); found {
		name = before
		a, err := parseIdent(after)
		if err != nil {
			return SelectItem{}, cqlerr.Syntaxf("invalid alias in %q", item)
		}
		alias = a
	}
	col, err := parseIdent(name)
	if err != nil {
		return SelectItem{}, cqlerr.Invalidf("unsupported SELECT expression: %q", item)
	}
	if alias == "" {
		alias = col
	}
	return SelectItem{Kind: ItemColumn, Name: col, Alias: alias}, nil
}

func buildAggregateItem(fn, arg, alias string) (SelectItem, error) {
	distinct := false
	if cut, ok := cutModifier(arg, "DISTINCT"); ok {
		distinct = true
		arg = cut
	}
	if distinct {
		if fn != "count" {
			return SelectItem{}, cqlerr.Invalidf("DISTINCT is only supported with COUNT")
		}
		if arg == "*" || arg == "1" {
			return SelectItem{}, cqlerr.Invalidf("COUNT DISTINCT requires a column argument")
		}
	}
	if fn != "count" && (arg == "*" || arg == "1") {
		return SelectItem{}, cqlerr.Invalidf("aggregate function %q requires a column argument", fn)
	}
	if alias == "" {
		alias = fn
	}
	return SelectItem{Kind: ItemAggregate, Func: fn, Arg: arg, Distinct: distinct, Alias: alias}, nil
}

// parseAlias parses the text after a function call: empty, "AS name", or a
// bare alias name.
func parseAlias(tail string) (string, error) {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "", nil
	}
	if cut, ok := cutModifier(tail, "AS"); ok {
		tail = cut
	}
	alias, err := parseIdent(tail)
	if err != nil {
		return "", cqlerr.Syntaxf("invalid alias %q", tail)
	}
	return alias, nil
}

func parseHaving(having string) ([]HavingCondition, error) {
	var conds []HavingCondition
	for _, raw := range splitAnd(having) {
		cond, err := parseHavingCondition(raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	if len(conds) == 0 {
		return nil, cqlerr.Syntaxf("HAVING clause cannot be empty")
	}
	return conds, nil
}

func parseHavingCondition(raw string) (HavingCondition, error) {
	raw = strings.TrimSpace(raw)
	open := strings.IndexByte(raw, '(')
	if open <= 0 {
		return HavingCondition{}, cqlerr.Invalidf("unsupported HAVING condition: %q", raw)
	}
	fn := strings.ToLower(strings.TrimSpace(raw[:open]))
	if !aggregateFuncs[fn] {
		return HavingCondition{}, cqlerr.Invalidf("unsupported HAVING condition: %q", raw)
	}
	closing := value.Balanced(raw, open)
	if closing < 0 {
		return HavingCondition{}, cqlerr.Syntaxf("unbalanced parentheses in HAVING: %q", raw)
	}

	arg := strings.TrimSpace(raw[open+1 : closing])
	distinct := false
	if cut, ok := cutModifier(arg, "DISTINCT"); ok {
		distinct = true
		arg = cut
	}
	if distinct {
		if fn != "count" {
			return HavingCondition{}, cqlerr.Invalidf("DISTINCT is only supported with COUNT in HAVING")
		}
		if arg == "*" || arg == "1" {
			return HavingCondition{}, cqlerr.Invalidf("COUNT DISTINCT in HAVING requires a column argument")
		}
	}
	if fn != "count" && (arg == "*" || arg == "1") {
		return HavingCondition{}, cqlerr.Invalidf("aggregate function %q in HAVING requires a column argument", fn)
	}

	tail := strings.TrimSpace(raw[closing+1:])
	for _, op := range comparisonOps {
		if strings.HasPrefix(tail, op) {
			lit := strings.TrimSpace(tail[len(op):])
			if lit == "" {
				return HavingCondition{}, cqlerr.Syntaxf("missing operand in HAVING condition %q", raw)
			}
			return HavingCondition{Func: fn, Arg: arg, Distinct: distinct, Op: op, Value: lit}, nil
		}
	}
	return HavingCondition{}, cqlerr.Invalidf("unsupported HAVING condition: %q", raw)
}

func parseOrderBy(orderBy string) (*OrderBy, error) {
	fields := strings.Fields(orderBy)
	switch len(fields) {
	case 1:
		return &OrderBy{Column: fields[0]}, nil
	case 2:
		dir := strings.ToUpper(fields[1])
		if dir != "ASC" && dir != "DESC" {
			return nil, cqlerr.Invalidf("invalid ORDER BY direction: %s", fields[1])
		}
		return &OrderBy{Column: fields[0], Desc: dir == "DESC"}, nil
	default:
		return nil, cqlerr.Syntaxf("invalid ORDER BY clause %q", orderBy)
	}
}
