package engine

import (
	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

// compiledCond is a WHERE predicate with its operand cast to the target
// column's declared type and the column name resolved to schema case.
type compiledCond struct {
	column string
	op     string
	value  any
	values []any // IN operand list
}

func compileConds(table *catalog.Table, conds []cql.Condition) ([]compiledCond, error) {
	out := make([]compiledCond, 0, len(conds))
	for _, c := range conds {
		col, err := table.ResolveColumn(c.Column)
		if err != nil {
			return nil, err
		}
		typ, _ := table.ColumnType(col)
		cc := compiledCond{column: col, op: c.Op}
		if c.Op == "IN" {
			for _, raw := range c.Values {
				v, err := value.Cast(raw, typ)
				if err != nil {
					return nil, err
				}
				cc.values = append(cc.values, v)
			}
		} else {
			v, err := value.Cast(c.Value, typ)
			if err != nil {
				return nil, err
			}
			cc.value = v
		}
		out = append(out, cc)
	}
	return out, nil
}

// rowMatches evaluates a predicate conjunction against one row. A null or
// absent column value matches nothing.
func rowMatches(row *catalog.Row, conds []compiledCond) (bool, error) {
	for _, c := range conds {
		got, ok := row.Values[c.column]
		if !ok || got == nil {
			return false, nil
		}
		switch c.op {
		case "=":
			if !value.Equal(got, c.value) {
				return false, nil
			}
		case "!=":
			if value.Equal(got, c.value) {
				return false, nil
			}
		case "IN":
			found := false
			for _, v := range c.values {
				if value.Equal(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case ">", ">=", "<", "<=":
			cmp, err := value.Compare(got, c.value)
			if err != nil {
				return false, err
			}
			if !cmpSatisfies(cmp, c.op) {
				return false, nil
			}
		default:
			return false, cqlerr.Unsupportedf("comparison operator %q", c.op)
		}
	}
	return true, nil
}

func cmpSatisfies(cmp int, op string) bool {
	switch op {
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	}
	return false
}

// equalityKey extracts a pure-equality conjunction as a column-to-value map.
// ok is false when any predicate uses another operator.
func equalityKey(conds []compiledCond) (map[string]any, bool) {
	key := make(map[string]any, len(conds))
	for _, c := range conds {
		if c.op != "=" {
			return nil, false
		}
		key[c.column] = c.value
	}
	return key, true
}
