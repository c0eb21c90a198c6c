package engine

import (
	"sort"
	"time"

	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

func (e *Executor) execSelect(st *cql.SelectStmt) (*Result, error) {
	_, table, err := e.resolveTable(st.Table)
	if err != nil {
		return nil, err
	}
	if err := validateSelect(table, st); err != nil {
		return nil, err
	}

	conds, err := compileConds(table, st.Where)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var rows []*catalog.Row
	for _, row := range table.LiveRows(now) {
		ok, err := rowMatches(row, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}

	switch {
	case len(st.GroupBy) > 0:
		return selectGrouped(st, rows)
	case hasAggregates(st.Items):
		return selectAggregated(st, rows)
	default:
		return selectRows(table, st, rows, now)
	}
}

func hasAggregates(items []cql.SelectItem) bool {
	for _, item := range items {
		if item.Kind == cql.ItemAggregate {
			return true
		}
	}
	return false
}

// validateSelect enforces the item-combination rules and resolves every
// column reference to its declared schema case. Validation happens before
// any row is touched so an invalid statement fails identically on an empty
// table.
func validateSelect(table *catalog.Table, st *cql.SelectStmt) error {
	var hasWildcard, hasAgg, hasMeta bool
	var plain []string
	for i := range st.Items {
		item := &st.Items[i]
		switch item.Kind {
		case cql.ItemWildcard:
			hasWildcard = true
		case cql.ItemColumn:
			name, err := table.ResolveColumn(item.Name)
			if err != nil {
				return err
			}
			item.Name = name
			plain = append(plain, name)
		case cql.ItemAggregate:
			hasAgg = true
			if item.Arg != "*" && item.Arg != "1" {
				arg, err := table.ResolveColumn(item.Arg)
				if err != nil {
					return err
				}
				item.Arg = arg
			}
		case cql.ItemMetaFunc:
			hasMeta = true
			arg, err := table.ResolveColumn(item.Arg)
			if err != nil {
				return err
			}
			item.Arg = arg
		}
	}

	grouped := len(st.GroupBy) > 0
	if hasWildcard && (hasAgg || grouped || st.Distinct) {
		return cqlerr.Invalidf("wildcard selection cannot be combined with aggregates, GROUP BY, or DISTINCT")
	}
	if st.Distinct && (hasAgg || grouped) {
		return cqlerr.Invalidf("DISTINCT cannot be combined with aggregates or GROUP BY")
	}
	if hasMeta && (hasAgg || grouped || st.Distinct) {
		return cqlerr.Invalidf("WRITETIME/TTL cannot be combined with aggregates, GROUP BY, or DISTINCT")
	}

	for i, col := range st.GroupBy {
		name, err := table.ResolveColumn(col)
		if err != nil {
			return err
		}
		st.GroupBy[i] = name
	}
	if hasAgg && len(plain) > 0 && !grouped {
		return cqlerr.Invalidf("mixing aggregates with plain columns requires GROUP BY")
	}
	if grouped {
		inGroup := map[string]bool{}
		for _, g := range st.GroupBy {
			inGroup[g] = true
		}
		for _, col := range plain {
			if !inGroup[col] {
				return cqlerr.Invalidf("column %q must appear in the GROUP BY clause", col)
			}
		}
	}

	if len(st.Having) > 0 && !grouped {
		return cqlerr.Invalidf("HAVING requires GROUP BY")
	}
	for i := range st.Having {
		h := &st.Having[i]
		if h.Arg != "*" && h.Arg != "1" {
			arg, err := table.ResolveColumn(h.Arg)
			if err != nil {
				return err
			}
			h.Arg = arg
		}
	}

	if st.OrderBy != nil {
		if hasAgg || grouped || st.Distinct {
			return cqlerr.Invalidf("ORDER BY cannot be combined with aggregates, GROUP BY, or DISTINCT")
		}
		name, err := table.ResolveColumn(st.OrderBy.Column)
		if err != nil {
			return err
		}
		st.OrderBy.Column = name
	}

	if st.Limit != nil {
		if hasAgg && !grouped {
			return cqlerr.Invalidf("LIMIT cannot be combined with ungrouped aggregates")
		}
		if *st.Limit < 0 {
			return cqlerr.Invalidf("LIMIT must not be negative, got %d", *st.Limit)
		}
	}
	return nil
}

// projection is one output column of the plain-row path: either a stored
// column or a per-row WRITETIME/TTL probe.
type projection struct {
	column string
	meta   string // "writetime" or "ttl"; empty for plain columns
	arg    string
	alias  string
}

func selectRows(table *catalog.Table, st *cql.SelectStmt, rows []*catalog.Row, now time.Time) (*Result, error) {
	var projs []projection
	for _, item := range st.Items {
		switch item.Kind {
		case cql.ItemWildcard:
			for _, c := range table.Columns {
				projs = append(projs, projection{column: c.Name, alias: c.Name})
			}
		case cql.ItemColumn:
			projs = append(projs, projection{column: item.Name, alias: item.Alias})
		case cql.ItemMetaFunc:
			projs = append(projs, projection{meta: item.Func, arg: item.Arg, alias: item.Alias})
		}
	}

	cols := make([]string, len(projs))
	for i, p := range projs {
		cols[i] = p.alias
	}

	ordered := rows
	if st.OrderBy != nil {
		ordered = append([]*catalog.Row(nil), rows...)
		col, desc := st.OrderBy.Column, st.OrderBy.Desc
		sort.SliceStable(ordered, func(i, j int) bool {
			cmp, err := value.Compare(ordered[i].Values[col], ordered[j].Values[col])
			if err != nil {
				cmp = 0
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	out := make([][]any, 0, len(ordered))
	seen := map[string]bool{}
	for _, row := range ordered {
		vals := make([]any, len(projs))
		for i, p := range projs {
			switch {
			case p.meta == "":
				vals[i] = row.Values[p.column]
			case row.Values[p.arg] == nil:
				// Probing an unset column yields null.
				vals[i] = nil
			case p.meta == "writetime":
				vals[i] = row.WriteTS
			default:
				if secs := row.TTLRemaining(now); secs != nil {
					vals[i] = *secs
				}
			}
		}
		if st.Distinct {
			sig := value.Signature(vals)
			if seen[sig] {
				continue
			}
			seen[sig] = true
		}
		out = append(out, vals)
	}

	if st.Limit != nil && len(out) > *st.Limit {
		out = out[:*st.Limit]
	}
	return &Result{Columns: cols, Rows: out}, nil
}

func selectAggregated(st *cql.SelectStmt, rows []*catalog.Row) (*Result, error) {
	cols := make([]string, len(st.Items))
	vals := make([]any, len(st.Items))
	for i, item := range st.Items {
		cols[i] = item.Alias
		v, err := computeAggregate(item.Func, item.Arg, item.Distinct, rows)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &Result{Columns: cols, Rows: [][]any{vals}}, nil
}

func selectGrouped(st *cql.SelectStmt, rows []*catalog.Row) (*Result, error) {
	// Partition into groups keyed by the grouped values, first-seen order.
	var order []string
	groups := map[string][]*catalog.Row{}
	for _, row := range rows {
		key := make([]any, len(st.GroupBy))
		for i, col := range st.GroupBy {
			key[i] = row.Values[col]
		}
		sig := value.Signature(key)
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], row)
	}

	cols := make([]string, len(st.Items))
	for i, item := range st.Items {
		cols[i] = item.Alias
	}

	var out [][]any
	for _, sig := range order {
		group := groups[sig]

		keep := true
		for _, h := range st.Having {
			ok, err := havingSatisfied(h, group)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		vals := make([]any, len(st.Items))
		for i, item := range st.Items {
			if item.Kind == cql.ItemColumn {
				vals[i] = group[0].Values[item.Name]
				continue
			}
			v, err := computeAggregate(item.Func, item.Arg, item.Distinct, group)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		out = append(out, vals)
	}

	if st.Limit != nil && len(out) > *st.Limit {
		out = out[:*st.Limit]
	}
	return &Result{Columns: cols, Rows: out}, nil
}

func havingSatisfied(h cql.HavingCondition, group []*catalog.Row) (bool, error) {
	got, err := computeAggregate(h.Func, h.Arg, h.Distinct, group)
	if err != nil {
		return false, err
	}
	want := value.ParseLiteral(h.Value)
	switch h.Op {
	case "=":
		return value.Equal(got, want), nil
	case "!=":
		return !value.Equal(got, want), nil
	}
	cmp, err := value.Compare(got, want)
	if err != nil {
		return false, err
	}
	return cmpSatisfies(cmp, h.Op), nil
}
