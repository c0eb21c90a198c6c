package engine

import (
	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

// compiledAssign is one SET entry with its value cast to the column type.
// delta is set for counter arithmetic.
type compiledAssign struct {
	column string
	value  any
	delta  *int64
}

func (e *Executor) execUpdate(st *cql.UpdateStmt, sharedTS *int64) (*Result, error) {
	ks, table, err := e.resolveTable(st.Table)
	if err != nil {
		return nil, err
	}
	if err := validateTTL(st.Using); err != nil {
		return nil, err
	}

	primary := map[string]bool{}
	for _, col := range table.PrimaryKey() {
		primary[col] = true
	}

	assigns := make([]compiledAssign, 0, len(st.Assignments))
	for _, a := range st.Assignments {
		name, err := table.ResolveColumn(a.Column)
		if err != nil {
			return nil, err
		}
		if primary[name] {
			return nil, cqlerr.Invalidf("cannot update primary key column %q", name)
		}
		if a.CounterDelta != nil {
			assigns = append(assigns, compiledAssign{column: name, delta: a.CounterDelta})
			continue
		}
		typ, _ := table.ColumnType(name)
		v, err := castValue(ks, a.Value, typ)
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, compiledAssign{column: name, value: v})
	}

	conds, err := compileConds(table, st.Where)
	if err != nil {
		return nil, err
	}

	now := e.now()
	table.PurgeExpired(now)
	writeTS := e.effectiveTimestamp(st.Using, sharedTS, now)

	var matched []*catalog.Row
	for _, row := range table.Rows {
		ok, err := rowMatches(row, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	apply := func(row *catalog.Row) error {
		// Skip rows carrying a strictly newer write.
		if writeTS < row.WriteTS {
			return nil
		}
		for _, a := range assigns {
			if a.delta != nil {
				var cur int64
				if v := row.Values[a.column]; v != nil {
					i, ok := v.(int64)
					if !ok {
						return cqlerr.Invalidf("cannot increment column %q: stored value is not an integer", a.column)
					}
					cur = i
				}
				row.Values[a.column] = cur + *a.delta
				continue
			}
			row.Values[a.column] = a.value
		}
		row.WriteTS = writeTS
		if st.Using.TTL != nil {
			row.ExpiresAt = expiry(now, *st.Using.TTL)
		}
		return nil
	}

	switch st.Cond.Kind {
	case cql.LWTIfExists:
		if len(matched) == 0 {
			return appliedResult(false), nil
		}
		for _, row := range matched {
			if err := apply(row); err != nil {
				return nil, err
			}
		}
		return appliedResult(true), nil

	case cql.LWTIfNotExists:
		if len(matched) > 0 {
			return conflictResult(table, matched[0]), nil
		}

	case cql.LWTConditions:
		if len(matched) == 0 {
			return appliedResult(false), nil
		}
		ifConds, err := compileConds(table, st.Cond.Conditions)
		if err != nil {
			return nil, err
		}
		for _, row := range matched {
			ok, err := rowMatches(row, ifConds)
			if err != nil {
				return nil, err
			}
			if !ok {
				return conflictResult(table, row), nil
			}
		}
		for _, row := range matched {
			if err := apply(row); err != nil {
				return nil, err
			}
		}
		return appliedResult(true), nil
	}

	if len(matched) > 0 {
		for _, row := range matched {
			if err := apply(row); err != nil {
				return nil, err
			}
		}
		return emptyResult(), nil
	}

	// No match: a pure-equality predicate upserts a synthesized row; any
	// other predicate shape leaves the table untouched.
	key, pureEquality := equalityKey(conds)
	if !pureEquality {
		if st.Cond.Kind == cql.LWTIfNotExists {
			return appliedResult(false), nil
		}
		return emptyResult(), nil
	}

	row := &catalog.Row{Values: make(map[string]any, len(key)+len(assigns)), WriteTS: writeTS}
	for k, v := range key {
		row.Values[k] = v
	}
	for _, a := range assigns {
		if a.delta != nil {
			// Counter columns initialize to the delta.
			row.Values[a.column] = *a.delta
			continue
		}
		row.Values[a.column] = a.value
	}
	if st.Using.TTL != nil {
		row.ExpiresAt = expiry(now, *st.Using.TTL)
	}
	table.Rows = append(table.Rows, row)

	if st.Cond.Kind == cql.LWTIfNotExists {
		return appliedResult(true), nil
	}
	return emptyResult(), nil
}
