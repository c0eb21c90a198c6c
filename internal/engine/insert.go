package engine

import (
	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

func (e *Executor) execInsert(st *cql.InsertStmt, sharedTS *int64) (*Result, error) {
	ks, table, err := e.resolveTable(st.Table)
	if err != nil {
		return nil, err
	}
	if len(st.Columns) == 0 {
		return nil, cqlerr.Syntaxf("INSERT has an empty column list")
	}
	if len(st.Columns) != len(st.Values) {
		return nil, cqlerr.Invalidf("INSERT has %d columns but %d values", len(st.Columns), len(st.Values))
	}
	if err := validateTTL(st.Using); err != nil {
		return nil, err
	}

	now := e.now()
	table.PurgeExpired(now)

	values := make(map[string]any, len(st.Columns))
	for i, col := range st.Columns {
		name, err := table.ResolveColumn(col)
		if err != nil {
			return nil, err
		}
		typ, _ := table.ColumnType(name)
		v, err := castValue(ks, st.Values[i], typ)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	pk := table.PrimaryKey()
	for _, col := range pk {
		if v, ok := values[col]; !ok || v == nil {
			return nil, cqlerr.Invalidf("missing value for primary key column %q", col)
		}
	}

	writeTS := e.effectiveTimestamp(st.Using, sharedTS, now)
	existing := table.FindByKey(pk, values, now)

	switch st.Cond.Kind {
	case cql.LWTIfNotExists:
		if existing != nil {
			return conflictResult(table, existing), nil
		}
	case cql.LWTConditions:
		if existing == nil {
			return appliedResult(false), nil
		}
		conds, err := compileConds(table, st.Cond.Conditions)
		if err != nil {
			return nil, err
		}
		ok, err := rowMatches(existing, conds)
		if err != nil {
			return nil, err
		}
		if !ok {
			return conflictResult(table, existing), nil
		}
	case cql.LWTIfExists:
		return nil, cqlerr.Invalidf("INSERT does not support IF EXISTS")
	}

	if existing != nil {
		// Last-write-wins for unconditional overwrites; ties favor the
		// stored row.
		if st.Cond.Kind == cql.LWTNone && writeTS <= existing.WriteTS {
			return emptyResult(), nil
		}
		for k, v := range values {
			existing.Values[k] = v
		}
		existing.WriteTS = writeTS
		if st.Using.TTL != nil {
			existing.ExpiresAt = expiry(now, *st.Using.TTL)
		}
	} else {
		row := &catalog.Row{Values: values, WriteTS: writeTS}
		if st.Using.TTL != nil {
			row.ExpiresAt = expiry(now, *st.Using.TTL)
		}
		table.Rows = append(table.Rows, row)
	}

	if st.Cond.Kind != cql.LWTNone {
		return appliedResult(true), nil
	}
	return emptyResult(), nil
}
