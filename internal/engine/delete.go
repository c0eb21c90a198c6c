package engine

import (
	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

func (e *Executor) execDelete(st *cql.DeleteStmt, _ *int64) (*Result, error) {
	_, table, err := e.resolveTable(st.Table)
	if err != nil {
		return nil, err
	}

	now := e.now()
	table.PurgeExpired(now)

	if !st.HasWhere {
		// A WHERE-less delete never wipes the table.
		return emptyResult(), nil
	}

	conds, err := compileConds(table, st.Where)
	if err != nil {
		return nil, err
	}

	var matched, remaining []*catalog.Row
	for _, row := range table.Rows {
		ok, err := rowMatches(row, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		} else {
			remaining = append(remaining, row)
		}
	}

	switch st.Cond.Kind {
	case cql.LWTIfNotExists:
		return nil, cqlerr.Invalidf("DELETE does not support IF NOT EXISTS")

	case cql.LWTIfExists:
		if len(matched) == 0 {
			return appliedResult(false), nil
		}
		table.Rows = remaining
		return appliedResult(true), nil

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
		table.Rows = remaining
		return appliedResult(true), nil
	}

	table.Rows = remaining
	return emptyResult(), nil
}
