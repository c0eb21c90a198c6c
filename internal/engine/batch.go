package engine

import (
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

// execBatch replays the batch's inner mutations through the normal handlers
// with one shared effective write timestamp. An inner USING TIMESTAMP still
// overrides it per statement. Statements matching no recognized shape are
// skipped rather than failing the whole batch.
func (e *Executor) execBatch(st *cql.BatchStmt) (*Result, error) {
	shared := e.now().UnixMicro()

	for _, raw := range st.Statements {
		parsed, err := cql.Parse(raw)
		if err != nil {
			if cqlerr.IsUnsupported(err) {
				e.log.Warn("engine: skipping unrecognized batch statement", "stmt", raw)
				continue
			}
			return nil, err
		}
		switch m := parsed.(type) {
		case *cql.InsertStmt:
			if _, err := e.execInsert(m, &shared); err != nil {
				return nil, err
			}
		case *cql.UpdateStmt:
			if _, err := e.execUpdate(m, &shared); err != nil {
				return nil, err
			}
		case *cql.DeleteStmt:
			if _, err := e.execDelete(m, &shared); err != nil {
				return nil, err
			}
		default:
			return nil, cqlerr.Invalidf("only mutations are allowed inside BATCH")
		}
	}
	return emptyResult(), nil
}
