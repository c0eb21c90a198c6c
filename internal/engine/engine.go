// Package engine dispatches CQL statements to DDL, mutation, and query
// handlers operating on catalog state.
package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

// Executor runs CQL statements against one catalog State. Execution is
// synchronous and single-threaded; each statement completes before the next
// begins, so handlers mutate state without locking.
type Executor struct {
	State    *catalog.State
	Keyspace string // session keyspace set by USE

	log *slog.Logger
	now func() time.Time
}

// New wires an executor to its state. A nil logger discards output; a nil
// clock uses wall time.
func New(state *catalog.State, log *slog.Logger, now func() time.Time) *Executor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if now == nil {
		now = time.Now
	}
	return &Executor{State: state, log: log, now: now}
}

// Execute substitutes parameters into the statement text, parses it, and
// runs the matching handler.
func (e *Executor) Execute(stmt string, positional []any, named map[string]any) (*Result, error) {
	bound, err := bindParams(stmt, positional, named)
	if err != nil {
		return nil, err
	}
	parsed, err := cql.Parse(bound)
	if err != nil {
		return nil, err
	}
	return e.exec(parsed)
}

func (e *Executor) exec(stmt cql.Statement) (*Result, error) {
	switch st := stmt.(type) {
	case *cql.CreateKeyspaceStmt:
		return e.execCreateKeyspace(st)
	case *cql.DropKeyspaceStmt:
		return e.execDropKeyspace(st)
	case *cql.UseStmt:
		return e.execUse(st)
	case *cql.CreateTableStmt:
		return e.execCreateTable(st)
	case *cql.AlterTableAddStmt:
		return e.execAlterTableAdd(st)
	case *cql.DropTableStmt:
		return e.execDropTable(st)
	case *cql.TruncateStmt:
		return e.execTruncate(st)
	case *cql.CreateTypeStmt:
		return e.execCreateType(st)
	case *cql.DropTypeStmt:
		return e.execDropType(st)
	case *cql.CreateIndexStmt:
		return e.execCreateIndex(st)
	case *cql.DropIndexStmt:
		return e.execDropIndex(st)
	case *cql.CreateViewStmt:
		return e.execCreateView(st)
	case *cql.DropViewStmt:
		return e.execDropView(st)
	case *cql.InsertStmt:
		return e.execInsert(st, nil)
	case *cql.UpdateStmt:
		return e.execUpdate(st, nil)
	case *cql.DeleteStmt:
		return e.execDelete(st, nil)
	case *cql.BatchStmt:
		return e.execBatch(st)
	case *cql.SelectStmt:
		return e.execSelect(st)
	default:
		return nil, cqlerr.Unsupportedf("statement %T not handled", stmt)
	}
}

// resolveKeyspace maps an optional explicit keyspace name to the effective
// one, falling back to the session keyspace.
func (e *Executor) resolveKeyspace(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if e.Keyspace == "" {
		return "", cqlerr.Invalidf("no keyspace has been specified")
	}
	return e.Keyspace, nil
}

func (e *Executor) resolveTable(name cql.QualifiedName) (*catalog.Keyspace, *catalog.Table, error) {
	ksName, err := e.resolveKeyspace(name.Keyspace)
	if err != nil {
		return nil, nil, err
	}
	table, err := e.State.Table(ksName, name.Name)
	if err != nil {
		return nil, nil, err
	}
	ks, _ := e.State.Keyspace(ksName)
	return ks, table, nil
}

// effectiveTimestamp picks the write timestamp in microseconds: an explicit
// USING TIMESTAMP wins, then a batch-shared timestamp, then the clock.
func (e *Executor) effectiveTimestamp(using cql.UsingClause, sharedTS *int64, now time.Time) int64 {
	if using.Timestamp != nil {
		return *using.Timestamp
	}
	if sharedTS != nil {
		return *sharedTS
	}
	return now.UnixMicro()
}

// expiry converts a TTL in seconds to an expiry instant. A TTL of zero means
// the row never expires.
func expiry(now time.Time, ttl int64) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(ttl) * time.Second)
}

func validateTTL(using cql.UsingClause) error {
	if using.TTL != nil && *using.TTL < 0 {
		return cqlerr.Invalidf("TTL must not be negative, got %d", *using.TTL)
	}
	return nil
}

// castValue casts a literal by declared column type, resolving user-defined
// types against the keyspace.
func castValue(ks *catalog.Keyspace, raw, cqlType string) (any, error) {
	base := value.BaseType(cqlType)
	if ks != nil {
		if ut, ok := ks.Types[base]; ok {
			if value.ParseLiteral(raw) == nil {
				return nil, nil
			}
			return value.ParseUDTLiteral(raw, ut.FieldTypes())
		}
	}
	return value.Cast(raw, cqlType)
}
