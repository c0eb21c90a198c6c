package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/miniscylla/internal/catalog"
)

func testExecutor() *Executor {
	return New(catalog.NewState(catalog.DefaultNode), nil, nil)
}

// clockedExecutor pins the engine clock to *now so tests control write
// timestamps and TTL expiry.
func clockedExecutor(now *time.Time) *Executor {
	return New(catalog.NewState(catalog.DefaultNode), nil, func() time.Time { return *now })
}

func mustExec(t *testing.T, e *Executor, stmt string, params ...any) *Result {
	t.Helper()
	res, err := e.Execute(stmt, params, nil)
	require.NoError(t, err)
	return res
}

func setupUsers(t *testing.T, e *Executor) {
	t.Helper()
	mustExec(t, e, "CREATE KEYSPACE demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}")
	mustExec(t, e, "USE demo")
	mustExec(t, e, "CREATE TABLE users (id int PRIMARY KEY, name text, city text, score int)")
}

func usersTable(t *testing.T, e *Executor) *catalog.Table {
	t.Helper()
	table, err := e.State.Table("demo", "users")
	require.NoError(t, err)
	return table
}
