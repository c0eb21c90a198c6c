package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

func TestCreateKeyspaceDuplicate(t *testing.T) {
	e := testExecutor()
	mustExec(t, e, "CREATE KEYSPACE demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}")

	_, err := e.Execute("CREATE KEYSPACE demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))

	mustExec(t, e, "CREATE KEYSPACE IF NOT EXISTS demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}")
}

func TestUseUnknownKeyspace(t *testing.T) {
	e := testExecutor()
	_, err := e.Execute("USE nowhere", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestStatementWithoutKeyspace(t *testing.T) {
	e := testExecutor()
	_, err := e.Execute("CREATE TABLE users (id int PRIMARY KEY)", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestDropKeyspaceGuards(t *testing.T) {
	e := testExecutor()

	_, err := e.Execute("DROP KEYSPACE system", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
	_, err = e.Execute("DROP KEYSPACE system_schema", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))

	_, err = e.Execute("DROP KEYSPACE missing", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
	mustExec(t, e, "DROP KEYSPACE IF EXISTS missing")

	setupUsers(t, e)
	require.Equal(t, "demo", e.Keyspace)
	mustExec(t, e, "DROP KEYSPACE demo")
	require.Empty(t, e.Keyspace)
}

func TestCreateTableValidation(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)

	_, err := e.Execute("CREATE TABLE users (id int PRIMARY KEY)", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
	mustExec(t, e, "CREATE TABLE IF NOT EXISTS users (id int PRIMARY KEY)")

	_, err = e.Execute("CREATE TABLE keyless (a int, b text)", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestSystemSchemaReflectsDDL(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)

	res := mustExec(t, e, "SELECT table_name FROM system_schema.tables WHERE keyspace_name = 'demo'")
	require.Equal(t, [][]any{{"users"}}, res.Rows)

	res = mustExec(t, e, "SELECT column_name, kind FROM system_schema.columns WHERE keyspace_name = 'demo'")
	kinds := map[string]string{}
	for _, row := range res.Rows {
		kinds[row[0].(string)] = row[1].(string)
	}
	require.Equal(t, "partition_key", kinds["id"])
	require.Equal(t, "regular", kinds["name"])

	mustExec(t, e, "DROP TABLE users")
	res = mustExec(t, e, "SELECT table_name FROM system_schema.tables WHERE keyspace_name = 'demo'")
	require.Empty(t, res.Rows)
}

func TestAlterTableAdd(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)

	mustExec(t, e, "ALTER TABLE users ADD email text")
	mustExec(t, e, "INSERT INTO users (id, email) VALUES (1, 'a@b.c')")
	res := mustExec(t, e, "SELECT email FROM users WHERE id = 1")
	require.Equal(t, [][]any{{"a@b.c"}}, res.Rows)

	_, err := e.Execute("ALTER TABLE ghosts ADD x int", nil, nil)
	require.True(t, cqlerr.IsSyntax(err))

	_, err = e.Execute("ALTER TABLE users ADD name text", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestCreateIndexDefaultNameAndDrop(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)

	mustExec(t, e, "CREATE INDEX ON users (city)")
	res := mustExec(t, e, "SELECT index_name, target FROM system_schema.indexes WHERE keyspace_name = 'demo'")
	require.Equal(t, [][]any{{"users_city_idx", "city"}}, res.Rows)

	mustExec(t, e, "DROP INDEX users_city_idx")
	_, err := e.Execute("DROP INDEX users_city_idx", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
	mustExec(t, e, "DROP INDEX IF EXISTS users_city_idx")
}

func TestDropIndexWithoutSessionKeyspace(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)
	mustExec(t, e, "CREATE INDEX ON demo.users (city)")

	// Index names are keyspace-agnostic; dropping must not depend on USE.
	e.Keyspace = ""
	mustExec(t, e, "DROP INDEX users_city_idx")

	res := mustExec(t, e, "SELECT index_name FROM system_schema.indexes WHERE keyspace_name = 'demo'")
	require.Empty(t, res.Rows)

	_, err := e.Execute("DROP INDEX users_city_idx", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestCreateIndexUnknownColumn(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)
	_, err := e.Execute("CREATE INDEX ON users (nope)", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
}

func TestTruncateClearsRows(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)
	mustExec(t, e, "INSERT INTO users (id, name) VALUES (1, 'a')")
	mustExec(t, e, "INSERT INTO users (id, name) VALUES (2, 'b')")

	mustExec(t, e, "TRUNCATE TABLE users")
	res := mustExec(t, e, "SELECT count(*) FROM users")
	require.Equal(t, [][]any{{int64(0)}}, res.Rows)
}

func TestUserDefinedTypeRoundTrip(t *testing.T) {
	e := testExecutor()
	mustExec(t, e, "CREATE KEYSPACE demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}")
	mustExec(t, e, "USE demo")
	mustExec(t, e, "CREATE TYPE address (street text, zip int)")
	mustExec(t, e, "CREATE TABLE homes (id int PRIMARY KEY, addr frozen<address>)")

	mustExec(t, e, "INSERT INTO homes (id, addr) VALUES (1, {street: 'Main St', zip: 10001})")
	res := mustExec(t, e, "SELECT addr FROM homes WHERE id = 1")
	require.Equal(t, map[string]any{"street": "Main St", "zip": int64(10001)}, res.Rows[0][0])

	_, err := e.Execute("CREATE TYPE address (street text)", nil, nil)
	require.True(t, cqlerr.IsInvalidRequest(err))
	mustExec(t, e, "DROP TYPE address")
}

func TestMaterializedViewDescriptors(t *testing.T) {
	e := testExecutor()
	setupUsers(t, e)

	mustExec(t, e, "CREATE MATERIALIZED VIEW by_city AS SELECT * FROM users WHERE city IS NOT NULL PRIMARY KEY (city, id)")
	res := mustExec(t, e, "SELECT view_name, base_table_name FROM system_schema.views WHERE keyspace_name = 'demo'")
	require.Equal(t, [][]any{{"by_city", "users"}}, res.Rows)

	mustExec(t, e, "DROP MATERIALIZED VIEW by_city")
	res = mustExec(t, e, "SELECT view_name FROM system_schema.views WHERE keyspace_name = 'demo'")
	require.Empty(t, res.Rows)
}
