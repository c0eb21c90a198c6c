package cql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

func TestParseCreateKeyspace(t *testing.T) {
	stmt, err := Parse("CREATE KEYSPACE IF NOT EXISTS demo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1} AND DURABLE_WRITES = false;")
	require.NoError(t, err)

	ks, ok := stmt.(*CreateKeyspaceStmt)
	require.True(t, ok)
	require.Equal(t, "demo", ks.Name)
	require.True(t, ks.IfNotExists)
	require.Equal(t, "{'class': 'SimpleStrategy', 'replication_factor': 1}", ks.Replication)
	require.NotNil(t, ks.DurableWrites)
	require.False(t, *ks.DurableWrites)
}

func TestParseCreateTableCompositePartitionKey(t *testing.T) {
	stmt, err := Parse("CREATE TABLE ks.events (a int, b text, c float, d text, PRIMARY KEY ((a, b), c))")
	require.NoError(t, err)

	ct, ok := stmt.(*CreateTableStmt)
	require.True(t, ok)
	require.Equal(t, QualifiedName{Keyspace: "ks", Name: "events"}, ct.Table)
	require.Len(t, ct.Columns, 4)
	require.Equal(t, []string{"a", "b"}, ct.PartitionKey)
	require.Equal(t, []string{"c"}, ct.ClusteringKey)
}

func TestParseCreateTableInlineKeyAndOrder(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id uuid PRIMARY KEY, name text)")
	require.NoError(t, err)
	ct := stmt.(*CreateTableStmt)
	require.Equal(t, []string{"id"}, ct.PartitionKey)
	require.Equal(t, "uuid", ct.Columns[0].Type)

	stmt, err = Parse("CREATE TABLE t (a int, b int, PRIMARY KEY (a, b)) WITH CLUSTERING ORDER BY (b DESC)")
	require.NoError(t, err)
	ct = stmt.(*CreateTableStmt)
	require.Equal(t, []ColumnOrder{{Column: "b", Desc: true}}, ct.ClusteringOrder)
}

func TestParseAlterTableRequiresAdd(t *testing.T) {
	_, err := Parse("ALTER TABLE users DROP name")
	require.Error(t, err)
	require.True(t, cqlerr.IsSyntax(err))

	stmt, err := Parse("ALTER TABLE users ADD email text, age int")
	require.NoError(t, err)
	at := stmt.(*AlterTableAddStmt)
	require.Len(t, at.Columns, 2)
	require.Equal(t, ColumnDef{Name: "email", Type: "text"}, at.Columns[0])
}

func TestParseInsertNestedLiteralsAndClauses(t *testing.T) {
	stmt, err := Parse("INSERT INTO demo.users (id, tags, address) VALUES (1, ['a', 'b'], {street: 'x, y', zip: 10001}) USING TTL 60 IF NOT EXISTS")
	require.NoError(t, err)

	ins, ok := stmt.(*InsertStmt)
	require.True(t, ok)
	require.Equal(t, []string{"id", "tags", "address"}, ins.Columns)
	require.Equal(t, []string{"1", "['a', 'b']", "{street: 'x, y', zip: 10001}"}, ins.Values)
	require.NotNil(t, ins.Using.TTL)
	require.Equal(t, int64(60), *ins.Using.TTL)
	require.Equal(t, LWTIfNotExists, ins.Cond.Kind)
}

func TestParseInsertUsingTimestampEitherOrder(t *testing.T) {
	stmt, err := Parse("INSERT INTO t (id) VALUES (1) USING TIMESTAMP 500 AND TTL 10")
	require.NoError(t, err)
	ins := stmt.(*InsertStmt)
	require.Equal(t, int64(500), *ins.Using.Timestamp)
	require.Equal(t, int64(10), *ins.Using.TTL)
}

func TestParseUpdateCounterAndConditions(t *testing.T) {
	stmt, err := Parse("UPDATE users USING TTL 30 SET score = score + 5, name = 'Bob' WHERE id = 7 IF EXISTS")
	require.NoError(t, err)

	up, ok := stmt.(*UpdateStmt)
	require.True(t, ok)
	require.Equal(t, int64(30), *up.Using.TTL)
	require.Len(t, up.Assignments, 2)
	require.NotNil(t, up.Assignments[0].CounterDelta)
	require.Equal(t, int64(5), *up.Assignments[0].CounterDelta)
	require.Equal(t, "'Bob'", up.Assignments[1].Value)
	require.Equal(t, []Condition{{Column: "id", Op: "=", Value: "7"}}, up.Where)
	require.Equal(t, LWTIfExists, up.Cond.Kind)
}

func TestParseUpdateCounterDecrement(t *testing.T) {
	stmt, err := Parse("UPDATE counters SET hits = hits - 2 WHERE id = 1")
	require.NoError(t, err)
	up := stmt.(*UpdateStmt)
	require.Equal(t, int64(-2), *up.Assignments[0].CounterDelta)
}

func TestParseDeleteWithoutWhere(t *testing.T) {
	stmt, err := Parse("DELETE FROM users")
	require.NoError(t, err)
	del := stmt.(*DeleteStmt)
	require.False(t, del.HasWhere)

	stmt, err = Parse("DELETE FROM users WHERE id = 3 IF EXISTS")
	require.NoError(t, err)
	del = stmt.(*DeleteStmt)
	require.True(t, del.HasWhere)
	require.Equal(t, LWTIfExists, del.Cond.Kind)
}

func TestParseSelectAllClauses(t *testing.T) {
	stmt, err := Parse("SELECT name, score AS s FROM users WHERE city = 'Paris' AND score >= 10 GROUP BY name HAVING count(*) > 1 ORDER BY score DESC LIMIT 10 ALLOW FILTERING")
	require.NoError(t, err)

	sel, ok := stmt.(*SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Items, 2)
	require.Equal(t, "s", sel.Items[1].Alias)
	require.Len(t, sel.Where, 2)
	require.Equal(t, Condition{Column: "score", Op: ">=", Value: "10"}, sel.Where[1])
	require.Equal(t, []string{"name"}, sel.GroupBy)
	require.Equal(t, []HavingCondition{{Func: "count", Arg: "*", Op: ">", Value: "1"}}, sel.Having)
	require.Equal(t, &OrderBy{Column: "score", Desc: true}, sel.OrderBy)
	require.NotNil(t, sel.Limit)
	require.Equal(t, 10, *sel.Limit)
	require.True(t, sel.AllowFiltering)
}

func TestParseSelectItems(t *testing.T) {
	stmt, err := Parse("SELECT count(DISTINCT city), writetime(name), * FROM t")
	require.NoError(t, err)
	sel := stmt.(*SelectStmt)
	require.Equal(t, ItemAggregate, sel.Items[0].Kind)
	require.True(t, sel.Items[0].Distinct)
	require.Equal(t, ItemMetaFunc, sel.Items[1].Kind)
	require.Equal(t, "writetime", sel.Items[1].Func)
	require.Equal(t, ItemWildcard, sel.Items[2].Kind)
}

func TestParseSelectRejectsBadShapes(t *testing.T) {
	_, err := Parse("SELECT * FROM t LIMIT abc")
	require.True(t, cqlerr.IsInvalidRequest(err))

	_, err = Parse("SELECT sum(DISTINCT x) FROM t")
	require.True(t, cqlerr.IsInvalidRequest(err))

	_, err = Parse("SELECT avg(*) FROM t")
	require.True(t, cqlerr.IsInvalidRequest(err))

	_, err = Parse("SELECT name WHERE x = 1")
	require.True(t, cqlerr.IsSyntax(err))
}

func TestParseSelectInList(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE id IN (1, 2, 3)")
	require.NoError(t, err)
	sel := stmt.(*SelectStmt)
	require.Equal(t, "IN", sel.Where[0].Op)
	require.Equal(t, []string{"1", "2", "3"}, sel.Where[0].Values)
}

func TestParseBatch(t *testing.T) {
	stmt, err := Parse("BEGIN BATCH INSERT INTO t (id) VALUES (1); UPDATE t SET v = 2 WHERE id = 1; APPLY BATCH")
	require.NoError(t, err)
	batch := stmt.(*BatchStmt)
	require.Len(t, batch.Statements, 2)

	_, err = Parse("BEGIN BATCH INSERT INTO t (id) VALUES (1)")
	require.True(t, cqlerr.IsSyntax(err))
}

func TestParseUnsupportedStatement(t *testing.T) {
	_, err := Parse("GRANT ALL ON demo TO admin")
	require.Error(t, err)
	require.True(t, cqlerr.IsUnsupported(err))
}

func TestParseUseAndDrops(t *testing.T) {
	stmt, err := Parse("USE demo")
	require.NoError(t, err)
	require.Equal(t, "demo", stmt.(*UseStmt).Name)

	stmt, err = Parse("DROP TABLE IF EXISTS ks.users")
	require.NoError(t, err)
	dt := stmt.(*DropTableStmt)
	require.True(t, dt.IfExists)
	require.Equal(t, QualifiedName{Keyspace: "ks", Name: "users"}, dt.Table)

	stmt, err = Parse("TRUNCATE TABLE users")
	require.NoError(t, err)
	require.Equal(t, "users", stmt.(*TruncateStmt).Table.Name)
}

func TestParseIndexAndView(t *testing.T) {
	stmt, err := Parse("CREATE INDEX users_city ON users (city)")
	require.NoError(t, err)
	ci := stmt.(*CreateIndexStmt)
	require.Equal(t, "users_city", ci.Name)
	require.Equal(t, "city", ci.Column)

	stmt, err = Parse("CREATE INDEX ON users (city)")
	require.NoError(t, err)
	require.Empty(t, stmt.(*CreateIndexStmt).Name)

	stmt, err = Parse("CREATE MATERIALIZED VIEW by_city AS SELECT * FROM users WHERE city IS NOT NULL PRIMARY KEY (city, id)")
	require.NoError(t, err)
	cv := stmt.(*CreateViewStmt)
	require.Equal(t, "by_city", cv.Name.Name)
	require.Equal(t, "users", cv.BaseTable.Name)
	require.Equal(t, "city IS NOT NULL", cv.WhereClause)
}
