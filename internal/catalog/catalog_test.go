package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewStateSeedsSystemLocal(t *testing.T) {
	s := NewState(NodeInfo{RPCAddress: "10.0.0.5", Datacenter: "dc9", Rack: "r2"})

	local, err := s.Table(SystemKeyspace, "local")
	require.NoError(t, err)
	require.Len(t, local.Rows, 1)

	row := local.Rows[0].Values
	require.Equal(t, "local", row["key"])
	require.Equal(t, "10.0.0.5", row["rpc_address"])
	require.Equal(t, "dc9", row["data_center"])
	require.Equal(t, "r2", row["rack"])
}

func TestRefreshSystemSchemaReflectsCatalog(t *testing.T) {
	s := NewState(DefaultNode)
	ks := s.AddKeyspace("app", nil, true)
	ks.Tables["users"] = &Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: "int"},
			{Name: "tenant", Type: "text"},
			{Name: "name", Type: "text"},
		},
		PartitionKey:  []string{"id"},
		ClusteringKey: []string{"tenant"},
		Indexes:       []Index{{Name: "users_name_idx", Column: "name"}},
	}
	s.RefreshSystemSchema()

	tables, err := s.Table(SystemSchemaKeyspace, "tables")
	require.NoError(t, err)
	found := false
	for _, row := range tables.Rows {
		if row.Values["keyspace_name"] == "app" && row.Values["table_name"] == "users" {
			found = true
		}
	}
	require.True(t, found)

	columns, err := s.Table(SystemSchemaKeyspace, "columns")
	require.NoError(t, err)
	kinds := map[string]string{}
	for _, row := range columns.Rows {
		if row.Values["keyspace_name"] == "app" {
			kinds[row.Values["column_name"].(string)] = row.Values["kind"].(string)
		}
	}
	require.Equal(t, map[string]string{
		"id":     "partition_key",
		"tenant": "clustering",
		"name":   "regular",
	}, kinds)

	indexes, err := s.Table(SystemSchemaKeyspace, "indexes")
	require.NoError(t, err)
	require.Len(t, indexes.Rows, 1)
	require.Equal(t, "users_name_idx", indexes.Rows[0].Values["index_name"])
	require.Equal(t, "name", indexes.Rows[0].Values["target"])
}

func TestSystemSchemaTableShapes(t *testing.T) {
	s := NewState(DefaultNode)

	columnNames := func(name string) []string {
		table, err := s.Table(SystemSchemaKeyspace, name)
		require.NoError(t, err)
		names := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			names[i] = c.Name
		}
		return names
	}

	require.Equal(t, []string{"keyspace_name", "table_name", "column_name", "kind", "type"}, columnNames("columns"))
	require.Equal(t, []string{"keyspace_name", "table_name", "index_name", "target"}, columnNames("indexes"))
}

func TestRefreshSystemSchemaIsRegeneratedNotPatched(t *testing.T) {
	s := NewState(DefaultNode)
	s.AddKeyspace("a", nil, true)
	s.RefreshSystemSchema()

	keyspaces, err := s.Table(SystemSchemaKeyspace, "keyspaces")
	require.NoError(t, err)
	before := len(keyspaces.Rows)

	delete(s.Keyspaces, "a")
	s.RefreshSystemSchema()
	require.Len(t, keyspaces.Rows, before-1)
}

func TestDefaultReplicationApplied(t *testing.T) {
	s := NewState(DefaultNode)
	ks := s.AddKeyspace("demo", nil, true)
	require.Equal(t, "SimpleStrategy", ks.Replication["class"])
	require.Equal(t, "1", ks.Replication["replication_factor"])
}

func TestRowExpiryAndPurge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	table := &Table{
		Name:         "t",
		Columns:      []Column{{Name: "id", Type: "int"}},
		PartitionKey: []string{"id"},
		Rows: []*Row{
			{Values: map[string]any{"id": int64(1)}},
			{Values: map[string]any{"id": int64(2)}, ExpiresAt: now.Add(-time.Second)},
			{Values: map[string]any{"id": int64(3)}, ExpiresAt: now.Add(time.Hour)},
		},
	}

	require.Len(t, table.LiveRows(now), 2)

	table.PurgeExpired(now)
	require.Len(t, table.Rows, 2)
	require.Equal(t, int64(1), table.Rows[0].Values["id"])
	require.Equal(t, int64(3), table.Rows[1].Values["id"])
}

func TestTTLRemaining(t *testing.T) {
	now := time.Now()
	row := &Row{ExpiresAt: now.Add(90 * time.Second)}
	secs := row.TTLRemaining(now)
	require.NotNil(t, secs)
	require.Equal(t, int64(90), *secs)

	require.Nil(t, (&Row{}).TTLRemaining(now))
}

func TestResolveColumnCaseInsensitive(t *testing.T) {
	table := &Table{Name: "t", Columns: []Column{{Name: "UserName", Type: "text"}}}

	name, err := table.ResolveColumn("username")
	require.NoError(t, err)
	require.Equal(t, "UserName", name)

	_, err = table.ResolveColumn("missing")
	require.Error(t, err)
}

func TestFindByKeyIgnoresExpired(t *testing.T) {
	now := time.Now()
	table := &Table{
		Name:         "t",
		Columns:      []Column{{Name: "id", Type: "int"}},
		PartitionKey: []string{"id"},
		Rows: []*Row{
			{Values: map[string]any{"id": int64(7)}, ExpiresAt: now.Add(-time.Minute)},
		},
	}
	require.Nil(t, table.FindByKey([]string{"id"}, map[string]any{"id": int64(7)}, now))
}

func TestResetDiscardsUserKeyspaces(t *testing.T) {
	s := NewState(DefaultNode)
	s.AddKeyspace("scratch", nil, true)
	s.Reset()

	_, ok := s.Keyspace("scratch")
	require.False(t, ok)
	_, ok = s.Keyspace(SystemKeyspace)
	require.True(t, ok)
	_, ok = s.Keyspace(SystemSchemaKeyspace)
	require.True(t, ok)
}
