package catalog

import (
	"sort"
	"time"

	"github.com/tuannm99/miniscylla/internal/value"
)

// System keyspace names. Both are rebuilt from live state after every DDL
// operation, never mutated in place by user statements.
const (
	SystemKeyspace       = "system"
	SystemSchemaKeyspace = "system_schema"
)

// IsSystemKeyspace reports whether the name refers to a protected keyspace.
func IsSystemKeyspace(name string) bool {
	return name == SystemKeyspace || name == SystemSchemaKeyspace
}

func valuesEqual(a, b any) bool {
	return value.Equal(a, b)
}

func (s *State) seedSystem() {
	ks := s.AddKeyspace(SystemKeyspace, map[string]string{"class": "LocalStrategy"}, true)
	local := &Table{
		Name: "local",
		Columns: []Column{
			{Name: "key", Type: "text"},
			{Name: "cluster_name", Type: "text"},
			{Name: "data_center", Type: "text"},
			{Name: "rack", Type: "text"},
			{Name: "rpc_address", Type: "inet"},
			{Name: "release_version", Type: "text"},
			{Name: "partitioner", Type: "text"},
		},
		PartitionKey: []string{"key"},
	}
	local.Rows = []*Row{{
		Values: map[string]any{
			"key":             "local",
			"cluster_name":    "miniscylla",
			"data_center":     s.node.Datacenter,
			"rack":            s.node.Rack,
			"rpc_address":     s.node.RPCAddress,
			"release_version": "3.0.8",
			"partitioner":     "org.apache.cassandra.dht.Murmur3Partitioner",
		},
	}}
	ks.Tables["local"] = local
}

func (s *State) seedSystemSchema() {
	ks := s.AddKeyspace(SystemSchemaKeyspace, map[string]string{"class": "LocalStrategy"}, true)
	ks.Tables["keyspaces"] = &Table{
		Name: "keyspaces",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "durable_writes", Type: "boolean"},
			{Name: "replication", Type: "map<text, text>"},
		},
		PartitionKey: []string{"keyspace_name"},
	}
	ks.Tables["tables"] = &Table{
		Name: "tables",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "table_name", Type: "text"},
		},
		PartitionKey:  []string{"keyspace_name"},
		ClusteringKey: []string{"table_name"},
	}
	ks.Tables["columns"] = &Table{
		Name: "columns",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "table_name", Type: "text"},
			{Name: "column_name", Type: "text"},
			{Name: "kind", Type: "text"},
			{Name: "type", Type: "text"},
		},
		PartitionKey:  []string{"keyspace_name"},
		ClusteringKey: []string{"table_name", "column_name"},
	}
	ks.Tables["indexes"] = &Table{
		Name: "indexes",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "table_name", Type: "text"},
			{Name: "index_name", Type: "text"},
			{Name: "target", Type: "text"},
		},
		PartitionKey:  []string{"keyspace_name"},
		ClusteringKey: []string{"table_name", "index_name"},
	}
	ks.Tables["views"] = &Table{
		Name: "views",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "view_name", Type: "text"},
			{Name: "base_table_name", Type: "text"},
			{Name: "where_clause", Type: "text"},
		},
		PartitionKey:  []string{"keyspace_name"},
		ClusteringKey: []string{"view_name"},
	}
	ks.Tables["types"] = &Table{
		Name: "types",
		Columns: []Column{
			{Name: "keyspace_name", Type: "text"},
			{Name: "type_name", Type: "text"},
			{Name: "field_names", Type: "list<text>"},
			{Name: "field_types", Type: "list<text>"},
		},
		PartitionKey:  []string{"keyspace_name"},
		ClusteringKey: []string{"type_name"},
	}
}

// RefreshSystemSchema regenerates every system_schema table from the live
// catalog. Iteration is over sorted names so the reflected row order is
// deterministic across runs.
func (s *State) RefreshSystemSchema() {
	schema, ok := s.Keyspaces[SystemSchemaKeyspace]
	if !ok {
		return
	}

	var ksRows, tableRows, columnRows, indexRows, viewRows, typeRows []*Row

	for _, ksName := range s.KeyspaceNames() {
		ks := s.Keyspaces[ksName]

		replication := make(map[string]any, len(ks.Replication))
		for k, v := range ks.Replication {
			replication[k] = v
		}
		ksRows = append(ksRows, &Row{Values: map[string]any{
			"keyspace_name":  ks.Name,
			"durable_writes": ks.DurableWrites,
			"replication":    replication,
		}})

		for _, tableName := range sortedKeys(ks.Tables) {
			table := ks.Tables[tableName]
			tableRows = append(tableRows, &Row{Values: map[string]any{
				"keyspace_name": ks.Name,
				"table_name":    table.Name,
			}})
			columnRows = append(columnRows, columnSchemaRows(ks.Name, table)...)

			for _, idx := range table.Indexes {
				indexRows = append(indexRows, &Row{Values: map[string]any{
					"keyspace_name": ks.Name,
					"table_name":    table.Name,
					"index_name":    idx.Name,
					"target":        idx.Column,
				}})
			}
		}

		for _, viewName := range sortedKeys(ks.Views) {
			view := ks.Views[viewName]
			viewRows = append(viewRows, &Row{Values: map[string]any{
				"keyspace_name":   ks.Name,
				"view_name":       view.Name,
				"base_table_name": view.BaseTable,
				"where_clause":    view.WhereClause,
			}})
		}

		for _, typeName := range sortedKeys(ks.Types) {
			ut := ks.Types[typeName]
			names := make([]any, 0, len(ut.Fields))
			types := make([]any, 0, len(ut.Fields))
			for _, f := range ut.Fields {
				names = append(names, f.Name)
				types = append(types, f.Type)
			}
			typeRows = append(typeRows, &Row{Values: map[string]any{
				"keyspace_name": ks.Name,
				"type_name":     ut.Name,
				"field_names":   names,
				"field_types":   types,
			}})
		}
	}

	schema.Tables["keyspaces"].Rows = ksRows
	schema.Tables["tables"].Rows = tableRows
	schema.Tables["columns"].Rows = columnRows
	schema.Tables["indexes"].Rows = indexRows
	schema.Tables["views"].Rows = viewRows
	schema.Tables["types"].Rows = typeRows
}

// columnSchemaRows reflects one table's columns, classifying each as
// partition_key, clustering, or regular.
func columnSchemaRows(ksName string, table *Table) []*Row {
	kind := func(col string) string {
		for _, pk := range table.PartitionKey {
			if pk == col {
				return "partition_key"
			}
		}
		for _, ck := range table.ClusteringKey {
			if ck == col {
				return "clustering"
			}
		}
		return "regular"
	}

	rows := make([]*Row, 0, len(table.Columns))
	for _, c := range table.Columns {
		rows = append(rows, &Row{Values: map[string]any{
			"keyspace_name": ksName,
			"table_name":    table.Name,
			"column_name":   c.Name,
			"kind":          kind(c.Name),
			"type":          c.Type,
		}})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PurgeExpired removes expired rows from every user table. System tables
// never carry TTLs but are included harmlessly.
func (s *State) PurgeExpired(now time.Time) {
	for _, ks := range s.Keyspaces {
		for _, table := range ks.Tables {
			table.PurgeExpired(now)
		}
	}
}
