package engine

import (
	"fmt"
	"strings"

	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cql"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

func (e *Executor) execCreateKeyspace(st *cql.CreateKeyspaceStmt) (*Result, error) {
	if _, exists := e.State.Keyspace(st.Name); exists {
		if st.IfNotExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("keyspace %q already exists", st.Name)
	}

	replication, ok := value.ParseStringMap(st.Replication)
	if !ok && st.Replication != "" {
		// Unparsable descriptors fall back to the default strategy.
		e.log.Warn("engine: ignoring unparsable replication descriptor", "keyspace", st.Name)
		replication = nil
	}
	durable := true
	if st.DurableWrites != nil {
		durable = *st.DurableWrites
	}

	e.State.AddKeyspace(st.Name, replication, durable)
	e.State.RefreshSystemSchema()
	e.log.Info("engine: created keyspace", "keyspace", st.Name)
	return emptyResult(), nil
}

func (e *Executor) execDropKeyspace(st *cql.DropKeyspaceStmt) (*Result, error) {
	if catalog.IsSystemKeyspace(st.Name) {
		return nil, cqlerr.Invalidf("cannot drop system keyspace %q", st.Name)
	}
	if _, exists := e.State.Keyspace(st.Name); !exists {
		if st.IfExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("keyspace %q does not exist", st.Name)
	}
	delete(e.State.Keyspaces, st.Name)
	if e.Keyspace == st.Name {
		e.Keyspace = ""
	}
	e.State.RefreshSystemSchema()
	e.log.Info("engine: dropped keyspace", "keyspace", st.Name)
	return emptyResult(), nil
}

func (e *Executor) execUse(st *cql.UseStmt) (*Result, error) {
	if _, exists := e.State.Keyspace(st.Name); !exists {
		return nil, cqlerr.Invalidf("keyspace %q does not exist", st.Name)
	}
	e.Keyspace = st.Name
	return emptyResult(), nil
}

func (e *Executor) execCreateTable(st *cql.CreateTableStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Table.Keyspace)
	if err != nil {
		return nil, err
	}
	ks, exists := e.State.Keyspace(ksName)
	if !exists {
		return nil, cqlerr.Invalidf("keyspace %q does not exist", ksName)
	}
	if _, exists := ks.Tables[st.Table.Name]; exists {
		if st.IfNotExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("table %q already exists in keyspace %q", st.Table.Name, ksName)
	}
	if len(st.PartitionKey) == 0 {
		return nil, cqlerr.Invalidf("table %q has no primary key", st.Table.Name)
	}

	table := &catalog.Table{
		Name:            st.Table.Name,
		PartitionKey:    st.PartitionKey,
		ClusteringKey:   st.ClusteringKey,
		ClusteringOrder: map[string]string{},
		Options:         st.Options,
	}
	for _, col := range st.Columns {
		if err := table.AddColumn(col.Name, col.Type); err != nil {
			return nil, err
		}
	}
	for _, pk := range table.PrimaryKey() {
		if !table.HasColumn(pk) {
			return nil, cqlerr.Invalidf("primary key column %q is not declared in table %q", pk, st.Table.Name)
		}
	}
	for _, co := range st.ClusteringOrder {
		dir := "ASC"
		if co.Desc {
			dir = "DESC"
		}
		table.ClusteringOrder[co.Column] = dir
	}

	ks.Tables[st.Table.Name] = table
	e.State.RefreshSystemSchema()
	e.log.Info("engine: created table", "keyspace", ksName, "table", st.Table.Name)
	return emptyResult(), nil
}

func (e *Executor) execAlterTableAdd(st *cql.AlterTableAddStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Table.Keyspace)
	if err != nil {
		return nil, err
	}
	table, err := e.State.Table(ksName, st.Table.Name)
	if err != nil {
		// Altering an unknown target is a statement-shape failure.
		return nil, cqlerr.Syntaxf("cannot alter unknown table %q", st.Table.String())
	}
	for _, col := range st.Columns {
		if err := table.AddColumn(col.Name, col.Type); err != nil {
			return nil, err
		}
	}
	e.State.RefreshSystemSchema()
	e.log.Info("engine: altered table", "keyspace", ksName, "table", st.Table.Name, "added", len(st.Columns))
	return emptyResult(), nil
}

func (e *Executor) execDropTable(st *cql.DropTableStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Table.Keyspace)
	if err != nil {
		return nil, err
	}
	if catalog.IsSystemKeyspace(ksName) {
		return nil, cqlerr.Invalidf("cannot drop table from system keyspace %q", ksName)
	}
	ks, exists := e.State.Keyspace(ksName)
	if !exists {
		if st.IfExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("keyspace %q does not exist", ksName)
	}
	if _, exists := ks.Tables[st.Table.Name]; !exists {
		if st.IfExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("table %q does not exist in keyspace %q", st.Table.Name, ksName)
	}
	delete(ks.Tables, st.Table.Name)
	e.State.RefreshSystemSchema()
	e.log.Info("engine: dropped table", "keyspace", ksName, "table", st.Table.Name)
	return emptyResult(), nil
}

func (e *Executor) execTruncate(st *cql.TruncateStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Table.Keyspace)
	if err != nil {
		return nil, err
	}
	if catalog.IsSystemKeyspace(ksName) {
		return nil, cqlerr.Invalidf("cannot truncate table in system keyspace %q", ksName)
	}
	table, err := e.State.Table(ksName, st.Table.Name)
	if err != nil {
		return nil, err
	}
	table.Rows = nil
	return emptyResult(), nil
}

func (e *Executor) execCreateType(st *cql.CreateTypeStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Name.Keyspace)
	if err != nil {
		return nil, err
	}
	ks, exists := e.State.Keyspace(ksName)
	if !exists {
		return nil, cqlerr.Invalidf("keyspace %q does not exist", ksName)
	}
	if _, exists := ks.Types[st.Name.Name]; exists {
		if st.IfNotExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("type %q already exists in keyspace %q", st.Name.Name, ksName)
	}

	ut := &catalog.UserType{Name: st.Name.Name}
	for _, f := range st.Fields {
		ut.Fields = append(ut.Fields, catalog.Column{Name: f.Name, Type: f.Type})
	}
	ks.Types[st.Name.Name] = ut
	e.State.RefreshSystemSchema()
	return emptyResult(), nil
}

func (e *Executor) execDropType(st *cql.DropTypeStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Name.Keyspace)
	if err != nil {
		return nil, err
	}
	ks, exists := e.State.Keyspace(ksName)
	if !exists || ks.Types[st.Name.Name] == nil {
		if st.IfExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("type %q does not exist in keyspace %q", st.Name.Name, ksName)
	}
	delete(ks.Types, st.Name.Name)
	e.State.RefreshSystemSchema()
	return emptyResult(), nil
}

func (e *Executor) execCreateIndex(st *cql.CreateIndexStmt) (*Result, error) {
	_, table, err := e.resolveTable(st.Table)
	if err != nil {
		return nil, err
	}
	col, err := table.ResolveColumn(st.Column)
	if err != nil {
		return nil, err
	}
	name := st.Name
	if name == "" {
		name = fmt.Sprintf("%s_%s_idx", table.Name, strings.ToLower(col))
	}
	for _, idx := range table.Indexes {
		if idx.Name == name {
			return nil, cqlerr.Invalidf("index %q already exists on table %q", name, table.Name)
		}
	}
	table.Indexes = append(table.Indexes, catalog.Index{Name: name, Column: col})
	e.State.RefreshSystemSchema()
	e.log.Info("engine: created index", "index", name, "table", table.Name, "column", col)
	return emptyResult(), nil
}

// execDropIndex searches every user keyspace: index names are created
// unqualified, so the owning keyspace is not part of the statement.
func (e *Executor) execDropIndex(st *cql.DropIndexStmt) (*Result, error) {
	for _, ksName := range e.State.KeyspaceNames() {
		if catalog.IsSystemKeyspace(ksName) {
			continue
		}
		ks := e.State.Keyspaces[ksName]
		for _, table := range ks.Tables {
			for i, idx := range table.Indexes {
				if idx.Name == st.Name {
					table.Indexes = append(table.Indexes[:i], table.Indexes[i+1:]...)
					e.State.RefreshSystemSchema()
					return emptyResult(), nil
				}
			}
		}
	}
	if st.IfExists {
		return emptyResult(), nil
	}
	return nil, cqlerr.Invalidf("index %q does not exist", st.Name)
}

func (e *Executor) execCreateView(st *cql.CreateViewStmt) (*Result, error) {
	ks, baseTable, err := e.resolveTable(st.BaseTable)
	if err != nil {
		return nil, err
	}
	if _, exists := ks.Views[st.Name.Name]; exists {
		if st.IfNotExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("materialized view %q already exists in keyspace %q", st.Name.Name, ks.Name)
	}
	ks.Views[st.Name.Name] = &catalog.View{
		Name:        st.Name.Name,
		BaseTable:   baseTable.Name,
		WhereClause: st.WhereClause,
	}
	e.State.RefreshSystemSchema()
	return emptyResult(), nil
}

func (e *Executor) execDropView(st *cql.DropViewStmt) (*Result, error) {
	ksName, err := e.resolveKeyspace(st.Name.Keyspace)
	if err != nil {
		return nil, err
	}
	ks, exists := e.State.Keyspace(ksName)
	if !exists || ks.Views[st.Name.Name] == nil {
		if st.IfExists {
			return emptyResult(), nil
		}
		return nil, cqlerr.Invalidf("materialized view %q does not exist in keyspace %q", st.Name.Name, ksName)
	}
	delete(ks.Views, st.Name.Name)
	e.State.RefreshSystemSchema()
	return emptyResult(), nil
}
