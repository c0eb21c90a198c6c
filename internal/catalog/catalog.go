// Package catalog owns the in-memory keyspace/table/row state and the
// reflective system tables projected from it.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

// Row is a stored table row: a typed-value map plus first-class write
// metadata. Row identity is the tuple of its primary-key column values.
type Row struct {
	Values map[string]any

	// WriteTS is the row's effective write timestamp in microseconds,
	// used for last-write-wins resolution.
	WriteTS int64

	// ExpiresAt is the TTL-derived expiry instant; zero means the row
	// never expires.
	ExpiresAt time.Time
}

// Expired reports whether the row is past its expiry instant.
func (r *Row) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// TTLRemaining returns the whole seconds left before expiry, or nil when the
// row carries no TTL.
func (r *Row) TTLRemaining(now time.Time) *int64 {
	if r.ExpiresAt.IsZero() {
		return nil
	}
	secs := int64(r.ExpiresAt.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &secs
}

// Clone returns a deep-enough copy for reporting conflicting rows out of
// LWT results without aliasing live state.
func (r *Row) Clone() *Row {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return &Row{Values: values, WriteTS: r.WriteTS, ExpiresAt: r.ExpiresAt}
}

// Column pairs a column name with its declared CQL type text.
type Column struct {
	Name string
	Type string
}

// Index is a secondary index over a single column.
type Index struct {
	Name   string
	Column string
}

// View is a materialized-view descriptor. Views are catalog metadata only;
// they are not separately populated.
type View struct {
	Name        string
	BaseTable   string
	WhereClause string
}

// UserType is a user-defined type definition.
type UserType struct {
	Name   string
	Fields []Column
}

// FieldTypes returns the field name to declared type mapping.
func (u *UserType) FieldTypes() map[string]string {
	out := make(map[string]string, len(u.Fields))
	for _, f := range u.Fields {
		out[f.Name] = f.Type
	}
	return out
}

// Table holds an ordered schema, primary-key structure, and the stored rows
// in insertion order.
type Table struct {
	Name            string
	Columns         []Column
	PartitionKey    []string
	ClusteringKey   []string
	ClusteringOrder map[string]string // column -> ASC|DESC
	Options         map[string]string
	Rows            []*Row
	Indexes         []Index
}

// PrimaryKey returns the partition-key columns followed by the clustering
// columns.
func (t *Table) PrimaryKey() []string {
	out := make([]string, 0, len(t.PartitionKey)+len(t.ClusteringKey))
	out = append(out, t.PartitionKey...)
	return append(out, t.ClusteringKey...)
}

// ColumnType returns the declared type of a column, matched
// case-insensitively.
func (t *Table) ColumnType(name string) (string, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c.Type, true
		}
	}
	return "", false
}

// ResolveColumn maps a case-insensitive column reference to the declared
// column name.
func (t *Table) ResolveColumn(name string) (string, error) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c.Name, nil
		}
	}
	return "", cqlerr.Invalidf("column %q not found in table %q", name, t.Name)
}

// HasColumn reports whether the schema declares the column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnType(name)
	return ok
}

// AddColumn appends a column to the schema.
func (t *Table) AddColumn(name, cqlType string) error {
	if t.HasColumn(name) {
		return cqlerr.Invalidf("column %q already exists in table %q", name, t.Name)
	}
	t.Columns = append(t.Columns, Column{Name: name, Type: cqlType})
	return nil
}

// PurgeExpired physically removes rows past their expiry instant.
func (t *Table) PurgeExpired(now time.Time) {
	live := t.Rows[:0]
	for _, row := range t.Rows {
		if !row.Expired(now) {
			live = append(live, row)
		}
	}
	t.Rows = live
}

// LiveRows returns the rows not yet expired, in insertion order.
func (t *Table) LiveRows(now time.Time) []*Row {
	var out []*Row
	for _, row := range t.Rows {
		if !row.Expired(now) {
			out = append(out, row)
		}
	}
	return out
}

// FindByKey returns the live row whose values match key on every listed
// column, or nil.
func (t *Table) FindByKey(keyCols []string, key map[string]any, now time.Time) *Row {
	if len(keyCols) == 0 {
		return nil
	}
	for _, row := range t.Rows {
		if row.Expired(now) {
			continue
		}
		match := true
		for _, col := range keyCols {
			if !valuesEqual(row.Values[col], key[col]) {
				match = false
				break
			}
		}
		if match {
			return row
		}
	}
	return nil
}

// Keyspace groups tables, user-defined types, and view descriptors under a
// replication descriptor.
type Keyspace struct {
	Name          string
	Tables        map[string]*Table
	Types         map[string]*UserType
	Views         map[string]*View
	Replication   map[string]string
	DurableWrites bool
}

func newKeyspace(name string, replication map[string]string, durableWrites bool) *Keyspace {
	if len(replication) == 0 {
		replication = defaultReplication()
	}
	return &Keyspace{
		Name:          name,
		Tables:        map[string]*Table{},
		Types:         map[string]*UserType{},
		Views:         map[string]*View{},
		Replication:   replication,
		DurableWrites: durableWrites,
	}
}

func defaultReplication() map[string]string {
	return map[string]string{
		"class":              "SimpleStrategy",
		"replication_factor": "1",
	}
}

// NodeInfo is the identity mirrored into the system.local row.
type NodeInfo struct {
	RPCAddress string
	Datacenter string
	Rack       string
}

// DefaultNode is the node identity used when none is configured.
var DefaultNode = NodeInfo{
	RPCAddress: "127.0.0.1",
	Datacenter: "datacenter1",
	Rack:       "rack1",
}

// State is the root of all emulated cluster state. It is exclusively owned
// by one session context; there is no locking because execution is
// single-threaded by design.
type State struct {
	Keyspaces map[string]*Keyspace
	node      NodeInfo
}

// NewState seeds the system and system_schema keyspaces and regenerates the
// reflective schema tables.
func NewState(node NodeInfo) *State {
	s := &State{node: node}
	s.Reset()
	return s
}

// Reset restores the pristine initial state. All user keyspaces are
// discarded in one step.
func (s *State) Reset() {
	s.Keyspaces = map[string]*Keyspace{}
	s.seedSystem()
	s.seedSystemSchema()
	s.RefreshSystemSchema()
}

// Keyspace looks up a keyspace by exact name.
func (s *State) Keyspace(name string) (*Keyspace, bool) {
	ks, ok := s.Keyspaces[name]
	return ks, ok
}

// AddKeyspace registers a new keyspace.
func (s *State) AddKeyspace(name string, replication map[string]string, durableWrites bool) *Keyspace {
	ks := newKeyspace(name, replication, durableWrites)
	s.Keyspaces[name] = ks
	return ks
}

// Table resolves keyspace and table names to the live table.
func (s *State) Table(keyspace, table string) (*Table, error) {
	ks, ok := s.Keyspaces[keyspace]
	if !ok {
		return nil, cqlerr.Invalidf("keyspace %q does not exist", keyspace)
	}
	t, ok := ks.Tables[table]
	if !ok {
		return nil, cqlerr.Invalidf("table %q does not exist in keyspace %q", table, keyspace)
	}
	return t, nil
}

// KeyspaceNames returns all keyspace names in sorted order.
func (s *State) KeyspaceNames() []string {
	names := make([]string, 0, len(s.Keyspaces))
	for name := range s.Keyspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
