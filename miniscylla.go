// Package miniscylla is an in-memory emulation of the ScyllaDB/Cassandra
// CQL query surface for tests and development. A Session accepts CQL
// statement text, keeps all keyspace/table/row state in memory, and returns
// named-column result sets with the semantics of the real engine:
// lightweight transactions, TTL expiry, last-write-wins timestamps, and the
// full SELECT pipeline.
package miniscylla

import (
	"log/slog"
	"sort"
	"time"

	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/engine"
)

// Result is a named-column row container. Column order matches the SELECT
// item order.
type Result = engine.Result

// Session owns one emulated cluster state. Statements execute synchronously
// and to completion; a Session must not be shared across goroutines.
type Session struct {
	state *catalog.State
	exec  *engine.Executor
	now   func() time.Time
}

// Option configures a Session at Open time.
type Option func(*options)

type options struct {
	node     catalog.NodeInfo
	keyspace string
	log      *slog.Logger
	now      func() time.Time
}

// WithNode sets the identity mirrored into the system.local row.
func WithNode(rpcAddress, datacenter, rack string) Option {
	return func(o *options) {
		o.node = catalog.NodeInfo{RPCAddress: rpcAddress, Datacenter: datacenter, Rack: rack}
	}
}

// WithKeyspace pre-selects the session keyspace, as if USE had run. The
// keyspace does not need to exist yet.
func WithKeyspace(name string) Option {
	return func(o *options) { o.keyspace = name }
}

// WithLogger routes engine logging; the default discards it.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces the wall clock, pinning write timestamps and TTL
// expiry for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open creates a Session with a pristine state: the system and
// system_schema keyspaces seeded and nothing else.
func Open(opts ...Option) *Session {
	o := options{node: catalog.DefaultNode, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	state := catalog.NewState(o.node)
	exec := engine.New(state, o.log, o.now)
	exec.Keyspace = o.keyspace
	return &Session{state: state, exec: exec, now: o.now}
}

// Execute runs one CQL statement. Positional parameters bind to "?"
// placeholders left to right.
func (s *Session) Execute(stmt string, params ...any) (*Result, error) {
	return s.exec.Execute(stmt, params, nil)
}

// ExecuteNamed runs one CQL statement binding ":name" placeholders from the
// supplied map.
func (s *Session) ExecuteNamed(stmt string, params map[string]any) (*Result, error) {
	return s.exec.Execute(stmt, nil, params)
}

// Keyspace returns the current session keyspace, empty until USE runs.
func (s *Session) Keyspace() string {
	return s.exec.Keyspace
}

// Reset discards every user keyspace and restores the pristine initial
// state in one step.
func (s *Session) Reset() {
	s.state.Reset()
	s.exec.Keyspace = ""
}

// Keyspaces returns all keyspace names, system keyspaces included, sorted.
func (s *Session) Keyspaces() []string {
	return s.state.KeyspaceNames()
}

// Tables returns the table names of a keyspace, sorted, or nil when the
// keyspace does not exist.
func (s *Session) Tables(keyspace string) []string {
	ks, ok := s.state.Keyspace(keyspace)
	if !ok {
		return nil
	}
	var names []string
	for name := range ks.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableRows returns a snapshot of a table's live rows as column-value maps,
// in insertion order.
func (s *Session) TableRows(keyspace, table string) []map[string]any {
	t, err := s.state.Table(keyspace, table)
	if err != nil {
		return nil
	}
	var out []map[string]any
	for _, row := range t.LiveRows(s.now()) {
		snapshot := make(map[string]any, len(row.Values))
		for k, v := range row.Values {
			snapshot[k] = v
		}
		out = append(out, snapshot)
	}
	return out
}
