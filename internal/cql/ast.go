// Package cql classifies raw CQL statement text into a tagged-variant AST.
// Classification is structural (keyword plus clause shape); semantic checks
// against the catalog happen in the engine.
package cql

// Statement is the root interface for all CQL statements.
type Statement interface {
	stmtNode()
}

// QualifiedName is a table/type/view name with an optional keyspace prefix.
type QualifiedName struct {
	Keyspace string // empty when the session keyspace applies
	Name     string
}

func (q QualifiedName) String() string {
	if q.Keyspace == "" {
		return q.Name
	}
	return q.Keyspace + "." + q.Name
}

// ColumnDef pairs a column (or UDT field) name with its declared CQL type.
type ColumnDef struct {
	Name string
	Type string
}

// ----- DDL -----

type CreateKeyspaceStmt struct {
	Name          string
	IfNotExists   bool
	Replication   string // raw {...} literal, may be empty
	DurableWrites *bool
}

func (*CreateKeyspaceStmt) stmtNode() {}

type DropKeyspaceStmt struct {
	Name     string
	IfExists bool
}

func (*DropKeyspaceStmt) stmtNode() {}

type UseStmt struct {
	Name string
}

func (*UseStmt) stmtNode() {}

type CreateTableStmt struct {
	Table           QualifiedName
	IfNotExists     bool
	Columns         []ColumnDef
	PartitionKey    []string
	ClusteringKey   []string
	ClusteringOrder []ColumnOrder
	Options         map[string]string
}

func (*CreateTableStmt) stmtNode() {}

// ColumnOrder records the declared read-time collation of a clustering column.
type ColumnOrder struct {
	Column string
	Desc   bool
}

type AlterTableAddStmt struct {
	Table   QualifiedName
	Columns []ColumnDef
}

func (*AlterTableAddStmt) stmtNode() {}

type DropTableStmt struct {
	Table    QualifiedName
	IfExists bool
}

func (*DropTableStmt) stmtNode() {}

type TruncateStmt struct {
	Table QualifiedName
}

func (*TruncateStmt) stmtNode() {}

type CreateTypeStmt struct {
	Name        QualifiedName
	IfNotExists bool
	Fields      []ColumnDef
}

func (*CreateTypeStmt) stmtNode() {}

type DropTypeStmt struct {
	Name     QualifiedName
	IfExists bool
}

func (*DropTypeStmt) stmtNode() {}

type CreateIndexStmt struct {
	Name   string // empty means derive from table and column
	Table  QualifiedName
	Column string
}

func (*CreateIndexStmt) stmtNode() {}

type DropIndexStmt struct {
	Name     string
	IfExists bool
}

func (*DropIndexStmt) stmtNode() {}

type CreateViewStmt struct {
	Name        QualifiedName
	IfNotExists bool
	BaseTable   QualifiedName
	WhereClause string // raw predicate text, informational only
}

func (*CreateViewStmt) stmtNode() {}

type DropViewStmt struct {
	Name     QualifiedName
	IfExists bool
}

func (*DropViewStmt) stmtNode() {}

// ----- DML -----

// UsingClause carries USING TTL/TIMESTAMP options. Nil fields mean the
// option was not supplied.
type UsingClause struct {
	TTL       *int64 // seconds
	Timestamp *int64 // microseconds
}

// LWTKind tags the conditional-apply clause of a mutation.
type LWTKind int

const (
	LWTNone LWTKind = iota
	LWTIfNotExists
	LWTIfExists
	LWTConditions
)

// LWTClause is the IF [NOT] EXISTS / IF <conditions> clause of a mutation.
type LWTClause struct {
	Kind       LWTKind
	Conditions []Condition
}

// Condition is a single comparison or membership predicate. Value(s) hold
// raw literal text; casting by column type happens in the engine.
type Condition struct {
	Column string
	Op     string // =, !=, <, <=, >, >=, IN
	Value  string
	Values []string // IN operand list
}

// Assignment is one SET clause entry. CounterDelta is set for
// self-referential arithmetic (col = col + n / col = col - n).
type Assignment struct {
	Column       string
	Value        string
	CounterDelta *int64
}

type InsertStmt struct {
	Table   QualifiedName
	Columns []string
	Values  []string // raw literal text, bracket-aware split
	Using   UsingClause
	Cond    LWTClause
}

func (*InsertStmt) stmtNode() {}

type UpdateStmt struct {
	Table       QualifiedName
	Using       UsingClause
	Assignments []Assignment
	Where       []Condition
	Cond        LWTClause
}

func (*UpdateStmt) stmtNode() {}

type DeleteStmt struct {
	Table    QualifiedName
	Where    []Condition
	HasWhere bool
	Cond     LWTClause
}

func (*DeleteStmt) stmtNode() {}

type BatchStmt struct {
	Statements []string // raw inner statements, replayed by the dispatcher
}

func (*BatchStmt) stmtNode() {}

// ----- SELECT -----

// ItemKind tags a SELECT item variant.
type ItemKind int

const (
	ItemWildcard ItemKind = iota
	ItemColumn
	ItemAggregate
	ItemMetaFunc // per-row WRITETIME/TTL probe
)

// SelectItem is one entry of the SELECT projection list.
type SelectItem struct {
	Kind     ItemKind
	Name     string // column name (ItemColumn)
	Alias    string
	Func     string // count/sum/min/max/avg or writetime/ttl
	Arg      string // aggregate or probe argument; "*" or "1" for row counts
	Distinct bool   // COUNT(DISTINCT col)
}

// HavingCondition compares a per-group aggregate against a literal.
type HavingCondition struct {
	Func     string
	Arg      string
	Distinct bool
	Op       string
	Value    string // raw literal text
}

// OrderBy sorts the projected rows by a single column.
type OrderBy struct {
	Column string
	Desc   bool
}

type SelectStmt struct {
	Table          QualifiedName
	Items          []SelectItem
	Distinct       bool
	Where          []Condition
	GroupBy        []string
	Having         []HavingCondition
	OrderBy        *OrderBy
	Limit          *int
	AllowFiltering bool
}

func (*SelectStmt) stmtNode() {}
