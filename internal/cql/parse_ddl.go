package cql

import (
	"strings"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

func parseCreateKeyspace(rest string) (Statement, error) {
	rest, ifNotExists := cutModifier(rest, "IF NOT EXISTS")

	namePart, optionsPart, _ := value.CutKeyword(rest, "WITH")
	name, err := parseIdent(namePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid CREATE KEYSPACE: %v", err)
	}

	stmt := &CreateKeyspaceStmt{Name: name, IfNotExists: ifNotExists}
	for _, opt := range splitAnd(optionsPart) {
		key, val, found := strings.Cut(opt, "=")
		if !found {
			return nil, cqlerr.Syntaxf("invalid keyspace option %q", opt)
		}
		val = strings.TrimSpace(val)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "REPLICATION":
			stmt.Replication = val
		case "DURABLE_WRITES":
			b := strings.EqualFold(val, "true")
			stmt.DurableWrites = &b
		default:
			// Unrecognized keyspace options are tolerated, as the real
			// engine accepts and ignores many of them.
		}
	}
	return stmt, nil
}

func parseDropKeyspace(rest string) (Statement, error) {
	rest, ifExists := cutModifier(rest, "IF EXISTS")
	name, err := parseIdent(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DROP KEYSPACE: %v", err)
	}
	return &DropKeyspaceStmt{Name: name, IfExists: ifExists}, nil
}

func parseUse(rest string) (Statement, error) {
	name, err := parseIdent(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid USE: %v", err)
	}
	return &UseStmt{Name: name}, nil
}

func parseCreateTable(rest string) (Statement, error) {
	rest, ifNotExists := cutModifier(rest, "IF NOT EXISTS")

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return nil, cqlerr.Syntaxf("CREATE TABLE missing column definitions")
	}
	closing := value.Balanced(rest, open)
	if closing < 0 {
		return nil, cqlerr.Syntaxf("CREATE TABLE has unbalanced parentheses")
	}

	table, err := parseQualifiedName(rest[:open])
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid CREATE TABLE name: %v", err)
	}

	stmt := &CreateTableStmt{
		Table:       table,
		IfNotExists: ifNotExists,
		Options:     map[string]string{},
	}

	body := rest[open+1 : closing]
	body, err = extractPrimaryKey(body, stmt)
	if err != nil {
		return nil, err
	}

	var inlineKeys []string
	for _, def := range value.SplitTop(body) {
		name, typ, ok := cutColumnDef(def)
		if !ok {
			return nil, cqlerr.Syntaxf("invalid column definition %q", def)
		}
		colName, err := parseIdent(name)
		if err != nil {
			return nil, err
		}
		typ = strings.TrimSpace(typ)
		if idx := value.IndexKeyword(typ, "PRIMARY KEY"); idx >= 0 {
			inlineKeys = append(inlineKeys, colName)
			typ = strings.TrimSpace(typ[:idx] + typ[idx+len("PRIMARY KEY"):])
		}
		stmt.Columns = append(stmt.Columns, ColumnDef{Name: colName, Type: typ})
	}
	if len(stmt.PartitionKey) == 0 {
		stmt.PartitionKey = inlineKeys
	}

	if tail := strings.TrimSpace(rest[closing+1:]); tail != "" {
		tail, found := cutModifier(tail, "WITH")
		if !found {
			return nil, cqlerr.Syntaxf("unexpected trailing text in CREATE TABLE: %q", tail)
		}
		if err := parseTableOptions(tail, stmt); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// extractPrimaryKey removes a separate "PRIMARY KEY (...)" clause from the
// column body and fills the statement's key descriptors. A parenthesized
// first component is a composite partition key; the remainder is clustering.
func extractPrimaryKey(body string, stmt *CreateTableStmt) (string, error) {
	idx := value.IndexKeyword(body, "PRIMARY KEY")
	if idx < 0 {
		return body, nil
	}
	open := idx + len("PRIMARY KEY")
	for open < len(body) && (body[open] == ' ' || body[open] == '\n' || body[open] == '\t') {
		open++
	}
	if open >= len(body) || body[open] != '(' {
		// Inline "col type PRIMARY KEY" marker; handled by the column loop.
		return body, nil
	}
	closing := value.Balanced(body, open)
	if closing < 0 {
		return "", cqlerr.Syntaxf("unbalanced parentheses in PRIMARY KEY definition")
	}

	components := value.SplitTop(body[open+1 : closing])
	if len(components) > 0 {
		first := components[0]
		if strings.HasPrefix(first, "(") && strings.HasSuffix(first, ")") {
			for _, col := range value.SplitTop(first[1 : len(first)-1]) {
				name, err := parseIdent(col)
				if err != nil {
					return "", err
				}
				stmt.PartitionKey = append(stmt.PartitionKey, name)
			}
		} else {
			name, err := parseIdent(first)
			if err != nil {
				return "", err
			}
			stmt.PartitionKey = []string{name}
		}
		for _, col := range components[1:] {
			name, err := parseIdent(col)
			if err != nil {
				return "", err
			}
			stmt.ClusteringKey = append(stmt.ClusteringKey, name)
		}
	}

	remaining := strings.TrimSpace(body[:idx] + body[closing+1:])
	remaining = strings.TrimSuffix(strings.TrimSpace(remaining), ",")
	remaining = strings.TrimPrefix(strings.TrimSpace(remaining), ",")
	return remaining, nil
}

func parseTableOptions(opts string, stmt *CreateTableStmt) error {
	for _, part := range splitAnd(opts) {
		up := strings.ToUpper(part)
		if strings.HasPrefix(up, "CLUSTERING ORDER BY") {
			rest := strings.TrimSpace(part[len("CLUSTERING ORDER BY"):])
			if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
				return cqlerr.Syntaxf("invalid CLUSTERING ORDER BY clause %q", part)
			}
			for _, entry := range value.SplitTop(rest[1 : len(rest)-1]) {
				fields := strings.Fields(entry)
				order := ColumnOrder{Column: fields[0]}
				if len(fields) > 1 {
					order.Desc = strings.EqualFold(fields[1], "DESC")
				}
				stmt.ClusteringOrder = append(stmt.ClusteringOrder, order)
			}
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found {
			return cqlerr.Syntaxf("invalid table option %q", part)
		}
		stmt.Options[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return nil
}

func parseAlterTable(rest string) (Statement, error) {
	namePart, addPart, found := value.CutKeyword(rest, "ADD")
	if !found {
		return nil, cqlerr.Syntaxf("only ALTER TABLE ... ADD is supported")
	}
	table, err := parseQualifiedName(namePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid ALTER TABLE name: %v", err)
	}
	stmt := &AlterTableAddStmt{Table: table}
	for _, def := range value.SplitTop(addPart) {
		name, typ, ok := cutColumnDef(def)
		if !ok {
			return nil, cqlerr.Syntaxf("invalid column definition %q", def)
		}
		colName, err := parseIdent(name)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, ColumnDef{Name: colName, Type: strings.TrimSpace(typ)})
	}
	if len(stmt.Columns) == 0 {
		return nil, cqlerr.Syntaxf("ALTER TABLE ADD requires at least one column")
	}
	return stmt, nil
}

func parseDropTable(rest string) (Statement, error) {
	rest, ifExists := cutModifier(rest, "IF EXISTS")
	table, err := parseQualifiedName(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DROP TABLE: %v", err)
	}
	return &DropTableStmt{Table: table, IfExists: ifExists}, nil
}

func parseTruncate(rest string) (Statement, error) {
	rest, _ = cutModifier(rest, "TABLE")
	table, err := parseQualifiedName(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid TRUNCATE: %v", err)
	}
	return &TruncateStmt{Table: table}, nil
}

func parseCreateType(rest string) (Statement, error) {
	rest, ifNotExists := cutModifier(rest, "IF NOT EXISTS")

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return nil, cqlerr.Syntaxf("CREATE TYPE missing field definitions")
	}
	closing := value.Balanced(rest, open)
	if closing < 0 {
		return nil, cqlerr.Syntaxf("CREATE TYPE has unbalanced parentheses")
	}
	name, err := parseQualifiedName(rest[:open])
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid CREATE TYPE name: %v", err)
	}

	stmt := &CreateTypeStmt{Name: name, IfNotExists: ifNotExists}
	for _, def := range value.SplitTop(rest[open+1 : closing]) {
		fieldName, typ, ok := cutColumnDef(def)
		if !ok {
			return nil, cqlerr.Syntaxf("invalid field definition %q", def)
		}
		fn, err := parseIdent(fieldName)
		if err != nil {
			return nil, err
		}
		stmt.Fields = append(stmt.Fields, ColumnDef{Name: fn, Type: strings.TrimSpace(typ)})
	}
	return stmt, nil
}

func parseDropType(rest string) (Statement, error) {
	rest, ifExists := cutModifier(rest, "IF EXISTS")
	name, err := parseQualifiedName(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DROP TYPE: %v", err)
	}
	return &DropTypeStmt{Name: name, IfExists: ifExists}, nil
}

func parseCreateIndex(rest string) (Statement, error) {
	namePart, onPart, found := value.CutKeyword(rest, "ON")
	if !found {
		return nil, cqlerr.Syntaxf("CREATE INDEX missing ON clause")
	}

	stmt := &CreateIndexStmt{}
	if namePart != "" {
		name, err := parseIdent(namePart)
		if err != nil {
			return nil, cqlerr.Syntaxf("invalid index name: %v", err)
		}
		stmt.Name = name
	}

	open := strings.IndexByte(onPart, '(')
	if open < 0 {
		return nil, cqlerr.Syntaxf("CREATE INDEX missing target column")
	}
	closing := value.Balanced(onPart, open)
	if closing < 0 {
		return nil, cqlerr.Syntaxf("CREATE INDEX has unbalanced parentheses")
	}
	table, err := parseQualifiedName(onPart[:open])
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid CREATE INDEX table: %v", err)
	}
	col, err := parseIdent(onPart[open+1 : closing])
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid CREATE INDEX column: %v", err)
	}
	stmt.Table = table
	stmt.Column = col
	return stmt, nil
}

func parseDropIndex(rest string) (Statement, error) {
	rest, ifExists := cutModifier(rest, "IF EXISTS")
	name, err := parseIdent(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DROP INDEX: %v", err)
	}
	return &DropIndexStmt{Name: name, IfExists: ifExists}, nil
}

func parseCreateView(rest string) (Statement, error) {
	rest, ifNotExists := cutModifier(rest, "IF NOT EXISTS")

	namePart, selectPart, found := value.CutKeyword(rest, "AS")
	if !found {
		return nil, cqlerr.Syntaxf("CREATE MATERIALIZED VIEW missing AS SELECT")
	}
	name, err := parseQualifiedName(namePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid view name: %v", err)
	}

	_, fromPart, found := value.CutKeyword(selectPart, "FROM")
	if !found {
		return nil, cqlerr.Syntaxf("CREATE MATERIALIZED VIEW missing FROM clause")
	}

	stmt := &CreateViewStmt{Name: name, IfNotExists: ifNotExists}

	tablePart := fromPart
	if before, after, ok := value.CutKeyword(fromPart, "WHERE"); ok {
		tablePart = before
		where := after
		if idx := value.IndexKeyword(where, "PRIMARY KEY"); idx >= 0 {
			where = strings.TrimSpace(where[:idx])
		}
		stmt.WhereClause = where
	} else if idx := value.IndexKeyword(fromPart, "PRIMARY KEY"); idx >= 0 {
		tablePart = strings.TrimSpace(fromPart[:idx])
	}

	base, err := parseQualifiedName(tablePart)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid view base table: %v", err)
	}
	stmt.BaseTable = base
	return stmt, nil
}

func parseDropView(rest string) (Statement, error) {
	rest, ifExists := cutModifier(rest, "IF EXISTS")
	name, err := parseQualifiedName(rest)
	if err != nil {
		return nil, cqlerr.Syntaxf("invalid DROP MATERIALIZED VIEW: %v", err)
	}
	return &DropViewStmt{Name: name, IfExists: ifExists}, nil
}
