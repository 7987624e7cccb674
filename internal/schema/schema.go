// Package schema declares the per-entity table descriptors and synthesizes
// CREATE TABLE statements from them. Constraint names are derived
// deterministically from the table and column names ("<table>_pk",
// "<table>_<column>_fk", "<table>_<column>_unique") so the layout is
// compatible with existing database files.
package schema

import (
	"fmt"
	"strings"
)

// ColumnType is a SQLite storage class.
type ColumnType string

const (
	Integer ColumnType = "INTEGER"
	Text    ColumnType = "TEXT"
	Blob    ColumnType = "BLOB"
	Real    ColumnType = "REAL"
	Numeric ColumnType = "NUMERIC"
)

// Column describes one column of a table.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
	Unique     bool
	// ForeignKeyTable, when set, makes this column reference another
	// table. ForeignKeyColumn optionally names the referenced column;
	// when empty the reference targets the table's primary key.
	ForeignKeyTable  string
	ForeignKeyColumn string
}

// Table describes one entity table: name plus ordered columns. Column
// order is load-bearing; inserts are positional against it.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in declared order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a declared column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// PrimaryKeyColumn returns the single explicit primary-key column, if any.
func (t Table) PrimaryKeyColumn() (string, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c.Name, true
		}
	}
	return "", false
}

// ForeignKeyColumns returns the names of all foreign-key columns in
// declared order. When no explicit primary key exists these form the
// synthesized composite primary key.
func (t Table) ForeignKeyColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.ForeignKeyTable != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// CreateStatement synthesizes the CREATE TABLE statement for the table.
func (t Table) CreateStatement() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", t.Name)

	hasPrimaryKey := false
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "\n\t%s %s", c.Name, c.Type)
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}

		switch {
		case c.PrimaryKey:
			fmt.Fprintf(&b, " CONSTRAINT %s_pk PRIMARY KEY", t.Name)
			hasPrimaryKey = true
		case c.ForeignKeyTable != "":
			fmt.Fprintf(&b, " CONSTRAINT %s_%s_", t.Name, c.Name)
			if c.ForeignKeyColumn != "" {
				fmt.Fprintf(&b, "%s_", c.ForeignKeyColumn)
			}
			fmt.Fprintf(&b, "fk REFERENCES %s", c.ForeignKeyTable)
			if c.ForeignKeyColumn != "" {
				fmt.Fprintf(&b, " (%s)", c.ForeignKeyColumn)
			}
		case c.Unique:
			fmt.Fprintf(&b, " CONSTRAINT %s_%s_unique UNIQUE", t.Name, c.Name)
		}
	}

	// Without an explicit primary key, the foreign-key columns form a
	// composite one.
	if fks := t.ForeignKeyColumns(); !hasPrimaryKey && len(fks) > 0 {
		fmt.Fprintf(&b, ",\n\tCONSTRAINT %s_pk PRIMARY KEY (%s)", t.Name, strings.Join(fks, ","))
	}

	b.WriteString("\n)")
	return b.String()
}
