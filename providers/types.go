package providers

import "database/sql"

// Table represents a database table with its columns, indexes and foreign keys
type Table struct {
	Name        string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// Column represents a database column
type Column struct {
	Name             string
	DataType         string
	IsNullable       bool
	DefaultValue     sql.NullString
	IsPrimaryKey     bool
	CharacterLength  sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
}

// Index represents a database index
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
}

// ForeignKey represents a single-column reference to another table
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// PrimaryKey returns the primary key column names of the table
func (t Table) PrimaryKey() []string {
	var keys []string
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			keys = append(keys, col.Name)
		}
	}
	return keys
}
