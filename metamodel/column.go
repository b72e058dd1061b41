package metamodel

// UnknownSize marks a column whose size was not reported by the database
// or was absent from a snapshot.
const UnknownSize = -1

// ColumnMetadata describes a single column of a table
type ColumnMetadata struct {
	Name string
	Type string
	Size int
}

// NewColumnMetadata creates column metadata, mapping a nil size to UnknownSize
func NewColumnMetadata(name, columnType string, size *int) ColumnMetadata {
	col := ColumnMetadata{Name: name, Type: columnType, Size: UnknownSize}
	if size != nil {
		col.Size = *size
	}
	return col
}

// HasSize reports whether the column size is known
func (c ColumnMetadata) HasSize() bool {
	return c.Size != UnknownSize
}
