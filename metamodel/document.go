package metamodel

// Document is the portable snapshot of a Registry.
type Document []ModelRecord

// ModelRecord is one descriptor in a Document.
type ModelRecord struct {
	ModelClass     string                  `json:"modelClass" yaml:"modelClass" msgpack:"modelClass"`
	DBType         string                  `json:"dbType" yaml:"dbType" msgpack:"dbType"`
	DBName         string                  `json:"dbName" yaml:"dbName" msgpack:"dbName"`
	ColumnMetadata map[string]ColumnRecord `json:"columnMetadata" yaml:"columnMetadata" msgpack:"columnMetadata"`
	Associations   []map[string]any        `json:"associations" yaml:"associations" msgpack:"associations"`
}

// ColumnRecord is the snapshot form of ColumnMetadata. A nil size means unknown.
type ColumnRecord struct {
	ColumnName string `json:"columnName" yaml:"columnName" msgpack:"columnName"`
	ColumnType string `json:"columnType" yaml:"columnType" msgpack:"columnType"`
	ColumnSize *int   `json:"columnSize,omitempty" yaml:"columnSize,omitempty" msgpack:"columnSize,omitempty"`
}

// ToDocument exports one record per registered entity type, in registration
// order. Descriptors displaced from the table index by a collision are kept,
// so FromDocument replays the same registrations.
func (r *Registry) ToDocument() Document {
	doc := make(Document, 0, len(r.entityOrder))
	for _, entityTypeID := range r.entityOrder {
		d := r.byEntity[entityTypeID]
		columns := make(map[string]ColumnRecord, len(d.columns))
		for name, col := range d.columns {
			record := ColumnRecord{ColumnName: col.Name, ColumnType: col.Type}
			if col.HasSize() {
				size := col.Size
				record.ColumnSize = &size
			}
			columns[name] = record
		}

		associations := make([]map[string]any, 0, len(d.associations))
		for _, a := range d.associations {
			associations = append(associations, a.Fields())
		}

		doc = append(doc, ModelRecord{
			ModelClass:     entityTypeID,
			DBType:         d.DBType(),
			DBName:         d.DBName(),
			ColumnMetadata: columns,
			Associations:   associations,
		})
	}
	return doc
}

// FromDocument rebuilds a registry from a snapshot. Entity types are resolved
// with resolver and associations with the factories of the registry options.
// Any failure aborts the whole load with a *MetadataLoadError.
func FromDocument(doc Document, resolver TypeResolver, opts ...Option) (*Registry, error) {
	r := NewRegistry(opts...)

	descriptors := make([]*ModelDescriptor, 0, len(doc))
	for _, record := range doc {
		entity, err := resolver.ResolveEntityType(record.ModelClass)
		if err != nil {
			return nil, &MetadataLoadError{ModelClass: record.ModelClass, Err: err}
		}

		d := NewModelDescriptor(record.DBName, entity, record.DBType)

		columns := make(map[string]ColumnMetadata, len(record.ColumnMetadata))
		for name, col := range record.ColumnMetadata {
			columns[name] = NewColumnMetadata(col.ColumnName, col.ColumnType, col.ColumnSize)
		}
		d.SetColumnMetadata(columns)

		for _, fields := range record.Associations {
			a, err := r.associations.Build(fields)
			if err != nil {
				return nil, &MetadataLoadError{ModelClass: record.ModelClass, Err: err}
			}
			d.associations = append(d.associations, a)
		}
		descriptors = append(descriptors, d)
	}

	for _, d := range descriptors {
		r.Register(d, d.EntityType().Name)
	}
	return r, nil
}
