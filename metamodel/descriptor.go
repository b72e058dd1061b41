package metamodel

import (
	"maps"
	"sort"
	"strings"
)

// ModelDescriptor holds the structural metadata of one persisted entity type.
type ModelDescriptor struct {
	entity       EntityType
	dbName       string
	dbType       string
	columns      map[string]ColumnMetadata
	associations []Association
}

// NewModelDescriptor creates an empty descriptor for an entity stored in dbName.
func NewModelDescriptor(dbName string, entity EntityType, dbType string) *ModelDescriptor {
	return &ModelDescriptor{
		entity:  entity,
		dbName:  dbName,
		dbType:  dbType,
		columns: make(map[string]ColumnMetadata),
	}
}

func (d *ModelDescriptor) TableName() string      { return d.entity.Table }
func (d *ModelDescriptor) EntityType() EntityType { return d.entity }
func (d *ModelDescriptor) DBName() string         { return d.dbName }
func (d *ModelDescriptor) DBType() string         { return d.dbType }

// ColumnMetadata returns a copy of the column map keyed by column name.
func (d *ModelDescriptor) ColumnMetadata() map[string]ColumnMetadata {
	return maps.Clone(d.columns)
}

// SetColumnMetadata replaces the column map.
func (d *ModelDescriptor) SetColumnMetadata(columns map[string]ColumnMetadata) {
	d.columns = make(map[string]ColumnMetadata, len(columns))
	for name, col := range columns {
		d.columns[name] = col
	}
}

// Column looks a column up ignoring case.
func (d *ModelDescriptor) Column(name string) (ColumnMetadata, bool) {
	if col, ok := d.columns[name]; ok {
		return col, true
	}
	for key, col := range d.columns {
		if strings.EqualFold(key, name) {
			return col, true
		}
	}
	return ColumnMetadata{}, false
}

func (d *ModelDescriptor) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// ColumnNames returns the column names, sorted
func (d *ModelDescriptor) ColumnNames() []string {
	names := make([]string, 0, len(d.columns))
	for name := range d.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddAssociation appends an association unless an equal one is already present.
func (d *ModelDescriptor) AddAssociation(a Association) {
	fields := a.Fields()
	for _, existing := range d.associations {
		if maps.Equal(existing.Fields(), fields) {
			return
		}
	}
	d.associations = append(d.associations, a)
}

// Associations returns the associations in the order they were added.
func (d *ModelDescriptor) Associations() []Association {
	return append([]Association(nil), d.associations...)
}

// AssociationsForTarget returns associations whose target is the given entity type.
func (d *ModelDescriptor) AssociationsForTarget(entityTypeID string) []Association {
	var result []Association
	for _, a := range d.associations {
		if a.Target() == entityTypeID {
			result = append(result, a)
		}
	}
	return result
}

// ManyToManyAssociations returns the many-to-many associations owned by the descriptor.
func (d *ModelDescriptor) ManyToManyAssociations() []*ManyToMany {
	var result []*ManyToMany
	for _, a := range d.associations {
		if m2m, ok := a.(*ManyToMany); ok {
			result = append(result, m2m)
		}
	}
	return result
}
