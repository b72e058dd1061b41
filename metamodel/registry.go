// Package metamodel provides an in-memory registry of table metadata for
// persisted entity types, with snapshot export and import.
package metamodel

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Registry indexes model descriptors by table name and entity type.
//
// A Registry is populated by Register or FromDocument from a single goroutine,
// then published. After publication it is safe for concurrent reads without
// locking; only ExtensionRegistryFor may be called concurrently with reads.
type Registry struct {
	byTable     *tableIndex
	byEntity    map[string]*ModelDescriptor
	entityOrder []string
	manyToMany  []*ManyToMany
	extensions  sync.Map // entity type id -> *ExtensionRegistry

	logger       *slog.Logger
	associations *AssociationRegistry
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithAssociations sets the association factories used by FromDocument.
func WithAssociations(associations *AssociationRegistry) Option {
	return func(r *Registry) {
		r.associations = associations
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byTable:  newTableIndex(),
		byEntity: make(map[string]*ModelDescriptor),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.associations == nil {
		r.associations = DefaultAssociations()
	}
	return r
}

// Register indexes d under its table name and entityTypeID. A different
// descriptor already registered under either key is replaced and a warning
// is logged.
func (r *Registry) Register(d *ModelDescriptor, entityTypeID string) {
	prev, ok := r.byEntity[entityTypeID]
	if !ok {
		r.entityOrder = append(r.entityOrder, entityTypeID)
	} else if prev != d {
		r.logger.Warn("double registration", "entityType", entityTypeID, "previous", prev.TableName())
	}
	r.byEntity[entityTypeID] = d

	if prev := r.byTable.put(d.TableName(), d); prev != nil && prev != d {
		r.logger.Warn("double registration", "table", d.TableName(), "previous", prev.EntityType().Name)
	}

	r.manyToMany = append(r.manyToMany, d.ManyToManyAssociations()...)
}

// ExtensionRegistryFor returns the extension registry of an entity type,
// creating it on first use.
func (r *Registry) ExtensionRegistryFor(entityTypeID string) *ExtensionRegistry {
	if ext, ok := r.extensions.Load(entityTypeID); ok {
		return ext.(*ExtensionRegistry)
	}
	ext, _ := r.extensions.LoadOrStore(entityTypeID, newExtensionRegistry())
	return ext.(*ExtensionRegistry)
}

// ByEntityType looks a descriptor up by entity type id.
func (r *Registry) ByEntityType(entityTypeID string) (*ModelDescriptor, bool) {
	d, ok := r.byEntity[entityTypeID]
	return d, ok
}

// ByTableName looks a descriptor up by table name, ignoring case.
func (r *Registry) ByTableName(table string) (*ModelDescriptor, bool) {
	return r.byTable.get(table)
}

// TableNamesForDB returns the tables registered for a database. The order
// follows registration but callers should not rely on it.
func (r *Registry) TableNamesForDB(dbName string) []string {
	var tables []string
	for _, d := range r.byTable.values() {
		if d.DBName() == dbName {
			tables = append(tables, d.TableName())
		}
	}
	return tables
}

// EntityTypeFor returns the entity type id registered for a table.
func (r *Registry) EntityTypeFor(table string) (string, bool) {
	d, ok := r.byTable.get(table)
	if !ok {
		return "", false
	}
	return d.EntityType().Name, true
}

// TableNameFor returns the table of an entity type id.
func (r *Registry) TableNameFor(entityTypeID string) (string, bool) {
	d, ok := r.byEntity[entityTypeID]
	if !ok {
		return "", false
	}
	return d.TableName(), true
}

// Descriptors returns all descriptors in table registration order.
func (r *Registry) Descriptors() []*ModelDescriptor {
	return r.byTable.values()
}

// Len returns the number of registered tables
func (r *Registry) Len() int {
	return r.byTable.len()
}

// SetColumnMetadata replaces the columns of a registered table.
func (r *Registry) SetColumnMetadata(table string, columns map[string]ColumnMetadata) error {
	d, ok := r.byTable.get(table)
	if !ok {
		return fmt.Errorf("table %s is not registered", table)
	}
	d.SetColumnMetadata(columns)
	return nil
}

// ManyToManyAssociations returns every many-to-many association in registration order.
func (r *Registry) ManyToManyAssociations() []*ManyToMany {
	return append([]*ManyToMany(nil), r.manyToMany...)
}

// EdgesForJoinTable returns the tables connected by a join table: a
// [source, target] pair for every many-to-many association using it.
func (r *Registry) EdgesForJoinTable(join string) ([]string, error) {
	var edges []string
	for _, m2m := range r.manyToMany {
		if !strings.EqualFold(m2m.Join, join) {
			continue
		}
		source, ok := r.byEntity[m2m.SourceType]
		if !ok {
			return nil, &EdgeResolutionError{JoinTable: m2m.Join, EntityType: m2m.SourceType}
		}
		target, ok := r.byEntity[m2m.TargetType]
		if !ok {
			return nil, &EdgeResolutionError{JoinTable: m2m.Join, EntityType: m2m.TargetType}
		}
		edges = append(edges, source.TableName(), target.TableName())
	}
	return edges, nil
}
