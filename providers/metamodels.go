package providers

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alc6/metareg/metamodel"
)

// Extension registry keys written by BuildMetaModels
const (
	ExtensionPrimaryKey = "primaryKey"
	ExtensionIndexes    = "indexes"
)

// BuildOptions controls how tables become model descriptors
type BuildOptions struct {
	// DBName is the logical database name recorded on every descriptor
	DBName string
	// DBType is the dialect, usually the provider name
	DBType string
	// Namespace prefixes every entity type identifier
	Namespace string
	// Logger receives registration diagnostics; slog.Default() when nil
	Logger *slog.Logger
}

// joinTableColumns may appear in a join table besides its two foreign keys
var joinTableColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// BuildMetaModels turns introspected tables into a populated registry.
// Tables that only link two other tables are treated as join tables and
// produce many-to-many associations instead of descriptors.
func BuildMetaModels(tables []Table, opts BuildOptions) (*metamodel.Registry, *metamodel.EntityCatalog, error) {
	if opts.DBName == "" {
		return nil, nil, fmt.Errorf("database name is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := metamodel.NewRegistry(metamodel.WithLogger(logger))
	catalog := metamodel.NewEntityCatalog()

	var models, joins []Table
	for _, table := range tables {
		if isJoinTable(table) {
			joins = append(joins, table)
		} else {
			models = append(models, table)
		}
	}

	descriptors := make(map[string]*metamodel.ModelDescriptor, len(models))
	for _, table := range models {
		name, err := entityTypeName(opts.Namespace, table.Name)
		if err != nil {
			return nil, nil, err
		}
		entity := metamodel.EntityType{Name: name, Table: table.Name}
		catalog.Add(entity)
		descriptors[table.Name] = metamodel.NewModelDescriptor(opts.DBName, entity, opts.DBType)
	}

	for _, table := range models {
		source := descriptors[table.Name]
		for _, fk := range table.ForeignKeys {
			target, ok := descriptors[fk.ReferencedTable]
			if !ok {
				logger.Debug("skipping foreign key to unmapped table", "table", table.Name, "references", fk.ReferencedTable)
				continue
			}
			sourceType, targetType := source.EntityType().Name, target.EntityType().Name
			source.AddAssociation(&metamodel.BelongsTo{SourceType: sourceType, TargetType: targetType, FKName: fk.Column})
			target.AddAssociation(&metamodel.OneToMany{SourceType: targetType, TargetType: sourceType, FKName: fk.Column})
		}
	}

	for _, join := range joins {
		left, right := join.ForeignKeys[0], join.ForeignKeys[1]
		a, okA := descriptors[left.ReferencedTable]
		b, okB := descriptors[right.ReferencedTable]
		if !okA || !okB {
			logger.Debug("skipping join table with unmapped side", "table", join.Name)
			continue
		}
		aType, bType := a.EntityType().Name, b.EntityType().Name
		a.AddAssociation(&metamodel.ManyToMany{
			SourceType: aType, TargetType: bType, Join: join.Name,
			SourceFKName: left.Column, TargetFKName: right.Column,
		})
		b.AddAssociation(&metamodel.ManyToMany{
			SourceType: bType, TargetType: aType, Join: join.Name,
			SourceFKName: right.Column, TargetFKName: left.Column,
		})
	}

	for _, table := range models {
		d := descriptors[table.Name]
		registry.Register(d, d.EntityType().Name)
	}

	for _, table := range models {
		columns := make(map[string]metamodel.ColumnMetadata, len(table.Columns))
		for _, col := range table.Columns {
			columns[col.Name] = metamodel.NewColumnMetadata(col.Name, metadataType(col), metadataSize(col))
		}
		if err := registry.SetColumnMetadata(table.Name, columns); err != nil {
			return nil, nil, fmt.Errorf("failed to set columns for %s: %w", table.Name, err)
		}

		ext := registry.ExtensionRegistryFor(descriptors[table.Name].EntityType().Name)
		if pk := table.PrimaryKey(); len(pk) > 0 {
			ext.Set(ExtensionPrimaryKey, pk)
		}
		if len(table.Indexes) > 0 {
			names := make([]string, 0, len(table.Indexes))
			for _, idx := range table.Indexes {
				names = append(names, idx.Name)
			}
			ext.Set(ExtensionIndexes, names)
		}
	}

	logger.Info("built metadata registry", "models", registry.Len(), "joinTables", len(joins))
	return registry, catalog, nil
}

// isJoinTable reports whether a table only links two distinct tables
func isJoinTable(table Table) bool {
	if len(table.ForeignKeys) != 2 {
		return false
	}
	left, right := table.ForeignKeys[0], table.ForeignKeys[1]
	if strings.EqualFold(left.ReferencedTable, right.ReferencedTable) {
		return false
	}
	for _, col := range table.Columns {
		name := strings.ToLower(col.Name)
		if joinTableColumns[name] || strings.EqualFold(col.Name, left.Column) || strings.EqualFold(col.Name, right.Column) {
			continue
		}
		return false
	}
	return true
}

// entityTypeName builds an identifier that ConventionResolver maps back to the
// table. Table names compare case-insensitively, so a lower-cased first rune
// is accepted for tables the convention cannot spell exactly.
func entityTypeName(namespace, table string) (string, error) {
	candidates := []string{metamodel.TypeNameForTable(table), table}
	if r, size := utf8.DecodeRuneInString(table); size > 0 {
		candidates = append(candidates, string(unicode.ToLower(r))+table[size:])
	}

	segment := ""
	for _, candidate := range candidates {
		if candidate == "" || strings.Contains(candidate, ".") {
			continue
		}
		resolved := metamodel.TableForSegment(candidate)
		if resolved == table {
			segment = candidate
			break
		}
		if segment == "" && strings.EqualFold(resolved, table) {
			segment = candidate
		}
	}
	if segment == "" {
		return "", fmt.Errorf("table %q has no entity type name that resolves back to it", table)
	}

	if namespace == "" {
		return segment, nil
	}
	return namespace + "." + segment, nil
}
