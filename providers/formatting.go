package providers

import (
	"fmt"
	"strings"

	"github.com/alc6/metareg/metamodel"
)

// FormatSchemaInfo formats schema as human-readable text
func FormatSchemaInfo(tables []Table) string {
	var sb strings.Builder

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("Table: %s\n", table.Name))
		sb.WriteString("Columns:\n")

		for _, col := range table.Columns {
			nullable := "NOT NULL"
			if col.IsNullable {
				nullable = "NULL"
			}

			pk := ""
			if col.IsPrimaryKey {
				pk = " (PRIMARY KEY)"
			}

			defaultVal := ""
			if col.DefaultValue.Valid {
				defaultVal = fmt.Sprintf(" DEFAULT %s", col.DefaultValue.String)
			}

			sb.WriteString(fmt.Sprintf("  - %s %s %s%s%s\n",
				col.Name, mapDataType(col), nullable, defaultVal, pk))
		}

		if len(table.Indexes) > 0 {
			sb.WriteString("Indexes:\n")
			for _, idx := range table.Indexes {
				unique := ""
				if idx.IsUnique {
					unique = " (UNIQUE)"
				}
				sb.WriteString(fmt.Sprintf("  - %s on (%s)%s\n",
					idx.Name, strings.Join(idx.Columns, ", "), unique))
			}
		}

		if len(table.ForeignKeys) > 0 {
			sb.WriteString("Foreign Keys:\n")
			for _, fk := range table.ForeignKeys {
				sb.WriteString(fmt.Sprintf("  - %s -> %s(%s)\n",
					fk.Column, fk.ReferencedTable, fk.ReferencedColumn))
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func mapDataType(col Column) string {
	switch col.DataType {
	case "character varying", "varchar":
		if col.CharacterLength.Valid {
			return fmt.Sprintf("VARCHAR(%d)", col.CharacterLength.Int64)
		}
		return "VARCHAR(255)"
	case "character", "char":
		if col.CharacterLength.Valid {
			return fmt.Sprintf("CHAR(%d)", col.CharacterLength.Int64)
		}
		return "CHAR"
	case "text":
		return "TEXT"
	case "integer", "int", "int4":
		return "INTEGER"
	case "bigint", "int8":
		return "BIGINT"
	case "smallint":
		return "SMALLINT"
	case "serial":
		return "SERIAL"
	case "bigserial":
		return "BIGSERIAL"
	case "smallserial":
		return "SMALLSERIAL"
	case "boolean", "bool":
		return "BOOLEAN"
	case "real":
		return "REAL"
	case "double precision":
		return "DOUBLE PRECISION"
	case "numeric", "decimal":
		if col.NumericPrecision.Valid && col.NumericScale.Valid {
			return fmt.Sprintf("DECIMAL(%d,%d)", col.NumericPrecision.Int64, col.NumericScale.Int64)
		} else if col.NumericPrecision.Valid {
			return fmt.Sprintf("DECIMAL(%d)", col.NumericPrecision.Int64)
		}
		return "DECIMAL"
	case "money":
		return "MONEY"
	case "timestamp without time zone", "timestamp", "datetime":
		return "TIMESTAMP"
	case "timestamp with time zone":
		return "TIMESTAMPTZ"
	case "date":
		return "DATE"
	case "time without time zone":
		return "TIME"
	case "time with time zone":
		return "TIMETZ"
	case "interval":
		return "INTERVAL"
	case "uuid":
		return "UUID"
	case "json":
		return "JSON"
	case "jsonb":
		return "JSONB"
	case "xml":
		return "XML"
	case "bytea":
		return "BYTEA"
	case "bit":
		return "BIT"
	case "varbit", "bit varying":
		return "VARBIT"
	case "cidr":
		return "CIDR"
	case "inet":
		return "INET"
	case "macaddr":
		return "MACADDR"
	case "tsvector":
		return "TSVECTOR"
	case "tsquery":
		return "TSQUERY"
	default:
		return strings.ToUpper(col.DataType)
	}
}

// FormatMetaModels formats the registry as human-readable text
func FormatMetaModels(registry *metamodel.Registry) string {
	var sb strings.Builder
	for _, d := range registry.Descriptors() {
		sb.WriteString(FormatModel(registry, d))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatModel formats a single descriptor of the registry
func FormatModel(registry *metamodel.Registry, d *metamodel.ModelDescriptor) string {
	var sb strings.Builder

	entity := d.EntityType()
	sb.WriteString(fmt.Sprintf("Model: %s\n", entity.Name))
	sb.WriteString(fmt.Sprintf("  Table: %s (%s/%s)\n", d.TableName(), d.DBType(), d.DBName()))

	ext := registry.ExtensionRegistryFor(entity.Name)
	if pk, ok := ext.Get(ExtensionPrimaryKey); ok {
		if keys, _ := pk.([]string); len(keys) > 0 {
			sb.WriteString(fmt.Sprintf("  Primary Key: %s\n", strings.Join(keys, ", ")))
		}
	}

	columns := d.ColumnMetadata()
	sb.WriteString("  Columns:\n")
	for _, name := range d.ColumnNames() {
		col := columns[name]
		if col.HasSize() {
			sb.WriteString(fmt.Sprintf("    - %s %s(%d)\n", col.Name, col.Type, col.Size))
		} else {
			sb.WriteString(fmt.Sprintf("    - %s %s\n", col.Name, col.Type))
		}
	}

	if associations := d.Associations(); len(associations) > 0 {
		sb.WriteString("  Associations:\n")
		for _, a := range associations {
			sb.WriteString(fmt.Sprintf("    - %s\n", describeAssociation(a)))
		}
	}

	return sb.String()
}

func describeAssociation(a metamodel.Association) string {
	switch a := a.(type) {
	case *metamodel.BelongsTo:
		return fmt.Sprintf("belongs to %s via %s", a.TargetType, a.FKName)
	case *metamodel.OneToMany:
		return fmt.Sprintf("has many %s via %s", a.TargetType, a.FKName)
	case *metamodel.ManyToMany:
		return fmt.Sprintf("has many %s through %s (%s, %s)", a.TargetType, a.Join, a.SourceFKName, a.TargetFKName)
	case *metamodel.OneToManyPolymorphic:
		return fmt.Sprintf("has many %s as %s", a.TargetType, a.TypeLabel)
	case *metamodel.BelongsToPolymorphic:
		return fmt.Sprintf("belongs to %s as %s", a.TargetType, a.TypeLabel)
	default:
		return fmt.Sprintf("%s %s -> %s", a.Class(), a.Source(), a.Target())
	}
}

// metadataType is the column type recorded in the registry, without size parameters
func metadataType(col Column) string {
	base, _, _ := strings.Cut(mapDataType(col), "(")
	return base
}

// metadataSize picks the character length or numeric precision of a column
func metadataSize(col Column) *int {
	var size int64
	switch {
	case col.CharacterLength.Valid:
		size = col.CharacterLength.Int64
	case col.NumericPrecision.Valid:
		size = col.NumericPrecision.Int64
	default:
		return nil
	}
	n := int(size)
	return &n
}
