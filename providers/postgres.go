package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
)

const defaultPostgresSchema = "public"

// PostgresProvider reads information_schema and pg_catalog
type PostgresProvider struct{}

// NewPostgresProvider creates a new postgres provider
func NewPostgresProvider() SchemaProvider {
	return &PostgresProvider{}
}

// Name returns the provider name
func (p *PostgresProvider) Name() string {
	return "postgres"
}

// IsAvailable reports whether the lib/pq driver is registered
func (p *PostgresProvider) IsAvailable() bool {
	return driverRegistered("postgres")
}

// ExtractSchema extracts the schema using catalog queries
func (p *PostgresProvider) ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("postgres provider requires database connection")
	}
	schema := params.Schema
	if schema == "" {
		schema = defaultPostgresSchema
	}

	slog.Debug("extracting schema using postgres provider", "schema", schema)
	tables, err := extractTables(ctx, params.DB, schema, postgresIntrospector{})
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}

	return &SchemaResult{Tables: tables, DBType: p.Name()}, nil
}

// ExtractSchemaFromDB extracts the public schema of a postgres database
func ExtractSchemaFromDB(ctx context.Context, db *sql.DB) ([]Table, error) {
	return extractTables(ctx, db, defaultPostgresSchema, postgresIntrospector{})
}

type postgresIntrospector struct{}

func (postgresIntrospector) tables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	query := `
		SELECT table_name 
		FROM information_schema.tables 
		WHERE table_schema = $1 
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return queryStrings(ctx, db, query, schema)
}

func (postgresIntrospector) columns(ctx context.Context, db *sql.DB, schema, tableName string) ([]Column, error) {
	query := `
		SELECT 
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' as is_nullable,
			c.column_default,
			COALESCE(tc.constraint_type = 'PRIMARY KEY', false) as is_primary_key,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage kcu ON 
			c.table_name = kcu.table_name AND c.column_name = kcu.column_name
			AND c.table_schema = kcu.table_schema
		LEFT JOIN information_schema.table_constraints tc ON 
			kcu.constraint_name = tc.constraint_name AND tc.constraint_type = 'PRIMARY KEY'
		WHERE c.table_name = $1 AND c.table_schema = $2
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, tableName, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.DefaultValue, &col.IsPrimaryKey,
			&col.CharacterLength, &col.NumericPrecision, &col.NumericScale); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (postgresIntrospector) indexes(ctx context.Context, db *sql.DB, schema, tableName string) ([]Index, error) {
	query := `
		SELECT 
			i.indexname,
			array_agg(a.attname ORDER BY a.attnum) as columns,
			i.indexdef LIKE '%UNIQUE%' as is_unique
		FROM pg_indexes i
		JOIN pg_class c ON c.relname = i.tablename
		JOIN pg_index idx ON idx.indexrelid = (
			SELECT oid FROM pg_class WHERE relname = i.indexname
		)
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(idx.indkey)
		WHERE i.tablename = $1 
		AND i.schemaname = $2
		AND NOT idx.indisprimary
		GROUP BY i.indexname, i.indexdef
		ORDER BY i.indexname
	`

	rows, err := db.QueryContext(ctx, query, tableName, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var index Index
		var columnsArray string
		if err := rows.Scan(&index.Name, &columnsArray, &index.IsUnique); err != nil {
			return nil, err
		}
		columnsArray = strings.Trim(columnsArray, "{}")
		index.Columns = strings.Split(columnsArray, ",")
		indexes = append(indexes, index)
	}

	return indexes, rows.Err()
}

func (postgresIntrospector) foreignKeys(ctx context.Context, db *sql.DB, schema, tableName string) ([]ForeignKey, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name,
			ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu ON
			tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu ON
			ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_name = $1 AND tc.table_schema = $2
		ORDER BY kcu.ordinal_position
	`
	return queryForeignKeys(ctx, db, query, tableName, schema)
}
