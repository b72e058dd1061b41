package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLProvider reads information_schema of a MySQL or MariaDB server.
// An empty schema selects the connection's current database.
type MySQLProvider struct{}

// NewMySQLProvider creates a new mysql provider
func NewMySQLProvider() SchemaProvider {
	return &MySQLProvider{}
}

func (p *MySQLProvider) Name() string {
	return "mysql"
}

func (p *MySQLProvider) IsAvailable() bool {
	return driverRegistered("mysql")
}

func (p *MySQLProvider) ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("mysql provider requires database connection")
	}

	slog.Debug("extracting schema using mysql provider", "schema", params.Schema)
	tables, err := extractTables(ctx, params.DB, params.Schema, mysqlIntrospector{})
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}

	return &SchemaResult{Tables: tables, DBType: p.Name()}, nil
}

type mysqlIntrospector struct{}

func (mysqlIntrospector) tables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return queryStrings(ctx, db, query, schema)
}

func (mysqlIntrospector) columns(ctx context.Context, db *sql.DB, schema, tableName string) ([]Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable = 'YES',
			column_default,
			column_key = 'PRI',
			character_maximum_length,
			numeric_precision,
			numeric_scale
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schema, tableName)
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

func (mysqlIntrospector) indexes(ctx context.Context, db *sql.DB, schema, tableName string) ([]Index, error) {
	query := `
		SELECT
			index_name,
			GROUP_CONCAT(column_name ORDER BY seq_in_index),
			non_unique = 0
		FROM information_schema.statistics
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_name = ?
		AND index_name <> 'PRIMARY'
		GROUP BY index_name, non_unique
		ORDER BY index_name
	`

	rows, err := db.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var index Index
		var columns string
		if err := rows.Scan(&index.Name, &columns, &index.IsUnique); err != nil {
			return nil, err
		}
		index.Columns = strings.Split(columns, ",")
		indexes = append(indexes, index)
	}

	return indexes, rows.Err()
}

func (mysqlIntrospector) foreignKeys(ctx context.Context, db *sql.DB, schema, tableName string) ([]ForeignKey, error) {
	query := `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_name = ?
		AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position
	`
	return queryForeignKeys(ctx, db, query, schema, tableName)
}
