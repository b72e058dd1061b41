package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// introspector reads the catalog of one database dialect
type introspector interface {
	tables(ctx context.Context, db *sql.DB, schema string) ([]string, error)
	columns(ctx context.Context, db *sql.DB, schema, table string) ([]Column, error)
	indexes(ctx context.Context, db *sql.DB, schema, table string) ([]Index, error)
	foreignKeys(ctx context.Context, db *sql.DB, schema, table string) ([]ForeignKey, error)
}

// extractTables walks every table of the schema using the given introspector
func extractTables(ctx context.Context, db *sql.DB, schema string, in introspector) ([]Table, error) {
	slog.Debug("starting schema extraction", "schema", schema)
	tables, err := in.tables(ctx, db, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	slog.Info("found database tables", "count", len(tables), "tables", tables)

	var result []Table
	for _, tableName := range tables {
		slog.Debug("processing table", "table", tableName)

		columns, err := in.columns(ctx, db, schema, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}

		indexes, err := in.indexes(ctx, db, schema, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableName, err)
		}

		foreignKeys, err := in.foreignKeys(ctx, db, schema, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
		}
		slog.Debug("found table metadata", "table", tableName,
			"columns", len(columns), "indexes", len(indexes), "foreignKeys", len(foreignKeys))

		result = append(result, Table{
			Name:        tableName,
			Columns:     columns,
			Indexes:     indexes,
			ForeignKeys: foreignKeys,
		})
	}

	slog.Info("schema extraction completed", "tables", len(result))
	return result, nil
}

// queryStrings runs a query returning a single string column
func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

// queryForeignKeys runs a query returning (column, referenced table, referenced column)
func queryForeignKeys(ctx context.Context, db *sql.DB, query string, args ...any) ([]ForeignKey, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		var referencedColumn sql.NullString
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &referencedColumn); err != nil {
			return nil, err
		}
		fk.ReferencedColumn = referencedColumn.String
		keys = append(keys, fk)
	}

	return keys, rows.Err()
}
