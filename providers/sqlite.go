package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider reads sqlite_master and the pragma table functions.
// SQLite has a single schema per connection, so ExtractParams.Schema is ignored.
type SQLiteProvider struct{}

// NewSQLiteProvider creates a new sqlite provider
func NewSQLiteProvider() SchemaProvider {
	return &SQLiteProvider{}
}

func (p *SQLiteProvider) Name() string {
	return "sqlite"
}

func (p *SQLiteProvider) IsAvailable() bool {
	return driverRegistered("sqlite")
}

func (p *SQLiteProvider) ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("sqlite provider requires database connection")
	}

	slog.Debug("extracting schema using sqlite provider")
	tables, err := extractTables(ctx, params.DB, "", sqliteIntrospector{})
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}

	return &SchemaResult{Tables: tables, DBType: p.Name()}, nil
}

type sqliteIntrospector struct{}

func (sqliteIntrospector) tables(ctx context.Context, db *sql.DB, _ string) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	return queryStrings(ctx, db, query)
}

func (sqliteIntrospector) columns(ctx context.Context, db *sql.DB, _, tableName string) ([]Column, error) {
	query := `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var declared string
		var notNull, pk int
		if err := rows.Scan(&col.Name, &declared, &notNull, &col.DefaultValue, &pk); err != nil {
			return nil, err
		}
		col.IsNullable = notNull == 0 && pk == 0
		col.IsPrimaryKey = pk > 0
		applyDeclaredType(&col, declared)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (sqliteIntrospector) indexes(ctx context.Context, db *sql.DB, _, tableName string) ([]Index, error) {
	query := `
		SELECT il.name, il."unique", ii.name
		FROM pragma_index_list(?) AS il
		JOIN pragma_index_info(il.name) AS ii
		WHERE il.origin <> 'pk'
		ORDER BY il.name, ii.seqno
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var name string
		var column sql.NullString
		var unique int
		if err := rows.Scan(&name, &unique, &column); err != nil {
			return nil, err
		}
		// expression indexes have no column name
		if !column.Valid {
			continue
		}
		if n := len(indexes); n > 0 && indexes[n-1].Name == name {
			indexes[n-1].Columns = append(indexes[n-1].Columns, column.String)
			continue
		}
		indexes = append(indexes, Index{Name: name, Columns: []string{column.String}, IsUnique: unique == 1})
	}

	return indexes, rows.Err()
}

func (sqliteIntrospector) foreignKeys(ctx context.Context, db *sql.DB, _, tableName string) ([]ForeignKey, error) {
	query := `SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`
	return queryForeignKeys(ctx, db, query, tableName)
}

// applyDeclaredType splits a declared type such as "VARCHAR(255)" or
// "DECIMAL(10,2)" into the base type and its length or precision.
func applyDeclaredType(col *Column, declared string) {
	base, params, hasParams := strings.Cut(declared, "(")
	col.DataType = strings.ToLower(strings.TrimSpace(base))
	if !hasParams {
		return
	}

	params = strings.TrimSuffix(strings.TrimSpace(params), ")")
	first, second, hasScale := strings.Cut(params, ",")
	n, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil {
		return
	}

	switch col.DataType {
	case "numeric", "decimal":
		col.NumericPrecision = sql.NullInt64{Int64: n, Valid: true}
		if hasScale {
			if scale, err := strconv.ParseInt(strings.TrimSpace(second), 10, 64); err == nil {
				col.NumericScale = sql.NullInt64{Int64: scale, Valid: true}
			}
		}
	default:
		col.CharacterLength = sql.NullInt64{Int64: n, Valid: true}
	}
}
