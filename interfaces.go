package main

import (
	"context"
	"database/sql"

	"github.com/alc6/metareg/providers"
)

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=main

// DatabaseManager handles database lifecycle and operations
type DatabaseManager interface {
	// Setup creates and initializes the database connection
	Setup(ctx context.Context) error
	// Close cleans up database resources
	Close(ctx context.Context) error
	// RunMigrations executes the provided migrations
	RunMigrations(ctx context.Context, migrations []Migration) error
	// GetDB returns the underlying database connection
	GetDB() *sql.DB
	// GetConnectionString returns the DSN the connection was opened with
	GetConnectionString() string
}

// SchemaExtractor handles extracting schema information from a database
type SchemaExtractor interface {
	// ExtractSchema retrieves schema information from the database
	ExtractSchema(ctx context.Context, db *sql.DB) ([]providers.Table, error)
	// DBType names the database product the tables were read from
	DBType() string
	// FormatSchema formats schema information as human-readable text
	FormatSchema(tables []providers.Table) string
}

// MigrationReader handles reading migration files
type MigrationReader interface {
	// DiscoverMigrations finds all migration files in the given directory
	DiscoverMigrations(dir string) ([]Migration, error)
}
