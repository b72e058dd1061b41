package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alc6/metareg/providers"
)

// PostgreSQLManager runs an ephemeral PostgreSQL container for migrations
type PostgreSQLManager struct {
	image     string
	container testcontainers.Container
	db        *sql.DB
	connStr   string
}

func NewPostgreSQLManager(image string) DatabaseManager {
	if image == "" {
		image = defaultPostgresImage
	}
	return &PostgreSQLManager{image: image}
}

func (p *PostgreSQLManager) Setup(ctx context.Context) error {
	slog.Debug("starting postgresql container", "image", p.image)
	container, err := postgres.Run(ctx,
		p.image,
		postgres.WithDatabase("metareg"),
		postgres.WithUsername("metareg"),
		postgres.WithPassword("metareg"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	p.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	slog.Debug("got database connection string", "connStr", connStr)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	p.db = db
	p.connStr = connStr

	slog.Info("postgresql container ready")
	return nil
}

func (p *PostgreSQLManager) Close(ctx context.Context) error {
	if p.db != nil {
		p.db.Close()
	}
	if p.container != nil {
		return p.container.Terminate(ctx)
	}
	return nil
}

func (p *PostgreSQLManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	return runMigrations(ctx, p.db, migrations)
}

func (p *PostgreSQLManager) GetDB() *sql.DB {
	return p.db
}

func (p *PostgreSQLManager) GetConnectionString() string {
	return p.connStr
}

// LiveDatabaseManager connects to an existing database through a registered driver
type LiveDatabaseManager struct {
	driver string
	dsn    string
	db     *sql.DB
}

func NewLiveDatabaseManager(driver, dsn string) DatabaseManager {
	return &LiveDatabaseManager{driver: driver, dsn: dsn}
}

func (m *LiveDatabaseManager) Setup(ctx context.Context) error {
	slog.Debug("opening database", "driver", m.driver)
	db, err := sql.Open(m.driver, m.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", m.driver, err)
	}

	// an in-memory sqlite database lives and dies with its connection
	if m.driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m.db = db
	slog.Info("database connection ready", "driver", m.driver)
	return nil
}

func (m *LiveDatabaseManager) Close(_ context.Context) error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *LiveDatabaseManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	return runMigrations(ctx, m.db, migrations)
}

func (m *LiveDatabaseManager) GetDB() *sql.DB {
	return m.db
}

func (m *LiveDatabaseManager) GetConnectionString() string {
	return m.dsn
}

// ProviderSchemaExtractor reads tables through one of the schema providers
type ProviderSchemaExtractor struct {
	provider providers.SchemaProvider
	schema   string
}

// NewSchemaExtractor looks up the named provider and checks its driver is linked in
func NewSchemaExtractor(providerName, schema string) (SchemaExtractor, error) {
	provider, ok := providers.DefaultProviders().Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}

	if !provider.IsAvailable() {
		return nil, fmt.Errorf("provider '%s' is not available in this environment", providerName)
	}

	return &ProviderSchemaExtractor{provider: provider, schema: schema}, nil
}

func (e *ProviderSchemaExtractor) ExtractSchema(ctx context.Context, db *sql.DB) ([]providers.Table, error) {
	result, err := e.provider.ExtractSchema(ctx, providers.ExtractParams{DB: db, Schema: e.schema})
	if err != nil {
		return nil, err
	}
	return result.Tables, nil
}

func (e *ProviderSchemaExtractor) DBType() string {
	return e.provider.Name()
}

func (e *ProviderSchemaExtractor) FormatSchema(tables []providers.Table) string {
	return providers.FormatSchemaInfo(tables)
}

type FileMigrationReader struct{}

func NewFileMigrationReader() MigrationReader {
	return &FileMigrationReader{}
}

func (r *FileMigrationReader) DiscoverMigrations(dir string) ([]Migration, error) {
	return ParseMigrations(dir)
}
