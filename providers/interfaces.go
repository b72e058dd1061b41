package providers

import (
	"context"
	"database/sql"
	"sort"
)

// SchemaProvider defines the interface for database-specific schema introspection
type SchemaProvider interface {
	// Name returns the provider name, which is also the database type it reads
	Name() string

	// ExtractSchema reads tables, columns, indexes and foreign keys
	// The context allows for cancellation and timeout control
	ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error)

	// IsAvailable checks if the provider's driver is usable in this build
	IsAvailable() bool
}

// ExtractParams contains parameters needed for schema extraction
type ExtractParams struct {
	// DB is the database connection
	DB *sql.DB

	// Schema restricts extraction to one schema; providers pick a default when empty
	Schema string
}

// SchemaResult contains the extracted schema
type SchemaResult struct {
	Tables []Table

	// DBType is the name of the provider that produced the result
	DBType string
}

// ProviderRegistry manages available schema providers
type ProviderRegistry struct {
	providers map[string]SchemaProvider
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]SchemaProvider),
	}
}

// DefaultProviders returns a registry with the postgres, mysql and sqlite providers
func DefaultProviders() *ProviderRegistry {
	registry := NewProviderRegistry()
	registry.Register(NewPostgresProvider())
	registry.Register(NewMySQLProvider())
	registry.Register(NewSQLiteProvider())
	return registry
}

// Register adds a provider to the registry
func (r *ProviderRegistry) Register(provider SchemaProvider) {
	r.providers[provider.Name()] = provider
}

// Get retrieves a provider by name
func (r *ProviderRegistry) Get(name string) (SchemaProvider, bool) {
	provider, exists := r.providers[name]
	return provider, exists
}

// ListAvailable returns the names of all available providers, sorted
func (r *ProviderRegistry) ListAvailable() []string {
	var available []string
	for name, provider := range r.providers {
		if provider.IsAvailable() {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

// driverRegistered reports whether database/sql knows a driver name
func driverRegistered(name string) bool {
	for _, driver := range sql.Drivers() {
		if driver == name {
			return true
		}
	}
	return false
}
