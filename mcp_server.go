package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alc6/metareg/metamodel"
	"github.com/alc6/metareg/providers"
)

// StartMCPServer serves the metadata tools over stdio
func StartMCPServer() error {
	s := server.NewMCPServer(
		"metareg",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	snapshotArgs := []mcp.ToolOption{
		mcp.WithString("snapshot",
			mcp.Required(),
			mcp.Description("Registry snapshot as returned by build_metadata"),
		),
		mcp.WithString("format",
			mcp.Description("Snapshot format (default: json)"),
			mcp.Enum("json", "yaml"),
		),
	}

	buildMetadataTool := mcp.NewTool("build_metadata",
		mcp.WithDescription("Run PostgreSQL migration files and build the model metadata registry snapshot"),
		mcp.WithString("migration_directory",
			mcp.Required(),
			mcp.Description("Path to directory containing migration files"),
		),
		mcp.WithString("format",
			mcp.Description("Snapshot format (default: json)"),
			mcp.Enum("json", "yaml"),
		),
		mcp.WithString("postgres_image",
			mcp.Description("PostgreSQL Docker image to use (default: postgres:16-alpine)"),
		),
	)
	s.AddTool(buildMetadataTool, handleBuildMetadata)

	describeMetadataTool := mcp.NewTool("describe_metadata",
		append([]mcp.ToolOption{mcp.WithDescription("Describe every model of a registry snapshot")}, snapshotArgs...)...,
	)
	s.AddTool(describeMetadataTool, handleDescribeMetadata)

	joinEdgesTool := mcp.NewTool("join_edges",
		append([]mcp.ToolOption{
			mcp.WithDescription("List the [source, target] table pairs linked through a join table"),
			mcp.WithString("join_table",
				mcp.Required(),
				mcp.Description("Name of the join table"),
			),
		}, snapshotArgs...)...,
	)
	s.AddTool(joinEdgesTool, handleJoinEdges)

	lookupTableTool := mcp.NewTool("lookup_table",
		append([]mcp.ToolOption{
			mcp.WithDescription("Describe the model stored for a table"),
			mcp.WithString("table",
				mcp.Required(),
				mcp.Description("Table name, matched case-insensitively"),
			),
		}, snapshotArgs...)...,
	)
	s.AddTool(lookupTableTool, handleLookupTable)

	validateMigrationsTool := mcp.NewTool("validate_migrations",
		mcp.WithDescription("Validate migration files in directory without running them"),
		mcp.WithString("migration_directory",
			mcp.Required(),
			mcp.Description("Path to directory containing migration files"),
		),
	)
	s.AddTool(validateMigrationsTool, handleValidateMigrations)

	slog.Info("starting metareg mcp server")
	return server.ServeStdio(s)
}

func handleBuildMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	migrationDir, err := request.RequireString("migration_directory")
	if err != nil {
		return mcp.NewToolResultError("migration_directory parameter is required"), nil
	}

	format := request.GetString("format", string(metamodel.FormatJSON))
	pgImage := request.GetString("postgres_image", appConfig.PostgresImage)

	schemaExtractor, err := NewSchemaExtractor("postgres", "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, err := buildMetadataCore(ctx, migrationDir, format,
		NewFileMigrationReader(), NewPostgreSQLManager(pgImage), schemaExtractor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(output), nil
}

// buildMetadataCore runs the migrations and returns the encoded snapshot, separated for testing
func buildMetadataCore(ctx context.Context, migrationDir, format string,
	migrationReader MigrationReader, dbManager DatabaseManager, schemaExtractor SchemaExtractor) (string, error) {
	if format == string(metamodel.FormatMsgpack) {
		return "", fmt.Errorf("format %s is binary and cannot be returned as text", format)
	}

	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return "", fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	migrations, err := migrationReader.DiscoverMigrations(migrationDir)
	if err != nil {
		return "", fmt.Errorf("failed to parse migrations: %w", err)
	}

	if len(migrations) == 0 {
		return "", fmt.Errorf("no migration files found in directory")
	}

	if err := dbManager.Setup(ctx); err != nil {
		return "", fmt.Errorf("failed to setup postgresql: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(ctx, migrations); err != nil {
		return "", fmt.Errorf("failed to run migrations: %w", err)
	}

	_, registry, err := buildRegistry(ctx, dbManager.GetDB(), schemaExtractor, appConfig)
	if err != nil {
		return "", err
	}

	data, err := encodeSnapshot(registry, format)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func handleDescribeMetadata(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := request.RequireString("snapshot")
	if err != nil {
		return mcp.NewToolResultError("snapshot parameter is required"), nil
	}

	output, err := describeMetadataCore(snapshot, request.GetString("format", string(metamodel.FormatJSON)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func describeMetadataCore(snapshot, format string) (string, error) {
	registry, err := decodeSnapshot([]byte(snapshot), format)
	if err != nil {
		return "", err
	}
	return providers.FormatMetaModels(registry), nil
}

func handleJoinEdges(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := request.RequireString("snapshot")
	if err != nil {
		return mcp.NewToolResultError("snapshot parameter is required"), nil
	}
	joinTable, err := request.RequireString("join_table")
	if err != nil {
		return mcp.NewToolResultError("join_table parameter is required"), nil
	}

	output, err := joinEdgesCore(snapshot, request.GetString("format", string(metamodel.FormatJSON)), joinTable)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

// joinEdgesCore returns the edges of a join table as a JSON array of [source, target] pairs
func joinEdgesCore(snapshot, format, joinTable string) (string, error) {
	registry, err := decodeSnapshot([]byte(snapshot), format)
	if err != nil {
		return "", err
	}

	edges, err := registry.EdgesForJoinTable(joinTable)
	if err != nil {
		return "", err
	}

	pairs := make([][2]string, 0, len(edges)/2)
	for i := 0; i+1 < len(edges); i += 2 {
		pairs = append(pairs, [2]string{edges[i], edges[i+1]})
	}

	jsonOutput, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal edges to JSON: %w", err)
	}
	return string(jsonOutput), nil
}

func handleLookupTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := request.RequireString("snapshot")
	if err != nil {
		return mcp.NewToolResultError("snapshot parameter is required"), nil
	}
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError("table parameter is required"), nil
	}

	output, err := lookupTableCore(snapshot, request.GetString("format", string(metamodel.FormatJSON)), table)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func lookupTableCore(snapshot, format, table string) (string, error) {
	registry, err := decodeSnapshot([]byte(snapshot), format)
	if err != nil {
		return "", err
	}

	d, ok := registry.ByTableName(table)
	if !ok {
		return "", fmt.Errorf("table not found: %s", table)
	}
	return providers.FormatModel(registry, d), nil
}

// handleValidateMigrations processes the validate_migrations tool request
func handleValidateMigrations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	migrationDir, err := request.RequireString("migration_directory")
	if err != nil {
		return mcp.NewToolResultError("migration_directory parameter is required"), nil
	}

	output, err := validateMigrationsCore(migrationDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("migration validation completed:\n\n%s", output)), nil
}

type migrationReport struct {
	Name        string `json:"name"`
	UpFile      string `json:"up_file"`
	DownFile    string `json:"down_file,omitempty"`
	HasDownFile bool   `json:"has_down_file"`
}

type validationReport struct {
	Valid          bool              `json:"valid"`
	MigrationCount int               `json:"migration_count"`
	Migrations     []migrationReport `json:"migrations"`
}

// validateMigrationsCore contains the core logic for migration validation, separated for testing
func validateMigrationsCore(migrationDir string) (string, error) {
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return "", fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	migrations, err := ParseMigrations(migrationDir)
	if err != nil {
		return "", fmt.Errorf("failed to parse migrations: %w", err)
	}

	report := validationReport{
		Valid:          true,
		MigrationCount: len(migrations),
		Migrations:     make([]migrationReport, len(migrations)),
	}
	for i, migration := range migrations {
		report.Migrations[i] = migrationReport{
			Name:        migration.Name,
			UpFile:      migration.UpFile,
			DownFile:    migration.DownFile,
			HasDownFile: migration.DownFile != "",
		}
	}

	jsonOutput, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	return string(jsonOutput), nil
}
