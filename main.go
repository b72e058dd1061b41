package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alc6/metareg/metamodel"
	"github.com/alc6/metareg/providers"
)

var (
	exportMode   bool
	mcpMode      bool
	outputFormat string
	outputFile   string

	appConfig = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "metareg [migration-directory]",
	Short: "Build a model metadata registry from migration files",
	Long: `metareg takes a directory containing PostgreSQL migration files (.up.sql and .down.sql),
runs them against an ephemeral PostgreSQL instance and turns the resulting schema into a
metadata registry: one model per table, its columns and its associations.

Modes:
  info mode (default): Shows the schema and the registry as human-readable text
  export mode (-e): Writes the registry snapshot (json, yaml or msgpack)
  mcp mode (--mcp): Run as Model Context Protocol server

Use "metareg inspect" to read a live database and "metareg show" to query a snapshot.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if mcpMode {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	SilenceUsage: true,
	RunE:         runMetareg,
}

func main() {
	if err := run(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	registerFlags()

	return rootCmd.Execute()
}

func registerFlags() {
	if rootCmd.PersistentFlags().Lookup("export") == nil {
		rootCmd.PersistentFlags().BoolVarP(&exportMode, "export", "e", false, "Write the registry snapshot instead of text")
		rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Snapshot format: json, yaml or msgpack")
		rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write the snapshot to a file instead of stdout")
	}
	if rootCmd.Flags().Lookup("mcp") == nil {
		rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "Run as Model Context Protocol server")
	}
	registerInspectFlags()
	registerShowFlags()
}

func runMetareg(cmd *cobra.Command, args []string) error {
	if mcpMode {
		slog.Info("starting mcp server")
		if err := StartMCPServer(); err != nil {
			return fmt.Errorf("failed to start mcp server: %w", err)
		}
		return nil
	}

	migrationDir := args[0]

	migrationReader := NewFileMigrationReader()
	dbManager := NewPostgreSQLManager(appConfig.PostgresImage)
	schemaExtractor, err := NewSchemaExtractor("postgres", "")
	if err != nil {
		return err
	}

	if err := processSchema(cmd.Context(), migrationDir, migrationReader, dbManager, schemaExtractor, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to process schema: %w", err)
	}
	return nil
}

func processSchema(ctx context.Context, migrationDir string, migrationReader MigrationReader, dbManager DatabaseManager, schemaExtractor SchemaExtractor, w io.Writer) error {
	slog.Info("processing migration directory", "directory", migrationDir)

	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	slog.Info("parsing migration files")
	migrations, err := migrationReader.DiscoverMigrations(migrationDir)
	if err != nil {
		return fmt.Errorf("failed to parse migrations: %w", err)
	}

	if len(migrations) == 0 {
		return fmt.Errorf("no migration files found in directory: %s", migrationDir)
	}

	slog.Info("found migrations", "count", len(migrations))

	return processDatabase(ctx, dbManager, schemaExtractor, migrations, w)
}

// processDatabase sets up the database, applies migrations when given and emits the registry
func processDatabase(ctx context.Context, dbManager DatabaseManager, schemaExtractor SchemaExtractor, migrations []Migration, w io.Writer) error {
	slog.Info("setting up database")
	if err := dbManager.Setup(ctx); err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup", "error", err)
		}
	}()

	if len(migrations) > 0 {
		slog.Info("running migrations")
		if err := dbManager.RunMigrations(ctx, migrations); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	slog.Info("extracting schema")
	tables, registry, err := buildRegistry(ctx, dbManager.GetDB(), schemaExtractor, appConfig)
	if err != nil {
		return err
	}

	if exportMode {
		return writeSnapshot(w, registry, snapshotFormat(), outputFile)
	}

	fmt.Fprintln(w, "\n=== DATABASE SCHEMA ===")
	fmt.Fprint(w, schemaExtractor.FormatSchema(tables))
	fmt.Fprintln(w, "=== METADATA REGISTRY ===")
	fmt.Fprint(w, providers.FormatMetaModels(registry))

	return nil
}

// snapshotFormat picks the export format: --format, then the output file extension, then config
func snapshotFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if outputFile != "" {
		return string(metamodel.FormatFromPath(outputFile))
	}
	return appConfig.Format
}
