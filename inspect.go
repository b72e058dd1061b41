package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	inspectDriver     string
	inspectDSN        string
	inspectSchema     string
	inspectMigrations string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build the registry from a live database",
	Long: `inspect connects to an existing database with one of the postgres, mysql or sqlite
drivers, optionally applies the .up.sql migrations of a directory, and builds the
metadata registry from what it finds.

MySQL DSNs need multiStatements=true when migrations hold more than one statement.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func registerInspectFlags() {
	if inspectCmd.Flags().Lookup("driver") != nil {
		return
	}
	inspectCmd.Flags().StringVar(&inspectDriver, "driver", "postgres", "Database driver: postgres, mysql or sqlite")
	inspectCmd.Flags().StringVar(&inspectDSN, "dsn", "", "Data source name passed to the driver")
	inspectCmd.Flags().StringVar(&inspectSchema, "schema", "", "Schema to read (provider default when empty)")
	inspectCmd.Flags().StringVar(&inspectMigrations, "migrations", "", "Directory of migrations to apply before reading")
	_ = inspectCmd.MarkFlagRequired("dsn")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	schemaExtractor, err := NewSchemaExtractor(inspectDriver, inspectSchema)
	if err != nil {
		return err
	}

	var migrations []Migration
	if inspectMigrations != "" {
		migrations, err = NewFileMigrationReader().DiscoverMigrations(inspectMigrations)
		if err != nil {
			return fmt.Errorf("failed to parse migrations: %w", err)
		}
	}

	dbManager := NewLiveDatabaseManager(inspectDriver, inspectDSN)
	return processDatabase(cmd.Context(), dbManager, schemaExtractor, migrations, cmd.OutOrStdout())
}
