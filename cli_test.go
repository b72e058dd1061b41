package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cli integration test in short mode")
	}

	if !isDockerAvailable() {
		t.Skip("docker not available, skipping integration test")
	}

	tempDir := writeMigrations(t, shopMigrations)

	t.Run("info_mode", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, tempDir)
		require.NoError(t, err)

		assert.Contains(t, output, "=== DATABASE SCHEMA ===")
		assert.Contains(t, output, "Table: customers")
		assert.Contains(t, output, "Model: models.Order")
		assert.Contains(t, output, "belongs to models.Customer via customer_id")
	})

	t.Run("export_mode", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "-e", tempDir)
		require.NoError(t, err)

		assert.Contains(t, output, `"modelClass":"models.Customer"`)
		assert.Contains(t, output, `"dbType":"postgres"`)
	})
}

func TestCLIInspectSQLite(t *testing.T) {
	migrationDir := writeMigrations(t, shopMigrations)
	dsn := filepath.Join(t.TempDir(), "shop.db")

	t.Run("info_mode", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "inspect", "--driver", "sqlite", "--dsn", dsn, "--migrations", migrationDir)
		require.NoError(t, err)

		assert.Contains(t, output, "Table: orders_products")
		assert.Contains(t, output, "Model: models.Customer\n  Table: customers (sqlite/default)\n  Primary Key: id\n")
		assert.Contains(t, output, "has many models.Order via customer_id")
		assert.NotContains(t, output, "Model: models.OrdersProduct")
	})

	snapshot := filepath.Join(t.TempDir(), "shop.yaml")

	t.Run("export_to_file", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "inspect", "--driver", "sqlite", "--dsn", dsn, "-e", "-o", snapshot)
		require.NoError(t, err)
		assert.Empty(t, output)

		data, err := os.ReadFile(snapshot)
		require.NoError(t, err)
		assert.Contains(t, string(data), "modelClass: models.Order")
	})

	t.Run("show_snapshot", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "show", snapshot)
		require.NoError(t, err)
		assert.Contains(t, output, "Model: models.Product")
	})

	t.Run("show_table", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "show", snapshot, "--table", "ORDERS")
		require.NoError(t, err)
		assert.Contains(t, output, "Model: models.Order\n")
		assert.NotContains(t, output, "Model: models.Customer")
	})

	t.Run("show_edges", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "show", snapshot, "--edges", "orders_products")
		require.NoError(t, err)
		assert.Contains(t, output, "orders -> products\n")
		assert.Contains(t, output, "products -> orders\n")
	})

	t.Run("show_db", func(t *testing.T) {
		resetCommand()
		output, err := execute(t, "show", snapshot, "--db", "default")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"customers", "orders", "products"}, splitLines(output))
	})

	t.Run("show_unknown_table", func(t *testing.T) {
		resetCommand()
		_, err := execute(t, "show", snapshot, "--table", "invoices")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table not found: invoices")
	})
}

func TestCLIErrorHandling(t *testing.T) {
	t.Run("missing_directory_argument", func(t *testing.T) {
		resetCommand()
		_, err := execute(t)
		assert.Error(t, err)
	})

	t.Run("inspect_requires_dsn", func(t *testing.T) {
		resetCommand()
		_, err := execute(t, "inspect", "--driver", "sqlite")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dsn")
	})

	t.Run("inspect_unknown_driver", func(t *testing.T) {
		resetCommand()
		_, err := execute(t, "inspect", "--driver", "oracle", "--dsn", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider: oracle")
	})

	t.Run("show_exclusive_flags", func(t *testing.T) {
		resetCommand()
		_, err := execute(t, "show", "snapshot.json", "--table", "a", "--db", "b")
		assert.Error(t, err)
	})
}

func TestCLIMCPMode(t *testing.T) {
	resetCommand()

	err := rootCmd.ParseFlags([]string{"--mcp"})
	require.NoError(t, err)
	assert.True(t, mcpMode)
	assert.NoError(t, rootCmd.Args(rootCmd, nil))
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range bytes.Split([]byte(s), []byte("\n")) {
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
