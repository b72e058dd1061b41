package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alc6/metareg/providers"
)

// shopMigrations works on both postgres and sqlite
var shopMigrations = map[string]string{
	"001_create_customers.up.sql": `
		create table customers (
			id integer primary key,
			email varchar(255) not null
		);
	`,
	"001_create_customers.down.sql": "drop table customers;",
	"002_create_orders.up.sql": `
		create table orders (
			id integer primary key,
			customer_id integer not null references customers(id),
			total decimal(10,2)
		);
		create index idx_orders_customer_id on orders(customer_id);
	`,
	"003_create_products.up.sql": `
		create table products (
			id integer primary key,
			name varchar(100) not null
		);
		create table orders_products (
			order_id integer not null references orders(id),
			product_id integer not null references products(id)
		);
	`,
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
	}
	return dir
}

// shopTables is what a provider reports for shopMigrations
func shopTables() []providers.Table {
	id := providers.Column{Name: "id", DataType: "integer", IsPrimaryKey: true}
	fk := func(name string) providers.Column {
		return providers.Column{Name: name, DataType: "integer"}
	}
	return []providers.Table{
		{
			Name:    "customers",
			Columns: []providers.Column{id, {Name: "email", DataType: "character varying"}},
		},
		{
			Name:        "orders",
			Columns:     []providers.Column{id, fk("customer_id")},
			Indexes:     []providers.Index{{Name: "idx_orders_customer_id", Columns: []string{"customer_id"}}},
			ForeignKeys: []providers.ForeignKey{{Column: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id"}},
		},
		{
			Name:    "products",
			Columns: []providers.Column{id, {Name: "name", DataType: "character varying"}},
		},
		{
			Name:    "orders_products",
			Columns: []providers.Column{fk("order_id"), fk("product_id")},
			ForeignKeys: []providers.ForeignKey{
				{Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "id"},
				{Column: "product_id", ReferencedTable: "products", ReferencedColumn: "id"},
			},
		},
	}
}

func resetCommand() {
	exportMode = false
	mcpMode = false
	outputFormat = ""
	outputFile = ""
	inspectDriver, inspectDSN, inspectSchema, inspectMigrations = "", "", "", ""
	showTable, showEdges, showDB = "", "", ""
	appConfig = defaultConfig()

	rootCmd.ResetFlags()
	inspectCmd.ResetFlags()
	showCmd.ResetFlags()
	registerFlags()
}

func isDockerAvailable() bool {
	if os.Getenv("DOCKER_HOST") != "" {
		return true
	}
	_, err := os.Stat("/var/run/docker.sock")
	return err == nil
}
