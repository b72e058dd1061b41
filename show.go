package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alc6/metareg/providers"
)

var (
	showTable string
	showEdges string
	showDB    string
)

var showCmd = &cobra.Command{
	Use:   "show SNAPSHOT",
	Short: "Query a registry snapshot",
	Long: `show imports a snapshot written by "metareg -e" (format taken from the file
extension) and prints it, or answers a single lookup:

  --table T   the model stored for table T
  --edges J   the tables linked through join table J
  --db NAME   the tables registered for database NAME`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSnapshot(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func registerShowFlags() {
	if showCmd.Flags().Lookup("table") != nil {
		return
	}
	showCmd.Flags().StringVar(&showTable, "table", "", "Show the model of a table")
	showCmd.Flags().StringVar(&showEdges, "edges", "", "List the tables linked by a join table")
	showCmd.Flags().StringVar(&showDB, "db", "", "List the tables of a database")
	showCmd.MarkFlagsMutuallyExclusive("table", "edges", "db")
}

func showSnapshot(w io.Writer, path string) error {
	registry, err := readSnapshot(path)
	if err != nil {
		return err
	}

	switch {
	case showTable != "":
		d, ok := registry.ByTableName(showTable)
		if !ok {
			return fmt.Errorf("table not found: %s", showTable)
		}
		fmt.Fprint(w, providers.FormatModel(registry, d))
	case showEdges != "":
		edges, err := registry.EdgesForJoinTable(showEdges)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(edges); i += 2 {
			fmt.Fprintf(w, "%s -> %s\n", edges[i], edges[i+1])
		}
	case showDB != "":
		for _, table := range registry.TableNamesForDB(showDB) {
			fmt.Fprintln(w, table)
		}
	default:
		fmt.Fprint(w, providers.FormatMetaModels(registry))
	}

	return nil
}
