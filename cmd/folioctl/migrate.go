package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every embedded migration that has not run yet. Safe to run
concurrently with a starting server: migrations hold an advisory lock.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, pool, err := openPool(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := pgdb.Migrate(cmd.Context(), pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
	}
	return nil
}
