package main

import (
	"fmt"

	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down|status>",
	Short:     "Apply or inspect schema migrations",
	Long:      "Run the embedded goose migrations. 'down' rolls back a single version.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown), string(database.MigrateStatus)},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		db, err := openDB(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context(), database.MigrationDirection(args[0])); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
