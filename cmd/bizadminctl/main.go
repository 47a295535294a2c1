// Command bizadminctl runs administrative tasks against the bizadmin
// database: migrations, reference data seeding and principal management.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/BradenHooton/bizadmin/internal/config"
	"github.com/BradenHooton/bizadmin/internal/database"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "bizadminctl",
	Short:         "Administer a bizadmin deployment",
	Long:          "Run migrations, seed reference data and manage principals using the database settings from the environment.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// openDB connects using the DB_* environment. Tests replace it.
var openDB = func(ctx context.Context, logger *slog.Logger) (*database.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	return database.NewConnection(ctx, cfg, logger)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return pkglogger.NewWithWriter(cmd.ErrOrStderr(), logLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
