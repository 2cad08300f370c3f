package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antbear/pwnstore/internal/database"
	"github.com/antbear/pwnstore/internal/schema"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:          "pwnstore",
	Short:        "pwnstore - schema-versioned store for PwnEyes connections",
	Long:         "pwnstore opens the PwnEyes SQLite store, upgrades its schema and edits the saved connections.",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $PWNEYES_DIR/pwneyes.db)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log migration steps to stderr")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newConnCmd())
	rootCmd.AddCommand(newPrefCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore opens the store and brings it up to the latest schema.
func openStore(granularity schema.Granularity) (*database.Context, func(), error) {
	logger := newLogger()
	dbCtx, err := database.CreateDatabase(dbPath,
		database.WithLogger(logger),
		database.WithGranularity(granularity),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	closeFn := func() {
		_ = database.CloseDatabase(dbCtx)
		_ = logger.Sync()
	}
	return dbCtx, closeFn, nil
}
