package cmd

import (
	"fmt"

	"storefront-sync/internal/core/config"
	"storefront-sync/internal/core/database"
	"storefront-sync/internal/core/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the sales ledger tables",
	Long: `Apply the schema used by the sync engine. Every statement is
idempotent, so running it against an existing database is safe.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Schema applied to %s\n", cfg.Database.Name)
	return nil
}
