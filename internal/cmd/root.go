package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	tenantID   string
)

var rootCmd = &cobra.Command{
	Use:   "syncctl",
	Short: "Storefront Sync - WooCommerce order reconciliation",
	Long: `syncctl operates the storefront sync engine from the command line.

It shares configuration with the API server and can apply the schema,
run a poll, resync a single order, or inspect and reset the watermark
of a tenant.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding the .env file")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "Tenant ID (defaults to DEFAULT_TENANT_ID)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
