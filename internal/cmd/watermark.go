package cmd

import (
	"fmt"
	"io"
	"time"

	"storefront-sync/internal/features/orders/ports"

	"github.com/spf13/cobra"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark",
	Short: "Inspect or reset the poll watermark of a tenant",
}

var watermarkGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored watermark and the last poll",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		status, err := rt.module.Runner.Status(cmd.Context(), rt.tenant())
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var watermarkResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the watermark so the next poll falls back to the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.module.Runner.ResetWatermark(cmd.Context(), rt.tenant()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watermark reset for %s\n", rt.tenant())
		return nil
	},
}

func init() {
	watermarkCmd.AddCommand(watermarkGetCmd, watermarkResetCmd)
	rootCmd.AddCommand(watermarkCmd)
}

func printStatus(w io.Writer, s *ports.SyncStatus) {
	if s.Watermark == nil {
		fmt.Fprintf(w, "Tenant %s: no watermark stored\n", s.TenantID)
	} else {
		fmt.Fprintf(w, "Tenant %s: watermark %s\n", s.TenantID, s.Watermark.Format(time.RFC3339))
	}

	if s.LastRun == nil {
		fmt.Fprintln(w, "Last run: never")
		return
	}
	r := s.LastRun
	fmt.Fprintf(w, "Last run: %s (%s)\n", r.FinishedAt.Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "New: %d | Updated: %d | Skipped: %d | Errors: %d\n", r.Created, r.Updated, r.Skipped, r.Errors)
}
