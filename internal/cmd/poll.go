package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"storefront-sync/internal/features/orders/domain"

	"github.com/spf13/cobra"
)

var (
	pollSince   string
	pollVerbose bool
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Pull modified orders from WooCommerce and reconcile them",
	Long: `Fetch every order modified since the tenant watermark (or --since)
and sync it into the sales ledger. The watermark only moves forward
past orders that synced cleanly.`,
	Args: cobra.NoArgs,
	RunE: runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)

	pollCmd.Flags().StringVar(&pollSince, "since", "", "RFC3339 start of the window, overrides the watermark")
	pollCmd.Flags().BoolVarP(&pollVerbose, "verbose", "v", false, "Print the result of every order")
}

func runPoll(cmd *cobra.Command, args []string) error {
	since, err := parseSince(pollSince)
	if err != nil {
		return err
	}

	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	summary, err := rt.module.Runner.Poll(cmd.Context(), rt.tenant(), since)
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	printSummary(cmd.OutOrStdout(), summary, pollVerbose)
	return nil
}

func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--since must be RFC3339: %w", err)
	}
	return &t, nil
}

func printSummary(w io.Writer, s *domain.PollSummary, verbose bool) {
	fmt.Fprintf(w, "Tenant %s: %d orders since %s\n", s.TenantID, s.Fetched, s.Since.Format(time.RFC3339))
	fmt.Fprintf(w, "New: %d | Updated: %d | Skipped: %d | Errors: %d\n", s.Created, s.Updated, s.Skipped, s.Errors)
	fmt.Fprintf(w, "Watermark: %s\n", s.Watermark.Format(time.RFC3339))

	if !verbose || len(s.Results) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tACTION\tID\tERROR")
	for _, r := range s.Results {
		action := string(r.Action)
		if action == "" {
			action = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.OrderNumber, action, r.OrderID, r.Error)
	}
	tw.Flush()
}
