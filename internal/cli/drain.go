package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Route all pending events in the spool",
	Long: `Process every unrouted event file in the spool directory, in filename
order, and mark each as routed once handled.

An event that fails to route stops the drain so it can be retried;
individual failed deliveries within an event do not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil || Spool == nil {
			return fmt.Errorf("spool not initialized")
		}

		pending, err := Spool.Pending()
		if err != nil {
			return fmt.Errorf("listing pending events: %w", err)
		}

		if len(pending) == 0 {
			fmt.Println("No pending events.")
			return nil
		}

		for _, entry := range pending {
			report, err := Orchestrator.HandleEvent(cmd.Context(), entry.Event)
			if err != nil {
				return fmt.Errorf("routing %s: %w", entry.Path, err)
			}
			if err := Spool.MarkRouted(entry.Path); err != nil {
				return fmt.Errorf("marking %s routed: %w", entry.Path, err)
			}
			if err := printReport(entry.Event, report); err != nil {
				return err
			}
		}

		fmt.Printf("Drained %d event(s).\n", len(pending))
		return nil
	},
}

func init() {
	drainCmd.Flags().BoolVar(&routeJSON, "json", false, "Output routing reports as JSON")
	rootCmd.AddCommand(drainCmd)
}
