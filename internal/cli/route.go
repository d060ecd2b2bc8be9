package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lace-ai/lace-notify/internal/integration"
	"github.com/lace-ai/lace-notify/pkg/models"
)

var routeJSON bool

var routeCmd = &cobra.Command{
	Use:   "route [event-file]",
	Short: "Route a single task event to the affected agents",
	Long: `Route one task lifecycle event through the notification engine.

The event is read as JSON from the given file, or from stdin when no file
is given or the file is "-". The event is routed against the last-seen
snapshot of its task and the snapshot is updated afterwards.

Skipped and failed deliveries are reported per notification and are not
errors; the command fails only when the event itself cannot be handled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil {
			return fmt.Errorf("orchestrator not initialized")
		}

		data, err := readEventPayload(args)
		if err != nil {
			return err
		}

		event, err := integration.ParseEvent(data)
		if err != nil {
			return fmt.Errorf("parsing event: %w", err)
		}

		report, err := Orchestrator.HandleEvent(cmd.Context(), event)
		if err != nil {
			return fmt.Errorf("routing event: %w", err)
		}

		return printReport(event, report)
	},
}

func readEventPayload(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return data, nil
}

// printReport writes the routing outcome for one event, honoring --json.
func printReport(event models.TaskLifecycleEvent, report models.RoutingReport) error {
	if routeJSON {
		out := struct {
			TaskID  string                 `json:"task_id"`
			Kind    string                 `json:"kind"`
			Results []models.RoutingResult `json:"results"`
		}{
			TaskID:  event.Task.ID,
			Kind:    string(event.Kind),
			Results: report.Results,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting report as JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(report.Results) == 0 {
		fmt.Printf("%s %s: no notifications\n", event.Task.ID, event.Kind)
		return nil
	}

	delivered, skipped, failed := report.Counts()
	fmt.Printf("%s %s: %d delivered, %d skipped, %d failed\n", event.Task.ID, event.Kind, delivered, skipped, failed)
	for _, res := range report.Results {
		line := fmt.Sprintf("  %-10s %-14s -> %s", res.Outcome, res.Intent.Kind, res.Intent.Target)
		if res.Detail != "" {
			line += fmt.Sprintf(" (%s)", res.Detail)
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Output the routing report as JSON")
	rootCmd.AddCommand(routeCmd)
}
