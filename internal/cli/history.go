package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lace-ai/lace-notify/internal/observability"
)

var (
	historyJSON    bool
	historySince   string
	historyOutcome string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the delivery log",
	Long: `Show recent routing activity from the delivery log.

Each routed event produces one event.received record plus one
notify.delivered, notify.skipped, or notify.failed record per
notification.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DeliveryLog == nil {
			return fmt.Errorf("delivery log not initialized")
		}

		sinceTime, err := parseSinceDuration(historySince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		filter := observability.RecordFilter{Since: &sinceTime}
		switch historyOutcome {
		case "":
		case "delivered", "skipped", "failed":
			filter.Type = "notify." + historyOutcome
		default:
			return fmt.Errorf("invalid --outcome %q (use delivered, skipped, or failed)", historyOutcome)
		}

		records, err := DeliveryLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading delivery log: %w", err)
		}

		if historyJSON {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting records as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(records) == 0 {
			fmt.Println("No records.")
			return nil
		}

		for _, record := range records {
			fmt.Printf("%s  %-18s %s\n",
				record.Time.Format(time.RFC3339), record.Type, formatRecordData(record.Data))
		}
		return nil
	},
}

// formatRecordData renders the interesting record fields in a stable order.
func formatRecordData(data map[string]any) string {
	out := ""
	for _, key := range []string{"task_id", "kind", "target", "actor", "detail"} {
		value, ok := data[key]
		if !ok {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", key, value)
	}
	return out
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output records as JSON")
	historyCmd.Flags().StringVar(&historySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "Filter by outcome (delivered, skipped, failed)")
	rootCmd.AddCommand(historyCmd)
}
