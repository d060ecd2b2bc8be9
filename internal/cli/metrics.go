package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display delivery metrics",
	Long: `Display aggregated metrics derived from the delivery log.

Metrics include routed event counts, delivery outcomes, deliveries by
notification kind, and deliveries by target agent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (delivery log may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Table format.
		fmt.Printf("Delivery metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events routed:", metrics.EventsRouted)
		fmt.Printf("  %-24s %d\n", "Delivered:", metrics.Delivered)
		fmt.Printf("  %-24s %d\n", "Skipped:", metrics.Skipped)
		fmt.Printf("  %-24s %d\n", "Failed:", metrics.Failed)

		if len(metrics.DeliveredByKind) > 0 {
			fmt.Println("\n  Delivered by kind:")
			for kind, count := range metrics.DeliveredByKind {
				fmt.Printf("    %-20s %d\n", kind+":", count)
			}
		}

		if len(metrics.ByTarget) > 0 {
			fmt.Println("\n  Notifications by agent:")
			for target, count := range metrics.ByTarget {
				fmt.Printf("    %-20s %d\n", target+":", count)
			}
		}

		if metrics.OldestRecord != nil {
			fmt.Printf("\n  %-24s %s\n", "Oldest record:", metrics.OldestRecord.Format(time.RFC3339))
		}
		if metrics.NewestRecord != nil {
			fmt.Printf("  %-24s %s\n", "Newest record:", metrics.NewestRecord.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
