package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lace-ai/lace-notify/pkg/models"
)

var agentsJSON bool

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List configured agents and their transports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Agents == nil {
			return fmt.Errorf("agent directory not initialized")
		}

		agents := Agents.List()

		if agentsJSON {
			data, err := json.MarshalIndent(agents, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting agents as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(agents) == 0 {
			fmt.Println("No agents configured.")
			return nil
		}

		fmt.Printf("%-20s %-10s %s\n", "AGENT", "TRANSPORT", "ENDPOINT")
		for _, agent := range agents {
			endpoint := agent.URL
			if agent.Transport == models.TransportOutbox {
				endpoint = agent.OutboxDir
			}
			id := agent.ID
			if agent.Disabled {
				id += " (disabled)"
			}
			fmt.Printf("%-20s %-10s %s\n", id, agent.Transport, endpoint)
		}
		return nil
	},
}

func init() {
	agentsCmd.Flags().BoolVar(&agentsJSON, "json", false, "Output agents as JSON")
	rootCmd.AddCommand(agentsCmd)
}
