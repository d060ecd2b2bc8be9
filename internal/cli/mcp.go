package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	lacemcp "github.com/lace-ai/lace-notify/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the lace-notify MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lace-notify MCP server on stdio",
	Long: `Start the lace-notify MCP server on stdio transport.

The server exposes routing and inspection as MCP tools that AI coding
assistants can call: route_task_event, get_task_snapshot,
list_task_snapshots, list_agents, get_delivery_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil {
			return fmt.Errorf("orchestrator not initialized")
		}

		srv := lacemcp.NewServer(Orchestrator, Snapshots, Agents, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
