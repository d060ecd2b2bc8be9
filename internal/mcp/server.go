// Package mcp provides an MCP (Model Context Protocol) server that exposes
// lace-notify routing and inspection as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lace-ai/lace-notify/internal/core"
	"github.com/lace-ai/lace-notify/internal/integration"
	"github.com/lace-ai/lace-notify/internal/observability"
	"github.com/lace-ai/lace-notify/pkg/models"
)

// SnapshotReader is the read-only view of the snapshot store the server needs.
type SnapshotReader interface {
	Get(taskID string) (*models.Task, bool)
	GetAll() []models.Task
}

// Server wraps lace-notify services and exposes them as MCP tools.
type Server struct {
	server       *gomcp.Server
	orchestrator core.SessionOrchestrator
	snapshots    SnapshotReader
	agents       integration.AgentDirectory
	metricsCalc  observability.MetricsCalculator
}

// NewServer creates a new MCP server with the given service dependencies.
// metricsCalc may be nil if the delivery log is disabled.
func NewServer(orchestrator core.SessionOrchestrator, snapshots SnapshotReader, agents integration.AgentDirectory, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		orchestrator: orchestrator,
		snapshots:    snapshots,
		agents:       agents,
		metricsCalc:  metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "lace-notify", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type routeEventInput struct {
	Event string `json:"event" jsonschema:"required,the task lifecycle event as JSON, with kind, actor, and task fields"`
}

type routingResultOutput struct {
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

type routeEventOutput struct {
	TaskID    string                `json:"task_id"`
	Results   []routingResultOutput `json:"results"`
	Delivered int                   `json:"delivered"`
	Skipped   int                   `json:"skipped"`
	Failed    int                   `json:"failed"`
}

type getSnapshotInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier"`
}

type snapshotOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	CreatedBy  string `json:"created_by,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	NoteCount  int    `json:"note_count"`
	Updated    string `json:"updated,omitempty"`
}

type listSnapshotsInput struct{}

type listSnapshotsOutput struct {
	Tasks []snapshotOutput `json:"tasks"`
	Count int              `json:"count"`
}

type listAgentsInput struct{}

type agentOutput struct {
	ID        string `json:"id"`
	Transport string `json:"transport"`
	Disabled  bool   `json:"disabled,omitempty"`
}

type listAgentsOutput struct {
	Agents []agentOutput `json:"agents"`
	Count  int           `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	EventsRouted    int            `json:"events_routed"`
	Delivered       int            `json:"delivered"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	DeliveredByKind map[string]int `json:"delivered_by_kind"`
	ByTarget        map[string]int `json:"by_target"`
	OldestRecord    string         `json:"oldest_record,omitempty"`
	NewestRecord    string         `json:"newest_record,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "route_task_event",
		Description: "Route a task lifecycle event to the affected agents. Returns the per-notification outcomes.",
	}, s.handleRouteEvent)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task_snapshot",
		Description: "Get the last-seen snapshot of a task by ID, as used for transition detection.",
	}, s.handleGetSnapshot)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_task_snapshots",
		Description: "List all tracked task snapshots.",
	}, s.handleListSnapshots)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_agents",
		Description: "List the configured agents and their delivery transports.",
	}, s.handleListAgents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_delivery_metrics",
		Description: "Get aggregated delivery metrics from the delivery log, including outcome and per-agent counts.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleRouteEvent(ctx context.Context, _ *gomcp.CallToolRequest, input routeEventInput) (*gomcp.CallToolResult, routeEventOutput, error) {
	if input.Event == "" {
		return errorResult("event is required"), routeEventOutput{}, nil
	}

	event, err := integration.ParseEvent([]byte(input.Event))
	if err != nil {
		return errorResult(fmt.Sprintf("parsing event: %s", err)), routeEventOutput{}, nil
	}

	report, err := s.orchestrator.HandleEvent(ctx, event)
	if err != nil {
		return errorResult(fmt.Sprintf("routing event for %s: %s", event.Task.ID, err)), routeEventOutput{}, nil
	}

	out := routeEventOutput{
		TaskID:  event.Task.ID,
		Results: make([]routingResultOutput, len(report.Results)),
	}
	for i, res := range report.Results {
		out.Results[i] = routingResultOutput{
			Target:  res.Intent.Target,
			Kind:    string(res.Intent.Kind),
			Outcome: string(res.Outcome),
			Detail:  res.Detail,
		}
	}
	out.Delivered, out.Skipped, out.Failed = report.Counts()

	return nil, out, nil
}

func (s *Server) handleGetSnapshot(_ context.Context, _ *gomcp.CallToolRequest, input getSnapshotInput) (*gomcp.CallToolResult, snapshotOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), snapshotOutput{}, nil
	}

	task, ok := s.snapshots.Get(input.TaskID)
	if !ok {
		return errorResult(fmt.Sprintf("no snapshot for task %s", input.TaskID)), snapshotOutput{}, nil
	}

	return nil, snapshotToOutput(*task), nil
}

func (s *Server) handleListSnapshots(_ context.Context, _ *gomcp.CallToolRequest, _ listSnapshotsInput) (*gomcp.CallToolResult, listSnapshotsOutput, error) {
	tasks := s.snapshots.GetAll()

	out := listSnapshotsOutput{
		Tasks: make([]snapshotOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, task := range tasks {
		out.Tasks[i] = snapshotToOutput(task)
	}

	return nil, out, nil
}

func (s *Server) handleListAgents(_ context.Context, _ *gomcp.CallToolRequest, _ listAgentsInput) (*gomcp.CallToolResult, listAgentsOutput, error) {
	agents := s.agents.List()

	out := listAgentsOutput{
		Agents: make([]agentOutput, len(agents)),
		Count:  len(agents),
	}
	for i, agent := range agents {
		out.Agents[i] = agentOutput{
			ID:        agent.ID,
			Transport: string(agent.Transport),
			Disabled:  agent.Disabled,
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (delivery log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		EventsRouted:    metrics.EventsRouted,
		Delivered:       metrics.Delivered,
		Skipped:         metrics.Skipped,
		Failed:          metrics.Failed,
		DeliveredByKind: metrics.DeliveredByKind,
		ByTarget:        metrics.ByTarget,
	}
	if metrics.OldestRecord != nil {
		out.OldestRecord = metrics.OldestRecord.Format(time.RFC3339)
	}
	if metrics.NewestRecord != nil {
		out.NewestRecord = metrics.NewestRecord.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func snapshotToOutput(t models.Task) snapshotOutput {
	out := snapshotOutput{
		ID:         t.ID,
		Title:      t.Title,
		Status:     string(t.Status),
		Priority:   string(t.Priority),
		CreatedBy:  t.CreatedBy,
		AssignedTo: t.AssignedTo,
		NoteCount:  len(t.Notes),
	}
	if !t.Updated.IsZero() {
		out.Updated = t.Updated.Format(time.RFC3339)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		DeliveredByKind: make(map[string]int),
		ByTarget:        make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
