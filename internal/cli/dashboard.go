package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelDeliveries
	panelAgents
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	statusCounts map[string]int
	deliveries   *deliverySnapshot
	agents       []agentSnapshot

	// State.
	loading bool
	err     error
}

type deliverySnapshot struct {
	eventsRouted int
	delivered    int
	skipped      int
	failed       int
	byTarget     map[string]int
}

type agentSnapshot struct {
	id        string
	transport string
	disabled  bool
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	statusCounts map[string]int
	deliveries   *deliverySnapshot
	agents       []agentSnapshot
	err          error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBlocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusCancelled  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	outcomeDelivered = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	outcomeSkipped   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	outcomeFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel:  panelTasks,
		loading:      true,
		statusCounts: make(map[string]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusCounts = msg.statusCounts
		m.deliveries = msg.deliveries
		m.agents = msg.agents
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Lace Notify Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	tasksPanel := m.renderTasksPanel()
	deliveriesPanel := m.renderDeliveriesPanel()
	agentsPanel := m.renderAgentsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, colWidth-4)
		deliveriesPanel = m.applyPanelStyle(panelDeliveries, deliveriesPanel, colWidth-4)
		agentsPanel = m.applyPanelStyle(panelAgents, agentsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasksPanel, deliveriesPanel, agentsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, panelWidth)
		deliveriesPanel = m.applyPanelStyle(panelDeliveries, deliveriesPanel, panelWidth)
		agentsPanel = m.applyPanelStyle(panelAgents, agentsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, tasksPanel, deliveriesPanel, agentsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tracked tasks"))
	b.WriteString("\n")

	if len(m.statusCounts) == 0 {
		b.WriteString("  No task snapshots.")
		return b.String()
	}

	// Display in lifecycle order.
	order := []string{"in_progress", "blocked", "pending", "completed", "cancelled"}
	for _, status := range order {
		count, ok := m.statusCounts[status]
		if !ok || count == 0 {
			continue
		}
		label := fmt.Sprintf("  %-14s %d", status, count)
		b.WriteString(styleForStatus(status).Render(label))
		b.WriteString("\n")
	}

	total := 0
	for _, c := range m.statusCounts {
		total += c
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d", total))

	return b.String()
}

func (m dashboardModel) renderDeliveriesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Deliveries (7d)"))
	b.WriteString("\n")

	if m.deliveries == nil {
		b.WriteString("  No delivery log available.")
		return b.String()
	}

	d := m.deliveries
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Events", d.eventsRouted))
	b.WriteString(outcomeDelivered.Render(fmt.Sprintf("  %-14s %d", "Delivered", d.delivered)))
	b.WriteString("\n")
	b.WriteString(outcomeSkipped.Render(fmt.Sprintf("  %-14s %d", "Skipped", d.skipped)))
	b.WriteString("\n")
	b.WriteString(outcomeFailed.Render(fmt.Sprintf("  %-14s %d", "Failed", d.failed)))
	b.WriteString("\n")

	if len(d.byTarget) > 0 {
		b.WriteString("\n  By agent:\n")
		for target, count := range d.byTarget {
			b.WriteString(fmt.Sprintf("    %-12s %d\n", target, count))
		}
	}

	return b.String()
}

func (m dashboardModel) renderAgentsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Agents"))
	b.WriteString("\n")

	if len(m.agents) == 0 {
		b.WriteString("  No agents configured.")
		return b.String()
	}

	for _, a := range m.agents {
		line := fmt.Sprintf("  %-14s %s", a.id, a.transport)
		if a.disabled {
			b.WriteString(disabledStyle.Render(line + " (disabled)"))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d agent(s)", len(m.agents)))

	return b.String()
}

func styleForStatus(status string) lipgloss.Style {
	switch status {
	case "in_progress":
		return statusInProgress
	case "completed":
		return statusCompleted
	case "blocked":
		return statusBlocked
	case "pending":
		return statusPending
	case "cancelled":
		return statusCancelled
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		statusCounts: make(map[string]int),
	}

	// Load snapshot counts from the snapshot store.
	if Snapshots != nil {
		for _, task := range Snapshots.GetAll() {
			result.statusCounts[string(task.Status)]++
		}
	}

	// Load delivery counts from the metrics calculator.
	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.deliveries = &deliverySnapshot{
			eventsRouted: metrics.EventsRouted,
			delivered:    metrics.Delivered,
			skipped:      metrics.Skipped,
			failed:       metrics.Failed,
			byTarget:     metrics.ByTarget,
		}
	}

	// Load agents from the directory.
	if Agents != nil {
		for _, a := range Agents.List() {
			result.agents = append(result.agents, agentSnapshot{
				id:        a.ID,
				transport: string(a.Transport),
				disabled:  a.Disabled,
			})
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for routing activity",
	Long: `Launch an interactive terminal dashboard showing tracked task
snapshots, delivery outcomes, and configured agents.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Snapshots == nil {
			return fmt.Errorf("snapshot store not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
