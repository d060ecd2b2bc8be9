// Package integration connects lace-notify to the outside world: agent
// delivery transports, the event spool written by the Lace task manager,
// and the filesystem watcher over it.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lace-ai/lace-notify/internal/notify"
	"github.com/lace-ai/lace-notify/pkg/models"
)

// AgentDirectory resolves agent identities to delivery handles and lists
// the configured agents. It satisfies notify.RecipientResolver.
type AgentDirectory interface {
	Resolve(identity string) notify.RecipientHandle
	List() []models.AgentConfig
}

// agentDirectory implements AgentDirectory over the static agent section of
// the configuration. Unknown and disabled agents resolve to nil, which the
// router reports as skipped.
type agentDirectory struct {
	basePath string
	agents   map[string]models.AgentConfig
	order    []string
	client   *http.Client
}

// NewAgentDirectory creates an AgentDirectory from configured agents.
// Relative outbox paths resolve against basePath.
func NewAgentDirectory(basePath string, agents []models.AgentConfig) AgentDirectory {
	dir := &agentDirectory{
		basePath: basePath,
		agents:   make(map[string]models.AgentConfig, len(agents)),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, agent := range agents {
		if agent.ID == "" {
			continue
		}
		if _, exists := dir.agents[agent.ID]; exists {
			continue
		}
		dir.agents[agent.ID] = agent
		dir.order = append(dir.order, agent.ID)
	}
	return dir
}

func (d *agentDirectory) Resolve(identity string) notify.RecipientHandle {
	agent, ok := d.agents[identity]
	if !ok || agent.Disabled {
		return nil
	}

	switch agent.Transport {
	case models.TransportWebhook:
		return &webhookRecipient{agentID: agent.ID, url: agent.URL, client: d.client}
	case models.TransportOutbox:
		outbox := agent.OutboxDir
		if !filepath.IsAbs(outbox) {
			outbox = filepath.Join(d.basePath, outbox)
		}
		return &outboxRecipient{agentID: agent.ID, dir: outbox}
	default:
		return nil
	}
}

func (d *agentDirectory) List() []models.AgentConfig {
	result := make([]models.AgentConfig, 0, len(d.order))
	for _, id := range d.order {
		result = append(result, d.agents[id])
	}
	return result
}

// webhookRecipient delivers a message by POSTing JSON to the agent's
// webhook endpoint.
type webhookRecipient struct {
	agentID string
	url     string
	client  *http.Client
}

type webhookMessage struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

func (r *webhookRecipient) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookMessage{Agent: r.agentID, Text: text})
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to agent webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("agent webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// outboxRecipient delivers a message by writing a markdown file with YAML
// frontmatter into the agent's outbox directory, where the agent's session
// picks it up.
type outboxRecipient struct {
	agentID string
	dir     string
}

type outboxFrontmatter struct {
	To   string `yaml:"to"`
	Date string `yaml:"date"`
}

func (r *outboxRecipient) Send(_ context.Context, text string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating outbox directory: %w", err)
	}

	fm := outboxFrontmatter{
		To:   r.agentID,
		Date: time.Now().UTC().Format(time.RFC3339),
	}
	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshaling outbox frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fmBytes)
	sb.WriteString("---\n\n")
	sb.WriteString(text)
	sb.WriteString("\n")

	filename := fmt.Sprintf("msg-%d.md", time.Now().UnixNano())
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing outbox file: %w", err)
	}
	return nil
}
