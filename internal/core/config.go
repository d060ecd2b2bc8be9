// Package core contains the business logic glue for lace-notify: the
// configuration manager and the session orchestrator that feeds task
// lifecycle events through the notification router.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// ConfigurationManager loads and validates the .lacenotify configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the root directory where .lacenotify resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		NoteThreshold: 50,
		Delivery:      models.DeliverySequential,
		MaxConcurrent: 4,
		SpoolDir:      "events",
	}
}

// LoadGlobalConfig reads the .lacenotify file from the base path using
// Viper. If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".lacenotify")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("notify.note_threshold", cfg.NoteThreshold)
	v.SetDefault("notify.delivery", string(cfg.Delivery))
	v.SetDefault("notify.max_concurrent", cfg.MaxConcurrent)
	v.SetDefault("spool.dir", cfg.SpoolDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .lacenotify: %w", err)
	}

	// Use IsSet to distinguish "not set" from an explicit zero threshold.
	if v.IsSet("notify.note_threshold") {
		cfg.NoteThreshold = v.GetInt("notify.note_threshold")
	}
	cfg.Delivery = models.DeliveryMode(v.GetString("notify.delivery"))
	cfg.MaxConcurrent = v.GetInt("notify.max_concurrent")
	cfg.SpoolDir = v.GetString("spool.dir")

	// Parse the agents section.
	var agents []models.AgentConfig
	rawAgents := v.Get("agents")
	if rawAgents != nil {
		if agentSlice, ok := rawAgents.([]interface{}); ok {
			for _, item := range agentSlice {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				agent := models.AgentConfig{}
				if id, ok := m["id"].(string); ok {
					agent.ID = id
				}
				if transport, ok := m["transport"].(string); ok {
					agent.Transport = models.AgentTransport(transport)
				}
				if url, ok := m["url"].(string); ok {
					agent.URL = url
				}
				if outbox, ok := m["outbox"].(string); ok {
					agent.OutboxDir = outbox
				}
				if disabled, ok := m["disabled"].(bool); ok {
					agent.Disabled = disabled
				}
				agents = append(agents, agent)
			}
		}
	}
	cfg.Agents = agents

	return cfg, nil
}

// validTransports is the set of allowed AgentTransport values.
var validTransports = map[models.AgentTransport]bool{
	models.TransportWebhook: true,
	models.TransportOutbox:  true,
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.NoteThreshold < 0 {
		errs = append(errs, fmt.Sprintf("notify.note_threshold must be non-negative, got %d", cfg.NoteThreshold))
	}

	if cfg.Delivery != models.DeliverySequential && cfg.Delivery != models.DeliveryConcurrent {
		errs = append(errs, fmt.Sprintf(
			"notify.delivery %q is invalid, must be one of: sequential, concurrent", cfg.Delivery))
	}

	if cfg.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("notify.max_concurrent must be at least 1, got %d", cfg.MaxConcurrent))
	}

	if cfg.SpoolDir == "" {
		errs = append(errs, "spool.dir must not be empty")
	}

	seen := make(map[string]bool, len(cfg.Agents))
	for _, agent := range cfg.Agents {
		if agent.ID == "" {
			errs = append(errs, "agents entries must have a non-empty id")
			continue
		}
		if seen[agent.ID] {
			errs = append(errs, fmt.Sprintf("agent id %q is configured more than once", agent.ID))
		}
		seen[agent.ID] = true

		if !validTransports[agent.Transport] {
			errs = append(errs, fmt.Sprintf(
				"agent %q transport %q is invalid, must be one of: webhook, outbox", agent.ID, agent.Transport))
			continue
		}
		if agent.Transport == models.TransportWebhook && agent.URL == "" {
			errs = append(errs, fmt.Sprintf("agent %q uses the webhook transport but has no url", agent.ID))
		}
		if agent.Transport == models.TransportOutbox && agent.OutboxDir == "" {
			errs = append(errs, fmt.Sprintf("agent %q uses the outbox transport but has no outbox dir", agent.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
