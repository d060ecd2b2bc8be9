package models

// AgentTransport identifies how messages reach an agent.
type AgentTransport string

const (
	TransportWebhook AgentTransport = "webhook"
	TransportOutbox  AgentTransport = "outbox"
)

// AgentConfig describes one agent the router can deliver to.
// URL is required for webhook transports; OutboxDir for outbox transports
// (relative paths resolve against the base path). Disabled agents are
// treated as unavailable, not as configuration errors.
type AgentConfig struct {
	ID        string         `yaml:"id" json:"id"`
	Transport AgentTransport `yaml:"transport" json:"transport"`
	URL       string         `yaml:"url,omitempty" json:"url,omitempty"`
	OutboxDir string         `yaml:"outbox,omitempty" json:"outbox,omitempty"`
	Disabled  bool           `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// DeliveryMode selects how the router dispatches a batch of intents.
type DeliveryMode string

const (
	DeliverySequential DeliveryMode = "sequential"
	DeliveryConcurrent DeliveryMode = "concurrent"
)

// GlobalConfig holds settings from the .lacenotify file.
type GlobalConfig struct {
	// NoteThreshold is the minimum note length, in characters, before a
	// note_added event notifies the task creator.
	NoteThreshold int `yaml:"note_threshold"`

	// Delivery selects sequential or concurrent intent dispatch.
	Delivery DeliveryMode `yaml:"delivery"`

	// MaxConcurrent bounds in-flight deliveries in concurrent mode.
	MaxConcurrent int `yaml:"max_concurrent"`

	// SpoolDir is where the task manager drops event files, relative to
	// the base path unless absolute.
	SpoolDir string `yaml:"spool_dir"`

	// Agents lists the deliverable agent transports.
	Agents []AgentConfig `yaml:"agents"`
}
