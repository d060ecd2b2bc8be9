package cli

import (
	"github.com/lace-ai/lace-notify/internal/core"
	"github.com/lace-ai/lace-notify/internal/integration"
	"github.com/lace-ai/lace-notify/internal/observability"
	"github.com/lace-ai/lace-notify/internal/storage"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath     string
	Orchestrator core.SessionOrchestrator
	Snapshots    storage.SnapshotManager
	Agents       integration.AgentDirectory
	Spool        integration.EventSpool
	Watcher      integration.SpoolWatcher
	DeliveryLog  observability.DeliveryLog
	MetricsCalc  observability.MetricsCalculator
)
