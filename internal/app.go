// Package internal provides the App struct that wires all components of the
// lace-notify routing engine together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/lace-ai/lace-notify/internal/cli"
	"github.com/lace-ai/lace-notify/internal/core"
	"github.com/lace-ai/lace-notify/internal/integration"
	"github.com/lace-ai/lace-notify/internal/notify"
	"github.com/lace-ai/lace-notify/internal/observability"
	"github.com/lace-ai/lace-notify/internal/storage"
	"github.com/lace-ai/lace-notify/pkg/models"
)

// App holds all service dependencies for the lace-notify system.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	SnapshotMgr storage.SnapshotManager

	// Notification engine
	Classifier notify.EventClassifier
	Router     notify.Router

	// Core services
	Orchestrator core.SessionOrchestrator

	// Integration services
	Agents  integration.AgentDirectory
	Spool   integration.EventSpool
	Watcher integration.SpoolWatcher

	// Observability
	DeliveryLog observability.DeliveryLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of the lace-notify system.
// basePath is the root directory where all data is stored (typically the
// directory containing .lacenotify).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		// Use defaults if config file is missing.
		globalCfg = &models.GlobalConfig{
			NoteThreshold: notify.DefaultNoteThreshold,
			Delivery:      models.DeliverySequential,
			MaxConcurrent: 4,
			SpoolDir:      "events",
		}
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, err
	}
	app.Config = globalCfg

	// --- Storage layer ---
	app.SnapshotMgr = storage.NewSnapshotManager(basePath)
	_ = app.SnapshotMgr.Load() // Non-fatal: empty store on first use.

	// --- Integration services ---
	app.Agents = integration.NewAgentDirectory(basePath, globalCfg.Agents)

	spoolDir := globalCfg.SpoolDir
	if !filepath.IsAbs(spoolDir) {
		spoolDir = filepath.Join(basePath, spoolDir)
	}
	app.Spool, err = integration.NewEventSpool(spoolDir)
	if err != nil {
		return nil, err
	}
	app.Watcher = integration.NewSpoolWatcher(spoolDir)

	// --- Observability ---
	logPath := filepath.Join(basePath, "deliveries.jsonl")
	app.DeliveryLog, err = observability.NewJSONLDeliveryLog(logPath)
	if err != nil {
		// Non-fatal: routing still works without the delivery log.
		app.DeliveryLog = nil
	}
	if app.DeliveryLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.DeliveryLog)
	}

	// --- Notification engine ---
	app.Classifier = notify.NewEventClassifier(globalCfg.NoteThreshold)

	maxConcurrent := 1
	if globalCfg.Delivery == models.DeliveryConcurrent {
		maxConcurrent = globalCfg.MaxConcurrent
	}
	app.Router = notify.NewRouter(app.Classifier, app.Agents, maxConcurrent)

	// --- Core services ---
	var logger core.EventLogger
	if app.DeliveryLog != nil {
		logger = app.DeliveryLog
	}
	app.Orchestrator = core.NewSessionOrchestrator(app.SnapshotMgr, app.Router, logger)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Orchestrator = app.Orchestrator
	cli.Snapshots = app.SnapshotMgr
	cli.Agents = app.Agents
	cli.Spool = app.Spool
	cli.Watcher = app.Watcher
	cli.DeliveryLog = app.DeliveryLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the delivery log file
// handle. Safe to call when the DeliveryLog is nil.
func (a *App) Close() error {
	if a.DeliveryLog != nil {
		return a.DeliveryLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the lace-notify data
// directory. It checks the LACE_NOTIFY_HOME env var, then walks up from the
// current directory looking for a .lacenotify config file.
func ResolveBasePath() string {
	if home := os.Getenv("LACE_NOTIFY_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".lacenotify")); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, ".lacenotify.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}
