package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// SnapshotStore is the subset of storage.SnapshotManager the session needs.
// Defining it here keeps core independent of the storage package.
type SnapshotStore interface {
	Get(taskID string) (*models.Task, bool)
	Put(task models.Task)
	Save() error
}

// EventRouter routes one lifecycle event given the previous task snapshot.
// notify.Router satisfies this directly.
type EventRouter interface {
	Route(ctx context.Context, event models.TaskLifecycleEvent, previous *models.Task) models.RoutingReport
}

// EventLogger records routing activity for observability. May be nil-adapted
// away when observability is disabled.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// SessionOrchestrator owns the task snapshot map and drives routing for a
// stream of lifecycle events. Events for the same task must arrive in order;
// the orchestrator serializes handling so transition detection stays correct
// even when callers overlap.
type SessionOrchestrator interface {
	// HandleEvent routes the event against the last-seen snapshot of the
	// task, then replaces the snapshot with the event's task state. The
	// returned report is informational; skipped and failed deliveries are
	// never an error.
	HandleEvent(ctx context.Context, event models.TaskLifecycleEvent) (models.RoutingReport, error)
}

type sessionOrchestrator struct {
	mu        sync.Mutex
	snapshots SnapshotStore
	router    EventRouter
	events    EventLogger
}

// NewSessionOrchestrator creates a SessionOrchestrator. events may be nil.
func NewSessionOrchestrator(snapshots SnapshotStore, router EventRouter, events EventLogger) SessionOrchestrator {
	return &sessionOrchestrator{
		snapshots: snapshots,
		router:    router,
		events:    events,
	}
}

func (s *sessionOrchestrator) HandleEvent(ctx context.Context, event models.TaskLifecycleEvent) (models.RoutingReport, error) {
	if event.Task.ID == "" {
		return models.RoutingReport{}, fmt.Errorf("handling event: task id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, _ := s.snapshots.Get(event.Task.ID)
	report := s.router.Route(ctx, event, previous)

	// The snapshot is replaced only after routing returns, so a crash
	// mid-route re-detects the same transition on replay rather than
	// silently losing it.
	s.snapshots.Put(event.Task)
	if err := s.snapshots.Save(); err != nil {
		return report, fmt.Errorf("handling event for %s: saving snapshot: %w", event.Task.ID, err)
	}

	s.logReport(event, report)

	return report, nil
}

// logReport writes one record for the event and one per routing result.
func (s *sessionOrchestrator) logReport(event models.TaskLifecycleEvent, report models.RoutingReport) {
	if s.events == nil {
		return
	}

	_ = s.events.LogEvent("event.received", map[string]any{
		"task_id": event.Task.ID,
		"kind":    string(event.Kind),
		"actor":   event.Actor,
		"intents": len(report.Results),
	})

	for _, res := range report.Results {
		data := map[string]any{
			"task_id": res.Intent.TaskID,
			"target":  res.Intent.Target,
			"kind":    string(res.Intent.Kind),
		}
		if res.Detail != "" {
			data["detail"] = res.Detail
		}
		_ = s.events.LogEvent("notify."+string(res.Outcome), data)
	}
}
