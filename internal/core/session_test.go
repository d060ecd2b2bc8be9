package core

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lace-ai/lace-notify/internal/notify"
	"github.com/lace-ai/lace-notify/pkg/models"
)

// memorySnapshots implements SnapshotStore in memory.
type memorySnapshots struct {
	tasks   map[string]models.Task
	saves   int
	saveErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{tasks: make(map[string]models.Task)}
}

func (m *memorySnapshots) Get(taskID string) (*models.Task, bool) {
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, false
	}
	return &task, true
}

func (m *memorySnapshots) Put(task models.Task) {
	m.tasks[task.ID] = task
}

func (m *memorySnapshots) Save() error {
	m.saves++
	return m.saveErr
}

// recordingLogger implements EventLogger.
type recordingLogger struct {
	types []string
}

func (l *recordingLogger) LogEvent(eventType string, _ map[string]any) error {
	l.types = append(l.types, eventType)
	return nil
}

// sinkResolver resolves every identity to a handle that accepts everything.
type sinkHandle struct{}

func (sinkHandle) Send(context.Context, string) error { return nil }

type sinkResolver struct{}

func (sinkResolver) Resolve(string) notify.RecipientHandle { return sinkHandle{} }

func newTestOrchestrator(t *testing.T) (SessionOrchestrator, *memorySnapshots, *recordingLogger) {
	t.Helper()
	snaps := newMemorySnapshots()
	logger := &recordingLogger{}
	router := notify.NewRouter(notify.NewEventClassifier(notify.DefaultNoteThreshold), sinkResolver{}, 1)
	return NewSessionOrchestrator(snaps, router, logger), snaps, logger
}

func TestHandleEventTracksSnapshotsAcrossLifecycle(t *testing.T) {
	orch, snaps, _ := newTestOrchestrator(t)
	ctx := context.Background()

	created := models.Task{
		ID: "t1", Title: "Fix bug",
		Status: models.StatusPending, CreatedBy: "A", AssignedTo: "B",
	}
	report, err := orch.HandleEvent(ctx, models.TaskLifecycleEvent{
		Kind: models.EventCreated, Task: created, Actor: "A",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Intent.Kind != models.NotifyAssignment {
		t.Fatalf("creation should produce one assignment result, got %+v", report.Results)
	}

	// The next update detects the status transition against the stored
	// snapshot without the caller supplying previous state.
	started := created
	started.Status = models.StatusInProgress
	report, err = orch.HandleEvent(ctx, models.TaskLifecycleEvent{
		Kind: models.EventUpdated, Task: started, Actor: "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Intent.Kind != models.NotifyStatusChange {
		t.Fatalf("start should produce one status_change result, got %+v", report.Results)
	}

	done := started
	done.Status = models.StatusCompleted
	report, err = orch.HandleEvent(ctx, models.TaskLifecycleEvent{
		Kind: models.EventUpdated, Task: done, Actor: "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Intent.Kind != models.NotifyCompletion {
		t.Fatalf("completion should produce one completion result, got %+v", report.Results)
	}

	if snap, ok := snaps.Get("t1"); !ok || snap.Status != models.StatusCompleted {
		t.Errorf("snapshot should hold the final task state, got %+v", snap)
	}
	if snaps.saves != 3 {
		t.Errorf("snapshot should be persisted after every event, got %d saves", snaps.saves)
	}
}

func TestHandleEventFirstUpdateWithoutSnapshotIsSilent(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)

	task := models.Task{
		ID: "t9", Status: models.StatusCompleted, CreatedBy: "A", AssignedTo: "B",
	}
	report, err := orch.HandleEvent(context.Background(), models.TaskLifecycleEvent{
		Kind: models.EventUpdated, Task: task, Actor: "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("update with no stored snapshot should route nothing, got %+v", report.Results)
	}
}

func TestHandleEventRejectsMissingTaskID(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)

	_, err := orch.HandleEvent(context.Background(), models.TaskLifecycleEvent{
		Kind: models.EventCreated, Actor: "A",
	})
	if err == nil {
		t.Fatal("expected error for event without task id")
	}
}

func TestHandleEventLogsOutcomes(t *testing.T) {
	orch, _, logger := newTestOrchestrator(t)

	task := models.Task{
		ID: "t1", Status: models.StatusPending, CreatedBy: "A", AssignedTo: "B",
	}
	if _, err := orch.HandleEvent(context.Background(), models.TaskLifecycleEvent{
		Kind: models.EventCreated, Task: task, Actor: "A",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"event.received", "notify.delivered"}
	if len(logger.types) != len(want) {
		t.Fatalf("expected %d log records, got %v", len(want), logger.types)
	}
	for i, typ := range want {
		if logger.types[i] != typ {
			t.Errorf("record %d should be %s, got %s", i, typ, logger.types[i])
		}
	}
}

func TestHandleEventSurfacesSaveError(t *testing.T) {
	snaps := newMemorySnapshots()
	snaps.saveErr = fmt.Errorf("disk full")
	router := notify.NewRouter(notify.NewEventClassifier(notify.DefaultNoteThreshold), sinkResolver{}, 1)
	orch := NewSessionOrchestrator(snaps, router, nil)

	task := models.Task{ID: "t1", CreatedBy: "A"}
	_, err := orch.HandleEvent(context.Background(), models.TaskLifecycleEvent{
		Kind: models.EventCreated, Task: task, Actor: "A",
	})
	if err == nil {
		t.Fatal("expected save error to surface")
	}
	if !strings.Contains(err.Error(), "saving snapshot") {
		t.Errorf("error should identify the snapshot save, got: %v", err)
	}
}
