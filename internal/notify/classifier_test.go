package notify

import (
	"strings"
	"testing"

	"github.com/lace-ai/lace-notify/pkg/models"
)

func baseTask() models.Task {
	return models.Task{
		ID:        "t1",
		Title:     "Fix bug",
		Status:    models.StatusInProgress,
		Priority:  models.PriorityMedium,
		CreatedBy: "A",
	}
}

func TestClassifyCompletionNotifiesCreator(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	prev.AssignedTo = "B"

	task := prev
	task.Status = models.StatusCompleted

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "B",
	}, &prev)

	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Target != "A" {
		t.Errorf("expected target A, got %s", intents[0].Target)
	}
	if intents[0].Kind != models.NotifyCompletion {
		t.Errorf("expected completion kind, got %s", intents[0].Kind)
	}
	if intents[0].Hint != models.HintImmediate {
		t.Errorf("completion should carry the immediate hint, got %s", intents[0].Hint)
	}

	msg := FormatIntent(intents[0], task, "B")
	for _, want := range []string{"t1", "Fix bug", "B"} {
		if !strings.Contains(msg, want) {
			t.Errorf("formatted completion message should contain %q, got %q", want, msg)
		}
	}
}

func TestClassifyCreatedNotifiesAssignee(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	task := baseTask()
	task.AssignedTo = "B"

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventCreated,
		Task:  task,
		Actor: "A",
	}, nil)

	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Target != "B" || intents[0].Kind != models.NotifyAssignment {
		t.Errorf("expected assignment intent for B, got %+v", intents[0])
	}
	if intents[0].Hint != models.HintBackground {
		t.Errorf("creation assignment should be background, got %s", intents[0].Hint)
	}
}

func TestClassifySelfAssignmentSuppressed(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	task := baseTask()
	task.AssignedTo = "A"

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventCreated,
		Task:  task,
		Actor: "A",
	}, nil)

	if len(intents) != 0 {
		t.Errorf("self-assignment must not notify, got %d intents", len(intents))
	}
}

func TestClassifyShortNoteBelowThreshold(t *testing.T) {
	c := NewEventClassifier(50)

	task := baseTask()
	task.Notes = []models.TaskNote{{Author: "B", Content: "looks fine"}}

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventNoteAdded,
		Task:  task,
		Actor: "B",
	}, nil)

	if len(intents) != 0 {
		t.Errorf("note below threshold must not notify, got %d intents", len(intents))
	}
}

func TestClassifyLongNoteNotifiesCreator(t *testing.T) {
	c := NewEventClassifier(50)

	task := baseTask()
	task.Notes = []models.TaskNote{{
		Author:  "B",
		Content: strings.Repeat("found a subtle problem in the retry path. ", 3),
	}}

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventNoteAdded,
		Task:  task,
		Actor: "B",
	}, nil)

	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Target != "A" || intents[0].Kind != models.NotifyNoteAdded {
		t.Errorf("expected note_added intent for A, got %+v", intents[0])
	}
}

func TestClassifyCreatorNoteNeverNotifiesCreator(t *testing.T) {
	c := NewEventClassifier(0)

	task := baseTask()
	task.Notes = []models.TaskNote{{
		Author:  "A",
		Content: strings.Repeat("status update with plenty of detail. ", 4),
	}}

	// Actor differs from the author on purpose: the author check alone
	// must suppress creator self-notification.
	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventNoteAdded,
		Task:  task,
		Actor: "B",
	}, nil)

	if len(intents) != 0 {
		t.Errorf("creator's own note must not notify the creator, got %d intents", len(intents))
	}
}

func TestClassifyReassignmentNotifiesBothAssignees(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	prev.AssignedTo = "B"

	task := prev
	task.AssignedTo = "C"

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "A",
	}, &prev)

	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(intents))
	}
	if intents[0].Target != "C" || intents[0].Kind != models.NotifyAssignment {
		t.Errorf("first intent should assign C, got %+v", intents[0])
	}
	if intents[1].Target != "B" || intents[1].Kind != models.NotifyStatusChange {
		t.Errorf("second intent should inform B, got %+v", intents[1])
	}
	if intents[1].Detail != "no longer assigned" {
		t.Errorf("displaced assignee intent should carry the unassignment detail, got %q", intents[1].Detail)
	}
}

func TestClassifyStatusChangeNotifiesCreatorOnce(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	prev.Status = models.StatusPending

	task := prev
	task.Status = models.StatusBlocked

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "B",
	}, &prev)

	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Kind != models.NotifyStatusChange || intents[0].Target != "A" {
		t.Errorf("expected status_change intent for A, got %+v", intents[0])
	}
}

func TestClassifyUpdateWithoutSnapshotEmitsNothing(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	task := baseTask()
	task.Status = models.StatusCompleted
	task.AssignedTo = "B"

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "B",
	}, nil)

	if len(intents) != 0 {
		t.Errorf("updates without a previous snapshot must emit nothing, got %d intents", len(intents))
	}
}

func TestClassifyNoOpUpdateEmitsNothing(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	prev.AssignedTo = "B"
	task := prev
	task.Title = "Fix bug (renamed)"

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "A",
	}, &prev)

	if len(intents) != 0 {
		t.Errorf("unchanged status and assignee must emit nothing, got %d intents", len(intents))
	}
}

func TestClassifyUnknownStatusCountsAsChangeNotCompletion(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	task := prev
	task.Status = models.TaskStatus("paused")

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "B",
	}, &prev)

	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].Kind != models.NotifyStatusChange {
		t.Errorf("unknown status should classify as status_change, got %s", intents[0].Kind)
	}
}

func TestClassifyMissingCreatorDropsIntent(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	prev := baseTask()
	prev.CreatedBy = ""
	task := prev
	task.Status = models.StatusCompleted

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventUpdated,
		Task:  task,
		Actor: "B",
	}, &prev)

	if len(intents) != 0 {
		t.Errorf("empty target identity must be dropped silently, got %d intents", len(intents))
	}
}

func TestClassifyNoteEventWithoutNotes(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	intents := c.Classify(models.TaskLifecycleEvent{
		Kind:  models.EventNoteAdded,
		Task:  baseTask(),
		Actor: "B",
	}, nil)

	if len(intents) != 0 {
		t.Errorf("note_added with no notes must emit nothing, got %d intents", len(intents))
	}
}

// A single agent creating, assigning to itself, and completing a task must
// never generate notifications anywhere in the lifecycle.
func TestClassifySoloLifecycleIsSilent(t *testing.T) {
	c := NewEventClassifier(DefaultNoteThreshold)

	created := baseTask()
	created.AssignedTo = "A"
	created.Status = models.StatusPending

	intents := c.Classify(models.TaskLifecycleEvent{Kind: models.EventCreated, Task: created, Actor: "A"}, nil)
	if len(intents) != 0 {
		t.Fatalf("creation: expected silence, got %d intents", len(intents))
	}

	started := created
	started.Status = models.StatusInProgress
	intents = c.Classify(models.TaskLifecycleEvent{Kind: models.EventUpdated, Task: started, Actor: "A"}, &created)
	if len(intents) != 0 {
		t.Fatalf("start: expected silence, got %d intents", len(intents))
	}

	done := started
	done.Status = models.StatusCompleted
	intents = c.Classify(models.TaskLifecycleEvent{Kind: models.EventUpdated, Task: done, Actor: "A"}, &started)
	if len(intents) != 0 {
		t.Fatalf("completion: expected silence, got %d intents", len(intents))
	}
}
