// Package notify implements the task notification routing engine: a pure
// classifier that turns task lifecycle events into notification intents, a
// message formatter, and a router that resolves intents to agent recipients
// and dispatches delivery.
package notify

import "github.com/lace-ai/lace-notify/pkg/models"

// DefaultNoteThreshold is the minimum note length, in characters, before a
// note_added event notifies the task creator. The cutoff is a policy choice,
// not a derived invariant; it is configurable via notify.note_threshold.
const DefaultNoteThreshold = 50

// EventClassifier decides which agents should be notified about a task
// lifecycle event. Classification performs no I/O and cannot fail; malformed
// events degrade to fewer intents, never to errors.
type EventClassifier interface {
	// Classify returns zero or more notification intents for the event.
	// previous is the last-seen snapshot of the same task, or nil when no
	// prior state is known; without it, update events cannot produce
	// transition-based intents. Output order is deterministic: new
	// assignee first, then displaced assignee, then creator-directed
	// intents.
	Classify(event models.TaskLifecycleEvent, previous *models.Task) []models.NotificationIntent
}

// ruleClassifier implements EventClassifier with a fixed rule set evaluated
// independently, followed by a single suppression filter.
type ruleClassifier struct {
	noteThreshold int
}

// NewEventClassifier creates an EventClassifier. noteThreshold values below
// zero fall back to DefaultNoteThreshold.
func NewEventClassifier(noteThreshold int) EventClassifier {
	if noteThreshold < 0 {
		noteThreshold = DefaultNoteThreshold
	}
	return &ruleClassifier{noteThreshold: noteThreshold}
}

func (c *ruleClassifier) Classify(event models.TaskLifecycleEvent, previous *models.Task) []models.NotificationIntent {
	var intents []models.NotificationIntent

	switch event.Kind {
	case models.EventCreated:
		intents = c.classifyCreated(event)
	case models.EventUpdated:
		intents = c.classifyUpdated(event, previous)
	case models.EventNoteAdded:
		intents = c.classifyNoteAdded(event)
	}

	return suppress(intents, event.Actor)
}

// classifyCreated notifies the initial assignee, if any.
func (c *ruleClassifier) classifyCreated(event models.TaskLifecycleEvent) []models.NotificationIntent {
	task := event.Task
	if task.AssignedTo == "" {
		return nil
	}
	return []models.NotificationIntent{{
		Target:    task.AssignedTo,
		Kind:      models.NotifyAssignment,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Hint:      models.HintBackground,
	}}
}

// classifyUpdated detects assignment changes and status transitions against
// the previous snapshot. With no snapshot, no transition is detectable and
// nothing fires.
func (c *ruleClassifier) classifyUpdated(event models.TaskLifecycleEvent, previous *models.Task) []models.NotificationIntent {
	if previous == nil {
		return nil
	}
	task := event.Task
	var intents []models.NotificationIntent

	if task.AssignedTo != previous.AssignedTo {
		if task.AssignedTo != "" {
			intents = append(intents, models.NotificationIntent{
				Target:    task.AssignedTo,
				Kind:      models.NotifyAssignment,
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Hint:      models.HintBackground,
			})
		}
		if previous.AssignedTo != "" && previous.AssignedTo != task.AssignedTo {
			intents = append(intents, models.NotificationIntent{
				Target:    previous.AssignedTo,
				Kind:      models.NotifyStatusChange,
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Hint:      models.HintBackground,
				Detail:    "no longer assigned",
			})
		}
	}

	if task.Status != previous.Status {
		// Completion is a specialization of status change: exactly one
		// of the two fires for the creator per update. Unknown status
		// strings count as changed but never as completed.
		if task.Status == models.StatusCompleted && previous.Status != models.StatusCompleted {
			intents = append(intents, models.NotificationIntent{
				Target:    task.CreatedBy,
				Kind:      models.NotifyCompletion,
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Hint:      models.HintImmediate,
			})
		} else {
			intents = append(intents, models.NotificationIntent{
				Target:    task.CreatedBy,
				Kind:      models.NotifyStatusChange,
				TaskID:    task.ID,
				TaskTitle: task.Title,
				Hint:      models.HintBackground,
			})
		}
	}

	return intents
}

// classifyNoteAdded notifies the creator about substantial notes written by
// someone else. The triggering note is the most recently appended one.
func (c *ruleClassifier) classifyNoteAdded(event models.TaskLifecycleEvent) []models.NotificationIntent {
	task := event.Task
	note := task.LatestNote()
	if note == nil {
		return nil
	}
	if note.Author == task.CreatedBy {
		return nil
	}
	if len(note.Content) <= c.noteThreshold {
		return nil
	}
	return []models.NotificationIntent{{
		Target:    task.CreatedBy,
		Kind:      models.NotifyNoteAdded,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Hint:      models.HintBackground,
	}}
}

// suppress drops intents with empty targets and intents targeting the actor
// who caused the event. Applying self-suppression here, as a single final
// filter, keeps the rule implementations free of per-rule actor checks.
func suppress(intents []models.NotificationIntent, actor string) []models.NotificationIntent {
	var kept []models.NotificationIntent
	for _, intent := range intents {
		if intent.Target == "" || intent.Target == actor {
			continue
		}
		kept = append(kept, intent)
	}
	return kept
}
