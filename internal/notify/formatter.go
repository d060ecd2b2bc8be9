package notify

import (
	"fmt"
	"strings"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// noteExcerptLimit bounds the note excerpt included in note_added messages.
const noteExcerptLimit = 200

// promptFence separates task instructions from surrounding commentary in
// assignment messages so recipients can tell them apart.
const promptFence = "--- TASK INSTRUCTIONS ---"

// FormatIntent renders the human-readable message for a notification intent.
// It is pure and total: identical inputs produce identical output, and
// missing optional fields fall back to generic placeholders rather than
// failing.
func FormatIntent(intent models.NotificationIntent, task models.Task, actor string) string {
	switch intent.Kind {
	case models.NotifyCompletion:
		return formatCompletion(intent, actor)
	case models.NotifyAssignment:
		return formatAssignment(intent, task)
	case models.NotifyStatusChange:
		return formatStatusChange(intent, task, actor)
	case models.NotifyNoteAdded:
		return formatNoteAdded(intent, task)
	default:
		return fmt.Sprintf("Task %s (%s) was updated by %s.",
			intent.TaskID, displayTitle(intent.TaskTitle), displayIdentity(actor))
	}
}

func formatCompletion(intent models.NotificationIntent, actor string) string {
	return fmt.Sprintf(
		"Task %s (%s) was completed by %s. Review the results or create follow-up tasks.",
		intent.TaskID, displayTitle(intent.TaskTitle), displayIdentity(actor))
}

func formatAssignment(intent models.NotificationIntent, task models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have been assigned task %s (%s) by %s. Priority: %s.\n",
		intent.TaskID, displayTitle(intent.TaskTitle),
		displayIdentity(task.CreatedBy), displayPriority(task.Priority))

	b.WriteString(promptFence + "\n")
	if task.Prompt != "" {
		b.WriteString(task.Prompt)
	} else {
		b.WriteString("(no instructions provided)")
	}
	b.WriteString("\n" + promptFence + "\n")

	b.WriteString("Add notes to record progress, and mark the task completed when done.")
	return b.String()
}

func formatStatusChange(intent models.NotificationIntent, task models.Task, actor string) string {
	if intent.Detail != "" {
		return fmt.Sprintf("Task %s (%s): %s, changed by %s.",
			intent.TaskID, displayTitle(intent.TaskTitle), intent.Detail, displayIdentity(actor))
	}
	return fmt.Sprintf("Task %s (%s) status is now %q, changed by %s.",
		intent.TaskID, displayTitle(intent.TaskTitle), string(task.Status), displayIdentity(actor))
}

func formatNoteAdded(intent models.NotificationIntent, task models.Task) string {
	note := task.LatestNote()
	if note == nil {
		return fmt.Sprintf("A note was added to task %s (%s).",
			intent.TaskID, displayTitle(intent.TaskTitle))
	}
	return fmt.Sprintf("%s added a note to task %s (%s): %s",
		displayIdentity(note.Author), intent.TaskID,
		displayTitle(intent.TaskTitle), excerpt(note.Content, noteExcerptLimit))
}

// excerpt truncates s to at most limit characters, appending an ellipsis
// when content was cut.
func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func displayTitle(title string) string {
	if title == "" {
		return "untitled"
	}
	return title
}

func displayIdentity(id string) string {
	if id == "" {
		return "an unknown agent"
	}
	return id
}

func displayPriority(p models.Priority) string {
	if p == "" {
		return string(models.PriorityMedium)
	}
	return string(p)
}
