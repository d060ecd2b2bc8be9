package models

// EventKind represents the kind of task lifecycle event.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventNoteAdded EventKind = "note_added"
)

// TaskLifecycleEvent describes a single change to a task, as emitted by the
// Lace task manager. Task is the snapshot after the change. The event does
// not carry the previous task state; callers that need transition detection
// supply the last-seen snapshot separately.
type TaskLifecycleEvent struct {
	Kind  EventKind `yaml:"kind" json:"kind"`
	Task  Task      `yaml:"task" json:"task"`
	Actor string    `yaml:"actor" json:"actor"`
}
