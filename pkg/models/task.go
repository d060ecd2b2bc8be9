package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether the status is a terminal state. Tasks are not
// expected to transition out of a terminal state, but the classifier does
// not assume they never do.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority represents the urgency hint of a task. It is carried into
// formatted messages but never consulted for routing decisions.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskNote is a single free-text annotation on a task.
type TaskNote struct {
	Author  string    `yaml:"author" json:"author"`
	Content string    `yaml:"content" json:"content"`
	Created time.Time `yaml:"created" json:"created"`
}

// Task represents a unit of delegated work tracked by the Lace task manager.
// CreatedBy and AssignedTo hold opaque agent identities; AssignedTo may be
// empty for unassigned tasks.
type Task struct {
	ID         string     `yaml:"id" json:"id"`
	Title      string     `yaml:"title" json:"title"`
	Prompt     string     `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Status     TaskStatus `yaml:"status" json:"status"`
	Priority   Priority   `yaml:"priority" json:"priority"`
	CreatedBy  string     `yaml:"created_by" json:"created_by"`
	AssignedTo string     `yaml:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Notes      []TaskNote `yaml:"notes,omitempty" json:"notes,omitempty"`
	Created    time.Time  `yaml:"created" json:"created"`
	Updated    time.Time  `yaml:"updated" json:"updated"`
}

// LatestNote returns the most recently appended note, or nil if the task
// has no notes.
func (t *Task) LatestNote() *TaskNote {
	if len(t.Notes) == 0 {
		return nil
	}
	return &t.Notes[len(t.Notes)-1]
}
