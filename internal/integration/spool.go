package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// SpoolEntry is one event file awaiting routing.
type SpoolEntry struct {
	Path  string
	Event models.TaskLifecycleEvent
}

// EventSpool reads lifecycle event files dropped by the Lace task manager
// into the spool directory and marks them as routed in place.
type EventSpool interface {
	// Dir returns the spool directory path.
	Dir() string

	// Pending returns the unrouted, parseable events in filename order.
	// Malformed files are skipped, never fatal.
	Pending() ([]SpoolEntry, error)

	// ReadEvent parses a single event file, routed or not.
	ReadEvent(path string) (models.TaskLifecycleEvent, error)

	// Routed reports whether an event file has already been routed.
	Routed(path string) (bool, error)

	// MarkRouted flags an event file as routed so it is not picked up again.
	MarkRouted(path string) error
}

type fileEventSpool struct {
	dir string
}

// NewEventSpool creates an EventSpool over the given directory, creating it
// if necessary.
func NewEventSpool(dir string) (EventSpool, error) {
	if dir == "" {
		return nil, fmt.Errorf("creating event spool: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating spool directory %s: %w", dir, err)
	}
	return &fileEventSpool{dir: dir}, nil
}

func (s *fileEventSpool) Dir() string {
	return s.dir
}

func (s *fileEventSpool) Pending() ([]SpoolEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading spool directory: %w", err)
	}

	var pending []SpoolEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if gjson.GetBytes(data, "routed").Bool() {
			continue
		}

		event, err := ParseEvent(data)
		if err != nil {
			// Malformed spool files are left in place for inspection.
			continue
		}
		pending = append(pending, SpoolEntry{Path: path, Event: event})
	}

	return pending, nil
}

func (s *fileEventSpool) ReadEvent(path string) (models.TaskLifecycleEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TaskLifecycleEvent{}, fmt.Errorf("reading event file %s: %w", path, err)
	}
	return ParseEvent(data)
}

func (s *fileEventSpool) Routed(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading event file %s: %w", path, err)
	}
	return gjson.GetBytes(data, "routed").Bool(), nil
}

func (s *fileEventSpool) MarkRouted(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading event file %s: %w", path, err)
	}

	updated, err := sjson.SetBytes(data, "routed", true)
	if err != nil {
		return fmt.Errorf("marking event %s routed: %w", path, err)
	}

	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("writing event file %s: %w", path, err)
	}
	return nil
}

// ParseEvent extracts a TaskLifecycleEvent from event JSON. The task
// manager's payloads are not strictly shaped, so extraction is tolerant:
// unknown fields are ignored and missing optional fields default to zero
// values. Only the event kind and the task id are required.
func ParseEvent(data []byte) (models.TaskLifecycleEvent, error) {
	if !gjson.ValidBytes(data) {
		return models.TaskLifecycleEvent{}, fmt.Errorf("parsing event: invalid JSON")
	}

	root := gjson.ParseBytes(data)

	kind := models.EventKind(root.Get("kind").String())
	switch kind {
	case models.EventCreated, models.EventUpdated, models.EventNoteAdded:
	default:
		return models.TaskLifecycleEvent{}, fmt.Errorf("parsing event: unknown kind %q", kind)
	}

	taskID := root.Get("task.id").String()
	if taskID == "" {
		return models.TaskLifecycleEvent{}, fmt.Errorf("parsing event: task.id is missing")
	}

	task := models.Task{
		ID:         taskID,
		Title:      root.Get("task.title").String(),
		Prompt:     root.Get("task.prompt").String(),
		Status:     models.TaskStatus(root.Get("task.status").String()),
		Priority:   models.Priority(root.Get("task.priority").String()),
		CreatedBy:  root.Get("task.created_by").String(),
		AssignedTo: root.Get("task.assigned_to").String(),
		Created:    parseEventTime(root.Get("task.created")),
		Updated:    parseEventTime(root.Get("task.updated")),
	}

	root.Get("task.notes").ForEach(func(_, note gjson.Result) bool {
		task.Notes = append(task.Notes, models.TaskNote{
			Author:  note.Get("author").String(),
			Content: note.Get("content").String(),
			Created: parseEventTime(note.Get("created")),
		})
		return true
	})

	return models.TaskLifecycleEvent{
		Kind:  kind,
		Task:  task,
		Actor: root.Get("actor").String(),
	}, nil
}

// parseEventTime parses an RFC3339 timestamp, returning the zero time for
// anything else.
func parseEventTime(result gjson.Result) time.Time {
	if !result.Exists() {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, result.String())
	if err != nil {
		return time.Time{}
	}
	return t
}
