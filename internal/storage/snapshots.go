// Package storage provides file-backed persistence for lace-notify:
// the task snapshot store used for transition detection across events.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lace-ai/lace-notify/pkg/models"
)

// SnapshotFile represents the top-level structure of snapshots.yaml.
type SnapshotFile struct {
	Version string                 `yaml:"version"`
	Tasks   map[string]models.Task `yaml:"tasks"`
}

// SnapshotManager defines the interface for the last-seen task snapshot map.
// The map is owned by the session orchestrator; the classifier only ever
// receives individual snapshots through it.
type SnapshotManager interface {
	Get(taskID string) (*models.Task, bool)
	Put(task models.Task)
	Remove(taskID string)
	GetAll() []models.Task
	Load() error
	Save() error
}

type fileSnapshotManager struct {
	basePath string
	data     SnapshotFile
}

// NewSnapshotManager creates a SnapshotManager backed by a snapshots.yaml
// file in the given base directory.
func NewSnapshotManager(basePath string) SnapshotManager {
	return &fileSnapshotManager{
		basePath: basePath,
		data: SnapshotFile{
			Version: "1.0",
			Tasks:   make(map[string]models.Task),
		},
	}
}

func (m *fileSnapshotManager) filePath() string {
	return filepath.Join(m.basePath, "snapshots.yaml")
}

// Get returns a copy of the last-seen snapshot for the task, if any.
func (m *fileSnapshotManager) Get(taskID string) (*models.Task, bool) {
	task, ok := m.data.Tasks[taskID]
	if !ok {
		return nil, false
	}
	return &task, true
}

// Put replaces the stored snapshot with the given task state.
func (m *fileSnapshotManager) Put(task models.Task) {
	if task.ID == "" {
		return
	}
	m.data.Tasks[task.ID] = task
}

// Remove deletes the snapshot for a task, typically after archival.
func (m *fileSnapshotManager) Remove(taskID string) {
	delete(m.data.Tasks, taskID)
}

// GetAll returns all stored snapshots sorted by task ID.
func (m *fileSnapshotManager) GetAll() []models.Task {
	tasks := make([]models.Task, 0, len(m.data.Tasks))
	for _, task := range m.data.Tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// Load reads snapshots.yaml from disk. A missing file yields an empty store.
func (m *fileSnapshotManager) Load() error {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			m.data = SnapshotFile{Version: "1.0", Tasks: make(map[string]models.Task)}
			return nil
		}
		return fmt.Errorf("reading snapshots.yaml: %w", err)
	}

	var file SnapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing snapshots.yaml: %w", err)
	}
	if file.Tasks == nil {
		file.Tasks = make(map[string]models.Task)
	}
	if file.Version == "" {
		file.Version = "1.0"
	}
	m.data = file
	return nil
}

// Save writes the store back to snapshots.yaml.
func (m *fileSnapshotManager) Save() error {
	data, err := yaml.Marshal(m.data)
	if err != nil {
		return fmt.Errorf("marshalling snapshots.yaml: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("writing snapshots.yaml: %w", err)
	}
	return nil
}
