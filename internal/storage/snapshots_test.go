package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lace-ai/lace-notify/pkg/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewSnapshotManager(dir)

	task := models.Task{
		ID: "t1", Title: "Fix bug",
		Status: models.StatusInProgress, Priority: models.PriorityHigh,
		CreatedBy: "A", AssignedTo: "B",
		Notes:   []models.TaskNote{{Author: "B", Content: "halfway there", Created: time.Now().UTC().Truncate(time.Second)}},
		Created: time.Now().UTC().Truncate(time.Second),
	}
	mgr.Put(task)
	if err := mgr.Save(); err != nil {
		t.Fatalf("saving: %v", err)
	}

	reloaded := NewSnapshotManager(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("loading: %v", err)
	}

	got, ok := reloaded.Get("t1")
	if !ok {
		t.Fatal("snapshot t1 should exist after reload")
	}
	if got.Status != models.StatusInProgress || got.AssignedTo != "B" {
		t.Errorf("reloaded snapshot differs: %+v", got)
	}
	if len(got.Notes) != 1 || got.Notes[0].Author != "B" {
		t.Errorf("notes should survive the round trip, got %+v", got.Notes)
	}
}

func TestSnapshotGetReturnsCopy(t *testing.T) {
	mgr := NewSnapshotManager(t.TempDir())
	mgr.Put(models.Task{ID: "t1", Status: models.StatusPending})

	first, _ := mgr.Get("t1")
	first.Status = models.StatusCompleted

	second, _ := mgr.Get("t1")
	if second.Status != models.StatusPending {
		t.Errorf("mutating a returned snapshot must not affect the store, got %s", second.Status)
	}
}

func TestSnapshotPutIgnoresEmptyID(t *testing.T) {
	mgr := NewSnapshotManager(t.TempDir())
	mgr.Put(models.Task{Title: "no id"})

	if got := mgr.GetAll(); len(got) != 0 {
		t.Errorf("tasks without ids should not be stored, got %d", len(got))
	}
}

func TestSnapshotLoadMissingFile(t *testing.T) {
	mgr := NewSnapshotManager(t.TempDir())
	if err := mgr.Load(); err != nil {
		t.Fatalf("missing file should load as empty store, got: %v", err)
	}
	if got := mgr.GetAll(); len(got) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(got))
	}
}

func TestSnapshotLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snapshots.yaml"), []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	mgr := NewSnapshotManager(dir)
	if err := mgr.Load(); err == nil {
		t.Fatal("expected error for malformed snapshots.yaml")
	}
}

func TestSnapshotRemoveAndGetAllOrder(t *testing.T) {
	mgr := NewSnapshotManager(t.TempDir())
	mgr.Put(models.Task{ID: "t3"})
	mgr.Put(models.Task{ID: "t1"})
	mgr.Put(models.Task{ID: "t2"})
	mgr.Remove("t2")

	got := mgr.GetAll()
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	if got[0].ID != "t1" || got[1].ID != "t3" {
		t.Errorf("GetAll should sort by id, got %s then %s", got[0].ID, got[1].ID)
	}
}
