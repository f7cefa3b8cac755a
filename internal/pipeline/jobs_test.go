package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("job-1", Collection{Name: "c"})
	store.Put(job)

	if got := store.Get("job-1"); got != job {
		t.Errorf("expected the stored job back, got %v", got)
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown id, got %v", got)
	}
}

func TestJobStore_CleanupEvictsExpired(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := NewJob("old", Collection{Name: "c"})
	job.UpdatedAt = time.Now().Add(-time.Minute)
	store.Put(job)

	fresh := NewJob("fresh", Collection{Name: "c"})
	store.Put(fresh)

	store.Cleanup()
	if store.Get("old") != nil {
		t.Errorf("expected expired job evicted")
	}
	if store.Get("fresh") == nil {
		t.Errorf("fresh job must survive cleanup")
	}
}

func TestJob_StatusAndErrors(t *testing.T) {
	job := NewJob("j", Collection{Name: "c", Documents: []Document{{Name: "a.md"}}})

	if job.Status != StatusQueued {
		t.Errorf("new jobs start queued, got %s", job.Status)
	}

	job.SetStatus(StatusRanking, "ranking")
	job.AddError("something went sideways")
	job.UpdateProgress(1, 7)

	snap := job.Snapshot()
	if snap.Status != StatusRanking || snap.Phase != "ranking" {
		t.Errorf("snapshot status mismatch: %+v", snap)
	}
	if snap.Progress.TotalDocuments != 1 || snap.Progress.DocumentsProcessed != 1 || snap.Progress.SectionsExtracted != 7 {
		t.Errorf("snapshot progress mismatch: %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected recorded error in snapshot, got %v", snap.Progress.Errors)
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	job := NewJob("j", Collection{})
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Errorf("snapshot errors must serialize as an empty list, not null")
	}
}

func TestNewJobID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewJobID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char id, got %q (%d)", id, len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(crockford, r) {
				t.Fatalf("id %q contains invalid character %q", id, r)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff below base: %v", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff above cap with jitter: %v", attempt, d)
		}
	}
}
