package eventlog

import (
	"testing"

	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
)

func TestCursorCommitAndGet(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 5)

	if _, ok := l.GetCursor("workers"); ok {
		t.Fatalf("cursor exists before commit")
	}
	if err := l.CommitCursor("workers", 3); err != nil {
		t.Fatalf("commit: %v", err)
	}
	seq, ok := l.GetCursor("workers")
	if !ok || seq != 3 {
		t.Fatalf("got %d,%v", seq, ok)
	}
}

func TestCursorNeverRegresses(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 5)

	if err := l.CommitCursor("g", 4); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := l.CommitCursor("g", 2); err != nil {
		t.Fatalf("stale commit: %v", err)
	}
	if seq, _ := l.GetCursor("g"); seq != 4 {
		t.Fatalf("cursor regressed to %d", seq)
	}
	// Re-committing the same position is a no-op, not an error.
	if err := l.CommitCursor("g", 4); err != nil {
		t.Fatalf("idempotent commit: %v", err)
	}
}

func TestCursorsAreIndependentPerGroup(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 5)
	if err := l.CommitCursor("a", 1); err != nil {
		t.Fatalf("commit a: %v", err)
	}
	if err := l.CommitCursor("b", 5); err != nil {
		t.Fatalf("commit b: %v", err)
	}
	if seq, _ := l.GetCursor("a"); seq != 1 {
		t.Fatalf("a=%d", seq)
	}
	if seq, _ := l.GetCursor("b"); seq != 5 {
		t.Fatalf("b=%d", seq)
	}
}

func TestCursorSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	l, err := OpenLog(db, "events")
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	fill(t, l, 3)
	if err := l.CommitCursor("g", 2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	l2, err := OpenLog(db2, "events")
	if err != nil {
		t.Fatalf("reopen log: %v", err)
	}
	if seq, ok := l2.GetCursor("g"); !ok || seq != 2 {
		t.Fatalf("cursor after reopen: %d,%v", seq, ok)
	}
}
