package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestEnsureAndOpen(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if _, err := rt.EnsureTopic("events"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := rt.OpenLog("events"); err != nil {
		t.Fatalf("open log: %v", err)
	}
	metas, err := rt.ListTopics()
	if err != nil || len(metas) != 1 || metas[0].Name != "events" {
		t.Fatalf("list topics: %v %v", metas, err)
	}
}

func TestOpenLogIsShared(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	a, err := rt.OpenLog("events")
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	b, err := rt.OpenLog("events")
	if err != nil {
		t.Fatalf("open log again: %v", err)
	}
	if a != b {
		t.Fatalf("topic log not shared")
	}
}
