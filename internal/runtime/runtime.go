package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/eventlog"
	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
	"github.com/beaconhq/beacon/internal/topic"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage, config, and per-topic logs for a single-node
// instance. Logs are cached so all callers share one wait gate per topic.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config

	mu   sync.Mutex
	logs map[string]*eventlog.Log
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{db: db, config: opts.Config, logs: make(map[string]*eventlog.Log)}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple storage health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// EnsureTopic creates a topic record if absent. Names the keyspace cannot
// hold are rejected before anything is written.
func (r *Runtime) EnsureTopic(name string) (topic.Meta, error) {
	if err := eventlog.ValidateTopic(name); err != nil {
		return topic.Meta{}, err
	}
	return topic.EnsureTopic(r.db, name)
}

// ListTopics returns all known topic records.
func (r *Runtime) ListTopics() ([]topic.Meta, error) {
	return topic.List(r.db)
}

// OpenLog returns the shared event log for a topic, opening it on first use.
func (r *Runtime) OpenLog(name string) (*eventlog.Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[name]; ok {
		return l, nil
	}
	l, err := eventlog.OpenLog(r.db, name)
	if err != nil {
		return nil, err
	}
	r.logs[name] = l
	return l, nil
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
