package fanout

import (
	"sync"

	"github.com/google/uuid"

	"github.com/beaconhq/beacon/internal/eventlog"
)

// Subscriber is one registered consumer. Events arrive on C; the registry
// closes C on unregister.
type Subscriber struct {
	ID string
	C  chan eventlog.Item
}

// Registry tracks live subscribers and fans appended events out to them.
// Delivery is non-blocking: a subscriber whose buffer is full has the event
// dropped and is reported to the caller for removal.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*Subscriber)}
}

// Register creates a subscriber with the given channel buffer and returns it.
// A buffer below 1 gets a minimum of 1 so a single broadcast never drops.
func (r *Registry) Register(buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	s := &Subscriber{
		ID: uuid.NewString(),
		C:  make(chan eventlog.Item, buffer),
	}
	r.mu.Lock()
	r.subs[s.ID] = s
	r.mu.Unlock()
	return s
}

// Unregister removes a subscriber and closes its channel. Unknown or
// already-removed ids are ignored. The close happens under the write lock
// so it cannot interleave with a Broadcast send.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return
	}
	delete(r.subs, id)
	close(s.C)
}

// Len reports the number of live subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Snapshot returns the current subscriber ids.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast delivers items to every live subscriber without blocking.
// Subscribers that cannot keep up are returned so the caller can unregister
// them; a slow consumer never stalls the others. The read lock is held for
// the whole delivery so a concurrent Unregister cannot close a channel
// mid-send.
func (r *Registry) Broadcast(items []eventlog.Item) (failed []string) {
	if len(items) == 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subs {
		for _, it := range items {
			select {
			case s.C <- it:
				continue
			default:
			}
			// Once a subscriber drops, the rest of the batch would arrive
			// with a gap; stop delivering to it.
			failed = append(failed, s.ID)
			break
		}
	}
	return failed
}
