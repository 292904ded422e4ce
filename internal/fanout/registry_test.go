package fanout

import (
	"sync"
	"testing"
	"time"

	"github.com/beaconhq/beacon/internal/eventlog"
)

func items(n int) []eventlog.Item {
	out := make([]eventlog.Item, n)
	for i := range out {
		out[i] = eventlog.Item{Seq: uint64(i + 1), Payload: []byte("m")}
	}
	return out
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	r := NewRegistry()
	a := r.Register(4)
	b := r.Register(4)
	c := r.Register(4)

	failed := r.Broadcast(items(3))
	if failed != nil {
		t.Fatalf("failed=%v", failed)
	}
	for _, s := range []*Subscriber{a, b, c} {
		for want := uint64(1); want <= 3; want++ {
			it := <-s.C
			if it.Seq != want {
				t.Fatalf("sub %s: seq=%d want %d", s.ID, it.Seq, want)
			}
		}
	}
}

func TestBroadcastDropsSlowSubscriberOnly(t *testing.T) {
	r := NewRegistry()
	slow := r.Register(1)
	fast := r.Register(8)

	failed := r.Broadcast(items(4))
	if len(failed) != 1 || failed[0] != slow.ID {
		t.Fatalf("failed=%v want [%s]", failed, slow.ID)
	}
	// The fast subscriber receives the full batch.
	for want := uint64(1); want <= 4; want++ {
		if it := <-fast.C; it.Seq != want {
			t.Fatalf("seq=%d want %d", it.Seq, want)
		}
	}
	// The slow one got the batch head before its buffer filled.
	if it := <-slow.C; it.Seq != 1 {
		t.Fatalf("slow got seq=%d", it.Seq)
	}
}

func TestUnregisterClosesChannelAndIsIdempotent(t *testing.T) {
	r := NewRegistry()
	s := r.Register(1)
	if r.Len() != 1 {
		t.Fatalf("len=%d", r.Len())
	}

	r.Unregister(s.ID)
	if r.Len() != 0 {
		t.Fatalf("len after unregister=%d", r.Len())
	}
	if _, ok := <-s.C; ok {
		t.Fatalf("channel not closed")
	}
	r.Unregister(s.ID)
	r.Unregister("no-such-id")
}

func TestBroadcastAfterUnregisterSkipsRemoved(t *testing.T) {
	r := NewRegistry()
	gone := r.Register(1)
	kept := r.Register(1)
	r.Unregister(gone.ID)

	if failed := r.Broadcast(items(1)); failed != nil {
		t.Fatalf("failed=%v", failed)
	}
	if it := <-kept.C; it.Seq != 1 {
		t.Fatalf("seq=%d", it.Seq)
	}
}

func TestSnapshotListsLiveIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Register(1)
	b := r.Register(1)
	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("snapshot=%v", got)
	}
	seen := map[string]bool{}
	for _, id := range got {
		seen[id] = true
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Fatalf("missing ids: %v", got)
	}
}

func TestBroadcastSurvivesUnregisterChurn(t *testing.T) {
	r := NewRegistry()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Broadcasters racing against churn: a send landing after a close
	// would panic the process.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := items(2)
			for {
				select {
				case <-stop:
					return
				default:
					r.Broadcast(batch)
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					s := r.Register(1)
					r.Unregister(s.ID)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()
	if r.Len() != 0 {
		t.Fatalf("len=%d after churn", r.Len())
	}
}

func TestEmptyBroadcastIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register(1)
	if failed := r.Broadcast(nil); failed != nil {
		t.Fatalf("failed=%v", failed)
	}
}
