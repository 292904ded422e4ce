package eventlog

import (
	"context"
	"fmt"
	"testing"
)

func fill(t *testing.T, l *Log, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		appendOne(t, l, fmt.Sprintf("m%d", i))
	}
}

func TestReadSinceReturnsOnlyNewer(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 5)

	items := l.ReadSince(3, 0)
	if len(items) != 2 {
		t.Fatalf("want 2 items after cursor 3, got %d", len(items))
	}
	if items[0].Seq != 4 || items[1].Seq != 5 {
		t.Fatalf("seqs %d,%d", items[0].Seq, items[1].Seq)
	}
	if string(items[0].Payload) != "m4" {
		t.Fatalf("payload %q", items[0].Payload)
	}
}

func TestReadSinceAtHeadIsEmpty(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 3)
	if items := l.ReadSince(3, 0); items != nil {
		t.Fatalf("want nil at head, got %v", items)
	}
}

func TestReadSinceClampsInvalidCursor(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 3)
	// A cursor beyond the head is meaningless; treat it as zero.
	items := l.ReadSince(99, 0)
	if len(items) != 3 || items[0].Seq != 1 {
		t.Fatalf("invalid cursor not clamped: %v", items)
	}
}

func TestReadSinceHonorsLimit(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 10)
	items := l.ReadSince(0, 4)
	if len(items) != 4 || items[3].Seq != 4 {
		t.Fatalf("limit not applied: %v", items)
	}
}

func TestReadLastReturnsTailAscending(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 7)

	items := l.ReadLast(3)
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	for i, it := range items {
		if it.Seq != uint64(5+i) {
			t.Fatalf("want ascending tail 5..7, got seq[%d]=%d", i, it.Seq)
		}
	}
}

func TestReadLastShorterThanLog(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 2)
	if items := l.ReadLast(5); len(items) != 2 {
		t.Fatalf("want 2, got %d", len(items))
	}
	if items := l.ReadLast(0); items != nil {
		t.Fatalf("want nil for n=0, got %v", items)
	}
}

func TestFirstSeq(t *testing.T) {
	l := newTestLog(t)
	if got := l.FirstSeq(); got != 0 {
		t.Fatalf("empty log firstSeq=%d", got)
	}
	fill(t, l, 3)
	if got := l.FirstSeq(); got != 1 {
		t.Fatalf("firstSeq=%d want 1", got)
	}
	if _, _, err := l.TrimOlderThan(context.Background(), NowMs()+1, 0, 0); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := l.FirstSeq(); got != 0 {
		t.Fatalf("firstSeq after full trim=%d", got)
	}
}

func TestHeadersRoundTripThroughLog(t *testing.T) {
	l := newTestLog(t)
	in := map[string]string{"source": "test", "kind": "demo"}
	if _, err := l.Append(context.Background(), []AppendRecord{{Payload: []byte("p"), Headers: in}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	items := l.ReadSince(0, 0)
	if len(items) != 1 {
		t.Fatalf("count=%d", len(items))
	}
	if items[0].Headers["source"] != "test" || items[0].Headers["kind"] != "demo" {
		t.Fatalf("headers=%v", items[0].Headers)
	}
}
