package registry

import (
	"testing"

	"github.com/riverbend/marketsim/internal/session"
)

func newTestEntry(r *Registry, id uint32) *Entry {
	cfg := session.Config{Symbol: "AAPL", BasePrice: 180, Spread: 0.1, Speed: 1.0}
	s := session.New(id, cfg, int64(id))
	return r.Insert(s, "127.0.0.1", 0)
}

func TestInsertGetRemove(t *testing.T) {
	r := New(100)
	id := r.NextId()
	newTestEntry(r, id)

	if _, ok := r.Get(id); !ok {
		t.Fatal("expected entry to be present after insert")
	}
	r.Remove(id)
	if _, ok := r.Get(id); ok {
		t.Fatal("expected entry to be gone after remove")
	}
}

func TestNextIdMonotonicNeverReused(t *testing.T) {
	r := New(100)
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		id := r.NextId()
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
	}
}

func TestIdsAndForEachSeeSameSessions(t *testing.T) {
	r := New(100)
	for i := 0; i < 5; i++ {
		newTestEntry(r, r.NextId())
	}
	if r.Len() != 5 {
		t.Fatalf("Len = %d, want 5", r.Len())
	}
	count := 0
	r.ForEach(func(id uint32, e *Entry) { count++ })
	if count != 5 {
		t.Fatalf("ForEach visited %d, want 5", count)
	}
}

func TestEntryEnqueueDrainRoundTrip(t *testing.T) {
	r := New(100)
	e := newTestEntry(r, r.NextId())
	e.Enqueue([]byte(`{"type":"tick"}`))
	msgs := e.Drain()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 queued frame, got %d", len(msgs))
	}
}

func TestEntryRecordMalformed(t *testing.T) {
	r := New(100)
	e := newTestEntry(r, r.NextId())
	e.RecordMalformed()
	e.RecordMalformed()
	if e.MalformedCount() != 2 {
		t.Fatalf("malformed count = %d, want 2", e.MalformedCount())
	}
}
