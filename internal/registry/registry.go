// Package registry maps SessionId to a running SessionState and the
// per-connection bookkeeping (outbound queue, byte/message counters,
// connect time) the transport and dispatcher layers share.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/riverbend/marketsim/internal/session"
)

// Entry pairs one SessionState with its connection metadata. The
// dispatcher mutates Session on the advance path; the transport layer's
// receive loop mutates the byte/message-in counters; both may enqueue
// outbound frames. Session itself assumes only one mutator at a time,
// which the caller (see internal/dispatcher) is responsible for.
type Entry struct {
	Session *session.State

	outbound *outboundQueue

	ConnectedAtMs int64
	IPAddress     string

	bytesIn     uint64
	bytesOut    uint64
	messagesIn  uint64
	messagesOut uint64
	malformed   uint64
}

// Enqueue appends an encoded frame to the entry's outbound queue,
// evicting the oldest queued frame on overflow.
func (e *Entry) Enqueue(frame []byte) {
	e.outbound.Enqueue(frame)
	atomic.AddUint64(&e.messagesOut, 1)
	atomic.AddUint64(&e.bytesOut, uint64(len(frame)))
}

// Drain removes and returns every currently queued outbound frame.
func (e *Entry) Drain() [][]byte { return e.outbound.Drain() }

// DroppedOutbound is the cumulative count of outbound frames evicted
// for queue overflow.
func (e *Entry) DroppedOutbound() uint64 { return e.outbound.Dropped() }

// RecordInbound updates inbound metrics for one received frame.
func (e *Entry) RecordInbound(n int) {
	atomic.AddUint64(&e.messagesIn, 1)
	atomic.AddUint64(&e.bytesIn, uint64(n))
}

// RecordMalformed increments the count of inbound frames dropped for
// failing to parse as a recognized command.
func (e *Entry) RecordMalformed() { atomic.AddUint64(&e.malformed, 1) }

// MalformedCount returns the cumulative malformed-frame count.
func (e *Entry) MalformedCount() uint64 { return atomic.LoadUint64(&e.malformed) }

// Registry is the concurrency-safe SessionId -> Entry map. It is the
// only structure touched from more than one task; its lock guards
// nothing but lookup/insert/remove/iterate. The outbound enqueue above
// takes only the entry's own queue lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[uint32]*Entry
	nextId  uint32

	sendBufferSize int
}

// New creates an empty Registry. sendBufferSize bounds every session's
// outbound queue.
func New(sendBufferSize int) *Registry {
	return &Registry{
		entries:        make(map[uint32]*Entry),
		sendBufferSize: sendBufferSize,
	}
}

// NextId assigns a monotonically increasing SessionId, never reused
// within the process lifetime.
func (r *Registry) NextId() uint32 {
	return atomic.AddUint32(&r.nextId, 1)
}

// Insert registers a session under its own Id.
func (r *Registry) Insert(s *session.State, ipAddress string, nowMs int64) *Entry {
	e := &Entry{
		Session:       s,
		outbound:      newOutboundQueue(r.sendBufferSize),
		ConnectedAtMs: nowMs,
		IPAddress:     ipAddress,
	}
	r.mu.Lock()
	r.entries[s.Id] = e
	r.mu.Unlock()
	return e
}

// Remove drops a session from the registry. It is a no-op if absent.
func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Get returns the entry for id, if present.
func (r *Registry) Get(id uint32) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Ids returns a snapshot of every currently registered SessionId.
func (r *Registry) Ids() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint32, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// ForEach invokes fn for a snapshot of every registered (id, entry)
// pair. fn runs outside the registry lock.
func (r *Registry) ForEach(fn func(id uint32, e *Entry)) {
	r.mu.RLock()
	snapshot := make(map[uint32]*Entry, len(r.entries))
	for id, e := range r.entries {
		snapshot[id] = e
	}
	r.mu.RUnlock()

	for id, e := range snapshot {
		fn(id, e)
	}
}

// Len reports the number of currently registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
