package aggregator

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rawblock/privagg/internal/flpcp"
)

// outcome is what a station's own ingestion of a request produced: its local
// QueryRes plus the index and input share it must fold into the accumulator
// if the joint decision accepts.
type outcome struct {
	index uint32
	x     []uint64
	res   flpcp.QueryRes
}

// pendingTable is the one-shot rendezvous point a decider's RPC handler
// blocks on instead of the reference implementation's busy loop: Put is
// called once, by whichever goroutine finishes computing the local
// QueryRes for a uuid; Wait blocks until that happens or ctx is done.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*pendingEntry
}

type pendingEntry struct {
	ready chan struct{}
	once  sync.Once
	out   outcome
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uuid.UUID]*pendingEntry)}
}

func (t *pendingTable) entry(id uuid.UUID) *pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		e = &pendingEntry{ready: make(chan struct{})}
		t.entries[id] = e
	}
	return e
}

// Put records the outcome for id and wakes any goroutine blocked in Wait.
// Only the first call for a given id has any effect.
func (t *pendingTable) Put(id uuid.UUID, out outcome) {
	e := t.entry(id)
	e.once.Do(func() {
		e.out = out
		close(e.ready)
	})
}

// Wait blocks until Put(id, ...) has been called, or ctx is done.
func (t *pendingTable) Wait(ctx context.Context, id uuid.UUID) (outcome, error) {
	e := t.entry(id)
	select {
	case <-e.ready:
		return e.out, nil
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
}

// forget drops the rendezvous entry for id once it is no longer needed,
// bounding the table's memory to in-flight requests.
func (t *pendingTable) forget(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}
