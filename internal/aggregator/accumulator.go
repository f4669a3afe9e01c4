// Package aggregator implements the two-party decision protocol and the
// per-bucket accumulator: the state machine that takes a request id from
// first receipt through a terminal ACCEPTED/REJECTED outcome, and the
// concurrency-safe bucket map that only grows by component-wise modular
// addition.
package aggregator

import (
	"sync"

	"github.com/rawblock/privagg/internal/secretshare"
)

// bucket holds one accumulated vector behind its own lock, so accepted
// submissions to different buckets never block each other.
type bucket struct {
	mu  sync.Mutex
	vec []uint64
}

// Accumulator is a mapping from bucket index to an accumulating field
// vector, safe for concurrent use by many in-flight requests. Two distinct
// buckets never contend with each other: each has its own lock, and the
// top-level lock is only ever held briefly, to look up or create that
// per-bucket entry in the map.
type Accumulator struct {
	p       uint64
	mu      sync.Mutex
	buckets map[uint32]*bucket
}

// NewAccumulator creates an empty accumulator over field p.
func NewAccumulator(p uint64) *Accumulator {
	return &Accumulator{p: p, buckets: make(map[uint32]*bucket)}
}

// bucketFor returns the bucket for index, creating it if this is the first
// time index has been seen.
func (a *Accumulator) bucketFor(index uint32) *bucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[index]
	if !ok {
		b = &bucket{}
		a.buckets[index] = b
	}
	return b
}

// Add folds x into bucket index, component-wise mod p. The first call for a
// given bucket seeds it with x directly (equivalent to adding to an
// implicit all-zero vector).
func (a *Accumulator) Add(index uint32, x []uint64) {
	b := a.bucketFor(index)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.vec == nil || len(b.vec) != len(x) {
		b.vec = append([]uint64(nil), x...)
		return
	}
	b.vec = secretshare.AddVec(b.vec, x, a.p)
}

// Snapshot returns a copy of one bucket's current accumulated vector.
func (a *Accumulator) Snapshot(index uint32) ([]uint64, bool) {
	a.mu.Lock()
	b, ok := a.buckets[index]
	a.mu.Unlock()
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.vec == nil {
		return nil, false
	}
	return append([]uint64(nil), b.vec...), true
}

// Restore seeds the accumulator directly from a previously-persisted
// snapshot, bypassing the modular-add fold Add applies — used once at
// startup to resume from a durable store rather than from an empty state.
func (a *Accumulator) Restore(snapshot map[uint32][]uint64) {
	for index, v := range snapshot {
		b := a.bucketFor(index)
		b.mu.Lock()
		b.vec = append([]uint64(nil), v...)
		b.mu.Unlock()
	}
}

// SnapshotAll returns a copy of every bucket's current accumulated vector,
// keyed by bucket index — used by the admin API and the durable store.
func (a *Accumulator) SnapshotAll() map[uint32][]uint64 {
	a.mu.Lock()
	bs := make(map[uint32]*bucket, len(a.buckets))
	for k, b := range a.buckets {
		bs[k] = b
	}
	a.mu.Unlock()

	out := make(map[uint32][]uint64, len(bs))
	for k, b := range bs {
		b.mu.Lock()
		out[k] = append([]uint64(nil), b.vec...)
		b.mu.Unlock()
	}
	return out
}
