package aggregator

import (
	"sync"

	"github.com/google/uuid"
)

// State is a request's position in the per-uuid lifecycle:
// NEW on first sight, QUERIED once this station has computed its local
// QueryRes and is waiting on the other side, then one of the two terminal
// states forever after.
type State int32

const (
	StateNew State = iota
	StateQueried
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateQueried:
		return "queried"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool {
	return s == StateAccepted || s == StateRejected
}

// StateMachine tracks every uuid this station has ever seen. Transitions are
// one-way — a request can only move forward — and guarded so a duplicate
// arrival racing the first never double-applies a transition.
type StateMachine struct {
	mu     sync.Mutex
	states map[uuid.UUID]State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{states: make(map[uuid.UUID]State)}
}

func (sm *StateMachine) Get(id uuid.UUID) (State, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.states[id]
	return s, ok
}

// MarkQueried performs the NEW->QUERIED transition and reports whether this
// call was the one that performed it. A false return means some other
// caller already advanced (or finalized) this uuid — the caller must treat
// its own work as a duplicate and drop it.
func (sm *StateMachine) MarkQueried(id uuid.UUID) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.states[id]; ok {
		return false
	}
	sm.states[id] = StateQueried
	return true
}

// Finalize performs the QUERIED->terminal transition and reports whether
// this call was the one that performed it. Called more than once for the
// same uuid (a retried RPC, a redelivered message) is a no-op after the
// first and must not re-run the accumulator side effect.
func (sm *StateMachine) Finalize(id uuid.UUID, accepted bool) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.states[id]; !ok || s.Terminal() {
		return false
	}
	if accepted {
		sm.states[id] = StateAccepted
	} else {
		sm.states[id] = StateRejected
	}
	return true
}
