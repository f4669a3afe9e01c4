package aggregator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rawblock/privagg/internal/aggerr"
	"github.com/rawblock/privagg/internal/flpcp"
)

// CheckProofClient is the sender-side view of the transport RPC: ask the
// paired aggregator to combine its own local QueryRes for id with res and
// report the joint decision. Implemented by internal/transport over
// net/rpc + TLS.
type CheckProofClient interface {
	CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error)
}

// Station is one aggregator-side participant in the two-party decision
// protocol. Every uuid this station is asked to process goes
// through its StateMachine exactly once end to end: a duplicate arrival
// racing the first is collapsed by the singleflight group keyed on the
// uuid's string form, and a duplicate arriving after the first has already
// reached a terminal state is dropped outright.
type Station struct {
	Verifier flpcp.Verifier
	Acc      *Accumulator
	States   *StateMachine

	// OnDecision, if set, is called exactly once per uuid, the moment its
	// state machine reaches a terminal state — never on a dropped
	// duplicate. cmd/aggregator and cmd/follower wire this to the admin
	// API's websocket broadcast; Station itself has no notion of it.
	OnDecision func(id uuid.UUID, index uint32, accepted bool)

	pending *pendingTable
	inflt   singleflight.Group
}

// NewStation builds a Station ready to receive and send for one verifier
// configuration and one shared accumulator.
func NewStation(v flpcp.Verifier, acc *Accumulator) *Station {
	return &Station{
		Verifier: v,
		Acc:      acc,
		States:   NewStateMachine(),
		pending:  newPendingTable(),
	}
}

func (s *Station) notify(id uuid.UUID, index uint32, accepted bool) {
	if s.OnDecision != nil {
		s.OnDecision(id, index, accepted)
	}
}

// local computes this station's own QueryRes for piShare and advances the
// state machine from NEW to QUERIED. It returns ok=false when some other
// goroutine already handled this uuid — the caller must treat its own
// in-flight work as a no-op duplicate.
type localResult struct {
	out outcome
	ok  bool
}

func (s *Station) local(id uuid.UUID, index uint32, x []uint64, piShare *flpcp.Proof) (outcome, bool) {
	v, _, _ := s.inflt.Do(id.String(), func() (interface{}, error) {
		if !s.States.MarkQueried(id) {
			return localResult{}, nil
		}
		qs := s.Verifier.GenQueries(piShare)
		res := s.Verifier.Queries(piShare, qs)
		out := outcome{index: index, x: append([]uint64(nil), x...), res: res}
		s.pending.Put(id, out)
		return localResult{out: out, ok: true}, nil
	})
	r := v.(localResult)
	return r.out, r.ok
}

// Receive handles an inbound Payload (the full-proof-share half of a
// submission): this station is the receiver for this request, exposing
// CheckProof for its paired sender to call once it has computed its own
// local QueryRes. A duplicate Payload for an already-seen uuid is dropped.
func (s *Station) Receive(id uuid.UUID, index uint32, x []uint64, piShare *flpcp.Proof) {
	s.local(id, index, x, piShare)
}

// CheckProof is the decider's RPC handler: it waits — without
// busy-waiting — for this station's own local QueryRes for id, combines it
// with the caller's res, applies the joint decision, accumulates x into the
// bucket on acceptance, finalizes the state machine, and returns the
// decision. A retried call after id has already reached a terminal state
// returns that terminal outcome without recomputing or re-accumulating.
func (s *Station) CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error) {
	if st, known := s.States.Get(id); known && st.Terminal() {
		return st == StateAccepted, nil
	}
	out, err := s.pending.Wait(ctx, id)
	if err != nil {
		return false, fmt.Errorf("checkproof: waiting for local query: %w", err)
	}
	accepted := s.Verifier.Decision(out.res, res)
	if !s.States.Finalize(id, accepted) {
		st, _ := s.States.Get(id)
		return st == StateAccepted, nil
	}
	if accepted {
		s.Acc.Add(out.index, out.x)
	}
	s.pending.forget(id)
	s.notify(id, out.index, accepted)
	return accepted, nil
}

// Send handles an inbound PayloadSeed (the seed-compressed half of a
// submission): this station is the sender, computing its own local
// QueryRes and then calling the paired receiver's CheckProof RPC to learn
// and apply the joint decision. A duplicate PayloadSeed for an
// already-seen uuid is dropped, reporting the previously-decided outcome
// if one exists.
func (s *Station) Send(ctx context.Context, client CheckProofClient, id uuid.UUID, index uint32, x []uint64, piShare *flpcp.Proof) (bool, error) {
	out, ok := s.local(id, index, x, piShare)
	if !ok {
		if st, known := s.States.Get(id); known && st.Terminal() {
			return st == StateAccepted, nil
		}
		return false, aggerr.ErrRPCFailure
	}
	accepted, err := client.CheckProof(ctx, id, out.res)
	if err != nil {
		return false, fmt.Errorf("send: checkproof rpc: %w", err)
	}
	if s.States.Finalize(id, accepted) {
		if accepted {
			s.Acc.Add(out.index, out.x)
		}
		s.notify(id, out.index, accepted)
	}
	return accepted, nil
}
