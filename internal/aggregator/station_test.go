package aggregator

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/rawblock/privagg/internal/circuit"
	"github.com/rawblock/privagg/internal/field"
	"github.com/rawblock/privagg/internal/flpcp"
)

// pairedClient wires a sender Station directly to a receiver Station's
// CheckProof method, standing in for the real net/rpc transport in these
// single-process tests.
type pairedClient struct {
	recv *Station
}

func (c *pairedClient) CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error) {
	return c.recv.CheckProof(ctx, id, res)
}

func newTestVerifier(prime, generator, n int) *flpcp.BitvectorVerifier {
	return &flpcp.BitvectorVerifier{
		Ctxt: flpcp.Context{
			Generator: uint64(generator),
			Circuit:   circuit.BitvectorTest(uint64(prime), n),
		},
		Seed: 0xC0FFEE,
	}
}

// TestStationAcceptsValidBitvector exercises the full two-party protocol
// end to end for an all-bits-valid input, mirroring scenario S7: a single
// client's submission should be accepted and its input share folded into
// the receiver station's bucket.
func TestStationAcceptsValidBitvector(t *testing.T) {
	const prime = 4293918721
	// 2960092488 has order 128 mod prime; four inputs interpolate over
	// NextPow2(4+1) = 8 points, so the generator is its 16th power.
	generator := field.Pow(2960092488, 16, prime)
	inputs := []uint64{1, 0, 1, 1}

	proverCtxt := flpcp.Context{Generator: generator, Circuit: circuit.BitvectorTest(prime, len(inputs))}
	prover := flpcp.Prover{Ctxt: proverCtxt, Inputs: inputs, Seed: 42}
	pi0, pi1 := prover.GenProofs()

	v := newTestVerifier(prime, int(generator), len(inputs))

	accOut := NewAccumulator(prime)
	accIn := NewAccumulator(prime)
	receiver := NewStation(v, accOut)
	sender := NewStation(v, accIn)

	receiver.Receive(uuidFromProof(pi0), 42, pi0.X, &pi0)
	client := &pairedClient{recv: receiver}

	accepted, err := sender.Send(context.Background(), client, uuidFromProof(pi0), 42, pi1.X, &pi1)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !accepted {
		t.Fatalf("expected valid bitvector proof to be accepted")
	}

	got, ok := accOut.Snapshot(42)
	if !ok {
		t.Fatalf("expected bucket 42 to exist on the receiver's accumulator")
	}
	if len(got) != len(inputs) {
		t.Fatalf("expected accumulated vector length %d, got %d", len(inputs), len(got))
	}
}

// TestStationDuplicateIsIdempotent exercises the state-machine guard a
// retried RPC call must hit: once a uuid has reached a terminal state,
// re-running CheckProof for it must not re-accumulate the input share.
func TestStationDuplicateIsIdempotent(t *testing.T) {
	const prime = 4293918721
	// 2960092488 has order 128 mod prime; three inputs interpolate over
	// NextPow2(3+1) = 4 points, so the generator is its 32nd power.
	generator := field.Pow(2960092488, 32, prime)
	inputs := []uint64{1, 1, 0}

	proverCtxt := flpcp.Context{Generator: generator, Circuit: circuit.BitvectorTest(prime, len(inputs))}
	prover := flpcp.Prover{Ctxt: proverCtxt, Inputs: inputs, Seed: 7}
	pi0, pi1 := prover.GenProofs()

	v := newTestVerifier(prime, int(generator), len(inputs))
	acc := NewAccumulator(prime)
	receiver := NewStation(v, acc)

	id := uuidFromProof(pi0)
	receiver.Receive(id, 9, pi0.X, &pi0)

	qs := v.GenQueries(&pi1)
	res := v.Queries(&pi1, qs)

	first, err := receiver.CheckProof(context.Background(), id, res)
	if err != nil || !first {
		t.Fatalf("expected first CheckProof to accept, got accepted=%v err=%v", first, err)
	}
	before, _ := acc.Snapshot(9)

	second, err := receiver.CheckProof(context.Background(), id, res)
	if err != nil || !second {
		t.Fatalf("expected repeated CheckProof to report the same terminal outcome, got accepted=%v err=%v", second, err)
	}
	after, _ := acc.Snapshot(9)

	if len(before) != len(after) {
		t.Fatalf("accumulator shape changed on duplicate CheckProof call")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("duplicate CheckProof call re-accumulated bucket 9 at index %d: %d != %d", i, before[i], after[i])
		}
	}
}

// uuidFromProof is a test helper standing in for the uuid a real Payload
// carries alongside a proof share; these tests drive Station directly
// rather than through the payload/wire layer.
func uuidFromProof(pi flpcp.Proof) uuid.UUID {
	var id uuid.UUID
	for i, x := range pi.C {
		if i >= 16 {
			break
		}
		id[i] = byte(x)
	}
	return id
}
