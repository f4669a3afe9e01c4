// Package payload assembles the wire payloads a client submission is split
// into: a Payload carrying the full proof share for the
// seed-share's counterpart aggregator, and a PayloadSeed carrying the
// seed-compressed share for the other. The two share a uuid so the
// two-party decision protocol can bind them back together without either
// aggregator learning the plaintext input.
//
// The core never inspects envelopes: whatever confidentiality/authenticity
// wrapping carries these bytes between tiers (internal/transport's TLS
// channel here) is strictly outside this package's contract.
package payload

import (
	"github.com/google/uuid"

	"github.com/rawblock/privagg/internal/circuit"
	"github.com/rawblock/privagg/internal/flpcp"
)

// Payload carries a full proof share, addressed to the aggregator that
// holds the matching explicit (non-seed) share.
type Payload struct {
	UUID  uuid.UUID
	Index uint32
	Proof flpcp.Proof
}

// PayloadSeed carries a seed-compressed proof share, addressed to the
// aggregator that re-derives it from the seed.
type PayloadSeed struct {
	UUID      uuid.UUID
	Index     uint32
	ProofSeed flpcp.ProofSeed
}

// GenPayloads runs the prover over inputs under the bitvector-test circuit
// for the given field (prime, generator) and splits the result into one
// seed-compressed share and one explicit share, both tagged with a fresh
// request id and the caller's bucket index.
func GenPayloads(index uint32, inputs []uint64, prime, generator, proverSeed uint64) (Payload, PayloadSeed) {
	ctxt := flpcp.Context{
		Generator: generator,
		Circuit:   circuit.BitvectorTest(prime, len(inputs)),
	}
	prover := flpcp.Prover{Ctxt: ctxt, Inputs: inputs, Seed: proverSeed}
	pi := prover.GenProof()
	ps, explicit := flpcp.ShareSeed(&pi)

	id := uuid.New()
	return Payload{UUID: id, Index: index, Proof: explicit},
		PayloadSeed{UUID: id, Index: index, ProofSeed: ps}
}
