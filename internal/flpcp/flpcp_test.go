package flpcp

import (
	"reflect"
	"testing"

	"github.com/rawblock/privagg/internal/circuit"
)

func newBitvectorCtxt(l int) Context {
	const p = 4293918721
	const omega = 2960092488
	return Context{Generator: omega, Circuit: circuit.BitvectorTest(p, l)}
}

func decide(t *testing.T, ctxt Context, inputs []uint64) bool {
	t.Helper()
	prover := Prover{Ctxt: ctxt, Inputs: inputs, Seed: 1}
	pi0, pi1 := prover.GenProofs()

	v0 := &BitvectorVerifier{Ctxt: ctxt, Seed: 11}
	v1 := &BitvectorVerifier{Ctxt: ctxt, Seed: 11}

	qs0 := v0.GenQueries(&pi0)
	qs1 := v1.GenQueries(&pi1)
	if qs0.R != qs1.R {
		t.Fatalf("both verifiers must derive the same challenge from the same seed: %d != %d", qs0.R, qs1.R)
	}

	res0 := v0.Queries(&pi0, qs0)
	res1 := v1.Queries(&pi1, qs1)
	return v0.Decision(res0, res1)
}

func TestDecisionAcceptsValidBitvector(t *testing.T) {
	ctxt := newBitvectorCtxt(127)
	inputs := make([]uint64, 127)
	for i := range inputs {
		inputs[i] = 1
	}
	if !decide(t, ctxt, inputs) {
		t.Errorf("decision on an all-ones 127-bit vector = false, want true")
	}
}

func TestDecisionRejectsInvalidBitvector(t *testing.T) {
	ctxt := newBitvectorCtxt(127)
	inputs := make([]uint64, 127)
	for i := range inputs {
		inputs[i] = 2
	}
	if decide(t, ctxt, inputs) {
		t.Errorf("decision on an all-twos 127-bit vector = true, want false")
	}
}

func TestShareSeedRoundTrip(t *testing.T) {
	ctxt := newBitvectorCtxt(4)
	prover := Prover{Ctxt: ctxt, Inputs: []uint64{1, 0, 1, 1}, Seed: 5}
	pi := prover.GenProof()

	ps, explicit := ShareSeed(&pi)
	seeded := ps.GetShare()

	reconstructed := seeded.Reconstruct(&explicit)
	if !reflect.DeepEqual(reconstructed.X, pi.X) {
		t.Errorf("reconstructed X = %v, want %v", reconstructed.X, pi.X)
	}
	if !reflect.DeepEqual(reconstructed.Z, pi.Z) {
		t.Errorf("reconstructed Z = %v, want %v", reconstructed.Z, pi.Z)
	}
	if !reflect.DeepEqual(reconstructed.C, pi.C) {
		t.Errorf("reconstructed C = %v, want %v", reconstructed.C, pi.C)
	}
}
