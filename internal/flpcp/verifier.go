package flpcp

import (
	"github.com/rawblock/privagg/internal/field"
	"github.com/rawblock/privagg/internal/poly"
	"github.com/rawblock/privagg/internal/prng"
)

// Verifier derives the shared QueryState for a proof and runs the per-share
// query phase and the joint two-party decision. Implementations supply only
// GenQueries; Queries and Decision are the same for any circuit because
// they operate purely on the linear-query abstraction.
type Verifier interface {
	GenQueries(pi *Proof) QueryState
	Queries(pi *Proof, qs QueryState) QueryRes
	Decision(res0, res1 QueryRes) bool
}

// base implements the circuit-independent parts of Verifier; BitvectorVerifier
// embeds it.
type base struct{}

func (base) Queries(pi *Proof, qs QueryState) QueryRes {
	p := pi.P
	a := poly.EvalHorner(pi.C, qs.R, p)
	a1 := pi.Query(qs.Q1, p)
	d1 := qs.Q1.Scalar
	a2 := pi.Query(qs.Q2, p)
	d2 := qs.Q2.Scalar
	b := pi.Query(qs.Q0, p)
	return QueryRes{A: a, A1: a1, D1: d1, A2: a2, D2: d2, B: b, P: p}
}

func (base) Decision(res0, res1 QueryRes) bool {
	if res0.P != res1.P {
		return false
	}
	p := res0.P
	a := field.Add(res0.A, res1.A, p)
	a1 := field.Add(field.Sub(res0.A1, res0.D1, p), res1.A1, p)
	a2 := field.Add(field.Sub(res0.A2, res0.D2, p), res1.A2, p)
	b := field.Add(res0.B, res1.B, p)
	return field.Mul(a1, a2, p) == a && b == 0
}

// BitvectorVerifier derives and checks the FLPCP queries that prove every
// input component is 0 or 1 — the only predicate this protocol supports.
type BitvectorVerifier struct {
	base
	Ctxt Context
	Seed uint64
}

// GenQueries derives QueryState deterministically from Ctxt and Seed, so
// any two verifiers configured with the same circuit, generator and seed
// compute bit-identical QueryState independent of each other.
func (v *BitvectorVerifier) GenQueries(pi *Proof) QueryState {
	w := v.Ctxt.Generator
	c := v.Ctxt.Circuit
	p := c.Modulus
	g := prng.New(v.Seed)

	numPts := poly.NextPow2(c.CountMuls() + 1)
	xs := make([]uint64, numPts)
	bad := make(map[uint64]bool, numPts)
	for i := range xs {
		xs[i] = field.Pow(w, uint64(i), p)
		bad[xs[i]] = true
	}
	r := g.FieldElemAvoiding(p, bad)

	inLen := len(pi.X)

	// q1: Lagrange coefficients for x, then L_0 for z0, then zero-padding
	// through z1 and all of c.
	q1vec := make([]uint64, 0, inLen+1+len(pi.C)+1)
	for i := 1; i <= inLen; i++ {
		q1vec = append(q1vec, poly.LagrangeBasis(xs, p, r, i))
	}
	q1vec = append(q1vec, poly.LagrangeBasis(xs, p, r, 0))
	q1vec = append(q1vec, make([]uint64, len(pi.C)+1)...)
	q1 := Query{Vec: q1vec, Scalar: 0}

	// q2: Lagrange coefficients for x, zero for z0, L_0 for z1, zero-padding
	// through c. The scalar cancels the sum of the x-slot coefficients so
	// that, combined with q1's scalar of zero, the two queries reconstruct
	// f0(r) and f1(r) respectively once both shares are combined.
	q2vec := make([]uint64, 0, inLen+2+len(pi.C))
	for i := 1; i <= inLen; i++ {
		q2vec = append(q2vec, poly.LagrangeBasis(xs, p, r, i))
	}
	q2vec = append(q2vec, 0)
	q2vec = append(q2vec, poly.LagrangeBasis(xs, p, r, 0))
	q2vec = append(q2vec, make([]uint64, len(pi.C))...)
	var d2sum uint64
	for i := 0; i < inLen; i++ {
		d2sum = field.Add(d2sum, q2vec[i], p)
	}
	d2 := field.Neg(d2sum, p)
	q2 := Query{Vec: q2vec, Scalar: d2}

	// q0: zero for x and z, then for each coefficient index j, the sum
	// over fresh random r_k of omega^(j*(k+1)) * r_k — this is the
	// satisfiability check b = P(masked point), which must reduce to zero
	// for an accepted proof.
	rs := g.FieldVec(inLen, p)
	q0vec := make([]uint64, inLen+2, inLen+2+len(pi.C))
	for j := 0; j < len(pi.C); j++ {
		var sum uint64
		for k, rk := range rs {
			term := field.Mul(field.Pow(w, uint64(j*(k+1)), p), rk, p)
			sum = field.Add(sum, term, p)
		}
		q0vec = append(q0vec, sum)
	}
	q0 := Query{Vec: q0vec, Scalar: 0}

	return QueryState{R: r, Xs: xs, Q0: q0, Q1: q1, Q2: q2}
}
