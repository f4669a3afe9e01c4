package flpcp

import (
	"github.com/rawblock/privagg/internal/circuit"
	"github.com/rawblock/privagg/internal/poly"
	"github.com/rawblock/privagg/internal/prng"
)

// Context couples a circuit with the subgroup generator omega used to
// interpolate over it. Both the prover and every verifier instance for a
// given deployment share one Context.
type Context struct {
	Generator uint64
	Circuit   *circuit.Circuit
}

// Prover holds one client's inputs and the caller-supplied deterministic
// seed driving every random draw in proof construction — never a
// process-wide RNG — so the same (ctxt, inputs, seed) always yields the
// same proof.
type Prover struct {
	Ctxt   Context
	Inputs []uint64
	Seed   uint64
}

// buildProof runs the shared construction steps and returns the unshared
// Proof plus the *prng.Gen positioned right after
// the z-draws, so GenProofs can continue drawing from the same stream for
// the share split — matching the wire contract the original reference
// implementation establishes by reusing one RNG across both steps.
func (pr *Prover) buildProof() (Proof, *prng.Gen) {
	w := pr.Ctxt.Generator
	c := pr.Ctxt.Circuit
	p := c.Modulus
	g := prng.New(pr.Seed)

	_, us, vs := c.WireVals(pr.Inputs)

	z0 := g.FieldElem(p)
	z1 := g.FieldElem(p)
	us = append([]uint64{z0}, us...)
	vs = append([]uint64{z1}, vs...)

	n := poly.NextPow2(len(us))
	us = append(us, make([]uint64, n-len(us))...)
	vs = append(vs, make([]uint64, n-len(vs))...)

	f0 := poly.InterpolateSubgroup(us, p, w)
	f1 := poly.InterpolateSubgroup(vs, p, w)
	prod := poly.Mul(f0, f1, p)

	maxCoeffs := (n-1)*2 + 1
	cp := make([]uint64, maxCoeffs)
	copy(cp, prod)

	pi := Proof{
		X: append([]uint64(nil), pr.Inputs...),
		W: nil,
		Z: []uint64{z0, z1},
		C: cp,
		P: p,
	}
	return pi, g
}

// GenProof builds the (unshared) Proof for pr's inputs.
func (pr *Prover) GenProof() Proof {
	pi, _ := pr.buildProof()
	return pi
}

// GenProofs builds the Proof and immediately splits it into the two
// additive shares that travel to the two aggregators.
func (pr *Prover) GenProofs() (Proof, Proof) {
	pi, g := pr.buildProof()
	return pi.Share(g)
}
