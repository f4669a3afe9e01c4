// Package flpcp implements the fully-linear probabilistically-checkable
// proof: the prover builds a Proof attesting the client's input satisfies
// the bit-validity circuit, splits it into two additive shares, and the
// verifier's linear queries plus the two-party decision accept or reject
// it without either share alone revealing the input.
package flpcp

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/rawblock/privagg/internal/field"
	"github.com/rawblock/privagg/internal/prng"
	"github.com/rawblock/privagg/internal/secretshare"
)

// Proof is pi = (x, w, z, c): the client inputs, a reserved-but-unused
// vector (always empty for this protocol instance), the two blinding
// values, and the coefficients of P(X) = f0(X)*f1(X).
type Proof struct {
	X []uint64
	W []uint64
	Z []uint64
	C []uint64
	P uint64
}

// Len returns the total length of the flattened proof vector.
func (pi *Proof) Len() int {
	return len(pi.X) + len(pi.W) + len(pi.Z) + len(pi.C)
}

// Collect concatenates x, w, z, c in that fixed order — the layout every
// Query vector must mirror.
func (pi *Proof) Collect() []uint64 {
	out := make([]uint64, 0, pi.Len())
	out = append(out, pi.X...)
	out = append(out, pi.W...)
	out = append(out, pi.Z...)
	out = append(out, pi.C...)
	return out
}

// Query applies a linear query to the proof: <pi, q.Vec> + q.Scalar mod p.
func (pi *Proof) Query(q Query, p uint64) uint64 {
	return field.Dot(pi.Collect(), q.Vec, q.Scalar, p)
}

// Share splits every field of pi into two additive shares using g,
// continuing whatever draw sequence g is already at — callers that need a
// specific wire-contract ordering (drawing z before splitting, for
// instance) must sequence their own draws against g before calling Share.
func (pi *Proof) Share(g *prng.Gen) (pi0, pi1 Proof) {
	x0, x1 := secretshare.GenVec(pi.X, pi.P, g)
	w0, w1 := secretshare.GenVec(pi.W, pi.P, g)
	z0, z1 := secretshare.GenVec(pi.Z, pi.P, g)
	c0, c1 := secretshare.GenVec(pi.C, pi.P, g)
	pi0 = Proof{X: x0, W: w0, Z: z0, C: c0, P: pi.P}
	pi1 = Proof{X: x1, W: w1, Z: z1, C: c1, P: pi.P}
	return
}

// Reconstruct recombines pi (as one share) with other (the matching share)
// into the original proof.
func (pi *Proof) Reconstruct(other *Proof) Proof {
	return Proof{
		X: secretshare.ReconstructVec(pi.X, other.X, pi.P),
		W: secretshare.ReconstructVec(pi.W, other.W, pi.P),
		Z: secretshare.ReconstructVec(pi.Z, other.Z, pi.P),
		C: secretshare.ReconstructVec(pi.C, other.C, pi.P),
		P: pi.P,
	}
}

// ProofSeed is the compact, seed-compressed representation of one share:
// expanding seed deterministically reproduces every field of that share.
type ProofSeed struct {
	Seed uint64
	XLen uint16
	WLen uint16
	ZLen uint16
	CLen uint16
	P    uint64
}

// GetShare re-derives the seed-compressed share by re-seeding the
// deterministic generator with Seed and drawing x, w, z, c in that fixed
// order — the same order ShareSeed drew them in when it produced Seed.
func (ps ProofSeed) GetShare() Proof {
	g := prng.New(ps.Seed)
	return Proof{
		X: g.FieldVec(int(ps.XLen), ps.P),
		W: g.FieldVec(int(ps.WLen), ps.P),
		Z: g.FieldVec(int(ps.ZLen), ps.P),
		C: g.FieldVec(int(ps.CLen), ps.P),
		P: ps.P,
	}
}

// ShareSeed compresses one share of pi to a fresh random seed and returns
// the explicit complementary share: a ProofSeed whose GetShare() regenerates
// the first share, and a Proof holding pi - (that share), component-wise.
//
// The seed here is genuinely fresh per-proof randomness, not the
// protocol's deterministic per-party seed: "the prover takes a
// caller-supplied seed, not a process-wide RNG" governs the *proof
// construction* seed; this is the one place the protocol needs an
// unpredictable value, since it is never redrawn or compared against
// anything — only ever re-derived from the seed that travels with it).
func ShareSeed(pi *Proof) (ProofSeed, Proof) {
	var seedBytes [8]byte
	_, _ = rand.Read(seedBytes[:])
	seed := binary.LittleEndian.Uint64(seedBytes[:])

	g := prng.New(seed)
	x0 := g.FieldVec(len(pi.X), pi.P)
	w0 := g.FieldVec(len(pi.W), pi.P)
	z0 := g.FieldVec(len(pi.Z), pi.P)
	c0 := g.FieldVec(len(pi.C), pi.P)

	other := Proof{
		X: subVec(pi.X, x0, pi.P),
		W: subVec(pi.W, w0, pi.P),
		Z: subVec(pi.Z, z0, pi.P),
		C: subVec(pi.C, c0, pi.P),
		P: pi.P,
	}
	ps := ProofSeed{
		Seed: seed,
		XLen: uint16(len(pi.X)),
		WLen: uint16(len(pi.W)),
		ZLen: uint16(len(pi.Z)),
		CLen: uint16(len(pi.C)),
		P:    pi.P,
	}
	return ps, other
}

func subVec(x, y []uint64, p uint64) []uint64 {
	out := make([]uint64, len(x))
	for i := range x {
		out[i] = field.Sub(x[i], y[i], p)
	}
	return out
}

// Query is a linear functional over a flattened proof vector: applying it
// computes <pi, v> + s mod p.
type Query struct {
	Vec    []uint64
	Scalar uint64
}

// QueryRes is the per-share response to a QueryState: the polynomial
// evaluation a = P_share(r), the two cross-checking query responses
// (a1, a2) and their offsets (d1, d2), and the satisfiability query b.
type QueryRes struct {
	A  uint64
	A1 uint64
	D1 uint64
	A2 uint64
	D2 uint64
	B  uint64
	P  uint64
}

// QueryState is the shared, deterministically-derived verifier state: the
// challenge r, the subgroup points xs, and the three queries q0, q1, q2.
type QueryState struct {
	R  uint64
	Xs []uint64
	Q0 Query
	Q1 Query
	Q2 Query
}
