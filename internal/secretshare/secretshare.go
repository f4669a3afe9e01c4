// Package secretshare implements additive two-out-of-two secret sharing
// over the protocol's prime field, for scalars and vectors. The
// seed-compressed share variant, which lets one aggregator's share collapse
// to an 8-byte seed on the wire, lives in internal/flpcp (ShareSeed and
// ProofSeed.GetShare).
package secretshare

import (
	"github.com/rawblock/privagg/internal/field"
	"github.com/rawblock/privagg/internal/prng"
)

// Gen splits x into two additive shares mod p: share0 is uniform, and
// share1 = x - share0.
func Gen(x, p uint64, g *prng.Gen) (s0, s1 uint64) {
	s0 = g.FieldElem(p)
	s1 = field.Sub(x, s0, p)
	return
}

// Reconstruct recombines two shares into the original value mod p.
func Reconstruct(s0, s1, p uint64) uint64 {
	return field.Add(s0, s1, p)
}

// GenVec splits every entry of xs into two shares, component-wise.
func GenVec(xs []uint64, p uint64, g *prng.Gen) (s0, s1 []uint64) {
	s0 = make([]uint64, len(xs))
	s1 = make([]uint64, len(xs))
	for i, x := range xs {
		s0[i], s1[i] = Gen(x, p, g)
	}
	return
}

// ReconstructVec recombines two share vectors component-wise.
func ReconstructVec(s0, s1 []uint64, p uint64) []uint64 {
	out := make([]uint64, len(s0))
	for i := range s0 {
		out[i] = Reconstruct(s0[i], s1[i], p)
	}
	return out
}

// AddVec adds two vectors component-wise mod p (used by the accumulator to
// fold an accepted input-share into a bucket).
func AddVec(acc, x []uint64, p uint64) []uint64 {
	out := make([]uint64, len(acc))
	for i := range acc {
		out[i] = field.Add(acc[i], x[i], p)
	}
	return out
}
