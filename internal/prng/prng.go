// Package prng implements the seeded deterministic generator that both
// sides of the protocol must agree on bit-for-bit: the seed-to-share
// expansion (internal/flpcp's ShareSeed/GetShare), the prover's blinding draws and the
// verifier's rejection-sampled challenge are all part of the same wire
// contract — same algorithm, same block size, same rejection rule.
//
// Grounded on github.com/zeebo/blake3 (already pulled in by
// tuneinsight-lattigo and luxfi-threshold in the retrieved corpus): BLAKE3
// is an extendable-output function, so seeding a hasher with an 8-byte
// little-endian seed and reading its digest as an arbitrarily long stream
// gives a reproducible, unbounded source of uniform bytes — exactly what a
// seed-compressed share needs to regenerate on both ends.
package prng

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Gen is a deterministic byte stream keyed by a 64-bit seed.
type Gen struct {
	stream *blake3.Hasher
	digest interface {
		Read(p []byte) (int, error)
	}
}

// New seeds a fresh generator. The same seed always produces the same
// stream, on either side of the wire.
func New(seed uint64) *Gen {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	h := blake3.New()
	_, _ = h.Write(seedBytes[:])
	return &Gen{stream: h, digest: h.Digest()}
}

// Uint64 draws the next 8 bytes of the stream as a little-endian uint64.
func (g *Gen) Uint64() uint64 {
	var buf [8]byte
	_, _ = g.digest.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// FieldElem draws a value uniform over [0, p) via rejection sampling: draws
// of the raw stream that fall in the partial top bucket (>= the largest
// multiple of p not exceeding 2^64) are discarded and redrawn, so the
// reduction mod p is exactly uniform rather than biased toward small
// residues.
func (g *Gen) FieldElem(p uint64) uint64 {
	if p == 0 {
		return 0
	}
	cutoff := (^uint64(0) / p) * p
	for {
		v := g.Uint64()
		if v < cutoff {
			return v % p
		}
	}
}

// FieldElemAvoiding draws a value uniform over [0, p) that is also not a
// member of bad — used by the verifier to reject challenges that land
// exactly on a subgroup point.
func (g *Gen) FieldElemAvoiding(p uint64, bad map[uint64]bool) uint64 {
	for {
		v := g.FieldElem(p)
		if !bad[v] {
			return v
		}
	}
}

// FieldVec draws n uniform values over [0, p) in order.
func (g *Gen) FieldVec(n int, p uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = g.FieldElem(p)
	}
	return out
}
