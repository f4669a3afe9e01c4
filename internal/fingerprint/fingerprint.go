// Package fingerprint derives a short, comparable digest of the field
// parameters a deployment's stations must agree on. A parameter mismatch
// between peers is otherwise undefined behavior; this package lets every
// station detect that mismatch at startup instead of discovering it as a
// silent wrong-answer decision later.
package fingerprint

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Fingerprint is a double-SHA256 digest over a deployment's field prime,
// subgroup generator, configured input length, and the verifier's shared
// seed.
type Fingerprint [chainhash.HashSize]byte

// Compute derives the fingerprint for one set of deployment parameters.
func Compute(prime, generator uint64, inputLen int, verifierSeed uint64) Fingerprint {
	var buf [8 + 8 + 8 + 8]byte
	binary.LittleEndian.PutUint64(buf[0:8], prime)
	binary.LittleEndian.PutUint64(buf[8:16], generator)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(inputLen))
	binary.LittleEndian.PutUint64(buf[24:32], verifierSeed)
	h := chainhash.DoubleHashH(buf[:])
	return Fingerprint(h)
}

// String renders the fingerprint the way chainhash.Hash prints — reversed
// byte order, as a hex string — so it reads the same as any other hash this
// deployment logs.
func (f Fingerprint) String() string {
	h := chainhash.Hash(f)
	return h.String()
}

// Equal reports whether two fingerprints match.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}
