// Package aggerr defines the typed failure kinds the core returns to its
// caller: decode/validation failures, never a process-terminating error.
// DuplicateUuid is explicitly not an error
// (the aggregator drops repeats silently) so it has no sentinel here.
package aggerr

import "errors"

var (
	// ErrMalformedPayload signals a decode failure on a wire payload.
	ErrMalformedPayload = errors.New("aggerr: malformed payload")
	// ErrFieldMismatch signals two sides disagree on the modulus p.
	ErrFieldMismatch = errors.New("aggerr: field modulus mismatch")
	// ErrDimensionMismatch signals a query/proof length mismatch.
	ErrDimensionMismatch = errors.New("aggerr: dimension mismatch")
	// ErrInvalidChallenge signals the verifier's challenge r landed on a
	// subgroup point — should never occur after rejection sampling.
	ErrInvalidChallenge = errors.New("aggerr: challenge landed on subgroup point")
	// ErrNonInvertible signals a zero Lagrange denominator — impossible
	// when subgroup points are distinct; treated as a fatal bug, not a
	// recoverable condition, if it is ever observed.
	ErrNonInvertible = errors.New("aggerr: non-invertible denominator")
	// ErrRPCFailure signals the decider RPC round-trip failed; the caller
	// discards its local share rather than retry with stale state.
	ErrRPCFailure = errors.New("aggerr: rpc round-trip failed")
)
