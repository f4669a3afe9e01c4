// Package poly implements the polynomial operations the FLPCP prover and
// verifier need: interpolation on a multiplicative subgroup (via an
// iterative Cooley-Tukey NTT, not generic Lagrange interpolation),
// dense polynomial multiplication, and Horner evaluation.
//
// The NTT butterfly structure here is grounded on the same shape used by
// gnark-crypto's fft.Domain and lattigo's ring NTT, both present in the
// retrieved corpus; neither is reusable directly because both are
// code-generated/specialized for a single compile-time field, while this
// protocol's prime and generator are chosen at runtime from config.
package poly

import "github.com/rawblock/privagg/internal/field"

// NextPow2 returns the smallest power of two >= n (n >= 1).
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	k := 1
	for k < n {
		k <<= 1
	}
	return k
}

func bitReverse(a []uint64) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// transform performs an in-place iterative Cooley-Tukey NTT of a (length a
// power of two) using root as the primitive len(a)-th root of unity. Passing
// the inverse root runs the inverse transform (up to the final 1/n scale,
// applied by the caller).
func transform(a []uint64, p, root uint64) {
	n := len(a)
	bitReverse(a)
	for length := 2; length <= n; length <<= 1 {
		wLen := field.Pow(root, uint64(n/length), p)
		for i := 0; i < n; i += length {
			w := uint64(1)
			half := length / 2
			for j := 0; j < half; j++ {
				u := a[i+j]
				v := field.Mul(a[i+j+half], w, p)
				a[i+j] = field.Add(u, v, p)
				a[i+j+half] = field.Sub(u, v, p)
				w = field.Mul(w, wLen, p)
			}
		}
	}
}

// InterpolateSubgroup takes the values of a polynomial at the points
// [omega^0, omega^1, ..., omega^(n-1)] (n = len(values), a power of two, and
// omega an n-th primitive root of unity mod p) and returns its n
// coefficients, lowest degree first.
func InterpolateSubgroup(values []uint64, p, omega uint64) []uint64 {
	n := len(values)
	coeffs := make([]uint64, n)
	copy(coeffs, values)
	invOmega := field.Inv(omega, p)
	transform(coeffs, p, invOmega)
	invN := field.Inv(uint64(n), p)
	for i := range coeffs {
		coeffs[i] = field.Mul(coeffs[i], invN, p)
	}
	return coeffs
}

// Mul computes the dense convolution of two coefficient vectors mod p,
// returning a slice of length len(a)+len(b)-1. Schoolbook, not NTT-based —
// the original reference implementation multiplies the two interpolated
// polynomials the same way (a generic dense multiply, not a transform over
// a larger domain), and circuit sizes here (a few hundred to ~1024
// multiplication gates) make the quadratic cost negligible.
func Mul(a, b []uint64, p uint64) []uint64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]uint64, len(a)+len(b)-1)
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		for j, bj := range b {
			out[i+j] = field.MulAdd(ai, bj, out[i+j], p)
		}
	}
	return out
}

// EvalHorner evaluates the polynomial with the given coefficients (lowest
// degree first) at x mod p.
func EvalHorner(coeffs []uint64, x, p uint64) uint64 {
	var acc uint64
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = field.MulAdd(acc, x, coeffs[i], p)
	}
	return acc
}

// LagrangeBasis evaluates the j-th Lagrange basis polynomial for the point
// set xs at r: L_j(r) = prod_{m != j} (r - xs[m]) / (xs[j] - xs[m]), mod p.
// xs is assumed to hold distinct points (true for powers of a primitive
// root), so the denominator is always invertible; that invariant is the
// NonInvertible error kind's "should never happen" case.
func LagrangeBasis(xs []uint64, p, r uint64, j int) uint64 {
	prod := uint64(1)
	for m, xm := range xs {
		if m == j {
			continue
		}
		num := field.Sub(r, xm, p)
		den := field.Sub(xs[j], xm, p)
		prod = field.Mul(prod, field.Mul(num, field.Inv(den, p), p), p)
	}
	return prod
}
