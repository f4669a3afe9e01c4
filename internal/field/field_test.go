package field

import "testing"

func TestAddSubWraparound(t *testing.T) {
	const p = 4293918721
	tests := []struct {
		name string
		a, b uint64
		want uint64
	}{
		{"no wrap", 3, 4, 7},
		{"wraps at p", p - 1, 2, 1},
		{"zero plus zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Add(tt.a, tt.b, p); got != tt.want {
				t.Errorf("Add(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// a+b-b == a, the invariant Sub must preserve.
			if got := Sub(Add(tt.a, tt.b, p), tt.b, p); got != tt.a%p {
				t.Errorf("Sub(Add(a,b),b) = %d, want %d", got, tt.a%p)
			}
		})
	}
}

func TestNeg(t *testing.T) {
	const p = 97
	for a := uint64(0); a < p; a++ {
		if got := Add(a, Neg(a, p), p); got != 0 {
			t.Errorf("a + Neg(a) = %d for a=%d, want 0", got, a)
		}
	}
}

func TestMulOverflowsPlainUint64(t *testing.T) {
	const p = 18446744073709547521 // close to 2^64, forces the 128-bit path
	a := uint64(18446744073709547520)
	b := uint64(18446744073709547519)
	got := Mul(a, b, p)
	// a == p-1 == -1 mod p, b == p-2 == -2 mod p, so a*b == 2 mod p.
	if got != 2 {
		t.Errorf("Mul(p-1,p-2) = %d, want 2", got)
	}
}

func TestPowAndInv(t *testing.T) {
	const p = 97
	for a := uint64(1); a < p; a++ {
		inv := Inv(a, p)
		if Mul(a, inv, p) != 1 {
			t.Errorf("a * Inv(a) != 1 for a=%d", a)
		}
	}
	if Pow(2, 10, 97) != 1024%97 {
		t.Errorf("Pow(2,10,97) = %d, want %d", Pow(2, 10, 97), 1024%97)
	}
}

func TestDot(t *testing.T) {
	const p = 97
	xs := []uint64{1, 2, 3}
	ys := []uint64{4, 5, 6}
	// 1*4 + 2*5 + 3*6 + 7 = 4+10+18+7 = 39
	if got := Dot(xs, ys, 7, p); got != 39 {
		t.Errorf("Dot = %d, want 39", got)
	}
}
