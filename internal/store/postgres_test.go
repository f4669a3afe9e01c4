package store

import (
	"math"
	"reflect"
	"testing"
)

func TestUint64Int64RoundTrip(t *testing.T) {
	// The cast through BIGINT is a bit-for-bit reinterpretation, so the
	// round trip is lossless for any uint64 value.
	in := []uint64{0, 1, math.MaxInt64, 4293918721, 18446744073709547521 >> 1}
	got := int64sToUint64s(uint64sToInt64s(in))
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip = %v, want %v", got, in)
	}
}

func TestUint64sToInt64sEmpty(t *testing.T) {
	if got := uint64sToInt64s(nil); len(got) != 0 {
		t.Errorf("uint64sToInt64s(nil) = %v, want empty", got)
	}
}
