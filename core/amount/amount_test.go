package amount

import (
	"math/big"
	"testing"
)

func TestNewSingleLimb(t *testing.T) {
	a := New(1)
	if a.Uint64() != 1 {
		t.Fatalf("New(1).Uint64() = %d, want 1", a.Uint64())
	}
}

func TestNewMultiLimbIsBigEndian(t *testing.T) {
	// New(1, 0) is the big-endian limb pair (hi=1, lo=0) = 2**64.
	a := New(1, 0)
	want := new(big.Int).Lsh(big.NewInt(1), 64)
	if a.ToBig().Cmp(want) != 0 {
		t.Fatalf("New(1, 0) = %s, want %s", a.ToBig(), want)
	}
}

func TestNewFromBigIntNegativeRejected(t *testing.T) {
	if _, err := NewFromBigInt(big.NewInt(-1)); err == nil {
		t.Fatalf("NewFromBigInt(-1) returned nil error")
	}
}

func TestNewFromBigIntOverflowRejected(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 257)
	if _, err := NewFromBigInt(huge); err == nil {
		t.Fatalf("NewFromBigInt(2**257) returned nil error")
	}
}

func TestNewFromBigIntNilIsZero(t *testing.T) {
	a, err := NewFromBigInt(nil)
	if err != nil {
		t.Fatalf("NewFromBigInt(nil): %v", err)
	}
	if !a.IsZero() {
		t.Fatalf("NewFromBigInt(nil) is not zero")
	}
}

func TestAddSub(t *testing.T) {
	a, b := New(10), New(3)
	if got := Add(a, b).Uint64(); got != 13 {
		t.Fatalf("Add(10, 3) = %d, want 13", got)
	}
	if got := Sub(a, b).Uint64(); got != 7 {
		t.Fatalf("Sub(10, 3) = %d, want 7", got)
	}
}

func TestSubUnderflow(t *testing.T) {
	_, underflow := SubUnderflow(New(3), New(10))
	if !underflow {
		t.Fatalf("SubUnderflow(3, 10) reported no underflow")
	}
	r, underflow := SubUnderflow(New(10), New(3))
	if underflow {
		t.Fatalf("SubUnderflow(10, 3) reported underflow")
	}
	if r.Uint64() != 7 {
		t.Fatalf("SubUnderflow(10, 3) = %d, want 7", r.Uint64())
	}
}

func TestLowHighRoundTrip(t *testing.T) {
	// 2**128 + 5: low limb 5, high limb 1.
	v := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(5))
	a, err := NewFromBigInt(v)
	if err != nil {
		t.Fatalf("NewFromBigInt: %v", err)
	}
	if a.Low().Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("Low() = %s, want 5", a.Low())
	}
	if a.High().Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("High() = %s, want 1", a.High())
	}
}

func TestCmp(t *testing.T) {
	if New(1).Cmp(New(2)) >= 0 {
		t.Fatalf("Cmp(1, 2) >= 0")
	}
}
