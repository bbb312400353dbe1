// Package amount provides the 256-bit unsigned integer type used for ERC-20
// token balances (mint amounts, balanceOf results) and fee sums, matching
// the low/high uint256 representation the Starknet ERC-20 ABI returns.
package amount

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Amount is a 256-bit unsigned integer.
type Amount struct {
	internal uint256.Int
}

// New builds an Amount from up to 4 big-endian uint64 limbs.
func New(args ...uint64) Amount {
	if len(args) > 4 {
		panic("amount: too many limbs")
	}
	var result Amount
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		result.internal[3-i-offset] = args[i]
	}
	return result
}

// NewFromUint256 wraps an existing uint256.Int.
func NewFromUint256(v *uint256.Int) Amount {
	return Amount{internal: *v}
}

// NewFromBigInt converts a non-negative big.Int, failing on overflow.
func NewFromBigInt(b *big.Int) (Amount, error) {
	if b == nil {
		return Amount{}, nil
	}
	if b.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount: cannot represent a negative value")
	}
	var internal uint256.Int
	if overflow := internal.SetFromBig(b); overflow {
		return Amount{}, fmt.Errorf("amount: value exceeds 256 bits")
	}
	return Amount{internal: internal}, nil
}

func (a Amount) IsZero() bool        { return a.internal.IsZero() }
func (a Amount) Uint64() uint64      { return a.internal.Uint64() }
func (a Amount) ToBig() *big.Int     { return a.internal.ToBig() }
func (a Amount) String() string      { return a.internal.String() }
func (a Amount) Uint256() uint256.Int { return a.internal }

// Low returns the low 128 bits, matching the Starknet uint256 ABI's
// (low, high) felt pair used by balanceOf and transfer.
func (a Amount) Low() *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	return new(big.Int).And(a.ToBig(), mask)
}

// High returns the high 128 bits of the uint256 ABI pair.
func (a Amount) High() *big.Int {
	return new(big.Int).Rsh(a.ToBig(), 128)
}

// Add returns a+b.
func Add(a, b Amount) Amount {
	var r Amount
	r.internal.Add(&a.internal, &b.internal)
	return r
}

// Sub returns a-b. The caller must ensure a >= b; use SubUnderflow otherwise.
func Sub(a, b Amount) Amount {
	var r Amount
	r.internal.Sub(&a.internal, &b.internal)
	return r
}

// SubUnderflow returns a-b and whether the subtraction underflowed.
func SubUnderflow(a, b Amount) (Amount, bool) {
	var r Amount
	_, underflow := r.internal.SubOverflow(&a.internal, &b.internal)
	return r, underflow
}

// Mul returns a*b.
func Mul(a, b Amount) Amount {
	var r Amount
	r.internal.Mul(&a.internal, &b.internal)
	return r
}

// Cmp compares two amounts.
func (a Amount) Cmp(b Amount) int {
	return a.internal.Cmp(&b.internal)
}
