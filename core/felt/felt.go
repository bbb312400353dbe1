// Package felt provides the field-element scalar type shared by every
// address, hash, and numeric quantity in the engine, plus the newtypes
// built on top of it.
package felt

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Prime is the Starknet field prime: 2**251 + 17*2**192 + 1.
var Prime = func() *uint256.Int {
	p, _ := uint256.FromHex("0x800000000000011000000000000000000000000000000000000000000000001")
	return p
}()

// Felt is a 252-bit non-negative integer modulo Prime. It is the universal
// scalar type: every address, hash, nonce, and storage key/value is a Felt
// newtype.
type Felt struct {
	val uint256.Int
}

// Zero is the additive identity.
var Zero = Felt{}

// FromUint64 builds a Felt from a small integer.
func FromUint64(v uint64) Felt {
	var f Felt
	f.val.SetUint64(v)
	return f
}

// FromBigInt reduces a big.Int modulo Prime and returns the Felt.
func FromBigInt(v *big.Int) Felt {
	var u uint256.Int
	u.SetFromBig(v)
	var f Felt
	f.val.Mod(&u, Prime)
	return f
}

// FromBytes interprets data as a big-endian integer and reduces it modulo
// Prime.
func FromBytes(data []byte) Felt {
	var u uint256.Int
	u.SetBytes(data)
	var f Felt
	f.val.Mod(&u, Prime)
	return f
}

// FromHex parses a "0x..."-prefixed hex string.
func FromHex(s string) (Felt, error) {
	u, err := uint256.FromHex(s)
	if err != nil {
		return Felt{}, fmt.Errorf("felt: invalid hex %q: %w", s, err)
	}
	var f Felt
	f.val.Mod(u, Prime)
	return f, nil
}

// Bytes returns the big-endian 32-byte representation.
func (f Felt) Bytes() [32]byte {
	return f.val.Bytes32()
}

// IsZero reports whether the value is the additive identity.
func (f Felt) IsZero() bool {
	return f.val.IsZero()
}

// Cmp compares two field elements as unsigned integers.
func (f Felt) Cmp(o Felt) int {
	return f.val.Cmp(&o.val)
}

// Add returns f+o reduced modulo Prime.
func (f Felt) Add(o Felt) Felt {
	var r Felt
	r.val.AddMod(&f.val, &o.val, Prime)
	return r
}

// Mul returns f*o reduced modulo Prime.
func (f Felt) Mul(o Felt) Felt {
	var r Felt
	r.val.MulMod(&f.val, &o.val, Prime)
	return r
}

// Uint64 truncates the value to a uint64 (used for nonces and block
// numbers, which never approach the field's width).
func (f Felt) Uint64() uint64 {
	return f.val.Uint64()
}

// String renders the value as a "0x..." hex string.
func (f Felt) String() string {
	return f.val.Hex()
}

// ToBig returns the value as a big.Int, for collaborators (such as the
// ERC-20 low/high limb split) that need arbitrary-precision arithmetic
// beyond Felt's own Add/Mul.
func (f Felt) ToBig() *big.Int {
	return f.val.ToBig()
}

// MarshalText implements encoding.TextMarshaler for JSON-RPC friendly
// serialization by collaborating transports.
func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Address is a contract address. It must fall within the valid address
// range (below Prime, and conventionally below 2**251 so it never collides
// with the "out of range" sentinel used by the real network); this
// implementation enforces only the Prime bound, matching the State Store's
// contract.
type Address Felt

func AddressFromFelt(f Felt) Address { return Address(f) }
func (a Address) Felt() Felt         { return Felt(a) }
func (a Address) IsZero() bool       { return Felt(a).IsZero() }
func (a Address) String() string     { return Felt(a).String() }

// ClassHash identifies a contract class deterministically derived from its
// contents.
type ClassHash Felt

func ClassHashFromFelt(f Felt) ClassHash { return ClassHash(f) }
func (c ClassHash) Felt() Felt           { return Felt(c) }
func (c ClassHash) IsZero() bool         { return Felt(c).IsZero() }
func (c ClassHash) String() string       { return Felt(c).String() }

// TxHash identifies a transaction.
type TxHash Felt

func TxHashFromFelt(f Felt) TxHash { return TxHash(f) }
func (t TxHash) Felt() Felt        { return Felt(t) }
func (t TxHash) String() string    { return Felt(t).String() }

// BlockHash identifies a sealed block.
type BlockHash Felt

func BlockHashFromFelt(f Felt) BlockHash { return BlockHash(f) }
func (b BlockHash) Felt() Felt           { return Felt(b) }
func (b BlockHash) IsZero() bool         { return Felt(b).IsZero() }
func (b BlockHash) String() string       { return Felt(b).String() }

// Key is a storage slot key.
type Key Felt

func KeyFromFelt(f Felt) Key { return Key(f) }
func (k Key) Felt() Felt     { return Felt(k) }

// Nonce is a monotonically non-decreasing per-account counter.
type Nonce Felt

func NonceFromFelt(f Felt) Nonce { return Nonce(f) }
func (n Nonce) Felt() Felt       { return Felt(n) }
func (n Nonce) Uint64() uint64   { return Felt(n).Uint64() }

// Next returns the nonce incremented by one, matching the pipeline's
// per-successful-transaction bump.
func (n Nonce) Next() Nonce {
	return NonceFromFelt(Felt(n).Add(FromUint64(1)))
}
