package felt

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

var selectorMask = func() *big.Int {
	// 2**250 - 1, matching the real network's "mask the top two bits of a
	// keccak256 digest" selector derivation closely enough for this
	// module's purposes: a stable, collision-resistant function name ->
	// Felt mapping.
	m := new(big.Int).Lsh(big.NewInt(1), 250)
	return m.Sub(m, big.NewInt(1))
}()

// SelectorFromName derives an entry-point selector from its Cairo function
// name, mirroring (without replicating exactly) the real network's
// starknet_keccak: Keccak-256 of the ASCII name, masked to 250 bits.
func SelectorFromName(name string) Felt {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	digest := new(big.Int).SetBytes(h.Sum(nil))
	digest.And(digest, selectorMask)
	return FromBigInt(digest)
}
