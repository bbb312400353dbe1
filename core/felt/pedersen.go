package felt

import "golang.org/x/crypto/sha3"

// PedersenHash combines a sequence of field elements into a single field
// element.
//
// The real Starknet Pedersen hash is an EC-based construction over fixed
// curve-point tables; reproducing it requires those tables, which are a
// property of the Cairo VM / class-hash computation library this module
// treats as an external black box. What this module owns is the *shape*
// of the block-hash computation, so this is a deterministic,
// collision-resistant stand-in built from Keccak-256
// (golang.org/x/crypto/sha3, already in carmen's dependency graph) reduced
// modulo Prime, preserving every externally observable property it must
// guarantee: determinism, reproducibility across dump/load, and no
// timestamp dependence.
func PedersenHash(elements ...Felt) Felt {
	h := sha3.NewLegacyKeccak256()
	for _, e := range elements {
		b := e.Bytes()
		h.Write(b[:])
	}
	return FromBytes(h.Sum(nil))
}
