package state

import (
	"errors"

	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// ErrContractNotFound is returned when reading storage of an address that
// has no deployed class. Writing to such an address panics instead (see
// Store.SetStorage).
var ErrContractNotFound = errors.New("contract not found")

// ErrClassHashNotFound is returned when reading a class hash that has
// never been declared.
var ErrClassHashNotFound = errors.New("class hash not found")

// Snapshot is an immutable global-state view: a point-in-time copy of every
// account and every declared class. It is produced by Store.Snapshot and
// retained by the block archive; reading it never observes later writes to
// the Store it was taken from.
//
// Carmen favors persistent/COW structures for O(1) amortized cloning; this
// implementation instead deep-copies account and class maps once per seal,
// trading that amortized bound for a straightforward, easy-to-verify
// representation appropriate to a single-node, test-oriented devnet. See
// DESIGN.md's resolution of the corresponding open question.
type Snapshot struct {
	accounts map[felt.Address]*Account
	classes  map[felt.ClassHash]class.Class
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		accounts: map[felt.Address]*Account{},
		classes:  map[felt.ClassHash]class.Class{},
	}
}

func (s *Snapshot) clone() *Snapshot {
	out := newSnapshot()
	for addr, acc := range s.accounts {
		out.accounts[addr] = acc.clone()
	}
	for hash, cls := range s.classes {
		out.classes[hash] = cls
	}
	return out
}

// Exists reports whether the address has a deployed class.
func (s *Snapshot) Exists(addr felt.Address) bool {
	acc, ok := s.accounts[addr]
	return ok && acc.Deployed()
}

// NonceAt returns the account's nonce. Undeployed accounts read as zero,
// matching the real network's "accounts implicitly start at nonce zero"
// behavior.
func (s *Snapshot) NonceAt(addr felt.Address) felt.Nonce {
	if acc, ok := s.accounts[addr]; ok {
		return acc.Nonce
	}
	return felt.Nonce{}
}

// ClassHashAt returns the address's deployed class hash, or the zero hash
// if undeployed.
func (s *Snapshot) ClassHashAt(addr felt.Address) felt.ClassHash {
	if acc, ok := s.accounts[addr]; ok {
		return acc.ClassHash
	}
	return felt.ClassHash{}
}

// StorageAt returns the value at (addr, key). Reading an undeployed
// contract's storage is ErrContractNotFound; reading an
// unset key of a deployed contract returns the zero value.
func (s *Snapshot) StorageAt(addr felt.Address, key felt.Key) (felt.Felt, error) {
	acc, ok := s.accounts[addr]
	if !ok || !acc.Deployed() {
		return felt.Felt{}, ErrContractNotFound
	}
	return acc.Storage[key], nil
}

// ClassByHash returns the declared class for a hash, or
// ErrClassHashNotFound.
func (s *Snapshot) ClassByHash(hash felt.ClassHash) (class.Class, error) {
	c, ok := s.classes[hash]
	if !ok {
		return class.Class{}, ErrClassHashNotFound
	}
	return c, nil
}
