package state

import "github.com/0xSpaceShard/starknet-devnet-go/core/felt"

// Account is the per-address state: nonce, deployed class hash (zero means
// undeployed), and a storage-key to storage-value mapping.
type Account struct {
	Nonce     felt.Nonce
	ClassHash felt.ClassHash
	Storage   map[felt.Key]felt.Felt
}

// Deployed reports whether this account has a non-zero class hash.
func (a *Account) Deployed() bool {
	return a != nil && !a.ClassHash.IsZero()
}

func (a *Account) clone() *Account {
	if a == nil {
		return nil
	}
	storage := make(map[felt.Key]felt.Felt, len(a.Storage))
	for k, v := range a.Storage {
		storage[k] = v
	}
	return &Account{Nonce: a.Nonce, ClassHash: a.ClassHash, Storage: storage}
}
