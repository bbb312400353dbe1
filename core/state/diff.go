package state

import (
	"sort"

	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// StorageWrite is one (address, key) -> value entry in a Diff.
type StorageWrite struct {
	Address felt.Address
	Key     felt.Key
	Value   felt.Felt
}

// DeployedContract is one address -> class hash entry in a Diff.
type DeployedContract struct {
	Address   felt.Address
	ClassHash felt.ClassHash
}

// NonceUpdate is one address -> nonce entry in a Diff.
type NonceUpdate struct {
	Address felt.Address
	Nonce   felt.Nonce
}

// ReplacedClass is one address -> new class hash entry, produced when an
// already-deployed contract replaces its implementation class.
type ReplacedClass struct {
	Address      felt.Address
	NewClassHash felt.ClassHash
}

// Diff is the state diff of a single block (or, before a block is sealed,
// of a single transaction): five ordered sets summarizing every change
// induced by the transactions it covers. Ordering mirrors
// github.com/Fantom-foundation/Carmen/go/common.Update's normalized,
// sorted-and-unique sets, adapted from EVM accounts/balances/codes to
// Starknet's declared-classes/deployed-contracts/storage/nonces/replaced
// classes five-tuple.
type Diff struct {
	DeclaredClasses    map[felt.ClassHash]class.Class
	DeployedContracts  []DeployedContract
	StorageDiffs       []StorageWrite
	Nonces             []NonceUpdate
	ReplacedClasses    []ReplacedClass
}

// NewDiff returns an empty Diff ready for accumulation.
func NewDiff() *Diff {
	return &Diff{DeclaredClasses: map[felt.ClassHash]class.Class{}}
}

// IsEmpty reports whether the diff carries no changes at all.
func (d *Diff) IsEmpty() bool {
	return d == nil ||
		(len(d.DeclaredClasses) == 0 &&
			len(d.DeployedContracts) == 0 &&
			len(d.StorageDiffs) == 0 &&
			len(d.Nonces) == 0 &&
			len(d.ReplacedClasses) == 0)
}

// Merge folds other into d, with later entries for the same key winning
// (consistent with applying other's changes after d's).
func (d *Diff) Merge(other *Diff) {
	if other == nil {
		return
	}
	for h, c := range other.DeclaredClasses {
		d.DeclaredClasses[h] = c
	}
	d.DeployedContracts = mergeByAddress(d.DeployedContracts, other.DeployedContracts,
		func(x DeployedContract) felt.Address { return x.Address })
	d.Nonces = mergeByAddress(d.Nonces, other.Nonces,
		func(x NonceUpdate) felt.Address { return x.Address })
	d.ReplacedClasses = mergeByAddress(d.ReplacedClasses, other.ReplacedClasses,
		func(x ReplacedClass) felt.Address { return x.Address })
	d.StorageDiffs = mergeStorage(d.StorageDiffs, other.StorageDiffs)
}

func mergeByAddress[T any](base, incoming []T, key func(T) felt.Address) []T {
	idx := make(map[felt.Address]int, len(base))
	for i, v := range base {
		idx[key(v)] = i
	}
	for _, v := range incoming {
		if i, ok := idx[key(v)]; ok {
			base[i] = v
		} else {
			idx[key(v)] = len(base)
			base = append(base, v)
		}
	}
	sort.Slice(base, func(i, j int) bool {
		return key(base[i]).Felt().Cmp(key(base[j]).Felt()) < 0
	})
	return base
}

func mergeStorage(base, incoming []StorageWrite) []StorageWrite {
	type sk struct {
		addr felt.Address
		key  felt.Key
	}
	idx := make(map[sk]int, len(base))
	for i, v := range base {
		idx[sk{v.Address, v.Key}] = i
	}
	for _, v := range incoming {
		k := sk{v.Address, v.Key}
		if i, ok := idx[k]; ok {
			base[i] = v
		} else {
			idx[k] = len(base)
			base = append(base, v)
		}
	}
	sort.Slice(base, func(i, j int) bool {
		ac := base[i].Address.Felt().Cmp(base[j].Address.Felt())
		if ac != 0 {
			return ac < 0
		}
		return base[i].Key.Felt().Cmp(base[j].Key.Felt()) < 0
	})
	return base
}
