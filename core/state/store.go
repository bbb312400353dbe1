// Package state implements the State Store component: the
// mapping of address -> account state and class hash -> class artifact, the
// staging area for declared-but-uncommitted classes, snapshotting, and diff
// generation.
package state

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// Store is the mutable working state: the live view the Transaction
// Pipeline reads and writes against while assembling the pre-confirmed
// block. There is exactly one Store per running engine; archived history
// lives in immutable Snapshots taken from it.
type Store struct {
	accounts map[felt.Address]*Account
	classes  map[felt.ClassHash]class.Class
	staged   map[felt.ClassHash]class.Class

	// accumulated tracks every change since the last TakeDiff call, even
	// though individual transactions already committed their own diffs into
	// accounts/classes as they ran. The Block Engine does not call TakeDiff,
	// so sealed blocks carry no state diff.
	accumulated *Diff
}

// New returns an empty Store (genesis state).
func New() *Store {
	return &Store{
		accounts:    map[felt.Address]*Account{},
		classes:     map[felt.ClassHash]class.Class{},
		staged:      map[felt.ClassHash]class.Class{},
		accumulated: NewDiff(),
	}
}

func (s *Store) account(addr felt.Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &Account{Storage: map[felt.Key]felt.Felt{}}
		s.accounts[addr] = acc
	}
	return acc
}

// Exists reports whether addr has a deployed class.
func (s *Store) Exists(addr felt.Address) bool {
	acc, ok := s.accounts[addr]
	return ok && acc.Deployed()
}

// NonceAt returns addr's current nonce (zero if undeployed/unset).
func (s *Store) NonceAt(addr felt.Address) felt.Nonce {
	if acc, ok := s.accounts[addr]; ok {
		return acc.Nonce
	}
	return felt.Nonce{}
}

// ClassHashAt returns addr's deployed class hash, zero if undeployed.
func (s *Store) ClassHashAt(addr felt.Address) felt.ClassHash {
	if acc, ok := s.accounts[addr]; ok {
		return acc.ClassHash
	}
	return felt.ClassHash{}
}

// StorageAt reads (addr, key). ErrContractNotFound if addr is undeployed.
func (s *Store) StorageAt(addr felt.Address, key felt.Key) (felt.Felt, error) {
	acc, ok := s.accounts[addr]
	if !ok || !acc.Deployed() {
		return felt.Felt{}, ErrContractNotFound
	}
	return acc.Storage[key], nil
}

// ClassByHash resolves a class hash against both the committed class map
// and the staged-but-uncommitted classes declared earlier in the same
// pre-confirmed block (a declare and a subsequent invoke in the same block
// must be able to see each other).
func (s *Store) ClassByHash(hash felt.ClassHash) (class.Class, error) {
	if c, ok := s.classes[hash]; ok {
		return c, nil
	}
	if c, ok := s.staged[hash]; ok {
		return c, nil
	}
	return class.Class{}, ErrClassHashNotFound
}

// DeclareClass stages a class under its hash. Declaring an already-known
// hash (committed or still staged) is a no-op at the storage layer, though
// the declaring transaction itself still succeeds.
func (s *Store) DeclareClass(hash felt.ClassHash, c class.Class) {
	if _, ok := s.classes[hash]; ok {
		return
	}
	if _, ok := s.staged[hash]; ok {
		return
	}
	s.staged[hash] = c
}

// DeployContract assigns a class hash to a previously-undeployed address.
func (s *Store) DeployContract(addr felt.Address, classHash felt.ClassHash) {
	acc := s.account(addr)
	acc.ClassHash = classHash
	s.accounts[addr] = acc
	s.accumulated.DeployedContracts = mergeByAddress(
		s.accumulated.DeployedContracts,
		[]DeployedContract{{Address: addr, ClassHash: classHash}},
		func(x DeployedContract) felt.Address { return x.Address },
	)
}

// ReplaceClass updates the class hash of an already-deployed contract.
func (s *Store) ReplaceClass(addr felt.Address, newClassHash felt.ClassHash) {
	acc := s.account(addr)
	acc.ClassHash = newClassHash
	s.accumulated.ReplacedClasses = mergeByAddress(
		s.accumulated.ReplacedClasses,
		[]ReplacedClass{{Address: addr, NewClassHash: newClassHash}},
		func(x ReplacedClass) felt.Address { return x.Address },
	)
}

// SetStorage writes (addr, key) = value. The caller (the pipeline) must
// have deployed addr first; writing to an undeployed address is prohibited
// by the State Store's contract and panics, since it
// indicates a pipeline bug rather than a user-triggerable error.
func (s *Store) SetStorage(addr felt.Address, key felt.Key, value felt.Felt) {
	acc, ok := s.accounts[addr]
	if !ok || !acc.Deployed() {
		panic("state: write to undeployed address")
	}
	acc.Storage[key] = value
	s.accumulated.StorageDiffs = mergeStorage(
		s.accumulated.StorageDiffs,
		[]StorageWrite{{Address: addr, Key: key, Value: value}},
	)
}

// SetNonce updates addr's nonce.
func (s *Store) SetNonce(addr felt.Address, nonce felt.Nonce) {
	acc := s.account(addr)
	acc.Nonce = nonce
	s.accumulated.Nonces = mergeByAddress(
		s.accumulated.Nonces,
		[]NonceUpdate{{Address: addr, Nonce: nonce}},
		func(x NonceUpdate) felt.Address { return x.Address },
	)
}

// CommitClasses promotes every staged class into the permanent class map
// and returns the hashes newly committed. Intended to be called once per
// sealed block; the block number is accepted as a parameter but this
// in-memory store does not need it to resolve conflicts, since classes are
// never replaced once declared.
func (s *Store) CommitClasses(blockNumber uint64) []felt.ClassHash {
	if len(s.staged) == 0 {
		return nil
	}
	committed := make([]felt.ClassHash, 0, len(s.staged))
	for hash, c := range s.staged {
		s.classes[hash] = c
		s.accumulated.DeclaredClasses[hash] = c
		committed = append(committed, hash)
	}
	s.staged = map[felt.ClassHash]class.Class{}
	return committed
}

// TakeDiff returns everything accumulated since the previous TakeDiff call
// and resets the accumulator, for attaching to a just-sealed block.
func (s *Store) TakeDiff() *Diff {
	d := s.accumulated
	s.accumulated = NewDiff()
	return d
}

// Snapshot takes an immutable point-in-time copy of the full state, for
// archival by the Block Engine when the state archive is enabled.
func (s *Store) Snapshot() *Snapshot {
	snap := newSnapshot()
	for addr, acc := range s.accounts {
		snap.accounts[addr] = acc.clone()
	}
	for hash, c := range s.classes {
		snap.classes[hash] = c
	}
	return snap
}

// Restore replaces the live state wholesale with the contents of an
// archived snapshot, used by block abortion to roll the
// working state back to a prior block's committed state.
func (s *Store) Restore(snap *Snapshot) {
	restored := snap.clone()
	s.accounts = restored.accounts
	s.classes = restored.classes
	s.staged = map[felt.ClassHash]class.Class{}
	s.accumulated = NewDiff()
}

// FromSnapshot builds a Store whose live content is a deep copy of snap, for
// read-only operations (a view call, a fee estimate) that need the Store
// API but must target a historic block rather than the current
// pre-confirmed state. Mutations against the returned Store never affect
// the archived snapshot it was built from.
func FromSnapshot(snap *Snapshot) *Store {
	fork := New()
	cloned := snap.clone()
	fork.accounts = cloned.accounts
	fork.classes = cloned.classes
	return fork
}

// Fork returns an independent deep copy of the live state, including
// staged classes, for the pipeline to execute a transaction against
// without affecting the real pre-confirmed state until the execution
// succeeds.
func (s *Store) Fork() *Store {
	fork := New()
	for addr, acc := range s.accounts {
		fork.accounts[addr] = acc.clone()
	}
	for hash, c := range s.classes {
		fork.classes[hash] = c
	}
	for hash, c := range s.staged {
		fork.staged[hash] = c
	}
	return fork
}

// Adopt replaces this store's live content with fork's (the result of
// executing a transaction against a value returned by Fork) and merges
// fork's accumulated diff into this store's still-open block-level diff.
// This is the commit step of the common submission protocol.
func (s *Store) Adopt(fork *Store) {
	s.accounts = fork.accounts
	s.classes = fork.classes
	s.staged = fork.staged
	s.accumulated.Merge(fork.accumulated)
}
