package state

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

func TestNewDiffIsEmpty(t *testing.T) {
	d := NewDiff()
	if !d.IsEmpty() {
		t.Fatalf("fresh Diff reports non-empty")
	}
}

func TestDiffMergeDeduplicatesByAddress(t *testing.T) {
	d := NewDiff()
	d.Nonces = []NonceUpdate{{Address: addr(1), Nonce: felt.NonceFromFelt(felt.FromUint64(1))}}

	other := NewDiff()
	other.Nonces = []NonceUpdate{{Address: addr(1), Nonce: felt.NonceFromFelt(felt.FromUint64(2))}}

	d.Merge(other)
	if len(d.Nonces) != 1 {
		t.Fatalf("Merge produced %d entries for one address, want 1", len(d.Nonces))
	}
	if d.Nonces[0].Nonce.Uint64() != 2 {
		t.Fatalf("Merge kept the stale nonce, got %d want 2", d.Nonces[0].Nonce.Uint64())
	}
}

func TestDiffMergeSortsByAddress(t *testing.T) {
	d := NewDiff()
	d.Nonces = []NonceUpdate{
		{Address: addr(5), Nonce: felt.NonceFromFelt(felt.FromUint64(1))},
		{Address: addr(1), Nonce: felt.NonceFromFelt(felt.FromUint64(1))},
	}
	d.Merge(NewDiff())

	if d.Nonces[0].Address.Felt().Cmp(d.Nonces[1].Address.Felt()) >= 0 {
		t.Fatalf("Nonces not sorted by address after Merge: %+v", d.Nonces)
	}
}

func TestDiffMergeNilIsNoOp(t *testing.T) {
	d := NewDiff()
	d.Nonces = []NonceUpdate{{Address: addr(1), Nonce: felt.NonceFromFelt(felt.FromUint64(1))}}
	d.Merge(nil)
	if len(d.Nonces) != 1 {
		t.Fatalf("Merge(nil) mutated the diff")
	}
}

func TestMergeStorageDeduplicatesByAddressAndKey(t *testing.T) {
	base := []StorageWrite{{Address: addr(1), Key: key(1), Value: felt.FromUint64(1)}}
	incoming := []StorageWrite{{Address: addr(1), Key: key(1), Value: felt.FromUint64(2)}}

	merged := mergeStorage(base, incoming)
	if len(merged) != 1 {
		t.Fatalf("mergeStorage produced %d entries for one (address, key), want 1", len(merged))
	}
	if merged[0].Value.Uint64() != 2 {
		t.Fatalf("mergeStorage kept the stale value")
	}
}
