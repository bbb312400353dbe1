package state

import (
	"errors"
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

func addr(n uint64) felt.Address { return felt.AddressFromFelt(felt.FromUint64(n)) }
func key(n uint64) felt.Key      { return felt.KeyFromFelt(felt.FromUint64(n)) }

func TestNewAddressUndeployed(t *testing.T) {
	s := New()
	if s.Exists(addr(1)) {
		t.Fatalf("fresh store reports an address as deployed")
	}
	if !s.ClassHashAt(addr(1)).IsZero() {
		t.Fatalf("undeployed address has a non-zero class hash")
	}
}

func TestDeployAndStorage(t *testing.T) {
	s := New()
	ch := felt.ClassHashFromFelt(felt.FromUint64(7))
	s.DeployContract(addr(1), ch)

	if !s.Exists(addr(1)) {
		t.Fatalf("deployed address reports as undeployed")
	}
	if s.ClassHashAt(addr(1)) != ch {
		t.Fatalf("ClassHashAt returned the wrong class hash")
	}

	s.SetStorage(addr(1), key(1), felt.FromUint64(42))
	v, err := s.StorageAt(addr(1), key(1))
	if err != nil {
		t.Fatalf("StorageAt: %v", err)
	}
	if v.Uint64() != 42 {
		t.Fatalf("StorageAt = %d, want 42", v.Uint64())
	}
}

func TestStorageAtUndeployedFails(t *testing.T) {
	s := New()
	if _, err := s.StorageAt(addr(1), key(1)); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("StorageAt(undeployed) = %v, want ErrContractNotFound", err)
	}
}

func TestSetStoragePanicsOnUndeployed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("SetStorage(undeployed) did not panic")
		}
	}()
	New().SetStorage(addr(1), key(1), felt.FromUint64(1))
}

func TestDeclareAndCommitClass(t *testing.T) {
	s := New()
	ch := felt.ClassHashFromFelt(felt.FromUint64(9))
	c := class.Class{Kind: class.Modern, SierraProgram: []byte{1}}

	s.DeclareClass(ch, c)
	if _, err := s.ClassByHash(ch); err != nil {
		t.Fatalf("staged class not visible via ClassByHash: %v", err)
	}

	committed := s.CommitClasses(1)
	if len(committed) != 1 || committed[0] != ch {
		t.Fatalf("CommitClasses = %v, want [%v]", committed, ch)
	}
	if got, err := s.ClassByHash(ch); err != nil || got.Kind != class.Modern {
		t.Fatalf("class lost after commit: %v, %v", got, err)
	}
}

func TestClassByHashMissing(t *testing.T) {
	s := New()
	if _, err := s.ClassByHash(felt.ClassHashFromFelt(felt.FromUint64(1))); !errors.Is(err, ErrClassHashNotFound) {
		t.Fatalf("ClassByHash(missing) = %v, want ErrClassHashNotFound", err)
	}
}

func TestForkIsIndependent(t *testing.T) {
	s := New()
	s.DeployContract(addr(1), felt.ClassHashFromFelt(felt.FromUint64(1)))
	s.SetStorage(addr(1), key(1), felt.FromUint64(1))

	fork := s.Fork()
	fork.SetStorage(addr(1), key(1), felt.FromUint64(2))

	v, _ := s.StorageAt(addr(1), key(1))
	if v.Uint64() != 1 {
		t.Fatalf("mutating the fork affected the original store")
	}
}

func TestAdoptMergesForkIntoStore(t *testing.T) {
	s := New()
	s.DeployContract(addr(1), felt.ClassHashFromFelt(felt.FromUint64(1)))

	fork := s.Fork()
	fork.SetStorage(addr(1), key(1), felt.FromUint64(5))
	s.Adopt(fork)

	v, err := s.StorageAt(addr(1), key(1))
	if err != nil {
		t.Fatalf("StorageAt after Adopt: %v", err)
	}
	if v.Uint64() != 5 {
		t.Fatalf("StorageAt after Adopt = %d, want 5", v.Uint64())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New()
	s.DeployContract(addr(1), felt.ClassHashFromFelt(felt.FromUint64(1)))
	s.SetStorage(addr(1), key(1), felt.FromUint64(1))
	snap := s.Snapshot()

	s.SetStorage(addr(1), key(1), felt.FromUint64(2))
	s.Restore(snap)

	v, err := s.StorageAt(addr(1), key(1))
	if err != nil {
		t.Fatalf("StorageAt after Restore: %v", err)
	}
	if v.Uint64() != 1 {
		t.Fatalf("Restore did not roll back storage, got %d", v.Uint64())
	}
}

func TestFromSnapshotIsIndependent(t *testing.T) {
	s := New()
	s.DeployContract(addr(1), felt.ClassHashFromFelt(felt.FromUint64(1)))
	s.SetStorage(addr(1), key(1), felt.FromUint64(1))
	snap := s.Snapshot()

	view := FromSnapshot(snap)
	view.SetStorage(addr(1), key(1), felt.FromUint64(99))

	v, _ := s.StorageAt(addr(1), key(1))
	if v.Uint64() != 1 {
		t.Fatalf("mutating a FromSnapshot view affected the archived snapshot's source store")
	}
}

func TestTakeDiffResetsAccumulator(t *testing.T) {
	s := New()
	s.DeployContract(addr(1), felt.ClassHashFromFelt(felt.FromUint64(1)))

	d1 := s.TakeDiff()
	if len(d1.DeployedContracts) != 1 {
		t.Fatalf("first TakeDiff missing the deployment, got %+v", d1)
	}

	d2 := s.TakeDiff()
	if len(d2.DeployedContracts) != 0 {
		t.Fatalf("second TakeDiff was not reset, got %+v", d2)
	}
}
