package transaction

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

func TestWithQueryBit(t *testing.T) {
	v := WithQueryBit(3, true)
	if v&QueryVersionOffset == 0 {
		t.Fatalf("WithQueryBit(3, true) did not set the query bit")
	}
	if WithQueryBit(v, false)&QueryVersionOffset != 0 {
		t.Fatalf("WithQueryBit(v, false) did not clear the query bit")
	}
}

func TestIsQuery(t *testing.T) {
	c := Common{Version: WithQueryBit(3, true)}
	if !c.IsQuery() {
		t.Fatalf("IsQuery() = false for a query-bit version")
	}
	c2 := Common{Version: 3}
	if c2.IsQuery() {
		t.Fatalf("IsQuery() = true for a plain version")
	}
}

func TestResourceBoundsAllZeroAndAllPositive(t *testing.T) {
	var m ResourceBoundsMap
	if !m.AllZero() {
		t.Fatalf("zero-value ResourceBoundsMap.AllZero() = false")
	}
	if m.AllPositive() {
		t.Fatalf("zero-value ResourceBoundsMap.AllPositive() = true")
	}

	m.L1Gas = ResourceBounds{MaxAmount: 1, MaxPricePerUnit: felt.FromUint64(1)}
	m.L1DataGas = ResourceBounds{MaxAmount: 1, MaxPricePerUnit: felt.FromUint64(1)}
	m.L2Gas = ResourceBounds{MaxAmount: 1, MaxPricePerUnit: felt.FromUint64(1)}
	if !m.AllPositive() {
		t.Fatalf("fully populated ResourceBoundsMap.AllPositive() = false")
	}
}

func TestInvokeHashDistinguishesCalldata(t *testing.T) {
	base := InvokeTx{Common: Common{Kind: Invoke}, Calldata: []felt.Felt{felt.FromUint64(1)}}
	other := InvokeTx{Common: Common{Kind: Invoke}, Calldata: []felt.Felt{felt.FromUint64(2)}}

	chainID := felt.FromBytes([]byte("SN_DEVNET"))
	if base.Hash(chainID) == other.Hash(chainID) {
		t.Fatalf("different calldata hashed to the same transaction hash")
	}
}

func TestInvokeHashDistinguishesQueryBit(t *testing.T) {
	chainID := felt.FromBytes([]byte("SN_DEVNET"))
	plain := InvokeTx{Common: Common{Kind: Invoke, Version: 3}}
	query := InvokeTx{Common: Common{Kind: Invoke, Version: WithQueryBit(3, true)}}

	if plain.Hash(chainID) == query.Hash(chainID) {
		t.Fatalf("query-bit version did not change the transaction hash")
	}
}

func TestL1HandlerHashDeterministic(t *testing.T) {
	tx := L1HandlerTx{Kind: L1Handler, ContractAddress: felt.AddressFromFelt(felt.FromUint64(1)), Nonce: 3}
	chainID := felt.FromBytes([]byte("SN_DEVNET"))
	if tx.Hash(chainID) != tx.Hash(chainID) {
		t.Fatalf("L1HandlerTx.Hash is not deterministic")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{Declare: "DECLARE", DeployAccount: "DEPLOY_ACCOUNT", Invoke: "INVOKE", L1Handler: "L1_HANDLER"}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", k, got, want)
		}
	}
}
