package pipeline

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
)

func TestEstimateFeeSucceedsOnValidBatch(t *testing.T) {
	p, _, blocks, chargeable := newTestPipeline(t)
	blocks.SetGasPrices(block.GasPrices{
		L1Gas:     block.ResourcePrice{InFri: felt.FromUint64(2)},
		L1DataGas: block.ResourcePrice{InFri: felt.FromUint64(2)},
		L2Gas:     block.ResourcePrice{InFri: felt.FromUint64(2)},
	})

	invoke := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: chargeable,
			ResourceBounds: positiveBounds(),
		},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}
	estimates, err := p.EstimateFee(block.Latest(), []Broadcast{{Invoke: &invoke}}, false)
	if err != nil {
		t.Fatalf("EstimateFee failed: %v", err)
	}
	if len(estimates) != 1 {
		t.Fatalf("EstimateFee returned %d estimates, want 1", len(estimates))
	}
	if estimates[0].Usage.L2Gas == 0 {
		t.Fatalf("EstimateFee reported zero L2Gas usage")
	}
}

func TestEstimateFeeDoesNotMutateLiveState(t *testing.T) {
	p, s, _, chargeable := newTestPipeline(t)
	invoke := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: chargeable,
			ResourceBounds: positiveBounds(),
		},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}
	if _, err := p.EstimateFee(block.Latest(), []Broadcast{{Invoke: &invoke}}, false); err != nil {
		t.Fatalf("EstimateFee failed: %v", err)
	}
	if s.NonceAt(chargeable).Uint64() != 0 {
		t.Fatalf("EstimateFee mutated the live store's nonce")
	}
}

func TestEstimateFeeAllowsZeroResourceBoundsRegardlessOfSkipValidate(t *testing.T) {
	p, _, _, chargeable := newTestPipeline(t)
	invoke := transaction.InvokeTx{
		Common:   transaction.Common{SenderAddress: chargeable},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}

	if _, err := p.EstimateFee(block.Latest(), []Broadcast{{Invoke: &invoke}}, false); err != nil {
		t.Fatalf("EstimateFee rejected zero resource bounds without skipValidate: %v", err)
	}
	if _, err := p.EstimateFee(block.Latest(), []Broadcast{{Invoke: &invoke}}, true); err != nil {
		t.Fatalf("EstimateFee with skipValidate rejected zero resource bounds: %v", err)
	}
}

func TestEstimateFeeStopsAtFirstRevert(t *testing.T) {
	p, s, _, chargeable := newTestPipeline(t)
	engine := execengine.NewNativeERC20()
	sender := felt.AddressFromFelt(felt.FromUint64(1))

	lowHigh := func(v uint64) []felt.Felt {
		return []felt.Felt{felt.FromUint64(v), felt.Zero}
	}
	transferWithoutBalance := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: sender,
			ResourceBounds: positiveBounds(),
		},
		Calldata: append([]felt.Felt{engine.ETHAddress.Felt(), execengine.SelectorTransfer, chargeable.Felt()}, lowHigh(1)...),
	}
	_, err := p.EstimateFee(block.Latest(), []Broadcast{{Invoke: &transferWithoutBalance}}, true)
	if err == nil {
		t.Fatalf("EstimateFee did not report the reverted transfer")
	}
	if s.NonceAt(sender).Uint64() != 0 {
		t.Fatalf("EstimateFee mutated the live store after a reverted transaction")
	}
}
