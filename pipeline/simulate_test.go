package pipeline

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
)

func TestSimulateReturnsOneResultPerBroadcast(t *testing.T) {
	p, _, _, chargeable := newTestPipeline(t)
	invoke := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: chargeable,
			ResourceBounds: positiveBounds(),
		},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}
	sims, err := p.Simulate(block.Latest(), []Broadcast{{Invoke: &invoke}, {Invoke: &invoke}}, SimulationFlags{})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if len(sims) != 2 {
		t.Fatalf("Simulate returned %d results, want 2", len(sims))
	}
}

func TestSimulateSkipFeeChargeAllowsZeroBounds(t *testing.T) {
	p, _, _, chargeable := newTestPipeline(t)
	invoke := transaction.InvokeTx{
		Common:   transaction.Common{SenderAddress: chargeable},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}

	if _, err := p.Simulate(block.Latest(), []Broadcast{{Invoke: &invoke}}, SimulationFlags{}); err == nil {
		t.Fatalf("Simulate accepted zero resource bounds without SkipFeeCharge")
	}
	if _, err := p.Simulate(block.Latest(), []Broadcast{{Invoke: &invoke}}, SimulationFlags{SkipFeeCharge: true}); err != nil {
		t.Fatalf("Simulate with SkipFeeCharge rejected zero resource bounds: %v", err)
	}
}

func TestSimulateDoesNotMutateLiveState(t *testing.T) {
	p, s, _, chargeable := newTestPipeline(t)
	invoke := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: chargeable,
			ResourceBounds: positiveBounds(),
		},
		Calldata: []felt.Felt{felt.Zero, felt.FromUint64(1)},
	}
	if _, err := p.Simulate(block.Latest(), []Broadcast{{Invoke: &invoke}}, SimulationFlags{}); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if s.NonceAt(chargeable).Uint64() != 0 {
		t.Fatalf("Simulate mutated the live store's nonce")
	}
}
