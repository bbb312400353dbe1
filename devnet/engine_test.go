package devnet

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0xSpaceShard/starknet-devnet-go/config"
	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/messaging"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	e, err := New(cfg, execengine.NewNativeERC20(), nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestNewDeploysFeeTokensAtGenesis(t *testing.T) {
	e := newTestEngine(t)
	engine := e.execImpl.(execengine.FeeTokenProvider)
	eth, strk := engine.FeeTokens()
	if !e.store.Exists(eth) {
		t.Fatalf("ETH fee token %v is not deployed at genesis", eth)
	}
	if !e.store.Exists(strk) {
		t.Fatalf("STRK fee token %v is not deployed at genesis", strk)
	}
}

func TestMintIncrementsAcceptedMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := New(config.Default(), execengine.NewNativeERC20(), reg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	eth := e.execImpl.(execengine.FeeTokenProvider)
	ethAddr, _ := eth.FeeTokens()
	recipient := felt.AddressFromFelt(felt.FromUint64(42))

	hash, err := e.Mint(ethAddr, recipient, amount.New(1000))
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if hash.Felt().IsZero() {
		t.Fatalf("Mint returned a zero transaction hash")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	accepted := -1.0
	for _, mf := range families {
		if mf.GetName() == "devnet_transactions_accepted_total" {
			accepted = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if accepted != 1 {
		t.Fatalf("devnet_transactions_accepted_total = %v, want 1", accepted)
	}
}

func TestCreateBlockSealsCurrentBlock(t *testing.T) {
	e := newTestEngine(t)
	before := e.blocks.PreConfirmed().Header.Number

	sealed := e.CreateBlock()
	if sealed.Header.Number != before {
		t.Fatalf("CreateBlock sealed block %d, want %d", sealed.Header.Number, before)
	}
	if e.blocks.PreConfirmed().Header.Number != before+1 {
		t.Fatalf("block engine did not advance past the sealed block")
	}
}

func TestImpersonateAccountRequiresForking(t *testing.T) {
	e := newTestEngine(t)
	addr := felt.AddressFromFelt(felt.FromUint64(1))
	if err := e.ImpersonateAccount(addr); err == nil {
		t.Fatalf("ImpersonateAccount succeeded without forking configured")
	}
}

func TestAutoImpersonateRequiresForking(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AutoImpersonate(true); err == nil {
		t.Fatalf("AutoImpersonate succeeded without forking configured")
	}
}

func TestAbortBlocksWithoutArchiveFails(t *testing.T) {
	e := newTestEngine(t) // config.Default() uses archive.None
	e.CreateBlock()
	if _, err := e.AbortBlocks(block.Latest()); err == nil {
		t.Fatalf("AbortBlocks succeeded without the full state archive enabled")
	}
}

func TestRestartRebuildsMutableState(t *testing.T) {
	e := newTestEngine(t)
	eth := e.execImpl.(execengine.FeeTokenProvider)
	ethAddr, _ := eth.FeeTokens()
	recipient := felt.AddressFromFelt(felt.FromUint64(7))
	if _, err := e.Mint(ethAddr, recipient, amount.New(1)); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	e.CreateBlock()

	if err := e.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if e.blocks.PreConfirmed().Header.Number != 0 {
		t.Fatalf("Restart did not reset the block engine to genesis")
	}
	if e.store.Exists(recipient) {
		t.Fatalf("Restart did not discard previously minted state")
	}
	if !e.store.Exists(ethAddr) {
		t.Fatalf("Restart did not redeploy the fee token contracts")
	}
}

func TestFlushReturnsWithdrawnL2ToL1Message(t *testing.T) {
	e := newTestEngine(t)
	eth := e.execImpl.(execengine.FeeTokenProvider)
	ethAddr, _ := eth.FeeTokens()
	sender := felt.AddressFromFelt(felt.FromUint64(99))
	e.store.DeployContract(sender, felt.ClassHash{})

	if _, err := e.Mint(ethAddr, sender, amount.New(1000)); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	bound := transaction.ResourceBounds{MaxAmount: 1_000_000, MaxPricePerUnit: felt.FromUint64(1)}
	l1Recipient := felt.FromUint64(0xdead)
	withdraw := transaction.InvokeTx{
		Common: transaction.Common{
			Kind: transaction.Invoke, Version: 3, SenderAddress: sender,
			ResourceBounds: transaction.ResourceBoundsMap{L1Gas: bound, L1DataGas: bound, L2Gas: bound},
		},
		Calldata: []felt.Felt{ethAddr.Felt(), execengine.SelectorWithdraw, l1Recipient, felt.FromUint64(100), felt.Zero},
	}
	_, result, err := e.pipe.SubmitInvoke(withdraw)
	if err != nil {
		t.Fatalf("SubmitInvoke(withdraw) failed: %v", err)
	}
	if result.Reverted {
		t.Fatalf("withdraw reverted: %s", result.RevertError)
	}

	flushed, err := e.Flush(true)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(flushed.MessagesToL1) != 1 {
		t.Fatalf("Flush returned %d L2-to-L1 messages, want 1", len(flushed.MessagesToL1))
	}
	if flushed.L1Provider != messaging.ProviderDryRun {
		t.Fatalf("Flush provider = %v, want dry run", flushed.L1Provider)
	}
	if flushed.MessagesToL1[0].ToAddress.Cmp(l1Recipient) != 0 {
		t.Fatalf("flushed message targets %v, want %v", flushed.MessagesToL1[0].ToAddress, l1Recipient)
	}

	again, err := e.Flush(true)
	if err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}
	if len(again.MessagesToL1) != 0 {
		t.Fatalf("second Flush returned %d messages, want 0 (queue already drained)", len(again.MessagesToL1))
	}
}

func TestSetTimeAndIncreaseTime(t *testing.T) {
	e := newTestEngine(t)
	e.SetTime(1_700_000_000)
	if got := e.blocks.PreConfirmed().Header.Timestamp; got != 1_700_000_000 {
		t.Fatalf("SetTime did not retimestamp the pre-confirmed block, got %d", got)
	}
	e.IncreaseTime(60)
	if got := e.blocks.PreConfirmed().Header.Timestamp; got != 1_700_000_060 {
		t.Fatalf("IncreaseTime advanced to %d, want 1700000060", got)
	}
}
