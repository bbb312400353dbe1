// Package messaging implements the L1↔L2 messaging bridge:
// an in-memory stand-in for Ethereum's messaging contract, plus the flush
// protocol that relays pending messages in both directions through the
// Transaction Pipeline.
//
// Grounded on carmen's BulkLoad (carmen/bulk.go) for the shape of a
// single-writer, caller-locked accumulator, and on execengine.L2ToL1Message
// for the payload shape a real invoke execution produces.
package messaging

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
)

// L1ToL2Message is one message deposited by a simulated (or real, via
// postman) L1 call, awaiting relay into an L1-handler transaction.
type L1ToL2Message struct {
	L1Sender    felt.Felt
	L2Target    felt.Address
	Selector    felt.Felt
	Payload     []felt.Felt
	PaidFeeL1   felt.Felt
	Nonce       uint64
	L1BlockNumber uint64
}

// L2ToL1Pending is one message emitted by an L2 execution's
// send_message_to_l1 syscall, awaiting relay to L1 (or, in dry-run mode,
// direct return to the caller).
type L2ToL1Pending struct {
	execengine.L2ToL1Message
	BlockNumber     uint64
	TransactionHash felt.TxHash
}

// L1Provider names where messages_to_L2 were actually polled from in a
// flush response.
type L1Provider string

const (
	ProviderDryRun L1Provider = "dry run"
	ProviderReal   L1Provider = "real"
)

// L1Endpoint is the seam to a real Ethereum endpoint's messaging contract,
// used only when the bridge is not running in dry-run mode. No example in
// the pack ships a Starknet-messaging-contract-aware Ethereum client (the
// pack's only Ethereum-adjacent dependency, go-ethereum, is dropped per
// DESIGN.md — this module carries no on-chain settlement), so dry-run mode
// is this module's fully-exercised path and L1Endpoint exists as the
// documented extension point names ("if an L1 endpoint is
// attached").
type L1Endpoint interface {
	SendToL1(msgs []execengine.L2ToL1Message) error
	PollL1ToL2(sinceBlock uint64) ([]L1ToL2Message, error)
}

// Bridge is the L1 messaging simulator: two pending queues, the
// l1_hash -> []l2_hash index, and a monotonic l1_nonce counter separate
// from any contract's nonce.
type Bridge struct {
	l1ToL2 []L1ToL2Message
	l2ToL1 []L2ToL1Pending

	l1ToL2TxHashes map[felt.Felt][]felt.TxHash
	nextL1Nonce    uint64
	lastSeenL1Block uint64

	endpoint L1Endpoint // nil => dry-run only
}

// New returns an empty bridge. endpoint may be nil (dry-run only).
func New(endpoint L1Endpoint) *Bridge {
	return &Bridge{l1ToL2TxHashes: map[felt.Felt][]felt.TxHash{}, endpoint: endpoint}
}

// nextNonce hands out the bridge's separate l1_nonce counter.
func (b *Bridge) nextNonce() uint64 {
	n := b.nextL1Nonce
	b.nextL1Nonce++
	return n
}

// RecordL2ToL1 is called by the Transaction Pipeline (through its
// L2ToL1Recorder seam) once per committed transaction that produced
// L2ToL1 messages, and queues each of them for the next flush.
func (b *Bridge) RecordL2ToL1(blockNumber uint64, txHash felt.TxHash, msgs []execengine.L2ToL1Message) {
	for _, m := range msgs {
		b.l2ToL1 = append(b.l2ToL1, L2ToL1Pending{L2ToL1Message: m, BlockNumber: blockNumber, TransactionHash: txHash})
	}
}

// ConsumeFromL2 implements "Consume-message-from-L2": removes
// the first pending L2->L1 message matching (from, to, payload) and
// returns its originating transaction hash.
func (b *Bridge) ConsumeFromL2(from felt.Address, to felt.Felt, payload []felt.Felt) (felt.TxHash, bool) {
	for i, m := range b.l2ToL1 {
		if m.FromAddress != from || m.ToAddress.Cmp(to) != 0 || !feltSliceEqual(m.Payload, payload) {
			continue
		}
		b.l2ToL1 = append(b.l2ToL1[:i], b.l2ToL1[i+1:]...)
		return m.TransactionHash, true
	}
	return felt.TxHash{}, false
}

func feltSliceEqual(a, b []felt.Felt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}
