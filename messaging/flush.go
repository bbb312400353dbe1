package messaging

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
)

// Submitter is the pipeline seam the bridge drives an L1-handler
// transaction through. Satisfied by *pipeline.Pipeline without this
// package importing it, keeping messaging -> pipeline a one-way
// dependency the caller wires up rather than one this package hard-codes.
type Submitter interface {
	SubmitL1Handler(tx transaction.L1HandlerTx) (felt.TxHash, execengine.Result, error)
}

// FlushResult is the shape of a Flush call's response.
type FlushResult struct {
	MessagesToL1        []L2ToL1Pending
	MessagesToL2        []L1ToL2Message
	GeneratedL2Transactions []felt.TxHash
	L1Provider          L1Provider
}

// Flush drains the bridge's pending queues. dryRun selects between relaying
// to/from a real attached L1 endpoint and operating purely against the
// bridge's in-memory queues.
func (b *Bridge) Flush(dryRun bool, submit Submitter) (FlushResult, error) {
	toL1 := b.l2ToL1
	b.l2ToL1 = nil

	result := FlushResult{MessagesToL1: toL1}
	if dryRun || b.endpoint == nil {
		result.L1Provider = ProviderDryRun
		return result, nil
	}
	result.L1Provider = ProviderReal

	if err := b.endpoint.SendToL1(flattenL2ToL1(toL1)); err != nil {
		return FlushResult{}, err
	}

	incoming, err := b.endpoint.PollL1ToL2(b.lastSeenL1Block)
	if err != nil {
		return FlushResult{}, err
	}
	for _, m := range incoming {
		l1Hash := felt.PedersenHash(m.L1Sender, m.L2Target.Felt(), m.Selector, felt.FromUint64(m.Nonce))
		tx := transaction.L1HandlerTx{
			Kind:            transaction.L1Handler,
			Version:         0,
			ContractAddress: m.L2Target,
			EntryPoint:      m.Selector,
			Calldata:        append([]felt.Felt{m.L1Sender}, m.Payload...),
			Nonce:           m.Nonce,
			PaidFeeOnL1:     m.PaidFeeL1,
		}
		l2Hash, _, err := submit.SubmitL1Handler(tx)
		if err != nil {
			return FlushResult{}, err
		}
		b.l1ToL2TxHashes[l1Hash] = append(b.l1ToL2TxHashes[l1Hash], l2Hash)
		result.MessagesToL2 = append(result.MessagesToL2, m)
		result.GeneratedL2Transactions = append(result.GeneratedL2Transactions, l2Hash)
		if m.L1BlockNumber >= b.lastSeenL1Block {
			b.lastSeenL1Block = m.L1BlockNumber + 1
		}
	}
	return result, nil
}

func flattenL2ToL1(pending []L2ToL1Pending) []execengine.L2ToL1Message {
	out := make([]execengine.L2ToL1Message, len(pending))
	for i, p := range pending {
		out[i] = p.L2ToL1Message
	}
	return out
}

// SendMessageToL2 mocks a deposit-triggered send-message-to-L2 call: it
// synthesises and submits an L1-handler transaction immediately, indexing
// the resulting L2 hash under the given L1 hash for later status queries.
func (b *Bridge) SendMessageToL2(l1Contract felt.Felt, l2Contract felt.Address, selector felt.Felt, payload []felt.Felt, paidFee felt.Felt, l1TxHash felt.Felt, submit Submitter) (felt.TxHash, error) {
	nonce := b.nextNonce()
	tx := transaction.L1HandlerTx{
		Kind:            transaction.L1Handler,
		Version:         0,
		ContractAddress: l2Contract,
		EntryPoint:      selector,
		Calldata:        append([]felt.Felt{l1Contract}, payload...),
		Nonce:           nonce,
		PaidFeeOnL1:     paidFee,
	}
	l2Hash, _, err := submit.SubmitL1Handler(tx)
	if err != nil {
		return felt.TxHash{}, err
	}
	b.l1ToL2TxHashes[l1TxHash] = append(b.l1ToL2TxHashes[l1TxHash], l2Hash)
	return l2Hash, nil
}

// L2HashesForL1 returns every L2 transaction hash generated in response to
// the given L1 transaction hash, for status queries that follow a deposit
// across the bridge.
func (b *Bridge) L2HashesForL1(l1TxHash felt.Felt) []felt.TxHash {
	return b.l1ToL2TxHashes[l1TxHash]
}
