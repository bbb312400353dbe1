package messaging

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
)

func TestRecordL2ToL1QueuesMessages(t *testing.T) {
	b := New(nil)
	from := felt.AddressFromFelt(felt.FromUint64(1))
	hash := felt.TxHashFromFelt(felt.FromUint64(2))
	msgs := []execengine.L2ToL1Message{
		{FromAddress: from, ToAddress: felt.FromUint64(3), Payload: []felt.Felt{felt.FromUint64(4)}},
	}
	b.RecordL2ToL1(7, hash, msgs)

	if len(b.l2ToL1) != 1 {
		t.Fatalf("RecordL2ToL1 queued %d messages, want 1", len(b.l2ToL1))
	}
	pending := b.l2ToL1[0]
	if pending.BlockNumber != 7 || pending.TransactionHash != hash {
		t.Fatalf("RecordL2ToL1 did not stamp block/tx origin correctly: %+v", pending)
	}
}

func TestConsumeFromL2RemovesFirstMatch(t *testing.T) {
	b := New(nil)
	from := felt.AddressFromFelt(felt.FromUint64(1))
	to := felt.FromUint64(9)
	payload := []felt.Felt{felt.FromUint64(5)}
	hash := felt.TxHashFromFelt(felt.FromUint64(42))
	b.RecordL2ToL1(1, hash, []execengine.L2ToL1Message{{FromAddress: from, ToAddress: to, Payload: payload}})

	got, ok := b.ConsumeFromL2(from, to, payload)
	if !ok {
		t.Fatalf("ConsumeFromL2 did not find a queued matching message")
	}
	if got != hash {
		t.Fatalf("ConsumeFromL2 returned hash %v, want %v", got, hash)
	}
	if len(b.l2ToL1) != 0 {
		t.Fatalf("ConsumeFromL2 left %d messages queued, want 0", len(b.l2ToL1))
	}
}

func TestConsumeFromL2NoMatchReturnsFalse(t *testing.T) {
	b := New(nil)
	from := felt.AddressFromFelt(felt.FromUint64(1))
	_, ok := b.ConsumeFromL2(from, felt.FromUint64(9), nil)
	if ok {
		t.Fatalf("ConsumeFromL2 matched against an empty queue")
	}
}

func TestFeltSliceEqual(t *testing.T) {
	a := []felt.Felt{felt.FromUint64(1), felt.FromUint64(2)}
	b := []felt.Felt{felt.FromUint64(1), felt.FromUint64(2)}
	c := []felt.Felt{felt.FromUint64(1), felt.FromUint64(3)}

	if !feltSliceEqual(a, b) {
		t.Fatalf("feltSliceEqual reported equal slices as different")
	}
	if feltSliceEqual(a, c) {
		t.Fatalf("feltSliceEqual reported different slices as equal")
	}
	if feltSliceEqual(a, a[:1]) {
		t.Fatalf("feltSliceEqual reported slices of different length as equal")
	}
}
