// Package block implements the Block Engine: the ordered
// chain of sealed blocks, the pre-confirmed singleton, lookup by
// hash/number/tag, seal, abort, and L1-acceptance.
package block

import "github.com/0xSpaceShard/starknet-devnet-go/core/felt"

// Status is a block's finality.
type Status int

const (
	PreConfirmed Status = iota
	AcceptedOnL2
	AcceptedOnL1
)

func (s Status) String() string {
	switch s {
	case PreConfirmed:
		return "PRE_CONFIRMED"
	case AcceptedOnL2:
		return "ACCEPTED_ON_L2"
	case AcceptedOnL1:
		return "ACCEPTED_ON_L1"
	default:
		return "UNKNOWN"
	}
}

// DAMode is the data-availability mode of a block's header.
type DAMode int

const (
	DAModeL1 DAMode = iota
	DAModeL2
)

// ResourcePrice carries one resource's price in both fee tokens (wei and
// fri, i.e. the L1 and STRK-denominated prices).
type ResourcePrice struct {
	InWei felt.Felt
	InFri felt.Felt
}

// GasPrices bundles the six gas-price fields a block header carries: L1
// gas, L1-data gas, and L2 gas, each in two fee tokens.
type GasPrices struct {
	L1Gas     ResourcePrice
	L1DataGas ResourcePrice
	L2Gas     ResourcePrice
}

// Header is a sealed or pre-confirmed block's metadata.
type Header struct {
	Number           uint64
	Hash             felt.BlockHash
	ParentHash       felt.BlockHash
	Timestamp        uint64
	SequencerAddress felt.Address
	GasPrices        GasPrices
	L1DAMode         DAMode
}

// Block holds a header, its ordered transaction hashes, and status.
type Block struct {
	Header   Header
	TxHashes []felt.TxHash
	Status   Status
}

func (b *Block) clone() *Block {
	hashes := make([]felt.TxHash, len(b.TxHashes))
	copy(hashes, b.TxHashes)
	return &Block{Header: b.Header, TxHashes: hashes, Status: b.Status}
}
