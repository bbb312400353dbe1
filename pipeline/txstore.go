package pipeline

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
)

// Finality mirrors a transaction's observable status independent of the
// block it landed in, matching per-transaction finality states.
type Finality int

const (
	FinalityPreConfirmed Finality = iota
	FinalityAcceptedOnL2
	FinalityAcceptedOnL1
)

// Record is everything the pipeline remembers about one submitted
// transaction, returned by getTransactionReceipt/getTransactionStatus-style
// queries (transports building on this module, not this module itself).
type Record struct {
	Hash      felt.TxHash
	Finality  Finality
	Result    execengine.Result
	BlockHash felt.BlockHash
	Number    uint64
}

// TxStore is the Transaction Pipeline's record of every submitted
// transaction, keyed by hash; records of transactions in aborted blocks are
// removed. It implements block.TransactionSink
// so the Block Engine can update a transaction's finality as blocks are
// sealed, aborted, or accepted on L1 without importing this package (the
// seam avoids a core/block <-> pipeline import cycle).
//
// Grounded on carmen's BulkLoad/transaction bookkeeping pattern
// (carmen/bulk.go): a single map guarded by the caller's exclusive lock,
// no internal locking of its own.
type TxStore struct {
	records map[felt.TxHash]*Record
	order   []felt.TxHash
}

// NewTxStore returns an empty transaction store.
func NewTxStore() *TxStore {
	return &TxStore{records: map[felt.TxHash]*Record{}}
}

// Put registers a freshly submitted transaction as pre-confirmed.
func (t *TxStore) Put(hash felt.TxHash, result execengine.Result) {
	t.records[hash] = &Record{Hash: hash, Finality: FinalityPreConfirmed, Result: result}
	t.order = append(t.order, hash)
}

// Get looks up a transaction by hash.
func (t *TxStore) Get(hash felt.TxHash) (*Record, bool) {
	r, ok := t.records[hash]
	return r, ok
}

// Seal implements block.TransactionSink: called once per transaction when
// its containing block is sealed, recording the block it landed in.
func (t *TxStore) Seal(hash felt.TxHash, blockHash felt.BlockHash, blockNumber uint64) {
	r, ok := t.records[hash]
	if !ok {
		return
	}
	r.Finality = FinalityAcceptedOnL2
	r.BlockHash = blockHash
	r.Number = blockNumber
}

// Remove implements block.TransactionSink: called for every transaction
// that belonged to an aborted block, so an abort can't leave a dangling
// "pre-confirmed forever" record behind.
func (t *TxStore) Remove(hash felt.TxHash) {
	delete(t.records, hash)
}

// AcceptOnL1 implements block.TransactionSink: called when the block
// containing hash transitions to AcceptedOnL1.
func (t *TxStore) AcceptOnL1(hash felt.TxHash) {
	if r, ok := t.records[hash]; ok {
		r.Finality = FinalityAcceptedOnL1
	}
}
