package block

import (
	"errors"
	"fmt"
	"time"

	"github.com/0xSpaceShard/starknet-devnet-go/core/archive"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
)

// ErrNoBlock is returned when a block id fails to resolve to any block.
var ErrNoBlock = errors.New("block not found")

// ErrUnsupportedAction is returned for pre-condition violations on admin
// operations.
type ErrUnsupportedAction struct{ Msg string }

func (e *ErrUnsupportedAction) Error() string { return "unsupported action: " + e.Msg }

// TransactionSink is the seam the Transaction Pipeline's transaction store
// exposes to the Block Engine, so sealing/aborting/accepting blocks can
// patch transaction metadata without the block package importing the
// pipeline package.
type TransactionSink interface {
	// Seal patches a transaction with its sealing block's metadata.
	Seal(hash felt.TxHash, blockHash felt.BlockHash, blockNumber uint64)
	// Remove deletes a transaction entirely (used when its block is
	// aborted).
	Remove(hash felt.TxHash)
	// AcceptOnL1 marks a transaction's finality as accepted-on-L1.
	AcceptOnL1(hash felt.TxHash)
}

// Config configures the Block Engine's lifecycle behavior.
type Config struct {
	StartingBlockNumber uint64
	LiteMode            bool
	ArchivePolicy       archive.Policy
	SequencerAddress    felt.Address
	InitialGasPrices    GasPrices
}

// Engine is the Block Engine: the ordered chain of sealed blocks plus the
// one pre-confirmed block, indexed by hash and number.
type Engine struct {
	cfg     Config
	store   *state.Store
	archive *archive.Archive
	txs     TransactionSink

	numberToHash map[uint64]felt.BlockHash
	hashToBlock  map[felt.BlockHash]*Block

	lastBlockHash felt.BlockHash
	hasLastBlock  bool
	preConfirmed  *Block

	abortedBlocks []felt.BlockHash

	currentGasPrices GasPrices
	timeOffset        int64
}

// New constructs a Block Engine with an empty chain and a fresh
// pre-confirmed genesis block.
func New(cfg Config, store *state.Store, arc *archive.Archive, txs TransactionSink) *Engine {
	e := &Engine{
		cfg:              cfg,
		store:            store,
		archive:          arc,
		txs:              txs,
		numberToHash:     map[uint64]felt.BlockHash{},
		hashToBlock:      map[felt.BlockHash]*Block{},
		currentGasPrices: cfg.InitialGasPrices,
	}
	e.preConfirmed = e.newPreConfirmed(cfg.StartingBlockNumber)
	return e
}

func (e *Engine) newPreConfirmed(number uint64) *Block {
	return &Block{
		Header: Header{
			Number:           number,
			SequencerAddress: e.cfg.SequencerAddress,
			GasPrices:        e.currentGasPrices,
			Timestamp:        e.now(),
		},
		Status: PreConfirmed,
	}
}

func (e *Engine) now() uint64 {
	return uint64(time.Now().Unix() + e.timeOffset)
}

// SetTime pins the virtual clock to t and retimestamps the in-progress
// pre-confirmed block to t.
func (e *Engine) SetTime(t uint64) {
	e.timeOffset = int64(t) - int64(time.Now().Unix())
	e.preConfirmed.Header.Timestamp = t
}

// IncreaseTime advances the virtual clock by delta seconds and retimestamps
// the in-progress pre-confirmed block accordingly.
func (e *Engine) IncreaseTime(delta int64) {
	e.timeOffset += delta
	e.preConfirmed.Header.Timestamp = e.now()
}

// SetGasPrices overrides the gas prices carried by every future
// pre-confirmed block (including the current one).
func (e *Engine) SetGasPrices(gp GasPrices) {
	e.currentGasPrices = gp
	e.preConfirmed.Header.GasPrices = gp
}

// PreConfirmed returns the current pre-confirmed block. Callers must not
// retain the pointer across a Seal/Abort call.
func (e *Engine) PreConfirmed() *Block {
	return e.preConfirmed
}

// AppendTransaction records a transaction hash into the pre-confirmed
// block's body, called by the pipeline after a successful state commit.
func (e *Engine) AppendTransaction(hash felt.TxHash) {
	e.preConfirmed.TxHashes = append(e.preConfirmed.TxHashes, hash)
}

// Latest resolves the tag "latest": the most recently sealed block, or the
// pre-confirmed block if nothing has been sealed yet.
func (e *Engine) Latest() *Block {
	if e.hasLastBlock {
		return e.hashToBlock[e.lastBlockHash]
	}
	return e.preConfirmed
}

// ByHash resolves a block by its hash.
func (e *Engine) ByHash(hash felt.BlockHash) (*Block, error) {
	if b, ok := e.hashToBlock[hash]; ok {
		return b, nil
	}
	return nil, ErrNoBlock
}

// ByNumber resolves a block by its number: the pre-confirmed block if the
// number is its number, otherwise a sealed block.
func (e *Engine) ByNumber(number uint64) (*Block, error) {
	if number == e.preConfirmed.Header.Number {
		return e.preConfirmed, nil
	}
	hash, ok := e.numberToHash[number]
	if !ok {
		return nil, ErrNoBlock
	}
	return e.hashToBlock[hash], nil
}

// Resolve looks a block up by its ID.
func (e *Engine) Resolve(id ID) (*Block, error) {
	switch id.Kind {
	case IDLatest:
		return e.Latest(), nil
	case IDPreConfirmed:
		return e.preConfirmed, nil
	case IDByHash:
		return e.ByHash(id.Hash)
	case IDByNumber:
		return e.ByNumber(id.Number)
	default:
		return nil, fmt.Errorf("block: invalid block id")
	}
}

// Range returns the sealed (and, if in range, pre-confirmed) blocks with
// from <= number <= to, ascending. Both bounds are inclusive; either may
// resolve from a tag. from > to yields an empty, non-error result.
func (e *Engine) Range(fromID, toID ID) ([]*Block, error) {
	fromBlock, err := e.Resolve(fromID)
	if err != nil {
		return nil, ErrNoBlock
	}
	toBlock, err := e.Resolve(toID)
	if err != nil {
		return nil, ErrNoBlock
	}
	from, to := fromBlock.Header.Number, toBlock.Header.Number
	if from > to {
		return nil, nil
	}
	out := make([]*Block, 0, to-from+1)
	for n := from; n <= to; n++ {
		b, err := e.ByNumber(n)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Seal clones the pre-confirmed block, commits the staged classes, computes
// its hash, links it to the chain, patches its transactions, archives the
// post-commit state if enabled, and resets the pre-confirmed block for the
// next number.
func (e *Engine) Seal() *Block {
	sealed := e.preConfirmed.clone()
	sealed.Status = AcceptedOnL2
	e.store.CommitClasses(sealed.Header.Number)

	if e.hasLastBlock {
		sealed.Header.ParentHash = e.lastBlockHash
	}

	var hash felt.BlockHash
	if e.cfg.LiteMode {
		hash = e.liteHash(sealed.Header.Number)
	} else {
		hash = e.computeHash(sealed)
	}
	sealed.Header.Hash = hash

	for _, txHash := range sealed.TxHashes {
		e.txs.Seal(txHash, hash, sealed.Header.Number)
	}

	e.numberToHash[sealed.Header.Number] = hash
	e.hashToBlock[hash] = sealed
	e.lastBlockHash = hash
	e.hasLastBlock = true

	if e.archive.Enabled() {
		e.archive.Put(hash, e.store.Snapshot())
	}

	e.preConfirmed = e.newPreConfirmed(sealed.Header.Number + 1)
	return sealed
}

// computeHash derives the block's hash as a Pedersen hash of an 11-element
// tuple, padding six slots with zero so the hash excludes wall-clock time
// and is reproducible across dump/load.
func (e *Engine) computeHash(b *Block) felt.BlockHash {
	zero := felt.Zero
	stateRoot := e.store.Root()
	elements := []felt.Felt{
		felt.FromUint64(b.Header.Number),
		stateRoot,
		b.Header.SequencerAddress.Felt(),
		zero, // timestamp -- intentionally excluded
		felt.FromUint64(uint64(len(b.TxHashes))),
		zero, // tx_commitment
		zero, // event_count
		zero, // event_commitment
		zero, // protocol_version
		zero, // extra
		b.Header.ParentHash.Felt(),
	}
	return felt.BlockHashFromFelt(felt.PedersenHash(elements...))
}

// liteHash produces the deterministic structurally-derived hash used in
// "lite" mode, where real hash computation is bypassed entirely.
func (e *Engine) liteHash(number uint64) felt.BlockHash {
	return felt.BlockHashFromFelt(felt.PedersenHash(felt.FromUint64(number)))
}

// Abort walks backwards from latest to (and including) startingID,
// removing each block from the indices and its transactions from the
// transaction store. Returns the hashes
// removed, latest-first (startingID's block last).
func (e *Engine) Abort(startingID ID) ([]felt.BlockHash, error) {
	if !e.archive.Enabled() {
		return nil, &ErrUnsupportedAction{Msg: "aborting blocks requires the full state archive"}
	}
	startBlock, err := e.Resolve(startingID)
	if err != nil {
		return nil, ErrNoBlock
	}
	if startBlock.Header.Number == e.cfg.StartingBlockNumber {
		return nil, &ErrUnsupportedAction{Msg: "the genesis block cannot be aborted"}
	}
	if startBlock.Status == PreConfirmed {
		e.Seal()
		startBlock, err = e.ByNumber(startBlock.Header.Number)
		if err != nil {
			return nil, ErrNoBlock
		}
	}

	var removed []felt.BlockHash
	var deepestParentHash felt.BlockHash
	var deepestParentNumber uint64
	cur := e.Latest()
	for cur.Header.Number >= startBlock.Header.Number {
		hash := cur.Header.Hash
		parentHash := cur.Header.ParentHash
		parentNumber := cur.Header.Number - 1

		removed = append(removed, hash)
		for _, txHash := range cur.TxHashes {
			e.txs.Remove(txHash)
		}
		delete(e.hashToBlock, hash)
		delete(e.numberToHash, cur.Header.Number)
		e.archive.Forget(hash)

		deepestParentHash = parentHash
		deepestParentNumber = parentNumber

		if cur.Header.Number == e.cfg.StartingBlockNumber {
			break
		}
		parent, err := e.ByHash(parentHash)
		if err != nil {
			break
		}
		cur = parent
	}

	e.abortedBlocks = append(e.abortedBlocks, removed...)
	e.lastBlockHash = deepestParentHash
	if parentBlock, ok := e.hashToBlock[deepestParentHash]; ok {
		e.hasLastBlock = true
		e.store.Restore(e.archivedOrEmpty(parentBlock.Header.Hash))
	} else {
		// the deepest aborted block was genesis itself: no block remains.
		e.hasLastBlock = false
		e.store.Restore(state.New().Snapshot())
	}

	e.preConfirmed = e.newPreConfirmed(deepestParentNumber + 1)
	return removed, nil
}

func (e *Engine) archivedOrEmpty(hash felt.BlockHash) *state.Snapshot {
	snap, err := e.archive.Get(hash)
	if err != nil {
		return state.New().Snapshot()
	}
	return snap
}

// AbortedBlocks returns the hashes removed by every abort operation so far,
// accumulated in call order, for reorg notification plumbing.
func (e *Engine) AbortedBlocks() []felt.BlockHash {
	return e.abortedBlocks
}

// AcceptOnL1 walks from startingID towards genesis, marking each block and
// its transactions as accepted-on-L1 until one already in that status is
// reached.
func (e *Engine) AcceptOnL1(startingID ID) ([]felt.BlockHash, error) {
	start, err := e.Resolve(startingID)
	if err != nil {
		return nil, ErrNoBlock
	}
	if start.Status == PreConfirmed {
		return nil, &ErrUnsupportedAction{Msg: "cannot accept a pre-confirmed block on L1"}
	}
	if start.Status == AcceptedOnL1 {
		return nil, &ErrUnsupportedAction{Msg: "block is already accepted on L1"}
	}

	var accepted []felt.BlockHash
	cur := start
	for {
		if cur.Status == AcceptedOnL1 {
			break
		}
		cur.Status = AcceptedOnL1
		for _, txHash := range cur.TxHashes {
			e.txs.AcceptOnL1(txHash)
		}
		accepted = append(accepted, cur.Header.Hash)
		if cur.Header.Number == e.cfg.StartingBlockNumber {
			break
		}
		parent, err := e.ByHash(cur.Header.ParentHash)
		if err != nil {
			break
		}
		cur = parent
	}
	return accepted, nil
}
