// Package devnet wires the State Store, Block Engine, Transaction
// Pipeline, Forking Overlay, and Messaging Bridge into a single engine
// behind one exclusive lock, matching carmen.Database's role as the single
// entry point collaborators drive (carmen/carmen.go): one process-wide
// lock, injected logger, Prometheus counters mirroring carmen's
// GetMemoryFootprint() introspection instinct applied to request counts
// instead of memory.
package devnet

import (
	"fmt"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0xSpaceShard/starknet-devnet-go/config"
	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/archive"
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/fork"
	"github.com/0xSpaceShard/starknet-devnet-go/messaging"
	"github.com/0xSpaceShard/starknet-devnet-go/pipeline"
	"github.com/0xSpaceShard/starknet-devnet-go/rpcerr"
)

const errRestartInProgress = rpcerr.ConstError("restart already in progress")

// metrics bundles the engine's Prometheus counters.
type metrics struct {
	blocksSealed  prometheus.Counter
	txsAccepted   prometheus.Counter
	txsReverted   prometheus.Counter
	blocksAborted prometheus.Counter
	flushCycles   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		blocksSealed:  prometheus.NewCounter(prometheus.CounterOpts{Name: "devnet_blocks_sealed_total"}),
		txsAccepted:   prometheus.NewCounter(prometheus.CounterOpts{Name: "devnet_transactions_accepted_total"}),
		txsReverted:   prometheus.NewCounter(prometheus.CounterOpts{Name: "devnet_transactions_reverted_total"}),
		blocksAborted: prometheus.NewCounter(prometheus.CounterOpts{Name: "devnet_blocks_aborted_total"}),
		flushCycles:   prometheus.NewCounter(prometheus.CounterOpts{Name: "devnet_messaging_flush_total"}),
	}
	if reg != nil {
		reg.MustRegister(m.blocksSealed, m.txsAccepted, m.txsReverted, m.blocksAborted, m.flushCycles)
	}
	return m
}

// Engine is the top-level devnet: the single object a transport layer
// (out of this module's scope) would hold one of, dispatching every RPC
// through it under its one exclusive lock.
type Engine struct {
	mu sync.Mutex

	cfg     config.Config
	log     *log.Logger
	metrics *metrics

	store    *state.Store
	blocks   *block.Engine
	arc      *archive.Archive
	txs      *pipeline.TxStore
	pipe     *pipeline.Pipeline
	overlay  *fork.Overlay
	bridge   *messaging.Bridge
	execImpl execengine.Engine

	restarting bool
}

// New builds a fully wired Engine from cfg. logger may be nil, in which
// case log.Default() is used, matching carmen's "caller may omit
// optional collaborators" convention throughout carmen/database.go.
func New(cfg config.Config, execImpl execengine.Engine, reg prometheus.Registerer, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	store := state.New()
	if provider, ok := execImpl.(execengine.FeeTokenProvider); ok {
		eth, strk := provider.FeeTokens()
		store.DeployContract(eth, execengine.FeeTokenClassHash)
		store.DeployContract(strk, execengine.FeeTokenClassHash)
	}
	arc := archive.New(cfg.ArchivePolicy)
	txs := pipeline.NewTxStore()
	blocks := block.New(block.Config{
		StartingBlockNumber: cfg.StartingBlockNumber,
		LiteMode:            cfg.LiteMode,
		ArchivePolicy:       cfg.ArchivePolicy,
		InitialGasPrices:    cfg.InitialGasPrices,
	}, store, arc, txs)

	e := &Engine{cfg: cfg, log: logger, store: store, blocks: blocks, arc: arc, txs: txs, execImpl: execImpl}
	e.metrics = newMetrics(reg)

	var overlay *fork.Overlay
	var upstream fork.UpstreamClient
	if cfg.Forking() {
		upstream = newHTTPUpstreamClient(cfg.Fork.URL)
	}
	overlay = fork.New(fork.Config{PinnedBlock: cfg.Fork.BlockNumber}, store, blocks, txs, upstream)
	e.overlay = overlay

	e.bridge = messaging.New(nil)

	e.pipe = pipeline.New(pipeline.Config{
		ChainID:           cfg.ChainID,
		GenerationMode:    cfg.GenerationMode,
		ChargeableAddress: chargeableAccountAddress,
	}, store, blocks, arc, execImpl, txs, overlay, e.bridge)

	e.log.Printf("devnet: engine initialized at block %d, chain id %s", cfg.StartingBlockNumber, cfg.ChainID)
	return e, nil
}

// chargeableAccountAddress is the built-in minting account's well-known
// address, matching the real devnet's hard-wired chargeable account. Its
// signing key is not modeled since execengine's validate step is a no-op
// stand-in for the Cairo VM.
var chargeableAccountAddress = felt.AddressFromFelt(felt.FromBytes([]byte("devnet-chargeable-account")))

// Lock acquires the engine's single exclusive lock, held for the duration
// of a single RPC handler call. Callers (transports, this module's own
// admin operations) must Unlock when done.
func (e *Engine) Lock()   { e.mu.Lock() }
func (e *Engine) Unlock() { e.mu.Unlock() }

// Pipeline exposes the Transaction Pipeline to collaborators (a transport)
// that need direct access beyond this package's admin operations.
func (e *Engine) Pipeline() *pipeline.Pipeline { return e.pipe }

// Blocks exposes the Block Engine.
func (e *Engine) Blocks() *block.Engine { return e.blocks }

// Overlay exposes the Forking Overlay.
func (e *Engine) Overlay() *fork.Overlay { return e.overlay }

// Bridge exposes the Messaging Bridge.
func (e *Engine) Bridge() *messaging.Bridge { return e.bridge }

// GetConfig returns the engine's configuration, for the devnet_getConfig
// RPC.
func (e *Engine) GetConfig() config.Config { return e.cfg }

// Mint implements the devnet_mint admin RPC.
func (e *Engine) Mint(token, recipient felt.Address, value amount.Amount) (felt.TxHash, error) {
	hash, _, err := e.pipe.Mint(token, recipient, value)
	if err != nil {
		e.metrics.txsReverted.Inc()
		return hash, err
	}
	e.metrics.txsAccepted.Inc()
	e.log.Printf("devnet: minted %s to %s (tx %s)", value, recipient, hash)
	return hash, nil
}

// CreateBlock implements the devnet_createBlock admin RPC: force-seals the
// current pre-confirmed block regardless of generation mode.
func (e *Engine) CreateBlock() *block.Block {
	b := e.blocks.Seal()
	e.metrics.blocksSealed.Inc()
	return b
}

// Flush implements devnet_postmanFlush: drains the messaging bridge's
// pending L1<->L2 queues, relaying any incoming L1-to-L2 messages through
// the pipeline as L1-handler transactions. dryRun skips relaying to/from a
// real attached L1 endpoint, returning the pending L2-to-L1 messages as-is.
func (e *Engine) Flush(dryRun bool) (messaging.FlushResult, error) {
	result, err := e.bridge.Flush(dryRun, e.pipe)
	if err != nil {
		return messaging.FlushResult{}, err
	}
	e.metrics.flushCycles.Inc()
	e.log.Printf("devnet: flushed messaging bridge (%d to L1, %d to L2)", len(result.MessagesToL1), len(result.MessagesToL2))
	return result, nil
}

// AbortBlocks implements devnet_abortBlocks.
func (e *Engine) AbortBlocks(startingID block.ID) ([]felt.BlockHash, error) {
	hashes, err := e.blocks.Abort(startingID)
	if err != nil {
		return nil, err
	}
	e.metrics.blocksAborted.Add(float64(len(hashes)))
	return hashes, nil
}

// AcceptOnL1 implements devnet_acceptOnL1.
func (e *Engine) AcceptOnL1(startingID block.ID) ([]felt.BlockHash, error) {
	return e.blocks.AcceptOnL1(startingID)
}

// SetGasPrice implements devnet_setGasPrice.
func (e *Engine) SetGasPrice(gp block.GasPrices) {
	e.blocks.SetGasPrices(gp)
}

// SetTime implements devnet_setTime.
func (e *Engine) SetTime(t uint64) { e.blocks.SetTime(t) }

// IncreaseTime implements devnet_increaseTime.
func (e *Engine) IncreaseTime(delta int64) { e.blocks.IncreaseTime(delta) }

// ImpersonateAccount implements devnet_impersonateAccount.
func (e *Engine) ImpersonateAccount(addr felt.Address) error {
	if !e.cfg.Forking() {
		return &rpcerr.UnsupportedAction{Msg: "impersonation requires forking mode"}
	}
	return e.overlay.Impersonate(addr)
}

// StopImpersonateAccount implements devnet_stopImpersonateAccount.
func (e *Engine) StopImpersonateAccount(addr felt.Address) {
	e.overlay.StopImpersonating(addr)
}

// AutoImpersonate implements devnet_autoImpersonate / stopAutoImpersonate.
func (e *Engine) AutoImpersonate(on bool) error {
	if !e.cfg.Forking() {
		return &rpcerr.UnsupportedAction{Msg: "impersonation requires forking mode"}
	}
	e.overlay.SetAutoImpersonate(on)
	return nil
}

// Restart rebuilds the engine's mutable components from scratch, keeping
// configuration and execution engine. Mirrors carmen's
// one-database-at-a-time discipline: a restart in progress rejects
// concurrent restarts.
func (e *Engine) Restart() error {
	if e.restarting {
		return errRestartInProgress
	}
	e.restarting = true
	defer func() { e.restarting = false }()

	fresh, err := New(e.cfg, e.execImpl, nil, e.log)
	if err != nil {
		return fmt.Errorf("devnet: restart failed: %w", err)
	}
	e.store, e.blocks, e.arc, e.txs, e.pipe, e.overlay, e.bridge = fresh.store, fresh.blocks, fresh.arc, fresh.txs, fresh.pipe, fresh.overlay, fresh.bridge
	e.log.Printf("devnet: engine restarted")
	return nil
}
