// Package pipeline implements the Transaction Pipeline: the
// common submission protocol shared by declare/deploy-account/invoke/
// L1-handler transactions, fee estimation, simulation, and read-only calls,
// all built on top of a core/state.Store, a core/block.Engine, and a
// pluggable execengine.Engine.
//
// Grounded on carmen's HeadBlockContext/TransactionContext lifecycle
// (carmen/block.go, carmen/transaction.go): open a transaction against the
// block's working state, run it, and either commit or abort — this
// package's Fork/Adopt dance against core/state.Store is that same pattern
// specialized to a single mutable Store instead of a full context tree.
package pipeline

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/rpcerr"
)

// GenerationMode selects when a pre-confirmed block is sealed.
type GenerationMode int

const (
	// GenerateOnTransaction seals a new block immediately after every
	// successfully submitted transaction.
	GenerateOnTransaction GenerationMode = iota
	// GenerateOnDemand only seals when an operator explicitly requests it.
	GenerateOnDemand
)

// Impersonation is the seam the fork overlay implements to
// tell the pipeline which senders should skip validation. A nil
// Impersonation (the non-forking default) treats every sender as not
// impersonated.
type Impersonation interface {
	IsImpersonated(addr felt.Address) bool
}

// L2ToL1Recorder is the seam the messaging bridge implements to collect
// every L2ToL1Message a committed transaction's execution produced, so a
// later flush can relay them. A nil recorder disables this bookkeeping,
// matching Impersonation's "nil means skip" convention.
type L2ToL1Recorder interface {
	RecordL2ToL1(blockNumber uint64, txHash felt.TxHash, msgs []execengine.L2ToL1Message)
}

// Config is the pipeline's fixed configuration, set once at construction.
type Config struct {
	ChainID           felt.Felt
	GenerationMode    GenerationMode
	ChargeableAddress felt.Address
	ChargeableClass    felt.ClassHash
}

// ArchiveReader is the subset of core/archive.Archive the pipeline needs to
// resolve historic reads. A separate interface, rather than importing
// core/archive directly, keeps this package's dependency surface to
// exactly what it uses.
type ArchiveReader interface {
	Enabled() bool
	Get(felt.BlockHash) (*state.Snapshot, error)
}

// Pipeline is the Transaction Pipeline component. Exactly one exists per
// running engine; the caller (the devnet engine) is responsible for
// holding its single exclusive lock around every operation.
type Pipeline struct {
	cfg     Config
	store   *state.Store
	blocks  *block.Engine
	archive ArchiveReader
	engine  execengine.Engine
	txs     *TxStore
	imp     Impersonation
	bridge  L2ToL1Recorder
}

// New builds a Pipeline wired to the given State Store, Block Engine,
// archive, and execution engine. imp and bridge may both be nil.
func New(cfg Config, store *state.Store, blocks *block.Engine, arc ArchiveReader, engine execengine.Engine, txs *TxStore, imp Impersonation, bridge L2ToL1Recorder) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, blocks: blocks, archive: arc, engine: engine, txs: txs, imp: imp, bridge: bridge}
}

func (p *Pipeline) isImpersonated(addr felt.Address) bool {
	return p.imp != nil && p.imp.IsImpersonated(addr)
}

// validateResourceBounds implements step 2 of the common submission
// protocol: every resource axis must have max_amount*max_price_per_unit > 0
// unless the sender is impersonated or validation is being skipped
// entirely.
func validateResourceBounds(bounds transaction.ResourceBoundsMap, skipCheck bool) error {
	if skipCheck {
		return nil
	}
	if !bounds.AllPositive() {
		return rpcerr.ErrInsufficientResourcesForValidate
	}
	return nil
}

// validateNonce implements the strict nonce ordering check: a submitted
// transaction's nonce must equal the sender's current nonce in store, unless
// skipCheck (an only_query submission, where effects never land in a
// block and ordering does not apply).
func (p *Pipeline) validateNonce(sender felt.Address, submitted felt.Nonce, skipCheck bool) error {
	if skipCheck {
		return nil
	}
	current := p.store.NonceAt(sender)
	if submitted != current {
		return &rpcerr.InvalidTransactionNonce{
			Sender:   sender.String(),
			Expected: current.Felt().String(),
			Got:      submitted.Felt().String(),
		}
	}
	return nil
}

// resolveFlags implements steps 3-4 of the common submission protocol:
// impersonated senders always skip validation regardless of caller intent,
// and strict_nonce_check is relaxed exactly for query-version (only_query)
// submissions; the block-generation mode plays no part in it.
func (p *Pipeline) resolveFlags(sender felt.Address, requestedValidate bool, onlyQuery bool, chargeFee bool) execengine.Flags {
	validate := requestedValidate
	if p.isImpersonated(sender) {
		validate = false
	}
	return execengine.Flags{
		OnlyQuery:        onlyQuery,
		ChargeFee:        chargeFee,
		Validate:         validate,
		StrictNonceCheck: !onlyQuery,
	}
}

// finishSubmit commits the just-executed transaction's diff, appends it to the
// pre-confirmed block's body, forwards any L2->L1 messages the execution
// produced to the messaging bridge, and, if the node generates blocks on
// every transaction, immediately seals.
func (p *Pipeline) finishSubmit(hash felt.TxHash, fork *state.Store, result execengine.Result) {
	p.store.Adopt(fork)
	blockNumber := p.blocks.PreConfirmed().Header.Number
	p.blocks.AppendTransaction(hash)
	p.txs.Put(hash, result)
	if p.bridge != nil && len(result.L2ToL1) > 0 {
		p.bridge.RecordL2ToL1(blockNumber, hash, result.L2ToL1)
	}
	if p.cfg.GenerationMode == GenerateOnTransaction {
		p.blocks.Seal()
	}
}

// SubmitDeclare runs a declare transaction through the common submission
// protocol.
func (p *Pipeline) SubmitDeclare(tx transaction.DeclareTx, cls class.Class) (felt.TxHash, execengine.Result, error) {
	hash := tx.Hash(p.cfg.ChainID)
	if err := validateResourceBounds(tx.ResourceBounds, p.isImpersonated(tx.SenderAddress)); err != nil {
		return hash, execengine.Result{}, err
	}
	flags := p.resolveFlags(tx.SenderAddress, true, tx.IsQuery(), true)
	if err := p.validateNonce(tx.SenderAddress, tx.Nonce, !flags.StrictNonceCheck); err != nil {
		return hash, execengine.Result{}, err
	}
	fork := p.store.Fork()
	result, err := p.engine.ExecuteDeclare(fork, tx, cls, flags)
	if err != nil {
		return hash, execengine.Result{}, err
	}
	if result.Reverted {
		return hash, result, &rpcerr.TransactionExecutionError{TransactionIndex: 0, ExecutionError: result.RevertError}
	}
	fork.SetNonce(tx.SenderAddress, tx.Nonce.Next())
	p.finishSubmit(hash, fork, result)
	return hash, result, nil
}

// SubmitDeployAccount runs a deploy-account transaction through the common
// submission protocol.
func (p *Pipeline) SubmitDeployAccount(tx transaction.DeployAccountTx) (felt.TxHash, execengine.Result, error) {
	hash := tx.Hash(p.cfg.ChainID)
	if err := validateResourceBounds(tx.ResourceBounds, p.isImpersonated(tx.SenderAddress)); err != nil {
		return hash, execengine.Result{}, err
	}
	flags := p.resolveFlags(tx.SenderAddress, true, tx.IsQuery(), true)
	if err := p.validateNonce(tx.SenderAddress, tx.Nonce, !flags.StrictNonceCheck); err != nil {
		return hash, execengine.Result{}, err
	}
	fork := p.store.Fork()
	result, err := p.engine.ExecuteDeployAccount(fork, tx, flags)
	if err != nil {
		return hash, execengine.Result{}, err
	}
	if result.Reverted {
		return hash, result, &rpcerr.TransactionExecutionError{TransactionIndex: 0, ExecutionError: result.RevertError}
	}
	fork.SetNonce(tx.SenderAddress, tx.Nonce.Next())
	p.finishSubmit(hash, fork, result)
	return hash, result, nil
}

// SubmitInvoke runs an invoke transaction through the common submission
// protocol.
func (p *Pipeline) SubmitInvoke(tx transaction.InvokeTx) (felt.TxHash, execengine.Result, error) {
	hash := tx.Hash(p.cfg.ChainID)
	if err := validateResourceBounds(tx.ResourceBounds, p.isImpersonated(tx.SenderAddress)); err != nil {
		return hash, execengine.Result{}, err
	}
	flags := p.resolveFlags(tx.SenderAddress, true, tx.IsQuery(), true)
	if err := p.validateNonce(tx.SenderAddress, tx.Nonce, !flags.StrictNonceCheck); err != nil {
		return hash, execengine.Result{}, err
	}
	fork := p.store.Fork()
	result, err := p.engine.ExecuteInvoke(fork, tx, flags)
	if err != nil {
		return hash, execengine.Result{}, err
	}
	if result.Reverted {
		return hash, result, &rpcerr.TransactionExecutionError{TransactionIndex: 0, ExecutionError: result.RevertError}
	}
	fork.SetNonce(tx.SenderAddress, tx.Nonce.Next())
	p.finishSubmit(hash, fork, result)
	return hash, result, nil
}

// SubmitL1Handler runs a transaction synthesised by the messaging bridge
// through the pipeline. There is no sender signature to validate. The
// target contract must be deployed (rpcerr.ErrContractNotFound otherwise);
// the entry point's kind is not checked here and is left to the execution
// engine.
func (p *Pipeline) SubmitL1Handler(tx transaction.L1HandlerTx) (felt.TxHash, execengine.Result, error) {
	hash := tx.Hash(p.cfg.ChainID)
	if !p.store.Exists(tx.ContractAddress) {
		return hash, execengine.Result{}, rpcerr.ErrContractNotFound
	}
	fork := p.store.Fork()
	result, err := p.engine.ExecuteL1Handler(fork, tx, execengine.Flags{ChargeFee: false, Validate: false, StrictNonceCheck: false})
	if err != nil {
		return hash, execengine.Result{}, err
	}
	if result.Reverted {
		return hash, result, &rpcerr.TransactionExecutionError{TransactionIndex: 0, ExecutionError: result.RevertError}
	}
	p.finishSubmit(hash, fork, result)
	return hash, result, nil
}

// stateAt resolves the read-only state a view call or fee estimate should
// be evaluated against: the live pre-confirmed Store for a local tag,
// otherwise a Store rebuilt from an archived snapshot, which requires the
// archive to be enabled.
func (p *Pipeline) stateAt(id block.ID) (*state.Store, error) {
	if id.IsLocalTag() {
		return p.store, nil
	}
	b, err := p.blocks.Resolve(id)
	if err != nil {
		return nil, err
	}
	if p.archive == nil || !p.archive.Enabled() {
		return nil, rpcerr.ErrNoStateAtBlock
	}
	snap, err := p.archive.Get(b.Header.Hash)
	if err != nil {
		return nil, err
	}
	return state.FromSnapshot(snap), nil
}

// Call implements a read-only view-function call.
func (p *Pipeline) Call(id block.ID, contract felt.Address, entryPoint felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
	s, err := p.stateAt(id)
	if err != nil {
		return nil, err
	}
	returnData, err := p.engine.Call(s, contract, entryPoint, calldata)
	if err != nil {
		return nil, &rpcerr.ContractError{ExecutionError: err.Error()}
	}
	if len(returnData) > 0 && returnData[0].Cmp(execengine.EntrypointNotFoundSentinel) == 0 {
		return nil, rpcerr.ErrEntrypointNotFound
	}
	return returnData, nil
}

// Mint is the administrative minting shortcut: it constructs and submits
// an invoke transaction from the built-in chargeable account calling the
// fee token's permissioned_mint.
func (p *Pipeline) Mint(token felt.Address, recipient felt.Address, value amount.Amount) (felt.TxHash, execengine.Result, error) {
	nonce := p.store.NonceAt(p.cfg.ChargeableAddress)
	tx := transaction.InvokeTx{
		Common: transaction.Common{
			Kind:          transaction.Invoke,
			Version:       3,
			SenderAddress: p.cfg.ChargeableAddress,
			Nonce:         nonce,
			ResourceBounds: transaction.ResourceBoundsMap{
				L1Gas:     transaction.ResourceBounds{MaxAmount: 1_000_000, MaxPricePerUnit: felt.FromUint64(1)},
				L1DataGas: transaction.ResourceBounds{MaxAmount: 1_000_000, MaxPricePerUnit: felt.FromUint64(1)},
				L2Gas:     transaction.ResourceBounds{MaxAmount: 1_000_000, MaxPricePerUnit: felt.FromUint64(1)},
			},
		},
		Calldata: []felt.Felt{
			token.Felt(),
			execengine.SelectorPermissionedMint,
			recipient.Felt(),
			felt.FromBigInt(value.Low()),
			felt.FromBigInt(value.High()),
		},
	}
	return p.SubmitInvoke(tx)
}

