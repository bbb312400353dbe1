package fork

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/pipeline"
	"github.com/0xSpaceShard/starknet-devnet-go/rpcerr"
)

// Config fixes an Overlay's pin point for its lifetime; reconfiguring
// requires a fresh Overlay.
type Config struct {
	PinnedBlock uint64
}

// Overlay is the Forking Overlay: it answers every read the pipeline and
// block engine need either from local state or, on a local miss for a
// non-local-tag block id, from the upstream client.
type Overlay struct {
	cfg      Config
	store    *state.Store
	blocks   *block.Engine
	txs      *pipeline.TxStore
	upstream UpstreamClient // nil disables forking entirely

	impersonated    map[felt.Address]bool
	autoImpersonate bool
}

// New returns an Overlay. upstream may be nil, in which case every read is
// served locally and Config.PinnedBlock is ignored (non-forking mode).
func New(cfg Config, store *state.Store, blocks *block.Engine, txs *pipeline.TxStore, upstream UpstreamClient) *Overlay {
	return &Overlay{cfg: cfg, store: store, blocks: blocks, txs: txs, upstream: upstream, impersonated: map[felt.Address]bool{}}
}

func (o *Overlay) forking() bool { return o.upstream != nil }

// Impersonate marks addr as impersonated: its transactions skip validation
// regardless of whether it is locally deployed. Fails if addr is already
// locally deployed
func (o *Overlay) Impersonate(addr felt.Address) error {
	if o.store.Exists(addr) {
		return &rpcerr.UnsupportedAction{Msg: "cannot impersonate a locally deployed account"}
	}
	o.impersonated[addr] = true
	return nil
}

// StopImpersonating clears addr's impersonation flag.
func (o *Overlay) StopImpersonating(addr felt.Address) {
	delete(o.impersonated, addr)
}

// SetAutoImpersonate toggles auto-impersonation: every sender not locally
// deployed is treated as impersonated.
func (o *Overlay) SetAutoImpersonate(on bool) { o.autoImpersonate = on }

// IsImpersonated implements pipeline.Impersonation.
func (o *Overlay) IsImpersonated(addr felt.Address) bool {
	if o.impersonated[addr] {
		return true
	}
	return o.autoImpersonate && !o.store.Exists(addr)
}

// routeBlockNumber implements the block-number routing rule: numbers at
// or below the pin are upstream's, numbers above are local.
func (o *Overlay) routeBlockNumber(number uint64) bool {
	return o.forking() && number <= o.cfg.PinnedBlock
}

// NonceAt reads addr's nonce, falling through to upstream at blockNumber
// when addr is not locally deployed and the block id is not a local tag.
func (o *Overlay) NonceAt(addr felt.Address, id block.ID) (felt.Nonce, error) {
	if !o.shouldFallThrough(addr, id) {
		return o.store.NonceAt(addr), nil
	}
	return o.upstream.NonceAt(addr, o.cfg.PinnedBlock)
}

// ClassHashAt reads addr's deployed class hash, with the same fall-through
// rule as NonceAt.
func (o *Overlay) ClassHashAt(addr felt.Address, id block.ID) (felt.ClassHash, error) {
	if !o.shouldFallThrough(addr, id) {
		return o.store.ClassHashAt(addr), nil
	}
	return o.upstream.ClassHashAt(addr, o.cfg.PinnedBlock)
}

// StorageAt reads (addr, key), falling through to upstream on a local miss.
func (o *Overlay) StorageAt(addr felt.Address, key felt.Key, id block.ID) (felt.Felt, error) {
	value, err := o.store.StorageAt(addr, key)
	if err == nil {
		return value, nil
	}
	if err != state.ErrContractNotFound || !o.forking() || id.IsLocalTag() {
		return felt.Felt{}, err
	}
	return o.upstream.StorageAt(addr, key, o.cfg.PinnedBlock)
}

// ClassByHash resolves a class hash, falling through to upstream on a
// local miss.
func (o *Overlay) ClassByHash(hash felt.ClassHash, id block.ID) (class.Class, error) {
	c, err := o.store.ClassByHash(hash)
	if err == nil {
		return c, nil
	}
	if err != state.ErrClassHashNotFound || !o.forking() || id.IsLocalTag() {
		return class.Class{}, err
	}
	return o.upstream.ClassByHash(hash, o.cfg.PinnedBlock)
}

func (o *Overlay) shouldFallThrough(addr felt.Address, id block.ID) bool {
	return !o.store.Exists(addr) && o.forking() && !id.IsLocalTag()
}

// ResolveBlock fetches a block by id, routing a by-number request to
// upstream or local per the pin and falling through a by-hash miss to
// upstream.
func (o *Overlay) ResolveBlock(id block.ID) (*block.Block, error) {
	if id.Kind == block.IDByNumber && o.routeBlockNumber(id.Number) {
		return o.upstream.BlockByNumber(id.Number)
	}
	b, err := o.blocks.Resolve(id)
	if err == nil {
		return b, nil
	}
	if err != block.ErrNoBlock || !o.forking() || id.IsLocalTag() {
		return nil, err
	}
	if id.Kind == block.IDByHash {
		return o.upstream.BlockByHash(id.Hash)
	}
	return nil, err
}
