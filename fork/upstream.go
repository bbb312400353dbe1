// Package fork implements the Forking Overlay: transparent
// read-through to an upstream Starknet node pinned at a fixed block,
// account impersonation, and the continuation-token bookkeeping that lets
// an event query span the upstream/local boundary.
//
// Grounded on carmen's QueryContext/HistoricBlockContext split
// (carmen/query.go, carmen/block.go): this package plays the same "route a
// read to the right backing store" role, except the two backing stores are
// a local core/state.Store and a remote JSON-RPC endpoint rather than two
// local storage engines.
package fork

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// UpstreamClient is everything the overlay needs from the node it forks
// from. No example repo in the pack ships a Starknet JSON-RPC client (the
// pack's only JSON-RPC-adjacent dependency, go-ethereum's rpc package,
// speaks Ethereum's dialect, not Starknet's), so this seam's concrete
// implementation (upstream_http.go) is a documented standard-library
// exception: net/http plus encoding/json, the same pairing carmen's
// own transport-agnostic design keeps behind interfaces everywhere else.
type UpstreamClient interface {
	NonceAt(addr felt.Address, blockNumber uint64) (felt.Nonce, error)
	ClassHashAt(addr felt.Address, blockNumber uint64) (felt.ClassHash, error)
	ClassByHash(hash felt.ClassHash, blockNumber uint64) (class.Class, error)
	StorageAt(addr felt.Address, key felt.Key, blockNumber uint64) (felt.Felt, error)
	BlockByNumber(number uint64) (*block.Block, error)
	BlockByHash(hash felt.BlockHash) (*block.Block, error)
	TransactionByHash(hash felt.TxHash) (any, error)
	TransactionStatus(hash felt.TxHash) (string, error)
	TransactionReceipt(hash felt.TxHash) (any, error)
	TraceTransaction(hash felt.TxHash) (any, error)
	GetEvents(req EventFilter, continuationToken string) (EventPage, error)
}

// EventFilter mirrors starknet_getEvents' filter object minus pagination
// fields, which Overlay.GetEvents manages itself across the fork boundary.
type EventFilter struct {
	FromBlock uint64
	ToBlock   uint64
	Address   *felt.Address
	Keys      [][]felt.Felt
	ChunkSize int
}

// Event is one emitted log, block-located for ordering.
type Event struct {
	FromAddress      felt.Address
	Keys             []felt.Felt
	Data             []felt.Felt
	BlockNumber      uint64
	BlockHash        felt.BlockHash
	TransactionHash  felt.TxHash
	TransactionIndex int
	EventIndex       int
}

// EventPage is one page of a (possibly multi-page) event query.
type EventPage struct {
	Events            []Event
	ContinuationToken string // empty when exhausted
}
