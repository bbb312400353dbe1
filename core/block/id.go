package block

import "github.com/0xSpaceShard/starknet-devnet-go/core/felt"

// IDKind distinguishes the four ways a block can be identified.
type IDKind int

const (
	IDByHash IDKind = iota
	IDByNumber
	IDLatest
	IDPreConfirmed
)

// ID is a block identifier: a 32-byte hash, a block number, or one of the
// tags "latest"/"pre_confirmed".
type ID struct {
	Kind   IDKind
	Hash   felt.BlockHash
	Number uint64
}

func ByHash(h felt.BlockHash) ID   { return ID{Kind: IDByHash, Hash: h} }
func ByNumber(n uint64) ID         { return ID{Kind: IDByNumber, Number: n} }
func Latest() ID                   { return ID{Kind: IDLatest} }
func PreConfirmedTag() ID          { return ID{Kind: IDPreConfirmed} }

// IsLocalTag reports whether id is one of the two tags that always resolve
// against local state rather than an upstream fork.
func (id ID) IsLocalTag() bool {
	return id.Kind == IDLatest || id.Kind == IDPreConfirmed
}
