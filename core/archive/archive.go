// Package archive implements the state-archive policy: retaining one immutable Snapshot per sealed block, keyed by block
// hash, so historical reads and call-at-block-id can be served.
//
// Grounded on github.com/Fantom-foundation/Carmen/go/backend/archive.Archive
// (archive.go), adapted from per-block EVM-account history to per-block
// felt.BlockHash -> *state.Snapshot retention, since this module's state is
// small enough to keep whole snapshots rather than per-field history logs.
package archive

import (
	"errors"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
)

// Policy selects how much history the archive retains.
type Policy int

const (
	// None keeps no history: only the live state is ever queryable.
	None Policy = iota
	// Full keeps one snapshot per sealed block.
	Full
)

// ErrNoArchive is returned by Get when Policy is None; Put is then a no-op.
var ErrNoArchive = errors.New("state archive is disabled")

// ErrSnapshotNotFound is returned by Get when the archive is enabled but
// holds no snapshot for the given block hash (the block itself does not
// exist, as opposed to existing but being unarchived).
var ErrSnapshotNotFound = errors.New("no archived snapshot for block")

// Archive retains a history of immutable state snapshots, one per sealed
// block.
type Archive struct {
	policy    Policy
	snapshots map[felt.BlockHash]*state.Snapshot
}

// New returns an archive configured with the given policy.
func New(policy Policy) *Archive {
	return &Archive{policy: policy, snapshots: map[felt.BlockHash]*state.Snapshot{}}
}

// Enabled reports whether this archive retains history (Policy == Full).
func (a *Archive) Enabled() bool {
	return a.policy == Full
}

// Put records the post-commit snapshot for a newly sealed block. A no-op
// when the archive is disabled.
func (a *Archive) Put(hash felt.BlockHash, snap *state.Snapshot) {
	if !a.Enabled() {
		return
	}
	a.snapshots[hash] = snap
}

// Get returns the snapshot archived under a block hash.
func (a *Archive) Get(hash felt.BlockHash) (*state.Snapshot, error) {
	if !a.Enabled() {
		return nil, ErrNoArchive
	}
	snap, ok := a.snapshots[hash]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// Forget removes a block's archived snapshot, used when a block is
// aborted.
func (a *Archive) Forget(hash felt.BlockHash) {
	delete(a.snapshots, hash)
}
