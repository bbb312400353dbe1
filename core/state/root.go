package state

import (
	"sort"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// Root computes a deterministic content hash over every account and class
// currently committed, used as the state_root element of a sealed block's
// hash. Like class.Class.Hash and felt.PedersenHash,
// this is not the real network's Patricia-Merkle-over-Pedersen state
// commitment (building that requires the same curve-table machinery the
// Cairo VM black box owns) — it is a deterministic, order-independent
// summary sufficient for this module's contract: reproducible across
// dump/load and sensitive to every committed change.
func (s *Store) Root() felt.Felt {
	addrs := make([]felt.Address, 0, len(s.accounts))
	for addr, acc := range s.accounts {
		if acc.Deployed() {
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Felt().Cmp(addrs[j].Felt()) < 0 })

	elements := make([]felt.Felt, 0, len(addrs)*3)
	for _, addr := range addrs {
		acc := s.accounts[addr]
		elements = append(elements, addr.Felt(), acc.ClassHash.Felt(), acc.Nonce.Felt())
		keys := make([]felt.Key, 0, len(acc.Storage))
		for k := range acc.Storage {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Felt().Cmp(keys[j].Felt()) < 0 })
		for _, k := range keys {
			elements = append(elements, k.Felt(), acc.Storage[k])
		}
	}

	hashes := make([]felt.ClassHash, 0, len(s.classes))
	for h := range s.classes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Felt().Cmp(hashes[j].Felt()) < 0 })
	for _, h := range hashes {
		elements = append(elements, h.Felt())
	}

	return felt.PedersenHash(elements...)
}
