package fork

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

const upstreamTokenPrefix = "devnet-origin-"

// GetEvents implements event-query fork-boundary splitting.
func (o *Overlay) GetEvents(query EventFilter, token string) (EventPage, error) {
	pinned := o.cfg.PinnedBlock
	upstreamFrom, upstreamTo := query.FromBlock, min64(query.ToBlock, pinned)
	hasUpstreamSegment := o.forking() && upstreamFrom <= upstreamTo

	fromUpstreamToken, isUpstreamToken := strings.CutPrefix(token, upstreamTokenPrefix)

	if isUpstreamToken || (token == "" && hasUpstreamSegment) {
		page, err := o.upstream.GetEvents(EventFilter{
			FromBlock: upstreamFrom,
			ToBlock:   upstreamTo,
			Address:   query.Address,
			Keys:      query.Keys,
			ChunkSize: query.ChunkSize,
		}, fromUpstreamToken)
		if err != nil {
			return EventPage{}, err
		}
		if page.ContinuationToken != "" {
			page.ContinuationToken = upstreamTokenPrefix + page.ContinuationToken
			return page, nil
		}
		// Upstream exhausted: fall through to local enumeration starting at
		// page zero, exactly as step 3 describes.
		return o.localEvents(query, pinned, 0)
	}

	pageIndex := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return EventPage{}, fmt.Errorf("fork: invalid local continuation token %q: %w", token, err)
		}
		pageIndex = n
	}
	return o.localEvents(query, pinned, pageIndex)
}

// localEvents enumerates the sealed+pre-confirmed block range
// [max(from, pinned+1), to] by scanning block traces kept by the tx store,
// returning one chunk-sized page at pageIndex.
func (o *Overlay) localEvents(query EventFilter, pinned uint64, pageIndex int) (EventPage, error) {
	from := query.FromBlock
	if o.forking() && pinned+1 > from {
		from = pinned + 1
	}
	to := query.ToBlock

	all := o.collectLocalEvents(from, to, query.Address, query.Keys)
	chunk := query.ChunkSize
	if chunk <= 0 {
		chunk = len(all)
	}
	start := pageIndex * chunk
	if start >= len(all) {
		return EventPage{Events: nil, ContinuationToken: ""}, nil
	}
	end := start + chunk
	if end > len(all) {
		end = len(all)
	}
	next := ""
	if end < len(all) {
		next = strconv.Itoa(pageIndex + 1)
	}
	return EventPage{Events: all[start:end], ContinuationToken: next}, nil
}

func (o *Overlay) collectLocalEvents(from, to uint64, address *felt.Address, keys [][]felt.Felt) []Event {
	var out []Event
	for number := from; number <= to; number++ {
		b, err := o.blocks.ByNumber(number)
		if err != nil {
			continue
		}
		for txIndex, hash := range b.TxHashes {
			rec, ok := o.txs.Get(hash)
			if !ok {
				continue
			}
			for eventIndex, e := range rec.Result.Events {
				if address != nil && e.FromAddress != *address {
					continue
				}
				if !matchesKeys(e.Keys, keys) {
					continue
				}
				out = append(out, Event{
					FromAddress:      e.FromAddress,
					Keys:             e.Keys,
					Data:             e.Data,
					BlockNumber:      number,
					BlockHash:        b.Header.Hash,
					TransactionHash:  hash,
					TransactionIndex: txIndex,
					EventIndex:       eventIndex,
				})
			}
		}
	}
	// Already produced in (block_number, transaction_index, event_index)
	// order by construction; sort defensively in case a future caller feeds
	// an unordered block range.
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		if out[i].TransactionIndex != out[j].TransactionIndex {
			return out[i].TransactionIndex < out[j].TransactionIndex
		}
		return out[i].EventIndex < out[j].EventIndex
	})
	return out
}

// matchesKeys implements the standard per-position OR, across-position AND
// key filter: keys[i] (if non-empty) must contain event key i.
func matchesKeys(eventKeys []felt.Felt, filter [][]felt.Felt) bool {
	for i, options := range filter {
		if len(options) == 0 {
			continue
		}
		if i >= len(eventKeys) {
			return false
		}
		found := false
		for _, want := range options {
			if eventKeys[i].Cmp(want) == 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
