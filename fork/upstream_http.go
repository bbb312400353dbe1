package fork

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
)

// httpUpstreamClient is the UpstreamClient implementation documented in
// upstream.go as a standard-library exception: a bare JSON-RPC 2.0 client
// speaking the Starknet node dialect over net/http, since nothing in the
// dependency pack offers one.
type httpUpstreamClient struct {
	url    string
	client *http.Client
	nextID int
}

// newHTTPUpstreamClient returns an UpstreamClient that relays reads to a
// real Starknet JSON-RPC endpoint at url.
func newHTTPUpstreamClient(url string) UpstreamClient {
	return &httpUpstreamClient{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *httpUpstreamClient) call(method string, params any, out any) error {
	c.nextID++
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("fork: encoding %s request: %w", method, err)
	}
	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fork: calling upstream %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("fork: decoding upstream %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("fork: upstream %s: %s (code %d)", method, envelope.Error.Message, envelope.Error.Code)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

func blockIDParam(number uint64) map[string]uint64 {
	return map[string]uint64{"block_number": number}
}

func (c *httpUpstreamClient) NonceAt(addr felt.Address, blockNumber uint64) (felt.Nonce, error) {
	var hex string
	params := []any{blockIDParam(blockNumber), addr.Felt().String()}
	if err := c.call("starknet_getNonce", params, &hex); err != nil {
		return felt.Nonce{}, err
	}
	f, err := felt.FromHex(hex)
	if err != nil {
		return felt.Nonce{}, err
	}
	return felt.Nonce(f), nil
}

func (c *httpUpstreamClient) ClassHashAt(addr felt.Address, blockNumber uint64) (felt.ClassHash, error) {
	var hex string
	params := []any{blockIDParam(blockNumber), addr.Felt().String()}
	if err := c.call("starknet_getClassHashAt", params, &hex); err != nil {
		return felt.ClassHash{}, err
	}
	f, err := felt.FromHex(hex)
	if err != nil {
		return felt.ClassHash{}, err
	}
	return felt.ClassHash(f), nil
}

// classWire is the subset of a getClass response this module cares about:
// enough to reconstruct an executable class.Class, skipping the parts of
// the real wire format (ABI entries as structured JSON, Sierra's full
// entry-point-by-builtin breakdown) that the native execution engine in
// this module never reads.
type classWire struct {
	SierraProgram []string `json:"sierra_program"`
	EntryPointsByType struct {
		External    []struct{ Selector string } `json:"EXTERNAL"`
		L1Handler   []struct{ Selector string } `json:"L1_HANDLER"`
		Constructor []struct{ Selector string } `json:"CONSTRUCTOR"`
	} `json:"entry_points_by_type"`
}

func (c *httpUpstreamClient) ClassByHash(hash felt.ClassHash, blockNumber uint64) (class.Class, error) {
	var wire classWire
	params := []any{blockIDParam(blockNumber), felt.Felt(hash).String()}
	if err := c.call("starknet_getClass", params, &wire); err != nil {
		return class.Class{}, err
	}

	table := class.EntryPointTable{}
	for i, ep := range wire.EntryPointsByType.External {
		sel, err := felt.FromHex(ep.Selector)
		if err != nil {
			return class.Class{}, fmt.Errorf("fork: external entry point %d: %w", i, err)
		}
		table.External = append(table.External, class.EntryPoint{Selector: sel, Offset: uint64(i)})
	}
	for i, ep := range wire.EntryPointsByType.L1Handler {
		sel, err := felt.FromHex(ep.Selector)
		if err != nil {
			return class.Class{}, fmt.Errorf("fork: l1-handler entry point %d: %w", i, err)
		}
		table.L1Handler = append(table.L1Handler, class.EntryPoint{Selector: sel, Offset: uint64(i)})
	}
	for i, ep := range wire.EntryPointsByType.Constructor {
		sel, err := felt.FromHex(ep.Selector)
		if err != nil {
			return class.Class{}, fmt.Errorf("fork: constructor entry point %d: %w", i, err)
		}
		table.Constructor = append(table.Constructor, class.EntryPoint{Selector: sel, Offset: uint64(i)})
	}

	program := make([]byte, 0, len(wire.SierraProgram)*8)
	for _, word := range wire.SierraProgram {
		f, err := felt.FromHex(word)
		if err != nil {
			return class.Class{}, fmt.Errorf("fork: sierra program word: %w", err)
		}
		b := f.Bytes()
		program = append(program, b[:]...)
	}
	return class.Class{Kind: class.Modern, SierraProgram: program, EntryPoints: table}, nil
}

func (c *httpUpstreamClient) StorageAt(addr felt.Address, key felt.Key, blockNumber uint64) (felt.Felt, error) {
	var hex string
	params := []any{addr.Felt().String(), felt.Felt(key).String(), blockIDParam(blockNumber)}
	if err := c.call("starknet_getStorageAt", params, &hex); err != nil {
		return felt.Felt{}, err
	}
	return felt.FromHex(hex)
}

type blockWire struct {
	BlockHash        string   `json:"block_hash"`
	ParentHash       string   `json:"parent_hash"`
	BlockNumber      uint64   `json:"block_number"`
	Timestamp        uint64   `json:"timestamp"`
	SequencerAddress string   `json:"sequencer_address"`
	Transactions     []string `json:"transactions"`
}

func (w blockWire) toBlock() (*block.Block, error) {
	hash, err := felt.FromHex(w.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("fork: block hash: %w", err)
	}
	parent, err := felt.FromHex(w.ParentHash)
	if err != nil {
		return nil, fmt.Errorf("fork: parent hash: %w", err)
	}
	seq, err := felt.FromHex(w.SequencerAddress)
	if err != nil {
		return nil, fmt.Errorf("fork: sequencer address: %w", err)
	}
	hashes := make([]felt.TxHash, 0, len(w.Transactions))
	for _, h := range w.Transactions {
		f, err := felt.FromHex(h)
		if err != nil {
			return nil, fmt.Errorf("fork: transaction hash: %w", err)
		}
		hashes = append(hashes, felt.TxHash(f))
	}
	return &block.Block{
		Header: block.Header{
			Number:           w.BlockNumber,
			Hash:             felt.BlockHash(hash),
			ParentHash:       felt.BlockHash(parent),
			Timestamp:        w.Timestamp,
			SequencerAddress: felt.AddressFromFelt(seq),
		},
		TxHashes: hashes,
		Status:   block.AcceptedOnL1,
	}, nil
}

func (c *httpUpstreamClient) BlockByNumber(number uint64) (*block.Block, error) {
	var wire blockWire
	if err := c.call("starknet_getBlockWithTxHashes", []any{blockIDParam(number)}, &wire); err != nil {
		return nil, err
	}
	return wire.toBlock()
}

func (c *httpUpstreamClient) BlockByHash(hash felt.BlockHash) (*block.Block, error) {
	var wire blockWire
	params := []any{map[string]string{"block_hash": felt.Felt(hash).String()}}
	if err := c.call("starknet_getBlockWithTxHashes", params, &wire); err != nil {
		return nil, err
	}
	return wire.toBlock()
}

func (c *httpUpstreamClient) TransactionByHash(hash felt.TxHash) (any, error) {
	var out json.RawMessage
	err := c.call("starknet_getTransactionByHash", []any{felt.Felt(hash).String()}, &out)
	return out, err
}

func (c *httpUpstreamClient) TransactionStatus(hash felt.TxHash) (string, error) {
	var status struct {
		FinalityStatus string `json:"finality_status"`
	}
	if err := c.call("starknet_getTransactionStatus", []any{felt.Felt(hash).String()}, &status); err != nil {
		return "", err
	}
	return status.FinalityStatus, nil
}

func (c *httpUpstreamClient) TransactionReceipt(hash felt.TxHash) (any, error) {
	var out json.RawMessage
	err := c.call("starknet_getTransactionReceipt", []any{felt.Felt(hash).String()}, &out)
	return out, err
}

func (c *httpUpstreamClient) TraceTransaction(hash felt.TxHash) (any, error) {
	var out json.RawMessage
	err := c.call("starknet_traceTransaction", []any{felt.Felt(hash).String()}, &out)
	return out, err
}

type eventWire struct {
	FromAddress     string   `json:"from_address"`
	Keys            []string `json:"keys"`
	Data            []string `json:"data"`
	BlockHash       string   `json:"block_hash"`
	BlockNumber     uint64   `json:"block_number"`
	TransactionHash string   `json:"transaction_hash"`
}

func (c *httpUpstreamClient) GetEvents(req EventFilter, continuationToken string) (EventPage, error) {
	filter := map[string]any{
		"from_block":   blockIDParam(req.FromBlock),
		"to_block":     blockIDParam(req.ToBlock),
		"chunk_size":   req.ChunkSize,
		"continuation_token": continuationToken,
	}
	if req.Address != nil {
		filter["address"] = req.Address.Felt().String()
	}
	if len(req.Keys) > 0 {
		keys := make([][]string, len(req.Keys))
		for i, group := range req.Keys {
			row := make([]string, len(group))
			for j, k := range group {
				row[j] = k.String()
			}
			keys[i] = row
		}
		filter["keys"] = keys
	}

	var result struct {
		Events            []eventWire `json:"events"`
		ContinuationToken string      `json:"continuation_token"`
	}
	if err := c.call("starknet_getEvents", []any{map[string]any{"filter": filter}}, &result); err != nil {
		return EventPage{}, err
	}

	events := make([]Event, 0, len(result.Events))
	for i, ew := range result.Events {
		from, err := felt.FromHex(ew.FromAddress)
		if err != nil {
			return EventPage{}, fmt.Errorf("fork: event %d from_address: %w", i, err)
		}
		blockHash, err := felt.FromHex(ew.BlockHash)
		if err != nil {
			return EventPage{}, fmt.Errorf("fork: event %d block_hash: %w", i, err)
		}
		txHash, err := felt.FromHex(ew.TransactionHash)
		if err != nil {
			return EventPage{}, fmt.Errorf("fork: event %d transaction_hash: %w", i, err)
		}
		keys := make([]felt.Felt, len(ew.Keys))
		for j, k := range ew.Keys {
			kf, err := felt.FromHex(k)
			if err != nil {
				return EventPage{}, fmt.Errorf("fork: event %d key %d: %w", i, j, err)
			}
			keys[j] = kf
		}
		data := make([]felt.Felt, len(ew.Data))
		for j, d := range ew.Data {
			df, err := felt.FromHex(d)
			if err != nil {
				return EventPage{}, fmt.Errorf("fork: event %d data %d: %w", i, j, err)
			}
			data[j] = df
		}
		events = append(events, Event{
			FromAddress:      felt.AddressFromFelt(from),
			Keys:             keys,
			Data:             data,
			BlockNumber:      ew.BlockNumber,
			BlockHash:        felt.BlockHash(blockHash),
			TransactionHash:  felt.TxHash(txHash),
			TransactionIndex: i,
			EventIndex:       0,
		})
	}
	return EventPage{Events: events, ContinuationToken: result.ContinuationToken}, nil
}
