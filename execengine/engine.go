// Package execengine defines the external-black-box seam: "execute a
// transaction against a mutable state" and "call a view function against a
// read-only state". The Cairo VM / class-hash computation library that
// implements this for real is out of this module's scope; this package
// only owns the interface the Transaction Pipeline programs against, plus
// a small reference implementation ("nativeERC20") sufficient to drive the
// ERC-20 mint/transfer and L1 messaging flows this module exercises,
// modeled as a built-in system contract rather than a general-purpose
// interpreter.
//
// Grounded on carmen.TransactionContext (carmen/carmen.go): the pipeline
// drives this interface the same way Carmen's HeadBlockContext drives a
// TransactionContext — open, mutate state, commit or abort.
package execengine

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
)

//go:generate mockgen -source engine.go -destination engine_mock.go -package execengine

// Flags bundles the per-call execution flags names.
type Flags struct {
	OnlyQuery        bool
	ChargeFee        bool
	Validate         bool
	StrictNonceCheck bool
}

// ResourceUsage is the per-axis consumption reported by one execution.
type ResourceUsage struct {
	L1Gas     uint64
	L1DataGas uint64
	L2Gas     uint64
}

// L2ToL1Message is one message queued by the send_message_to_l1 syscall
// during an invoke's execution.
type L2ToL1Message struct {
	FromAddress felt.Address
	ToAddress   felt.Felt
	Payload     []felt.Felt
}

// Event is one log emitted during execution.
type Event struct {
	FromAddress felt.Address
	Keys        []felt.Felt
	Data        []felt.Felt
}

// Trace is an opaque per-transaction trace forwarded verbatim by the
// pipeline to simulate/traceTransaction callers.
type Trace struct {
	FunctionInvocations []string
	StateDiff            *state.Diff
}

// Result is what one execution call returns.
type Result struct {
	Usage       ResourceUsage
	Prices      transaction.ResourceBoundsMap // unit prices actually charged
	Fee         amount.Amount
	Reverted    bool
	RevertError string
	ReturnData  []felt.Felt
	L2ToL1      []L2ToL1Message
	Events      []Event
	Trace       Trace
}

// ErrEntrypointNotFound is an error value for the ENTRYPOINT_NOT_FOUND
// case. Nothing in this module returns it: NativeERC20.Call reports a
// missing entry point as EntrypointNotFoundSentinel return data, which
// pipeline.Call maps to rpcerr.ErrEntrypointNotFound.
var ErrEntrypointNotFound = entrypointNotFoundError{}

type entrypointNotFoundError struct{}

func (entrypointNotFoundError) Error() string { return "ENTRYPOINT_NOT_FOUND" }

// Engine is the execution-engine seam: execute a transaction against a
// mutable Store, or call a view function against a read-only Store.
type Engine interface {
	ExecuteDeclare(s *state.Store, tx transaction.DeclareTx, cls class.Class, flags Flags) (Result, error)
	ExecuteDeployAccount(s *state.Store, tx transaction.DeployAccountTx, flags Flags) (Result, error)
	ExecuteInvoke(s *state.Store, tx transaction.InvokeTx, flags Flags) (Result, error)
	ExecuteL1Handler(s *state.Store, tx transaction.L1HandlerTx, flags Flags) (Result, error)
	Call(s *state.Store, contract felt.Address, entryPoint felt.Felt, calldata []felt.Felt) ([]felt.Felt, error)
}

// FeeTokenProvider is implemented by execution engines that model built-in
// fee-token contracts, letting the devnet engine deploy those contracts at
// genesis without knowing the concrete Engine implementation otherwise.
type FeeTokenProvider interface {
	FeeTokens() (eth, strk felt.Address)
}
