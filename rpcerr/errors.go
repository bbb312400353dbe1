// Package rpcerr defines the stable, structured error kinds returned by
// the core components, the kind a JSON-RPC transport (out of this
// module's scope) would map to JSON-RPC error codes.
//
// Grounded on common.ConstError (github.com/Fantom-foundation/Carmen/go
// /common/const_error.go): sentinel errors for the matchable entity-lookup
// failures, plus typed structs for the kinds that carry payload fields a
// JSON-RPC error object needs (transaction index, execution error text).
package rpcerr

import "fmt"

// ConstError is an immutable string error constant, matching
// common.ConstError's shape.
type ConstError string

func (e ConstError) Error() string { return string(e) }

const (
	ErrBlockNotFound          ConstError = "block not found"
	ErrTransactionNotFound    ConstError = "transaction not found"
	ErrContractNotFound       ConstError = "contract not found"
	ErrClassHashNotFound      ConstError = "class hash not found"
	ErrNoStateAtBlock         ConstError = "state archive is off and the request is not for latest/pre_confirmed"
	ErrInvalidContinuationToken ConstError = "invalid continuation token"
	ErrInvalidTransactionIndexInBlock ConstError = "invalid transaction index in block"
	ErrInsufficientResourcesForValidate ConstError = "the transaction's resource bounds are insufficient for validation"
	ErrEntrypointNotFound     ConstError = "requested entry point not found"
)

// ContractError wraps a failed view call or message-fee estimation.
type ContractError struct {
	ExecutionError string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract error: %s", e.ExecutionError)
}

// TransactionExecutionError reports the first failing transaction in a
// declare/deploy/invoke/estimate/simulate batch.
type TransactionExecutionError struct {
	TransactionIndex int
	ExecutionError   string
}

func (e *TransactionExecutionError) Error() string {
	return fmt.Sprintf("transaction execution error at index %d: %s", e.TransactionIndex, e.ExecutionError)
}

// InvalidTransactionNonce reports a submitted transaction whose nonce does
// not match the sender's current nonce under strict ordering.
type InvalidTransactionNonce struct {
	Sender   string
	Expected string
	Got      string
}

func (e *InvalidTransactionNonce) Error() string {
	return fmt.Sprintf("invalid transaction nonce for %s: expected %s, got %s", e.Sender, e.Expected, e.Got)
}

// UnsupportedAction reports a pre-condition violation on an admin RPC.
type UnsupportedAction struct {
	Msg string
}

func (e *UnsupportedAction) Error() string {
	return fmt.Sprintf("unsupported action: %s", e.Msg)
}

// UnexpectedInternalError reports an invariant violation.
type UnexpectedInternalError struct {
	Msg string
}

func (e *UnexpectedInternalError) Error() string {
	return fmt.Sprintf("unexpected internal error: %s", e.Msg)
}
