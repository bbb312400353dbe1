package rpcerr

import (
	"errors"
	"testing"
)

func TestConstErrorIsComparable(t *testing.T) {
	var err error = ErrBlockNotFound
	if !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("errors.Is failed on a ConstError sentinel")
	}
	if errors.Is(err, ErrContractNotFound) {
		t.Fatalf("two distinct ConstError sentinels compared equal")
	}
}

func TestTransactionExecutionErrorMessage(t *testing.T) {
	err := &TransactionExecutionError{TransactionIndex: 2, ExecutionError: "boom"}
	want := "transaction execution error at index 2: boom"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestUnsupportedActionMessage(t *testing.T) {
	err := &UnsupportedAction{Msg: "cannot abort genesis"}
	if got := err.Error(); got != "unsupported action: cannot abort genesis" {
		t.Fatalf("Error() = %q", got)
	}
}
