// Package transaction defines the four transaction kinds, their wire
// shapes, hash computation, and the query-version offset policy.
package transaction

import "github.com/0xSpaceShard/starknet-devnet-go/core/felt"

// Kind distinguishes the four transaction kinds.
type Kind int

const (
	Declare Kind = iota
	DeployAccount
	Invoke
	L1Handler
)

func (k Kind) String() string {
	switch k {
	case Declare:
		return "DECLARE"
	case DeployAccount:
		return "DEPLOY_ACCOUNT"
	case Invoke:
		return "INVOKE"
	case L1Handler:
		return "L1_HANDLER"
	default:
		return "UNKNOWN"
	}
}

// QueryVersionOffset is OR-ed onto the version field whenever a
// transaction is constructed for fee estimation or simulation, so its hash
// can never collide with a real submission's hash.
const QueryVersionOffset uint64 = 1 << 128

// ResourceKind distinguishes the three resource axes a transaction bounds.
type ResourceKind int

const (
	ResourceL1Gas ResourceKind = iota
	ResourceL1DataGas
	ResourceL2Gas
)

// ResourceBounds is one resource axis's bound: a maximum amount and a
// maximum price per unit.
type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit felt.Felt
}

// Cost returns MaxAmount * MaxPricePerUnit.
func (b ResourceBounds) Cost() felt.Felt {
	return felt.FromUint64(b.MaxAmount).Mul(b.MaxPricePerUnit)
}

// ResourceBoundsMap bundles the three resource axes' bounds.
type ResourceBoundsMap struct {
	L1Gas     ResourceBounds
	L1DataGas ResourceBounds
	L2Gas     ResourceBounds
}

// AllPositive reports whether every axis has a nonzero amount*price
// product. An axis with a zero bound makes it false.
func (m ResourceBoundsMap) AllPositive() bool {
	return !m.L1Gas.Cost().IsZero() && !m.L1DataGas.Cost().IsZero() && !m.L2Gas.Cost().IsZero()
}

// AllZero reports whether every resource bound is entirely unset.
func (m ResourceBoundsMap) AllZero() bool {
	return m.L1Gas.MaxAmount == 0 && m.L1DataGas.MaxAmount == 0 && m.L2Gas.MaxAmount == 0
}

// DataAvailabilityMode selects which layer a transaction's fee/nonce data
// is published to.
type DataAvailabilityMode int

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

// Common is the set of fields shared across declare/deploy-account/invoke
// (v3) transactions.
type Common struct {
	Kind             Kind
	Version          uint64
	SenderAddress    felt.Address
	Nonce            felt.Nonce
	Signature        []felt.Felt
	ResourceBounds   ResourceBoundsMap
	Tip              uint64
	PaymasterData    []felt.Felt
	NonceDAMode      DataAvailabilityMode
	FeeDAMode        DataAvailabilityMode
	AccountDeploymentData []felt.Felt // deploy-account/invoke only, where applicable
}

// IsQuery reports whether the query-version bit is set.
func (c Common) IsQuery() bool {
	return c.Version&QueryVersionOffset != 0
}

// WithQueryBit returns a copy of version with the query offset applied.
func WithQueryBit(version uint64, query bool) uint64 {
	if query {
		return version | QueryVersionOffset
	}
	return version &^ QueryVersionOffset
}

// DeclareTx is a declare (v3) transaction: registers a new class.
type DeclareTx struct {
	Common
	ClassHash         felt.ClassHash
	CompiledClassHash felt.ClassHash
}

// DeployAccountTx is a deploy-account (v3) transaction: deploys and
// initializes a new account contract.
type DeployAccountTx struct {
	Common
	ClassHash          felt.ClassHash
	ContractAddressSalt felt.Felt
	ConstructorCalldata []felt.Felt
}

// InvokeTx is an invoke (v3) transaction: calls into a deployed contract.
type InvokeTx struct {
	Common
	Calldata []felt.Felt
}

// L1HandlerTx is created only by the messaging bridge: no sender signature, validated by entry-point
// existence only, nonces tracked by a separate l1_nonce counter.
type L1HandlerTx struct {
	Kind            Kind
	Version         uint64
	ContractAddress felt.Address
	EntryPoint      felt.Felt
	Calldata        []felt.Felt
	Nonce           uint64 // from the L1 messaging simulator's l1_nonce counter
	PaidFeeOnL1     felt.Felt
}

// Hash computes a deterministic transaction hash from the tx's fields plus
// chain id and version. The real network's hash is a Poseidon-based
// construction over a precise field ordering owned by the Cairo VM black
// box; this hashes the same logical fields with felt.PedersenHash,
// preserving the one externally-checkable property that matters: distinct
// (fields, chainID, version) tuples hash differently, and the
// query-version bit changes the hash.
func (t DeclareTx) Hash(chainID felt.Felt) felt.TxHash {
	return hashCommon(t.Kind, t.Common, chainID, t.ClassHash.Felt(), t.CompiledClassHash.Felt())
}

func (t DeployAccountTx) Hash(chainID felt.Felt) felt.TxHash {
	elems := []felt.Felt{t.ClassHash.Felt(), t.ContractAddressSalt}
	elems = append(elems, t.ConstructorCalldata...)
	return hashCommon(t.Kind, t.Common, chainID, elems...)
}

func (t InvokeTx) Hash(chainID felt.Felt) felt.TxHash {
	return hashCommon(t.Kind, t.Common, chainID, t.Calldata...)
}

func (t L1HandlerTx) Hash(chainID felt.Felt) felt.TxHash {
	elems := []felt.Felt{
		felt.FromUint64(uint64(t.Kind)),
		felt.FromUint64(t.Version),
		t.ContractAddress.Felt(),
		t.EntryPoint,
		felt.FromUint64(t.Nonce),
		chainID,
	}
	elems = append(elems, t.Calldata...)
	return felt.TxHashFromFelt(felt.PedersenHash(elems...))
}

func hashCommon(kind Kind, c Common, chainID felt.Felt, extra ...felt.Felt) felt.TxHash {
	elems := []felt.Felt{
		felt.FromUint64(uint64(kind)),
		felt.FromUint64(c.Version),
		c.SenderAddress.Felt(),
		c.Nonce.Felt(),
		chainID,
		c.ResourceBounds.L1Gas.Cost(),
		c.ResourceBounds.L1DataGas.Cost(),
		c.ResourceBounds.L2Gas.Cost(),
		felt.FromUint64(c.Tip),
	}
	elems = append(elems, extra...)
	return felt.TxHashFromFelt(felt.PedersenHash(elems...))
}
