// Package class models the Starknet contract-class artifact: a tagged
// variant of a legacy (Cairo 0) class and a modern (Sierra) class, each
// identified by a deterministic hash of its contents.
package class

import "github.com/0xSpaceShard/starknet-devnet-go/core/felt"

// Kind distinguishes the two class variants.
type Kind int

const (
	// Legacy is a Cairo 0 class: raw program bytecode + ABI + entry points.
	Legacy Kind = iota
	// Modern is a Sierra class: intermediate-representation program plus a
	// compiled CASM companion + entry points.
	Modern
)

// EntryPointKind distinguishes the three places an entry point can be
// looked up from.
type EntryPointKind int

const (
	EntryPointExternal EntryPointKind = iota
	EntryPointL1Handler
	EntryPointConstructor
)

// EntryPoint maps a selector to an offset into the class program.
type EntryPoint struct {
	Selector felt.Felt
	Offset   uint64
}

// EntryPointTable groups entry points by kind.
type EntryPointTable struct {
	External    []EntryPoint
	L1Handler   []EntryPoint
	Constructor []EntryPoint
}

// Lookup finds an entry point by kind and selector.
func (t EntryPointTable) Lookup(kind EntryPointKind, selector felt.Felt) (EntryPoint, bool) {
	var list []EntryPoint
	switch kind {
	case EntryPointExternal:
		list = t.External
	case EntryPointL1Handler:
		list = t.L1Handler
	case EntryPointConstructor:
		list = t.Constructor
	}
	for _, ep := range list {
		if ep.Selector.Cmp(selector) == 0 {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

// Class is the tagged contract-class artifact. Exactly one of Program or
// (SierraProgram, Casm) is populated depending on Kind.
type Class struct {
	Kind Kind

	// Legacy fields.
	Program []byte
	ABI     string

	// Modern fields.
	SierraProgram []byte
	Casm          []byte

	EntryPoints EntryPointTable
}

// Hash deterministically derives the class hash from the class's contents.
// The real network derives this via a Poseidon-hash-over-Sierra scheme that
// belongs to the Cairo VM / class-hash computation library treated as an
// external black box; this hashes the serialized contents with
// the same Pedersen-style primitive the Block Engine uses for block hashes,
// which is sufficient for this module's contract: deterministic, collision
// resistant, and stable across dump/load.
func (c Class) Hash() felt.ClassHash {
	elements := []felt.Felt{felt.FromUint64(uint64(c.Kind))}
	for _, blob := range [][]byte{c.Program, []byte(c.ABI), c.SierraProgram, c.Casm} {
		elements = append(elements, felt.FromUint64(uint64(len(blob))))
		for start := 0; start < len(blob); start += 31 {
			end := start + 31
			if end > len(blob) {
				end = len(blob)
			}
			elements = append(elements, felt.FromBytes(blob[start:end]))
		}
	}
	for _, ep := range c.EntryPoints.External {
		elements = append(elements, ep.Selector, felt.FromUint64(ep.Offset))
	}
	for _, ep := range c.EntryPoints.L1Handler {
		elements = append(elements, ep.Selector, felt.FromUint64(ep.Offset))
	}
	for _, ep := range c.EntryPoints.Constructor {
		elements = append(elements, ep.Selector, felt.FromUint64(ep.Offset))
	}
	return felt.ClassHashFromFelt(felt.PedersenHash(elements...))
}
