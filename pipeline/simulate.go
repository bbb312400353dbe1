package pipeline

import (
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/rpcerr"
)

// SimulationFlags are Simulate's two independent toggles.
type SimulationFlags struct {
	SkipValidate   bool
	SkipFeeCharge  bool
}

// Simulation is one transaction's simulated outcome: the same fee estimate
// EstimateFee would produce, plus the execution trace.
type Simulation struct {
	Fee   FeeEstimate
	Trace execengine.Trace
}

// Simulate is like EstimateFee, but also returns each transaction's
// execution trace, and accepts zero resource
// bounds when SkipFeeCharge is set. The returned slice is in input order
// and its length always equals len(batch); a mismatch is a bug in this
// package, not a caller error, hence UnexpectedInternalError rather than a
// normal failure return.
func (p *Pipeline) Simulate(id block.ID, batch []Broadcast, flags SimulationFlags) ([]Simulation, error) {
	base, err := p.stateAt(id)
	if err != nil {
		return nil, err
	}
	gasPrices := p.blocks.PreConfirmed().Header.GasPrices
	scratch := base.Fork()
	out := make([]Simulation, 0, len(batch))
	for i, b := range batch {
		validate := !flags.SkipValidate && !p.isImpersonated(b.sender())
		if !flags.SkipFeeCharge {
			if err := validateResourceBounds(b.resourceBounds(), p.isImpersonated(b.sender())); err != nil {
				return nil, err
			}
		}
		execFlags := execengine.Flags{OnlyQuery: true, ChargeFee: !flags.SkipFeeCharge, Validate: validate, StrictNonceCheck: false}
		result, err := p.execute(scratch, b, execFlags)
		if err != nil {
			return nil, err
		}
		if result.Reverted {
			return nil, &rpcerr.TransactionExecutionError{TransactionIndex: i, ExecutionError: result.RevertError}
		}
		out = append(out, Simulation{
			Fee:   FeeEstimate{Usage: result.Usage, Prices: gasPrices, Fee: computeFee(result.Usage, gasPrices)},
			Trace: result.Trace,
		})
	}
	if len(out) != len(batch) {
		return nil, &rpcerr.UnexpectedInternalError{Msg: "pipeline: simulation output count does not match input batch"}
	}
	return out, nil
}
