package pipeline

import (
	"math/big"

	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/rpcerr"
)

// Broadcast is one transaction in an estimate/simulate batch, paired with
// the class payload a declare needs (nil for the other three kinds).
type Broadcast struct {
	Declare       *transaction.DeclareTx
	DeclaredClass class.Class
	DeployAccount *transaction.DeployAccountTx
	Invoke        *transaction.InvokeTx
}

func (b Broadcast) sender() felt.Address {
	switch {
	case b.Declare != nil:
		return b.Declare.SenderAddress
	case b.DeployAccount != nil:
		return b.DeployAccount.SenderAddress
	case b.Invoke != nil:
		return b.Invoke.SenderAddress
	default:
		return felt.Address{}
	}
}

func (b Broadcast) resourceBounds() transaction.ResourceBoundsMap {
	switch {
	case b.Declare != nil:
		return b.Declare.ResourceBounds
	case b.DeployAccount != nil:
		return b.DeployAccount.ResourceBounds
	case b.Invoke != nil:
		return b.Invoke.ResourceBounds
	default:
		return transaction.ResourceBoundsMap{}
	}
}

// execute runs one broadcast transaction against scratch, a scratch Store
// shared across an entire estimate/simulate batch so each transaction
// observes the previous one's effects, matching the real network's
// sequential batch-simulation semantics.
func (p *Pipeline) execute(scratch *state.Store, b Broadcast, flags execengine.Flags) (execengine.Result, error) {
	switch {
	case b.Declare != nil:
		return p.engine.ExecuteDeclare(scratch, *b.Declare, b.DeclaredClass, flags)
	case b.DeployAccount != nil:
		return p.engine.ExecuteDeployAccount(scratch, *b.DeployAccount, flags)
	case b.Invoke != nil:
		return p.engine.ExecuteInvoke(scratch, *b.Invoke, flags)
	default:
		return execengine.Result{}, &rpcerr.UnexpectedInternalError{Msg: "pipeline: empty broadcast"}
	}
}

// FeeEstimate is the per-transaction output of EstimateFee.
type FeeEstimate struct {
	Usage  execengine.ResourceUsage
	Prices block.GasPrices
	Fee    amount.Amount
}

func priceUsage(usage uint64, price felt.Felt) amount.Amount {
	total := new(big.Int).Mul(price.ToBig(), new(big.Int).SetUint64(usage))
	a, _ := amount.NewFromBigInt(total)
	return a
}

func computeFee(usage execengine.ResourceUsage, prices block.GasPrices) amount.Amount {
	total := amount.New(0)
	total = amount.Add(total, priceUsage(usage.L1Gas, prices.L1Gas.InFri))
	total = amount.Add(total, priceUsage(usage.L1DataGas, prices.L1DataGas.InFri))
	total = amount.Add(total, priceUsage(usage.L2Gas, prices.L2Gas.InFri))
	return total
}

// EstimateFee runs every transaction in the batch with charge_fee=false
// against a transactional snapshot of the given block's state, in order,
// reporting the first failure as a TransactionExecutionError and
// discarding all effects regardless of outcome.
func (p *Pipeline) EstimateFee(id block.ID, batch []Broadcast, skipValidate bool) ([]FeeEstimate, error) {
	base, err := p.stateAt(id)
	if err != nil {
		return nil, err
	}
	gasPrices := p.blocks.PreConfirmed().Header.GasPrices
	scratch := base.Fork()
	estimates := make([]FeeEstimate, 0, len(batch))
	for i, b := range batch {
		validate := !skipValidate && !p.isImpersonated(b.sender())
		flags := execengine.Flags{OnlyQuery: true, ChargeFee: false, Validate: validate, StrictNonceCheck: false}
		result, err := p.execute(scratch, b, flags)
		if err != nil {
			return nil, err
		}
		if result.Reverted {
			return nil, &rpcerr.TransactionExecutionError{TransactionIndex: i, ExecutionError: result.RevertError}
		}
		estimates = append(estimates, FeeEstimate{Usage: result.Usage, Prices: gasPrices, Fee: computeFee(result.Usage, gasPrices)})
	}
	return estimates, nil
}
