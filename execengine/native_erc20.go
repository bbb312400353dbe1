package execengine

import (
	"fmt"
	"math/big"

	"github.com/0xSpaceShard/starknet-devnet-go/core/amount"
	"github.com/0xSpaceShard/starknet-devnet-go/core/class"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/core/state"
	"github.com/0xSpaceShard/starknet-devnet-go/core/transaction"
)

// combineLowHigh reassembles a uint256 ABI (low, high) felt pair into one
// big.Int, the inverse of amount.Amount's Low/High split.
func combineLowHigh(low, high felt.Felt) *big.Int {
	v := new(big.Int).Lsh(high.ToBig(), 128)
	return v.Or(v, low.ToBig())
}

var (
	SelectorPermissionedMint = felt.SelectorFromName("permissioned_mint")
	SelectorTransfer         = felt.SelectorFromName("transfer")
	SelectorBalanceOf        = felt.SelectorFromName("balanceOf")
	SelectorWithdraw         = felt.SelectorFromName("withdraw")
	SelectorDeposit          = felt.SelectorFromName("deposit")

	balancesBase = felt.SelectorFromName("ERC20_balances")
)

// EntrypointNotFoundSentinel is the felt a view call returns when the
// requested entry point does not exist on the target class. Engine.Call
// returns this as ordinary return data rather than an error; the caller
// (the pipeline) is responsible for recognizing the sentinel and mapping
// it to rpcerr.ErrEntrypointNotFound.
var EntrypointNotFoundSentinel = felt.SelectorFromName("ENTRYPOINT_NOT_FOUND")

// NativeERC20 is the reference ExecutionEngine implementation: a built-in
// fee-token contract standing in for the Cairo VM black box.
// It implements just enough of an ERC-20 (permissioned_mint, transfer,
// balanceOf) plus a withdraw/deposit pair wired to
// execengine.Result.L2ToL1 so the messaging bridge's flush protocol has
// something real to relay. Invocations against any
// other contract address succeed as a no-op charging a flat resource cost,
// since general Cairo execution is out of this module's scope.
type NativeERC20 struct {
	ETHAddress  felt.Address
	STRKAddress felt.Address
}

// NewNativeERC20 returns a NativeERC20 with the network's well-known
// ETH and STRK fee-token addresses.
func NewNativeERC20() NativeERC20 {
	return NativeERC20{
		ETHAddress:  felt.AddressFromFelt(felt.FromBytes([]byte("eth-fee-token"))),
		STRKAddress: felt.AddressFromFelt(felt.FromBytes([]byte("strk-fee-token"))),
	}
}

func (e NativeERC20) isFeeToken(addr felt.Address) bool {
	return addr == e.ETHAddress || addr == e.STRKAddress
}

// FeeTokens implements execengine.FeeTokenProvider.
func (e NativeERC20) FeeTokens() (eth, strk felt.Address) {
	return e.ETHAddress, e.STRKAddress
}

// FeeTokenClassHash is the synthetic, non-zero class hash the devnet engine
// deploys both fee-token contracts under at genesis. Its value carries no
// meaning beyond being non-zero, since Account.Deployed() treats a zero
// class hash as "undeployed" and NativeERC20 keeps balances in the fee
// tokens' own storage.
var FeeTokenClassHash = felt.ClassHashFromFelt(felt.FromBytes([]byte("native-erc20-fee-token")))

func balanceKeys(account felt.Address) (low, high felt.Key) {
	l := felt.PedersenHash(balancesBase, account.Felt())
	h := l.Add(felt.FromUint64(1))
	return felt.KeyFromFelt(l), felt.KeyFromFelt(h)
}

func readBalance(s *state.Store, token, account felt.Address) (amount.Amount, error) {
	lowKey, highKey := balanceKeys(account)
	low, err := s.StorageAt(token, lowKey)
	if err != nil {
		return amount.Amount{}, err
	}
	high, err := s.StorageAt(token, highKey)
	if err != nil {
		return amount.Amount{}, err
	}
	return amount.NewFromBigInt(combineLowHigh(low, high))
}

func writeBalance(s *state.Store, token, account felt.Address, a amount.Amount) {
	lowKey, highKey := balanceKeys(account)
	s.SetStorage(token, lowKey, felt.FromBigInt(a.Low()))
	s.SetStorage(token, highKey, felt.FromBigInt(a.High()))
}

const flatNoOpL2Gas = 1_000

func (e NativeERC20) ExecuteDeclare(s *state.Store, tx transaction.DeclareTx, cls class.Class, flags Flags) (Result, error) {
	s.DeclareClass(tx.ClassHash, cls)
	usage := ResourceUsage{L2Gas: uint64(len(cls.Program) + len(cls.SierraProgram) + len(cls.Casm))}
	return Result{Usage: usage}, nil
}

func (e NativeERC20) ExecuteDeployAccount(s *state.Store, tx transaction.DeployAccountTx, flags Flags) (Result, error) {
	s.DeployContract(tx.SenderAddress, tx.ClassHash)
	return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil
}

// decodeCall interprets an invoke's calldata as a single
// (contract, selector, args...) call, the simplification this stand-in
// engine adopts in place of real account-contract multicall decoding
// (which only the Cairo VM black box could actually perform).
func decodeCall(calldata []felt.Felt) (felt.Address, felt.Felt, []felt.Felt, error) {
	if len(calldata) < 2 {
		return felt.Address{}, felt.Felt{}, nil, fmt.Errorf("execengine: invoke calldata too short")
	}
	return felt.AddressFromFelt(calldata[0]), calldata[1], calldata[2:], nil
}

func (e NativeERC20) ExecuteInvoke(s *state.Store, tx transaction.InvokeTx, flags Flags) (Result, error) {
	target, selector, args, err := decodeCall(tx.Calldata)
	if err != nil {
		return Result{Reverted: true, RevertError: err.Error()}, nil
	}

	if !e.isFeeToken(target) {
		return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil
	}

	switch {
	case selector.Cmp(SelectorPermissionedMint) == 0:
		if len(args) < 3 {
			return Result{Reverted: true, RevertError: "permissioned_mint: expected (recipient, amount_low, amount_high)"}, nil
		}
		recipient := felt.AddressFromFelt(args[0])
		minted, err := amount.NewFromBigInt(combineLowHigh(args[1], args[2]))
		if err != nil {
			return Result{Reverted: true, RevertError: err.Error()}, nil
		}
		current, _ := readBalance(s, target, recipient)
		writeBalance(s, target, recipient, amount.Add(current, minted))
		return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil

	case selector.Cmp(SelectorTransfer) == 0:
		if len(args) < 3 {
			return Result{Reverted: true, RevertError: "transfer: expected (recipient, amount_low, amount_high)"}, nil
		}
		recipient := felt.AddressFromFelt(args[0])
		amt, err := amount.NewFromBigInt(combineLowHigh(args[1], args[2]))
		if err != nil {
			return Result{Reverted: true, RevertError: err.Error()}, nil
		}
		fromBal, err := readBalance(s, target, tx.SenderAddress)
		if err != nil {
			return Result{Reverted: true, RevertError: err.Error()}, nil
		}
		remaining, underflow := amount.SubUnderflow(fromBal, amt)
		if underflow {
			return Result{Reverted: true, RevertError: "transfer: insufficient balance"}, nil
		}
		writeBalance(s, target, tx.SenderAddress, remaining)
		toBal, _ := readBalance(s, target, recipient)
		writeBalance(s, target, recipient, amount.Add(toBal, amt))
		return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil

	case selector.Cmp(SelectorWithdraw) == 0:
		if len(args) < 3 {
			return Result{Reverted: true, RevertError: "withdraw: expected (l1_recipient, amount_low, amount_high)"}, nil
		}
		amt, err := amount.NewFromBigInt(combineLowHigh(args[1], args[2]))
		if err != nil {
			return Result{Reverted: true, RevertError: err.Error()}, nil
		}
		bal, err := readBalance(s, target, tx.SenderAddress)
		if err != nil {
			return Result{Reverted: true, RevertError: err.Error()}, nil
		}
		remaining, underflow := amount.SubUnderflow(bal, amt)
		if underflow {
			return Result{Reverted: true, RevertError: "withdraw: insufficient balance"}, nil
		}
		writeBalance(s, target, tx.SenderAddress, remaining)
		msg := L2ToL1Message{
			FromAddress: target,
			ToAddress:   args[0],
			Payload:     []felt.Felt{felt.Zero, args[0], felt.FromBigInt(amt.ToBig())},
		}
		return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}, L2ToL1: []L2ToL1Message{msg}}, nil

	default:
		return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil
	}
}

func (e NativeERC20) ExecuteL1Handler(s *state.Store, tx transaction.L1HandlerTx, flags Flags) (Result, error) {
	if tx.EntryPoint.Cmp(SelectorDeposit) != 0 {
		return Result{Reverted: true, RevertError: "l1 handler: unknown entry point"}, nil
	}
	if len(tx.Calldata) < 3 {
		return Result{Reverted: true, RevertError: "deposit: expected (user, amount_low, amount_high)"}, nil
	}
	user := felt.AddressFromFelt(tx.Calldata[0])
	amt, err := amount.NewFromBigInt(combineLowHigh(tx.Calldata[1], tx.Calldata[2]))
	if err != nil {
		return Result{Reverted: true, RevertError: err.Error()}, nil
	}
	current, _ := readBalance(s, tx.ContractAddress, user)
	writeBalance(s, tx.ContractAddress, user, amount.Add(current, amt))
	return Result{Usage: ResourceUsage{L2Gas: flatNoOpL2Gas}}, nil
}

func (e NativeERC20) Call(s *state.Store, contract felt.Address, entryPoint felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
	if !e.isFeeToken(contract) {
		return []felt.Felt{EntrypointNotFoundSentinel}, nil
	}
	if entryPoint.Cmp(SelectorBalanceOf) != 0 {
		return []felt.Felt{EntrypointNotFoundSentinel}, nil
	}
	if len(calldata) < 1 {
		return nil, fmt.Errorf("execengine: balanceOf requires one argument")
	}
	account := felt.AddressFromFelt(calldata[0])
	bal, err := readBalance(s, contract, account)
	if err != nil {
		return nil, err
	}
	return []felt.Felt{felt.FromBigInt(bal.Low()), felt.FromBigInt(bal.High())}, nil
}
