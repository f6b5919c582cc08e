package xcc

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nearbridge/xcc/log"
)

// NEAR is the bridge state a contract holds to fund deferred calls. One
// instance per contract; Initialized flips to true on the first call that
// funds a promise and stays true for the life of the state.
type NEAR struct {
	Initialized bool
	WNEAR       ERC20
}

// InitNear creates the bridge state backed by the given wrapped-token
// funding asset.
func InitNear(wnear ERC20) *NEAR {
	return &NEAR{Initialized: false, WNEAR: wnear}
}

// Call builds a funded call descriptor for a host-ledger contract.
//
// On the first build from this state the one-time StorageStakeTopUp is added
// to balance and Initialized flips. Whenever the effective balance is
// positive it is pulled from rt.Caller() into the contract's own balance via
// the wrapped token before the descriptor is returned; a failed pull aborts
// construction and leaves the state untouched.
//
// target and method are not validated here. A malformed target only surfaces
// when the host ledger executes the deferred call.
func (n *NEAR) Call(rt Runtime, target AccountID, method string, args []byte, balance Balance, gas uint64) (PromiseCreateArgs, error) {
	effective := balance
	if !n.Initialized {
		var overflow bool
		effective, overflow = balance.Add(StorageStakeTopUp)
		if overflow {
			return PromiseCreateArgs{}, ErrBalanceOverflow
		}
	}

	if !effective.IsZero() {
		amount := uint256.Int{effective.Low, effective.High, 0, 0}
		if err := n.WNEAR.TransferFrom(rt.Caller(), rt.Self(), &amount); err != nil {
			return PromiseCreateArgs{}, fmt.Errorf("funding transfer of %s failed: %w", effective.String(), err)
		}
	}
	n.Initialized = true

	log.Debug(log.XccMonitoring, "built promise", "target", target, "method", method, "balance", effective.String(), "gas", gas)
	return PromiseCreateArgs{
		TargetAccountID: target,
		Method:          method,
		Args:            args,
		Balance:         effective,
		NearGas:         gas,
	}, nil
}

// evmCallTag marks the packed argument layout of an engine-level "call":
// tag, 20-byte target, 32-byte attached-wei field, input.
const evmCallTag = 0x00

// AuroraCall builds a descriptor that re-enters the EVM environment: it
// targets the engine's own account with the conventional "call" method and
// packs the EVM target, a zero attached-wei field and args as the argument
// bytes. Used to invoke an EVM contract from a host-side callback.
func (n *NEAR) AuroraCall(rt Runtime, target common.Address, args []byte, balance Balance, gas uint64) (PromiseCreateArgs, error) {
	current, err := CurrentAccountID(rt)
	if err != nil {
		return PromiseCreateArgs{}, err
	}

	packed := make([]byte, 0, 1+common.AddressLength+32+len(args))
	packed = append(packed, evmCallTag)
	packed = append(packed, target.Bytes()...)
	packed = append(packed, make([]byte, 32)...) // attached wei, always zero
	packed = append(packed, args...)

	return n.Call(rt, current, "call", packed, balance, gas)
}
