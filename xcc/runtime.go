package xcc

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Runtime is the EVM execution environment the protocol runs inside. The
// engine provides the production implementation; tests supply their own.
type Runtime interface {
	// Call performs a low-level call to addr with the given input. ok is
	// false when the callee rejected the call; ret then holds the raw
	// failure payload exactly as returned.
	Call(addr common.Address, input []byte) (ret []byte, ok bool)

	// Caller is the address attached balances are pulled from.
	Caller() common.Address

	// Self is the address of the currently executing contract.
	Self() common.Address
}

// ERC20 is the funding asset used to collect attached balances before
// dispatch (the wrapped host-ledger token).
type ERC20 interface {
	TransferFrom(from, to common.Address, amount *uint256.Int) error
}
