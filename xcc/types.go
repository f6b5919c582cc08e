// Package xcc implements the cross-contract-call protocol between contracts
// running inside the EVM engine and native contracts on the host ledger.
// A contract funds and builds a promise (a deferred call descriptor),
// optionally chains a callback onto it, and hands it to the host scheduler
// through the cross-contract-call precompile. The call executes after the
// current transaction commits; its outcome is read back inside a
// host-triggered callback via the promise-result precompile.
package xcc

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nearbridge/xcc/codec"
)

// AccountID is a host-ledger native account identifier.
type AccountID = string

// Balance is an attached-value amount in the host ledger's smallest unit
// (yoctoNEAR), a 128-bit quantity on the wire.
type Balance = codec.Uint128

// Precompile addresses fixed by the engine protocol.
var (
	// CrossContractCallPrecompile schedules an encoded promise with the host.
	CrossContractCallPrecompile = common.HexToAddress("0x516Cded1D16af10CAd47D6D49128E2eB7d27b372")
	// CurrentAccountIDPrecompile returns the engine's own host-ledger account id.
	CurrentAccountIDPrecompile = common.HexToAddress("0xfeFAe79E4180Eb0284F261205E3F8CEA737aFf56")
	// PredecessorAccountIDPrecompile returns the host-ledger account that
	// triggered the current execution.
	PredecessorAccountIDPrecompile = common.HexToAddress("0x723FfBAbA940e75E7BF5F6d61dCbf8d9a4De0fD7")
	// PromiseResultPrecompile returns the encoded results of the promises
	// resolved for the current callback context.
	PromiseResultPrecompile = common.HexToAddress("0x0A3540F79BE10EF14890e87c1A17C1Dd237a6DF4")
)

// StorageStakeTopUp is pulled from the caller on the first promise a contract
// ever funds. It covers the one-time creation and storage stake of the
// contract's representative account on the host ledger (2 NEAR in yocto).
var StorageStakeTopUp = codec.Uint128{Low: 0x379D99DB42000000, High: 0x1A784}

// ExecutionMode tells the host scheduler how to process a dispatched promise.
type ExecutionMode uint8

const (
	// ModeEager schedules the promise as part of the current transaction.
	ModeEager ExecutionMode = iota
	// ModeDelayed parks the promise for a later, separately signed execution.
	ModeDelayed
)

// PromiseCreateArgs describes a single deferred call into a host-ledger
// contract. Field order is the Borsh wire order; do not reorder.
//
// A descriptor is single-use: once handed to Transact it belongs to the host
// scheduler and reusing it is a protocol violation the engine does not
// detect.
type PromiseCreateArgs struct {
	TargetAccountID AccountID
	Method          string
	Args            []byte
	Balance         Balance
	NearGas         uint64
}

// PromiseWithCallback chains two descriptors: Callback executes on the host
// after Base completes, whatever Base's outcome.
type PromiseWithCallback struct {
	Base     PromiseCreateArgs
	Callback PromiseCreateArgs
}

// Promise is either a single deferred call or a base-then-callback chain.
type Promise interface {
	promiseIndex() uint8
}

const (
	promiseVariantCreate   = 0
	promiseVariantCallback = 1
)

func (PromiseCreateArgs) promiseIndex() uint8   { return promiseVariantCreate }
func (PromiseWithCallback) promiseIndex() uint8 { return promiseVariantCallback }

// PromiseResultStatus tags the outcome variant of a resolved promise.
type PromiseResultStatus uint8

const (
	// NotReady means the promise has not been resolved by the host yet.
	NotReady PromiseResultStatus = iota
	// Successful carries the bytes returned by the deferred call.
	Successful
	// Failed means the deferred call executed and failed on the host ledger.
	Failed
)

// PromiseResult is the decoded outcome of one deferred call. Output is only
// populated for Successful results.
type PromiseResult struct {
	Status PromiseResultStatus
	Output []byte
}
