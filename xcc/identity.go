package xcc

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nearbridge/xcc/log"
)

// CurrentAccountID returns the host-ledger account id of the engine the
// current contract executes in.
func CurrentAccountID(rt Runtime) (AccountID, error) {
	return queryAccountID(rt, CurrentAccountIDPrecompile)
}

// PredecessorAccountID returns the host-ledger account that triggered the
// current execution. Inside a callback this is the account the callback was
// routed through, not the original EVM caller.
func PredecessorAccountID(rt Runtime) (AccountID, error) {
	return queryAccountID(rt, PredecessorAccountIDPrecompile)
}

func queryAccountID(rt Runtime, precompile common.Address) (AccountID, error) {
	ret, ok := rt.Call(precompile, nil)
	if !ok {
		return "", &SystemInterfaceError{Precompile: precompile, Payload: ret}
	}
	return AccountID(ret), nil
}

// AddressSubAccount renders addr as a sub-account of parent:
// "<hex(addr)>.<parent>", lower-case hex without the 0x prefix.
func AddressSubAccount(addr common.Address, parent AccountID) AccountID {
	return AccountID(hex.EncodeToString(addr.Bytes()) + "." + string(parent))
}

// RepresentativeAccountID derives the host-ledger account id that represents
// addr: a sub-account of the engine's own account. The mapping is
// deterministic for a fixed engine account.
func RepresentativeAccountID(rt Runtime, addr common.Address) (AccountID, error) {
	current, err := CurrentAccountID(rt)
	if err != nil {
		return "", err
	}
	id := AddressSubAccount(addr, current)
	log.Trace(log.XccMonitoring, "derived representative account", "address", addr, "account", id)
	return id, nil
}

// ImplicitAddress returns the EVM address implied by a host-ledger account
// id: the low 160 bits of the keccak256 hash of the id bytes. One-way; the
// id cannot be recovered from the address.
func ImplicitAddress(id AccountID) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(id)))
}

// RepresentativeImplicitAddress is the EVM address of addr's representative
// account. A contract uses this to receive a callback the host routes back
// into the EVM environment on its behalf.
func RepresentativeImplicitAddress(rt Runtime, addr common.Address) (common.Address, error) {
	id, err := RepresentativeAccountID(rt, addr)
	if err != nil {
		return common.Address{}, err
	}
	return ImplicitAddress(id), nil
}
