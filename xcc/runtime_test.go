package xcc

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// mockRuntime routes precompile calls to per-address handlers and records
// every call it sees.
type mockRuntime struct {
	caller   common.Address
	self     common.Address
	handlers map[common.Address]func(input []byte) ([]byte, bool)
	calls    []recordedCall
}

type recordedCall struct {
	addr  common.Address
	input []byte
}

func newMockRuntime() *mockRuntime {
	return &mockRuntime{
		caller:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		self:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		handlers: make(map[common.Address]func(input []byte) ([]byte, bool)),
	}
}

func (m *mockRuntime) withAccountID(id AccountID) *mockRuntime {
	m.handlers[CurrentAccountIDPrecompile] = func([]byte) ([]byte, bool) {
		return []byte(id), true
	}
	return m
}

func (m *mockRuntime) Call(addr common.Address, input []byte) ([]byte, bool) {
	m.calls = append(m.calls, recordedCall{addr: addr, input: input})
	handler, ok := m.handlers[addr]
	if !ok {
		return []byte(fmt.Sprintf("no handler for %s", addr)), false
	}
	return handler(input)
}

func (m *mockRuntime) Caller() common.Address { return m.caller }
func (m *mockRuntime) Self() common.Address   { return m.self }

// mockERC20 records transfer-from calls and optionally fails them.
type mockERC20 struct {
	transfers []recordedTransfer
	failWith  error
}

type recordedTransfer struct {
	from   common.Address
	to     common.Address
	amount *uint256.Int
}

func (m *mockERC20) TransferFrom(from, to common.Address, amount *uint256.Int) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.transfers = append(m.transfers, recordedTransfer{from: from, to: to, amount: amount.Clone()})
	return nil
}
