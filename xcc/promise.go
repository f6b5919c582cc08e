package xcc

import (
	"bytes"
	"fmt"

	"github.com/nearbridge/xcc/codec"
	"github.com/nearbridge/xcc/log"
)

// Then chains callback onto p: the host executes p first, then callback,
// regardless of p's outcome. Whether p's gas and balance leave enough
// resources for callback is the host scheduler's concern, not checked here.
func (p PromiseCreateArgs) Then(callback PromiseCreateArgs) PromiseWithCallback {
	return PromiseWithCallback{Base: p, Callback: callback}
}

// promiseArgs adapts a Promise to the codec's tagged-union encoding:
// u8 discriminant (0 create, 1 callback) followed by the descriptor fields.
type promiseArgs struct {
	promise Promise
}

func (pa promiseArgs) IndexValue() (int, interface{}, error) {
	if pa.promise == nil {
		return 0, nil, fmt.Errorf("nil promise")
	}
	return int(pa.promise.promiseIndex()), pa.promise, nil
}

// EncodeDispatchPayload serializes a promise into the byte layout the
// cross-contract-call precompile expects: execution mode, promise variant
// discriminant, then the Borsh-encoded descriptor fields.
func EncodeDispatchPayload(mode ExecutionMode, p Promise) ([]byte, error) {
	if mode != ModeEager && mode != ModeDelayed {
		return nil, fmt.Errorf("invalid execution mode: %d", mode)
	}

	buf := bytes.NewBuffer(nil)
	enc := codec.NewEncoder(buf)
	if err := enc.Encode(mode); err != nil {
		return nil, fmt.Errorf("encoding execution mode: %w", err)
	}
	if err := enc.Encode(promiseArgs{promise: p}); err != nil {
		return nil, fmt.Errorf("encoding promise: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDispatchPayload is the inverse of EncodeDispatchPayload. The engine
// side performs this decode; it is exported for tooling and tests.
func DecodeDispatchPayload(data []byte) (ExecutionMode, Promise, error) {
	if len(data) < 2 {
		return 0, nil, fmt.Errorf("dispatch payload too short: %d bytes", len(data))
	}
	mode := ExecutionMode(data[0])
	if mode != ModeEager && mode != ModeDelayed {
		return 0, nil, fmt.Errorf("invalid execution mode: %d", data[0])
	}

	switch data[1] {
	case promiseVariantCreate:
		var p PromiseCreateArgs
		if err := codec.Unmarshal(data[2:], &p); err != nil {
			return 0, nil, fmt.Errorf("decoding promise: %w", err)
		}
		return mode, p, nil
	case promiseVariantCallback:
		var p PromiseWithCallback
		if err := codec.Unmarshal(data[2:], &p); err != nil {
			return 0, nil, fmt.Errorf("decoding promise chain: %w", err)
		}
		return mode, p, nil
	default:
		return 0, nil, fmt.Errorf("unknown promise variant: %d", data[1])
	}
}

// Transact hands p to the host scheduler through the cross-contract-call
// precompile, always in eager mode. A nil return means the promise was
// scheduled; whether the deferred call itself succeeds is only observable
// later through ReadPromiseResult inside a callback. On precompile failure
// the raw returned bytes are surfaced verbatim as the error.
//
// p is consumed by a successful Transact and must not be dispatched again.
func Transact(rt Runtime, p Promise) error {
	payload, err := EncodeDispatchPayload(ModeEager, p)
	if err != nil {
		return err
	}

	ret, ok := rt.Call(CrossContractCallPrecompile, payload)
	if !ok {
		log.Debug(log.XccMonitoring, "promise dispatch rejected", "reason", string(ret))
		return &SystemInterfaceError{Precompile: CrossContractCallPrecompile, Payload: ret}
	}
	log.Debug(log.XccMonitoring, "promise dispatched", "payload_bytes", len(payload))
	return nil
}
